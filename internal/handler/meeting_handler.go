package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/studyhub/internal/meeting"
	"github.com/hitoshi/studyhub/internal/model"
)

// MeetingServiceInterface は予定ハンドラーが必要とするサービスインターフェース。
type MeetingServiceInterface interface {
	ListMeetings(ctx context.Context) ([]*model.Meeting, error)
	ListGroupMeetings(ctx context.Context, userID, groupID int64) ([]*model.Meeting, error)
	CreateMeeting(ctx context.Context, userID int64, in meeting.CreateInput) (*model.Meeting, error)
}

// MeetingHandler は勉強会予定のHTTPハンドラー。
type MeetingHandler struct {
	service   MeetingServiceInterface
	validator RequestValidator
}

// NewMeetingHandler はMeetingHandlerを生成する。
func NewMeetingHandler(service MeetingServiceInterface, validator RequestValidator) *MeetingHandler {
	return &MeetingHandler{service: service, validator: validator}
}

type createMeetingRequest struct {
	Title   string `json:"title" validate:"required,min=2,max=255"`
	Date    string `json:"date" validate:"required"`
	Time    string `json:"time" validate:"required"`
	GroupID int64  `json:"groupId" validate:"required,min=1"`
}

// ListMeetings は全予定を返す。
// GET /api/meetings
func (h *MeetingHandler) ListMeetings(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUserID(w, r); !ok {
		return
	}

	meetings, err := h.service.ListMeetings(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMeetingResponses(meetings))
}

// ListGroupMeetings はグループの予定を返す。メンバーのみ閲覧できる。
// GET /api/groups/{id}/meetings
func (h *MeetingHandler) ListGroupMeetings(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	groupID, ok := groupIDParam(w, r)
	if !ok {
		return
	}

	meetings, err := h.service.ListGroupMeetings(r.Context(), userID, groupID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMeetingResponses(meetings))
}

// CreateMeeting は予定を作成する。対象グループのメンバーのみ作成できる。
// POST /api/meetings
func (h *MeetingHandler) CreateMeeting(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req createMeetingRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	m, err := h.service.CreateMeeting(r.Context(), userID, meeting.CreateInput{
		Title:   req.Title,
		Date:    req.Date,
		Time:    req.Time,
		GroupID: req.GroupID,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMeetingResponse(m))
}
