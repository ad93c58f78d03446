package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/studyhub/internal/model"
	"github.com/hitoshi/studyhub/internal/note"
)

// NoteServiceInterface はノートハンドラーが必要とするサービスインターフェース。
type NoteServiceInterface interface {
	ListNotes(ctx context.Context) ([]*model.Note, error)
	ListGroupNotes(ctx context.Context, userID, groupID int64) ([]*model.Note, error)
	CreateNote(ctx context.Context, userID int64, in note.CreateInput) (*model.Note, error)
}

// NoteHandler は共有ノートのHTTPハンドラー。
type NoteHandler struct {
	service   NoteServiceInterface
	validator RequestValidator
}

// NewNoteHandler はNoteHandlerを生成する。
func NewNoteHandler(service NoteServiceInterface, validator RequestValidator) *NoteHandler {
	return &NoteHandler{service: service, validator: validator}
}

type createNoteRequest struct {
	Title    string `json:"title" validate:"required,min=2,max=255"`
	FileType string `json:"fileType" validate:"required,max=50"`
	GroupID  int64  `json:"groupId" validate:"required,min=1"`
	FileURL  string `json:"fileUrl" validate:"required"`
}

// ListNotes は全ノートを返す。
// GET /api/notes
func (h *NoteHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUserID(w, r); !ok {
		return
	}

	notes, err := h.service.ListNotes(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toNoteResponses(notes))
}

// ListGroupNotes はグループのノートを返す。メンバーのみ閲覧できる。
// GET /api/groups/{id}/notes
func (h *NoteHandler) ListGroupNotes(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	groupID, ok := groupIDParam(w, r)
	if !ok {
		return
	}

	notes, err := h.service.ListGroupNotes(r.Context(), userID, groupID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toNoteResponses(notes))
}

// CreateNote はノートを登録する。対象グループのメンバーのみ登録できる。
// POST /api/notes
func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req createNoteRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	n, err := h.service.CreateNote(r.Context(), userID, note.CreateInput{
		Title:    req.Title,
		FileType: req.FileType,
		GroupID:  req.GroupID,
		FileURL:  req.FileURL,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toNoteResponse(n))
}
