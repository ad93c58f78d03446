package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/studyhub/internal/model"
)

// GroupServiceInterface はグループハンドラーが必要とするサービスインターフェース。
type GroupServiceInterface interface {
	ListGroups(ctx context.Context) ([]model.GroupWithCount, error)
	ListMyGroups(ctx context.Context, userID int64) ([]model.GroupWithCount, error)
	CreateGroup(ctx context.Context, userID int64, name, description string) (*model.GroupWithCount, error)
	JoinGroup(ctx context.Context, userID, groupID int64) (*model.GroupMember, error)
	ListMembers(ctx context.Context, userID, groupID int64) ([]*model.GroupMember, error)
}

// GroupHandler はグループ管理のHTTPハンドラー。
type GroupHandler struct {
	service   GroupServiceInterface
	validator RequestValidator
}

// NewGroupHandler はGroupHandlerを生成する。
func NewGroupHandler(service GroupServiceInterface, validator RequestValidator) *GroupHandler {
	return &GroupHandler{service: service, validator: validator}
}

type createGroupRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=255"`
	Description string `json:"description" validate:"required,min=10,max=200"`
}

// ListGroups は全グループをメンバー数付きで返す。
// GET /api/groups
func (h *GroupHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUserID(w, r); !ok {
		return
	}

	groups, err := h.service.ListGroups(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroupResponses(groups))
}

// ListMyGroups は所属または作成したグループを返す。
// GET /api/groups/my
func (h *GroupHandler) ListMyGroups(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	groups, err := h.service.ListMyGroups(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroupResponses(groups))
}

// CreateGroup はグループを作成する。作成者は自動的にメンバーになる。
// POST /api/groups
func (h *GroupHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req createGroupRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	group, err := h.service.CreateGroup(r.Context(), userID, req.Name, req.Description)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGroupResponse(*group))
}

// JoinGroup はグループに参加する。
// POST /api/groups/{id}/join
func (h *GroupHandler) JoinGroup(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	groupID, ok := groupIDParam(w, r)
	if !ok {
		return
	}

	member, err := h.service.JoinGroup(r.Context(), userID, groupID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMemberResponse(member))
}

// ListMembers はグループの所属一覧を返す。メンバーのみ閲覧できる。
// GET /api/groups/{id}/members
func (h *GroupHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	groupID, ok := groupIDParam(w, r)
	if !ok {
		return
	}

	members, err := h.service.ListMembers(r.Context(), userID, groupID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	out := make([]memberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, toMemberResponse(m))
	}
	writeJSON(w, http.StatusOK, out)
}
