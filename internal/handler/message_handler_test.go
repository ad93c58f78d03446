package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/studyhub/internal/model"
)

type mockMessageHistory struct {
	listGroupMessagesFn func(ctx context.Context, userID, groupID int64) ([]model.MessageWithAuthor, error)
}

func (m *mockMessageHistory) ListGroupMessages(ctx context.Context, userID, groupID int64) ([]model.MessageWithAuthor, error) {
	if m.listGroupMessagesFn != nil {
		return m.listGroupMessagesFn(ctx, userID, groupID)
	}
	return nil, nil
}

func TestMessageHandler_ListGroupMessages_WithAuthor(t *testing.T) {
	sentAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := &mockMessageHistory{
		listGroupMessagesFn: func(ctx context.Context, userID, groupID int64) ([]model.MessageWithAuthor, error) {
			return []model.MessageWithAuthor{
				{
					Message: model.Message{ID: 1, Content: "hi", GroupID: groupID, UserID: 1, SentAt: sentAt},
					Author:  &model.AuthorSummary{ID: 1, Name: "Alice", Username: "alice"},
				},
				{
					Message: model.Message{ID: 2, Content: "ghost", GroupID: groupID, UserID: 42, SentAt: sentAt},
				},
			}, nil
		},
	}
	h := NewMessageHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/groups/1/messages", nil)
	req = withChiURLParam(withUserID(req, 1), "id", "1")
	w := httptest.NewRecorder()

	h.ListGroupMessages(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var result []map[string]any
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("len = %d, want 2", len(result))
	}
	author, ok := result[0]["user"].(map[string]any)
	if !ok || author["username"] != "alice" {
		t.Errorf("user = %v, want alice", result[0]["user"])
	}
	if v, present := result[1]["user"]; !present || v != nil {
		t.Errorf("user = %v, want null", v)
	}
}

func TestMessageHandler_ListGroupMessages_InvalidID(t *testing.T) {
	h := NewMessageHandler(&mockMessageHistory{})

	req := httptest.NewRequest(http.MethodGet, "/api/groups/x/messages", nil)
	req = withChiURLParam(withUserID(req, 1), "id", "x")
	w := httptest.NewRecorder()

	h.ListGroupMessages(w, req)

	assertErrorCode(t, w, http.StatusBadRequest, model.ErrCodeInvalidGroupID)
}

func TestMessageHandler_ListGroupMessages_NotMember(t *testing.T) {
	svc := &mockMessageHistory{
		listGroupMessagesFn: func(ctx context.Context, userID, groupID int64) ([]model.MessageWithAuthor, error) {
			return nil, model.NewNotGroupMemberError("access messages")
		},
	}
	h := NewMessageHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/groups/99/messages", nil)
	req = withChiURLParam(withUserID(req, 1), "id", "99")
	w := httptest.NewRecorder()

	h.ListGroupMessages(w, req)

	assertErrorCode(t, w, http.StatusForbidden, model.ErrCodeNotGroupMember)
}
