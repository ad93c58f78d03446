package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/studyhub/internal/model"
)

// MessageHistoryInterface はメッセージ履歴ハンドラーが必要とするサービスインターフェース。
type MessageHistoryInterface interface {
	ListGroupMessages(ctx context.Context, userID, groupID int64) ([]model.MessageWithAuthor, error)
}

// MessageHandler はチャット履歴のHTTPハンドラー。
type MessageHandler struct {
	history MessageHistoryInterface
}

// NewMessageHandler はMessageHandlerを生成する。
func NewMessageHandler(history MessageHistoryInterface) *MessageHandler {
	return &MessageHandler{history: history}
}

// ListGroupMessages はグループのメッセージを送信順に返す。
// GET /api/groups/{id}/messages
func (h *MessageHandler) ListGroupMessages(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	groupID, ok := groupIDParam(w, r)
	if !ok {
		return
	}

	msgs, err := h.history.ListGroupMessages(r.Context(), userID, groupID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMessageResponses(msgs))
}
