package chat

import (
	"context"
	"fmt"

	"github.com/hitoshi/studyhub/internal/membership"
	"github.com/hitoshi/studyhub/internal/model"
	"github.com/hitoshi/studyhub/internal/repository"
)

// History はグループのメッセージ履歴を提供する。
type History struct {
	messages repository.MessageRepository
	users    repository.UserRepository
	gate     *membership.Gate
}

// NewHistory はHistoryを生成する。
func NewHistory(messages repository.MessageRepository, users repository.UserRepository, gate *membership.Gate) *History {
	return &History{messages: messages, users: users, gate: gate}
}

// ListGroupMessages はグループのメッセージを送信日時の昇順で、投稿者情報付きで返す。
// 非メンバーにはNOT_GROUP_MEMBERエラーを返す。
func (h *History) ListGroupMessages(ctx context.Context, userID, groupID int64) ([]model.MessageWithAuthor, error) {
	if err := h.gate.Authorize(ctx, userID, groupID, "access messages"); err != nil {
		return nil, err
	}

	msgs, err := h.messages.ListByGroupID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("メッセージ履歴の取得に失敗しました: %w", err)
	}

	authors := make(map[int64]*model.AuthorSummary)
	result := make([]model.MessageWithAuthor, 0, len(msgs))
	for _, m := range msgs {
		author, ok := authors[m.UserID]
		if !ok {
			u, err := h.users.FindByID(ctx, m.UserID)
			if err != nil {
				return nil, fmt.Errorf("投稿者の取得に失敗しました: %w", err)
			}
			if u != nil {
				author = &model.AuthorSummary{ID: u.ID, Name: u.Name, Username: u.Username}
			}
			authors[m.UserID] = author
		}
		result = append(result, model.MessageWithAuthor{Message: *m, Author: author})
	}
	return result, nil
}
