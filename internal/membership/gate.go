// Package membership はグループ所属に基づくアクセス判定を提供する。
//
// グループ配下のリソース（メッセージ履歴、予定作成、ノート作成）へのアクセスは
// すべて Gate を経由して判定する。非メンバーは空の結果ではなく
// NOT_GROUP_MEMBER エラーとして扱う。
package membership

import (
	"context"
	"fmt"

	"github.com/hitoshi/studyhub/internal/model"
	"github.com/hitoshi/studyhub/internal/repository"
)

// Gate はグループ所属の判定を行う。
type Gate struct {
	repo repository.MembershipRepository
}

// NewGate はGateを生成する。
func NewGate(repo repository.MembershipRepository) *Gate {
	return &Gate{repo: repo}
}

// IsMember はユーザーがグループに所属しているかを返す。
func (g *Gate) IsMember(ctx context.Context, userID, groupID int64) (bool, error) {
	ok, err := g.repo.IsMember(ctx, userID, groupID)
	if err != nil {
		return false, fmt.Errorf("所属確認に失敗しました: %w", err)
	}
	return ok, nil
}

// MembershipCount はグループの所属数を返す。表示専用で認可には使わない。
func (g *Gate) MembershipCount(ctx context.Context, groupID int64) (int, error) {
	n, err := g.repo.CountByGroupID(ctx, groupID)
	if err != nil {
		return 0, fmt.Errorf("所属数の取得に失敗しました: %w", err)
	}
	return n, nil
}

// Authorize はユーザーがグループに所属していなければNOT_GROUP_MEMBERエラーを返す。
// グループの存在確認は行わないため、存在しないグループも非所属として拒否される。
func (g *Gate) Authorize(ctx context.Context, userID, groupID int64, action string) error {
	ok, err := g.IsMember(ctx, userID, groupID)
	if err != nil {
		return err
	}
	if !ok {
		return model.NewNotGroupMemberError(action)
	}
	return nil
}
