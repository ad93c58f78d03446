// Package meeting は勉強会予定のドメインロジックを提供する。
package meeting

import (
	"context"
	"fmt"

	"github.com/hitoshi/studyhub/internal/membership"
	"github.com/hitoshi/studyhub/internal/model"
	"github.com/hitoshi/studyhub/internal/repository"
)

// CreateInput は予定作成の入力。
type CreateInput struct {
	Title   string
	Date    string
	Time    string
	GroupID int64
}

// Service は勉強会予定のサービス層。
type Service struct {
	repo repository.MeetingRepository
	gate *membership.Gate
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.MeetingRepository, gate *membership.Gate) *Service {
	return &Service{repo: repo, gate: gate}
}

// ListMeetings は全予定を返す。
func (s *Service) ListMeetings(ctx context.Context) ([]*model.Meeting, error) {
	meetings, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("予定一覧の取得に失敗しました: %w", err)
	}
	return meetings, nil
}

// ListGroupMeetings はグループの予定を返す。呼び出し元がメンバーでない場合は拒否する。
func (s *Service) ListGroupMeetings(ctx context.Context, userID, groupID int64) ([]*model.Meeting, error) {
	if err := s.gate.Authorize(ctx, userID, groupID, "view meetings"); err != nil {
		return nil, err
	}
	meetings, err := s.repo.ListByGroupID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("グループの予定一覧の取得に失敗しました: %w", err)
	}
	return meetings, nil
}

// CreateMeeting は予定を作成する。作成者はグループのメンバーでなければならない。
func (s *Service) CreateMeeting(ctx context.Context, userID int64, in CreateInput) (*model.Meeting, error) {
	if err := s.gate.Authorize(ctx, userID, in.GroupID, "schedule a meeting"); err != nil {
		return nil, err
	}

	m := &model.Meeting{
		Title:     in.Title,
		Date:      in.Date,
		Time:      in.Time,
		GroupID:   in.GroupID,
		CreatedBy: userID,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("予定の作成に失敗しました: %w", err)
	}
	return m, nil
}
