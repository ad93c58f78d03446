// Package studygroup は勉強会グループの一覧・作成・参加のドメインロジックを提供する。
package studygroup

import (
	"context"
	"errors"
	"fmt"

	"github.com/hitoshi/studyhub/internal/membership"
	"github.com/hitoshi/studyhub/internal/metrics"
	"github.com/hitoshi/studyhub/internal/model"
	"github.com/hitoshi/studyhub/internal/repository"
)

// Service は勉強会グループのサービス層。
type Service struct {
	groups  repository.GroupRepository
	members repository.MembershipRepository
	gate    *membership.Gate
	metrics metrics.MetricsCollector
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	groups repository.GroupRepository,
	members repository.MembershipRepository,
	gate *membership.Gate,
	collector metrics.MetricsCollector,
) *Service {
	return &Service{
		groups:  groups,
		members: members,
		gate:    gate,
		metrics: collector,
	}
}

// ListGroups は全グループをメンバー数付きで返す。
func (s *Service) ListGroups(ctx context.Context) ([]model.GroupWithCount, error) {
	groups, err := s.groups.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("グループ一覧の取得に失敗しました: %w", err)
	}
	return s.withCounts(ctx, groups)
}

// ListMyGroups はユーザーが所属している、または作成したグループをメンバー数付きで返す。
func (s *Service) ListMyGroups(ctx context.Context, userID int64) ([]model.GroupWithCount, error) {
	groups, err := s.groups.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("所属グループ一覧の取得に失敗しました: %w", err)
	}
	return s.withCounts(ctx, groups)
}

// CreateGroup はグループを作成し、作成者をメンバーとして登録する。
// グループと作成者の所属は1つの単位として作成される。
func (s *Service) CreateGroup(ctx context.Context, userID int64, name, description string) (*model.GroupWithCount, error) {
	group := &model.StudyGroup{
		Name:        name,
		Description: description,
		CreatedBy:   userID,
	}
	if _, err := s.groups.CreateWithCreator(ctx, group); err != nil {
		return nil, fmt.Errorf("グループの作成に失敗しました: %w", err)
	}
	s.metrics.RecordGroupCreated()

	count, err := s.gate.MembershipCount(ctx, group.ID)
	if err != nil {
		return nil, err
	}
	return &model.GroupWithCount{StudyGroup: *group, MemberCount: count}, nil
}

// JoinGroup はユーザーをグループに参加させる。
// グループが存在しない場合はGROUP_NOT_FOUND、参加済みの場合はALREADY_MEMBERを返す。
func (s *Service) JoinGroup(ctx context.Context, userID, groupID int64) (*model.GroupMember, error) {
	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("グループの取得に失敗しました: %w", err)
	}
	if group == nil {
		return nil, model.NewGroupNotFoundError(groupID)
	}

	member := &model.GroupMember{GroupID: groupID, UserID: userID}
	if err := s.members.AddIfAbsent(ctx, member); err != nil {
		if errors.Is(err, repository.ErrAlreadyMember) {
			return nil, model.NewAlreadyMemberError()
		}
		return nil, fmt.Errorf("グループへの参加に失敗しました: %w", err)
	}
	return member, nil
}

// ListMembers はグループの所属一覧を返す。呼び出し元がメンバーでない場合は拒否する。
func (s *Service) ListMembers(ctx context.Context, userID, groupID int64) ([]*model.GroupMember, error) {
	if err := s.gate.Authorize(ctx, userID, groupID, "view members"); err != nil {
		return nil, err
	}
	members, err := s.members.ListByGroupID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("所属一覧の取得に失敗しました: %w", err)
	}
	return members, nil
}

func (s *Service) withCounts(ctx context.Context, groups []*model.StudyGroup) ([]model.GroupWithCount, error) {
	results := make([]model.GroupWithCount, len(groups))
	for i, g := range groups {
		count, err := s.gate.MembershipCount(ctx, g.ID)
		if err != nil {
			return nil, err
		}
		results[i] = model.GroupWithCount{StudyGroup: *g, MemberCount: count}
	}
	return results, nil
}
