// Package note はグループで共有するノートのドメインロジックを提供する。
package note

import (
	"context"
	"fmt"

	"github.com/hitoshi/studyhub/internal/membership"
	"github.com/hitoshi/studyhub/internal/model"
	"github.com/hitoshi/studyhub/internal/repository"
)

// CreateInput はノート作成の入力。
type CreateInput struct {
	Title    string
	FileType string
	GroupID  int64
	FileURL  string
}

// Service は共有ノートのサービス層。
type Service struct {
	repo repository.NoteRepository
	gate *membership.Gate
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.NoteRepository, gate *membership.Gate) *Service {
	return &Service{repo: repo, gate: gate}
}

// ListNotes は全ノートを返す。
func (s *Service) ListNotes(ctx context.Context) ([]*model.Note, error) {
	notes, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ノート一覧の取得に失敗しました: %w", err)
	}
	return notes, nil
}

// ListGroupNotes はグループのノートを返す。呼び出し元がメンバーでない場合は拒否する。
func (s *Service) ListGroupNotes(ctx context.Context, userID, groupID int64) ([]*model.Note, error) {
	if err := s.gate.Authorize(ctx, userID, groupID, "view notes"); err != nil {
		return nil, err
	}
	notes, err := s.repo.ListByGroupID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("グループのノート一覧の取得に失敗しました: %w", err)
	}
	return notes, nil
}

// CreateNote はノートを登録する。登録者はグループのメンバーでなければならない。
func (s *Service) CreateNote(ctx context.Context, userID int64, in CreateInput) (*model.Note, error) {
	if err := s.gate.Authorize(ctx, userID, in.GroupID, "upload notes"); err != nil {
		return nil, err
	}

	n := &model.Note{
		Title:      in.Title,
		FileType:   in.FileType,
		GroupID:    in.GroupID,
		UploadedBy: userID,
		FileURL:    in.FileURL,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("ノートの登録に失敗しました: %w", err)
	}
	return n, nil
}
