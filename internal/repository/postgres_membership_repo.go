package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/studyhub/internal/model"
)

// PostgresMembershipRepo はPostgreSQLを使用したグループ所属リポジトリ。
// (group_id, user_id) のユニーク制約により二重所属は発生しない。
type PostgresMembershipRepo struct {
	db *sql.DB
}

// NewPostgresMembershipRepo はPostgresMembershipRepoを生成する。
func NewPostgresMembershipRepo(db *sql.DB) *PostgresMembershipRepo {
	return &PostgresMembershipRepo{db: db}
}

// Create は所属レコードを作成する。
func (r *PostgresMembershipRepo) Create(ctx context.Context, member *model.GroupMember) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO group_members (group_id, user_id)
		 VALUES ($1, $2)
		 RETURNING id, joined_at`,
		member.GroupID, member.UserID,
	).Scan(&member.ID, &member.JoinedAt)
	if isUniqueViolation(err) {
		return ErrAlreadyMember
	}
	if err != nil {
		return fmt.Errorf("所属の作成に失敗しました: %w", err)
	}
	return nil
}

// AddIfAbsent は未所属の場合のみ所属レコードを作成する。
// ON CONFLICT DO NOTHING で挿入されなかった場合はErrAlreadyMemberを返す。
func (r *PostgresMembershipRepo) AddIfAbsent(ctx context.Context, member *model.GroupMember) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO group_members (group_id, user_id)
		 VALUES ($1, $2)
		 ON CONFLICT (group_id, user_id) DO NOTHING
		 RETURNING id, joined_at`,
		member.GroupID, member.UserID,
	).Scan(&member.ID, &member.JoinedAt)
	if err == sql.ErrNoRows {
		return ErrAlreadyMember
	}
	if err != nil {
		return fmt.Errorf("所属の追加に失敗しました: %w", err)
	}
	return nil
}

// IsMember はユーザーがグループに所属しているかを返す。
func (r *PostgresMembershipRepo) IsMember(ctx context.Context, userID, groupID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM group_members WHERE group_id = $1 AND user_id = $2)`,
		groupID, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("所属確認に失敗しました: %w", err)
	}
	return exists, nil
}

// CountByGroupID はグループの所属レコード数を返す。
func (r *PostgresMembershipRepo) CountByGroupID(ctx context.Context, groupID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM group_members WHERE group_id = $1`,
		groupID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("所属数の取得に失敗しました: %w", err)
	}
	return count, nil
}

// ListByGroupID はグループの所属レコードを参加順に返す。
func (r *PostgresMembershipRepo) ListByGroupID(ctx context.Context, groupID int64) ([]*model.GroupMember, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, group_id, user_id, joined_at
		 FROM group_members WHERE group_id = $1 ORDER BY id ASC`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("所属一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	members := []*model.GroupMember{}
	for rows.Next() {
		m := &model.GroupMember{}
		if err := rows.Scan(&m.ID, &m.GroupID, &m.UserID, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("所属行の読み取りに失敗しました: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("所属一覧の走査に失敗しました: %w", err)
	}
	return members, nil
}

// List は全所属レコードを参加順に返す。
func (r *PostgresMembershipRepo) List(ctx context.Context) ([]*model.GroupMember, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, group_id, user_id, joined_at FROM group_members ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("所属一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	members := []*model.GroupMember{}
	for rows.Next() {
		m := &model.GroupMember{}
		if err := rows.Scan(&m.ID, &m.GroupID, &m.UserID, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("所属行の読み取りに失敗しました: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("所属一覧の走査に失敗しました: %w", err)
	}
	return members, nil
}

// compile-time interface check
var _ MembershipRepository = (*PostgresMembershipRepo)(nil)
