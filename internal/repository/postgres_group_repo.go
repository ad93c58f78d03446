package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/studyhub/internal/model"
)

const groupColumns = `id, name, description, created_by, created_at, is_active`

// PostgresGroupRepo はPostgreSQLを使用したグループリポジトリ。
type PostgresGroupRepo struct {
	db *sql.DB
}

// NewPostgresGroupRepo はPostgresGroupRepoを生成する。
func NewPostgresGroupRepo(db *sql.DB) *PostgresGroupRepo {
	return &PostgresGroupRepo{db: db}
}

// FindByID は指定IDのグループを取得する。見つからない場合はnilを返す。
func (r *PostgresGroupRepo) FindByID(ctx context.Context, id int64) (*model.StudyGroup, error) {
	g := &model.StudyGroup{}
	err := r.db.QueryRowContext(ctx,
		`SELECT `+groupColumns+` FROM study_groups WHERE id = $1`,
		id,
	).Scan(&g.ID, &g.Name, &g.Description, &g.CreatedBy, &g.CreatedAt, &g.IsActive)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("グループの取得に失敗しました: %w", err)
	}
	return g, nil
}

// List は全グループを作成順に返す。
func (r *PostgresGroupRepo) List(ctx context.Context) ([]*model.StudyGroup, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+groupColumns+` FROM study_groups ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("グループ一覧の取得に失敗しました: %w", err)
	}
	return scanGroups(rows)
}

// ListByUserID はユーザーが所属している、またはユーザーが作成したグループを作成順に返す。
func (r *PostgresGroupRepo) ListByUserID(ctx context.Context, userID int64) ([]*model.StudyGroup, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+groupColumns+`
		 FROM study_groups g
		 WHERE g.created_by = $1
		    OR EXISTS (SELECT 1 FROM group_members m WHERE m.group_id = g.id AND m.user_id = $1)
		 ORDER BY g.id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("所属グループ一覧の取得に失敗しました: %w", err)
	}
	return scanGroups(rows)
}

// Create はグループのみを作成する。
func (r *PostgresGroupRepo) Create(ctx context.Context, group *model.StudyGroup) error {
	if err := insertGroup(ctx, r.db, group); err != nil {
		return err
	}
	return nil
}

// CreateWithCreator はグループと作成者の所属レコードを同一トランザクションで作成する。
func (r *PostgresGroupRepo) CreateWithCreator(ctx context.Context, group *model.StudyGroup) (*model.GroupMember, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertGroup(ctx, tx, group); err != nil {
		return nil, err
	}

	member := &model.GroupMember{GroupID: group.ID, UserID: group.CreatedBy}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO group_members (group_id, user_id)
		 VALUES ($1, $2)
		 RETURNING id, joined_at`,
		member.GroupID, member.UserID,
	).Scan(&member.ID, &member.JoinedAt)
	if err != nil {
		return nil, fmt.Errorf("作成者の所属登録に失敗しました: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return member, nil
}

// queryRower は*sql.DBと*sql.Txの共通部分。
type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func insertGroup(ctx context.Context, q queryRower, group *model.StudyGroup) error {
	err := q.QueryRowContext(ctx,
		`INSERT INTO study_groups (name, description, created_by)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, is_active`,
		group.Name, group.Description, group.CreatedBy,
	).Scan(&group.ID, &group.CreatedAt, &group.IsActive)
	if err != nil {
		return fmt.Errorf("グループの作成に失敗しました: %w", err)
	}
	return nil
}

func scanGroups(rows *sql.Rows) ([]*model.StudyGroup, error) {
	defer rows.Close()

	groups := []*model.StudyGroup{}
	for rows.Next() {
		g := &model.StudyGroup{}
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.CreatedBy, &g.CreatedAt, &g.IsActive); err != nil {
			return nil, fmt.Errorf("グループ行の読み取りに失敗しました: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("グループ一覧の走査に失敗しました: %w", err)
	}
	return groups, nil
}

// compile-time interface check
var _ GroupRepository = (*PostgresGroupRepo)(nil)
