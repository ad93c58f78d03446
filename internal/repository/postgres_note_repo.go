package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/studyhub/internal/model"
)

const noteColumns = `id, title, file_type, group_id, uploaded_by, uploaded_at, file_url`

// PostgresNoteRepo はPostgreSQLを使用したノートリポジトリ。
type PostgresNoteRepo struct {
	db *sql.DB
}

// NewPostgresNoteRepo はPostgresNoteRepoを生成する。
func NewPostgresNoteRepo(db *sql.DB) *PostgresNoteRepo {
	return &PostgresNoteRepo{db: db}
}

// Create はノートを作成する。
func (r *PostgresNoteRepo) Create(ctx context.Context, n *model.Note) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO notes (title, file_type, group_id, uploaded_by, file_url)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, uploaded_at`,
		n.Title, n.FileType, n.GroupID, n.UploadedBy, n.FileURL,
	).Scan(&n.ID, &n.UploadedAt)
	if err != nil {
		return fmt.Errorf("ノートの作成に失敗しました: %w", err)
	}
	return nil
}

// FindByID は指定IDのノートを取得する。見つからない場合はnilを返す。
func (r *PostgresNoteRepo) FindByID(ctx context.Context, id int64) (*model.Note, error) {
	n := &model.Note{}
	err := r.db.QueryRowContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE id = $1`, id,
	).Scan(&n.ID, &n.Title, &n.FileType, &n.GroupID, &n.UploadedBy, &n.UploadedAt, &n.FileURL)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ノートの取得に失敗しました: %w", err)
	}
	return n, nil
}

// List は全ノートを作成順に返す。
func (r *PostgresNoteRepo) List(ctx context.Context) ([]*model.Note, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+noteColumns+` FROM notes ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("ノート一覧の取得に失敗しました: %w", err)
	}
	return scanNotes(rows)
}

// ListByGroupID はグループのノートを作成順に返す。
func (r *PostgresNoteRepo) ListByGroupID(ctx context.Context, groupID int64) ([]*model.Note, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE group_id = $1 ORDER BY id ASC`, groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("グループのノート一覧の取得に失敗しました: %w", err)
	}
	return scanNotes(rows)
}

func scanNotes(rows *sql.Rows) ([]*model.Note, error) {
	defer rows.Close()

	notes := []*model.Note{}
	for rows.Next() {
		n := &model.Note{}
		if err := rows.Scan(&n.ID, &n.Title, &n.FileType, &n.GroupID, &n.UploadedBy, &n.UploadedAt, &n.FileURL); err != nil {
			return nil, fmt.Errorf("ノート行の読み取りに失敗しました: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ノート一覧の走査に失敗しました: %w", err)
	}
	return notes, nil
}

// compile-time interface check
var _ NoteRepository = (*PostgresNoteRepo)(nil)
