package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/studyhub/internal/model"
)

const meetingColumns = `id, title, date, time, group_id, created_by, created_at`

// PostgresMeetingRepo はPostgreSQLを使用した予定リポジトリ。
type PostgresMeetingRepo struct {
	db *sql.DB
}

// NewPostgresMeetingRepo はPostgresMeetingRepoを生成する。
func NewPostgresMeetingRepo(db *sql.DB) *PostgresMeetingRepo {
	return &PostgresMeetingRepo{db: db}
}

// Create は予定を作成する。
func (r *PostgresMeetingRepo) Create(ctx context.Context, m *model.Meeting) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO meetings (title, date, time, group_id, created_by)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		m.Title, m.Date, m.Time, m.GroupID, m.CreatedBy,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("予定の作成に失敗しました: %w", err)
	}
	return nil
}

// FindByID は指定IDの予定を取得する。見つからない場合はnilを返す。
func (r *PostgresMeetingRepo) FindByID(ctx context.Context, id int64) (*model.Meeting, error) {
	m := &model.Meeting{}
	err := r.db.QueryRowContext(ctx,
		`SELECT `+meetingColumns+` FROM meetings WHERE id = $1`, id,
	).Scan(&m.ID, &m.Title, &m.Date, &m.Time, &m.GroupID, &m.CreatedBy, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("予定の取得に失敗しました: %w", err)
	}
	return m, nil
}

// List は全予定を作成順に返す。
func (r *PostgresMeetingRepo) List(ctx context.Context) ([]*model.Meeting, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+meetingColumns+` FROM meetings ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("予定一覧の取得に失敗しました: %w", err)
	}
	return scanMeetings(rows)
}

// ListByGroupID はグループの予定を作成順に返す。
func (r *PostgresMeetingRepo) ListByGroupID(ctx context.Context, groupID int64) ([]*model.Meeting, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+meetingColumns+` FROM meetings WHERE group_id = $1 ORDER BY id ASC`, groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("グループの予定一覧の取得に失敗しました: %w", err)
	}
	return scanMeetings(rows)
}

func scanMeetings(rows *sql.Rows) ([]*model.Meeting, error) {
	defer rows.Close()

	meetings := []*model.Meeting{}
	for rows.Next() {
		m := &model.Meeting{}
		if err := rows.Scan(&m.ID, &m.Title, &m.Date, &m.Time, &m.GroupID, &m.CreatedBy, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("予定行の読み取りに失敗しました: %w", err)
		}
		meetings = append(meetings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("予定一覧の走査に失敗しました: %w", err)
	}
	return meetings, nil
}

// compile-time interface check
var _ MeetingRepository = (*PostgresMeetingRepo)(nil)
