package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/studyhub/internal/model"
)

// PostgresMessageRepo はPostgreSQLを使用したチャットメッセージリポジトリ。
type PostgresMessageRepo struct {
	db *sql.DB
}

// NewPostgresMessageRepo はPostgresMessageRepoを生成する。
func NewPostgresMessageRepo(db *sql.DB) *PostgresMessageRepo {
	return &PostgresMessageRepo{db: db}
}

// Create はメッセージを作成する。
func (r *PostgresMessageRepo) Create(ctx context.Context, msg *model.Message) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO messages (content, group_id, user_id)
		 VALUES ($1, $2, $3)
		 RETURNING id, sent_at`,
		msg.Content, msg.GroupID, msg.UserID,
	).Scan(&msg.ID, &msg.SentAt)
	if err != nil {
		return fmt.Errorf("メッセージの保存に失敗しました: %w", err)
	}
	return nil
}

// FindByID は指定IDのメッセージを取得する。見つからない場合はnilを返す。
func (r *PostgresMessageRepo) FindByID(ctx context.Context, id int64) (*model.Message, error) {
	msg := &model.Message{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, content, group_id, user_id, sent_at FROM messages WHERE id = $1`, id,
	).Scan(&msg.ID, &msg.Content, &msg.GroupID, &msg.UserID, &msg.SentAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("メッセージの取得に失敗しました: %w", err)
	}
	return msg, nil
}

// List は全メッセージを作成順に返す。
func (r *PostgresMessageRepo) List(ctx context.Context) ([]*model.Message, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, content, group_id, user_id, sent_at FROM messages ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("メッセージ一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	msgs := []*model.Message{}
	for rows.Next() {
		msg := &model.Message{}
		if err := rows.Scan(&msg.ID, &msg.Content, &msg.GroupID, &msg.UserID, &msg.SentAt); err != nil {
			return nil, fmt.Errorf("メッセージ行の読み取りに失敗しました: %w", err)
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("メッセージ一覧の走査に失敗しました: %w", err)
	}
	return msgs, nil
}

// ListByGroupID はグループのメッセージをsent_at昇順、同時刻はID順で返す。
func (r *PostgresMessageRepo) ListByGroupID(ctx context.Context, groupID int64) ([]*model.Message, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, content, group_id, user_id, sent_at
		 FROM messages
		 WHERE group_id = $1
		 ORDER BY sent_at ASC, id ASC`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("メッセージ一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	msgs := []*model.Message{}
	for rows.Next() {
		msg := &model.Message{}
		if err := rows.Scan(&msg.ID, &msg.Content, &msg.GroupID, &msg.UserID, &msg.SentAt); err != nil {
			return nil, fmt.Errorf("メッセージ行の読み取りに失敗しました: %w", err)
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("メッセージ一覧の走査に失敗しました: %w", err)
	}
	return msgs, nil
}

// compile-time interface check
var _ MessageRepository = (*PostgresMessageRepo)(nil)
