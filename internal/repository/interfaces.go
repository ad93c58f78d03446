// Package repository はデータ永続化のインターフェースを定義する。
//
// すべての Find 系メソッドは対象が存在しない場合 nil, nil を返す。
// Create 系メソッドは渡されたレコードにIDとサーバー側タイムスタンプを書き込む。
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/hitoshi/studyhub/internal/model"
)

var (
	// ErrDuplicateUsername は既に使われているユーザー名で作成しようとした場合のエラー。
	ErrDuplicateUsername = errors.New("username already exists")

	// ErrAlreadyMember は既に所属しているグループに再度参加しようとした場合のエラー。
	ErrAlreadyMember = errors.New("user is already a member of this group")
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.User, error)

	// FindByUsername はユーザー名でユーザーを検索する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// List は全ユーザーを作成順に返す。
	List(ctx context.Context) ([]*model.User, error)

	// Create はユーザーを作成する。
	// ユーザー名が重複する場合はErrDuplicateUsernameを返す。
	Create(ctx context.Context, user *model.User) error
}

// GroupRepository はグループデータの永続化インターフェース。
type GroupRepository interface {
	// FindByID は指定IDのグループを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.StudyGroup, error)

	// List は全グループを作成順に返す。
	List(ctx context.Context) ([]*model.StudyGroup, error)

	// ListByUserID はユーザーが所属している、またはユーザーが作成したグループを返す。
	ListByUserID(ctx context.Context, userID int64) ([]*model.StudyGroup, error)

	// Create はグループのみを作成する。IsActiveはtrueで作成される。
	Create(ctx context.Context, group *model.StudyGroup) error

	// CreateWithCreator はグループと作成者の所属レコードを1つの単位として作成する。
	// どちらか一方だけが観測される状態は発生しない。
	CreateWithCreator(ctx context.Context, group *model.StudyGroup) (*model.GroupMember, error)
}

// MembershipRepository はグループ所属データの永続化インターフェース。
type MembershipRepository interface {
	// Create は所属レコードを重複チェックなしで作成する。
	Create(ctx context.Context, member *model.GroupMember) error

	// AddIfAbsent は未所属の場合のみ所属レコードを作成する。
	// 確認と作成は不可分に行われ、所属済みの場合はErrAlreadyMemberを返す。
	AddIfAbsent(ctx context.Context, member *model.GroupMember) error

	// IsMember はユーザーがグループに所属しているかを返す。
	IsMember(ctx context.Context, userID, groupID int64) (bool, error)

	// CountByGroupID はグループの所属レコード数を返す。
	CountByGroupID(ctx context.Context, groupID int64) (int, error)

	// ListByGroupID はグループの所属レコードを参加順に返す。
	ListByGroupID(ctx context.Context, groupID int64) ([]*model.GroupMember, error)

	// List は全グループの所属レコードを参加順に返す。
	List(ctx context.Context) ([]*model.GroupMember, error)
}

// MeetingRepository は勉強会予定の永続化インターフェース。
type MeetingRepository interface {
	// Create は予定を作成する。
	Create(ctx context.Context, meeting *model.Meeting) error

	// FindByID は指定IDの予定を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Meeting, error)

	// List は全予定を作成順に返す。
	List(ctx context.Context) ([]*model.Meeting, error)

	// ListByGroupID はグループの予定を作成順に返す。
	ListByGroupID(ctx context.Context, groupID int64) ([]*model.Meeting, error)
}

// NoteRepository は共有ノートの永続化インターフェース。
type NoteRepository interface {
	// Create はノートを作成する。
	Create(ctx context.Context, note *model.Note) error

	// FindByID は指定IDのノートを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Note, error)

	// List は全ノートを作成順に返す。
	List(ctx context.Context) ([]*model.Note, error)

	// ListByGroupID はグループのノートを作成順に返す。
	ListByGroupID(ctx context.Context, groupID int64) ([]*model.Note, error)
}

// MessageRepository はチャットメッセージの永続化インターフェース。
type MessageRepository interface {
	// Create はメッセージを作成する。
	Create(ctx context.Context, message *model.Message) error

	// FindByID は指定IDのメッセージを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Message, error)

	// List は全メッセージを作成順に返す。
	List(ctx context.Context) ([]*model.Message, error)

	// ListByGroupID はグループのメッセージをsent_atの昇順で返す。
	// sent_atが同一の場合はID順。
	ListByGroupID(ctx context.Context, groupID int64) ([]*model.Message, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteExpired はnow時点で期限切れのセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
