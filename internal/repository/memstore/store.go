// Package memstore はプロセス内メモリに全エンティティを保持するリポジトリ実装を提供する。
//
// Store は起動時に1つだけ生成し、各サービスに注入する。グローバル変数は持たない。
// エンティティ種別ごとのリポジトリは Store の状態と1つのミューテックスを共有するため、
// 複数種別にまたがる操作（グループ作成と作成者の所属登録など）も不可分に実行できる。
package memstore

import (
	"sort"
	"sync"
	"time"

	"github.com/hitoshi/studyhub/internal/model"
	"github.com/hitoshi/studyhub/internal/repository"
)

// Store はメモリ上のエンティティストア。
// スライスは挿入順を保持し、IDカウンタは種別ごとに1から単調増加する。
type Store struct {
	mu  sync.Mutex
	now func() time.Time

	users    []*model.User
	groups   []*model.StudyGroup
	members  []*model.GroupMember
	meetings []*model.Meeting
	notes    []*model.Note
	messages []*model.Message
	sessions map[string]*model.Session

	lastUserID    int64
	lastGroupID   int64
	lastMemberID  int64
	lastMeetingID int64
	lastNoteID    int64
	lastMessageID int64
}

// Option はStoreの生成オプション。
type Option func(*Store)

// WithClock はタイムスタンプ付与に使う時刻関数を差し替える。
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New は空のStoreを生成する。
func New(opts ...Option) *Store {
	s := &Store{
		now:      time.Now,
		sessions: make(map[string]*model.Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Users はユーザーリポジトリを返す。
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// Groups はグループリポジトリを返す。
func (s *Store) Groups() *GroupRepo { return &GroupRepo{s: s} }

// Memberships はグループ所属リポジトリを返す。
func (s *Store) Memberships() *MembershipRepo { return &MembershipRepo{s: s} }

// Meetings は予定リポジトリを返す。
func (s *Store) Meetings() *MeetingRepo { return &MeetingRepo{s: s} }

// Notes はノートリポジトリを返す。
func (s *Store) Notes() *NoteRepo { return &NoteRepo{s: s} }

// Messages はメッセージリポジトリを返す。
func (s *Store) Messages() *MessageRepo { return &MessageRepo{s: s} }

// Sessions はセッションリポジトリを返す。
func (s *Store) Sessions() *SessionRepo { return &SessionRepo{s: s} }

// insertMemberLocked は所属レコードを追加する。呼び出し側でmuを保持すること。
func (s *Store) insertMemberLocked(m *model.GroupMember) {
	s.lastMemberID++
	m.ID = s.lastMemberID
	m.JoinedAt = s.now()
	cp := *m
	s.members = append(s.members, &cp)
}

// isMemberLocked は所属有無を返す。呼び出し側でmuを保持すること。
func (s *Store) isMemberLocked(userID, groupID int64) bool {
	for _, m := range s.members {
		if m.GroupID == groupID && m.UserID == userID {
			return true
		}
	}
	return false
}

// copyAll はレコードのコピーを返し、呼び出し側による内部状態の書き換えを防ぐ。
func copyAll[T any](src []*T, keep func(*T) bool) []*T {
	out := make([]*T, 0, len(src))
	for _, v := range src {
		if keep != nil && !keep(v) {
			continue
		}
		cp := *v
		out = append(out, &cp)
	}
	return out
}

func findByID[T any](src []*T, id int64, idOf func(*T) int64) *T {
	for _, v := range src {
		if idOf(v) == id {
			cp := *v
			return &cp
		}
	}
	return nil
}

// sortMessages はsent_at昇順、同時刻はID昇順に並べる。
func sortMessages(msgs []*model.Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].SentAt.Equal(msgs[j].SentAt) {
			return msgs[i].ID < msgs[j].ID
		}
		return msgs[i].SentAt.Before(msgs[j].SentAt)
	})
}

// compile-time interface checks
var (
	_ repository.UserRepository       = (*UserRepo)(nil)
	_ repository.GroupRepository      = (*GroupRepo)(nil)
	_ repository.MembershipRepository = (*MembershipRepo)(nil)
	_ repository.MeetingRepository    = (*MeetingRepo)(nil)
	_ repository.NoteRepository       = (*NoteRepo)(nil)
	_ repository.MessageRepository    = (*MessageRepo)(nil)
	_ repository.SessionRepository    = (*SessionRepo)(nil)
)
