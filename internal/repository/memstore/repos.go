package memstore

import (
	"context"
	"time"

	"github.com/hitoshi/studyhub/internal/model"
	"github.com/hitoshi/studyhub/internal/repository"
)

// UserRepo はメモリ上のユーザーリポジトリ。
type UserRepo struct{ s *Store }

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *UserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return findByID(r.s.users, id, func(u *model.User) int64 { return u.ID }), nil
}

// FindByUsername はユーザー名でユーザーを検索する。見つからない場合はnilを返す。
func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// List は全ユーザーを作成順に返す。
func (r *UserRepo) List(ctx context.Context) ([]*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return copyAll(r.s.users, nil), nil
}

// Create はユーザーを作成する。ユーザー名が重複する場合はErrDuplicateUsernameを返す。
func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == user.Username {
			return repository.ErrDuplicateUsername
		}
	}
	r.s.lastUserID++
	user.ID = r.s.lastUserID
	user.CreatedAt = r.s.now()
	cp := *user
	r.s.users = append(r.s.users, &cp)
	return nil
}

// GroupRepo はメモリ上のグループリポジトリ。
type GroupRepo struct{ s *Store }

// FindByID は指定IDのグループを取得する。見つからない場合はnilを返す。
func (r *GroupRepo) FindByID(ctx context.Context, id int64) (*model.StudyGroup, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return findByID(r.s.groups, id, func(g *model.StudyGroup) int64 { return g.ID }), nil
}

// List は全グループを作成順に返す。
func (r *GroupRepo) List(ctx context.Context) ([]*model.StudyGroup, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return copyAll(r.s.groups, nil), nil
}

// ListByUserID はユーザーが所属している、またはユーザーが作成したグループを作成順に返す。
func (r *GroupRepo) ListByUserID(ctx context.Context, userID int64) ([]*model.StudyGroup, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	joined := make(map[int64]bool)
	for _, m := range r.s.members {
		if m.UserID == userID {
			joined[m.GroupID] = true
		}
	}
	return copyAll(r.s.groups, func(g *model.StudyGroup) bool {
		return joined[g.ID] || g.CreatedBy == userID
	}), nil
}

// Create はグループのみを作成する。
func (r *GroupRepo) Create(ctx context.Context, group *model.StudyGroup) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.insertGroupLocked(group)
	return nil
}

// CreateWithCreator はグループと作成者の所属レコードを同一ロック内で作成する。
func (r *GroupRepo) CreateWithCreator(ctx context.Context, group *model.StudyGroup) (*model.GroupMember, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.insertGroupLocked(group)
	member := &model.GroupMember{GroupID: group.ID, UserID: group.CreatedBy}
	r.s.insertMemberLocked(member)
	return member, nil
}

func (r *GroupRepo) insertGroupLocked(group *model.StudyGroup) {
	r.s.lastGroupID++
	group.ID = r.s.lastGroupID
	group.CreatedAt = r.s.now()
	group.IsActive = true
	cp := *group
	r.s.groups = append(r.s.groups, &cp)
}

// MembershipRepo はメモリ上のグループ所属リポジトリ。
type MembershipRepo struct{ s *Store }

// Create は所属レコードを重複チェックなしで作成する。
func (r *MembershipRepo) Create(ctx context.Context, member *model.GroupMember) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.insertMemberLocked(member)
	return nil
}

// AddIfAbsent は未所属の場合のみ所属レコードを作成する。
func (r *MembershipRepo) AddIfAbsent(ctx context.Context, member *model.GroupMember) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.isMemberLocked(member.UserID, member.GroupID) {
		return repository.ErrAlreadyMember
	}
	r.s.insertMemberLocked(member)
	return nil
}

// IsMember はユーザーがグループに所属しているかを返す。
func (r *MembershipRepo) IsMember(ctx context.Context, userID, groupID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.isMemberLocked(userID, groupID), nil
}

// CountByGroupID はグループの所属レコード数を返す。
func (r *MembershipRepo) CountByGroupID(ctx context.Context, groupID int64) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, m := range r.s.members {
		if m.GroupID == groupID {
			n++
		}
	}
	return n, nil
}

// ListByGroupID はグループの所属レコードを参加順に返す。
func (r *MembershipRepo) ListByGroupID(ctx context.Context, groupID int64) ([]*model.GroupMember, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return copyAll(r.s.members, func(m *model.GroupMember) bool { return m.GroupID == groupID }), nil
}

// List は全所属レコードを参加順に返す。
func (r *MembershipRepo) List(ctx context.Context) ([]*model.GroupMember, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return copyAll(r.s.members, nil), nil
}

// MeetingRepo はメモリ上の予定リポジトリ。
type MeetingRepo struct{ s *Store }

// Create は予定を作成する。
func (r *MeetingRepo) Create(ctx context.Context, meeting *model.Meeting) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.lastMeetingID++
	meeting.ID = r.s.lastMeetingID
	meeting.CreatedAt = r.s.now()
	cp := *meeting
	r.s.meetings = append(r.s.meetings, &cp)
	return nil
}

// FindByID は指定IDの予定を取得する。見つからない場合はnilを返す。
func (r *MeetingRepo) FindByID(ctx context.Context, id int64) (*model.Meeting, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return findByID(r.s.meetings, id, func(m *model.Meeting) int64 { return m.ID }), nil
}

// List は全予定を作成順に返す。
func (r *MeetingRepo) List(ctx context.Context) ([]*model.Meeting, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return copyAll(r.s.meetings, nil), nil
}

// ListByGroupID はグループの予定を作成順に返す。
func (r *MeetingRepo) ListByGroupID(ctx context.Context, groupID int64) ([]*model.Meeting, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return copyAll(r.s.meetings, func(m *model.Meeting) bool { return m.GroupID == groupID }), nil
}

// NoteRepo はメモリ上のノートリポジトリ。
type NoteRepo struct{ s *Store }

// Create はノートを作成する。
func (r *NoteRepo) Create(ctx context.Context, note *model.Note) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.lastNoteID++
	note.ID = r.s.lastNoteID
	note.UploadedAt = r.s.now()
	cp := *note
	r.s.notes = append(r.s.notes, &cp)
	return nil
}

// FindByID は指定IDのノートを取得する。見つからない場合はnilを返す。
func (r *NoteRepo) FindByID(ctx context.Context, id int64) (*model.Note, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return findByID(r.s.notes, id, func(n *model.Note) int64 { return n.ID }), nil
}

// List は全ノートを作成順に返す。
func (r *NoteRepo) List(ctx context.Context) ([]*model.Note, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return copyAll(r.s.notes, nil), nil
}

// ListByGroupID はグループのノートを作成順に返す。
func (r *NoteRepo) ListByGroupID(ctx context.Context, groupID int64) ([]*model.Note, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return copyAll(r.s.notes, func(n *model.Note) bool { return n.GroupID == groupID }), nil
}

// MessageRepo はメモリ上のメッセージリポジトリ。
type MessageRepo struct{ s *Store }

// Create はメッセージを作成する。
func (r *MessageRepo) Create(ctx context.Context, message *model.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.lastMessageID++
	message.ID = r.s.lastMessageID
	message.SentAt = r.s.now()
	cp := *message
	r.s.messages = append(r.s.messages, &cp)
	return nil
}

// FindByID は指定IDのメッセージを取得する。見つからない場合はnilを返す。
func (r *MessageRepo) FindByID(ctx context.Context, id int64) (*model.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return findByID(r.s.messages, id, func(m *model.Message) int64 { return m.ID }), nil
}

// List は全メッセージを作成順に返す。
func (r *MessageRepo) List(ctx context.Context) ([]*model.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return copyAll(r.s.messages, nil), nil
}

// ListByGroupID はグループのメッセージをsent_at昇順で返す。
func (r *MessageRepo) ListByGroupID(ctx context.Context, groupID int64) ([]*model.Message, error) {
	r.s.mu.Lock()
	msgs := copyAll(r.s.messages, func(m *model.Message) bool { return m.GroupID == groupID })
	r.s.mu.Unlock()
	sortMessages(msgs)
	return msgs, nil
}

// SessionRepo はメモリ上のセッションリポジトリ。
type SessionRepo struct{ s *Store }

// Create はセッションを作成する。
func (r *SessionRepo) Create(ctx context.Context, session *model.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *session
	r.s.sessions[session.ID] = &cp
	return nil
}

// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
func (r *SessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sess, ok := r.s.sessions[id]
	if !ok || !sess.ExpiresAt.After(r.s.now()) {
		return nil, nil
	}
	cp := *sess
	return &cp, nil
}

// DeleteByID は指定IDのセッションを削除する。
func (r *SessionRepo) DeleteByID(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.sessions, id)
	return nil
}

// DeleteExpired はnow時点で期限切れのセッションを削除し、削除件数を返す。
func (r *SessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, sess := range r.s.sessions {
		if !sess.ExpiresAt.After(now) {
			delete(r.s.sessions, id)
			n++
		}
	}
	return n, nil
}
