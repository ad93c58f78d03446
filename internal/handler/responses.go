package handler

import (
	"time"

	"github.com/hitoshi/studyhub/internal/model"
)

// userResponse はユーザー情報のAPIレスポンス。パスワードハッシュは含めない。
type userResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}
}

// groupResponse はメンバー数付きグループのAPIレスポンス。
type groupResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedBy   int64     `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	IsActive    bool      `json:"isActive"`
	MemberCount int       `json:"memberCount"`
}

func toGroupResponse(g model.GroupWithCount) groupResponse {
	return groupResponse{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		CreatedBy:   g.CreatedBy,
		CreatedAt:   g.CreatedAt,
		IsActive:    g.IsActive,
		MemberCount: g.MemberCount,
	}
}

func toGroupResponses(groups []model.GroupWithCount) []groupResponse {
	out := make([]groupResponse, 0, len(groups))
	for _, g := range groups {
		out = append(out, toGroupResponse(g))
	}
	return out
}

// memberResponse はグループ所属のAPIレスポンス。
type memberResponse struct {
	ID       int64     `json:"id"`
	GroupID  int64     `json:"groupId"`
	UserID   int64     `json:"userId"`
	JoinedAt time.Time `json:"joinedAt"`
}

func toMemberResponse(m *model.GroupMember) memberResponse {
	return memberResponse{
		ID:       m.ID,
		GroupID:  m.GroupID,
		UserID:   m.UserID,
		JoinedAt: m.JoinedAt,
	}
}

// meetingResponse は予定のAPIレスポンス。
type meetingResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	GroupID   int64     `json:"groupId"`
	CreatedBy int64     `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

func toMeetingResponses(meetings []*model.Meeting) []meetingResponse {
	out := make([]meetingResponse, 0, len(meetings))
	for _, m := range meetings {
		out = append(out, toMeetingResponse(m))
	}
	return out
}

func toMeetingResponse(m *model.Meeting) meetingResponse {
	return meetingResponse{
		ID:        m.ID,
		Title:     m.Title,
		Date:      m.Date,
		Time:      m.Time,
		GroupID:   m.GroupID,
		CreatedBy: m.CreatedBy,
		CreatedAt: m.CreatedAt,
	}
}

// noteResponse はノートのAPIレスポンス。
type noteResponse struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	FileType   string    `json:"fileType"`
	GroupID    int64     `json:"groupId"`
	UploadedBy int64     `json:"uploadedBy"`
	UploadedAt time.Time `json:"uploadedAt"`
	FileURL    string    `json:"fileUrl"`
}

func toNoteResponses(notes []*model.Note) []noteResponse {
	out := make([]noteResponse, 0, len(notes))
	for _, n := range notes {
		out = append(out, toNoteResponse(n))
	}
	return out
}

func toNoteResponse(n *model.Note) noteResponse {
	return noteResponse{
		ID:         n.ID,
		Title:      n.Title,
		FileType:   n.FileType,
		GroupID:    n.GroupID,
		UploadedBy: n.UploadedBy,
		UploadedAt: n.UploadedAt,
		FileURL:    n.FileURL,
	}
}

// authorResponse はメッセージ投稿者の公開情報。
type authorResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

// messageResponse は投稿者情報付きメッセージのAPIレスポンス。
// 投稿者が解決できない場合 user は null。
type messageResponse struct {
	ID      int64           `json:"id"`
	Content string          `json:"content"`
	GroupID int64           `json:"groupId"`
	UserID  int64           `json:"userId"`
	SentAt  time.Time       `json:"sentAt"`
	User    *authorResponse `json:"user"`
}

func toMessageResponses(msgs []model.MessageWithAuthor) []messageResponse {
	out := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		resp := messageResponse{
			ID:      m.ID,
			Content: m.Content,
			GroupID: m.GroupID,
			UserID:  m.UserID,
			SentAt:  m.SentAt,
		}
		if m.Author != nil {
			resp.User = &authorResponse{ID: m.Author.ID, Name: m.Author.Name, Username: m.Author.Username}
		}
		out = append(out, resp)
	}
	return out
}
