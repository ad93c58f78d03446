package meeting

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/studyhub/internal/membership"
	"github.com/hitoshi/studyhub/internal/model"
	"github.com/hitoshi/studyhub/internal/repository/memstore"
)

func setup(t *testing.T) (*Service, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	_ = store.Memberships().AddIfAbsent(context.Background(), &model.GroupMember{GroupID: 1, UserID: 10})
	return NewService(store.Meetings(), membership.NewGate(store.Memberships())), store
}

func TestService_CreateMeeting_Member(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	m, err := svc.CreateMeeting(ctx, 10, CreateInput{Title: "Kickoff", Date: "2024-05-01", Time: "18:00", GroupID: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.ID != 1 || m.CreatedBy != 10 || m.CreatedAt.IsZero() {
		t.Errorf("meeting = %+v", m)
	}
	if m.Date != "2024-05-01" || m.Time != "18:00" {
		t.Errorf("date/time = %q %q, want kept verbatim", m.Date, m.Time)
	}
}

// 非メンバーは403相当のエラーとなり、予定が作成されないことを検証
func TestService_CreateMeeting_NotMember(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()

	_, err := svc.CreateMeeting(ctx, 20, CreateInput{Title: "Kickoff", Date: "2024-05-01", Time: "18:00", GroupID: 1})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeNotGroupMember {
		t.Fatalf("expected NOT_GROUP_MEMBER, got %v", err)
	}
	if apiErr.Message != "You must be a member of the group to schedule a meeting." {
		t.Errorf("Message = %q", apiErr.Message)
	}

	all, _ := store.Meetings().List(ctx)
	if len(all) != 0 {
		t.Errorf("expected no meetings, got %d", len(all))
	}
}

func TestService_ListMeetings(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	_, _ = svc.CreateMeeting(ctx, 10, CreateInput{Title: "First", Date: "d", Time: "t", GroupID: 1})
	_, _ = svc.CreateMeeting(ctx, 10, CreateInput{Title: "Second", Date: "d", Time: "t", GroupID: 1})

	all, err := svc.ListMeetings(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 || all[0].Title != "First" || all[1].Title != "Second" {
		t.Errorf("meetings = %+v", all)
	}

	if _, err := svc.ListGroupMeetings(ctx, 20, 1); err == nil {
		t.Error("expected non-member to be rejected")
	}
	byGroup, err := svc.ListGroupMeetings(ctx, 10, 1)
	if err != nil || len(byGroup) != 2 {
		t.Errorf("ListGroupMeetings = %d, %v, want 2", len(byGroup), err)
	}
}
