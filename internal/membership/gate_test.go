package membership

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/studyhub/internal/model"
	"github.com/hitoshi/studyhub/internal/repository/memstore"
)

// --- モック ---

type failingMembershipRepo struct {
	*memstore.MembershipRepo
	err error
}

func (m *failingMembershipRepo) IsMember(ctx context.Context, userID, groupID int64) (bool, error) {
	return false, m.err
}

func (m *failingMembershipRepo) CountByGroupID(ctx context.Context, groupID int64) (int, error) {
	return 0, m.err
}

func TestGate_IsMemberAndCount(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()
	_ = store.Memberships().AddIfAbsent(ctx, &model.GroupMember{GroupID: 1, UserID: 10})
	_ = store.Memberships().AddIfAbsent(ctx, &model.GroupMember{GroupID: 1, UserID: 11})
	_ = store.Memberships().AddIfAbsent(ctx, &model.GroupMember{GroupID: 2, UserID: 10})

	gate := NewGate(store.Memberships())

	tests := []struct {
		name    string
		userID  int64
		groupID int64
		want    bool
	}{
		{"member", 10, 1, true},
		{"member of other group", 11, 2, false},
		{"unknown group", 10, 99, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := gate.IsMember(ctx, tt.userID, tt.groupID)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("IsMember(%d, %d) = %v, want %v", tt.userID, tt.groupID, got, tt.want)
			}
		})
	}

	count, err := gate.MembershipCount(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Errorf("MembershipCount = %d, want 2", count)
	}
}

// 非メンバーにはNOT_GROUP_MEMBERのAPIErrorが返ることを検証
func TestGate_Authorize_NotMember(t *testing.T) {
	gate := NewGate(memstore.New().Memberships())

	err := gate.Authorize(context.Background(), 5, 99, "view messages")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeNotGroupMember {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeNotGroupMember)
	}
	if apiErr.Message != "You must be a member of the group to view messages." {
		t.Errorf("Message = %q", apiErr.Message)
	}
}

func TestGate_Authorize_Member(t *testing.T) {
	store := memstore.New()
	_ = store.Memberships().AddIfAbsent(context.Background(), &model.GroupMember{GroupID: 3, UserID: 4})

	if err := NewGate(store.Memberships()).Authorize(context.Background(), 4, 3, "create notes"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// リポジトリのエラーはAPIErrorに変換されず、ラップされて返ることを検証
func TestGate_RepositoryError(t *testing.T) {
	dbErr := errors.New("connection refused")
	gate := NewGate(&failingMembershipRepo{MembershipRepo: memstore.New().Memberships(), err: dbErr})

	err := gate.Authorize(context.Background(), 1, 1, "view messages")
	if !errors.Is(err, dbErr) {
		t.Errorf("err = %v, want wrapped %v", err, dbErr)
	}
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		t.Error("repository failure must not be reported as NOT_GROUP_MEMBER")
	}

	if _, err := gate.MembershipCount(context.Background(), 1); !errors.Is(err, dbErr) {
		t.Errorf("MembershipCount err = %v, want wrapped %v", err, dbErr)
	}
}
