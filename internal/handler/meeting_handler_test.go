package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/studyhub/internal/meeting"
	"github.com/hitoshi/studyhub/internal/model"
	"github.com/hitoshi/studyhub/internal/validate"
)

// mockMeetingService はMeetingServiceInterfaceのモック実装。
type mockMeetingService struct {
	listMeetingsFn      func(ctx context.Context) ([]*model.Meeting, error)
	listGroupMeetingsFn func(ctx context.Context, userID, groupID int64) ([]*model.Meeting, error)
	createMeetingFn     func(ctx context.Context, userID int64, in meeting.CreateInput) (*model.Meeting, error)
}

func (m *mockMeetingService) ListMeetings(ctx context.Context) ([]*model.Meeting, error) {
	if m.listMeetingsFn != nil {
		return m.listMeetingsFn(ctx)
	}
	return nil, nil
}

func (m *mockMeetingService) ListGroupMeetings(ctx context.Context, userID, groupID int64) ([]*model.Meeting, error) {
	if m.listGroupMeetingsFn != nil {
		return m.listGroupMeetingsFn(ctx, userID, groupID)
	}
	return nil, nil
}

func (m *mockMeetingService) CreateMeeting(ctx context.Context, userID int64, in meeting.CreateInput) (*model.Meeting, error) {
	if m.createMeetingFn != nil {
		return m.createMeetingFn(ctx, userID, in)
	}
	return nil, nil
}

func TestMeetingHandler_CreateMeeting_Success(t *testing.T) {
	svc := &mockMeetingService{
		createMeetingFn: func(ctx context.Context, userID int64, in meeting.CreateInput) (*model.Meeting, error) {
			want := meeting.CreateInput{Title: "Kickoff", Date: "2024-05-01", Time: "18:00", GroupID: 1}
			if in != want {
				t.Errorf("input = %+v, want %+v", in, want)
			}
			return &model.Meeting{ID: 1, Title: in.Title, Date: in.Date, Time: in.Time, GroupID: in.GroupID, CreatedBy: userID}, nil
		},
	}
	h := NewMeetingHandler(svc, validate.New())

	body := `{"title":"Kickoff","date":"2024-05-01","time":"18:00","groupId":1}`
	req := withUserID(httptest.NewRequest(http.MethodPost, "/api/meetings", bytes.NewBufferString(body)), 2)
	w := httptest.NewRecorder()

	h.CreateMeeting(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	var result map[string]any
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result["createdBy"] != float64(2) {
		t.Errorf("createdBy = %v, want 2", result["createdBy"])
	}
}

func TestMeetingHandler_CreateMeeting_NotMember(t *testing.T) {
	svc := &mockMeetingService{
		createMeetingFn: func(ctx context.Context, userID int64, in meeting.CreateInput) (*model.Meeting, error) {
			return nil, model.NewNotGroupMemberError("schedule a meeting")
		},
	}
	h := NewMeetingHandler(svc, validate.New())

	body := `{"title":"Kickoff","date":"2024-05-01","time":"18:00","groupId":1}`
	req := withUserID(httptest.NewRequest(http.MethodPost, "/api/meetings", bytes.NewBufferString(body)), 2)
	w := httptest.NewRecorder()

	h.CreateMeeting(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
	result := parseAPIErrorResponse(t, w)
	if result["message"] != "You must be a member of the group to schedule a meeting." {
		t.Errorf("message = %v", result["message"])
	}
}

// 入力検証はメンバーシップ確認より先に行われる
func TestMeetingHandler_CreateMeeting_ValidationBeforeMembership(t *testing.T) {
	svc := &mockMeetingService{
		createMeetingFn: func(ctx context.Context, userID int64, in meeting.CreateInput) (*model.Meeting, error) {
			t.Error("service should not be called")
			return nil, model.NewNotGroupMemberError("schedule a meeting")
		},
	}
	h := NewMeetingHandler(svc, validate.New())

	body := `{"title":"K","date":"","time":"18:00"}`
	req := withUserID(httptest.NewRequest(http.MethodPost, "/api/meetings", bytes.NewBufferString(body)), 2)
	w := httptest.NewRecorder()

	h.CreateMeeting(w, req)

	assertErrorCode(t, w, http.StatusBadRequest, model.ErrCodeValidationFailed)
}

func TestMeetingHandler_CreateMeeting_TitleTooLong(t *testing.T) {
	svc := &mockMeetingService{
		createMeetingFn: func(ctx context.Context, userID int64, in meeting.CreateInput) (*model.Meeting, error) {
			t.Error("service should not be called")
			return nil, nil
		},
	}
	h := NewMeetingHandler(svc, validate.New())

	body := `{"title":"` + strings.Repeat("a", 256) + `","date":"2024-05-01","time":"18:00","groupId":1}`
	req := withUserID(httptest.NewRequest(http.MethodPost, "/api/meetings", bytes.NewBufferString(body)), 2)
	w := httptest.NewRecorder()

	h.CreateMeeting(w, req)

	assertValidationFields(t, w, "title")
}

func TestMeetingHandler_ListGroupMeetings(t *testing.T) {
	svc := &mockMeetingService{
		listGroupMeetingsFn: func(ctx context.Context, userID, groupID int64) ([]*model.Meeting, error) {
			if groupID != 7 {
				t.Errorf("groupID = %d, want 7", groupID)
			}
			return []*model.Meeting{{ID: 1, Title: "Kickoff", GroupID: 7}}, nil
		},
	}
	h := NewMeetingHandler(svc, validate.New())

	req := httptest.NewRequest(http.MethodGet, "/api/groups/7/meetings", nil)
	req = withChiURLParam(withUserID(req, 1), "id", "7")
	w := httptest.NewRecorder()

	h.ListGroupMeetings(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var result []map[string]any
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(result) != 1 || result[0]["title"] != "Kickoff" {
		t.Errorf("result = %v", result)
	}
}

func TestMeetingHandler_ListMeetings(t *testing.T) {
	svc := &mockMeetingService{
		listMeetingsFn: func(ctx context.Context) ([]*model.Meeting, error) {
			return []*model.Meeting{{ID: 1}, {ID: 2}}, nil
		},
	}
	h := NewMeetingHandler(svc, validate.New())

	req := withUserID(httptest.NewRequest(http.MethodGet, "/api/meetings", nil), 1)
	w := httptest.NewRecorder()

	h.ListMeetings(w, req)

	var result []map[string]any
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(result) != 2 {
		t.Errorf("len = %d, want 2", len(result))
	}
}
