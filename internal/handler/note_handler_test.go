package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/studyhub/internal/model"
	"github.com/hitoshi/studyhub/internal/note"
	"github.com/hitoshi/studyhub/internal/validate"
)

// mockNoteService はNoteServiceInterfaceのモック実装。
type mockNoteService struct {
	listNotesFn      func(ctx context.Context) ([]*model.Note, error)
	listGroupNotesFn func(ctx context.Context, userID, groupID int64) ([]*model.Note, error)
	createNoteFn     func(ctx context.Context, userID int64, in note.CreateInput) (*model.Note, error)
}

func (m *mockNoteService) ListNotes(ctx context.Context) ([]*model.Note, error) {
	if m.listNotesFn != nil {
		return m.listNotesFn(ctx)
	}
	return nil, nil
}

func (m *mockNoteService) ListGroupNotes(ctx context.Context, userID, groupID int64) ([]*model.Note, error) {
	if m.listGroupNotesFn != nil {
		return m.listGroupNotesFn(ctx, userID, groupID)
	}
	return nil, nil
}

func (m *mockNoteService) CreateNote(ctx context.Context, userID int64, in note.CreateInput) (*model.Note, error) {
	if m.createNoteFn != nil {
		return m.createNoteFn(ctx, userID, in)
	}
	return nil, nil
}

func TestNoteHandler_CreateNote_Success(t *testing.T) {
	svc := &mockNoteService{
		createNoteFn: func(ctx context.Context, userID int64, in note.CreateInput) (*model.Note, error) {
			return &model.Note{
				ID:         1,
				Title:      in.Title,
				FileType:   in.FileType,
				GroupID:    in.GroupID,
				UploadedBy: userID,
				FileURL:    in.FileURL,
			}, nil
		},
	}
	h := NewNoteHandler(svc, validate.New())

	body := `{"title":"Week 1","fileType":"pdf","groupId":1,"fileUrl":"https://example.com/w1.pdf"}`
	req := withUserID(httptest.NewRequest(http.MethodPost, "/api/notes", bytes.NewBufferString(body)), 4)
	w := httptest.NewRecorder()

	h.CreateNote(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	var result map[string]any
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result["uploadedBy"] != float64(4) {
		t.Errorf("uploadedBy = %v, want 4", result["uploadedBy"])
	}
	if result["fileUrl"] != "https://example.com/w1.pdf" {
		t.Errorf("fileUrl = %v", result["fileUrl"])
	}
}

func TestNoteHandler_CreateNote_MissingFileURL(t *testing.T) {
	h := NewNoteHandler(&mockNoteService{}, validate.New())

	body := `{"title":"Week 1","fileType":"pdf","groupId":1}`
	req := withUserID(httptest.NewRequest(http.MethodPost, "/api/notes", bytes.NewBufferString(body)), 4)
	w := httptest.NewRecorder()

	h.CreateNote(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	result := parseAPIErrorResponse(t, w)
	fields, _ := result["fields"].([]any)
	if len(fields) != 1 {
		t.Fatalf("fields = %v, want 1 entry", result["fields"])
	}
	if f, _ := fields[0].(map[string]any); f["field"] != "fileUrl" {
		t.Errorf("field = %v, want fileUrl", f["field"])
	}
}

func TestNoteHandler_CreateNote_TooLong(t *testing.T) {
	tests := []struct {
		name      string
		title     string
		fileType  string
		wantField string
	}{
		{"title over 255 characters", strings.Repeat("a", 256), "pdf", "title"},
		{"fileType over 50 characters", "Week 1", strings.Repeat("x", 51), "fileType"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewNoteHandler(&mockNoteService{
				createNoteFn: func(ctx context.Context, userID int64, in note.CreateInput) (*model.Note, error) {
					t.Error("service should not be called")
					return nil, nil
				},
			}, validate.New())

			body, _ := json.Marshal(map[string]any{
				"title":    tt.title,
				"fileType": tt.fileType,
				"groupId":  1,
				"fileUrl":  "https://example.com/w1.pdf",
			})
			req := withUserID(httptest.NewRequest(http.MethodPost, "/api/notes", bytes.NewReader(body)), 4)
			w := httptest.NewRecorder()

			h.CreateNote(w, req)

			assertValidationFields(t, w, tt.wantField)
		})
	}
}

func TestNoteHandler_ListGroupNotes_NotMember(t *testing.T) {
	svc := &mockNoteService{
		listGroupNotesFn: func(ctx context.Context, userID, groupID int64) ([]*model.Note, error) {
			return nil, model.NewNotGroupMemberError("view notes")
		},
	}
	h := NewNoteHandler(svc, validate.New())

	req := httptest.NewRequest(http.MethodGet, "/api/groups/1/notes", nil)
	req = withChiURLParam(withUserID(req, 4), "id", "1")
	w := httptest.NewRecorder()

	h.ListGroupNotes(w, req)

	assertErrorCode(t, w, http.StatusForbidden, model.ErrCodeNotGroupMember)
}

func TestNoteHandler_ListNotes(t *testing.T) {
	svc := &mockNoteService{
		listNotesFn: func(ctx context.Context) ([]*model.Note, error) {
			return []*model.Note{{ID: 1, Title: "Week 1"}}, nil
		},
	}
	h := NewNoteHandler(svc, validate.New())

	req := withUserID(httptest.NewRequest(http.MethodGet, "/api/notes", nil), 1)
	w := httptest.NewRecorder()

	h.ListNotes(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
}
