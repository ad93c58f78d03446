package validate

import (
	"errors"
	"strings"
	"testing"

	"github.com/hitoshi/studyhub/internal/model"
)

type sampleRequest struct {
	Name        string `json:"name" validate:"min=2"`
	Description string `json:"description" validate:"min=10,max=200"`
	GroupID     int64  `json:"groupId" validate:"required,min=1"`
}

func TestValidator_Struct(t *testing.T) {
	v := New()

	tests := []struct {
		name       string
		req        sampleRequest
		wantFields []string
	}{
		{
			name: "valid",
			req:  sampleRequest{Name: "Go", Description: "weekly go reading", GroupID: 1},
		},
		{
			name:       "short name and description",
			req:        sampleRequest{Name: "G", Description: "short", GroupID: 1},
			wantFields: []string{"name", "description"},
		},
		{
			name:       "missing group id",
			req:        sampleRequest{Name: "Go", Description: "weekly go reading"},
			wantFields: []string{"groupId"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := v.Struct(tt.req)
			if len(fields) != len(tt.wantFields) {
				t.Fatalf("fields = %+v, want %v", fields, tt.wantFields)
			}
			for i, f := range fields {
				if f.Field != tt.wantFields[i] {
					t.Errorf("fields[%d].Field = %q, want %q", i, f.Field, tt.wantFields[i])
				}
				if f.Message == "" {
					t.Errorf("fields[%d].Message is empty", i)
				}
			}
		})
	}
}

func TestValidator_Messages(t *testing.T) {
	fields := New().Struct(sampleRequest{Name: "G", Description: string(make([]byte, 201)), GroupID: 1})
	if len(fields) != 2 {
		t.Fatalf("fields = %+v", fields)
	}
	if fields[0].Message != "Must contain at least 2 character(s)" {
		t.Errorf("min message = %q", fields[0].Message)
	}
	if fields[1].Message != "Must contain at most 200 character(s)" {
		t.Errorf("max message = %q", fields[1].Message)
	}
}

func TestValidator_Check(t *testing.T) {
	v := New()

	if err := v.Check(sampleRequest{Name: "Go", Description: "weekly go reading", GroupID: 2}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	err := v.Check(sampleRequest{})
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeValidationFailed {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeValidationFailed)
	}
	if len(apiErr.Fields) != 3 {
		t.Errorf("len(Fields) = %d, want 3", len(apiErr.Fields))
	}
}

type secretRequest struct {
	Password string `json:"password" validate:"required,maxbytes=72"`
}

// 文字数ではなくバイト数で上限を判定することを検証
func TestValidator_MaxBytes(t *testing.T) {
	v := New()

	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"72 ascii bytes", strings.Repeat("a", 72), false},
		{"73 ascii bytes", strings.Repeat("a", 73), true},
		{"25 runes of 3 bytes", strings.Repeat("あ", 25), true},
		{"24 runes of 3 bytes", strings.Repeat("あ", 24), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := v.Struct(secretRequest{Password: tt.password})
			if got := len(fields) > 0; got != tt.wantErr {
				t.Fatalf("fields = %+v, wantErr %v", fields, tt.wantErr)
			}
			if tt.wantErr && fields[0].Message != "Must be at most 72 bytes" {
				t.Errorf("Message = %q", fields[0].Message)
			}
		})
	}
}
