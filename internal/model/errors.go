// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string       // エラーコード
	Message  string       // エラーメッセージ
	Category string       // カテゴリ: auth, validation, group, system
	Action   string       // ユーザー向け対処方法
	Fields   []FieldError // バリデーションエラーの項目別詳細
}

// FieldError は入力項目ごとのバリデーションエラー。
type FieldError struct {
	Field   string
	Message string
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeUsernameTaken      = "USERNAME_TAKEN"
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeValidationFailed   = "VALIDATION_FAILED"
	ErrCodeInvalidGroupID     = "INVALID_GROUP_ID"
	ErrCodeGroupNotFound      = "GROUP_NOT_FOUND"
	ErrCodeAlreadyMember      = "ALREADY_MEMBER"
	ErrCodeNotGroupMember     = "NOT_GROUP_MEMBER"
	ErrCodeCSRFTokenInvalid   = "CSRF_TOKEN_INVALID"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "Authentication required.",
		Category: "auth",
		Action:   "Please log in.",
	}
}

// NewInvalidCredentialsError はログイン失敗エラーを生成する。
// ユーザー名の存在有無は区別しない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "Invalid username or password.",
		Category: "auth",
		Action:   "Check your username and password.",
	}
}

// NewUsernameTakenError はユーザー名重複エラーを生成する。
func NewUsernameTakenError(username string) *APIError {
	return &APIError{
		Code:     ErrCodeUsernameTaken,
		Message:  fmt.Sprintf("Username already exists: %s", username),
		Category: "validation",
		Action:   "Choose a different username.",
	}
}

// NewInvalidRequestError はリクエストボディの解析失敗エラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "Failed to parse request body.",
		Category: "validation",
		Action:   "Send a valid JSON body.",
	}
}

// NewValidationError は項目別のバリデーションエラーを生成する。
func NewValidationError(fields []FieldError) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  "Input validation failed.",
		Category: "validation",
		Action:   "Fix the listed fields and try again.",
		Fields:   fields,
	}
}

// NewInvalidGroupIDError は数値でないグループIDのエラーを生成する。
func NewInvalidGroupIDError(raw string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidGroupID,
		Message:  fmt.Sprintf("Invalid group ID: %s", raw),
		Category: "validation",
		Action:   "Specify a numeric group ID.",
	}
}

// NewGroupNotFoundError はグループ未検出エラーを生成する。
func NewGroupNotFoundError(groupID int64) *APIError {
	return &APIError{
		Code:     ErrCodeGroupNotFound,
		Message:  fmt.Sprintf("Group not found: %d", groupID),
		Category: "group",
		Action:   "Check the group ID.",
	}
}

// NewAlreadyMemberError は参加済みグループへの再参加エラーを生成する。
func NewAlreadyMemberError() *APIError {
	return &APIError{
		Code:     ErrCodeAlreadyMember,
		Message:  "Already a member of this group.",
		Category: "group",
		Action:   "Open the group from your group list.",
	}
}

// NewNotGroupMemberError はグループ非メンバーによるアクセスのエラーを生成する。
// action には拒否された操作を英語の動詞句で渡す（例: "schedule a meeting"）。
func NewNotGroupMemberError(action string) *APIError {
	return &APIError{
		Code:     ErrCodeNotGroupMember,
		Message:  fmt.Sprintf("You must be a member of the group to %s.", action),
		Category: "group",
		Action:   "Join the group first.",
	}
}

// NewInternalError は内部エラーを生成する。詳細はログのみに記録する。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "An internal error occurred.",
		Category: "system",
		Action:   "Please try again later.",
	}
}

// NewCSRFTokenInvalidError はCSRFトークン検証失敗のエラーを生成する。
func NewCSRFTokenInvalidError() *APIError {
	return &APIError{
		Code:     ErrCodeCSRFTokenInvalid,
		Message:  "CSRF token validation failed.",
		Category: "auth",
		Action:   "Reload the page and try again.",
	}
}
