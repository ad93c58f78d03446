// Package validate はリクエストボディの入力検証を提供する。
//
// 検証ルールは各リクエスト構造体の `validate` タグで宣言し、
// 失敗した項目はJSONフィールド名をキーとした model.FieldError の一覧で返す。
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hitoshi/studyhub/internal/model"
)

// Validator はgo-playground/validatorのラッパー。ゴルーチンセーフ。
type Validator struct {
	v *validator.Validate
}

// New はJSONタグ名でエラーを報告するValidatorを生成する。
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	// maxbytes は文字数ではなくバイト数の上限（bcryptのパスワード長）
	if err := v.RegisterValidation("maxbytes", maxBytes); err != nil {
		panic(err)
	}
	return &Validator{v: v}
}

// maxBytes は文字列のバイト長がパラメータ以下であることを検証する。
func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

// Struct はsを検証し、違反した項目の一覧を返す。違反がなければnilを返す。
func (val *Validator) Struct(s any) []model.FieldError {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []model.FieldError{{Field: "", Message: err.Error()}}
	}

	fields := make([]model.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, model.FieldError{
			Field:   fe.Field(),
			Message: message(fe),
		})
	}
	return fields
}

// Check はsを検証し、違反があればVALIDATION_FAILEDのAPIErrorを返す。
func (val *Validator) Check(s any) error {
	if fields := val.Struct(s); len(fields) > 0 {
		return model.NewValidationError(fields)
	}
	return nil
}

func message(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "Required"
	case "min":
		if isString {
			return fmt.Sprintf("Must contain at least %s character(s)", fe.Param())
		}
		return fmt.Sprintf("Must be greater than or equal to %s", fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("Must contain at most %s character(s)", fe.Param())
		}
		return fmt.Sprintf("Must be less than or equal to %s", fe.Param())
	case "maxbytes":
		return fmt.Sprintf("Must be at most %s bytes", fe.Param())
	default:
		return fmt.Sprintf("Failed on the '%s' rule", fe.Tag())
	}
}
