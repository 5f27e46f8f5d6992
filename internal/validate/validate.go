// Package validate はリクエスト入力の検証と型強制を提供する。
// 構造体タグ検証にはgo-playground/validatorを使用し、
// 失敗はmodel.ValidationError（順序付きのFieldIssueリスト）として返す。
package validate

import (
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"

	"github.com/hitoshi/focustrack/internal/model"
)

// dateLayouts は文字列から日時への強制変換で受理するレイアウト。
// ISO 8601系を優先し、日付のみの形式も許可する。
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

var (
	once  sync.Once
	v     *validator.Validate
	trans ut.Translator
)

// setup はバリデーターと英語トランスレーターのシングルトンを初期化する。
// エラーメッセージ内のフィールド名にはjsonタグ名を使用する。
func setup() {
	once.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ = uni.GetTranslator("en")

		v = validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("json")
			if tag == "" || tag == "-" {
				return fld.Name
			}
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			return tag
		})

		_ = entranslations.RegisterDefaultTranslations(v, trans)
	})
}

// Struct は構造体タグに基づいて入力を検証する。
// 失敗した場合はフィールド定義順のFieldIssueリストを持つValidationErrorを返す。
// 成功した場合はnilを返す。
func Struct(input any) *model.ValidationError {
	setup()

	err := v.Struct(input)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return model.NewValidationError("body", err.Error())
	}

	issues := make([]model.FieldIssue, 0, len(verrs))
	for _, fe := range verrs {
		issues = append(issues, model.FieldIssue{
			Field:   fe.Field(),
			Message: fe.Translate(trans),
		})
	}
	return &model.ValidationError{Issues: issues}
}

// ParseDate は文字列を日時に強制変換する。
// 受理するレイアウトはdateLayouts（RFC3339系と日付のみ）。
// オフセットを持たないレイアウトはlocの壁時計時刻として解釈する。
// オフセット付きの値はlocに関わらずその瞬間を保持する。
// 変換できない場合は対象フィールド名を含むFieldIssueを返す。
func ParseDate(field, value string, loc *time.Location) (time.Time, *model.FieldIssue) {
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &model.FieldIssue{
		Field:   field,
		Message: field + " must be a valid date",
	}
}

// ParseDateQuery はクエリパラメータの日付を検証・変換する。
// 空文字列は必須違反、変換不能は型不一致としてValidationErrorを返す。
func ParseDateQuery(field, value string, loc *time.Location) (time.Time, *model.ValidationError) {
	if value == "" {
		return time.Time{}, model.NewValidationError(field, field+" is a required query parameter")
	}
	t, issue := ParseDate(field, value, loc)
	if issue != nil {
		return time.Time{}, &model.ValidationError{Issues: []model.FieldIssue{*issue}}
	}
	return t, nil
}
