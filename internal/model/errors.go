package model

import (
	"encoding/json"
	"fmt"
)

// RangeOrderMessage は時間範囲の順序違反時にクライアントへ返すメッセージ。
// 上流APIの互換契約のため文言は固定。
const RangeOrderMessage = "timeFrom always has to be before timeTo"

// FieldIssue は入力検証の失敗1件を表す。
// どのフィールドが、なぜ失敗したかをクライアントに伝える。
type FieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError は入力検証の失敗を表す。
// 発生順のFieldIssueリストを保持し、422レスポンスに変換される。
type ValidationError struct {
	Issues []FieldIssue
}

// Error はerrorインターフェースを実装する。
func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Issues[0].Field, e.Issues[0].Message)
}

// NewValidationError は単一のFieldIssueからValidationErrorを生成する。
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Issues: []FieldIssue{{Field: field, Message: message}}}
}

// RangeOrderError は型としては正しいが意味的に不正な時間範囲
// （timeToがtimeFromより厳密に前）を表す。400レスポンスに変換される。
// timeFrom == timeTo は許容される。
type RangeOrderError struct{}

// Error はerrorインターフェースを実装する。
func (e *RangeOrderError) Error() string {
	return RangeOrderMessage
}

// UpstreamError は外部OAuthプロバイダーが報告した失敗を表す。
// プロバイダーの生のエラーペイロードをそのまま400レスポンスとして返す。
type UpstreamError struct {
	StatusCode int
	Payload    json.RawMessage
}

// Error はerrorインターフェースを実装する。
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream provider error (status %d): %s", e.StatusCode, string(e.Payload))
}

// NotFoundError はリソースが存在しない、または呼び出しユーザーが
// 所有していないことを表す。404レスポンスに変換される。
type NotFoundError struct {
	Resource string
	ID       string
}

// Error はerrorインターフェースを実装する。
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// NewHabitNotFoundError は習慣が見つからない場合のエラーを生成する。
func NewHabitNotFoundError(id string) *NotFoundError {
	return &NotFoundError{Resource: "habit", ID: id}
}
