package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/hitoshi/focustrack/internal/model"
)

// GenericErrorMessage は予期しない失敗時にクライアントへ返すメッセージ。
// 上流APIの互換契約のため文言は固定。
const GenericErrorMessage = "There something wrong."

// errorResponseBody はAPIエラーレスポンスの統一フォーマット。
// messageには文字列（意味エラー）またはFieldIssueのリスト（検証エラー）が入る。
type errorResponseBody struct {
	Message any `json:"message"`
}

// WriteErrorMessage は単一メッセージのエラーレスポンスを書き込む。
func WriteErrorMessage(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(errorResponseBody{Message: message})
}

// WriteValidationError は検証エラーを422レスポンスとして書き込む。
// messageフィールドにはFieldIssueのリストがそのまま入る。
func WriteValidationError(w http.ResponseWriter, verr *model.ValidationError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnprocessableEntity)
	json.NewEncoder(w).Encode(errorResponseBody{Message: verr.Issues})
}

// WriteUpstreamError は外部プロバイダーのエラーペイロードを
// 400レスポンスとしてそのまま書き込む。
func WriteUpstreamError(w http.ResponseWriter, upErr *model.UpstreamError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	w.Write(upErr.Payload)
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteErrorMessage(w, http.StatusInternalServerError, GenericErrorMessage)
}
