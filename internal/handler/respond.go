package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/focustrack/internal/middleware"
	"github.com/hitoshi/focustrack/internal/model"
)

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// handleServiceError はサービス層から返されたエラーを
// エラー分類に応じたHTTPレスポンスに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		middleware.WriteValidationError(w, verr)
		return
	}

	var rangeErr *model.RangeOrderError
	if errors.As(err, &rangeErr) {
		middleware.WriteErrorMessage(w, http.StatusBadRequest, model.RangeOrderMessage)
		return
	}

	var notFound *model.NotFoundError
	if errors.As(err, &notFound) {
		middleware.WriteErrorMessage(w, http.StatusNotFound, notFound.Error())
		return
	}

	var upstream *model.UpstreamError
	if errors.As(err, &upstream) {
		middleware.WriteUpstreamError(w, upstream)
		return
	}

	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}
