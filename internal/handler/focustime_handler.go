package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hitoshi/focustrack/internal/middleware"
	"github.com/hitoshi/focustrack/internal/model"
	"github.com/hitoshi/focustrack/internal/validate"
)

// FocusTimeServiceInterface は集中時間ハンドラーが必要とするサービスインターフェース。
type FocusTimeServiceInterface interface {
	// Create は集中時間インターバルを記録する。
	Create(ctx context.Context, userID string, timeFrom, timeTo time.Time) (*model.FocusTime, error)
	// ListForDay は指定日の記録を取得する。
	ListForDay(ctx context.Context, userID string, date time.Time) ([]*model.FocusTime, error)
	// MetricsForMonth は指定月の日別件数を集計する。
	MetricsForMonth(ctx context.Context, userID string, date time.Time) ([]model.DayCount, error)
}

// FocusTimeMetricsRecorder は記録作成のメトリクス記録インターフェース。
type FocusTimeMetricsRecorder interface {
	RecordFocusTimeCreated()
}

// FocusTimeHandler は集中時間記録のHTTPハンドラー。
type FocusTimeHandler struct {
	service FocusTimeServiceInterface
	metrics FocusTimeMetricsRecorder
	loc     *time.Location
}

// NewFocusTimeHandler はFocusTimeHandlerを生成する。metricsはnilを許容する。
// locはオフセットを持たない日付入力の解釈に使用する。nilの場合はUTC。
func NewFocusTimeHandler(service FocusTimeServiceInterface, metrics FocusTimeMetricsRecorder, loc *time.Location) *FocusTimeHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &FocusTimeHandler{
		service: service,
		metrics: metrics,
		loc:     loc,
	}
}

// createFocusTimeRequest は集中時間記録リクエストのボディ。
type createFocusTimeRequest struct {
	TimeFrom string `json:"timeFrom" validate:"required"`
	TimeTo   string `json:"timeTo" validate:"required"`
}

// focusTimeResponse は集中時間記録のAPIレスポンス。
type focusTimeResponse struct {
	ID        string    `json:"id"`
	TimeFrom  time.Time `json:"timeFrom"`
	TimeTo    time.Time `json:"timeTo"`
	CreatedAt time.Time `json:"createdAt"`
}

// dayCountResponse は日別集計の1バケットのAPIレスポンス。
// キーは [年, 月, 日] の3要素配列。
type dayCountResponse struct {
	ID    [3]int `json:"_id"`
	Count int    `json:"count"`
}

// Create は集中時間の記録を処理する。
// POST /focus-time
func (h *FocusTimeHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createFocusTimeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if verr := validate.Struct(req); verr != nil {
		middleware.WriteValidationError(w, verr)
		return
	}

	var issues []model.FieldIssue
	timeFrom, issue := validate.ParseDate("timeFrom", req.TimeFrom, h.loc)
	if issue != nil {
		issues = append(issues, *issue)
	}
	timeTo, issue := validate.ParseDate("timeTo", req.TimeTo, h.loc)
	if issue != nil {
		issues = append(issues, *issue)
	}
	if len(issues) > 0 {
		middleware.WriteValidationError(w, &model.ValidationError{Issues: issues})
		return
	}

	record, err := h.service.Create(r.Context(), userID, timeFrom, timeTo)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordFocusTimeCreated()
	}

	writeJSON(w, http.StatusCreated, toFocusTimeResponse(record))
}

// List は指定日の集中時間記録を返す。
// GET /focus-time?date=xxx
func (h *FocusTimeHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	date, verr := validate.ParseDateQuery("date", r.URL.Query().Get("date"), h.loc)
	if verr != nil {
		middleware.WriteValidationError(w, verr)
		return
	}

	records, err := h.service.ListForDay(r.Context(), userID, date)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	body := make([]focusTimeResponse, 0, len(records))
	for _, record := range records {
		body = append(body, toFocusTimeResponse(record))
	}

	writeJSON(w, http.StatusOK, body)
}

// Metrics は指定月の日別件数集計を返す。
// GET /focus-time/metrics?date=xxx
func (h *FocusTimeHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	date, verr := validate.ParseDateQuery("date", r.URL.Query().Get("date"), h.loc)
	if verr != nil {
		middleware.WriteValidationError(w, verr)
		return
	}

	counts, err := h.service.MetricsForMonth(r.Context(), userID, date)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toDayCountResponses(counts))
}

// --- ヘルパー関数 ---

// toFocusTimeResponse はmodel.FocusTimeからAPIレスポンスに変換する。
func toFocusTimeResponse(record *model.FocusTime) focusTimeResponse {
	return focusTimeResponse{
		ID:        record.ID,
		TimeFrom:  record.TimeFrom,
		TimeTo:    record.TimeTo,
		CreatedAt: record.CreatedAt,
	}
}

// toDayCountResponses はmodel.DayCountのリストからAPIレスポンスに変換する。
// 空の場合もnullではなく空配列を返す。
func toDayCountResponses(counts []model.DayCount) []dayCountResponse {
	body := make([]dayCountResponse, 0, len(counts))
	for _, c := range counts {
		body = append(body, dayCountResponse{
			ID:    [3]int{c.Year, c.Month, c.Day},
			Count: c.Count,
		})
	}
	return body
}
