package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/focustrack/internal/habit"
	"github.com/hitoshi/focustrack/internal/middleware"
	"github.com/hitoshi/focustrack/internal/model"
	"github.com/hitoshi/focustrack/internal/validate"
)

// HabitServiceInterface は習慣ハンドラーが必要とするサービスインターフェース。
type HabitServiceInterface interface {
	// Create は習慣を作成する。
	Create(ctx context.Context, userID, name string) (*model.Habit, error)
	// List はユーザーの習慣を当日の完了状態付きで取得する。
	List(ctx context.Context, userID string) ([]model.HabitWithState, error)
	// Delete は習慣と完了記録を削除する。
	Delete(ctx context.Context, userID, habitID string) error
	// Toggle は指定日の完了状態を反転する。dayがゼロ値の場合は当日。
	Toggle(ctx context.Context, userID, habitID string, day time.Time) (*habit.ToggleResult, error)
	// MetricsForMonth は指定月の日別完了件数を集計する。
	MetricsForMonth(ctx context.Context, userID, habitID string, date time.Time) ([]model.DayCount, error)
}

// HabitMetricsRecorder は完了トグルのメトリクス記録インターフェース。
type HabitMetricsRecorder interface {
	RecordHabitToggle(completed bool)
}

// HabitHandler は習慣管理のHTTPハンドラー。
type HabitHandler struct {
	service HabitServiceInterface
	metrics HabitMetricsRecorder
	loc     *time.Location
}

// NewHabitHandler はHabitHandlerを生成する。metricsはnilを許容する。
// locはオフセットを持たない日付入力の解釈に使用する。nilの場合はUTC。
func NewHabitHandler(service HabitServiceInterface, metrics HabitMetricsRecorder, loc *time.Location) *HabitHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &HabitHandler{
		service: service,
		metrics: metrics,
		loc:     loc,
	}
}

// createHabitRequest は習慣作成リクエストのボディ。
type createHabitRequest struct {
	Name string `json:"name" validate:"required"`
}

// toggleHabitRequest は完了トグルリクエストのボディ。ボディ省略時は当日扱い。
type toggleHabitRequest struct {
	Date string `json:"date"`
}

// habitResponse は習慣のAPIレスポンス。
type habitResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// habitWithStateResponse は完了状態付き習慣のAPIレスポンス。
type habitWithStateResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	CompletedToday bool      `json:"completedToday"`
	CreatedAt      time.Time `json:"createdAt"`
}

// toggleResultResponse は完了トグルのAPIレスポンス。
type toggleResultResponse struct {
	HabitID   string `json:"habitId"`
	Day       string `json:"day"`
	Completed bool   `json:"completed"`
}

// Create は習慣の作成を処理する。
// POST /habits
func (h *HabitHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createHabitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if verr := validate.Struct(req); verr != nil {
		middleware.WriteValidationError(w, verr)
		return
	}

	created, err := h.service.Create(r.Context(), userID, req.Name)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toHabitResponse(created))
}

// List はユーザーの習慣一覧を当日の完了状態付きで返す。
// GET /habits
func (h *HabitHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	habits, err := h.service.List(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	body := make([]habitWithStateResponse, 0, len(habits))
	for _, item := range habits {
		body = append(body, habitWithStateResponse{
			ID:             item.ID,
			Name:           item.Name,
			CompletedToday: item.CompletedToday,
			CreatedAt:      item.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, body)
}

// Delete は習慣の削除を処理する。完了記録も連鎖して削除される。
// DELETE /habits/:id
func (h *HabitHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	habitID := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), userID, habitID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Toggle は指定日の完了状態を反転する。
// PATCH /habits/:id/toggle
func (h *HabitHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	habitID := chi.URLParam(r, "id")

	// ボディ省略時は当日のトグルとして扱う
	var req toggleHabitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		middleware.WriteErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var day time.Time
	if req.Date != "" {
		parsed, issue := validate.ParseDate("date", req.Date, h.loc)
		if issue != nil {
			middleware.WriteValidationError(w, &model.ValidationError{Issues: []model.FieldIssue{*issue}})
			return
		}
		day = parsed
	}

	result, err := h.service.Toggle(r.Context(), userID, habitID, day)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordHabitToggle(result.Completed)
	}

	writeJSON(w, http.StatusOK, toggleResultResponse{
		HabitID:   result.HabitID,
		Day:       result.Day.Format("2006-01-02"),
		Completed: result.Completed,
	})
}

// Metrics は指定月の日別完了件数集計を返す。
// GET /habits/:id/metrics?date=xxx
func (h *HabitHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	habitID := chi.URLParam(r, "id")

	date, verr := validate.ParseDateQuery("date", r.URL.Query().Get("date"), h.loc)
	if verr != nil {
		middleware.WriteValidationError(w, verr)
		return
	}

	counts, err := h.service.MetricsForMonth(r.Context(), userID, habitID, date)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toDayCountResponses(counts))
}

// toHabitResponse はmodel.HabitからAPIレスポンスに変換する。
func toHabitResponse(h *model.Habit) habitResponse {
	return habitResponse{
		ID:        h.ID,
		Name:      h.Name,
		CreatedAt: h.CreatedAt,
	}
}
