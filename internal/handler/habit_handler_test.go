package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/focustrack/internal/habit"
	"github.com/hitoshi/focustrack/internal/model"
)

// --- モック定義 ---

// mockHabitService はHabitServiceInterfaceのモック実装。
type mockHabitService struct {
	createFn          func(ctx context.Context, userID, name string) (*model.Habit, error)
	listFn            func(ctx context.Context, userID string) ([]model.HabitWithState, error)
	deleteFn          func(ctx context.Context, userID, habitID string) error
	toggleFn          func(ctx context.Context, userID, habitID string, day time.Time) (*habit.ToggleResult, error)
	metricsForMonthFn func(ctx context.Context, userID, habitID string, date time.Time) ([]model.DayCount, error)
}

func (m *mockHabitService) Create(ctx context.Context, userID, name string) (*model.Habit, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, name)
	}
	return nil, nil
}

func (m *mockHabitService) List(ctx context.Context, userID string) ([]model.HabitWithState, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockHabitService) Delete(ctx context.Context, userID, habitID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, habitID)
	}
	return nil
}

func (m *mockHabitService) Toggle(ctx context.Context, userID, habitID string, day time.Time) (*habit.ToggleResult, error) {
	if m.toggleFn != nil {
		return m.toggleFn(ctx, userID, habitID, day)
	}
	return nil, nil
}

func (m *mockHabitService) MetricsForMonth(ctx context.Context, userID, habitID string, date time.Time) ([]model.DayCount, error) {
	if m.metricsForMonthFn != nil {
		return m.metricsForMonthFn(ctx, userID, habitID, date)
	}
	return nil, nil
}

// mockHabitMetrics はHabitMetricsRecorderのモック実装。
type mockHabitMetrics struct {
	toggles []bool
}

func (m *mockHabitMetrics) RecordHabitToggle(completed bool) {
	m.toggles = append(m.toggles, completed)
}

// --- POST /habits テスト ---

func TestHabitHandler_Create_Success(t *testing.T) {
	svc := &mockHabitService{
		createFn: func(ctx context.Context, userID, name string) (*model.Habit, error) {
			if userID != "user-123" {
				t.Errorf("userID = %q, want %q", userID, "user-123")
			}
			if name != "読書" {
				t.Errorf("name = %q, want %q", name, "読書")
			}
			return &model.Habit{ID: "habit-1", UserID: userID, Name: name}, nil
		},
	}
	h := NewHabitHandler(svc, nil, time.UTC)

	body := bytes.NewBufferString(`{"name":"読書"}`)
	req := withUserID(httptest.NewRequest(http.MethodPost, "/habits", body), "user-123")
	w := httptest.NewRecorder()

	h.Create(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body: %s)", w.Code, http.StatusCreated, w.Body.String())
	}

	var resp map[string]any
	decodeBody(t, w, &resp)
	if resp["id"] != "habit-1" {
		t.Errorf("id = %v, want %q", resp["id"], "habit-1")
	}
	if resp["name"] != "読書" {
		t.Errorf("name = %v, want %q", resp["name"], "読書")
	}
}

func TestHabitHandler_Create_MissingName_Returns422(t *testing.T) {
	h := NewHabitHandler(&mockHabitService{}, nil, time.UTC)

	body := bytes.NewBufferString(`{}`)
	req := withUserID(httptest.NewRequest(http.MethodPost, "/habits", body), "user-123")
	w := httptest.NewRecorder()

	h.Create(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnprocessableEntity)
	}

	issues := parseIssueList(t, w)
	if len(issues) != 1 || issues[0]["field"] != "name" {
		t.Errorf("issues = %v, want single issue for field %q", issues, "name")
	}
}

func TestHabitHandler_Create_SanitizedToEmpty_Returns422(t *testing.T) {
	svc := &mockHabitService{
		createFn: func(ctx context.Context, userID, name string) (*model.Habit, error) {
			return nil, model.NewValidationError("name", "name is a required field")
		},
	}
	h := NewHabitHandler(svc, nil, time.UTC)

	body := bytes.NewBufferString(`{"name":"<script></script>"}`)
	req := withUserID(httptest.NewRequest(http.MethodPost, "/habits", body), "user-123")
	w := httptest.NewRecorder()

	h.Create(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnprocessableEntity)
	}
}

// --- GET /habits テスト ---

func TestHabitHandler_List_IncludesCompletionState(t *testing.T) {
	svc := &mockHabitService{
		listFn: func(ctx context.Context, userID string) ([]model.HabitWithState, error) {
			return []model.HabitWithState{
				{Habit: model.Habit{ID: "habit-1", Name: "読書"}, CompletedToday: true},
				{Habit: model.Habit{ID: "habit-2", Name: "運動"}, CompletedToday: false},
			}, nil
		},
	}
	h := NewHabitHandler(svc, nil, time.UTC)

	req := withUserID(httptest.NewRequest(http.MethodGet, "/habits", nil), "user-123")
	w := httptest.NewRecorder()

	h.List(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp []map[string]any
	decodeBody(t, w, &resp)
	if len(resp) != 2 {
		t.Fatalf("len(resp) = %d, want 2", len(resp))
	}
	if resp[0]["completedToday"] != true {
		t.Errorf("resp[0].completedToday = %v, want true", resp[0]["completedToday"])
	}
	if resp[1]["completedToday"] != false {
		t.Errorf("resp[1].completedToday = %v, want false", resp[1]["completedToday"])
	}
}

// --- DELETE /habits/:id テスト ---

func TestHabitHandler_Delete_Success(t *testing.T) {
	svc := &mockHabitService{
		deleteFn: func(ctx context.Context, userID, habitID string) error {
			if habitID != "habit-1" {
				t.Errorf("habitID = %q, want %q", habitID, "habit-1")
			}
			return nil
		},
	}
	h := NewHabitHandler(svc, nil, time.UTC)

	req := withUserID(httptest.NewRequest(http.MethodDelete, "/habits/habit-1", nil), "user-123")
	req = withChiURLParam(req, "id", "habit-1")
	w := httptest.NewRecorder()

	h.Delete(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
}

func TestHabitHandler_Delete_NotOwned_Returns404(t *testing.T) {
	svc := &mockHabitService{
		deleteFn: func(ctx context.Context, userID, habitID string) error {
			return model.NewHabitNotFoundError(habitID)
		},
	}
	h := NewHabitHandler(svc, nil, time.UTC)

	req := withUserID(httptest.NewRequest(http.MethodDelete, "/habits/other-users-habit", nil), "user-123")
	req = withChiURLParam(req, "id", "other-users-habit")
	w := httptest.NewRecorder()

	h.Delete(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

// --- PATCH /habits/:id/toggle テスト ---

func TestHabitHandler_Toggle_WithDateBody(t *testing.T) {
	svc := &mockHabitService{
		toggleFn: func(ctx context.Context, userID, habitID string, day time.Time) (*habit.ToggleResult, error) {
			if day.Year() != 2024 || day.Month() != time.January || day.Day() != 15 {
				t.Errorf("day = %v, want 2024-01-15", day)
			}
			return &habit.ToggleResult{
				HabitID:   habitID,
				Day:       time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
				Completed: true,
			}, nil
		},
	}
	recorder := &mockHabitMetrics{}
	h := NewHabitHandler(svc, recorder, time.UTC)

	body := bytes.NewBufferString(`{"date":"2024-01-15"}`)
	req := withUserID(httptest.NewRequest(http.MethodPatch, "/habits/habit-1/toggle", body), "user-123")
	req = withChiURLParam(req, "id", "habit-1")
	w := httptest.NewRecorder()

	h.Toggle(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body: %s)", w.Code, http.StatusOK, w.Body.String())
	}

	var resp map[string]any
	decodeBody(t, w, &resp)
	if resp["habitId"] != "habit-1" {
		t.Errorf("habitId = %v, want %q", resp["habitId"], "habit-1")
	}
	if resp["day"] != "2024-01-15" {
		t.Errorf("day = %v, want %q", resp["day"], "2024-01-15")
	}
	if resp["completed"] != true {
		t.Errorf("completed = %v, want true", resp["completed"])
	}

	if len(recorder.toggles) != 1 || !recorder.toggles[0] {
		t.Errorf("recorded toggles = %v, want [true]", recorder.toggles)
	}
}

func TestHabitHandler_Toggle_EmptyBody_DefaultsToToday(t *testing.T) {
	svc := &mockHabitService{
		toggleFn: func(ctx context.Context, userID, habitID string, day time.Time) (*habit.ToggleResult, error) {
			if !day.IsZero() {
				t.Errorf("day = %v, want zero value (today)", day)
			}
			return &habit.ToggleResult{HabitID: habitID, Day: time.Now(), Completed: false}, nil
		},
	}
	h := NewHabitHandler(svc, nil, time.UTC)

	req := withUserID(httptest.NewRequest(http.MethodPatch, "/habits/habit-1/toggle", nil), "user-123")
	req = withChiURLParam(req, "id", "habit-1")
	w := httptest.NewRecorder()

	h.Toggle(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestHabitHandler_Toggle_InvalidDate_Returns422(t *testing.T) {
	h := NewHabitHandler(&mockHabitService{}, nil, time.UTC)

	body := bytes.NewBufferString(`{"date":"not-a-date"}`)
	req := withUserID(httptest.NewRequest(http.MethodPatch, "/habits/habit-1/toggle", body), "user-123")
	req = withChiURLParam(req, "id", "habit-1")
	w := httptest.NewRecorder()

	h.Toggle(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnprocessableEntity)
	}
}

// --- GET /habits/:id/metrics テスト ---

func TestHabitHandler_Metrics_BucketShape(t *testing.T) {
	svc := &mockHabitService{
		metricsForMonthFn: func(ctx context.Context, userID, habitID string, date time.Time) ([]model.DayCount, error) {
			if habitID != "habit-1" {
				t.Errorf("habitID = %q, want %q", habitID, "habit-1")
			}
			return []model.DayCount{{Year: 2024, Month: 2, Day: 29, Count: 1}}, nil
		},
	}
	h := NewHabitHandler(svc, nil, time.UTC)

	req := withUserID(httptest.NewRequest(http.MethodGet, "/habits/habit-1/metrics?date=2024-02-01", nil), "user-123")
	req = withChiURLParam(req, "id", "habit-1")
	w := httptest.NewRecorder()

	h.Metrics(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp []struct {
		ID    [3]int `json:"_id"`
		Count int    `json:"count"`
	}
	decodeBody(t, w, &resp)
	if len(resp) != 1 {
		t.Fatalf("len(resp) = %d, want 1", len(resp))
	}
	if resp[0].ID != [3]int{2024, 2, 29} {
		t.Errorf("resp[0]._id = %v, want [2024 2 29]", resp[0].ID)
	}
}

func TestHabitHandler_Metrics_NotOwned_Returns404(t *testing.T) {
	svc := &mockHabitService{
		metricsForMonthFn: func(ctx context.Context, userID, habitID string, date time.Time) ([]model.DayCount, error) {
			return nil, model.NewHabitNotFoundError(habitID)
		},
	}
	h := NewHabitHandler(svc, nil, time.UTC)

	req := withUserID(httptest.NewRequest(http.MethodGet, "/habits/habit-9/metrics?date=2024-02-01", nil), "user-123")
	req = withChiURLParam(req, "id", "habit-9")
	w := httptest.NewRecorder()

	h.Metrics(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestHabitHandler_Toggle_DateBodyInterpretedInConfiguredZone(t *testing.T) {
	// ボディの日付はハンドラーのタイムゾーンの暦日として解釈される。
	// UTCで解釈すると負のオフセットでは前日の完了記録がトグルされてしまう。
	loc := time.FixedZone("UTC-5", -5*3600)

	var got time.Time
	svc := &mockHabitService{
		toggleFn: func(ctx context.Context, userID, habitID string, day time.Time) (*habit.ToggleResult, error) {
			got = day
			return &habit.ToggleResult{
				HabitID:   habitID,
				Day:       time.Date(2024, 1, 15, 0, 0, 0, 0, loc),
				Completed: true,
			}, nil
		},
	}
	h := NewHabitHandler(svc, nil, loc)

	body := bytes.NewBufferString(`{"date":"2024-01-15"}`)
	req := withUserID(httptest.NewRequest(http.MethodPatch, "/habits/habit-1/toggle", body), "user-123")
	req = withChiURLParam(req, "id", "habit-1")
	w := httptest.NewRecorder()

	h.Toggle(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if y, m, d := got.In(loc).Date(); y != 2024 || m != time.January || d != 15 {
		t.Errorf("local date = %d-%02d-%02d, want 2024-01-15", y, m, d)
	}
}
