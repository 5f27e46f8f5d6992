// Package focustime は集中時間の記録と集計機能を提供する。
package focustime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/focustrack/internal/model"
	"github.com/hitoshi/focustrack/internal/repository"
	"github.com/hitoshi/focustrack/internal/timerange"
)

// Service は集中時間に関するビジネスロジックを提供する。
// 全ての操作は認証済みユーザーのIDでスコープされる。
type Service struct {
	repo repository.FocusTimeRepository
	loc  *time.Location
}

// NewService はServiceを生成する。
// locは日・月境界の計算に使用するタイムゾーン。
func NewService(repo repository.FocusTimeRepository, loc *time.Location) *Service {
	return &Service{
		repo: repo,
		loc:  loc,
	}
}

// Create は集中時間レコードを作成する。
// timeToがtimeFromより厳密に前の場合はRangeOrderErrorを返す
// （等しい境界は受理する）。成功時は保存済みレコードを返す。
func (s *Service) Create(ctx context.Context, userID string, timeFrom, timeTo time.Time) (*model.FocusTime, error) {
	if err := timerange.CheckOrder(timeFrom, timeTo); err != nil {
		return nil, err
	}

	ft := &model.FocusTime{
		ID:        uuid.New().String(),
		UserID:    userID,
		TimeFrom:  timeFrom,
		TimeTo:    timeTo,
		CreatedAt: time.Now(),
	}

	if err := s.repo.Create(ctx, ft); err != nil {
		return nil, fmt.Errorf("failed to create focus time: %w", err)
	}

	slog.Info("focus time recorded",
		slog.String("user_id", userID),
		slog.String("focus_time_id", ft.ID),
	)

	return ft, nil
}

// ListForDay は指定日の集中時間レコードをtime_from昇順で返す。
// 日の境界は00:00:00.000〜23:59:59.999（両端含む）。
func (s *Service) ListForDay(ctx context.Context, userID string, date time.Time) ([]*model.FocusTime, error) {
	w := timerange.DayWindow(date, s.loc)

	records, err := s.repo.ListByUserAndRange(ctx, userID, w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("failed to list focus times for day: %w", err)
	}

	return records, nil
}

// MetricsForMonth は指定日を含む月の集中時間レコードを日付ごとに集計する。
// レコードのある日のみがバケットとして返り、キー昇順で整列される。
func (s *Service) MetricsForMonth(ctx context.Context, userID string, date time.Time) ([]model.DayCount, error) {
	w := timerange.MonthWindow(date, s.loc)

	counts, err := s.repo.CountByDay(ctx, userID, w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate focus times: %w", err)
	}

	return counts, nil
}
