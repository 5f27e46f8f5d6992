// Package habit は習慣の管理と完了記録の集計機能を提供する。
package habit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/focustrack/internal/model"
	"github.com/hitoshi/focustrack/internal/repository"
	"github.com/hitoshi/focustrack/internal/security"
	"github.com/hitoshi/focustrack/internal/timerange"
)

// maxNameLength は習慣名の最大長。
const maxNameLength = 100

// ToggleResult は完了トグルの結果を表す。
type ToggleResult struct {
	HabitID   string
	Day       time.Time
	Completed bool
}

// Service は習慣に関するビジネスロジックを提供する。
// 全ての操作は認証済みユーザーのIDでスコープされ、
// 他ユーザーの習慣に対する操作はNotFoundとして扱う。
type Service struct {
	repo      repository.HabitRepository
	sanitizer security.TextSanitizerService
	loc       *time.Location
}

// NewService はServiceを生成する。
func NewService(repo repository.HabitRepository, sanitizer security.TextSanitizerService, loc *time.Location) *Service {
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
		loc:       loc,
	}
}

// Create は習慣を作成する。
// 名前はHTML除去・トリム後に保存する。除去後に空になる場合はValidationError。
func (s *Service) Create(ctx context.Context, userID, name string) (*model.Habit, error) {
	name = s.sanitizer.Sanitize(name)
	if name == "" {
		return nil, model.NewValidationError("name", "name must not be empty")
	}
	if len([]rune(name)) > maxNameLength {
		return nil, model.NewValidationError("name", fmt.Sprintf("name must be at most %d characters", maxNameLength))
	}

	now := time.Now()
	habit := &model.Habit{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, habit); err != nil {
		return nil, fmt.Errorf("failed to create habit: %w", err)
	}

	slog.Info("habit created",
		slog.String("user_id", userID),
		slog.String("habit_id", habit.ID),
	)

	return habit, nil
}

// List は指定ユーザーの習慣一覧を今日の完了状態付きで返す。created_at昇順。
func (s *Service) List(ctx context.Context, userID string) ([]model.HabitWithState, error) {
	today := s.todayStart()

	habits, err := s.repo.ListByUserWithState(ctx, userID, today)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}

	return habits, nil
}

// Delete は指定習慣を削除する。完了記録もCASCADE削除される。
// 存在しない・所有していない場合はNotFoundError。
func (s *Service) Delete(ctx context.Context, userID, habitID string) error {
	if err := s.repo.DeleteByID(ctx, userID, habitID); err != nil {
		return err
	}

	slog.Info("habit deleted",
		slog.String("user_id", userID),
		slog.String("habit_id", habitID),
	)
	return nil
}

// Toggle は指定習慣の指定日（ゼロ値の場合は今日）の完了記録をトグルする。
// 所有確認に失敗した場合はNotFoundErrorを返す。
func (s *Service) Toggle(ctx context.Context, userID, habitID string, day time.Time) (*ToggleResult, error) {
	if err := s.checkOwnership(ctx, userID, habitID); err != nil {
		return nil, err
	}

	if day.IsZero() {
		day = s.todayStart()
	} else {
		day = timerange.DayWindow(day, s.loc).Start
	}

	completed, err := s.repo.ToggleCompletion(ctx, userID, habitID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to toggle completion: %w", err)
	}

	return &ToggleResult{
		HabitID:   habitID,
		Day:       day,
		Completed: completed,
	}, nil
}

// MetricsForMonth は指定日を含む月の完了記録を日付ごとに集計する。
// 完了のある日のみがバケットとして返り、キー昇順で整列される。
func (s *Service) MetricsForMonth(ctx context.Context, userID, habitID string, date time.Time) ([]model.DayCount, error) {
	if err := s.checkOwnership(ctx, userID, habitID); err != nil {
		return nil, err
	}

	w := timerange.MonthWindow(date, s.loc)

	counts, err := s.repo.CountCompletionsByDay(ctx, userID, habitID, w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate completions: %w", err)
	}

	return counts, nil
}

// checkOwnership は習慣が存在し、かつ指定ユーザーの所有であることを確認する。
// 他ユーザーの習慣は存在を漏らさないためNotFoundとして扱う。
func (s *Service) checkOwnership(ctx context.Context, userID, habitID string) error {
	habit, err := s.repo.FindByID(ctx, habitID)
	if err != nil {
		return fmt.Errorf("failed to find habit: %w", err)
	}
	if habit == nil || habit.UserID != userID {
		return model.NewHabitNotFoundError(habitID)
	}
	return nil
}

// todayStart は設定タイムゾーンにおける今日の00:00を返す。
func (s *Service) todayStart() time.Time {
	return timerange.DayWindow(time.Now(), s.loc).Start
}
