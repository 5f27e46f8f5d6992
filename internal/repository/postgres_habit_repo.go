package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/focustrack/internal/model"
)

// PostgresHabitRepo はPostgreSQLを使用した習慣リポジトリ。
type PostgresHabitRepo struct {
	db *sql.DB
}

// NewPostgresHabitRepo はPostgresHabitRepoを生成する。
func NewPostgresHabitRepo(db *sql.DB) *PostgresHabitRepo {
	return &PostgresHabitRepo{db: db}
}

// Create は習慣を作成する。
func (r *PostgresHabitRepo) Create(ctx context.Context, habit *model.Habit) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO habits (id, user_id, name, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		habit.ID, habit.UserID, habit.Name, habit.CreatedAt, habit.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert habit: %w", err)
	}
	return nil
}

// FindByID は指定IDの習慣を取得する。見つからない場合はnilを返す。
func (r *PostgresHabitRepo) FindByID(ctx context.Context, id string) (*model.Habit, error) {
	habit := &model.Habit{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, created_at, updated_at FROM habits WHERE id = $1`,
		id,
	).Scan(&habit.ID, &habit.UserID, &habit.Name, &habit.CreatedAt, &habit.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find habit by ID: %w", err)
	}

	return habit, nil
}

// ListByUserWithState は指定ユーザーの習慣一覧を指定日の完了状態付きで返す。
// created_at昇順。
func (r *PostgresHabitRepo) ListByUserWithState(ctx context.Context, userID string, day time.Time) ([]model.HabitWithState, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT h.id, h.user_id, h.name, h.created_at, h.updated_at,
		        (c.id IS NOT NULL)
		 FROM habits h
		 LEFT JOIN habit_completions c
		   ON c.habit_id = h.id AND c.day = $2::date
		 WHERE h.user_id = $1
		 ORDER BY h.created_at ASC`,
		userID, day,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	defer rows.Close()

	var result []model.HabitWithState
	for rows.Next() {
		var hs model.HabitWithState
		if err := rows.Scan(&hs.ID, &hs.UserID, &hs.Name, &hs.CreatedAt, &hs.UpdatedAt, &hs.CompletedToday); err != nil {
			return nil, fmt.Errorf("failed to scan habit: %w", err)
		}
		result = append(result, hs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate habits: %w", err)
	}

	return result, nil
}

// DeleteByID は指定ユーザーが所有する習慣を削除する。
// 関連するhabit_completionsはCASCADE削除される。
func (r *PostgresHabitRepo) DeleteByID(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM habits WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return model.NewHabitNotFoundError(id)
	}
	return nil
}

// ToggleCompletion は指定日の完了記録をトグルする。
// 削除と挿入を同一トランザクションで行い、他リクエストとの競合で
// 重複記録が生まれないようにする（(habit_id, day)のUNIQUE制約が最終防衛線）。
func (r *PostgresHabitRepo) ToggleCompletion(ctx context.Context, userID, habitID string, day time.Time) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`DELETE FROM habit_completions
		 WHERE habit_id = $1 AND user_id = $2 AND day = $3::date`,
		habitID, userID, day,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete completion: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	completed := false
	if rowsAffected == 0 {
		// 未完了だったので完了記録を作成する
		_, err = tx.ExecContext(ctx,
			`INSERT INTO habit_completions (id, habit_id, user_id, day, created_at)
			 VALUES ($1, $2, $3, $4::date, $5)`,
			uuid.New().String(), habitID, userID, day, time.Now(),
		)
		if err != nil {
			return false, fmt.Errorf("failed to insert completion: %w", err)
		}
		completed = true
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return completed, nil
}

// CountCompletionsByDay は指定習慣の完了記録を日付でグループ化した件数を返す。
// dayはdate型のため、タイムゾーン変換なしでそのままバケットキーになる。
func (r *PostgresHabitRepo) CountCompletionsByDay(ctx context.Context, userID, habitID string, start, end time.Time) ([]model.DayCount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT EXTRACT(YEAR FROM day)::int,
		        EXTRACT(MONTH FROM day)::int,
		        EXTRACT(DAY FROM day)::int,
		        COUNT(*)::int
		 FROM habit_completions
		 WHERE user_id = $1 AND habit_id = $2 AND day >= $3::date AND day <= $4::date
		 GROUP BY day
		 ORDER BY day ASC`,
		userID, habitID, start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate completions by day: %w", err)
	}
	defer rows.Close()

	var result []model.DayCount
	for rows.Next() {
		var dc model.DayCount
		if err := rows.Scan(&dc.Year, &dc.Month, &dc.Day, &dc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan day count: %w", err)
		}
		result = append(result, dc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate day counts: %w", err)
	}

	return result, nil
}

// compile-time interface check
var _ HabitRepository = (*PostgresHabitRepo)(nil)
