package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/focustrack/internal/model"
)

// PostgresFocusTimeRepo はPostgreSQLを使用した集中時間リポジトリ。
// 日付バケットの集計はストア側（GROUP BY EXTRACT）で行う。
type PostgresFocusTimeRepo struct {
	db *sql.DB
	tz string // バケットキー導出に使用するタイムゾーン名（例: "UTC", "Asia/Tokyo"）
}

// NewPostgresFocusTimeRepo はPostgresFocusTimeRepoを生成する。
// tzは日付バケットの境界計算に使用するIANAタイムゾーン名を指定する。
func NewPostgresFocusTimeRepo(db *sql.DB, tz string) *PostgresFocusTimeRepo {
	return &PostgresFocusTimeRepo{db: db, tz: tz}
}

// Create は集中時間レコードを作成する。
func (r *PostgresFocusTimeRepo) Create(ctx context.Context, ft *model.FocusTime) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO focus_times (id, user_id, time_from, time_to, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		ft.ID, ft.UserID, ft.TimeFrom, ft.TimeTo, ft.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert focus time: %w", err)
	}
	return nil
}

// ListByUserAndRange は指定ユーザーのtime_fromが[start, end]に含まれる
// レコードをtime_from昇順で返す。
func (r *PostgresFocusTimeRepo) ListByUserAndRange(ctx context.Context, userID string, start, end time.Time) ([]*model.FocusTime, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, time_from, time_to, created_at
		 FROM focus_times
		 WHERE user_id = $1 AND time_from >= $2 AND time_from <= $3
		 ORDER BY time_from ASC`,
		userID, start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list focus times: %w", err)
	}
	defer rows.Close()

	var result []*model.FocusTime
	for rows.Next() {
		ft := &model.FocusTime{}
		if err := rows.Scan(&ft.ID, &ft.UserID, &ft.TimeFrom, &ft.TimeTo, &ft.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan focus time: %w", err)
		}
		result = append(result, ft)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate focus times: %w", err)
	}

	return result, nil
}

// CountByDay は範囲内のレコードをtime_fromの(年, 月, 日)でグループ化した件数を返す。
// バケットキーはリポジトリ設定のタイムゾーンにおけるローカル日付から導出する。
func (r *PostgresFocusTimeRepo) CountByDay(ctx context.Context, userID string, start, end time.Time) ([]model.DayCount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT EXTRACT(YEAR FROM time_from AT TIME ZONE $4)::int,
		        EXTRACT(MONTH FROM time_from AT TIME ZONE $4)::int,
		        EXTRACT(DAY FROM time_from AT TIME ZONE $4)::int,
		        COUNT(*)::int
		 FROM focus_times
		 WHERE user_id = $1 AND time_from >= $2 AND time_from <= $3
		 GROUP BY 1, 2, 3
		 ORDER BY 1, 2, 3`,
		userID, start, end, r.tz,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate focus times by day: %w", err)
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
var _ FocusTimeRepository = (*PostgresFocusTimeRepo)(nil)
