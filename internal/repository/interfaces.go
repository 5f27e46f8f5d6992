// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/focustrack/internal/model"
)

// FocusTimeRepository は集中時間レコードの永続化インターフェース。
type FocusTimeRepository interface {
	// Create は集中時間レコードを作成する。
	Create(ctx context.Context, ft *model.FocusTime) error

	// ListByUserAndRange は指定ユーザーのtime_fromが[start, end]（両端含む）に
	// 含まれるレコードをtime_from昇順で返す。ページネーションは行わない。
	ListByUserAndRange(ctx context.Context, userID string, start, end time.Time) ([]*model.FocusTime, error)

	// CountByDay は指定ユーザー・範囲内のレコードをtime_fromの(年, 月, 日)で
	// グループ化した件数を返す。グループ化と整列はストア側で行う。
	// レコードのない日は結果に含まれない。キー昇順。
	CountByDay(ctx context.Context, userID string, start, end time.Time) ([]model.DayCount, error)
}

// HabitRepository は習慣データの永続化インターフェース。
type HabitRepository interface {
	// Create は習慣を作成する。
	Create(ctx context.Context, habit *model.Habit) error

	// FindByID は指定IDの習慣を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Habit, error)

	// ListByUserWithState は指定ユーザーの習慣一覧を、指定日の完了状態付きで
	// created_at昇順で返す。
	ListByUserWithState(ctx context.Context, userID string, day time.Time) ([]model.HabitWithState, error)

	// DeleteByID は指定ユーザーが所有する習慣を削除する。
	// 関連するhabit_completionsはCASCADE削除される。
	// 所有していない・存在しない場合はmodel.NotFoundErrorを返す。
	DeleteByID(ctx context.Context, userID, id string) error

	// ToggleCompletion は指定日の完了記録をトグルする。
	// 記録が存在すれば削除してfalseを、存在しなければ作成してtrueを返す。
	ToggleCompletion(ctx context.Context, userID, habitID string, day time.Time) (bool, error)

	// CountCompletionsByDay は指定習慣の完了記録を日付でグループ化した件数を返す。
	// 完了のない日は結果に含まれない。キー昇順。
	CountCompletionsByDay(ctx context.Context, userID, habitID string, start, end time.Time) ([]model.DayCount, error)
}
