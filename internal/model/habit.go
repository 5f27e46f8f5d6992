package model

import "time"

// Habit はユーザーが継続的に記録する習慣を表す。
type Habit struct {
	ID        string
	UserID    string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HabitCompletion は習慣の特定日における完了記録を表す。
// (HabitID, Day) で一意。トグル操作により作成・削除される。
type HabitCompletion struct {
	ID        string
	HabitID   string
	UserID    string
	Day       time.Time // 日付のみ有効（時刻成分は 00:00:00）
	CreatedAt time.Time
}

// HabitWithState は習慣と指定日の完了状態を結合した構造体。
// 一覧表示で使用する。
type HabitWithState struct {
	Habit
	CompletedToday bool
}
