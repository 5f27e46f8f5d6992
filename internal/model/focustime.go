// Package model はドメインモデルを定義する。
package model

import "time"

// FocusTime はユーザーが記録した集中時間のインターバルを表す。
// TimeFrom <= TimeTo の不変条件は作成時にのみ検証される（作成後は不変）。
type FocusTime struct {
	ID        string
	UserID    string
	TimeFrom  time.Time
	TimeTo    time.Time
	CreatedAt time.Time
}

// DayCount は日付キーごとの件数集計の1バケットを表す。
// キーは各レコードのTimeFromから導出した (年, 月, 日) の3つ組。
type DayCount struct {
	Year  int
	Month int
	Day   int
	Count int
}
