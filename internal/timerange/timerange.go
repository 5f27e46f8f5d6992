// Package timerange は日・月単位の時間窓の計算と時間範囲の検証を提供する。
// 集計・一覧系の全エンドポイントがここで計算した境界を使用する。
package timerange

import (
	"time"

	"github.com/hitoshi/focustrack/internal/model"
)

// Window は両端を含む時間窓を表す。
type Window struct {
	Start time.Time
	End   time.Time
}

// DayWindow は指定日時を含む暦日の時間窓を返す。
// Startはその日の00:00:00.000、Endは23:59:59.999（ミリ秒精度、両端含む）。
// 境界はlocのローカル時刻で計算する。
func DayWindow(t time.Time, loc *time.Location) Window {
	t = t.In(loc)
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1).Add(-time.Millisecond)
	return Window{Start: start, End: end}
}

// MonthWindow は指定日時を含む暦月の時間窓を返す。
// Startは月初日の00:00:00.000、Endは月末日の23:59:59.999（両端含む）。
func MonthWindow(t time.Time, loc *time.Location) Window {
	t = t.In(loc)
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, 0).Add(-time.Millisecond)
	return Window{Start: start, End: end}
}

// CheckOrder はtoがfromより厳密に前の場合にRangeOrderErrorを返す。
// from == to は有効な範囲として受理する。
func CheckOrder(from, to time.Time) error {
	if to.Before(from) {
		return &model.RangeOrderError{}
	}
	return nil
}
