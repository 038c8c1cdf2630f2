package generation

import (
	"encoding/json"
	"sort"

	"gorm.io/datatypes"

	types "github.com/voyplan/voyplan-backend/internal/domain"
)

// Day-set plumbing. pending, completed, and failed day numbers plus the
// in-flight current day always partition 1..total_days at every stable state;
// every transition below moves a day between sets, never duplicates or drops
// one.

func DaySetFromJSON(raw datatypes.JSON) []int {
	var out []int
	if len(raw) == 0 {
		return out
	}
	_ = json.Unmarshal(raw, &out)
	return out
}

func FailedDaysFromJSON(raw datatypes.JSON) []types.FailedDay {
	var out []types.FailedDay
	if len(raw) == 0 {
		return out
	}
	_ = json.Unmarshal(raw, &out)
	return out
}

// FullDaySet returns 1..totalDays.
func FullDaySet(totalDays int) []int {
	out := make([]int, 0, totalDays)
	for d := 1; d <= totalDays; d++ {
		out = append(out, d)
	}
	return out
}

func removeDay(set []int, day int) []int {
	out := make([]int, 0, len(set))
	for _, d := range set {
		if d != day {
			out = append(out, d)
		}
	}
	return out
}

func AddDay(set []int, day int) []int {
	for _, d := range set {
		if d == day {
			return set
		}
	}
	out := append(append([]int{}, set...), day)
	sort.Ints(out)
	return out
}

func failedDayNumbers(failed []types.FailedDay) []int {
	out := make([]int, 0, len(failed))
	for _, f := range failed {
		out = append(out, f.DayNumber)
	}
	sort.Ints(out)
	return out
}
