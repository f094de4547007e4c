// Package progression holds the pure numeric side of the dashboard: the
// leveling curve, milestone lookup and segment fill, and compact number
// formatting. Nothing in here has side effects.
package progression

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// MinLevel and MaxLevel bound the experience curve.
	MinLevel = 1
	MaxLevel = 126

	// TargetLevel is the ceiling used by the secondary "to 99" gauge.
	TargetLevel = 99
)

// Number is the set of values the milestone helpers accept.
type Number interface {
	~int | ~int32 | ~int64 | ~float64
}

// XPForLevel returns the cumulative experience required to reach level.
// The level is clamped to [MinLevel, MaxLevel]; level 1 maps to 0.
func XPForLevel(level int) int64 {
	lvl := Clamp(level, MinLevel, MaxLevel)

	var points int64
	for i := 1; i < lvl; i++ {
		points += int64(math.Floor(float64(i) + 300*math.Pow(2, float64(i)/7)))
	}
	return points / 4
}

// LevelForXP returns the highest level whose experience floor is <= xp.
func LevelForXP(xp int64) int {
	level := MinLevel
	for l := MinLevel + 1; l <= MaxLevel; l++ {
		if XPForLevel(l) > xp {
			break
		}
		level = l
	}
	return level
}

// Clamp saturates v into [lo, hi].
func Clamp[T Number](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// NextMilestone returns the first threshold strictly greater than current.
// Past the ceiling it saturates at the last threshold. An empty ladder
// returns current unchanged.
func NextMilestone[T Number](current T, thresholds []T) T {
	if len(thresholds) == 0 {
		return current
	}
	for _, m := range thresholds {
		if current < m {
			return m
		}
	}
	return thresholds[len(thresholds)-1]
}

// PreviousMilestone returns the largest threshold <= current, or 0 when the
// value sits below the first threshold. An empty ladder returns current.
func PreviousMilestone[T Number](current T, thresholds []T) T {
	if len(thresholds) == 0 {
		return current
	}
	var prev T
	for _, m := range thresholds {
		if m > current {
			break
		}
		prev = m
	}
	return prev
}

// SegmentFillPercent returns how far current sits between from and to, in
// [0, 100].
func SegmentFillPercent[T Number](current, from, to T) float64 {
	if to <= from || current <= from {
		return 0
	}
	if current >= to {
		return 100
	}
	return Clamp(float64(current-from)/float64(to-from)*100, 0, 100)
}

// Percent returns part/whole as a clamped percentage. A whole below 1 is
// treated as 1 so malformed upstream data never divides by zero.
func Percent(part, whole int64) float64 {
	if whole < 1 {
		whole = 1
	}
	return Clamp(float64(part)/float64(whole)*100, 0, 100)
}

// IsAscending reports whether thresholds are sorted strictly ascending,
// which every milestone helper assumes.
func IsAscending[T Number](thresholds []T) bool {
	for i := 1; i < len(thresholds); i++ {
		if thresholds[i] <= thresholds[i-1] {
			return false
		}
	}
	return true
}

// FormatCompact scales n to k/m/b with one decimal place, dropping a
// trailing ".0".
func FormatCompact(n int64) string {
	abs := n
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= 1_000_000_000:
		return compact(float64(n)/1_000_000_000) + "b"
	case abs >= 1_000_000:
		return compact(float64(n)/1_000_000) + "m"
	case abs >= 1_000:
		return compact(float64(n)/1_000) + "k"
	}
	return strconv.FormatInt(n, 10)
}

func compact(f float64) string {
	return strings.TrimSuffix(strconv.FormatFloat(f, 'f', 1, 64), ".0")
}

var printer = message.NewPrinter(language.English)

// FormatNumber renders n with grouped thousands, e.g. 13,034,431.
func FormatNumber(n int64) string {
	return printer.Sprintf("%d", n)
}

// FormatRank renders a hiscores rank for the badge.
func FormatRank(rank int64) string {
	if rank < 0 {
		return "Unranked"
	}
	return "#" + FormatNumber(rank)
}

// FormatPercent renders a whole-number percentage, e.g. "42%".
func FormatPercent(pct float64) string {
	return fmt.Sprintf("%.0f%%", pct)
}

// ProgressColor maps a percentage onto a red -> yellow -> green ramp.
func ProgressColor(pct float64) string {
	p := Clamp(pct, 0, 100)
	if p <= 50 {
		t := p / 50
		return fmt.Sprintf("rgb(255,%d,0)", int(math.Round(255*t)))
	}
	t := (p - 50) / 50
	return fmt.Sprintf("rgb(%d,255,0)", int(math.Round(255*(1-t))))
}
