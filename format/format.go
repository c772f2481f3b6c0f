// Package format holds the small text helpers the bot uses when it renders
// replies and log lines.
package format

import (
	"fmt"
	"strings"
	"time"
)

// Ordinal returns n followed by its English ordinal suffix: 1st, 2nd, 3rd,
// 4th, 11th, 12th, 13th, 21st, 122nd. Negative numbers take the suffix of
// their absolute value.
func Ordinal(n int) string {
	abs := n
	if abs < 0 {
		abs = -abs
	}

	suffix := "th"
	if r := abs % 100; r < 11 || r > 13 {
		switch abs % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

// Genitive returns the possessive form of word after trimming whitespace:
// "James" becomes "James'" and "Anna" becomes "Anna's".
func Genitive(word string) string {
	word = strings.TrimSpace(word)
	if strings.HasSuffix(word, "s") {
		return word + "'"
	}
	return word + "'s"
}

// MapValues clamps val to [inMin, inMax] and rescales it linearly onto
// [outMin, outMax]. An empty input range maps to outMin.
func MapValues(val, inMin, inMax, outMin, outMax float64) float64 {
	if inMax == inMin {
		return outMin
	}
	lo, hi := inMin, inMax
	if lo > hi {
		lo, hi = hi, lo
	}
	val = min(max(val, lo), hi)
	return (val-inMin)*(outMax-outMin)/(inMax-inMin) + outMin
}

// Wait renders a cooldown as "N seconds", "M minutes and N seconds" or
// "H hours, M minutes and N seconds". Fractions of a second are rounded up.
func Wait(d time.Duration) string {
	secs := int64((d + time.Second - 1) / time.Second)
	if secs < 0 {
		secs = 0
	}
	h, m, s := secs/3600, secs/60%60, secs%60

	switch {
	case h > 0:
		return fmt.Sprintf("%d hours, %d minutes and %d seconds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%d minutes and %d seconds", m, s)
	default:
		return fmt.Sprintf("%d seconds", s)
	}
}

// Uptime renders d as "Dd,Hh,Mm,Ss".
func Uptime(d time.Duration) string {
	secs := int64(d / time.Second)
	if secs < 0 {
		secs = 0
	}
	days := secs / 86400
	hours := secs / 3600 % 24
	minutes := secs / 60 % 60
	return fmt.Sprintf("%dd,%dh,%dm,%ds", days, hours, minutes, secs%60)
}

// Banner returns "> START OF TITLE <" (or END when start is false) centered
// in a line of '=' of the given width. Titles wider than width are not cut.
func Banner(title string, width int, start bool) string {
	word := "END"
	if start {
		word = "START"
	}
	text := fmt.Sprintf("> %s OF %s <", word, strings.ToUpper(title))

	pad := width - len(text)
	if pad <= 0 {
		return text
	}
	// Odd padding puts the extra fill on the right.
	left := pad / 2
	return strings.Repeat("=", left) + text + strings.Repeat("=", pad-left)
}
