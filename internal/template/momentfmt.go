package template

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// momentTokens is the closed vocabulary of format tokens the template
// mini-language understands, ordered longest-first so matching never splits
// a longer token into shorter ones.
var momentTokens = []string{
	"YYYY", "YY",
	"MMMM", "MMM", "MM", "M",
	"dddd", "ddd",
	"DD", "D",
	"HH", "H", "hh", "h",
	"mm", "m",
	"ss", "s",
	"A", "a",
	"Z",
}

// formatMoment renders t according to a moment-style layout built from the
// closed token set. Runes outside the vocabulary are copied literally.
func formatMoment(t time.Time, layout string) string {
	var b strings.Builder
	for i := 0; i < len(layout); {
		token := matchToken(layout[i:])
		if token == "" {
			b.WriteByte(layout[i])
			i++
			continue
		}
		b.WriteString(momentValue(t, token))
		i += len(token)
	}
	return b.String()
}

func matchToken(s string) string {
	for _, token := range momentTokens {
		if strings.HasPrefix(s, token) {
			return token
		}
	}
	return ""
}

func momentValue(t time.Time, token string) string {
	switch token {
	case "YYYY":
		return strconv.Itoa(t.Year())
	case "YY":
		year := strconv.Itoa(t.Year())
		if len(year) > 2 {
			return year[len(year)-2:]
		}
		return year
	case "MMMM":
		return t.Month().String()
	case "MMM":
		return t.Format("Jan")
	case "MM":
		return t.Format("01")
	case "M":
		return strconv.Itoa(int(t.Month()))
	case "dddd":
		return t.Weekday().String()
	case "ddd":
		return t.Format("Mon")
	case "DD":
		return t.Format("02")
	case "D":
		return strconv.Itoa(t.Day())
	case "HH":
		return t.Format("15")
	case "H":
		return strconv.Itoa(t.Hour())
	case "hh":
		return t.Format("03")
	case "h":
		return strconv.Itoa(hour12(t))
	case "mm":
		return t.Format("04")
	case "m":
		return strconv.Itoa(t.Minute())
	case "ss":
		return t.Format("05")
	case "s":
		return strconv.Itoa(t.Second())
	case "A":
		return t.Format("PM")
	case "a":
		return t.Format("pm")
	case "Z":
		return timezoneOffset(t)
	default:
		return token
	}
}

func hour12(t time.Time) int {
	h := t.Hour() % 12
	if h == 0 {
		h = 12
	}
	return h
}

// timezoneOffset returns the local UTC offset as ±HH:MM.
func timezoneOffset(t time.Time) string {
	_, seconds := t.Zone()
	sign := "+"
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}
	return fmt.Sprintf("%s%02d:%02d", sign, seconds/3600, (seconds%3600)/60)
}
