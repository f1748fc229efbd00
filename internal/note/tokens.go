package note

import (
	"regexp"
	"strconv"
	"time"
)

// tokenPattern matches the recognized date tokens. Alternatives are ordered
// longest-first so MMMM never degrades into MM + MM.
var tokenPattern = regexp.MustCompile(`YYYY|YY|MMMM|MMM|MM|M|DDDD|DDD|DD|D`)

// ExpandTokens replaces every recognized date token in format with its value
// computed from the date's local calendar fields. Unrecognized text passes
// through unchanged.
func ExpandTokens(format string, date time.Time) string {
	return tokenPattern.ReplaceAllStringFunc(format, func(token string) string {
		return tokenValue(token, date)
	})
}

func tokenValue(token string, date time.Time) string {
	switch token {
	case "YYYY":
		return strconv.Itoa(date.Year())
	case "YY":
		year := strconv.Itoa(date.Year())
		if len(year) > 2 {
			return year[len(year)-2:]
		}
		return year
	case "MMMM":
		return date.Month().String()
	case "MMM":
		return date.Format("Jan")
	case "MM":
		return date.Format("01")
	case "M":
		return strconv.Itoa(int(date.Month()))
	case "DDDD":
		return date.Weekday().String()
	case "DDD":
		return date.Format("Mon")
	case "DD":
		return date.Format("02")
	case "D":
		return strconv.Itoa(date.Day())
	default:
		return token
	}
}
