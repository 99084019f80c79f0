package fields

import (
	"fmt"
	"strconv"
	"strings"
)

type dateKind int

const (
	dateNumeric dateKind = iota // MM/DD/YYYY (also - or . separators, 2-digit years)
	dateMonthName               // Month DD, YYYY
	dateISO                     // YYYY-MM-DD
)

var monthNumbers = map[string]int{
	"jan": 1, "january": 1,
	"feb": 2, "february": 2,
	"mar": 3, "march": 3,
	"apr": 4, "april": 4,
	"may": 5,
	"jun": 6, "june": 6,
	"jul": 7, "july": 7,
	"aug": 8, "august": 8,
	"sep": 9, "sept": 9, "september": 9,
	"oct": 10, "october": 10,
	"nov": 11, "november": 11,
	"dec": 12, "december": 12,
}

// normalizeDate converts the captured date groups into canonical MM/DD/YYYY.
// Returns ok=false when the groups do not form a plausible calendar date, in
// which case the caller moves on to the next rule.
func normalizeDate(kind dateKind, groups []string) (string, bool) {
	var month, day, year int
	var err error

	switch kind {
	case dateNumeric:
		if month, err = strconv.Atoi(groups[0]); err != nil {
			return "", false
		}
		if day, err = strconv.Atoi(groups[1]); err != nil {
			return "", false
		}
		if year, err = strconv.Atoi(groups[2]); err != nil {
			return "", false
		}
		if len(groups[2]) == 2 {
			// two-digit years pivot at 50: 51..99 -> 19xx, 00..50 -> 20xx
			if year > 50 {
				year += 1900
			} else {
				year += 2000
			}
		}
	case dateMonthName:
		m, ok := monthNumbers[strings.ToLower(groups[0])]
		if !ok {
			return "", false
		}
		month = m
		if day, err = strconv.Atoi(groups[1]); err != nil {
			return "", false
		}
		if year, err = strconv.Atoi(groups[2]); err != nil {
			return "", false
		}
	case dateISO:
		if year, err = strconv.Atoi(groups[0]); err != nil {
			return "", false
		}
		if month, err = strconv.Atoi(groups[1]); err != nil {
			return "", false
		}
		if day, err = strconv.Atoi(groups[2]); err != nil {
			return "", false
		}
	default:
		return "", false
	}

	if month < 1 || month > 12 || day < 1 || day > 31 || year < 1000 || year > 9999 {
		return "", false
	}
	return fmt.Sprintf("%02d/%02d/%04d", month, day, year), true
}
