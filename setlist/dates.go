package setlist

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrBadDate = errors.New("bad date")

// ParseDate converts a sheet or query date to YYYYMMDD. It accepts
// MM/DD/YYYY, and YYYY-MM-DD as sent by date inputs. A dashed date whose
// first token is 12 or less is read as MM-DD-YYYY instead.
func ParseDate(s string) (int, error) {
	s = strings.TrimSpace(s)

	sep := "/"
	if strings.Contains(s, "-") {
		sep = "-"
	}
	parts := strings.Split(s, sep)
	if len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrBadDate, s)
	}

	var n [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || v < 0 {
			return 0, fmt.Errorf("%w: %q", ErrBadDate, s)
		}
		n[i] = v
	}

	var year, month, day int
	if sep == "-" {
		year, month, day = n[0], n[1], n[2]
		if year <= 12 {
			month, day, year = n[0], n[1], n[2]
		}
	} else {
		month, day, year = n[0], n[1], n[2]
	}

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return 0, fmt.Errorf("%w: %q", ErrBadDate, s)
	}
	return year*10000 + month*100 + day, nil
}

// Today returns now as YYYYMMDD in loc.
func Today(now time.Time, loc *time.Location) int {
	t := now.In(loc)
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

func isoDate(now time.Time, loc *time.Location) string {
	return now.In(loc).Format("2006-01-02")
}
