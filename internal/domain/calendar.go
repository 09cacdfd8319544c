package domain

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"time"
)

// fiveDailyDays holds the 5-daily output days per month (index 0 = January).
// The schedule is irregular and is reproduced as published, not derived.
var fiveDailyDays = [12][]int{
	{5, 10, 15, 20, 25, 30},
	{4, 9, 14, 19, 24},
	{1, 6, 11, 16, 21, 26, 31},
	{5, 10, 15, 20, 25, 30},
	{5, 10, 15, 20, 25, 30},
	{4, 9, 14, 19, 24, 29},
	{4, 9, 14, 19, 24, 29},
	{3, 8, 13, 18, 23, 28},
	{2, 7, 12, 17, 22, 27},
	{2, 7, 12, 17, 22, 27},
	{1, 6, 11, 16, 21, 26},
	{1, 6, 11, 16, 21, 26, 31},
}

// DaysOfMonth returns the output days of month for the given time step.
// February always has 28 days for 1-daily outputs; the model calendar has
// no leap years.
func DaysOfMonth(month int, step TimeStep) ([]int, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: month=%d", ErrMonthOutOfRange, month)
	}

	switch step {
	case OneDaily:
		n := 31
		switch month {
		case 2:
			n = 28
		case 4, 6, 9, 11:
			n = 30
		}
		days := make([]int, n)
		for i := range days {
			days[i] = i + 1
		}
		return days, nil
	case FiveDaily:
		src := fiveDailyDays[month-1]
		days := make([]int, len(src))
		copy(days, src)
		return days, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedTimeStep, step)
	}
}

// Label returns the time axis label of an output day (noon UTC).
func Label(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 12, 0, 0, 0, time.UTC)
}

// TimeAxis builds the labels of every expected output between yearStart
// and yearEnd inclusive, ordered by year, month and day.
func TimeAxis(yearStart, yearEnd int, step TimeStep) ([]time.Time, error) {
	if yearEnd < yearStart {
		return nil, fmt.Errorf("%w: %d > %d", ErrInvalidYearRange, yearStart, yearEnd)
	}

	var axis []time.Time
	for year := yearStart; year <= yearEnd; year++ {
		for month := 1; month <= 12; month++ {
			days, err := DaysOfMonth(month, step)
			if err != nil {
				return nil, err
			}
			for _, day := range days {
				axis = append(axis, Label(year, month, day))
			}
		}
	}
	return axis, nil
}

// FileDateTokens returns the y<YYYY>m<MM>d<DD> tokens embedded in file
// names for year. The Nth token matches the Nth label TimeAxis produces
// for the same year.
func FileDateTokens(year int, step TimeStep) ([]string, error) {
	var tokens []string
	for month := 1; month <= 12; month++ {
		days, err := DaysOfMonth(month, step)
		if err != nil {
			return nil, err
		}
		for _, day := range days {
			tokens = append(tokens, FileDateToken(year, month, day))
		}
	}
	return tokens, nil
}

// FileDateToken formats a single file date token.
func FileDateToken(year, month, day int) string {
	return fmt.Sprintf("y%04dm%02dd%02d", year, month, day)
}

var (
	tokenRe     = regexp.MustCompile(`^y(\d{4})m(\d{2})d(\d{2})$`)
	pathTokenRe = regexp.MustCompile(`_(y\d{4}m\d{2}d\d{2})_`)
)

// ParseFileDateToken decodes a y<YYYY>m<MM>d<DD> token into its label.
func ParseFileDateToken(token string) (time.Time, error) {
	m := tokenRe.FindStringSubmatch(token)
	if m == nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadDateToken, token)
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	t := Label(year, month, day)
	// time.Date normalizes overflow, so impossible dates come back changed.
	// The model calendar has no leap day.
	if int(t.Month()) != month || t.Day() != day || (month == 2 && day == 29) {
		return time.Time{}, fmt.Errorf("%w: %q is not a model calendar date", ErrBadDateToken, token)
	}
	return t, nil
}

// DateFromPath decodes the date token embedded in an output file name,
// e.g. ".../BIOPERIANT12-CNCLNG01_y2008m01d05_diadT.nc".
func DateFromPath(path string) (time.Time, error) {
	m := pathTokenRe.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return time.Time{}, fmt.Errorf("%w: no date token in %s", ErrBadDateToken, path)
	}
	t, err := ParseFileDateToken(m[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// RemoveTime returns a copy of axis without the first label equal to t.
func RemoveTime(axis []time.Time, t time.Time) ([]time.Time, error) {
	for i, label := range axis {
		if label.Equal(t) {
			out := make([]time.Time, 0, len(axis)-1)
			out = append(out, axis[:i]...)
			return append(out, axis[i+1:]...), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrTimeNotInAxis, t.Format(time.RFC3339))
}
