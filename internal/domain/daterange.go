package domain

import "time"

const DateLayout = "2006-01-02"

// DateRange is a closed range of calendar days, each at midnight in the
// location it was parsed in.
type DateRange struct {
	From time.Time
	To   time.Time
}

// ParseDateRange parses start and end in loc. A nil loc means time.Local.
func ParseDateRange(start, end string, loc *time.Location) (DateRange, error) {
	from, err := parseDate("start_date", start, loc)
	if err != nil {
		return DateRange{}, err
	}
	to, err := parseDate("end_date", end, loc)
	if err != nil {
		return DateRange{}, err
	}
	return DateRange{From: from, To: to}, nil
}

func parseDate(field, value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout, value, loc)
	if err != nil {
		return time.Time{}, &DateParseError{Field: field, Value: value, Err: err}
	}
	return t, nil
}
