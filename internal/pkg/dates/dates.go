package dates

import "time"

// Layouts users see and type in chat. Matches the DD.MM.YYYY convention used
// everywhere in bot messages.
const (
	InputLayout   = "02.01.2006"
	DisplayLayout = "02.01.2006 15:04"
)

func Format(t time.Time) string {
	return t.Format(DisplayLayout)
}

// Parse converts a DD.MM.YYYY string into the end of that day so that a promo
// "valid until 31.12.2026" still works on the 31st. The end of day is one
// second before the next midnight in the local zone; adding a flat 24h would
// drift on DST-transition days.
func Parse(s string) (time.Time, error) {
	t, err := time.ParseInLocation(InputLayout, s, time.Local)
	if err != nil {
		return time.Time{}, err
	}

	return t.AddDate(0, 0, 1).Add(-time.Second), nil
}

func Valid(s string) bool {
	_, err := time.ParseInLocation(InputLayout, s, time.Local)
	return err == nil
}
