package dateutil

import "time"

// DateKeyLayout is the key format of beneficiary_daily_limits rows.
const DateKeyLayout = "2006-01-02"

func DateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}
