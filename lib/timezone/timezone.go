package timezone

import "time"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Europe/Berlin")
	if err != nil {
		panic(err)
	}
}

// force timezone to be the portal's because the servers running this
// are not guaranteed to be in the same zone, which will shift dates
// parsed from the pages by a day around midnight
func Now() time.Time {
	return time.Now().In(Location)
}

// Today returns the start of the current day in the portal's timezone.
func Today() time.Time {
	return StartOfDay(Now())
}

func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// CurrentWeek returns the monday and sunday of the school week `now` is in.
func CurrentWeek(now time.Time) (start, stop time.Time) {
	offset := int(now.Weekday()) - int(time.Monday)
	if offset < 0 {
		// sunday belongs to the week that started 6 days earlier
		offset = 6
	}
	start = time.Date(now.Year(), now.Month(), now.Day()-offset, 0, 0, 0, 0, now.Location())
	stop = start.AddDate(0, 0, 6)
	return start, stop
}
