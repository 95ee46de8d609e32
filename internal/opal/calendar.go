package opal

import "time"

// opalDayBoundary is the offset of the fare-accounting day from
// midnight: an Opal day runs 04:00 to 04:00 local time.
const opalDayBoundary = 4 * time.Hour

// Day is an instant resolved onto the Opal fare calendar.
type Day struct {
	// Date is the Opal date in YYYYMMDD form.
	Date string
	// DayOfWeek is the ISO weekday, Monday=1 through Sunday=7.
	DayOfWeek int
	// IsDiscounted reports whether the date attracts weekend/holiday
	// fares, either from the bundle's discounted day-of-week set or its
	// public holiday list.
	IsDiscounted bool
}

// isoWeekday converts Go's Sunday-based weekday to ISO numbering.
func isoWeekday(d time.Weekday) int {
	if d == time.Sunday {
		return 7
	}
	return int(d)
}

// Day resolves an instant to its Opal date in the bundle's timezone.
// Anything before 04:00 local belongs to the previous date.
func (n *Network) Day(t time.Time) Day {
	opalTime := t.In(n.Location()).Add(-opalDayBoundary)

	date := opalTime.Format("20060102")
	dow := isoWeekday(opalTime.Weekday())

	isDiscountedDOW := false
	for _, d := range n.Config.WeekendFareDOW {
		if d == dow {
			isDiscountedDOW = true
			break
		}
	}
	isPublicHoliday := false
	for _, holiday := range n.TOU.PublicHolidays {
		if holiday == date {
			isPublicHoliday = true
			break
		}
	}

	return Day{
		Date:         date,
		DayOfWeek:    dow,
		IsDiscounted: isDiscountedDOW || isPublicHoliday,
	}
}

// DailyCap returns the daily fare cap in cents for a passenger category
// at a tap-on time: the weekend/holiday cap on discounted days, the
// standard cap otherwise.
func (n *Network) DailyCap(fareType string, tapOnTime time.Time) (int, error) {
	params, err := n.FareParameters(fareType)
	if err != nil {
		return 0, err
	}
	if n.Day(tapOnTime).IsDiscounted {
		return params.Caps.WeekendDailyCap, nil
	}
	return params.Caps.DailyCap, nil
}
