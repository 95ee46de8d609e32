package opal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpalDayStartsAtFourAM(t *testing.T) {
	network := newTestNetwork()

	// 03:59 local still belongs to the previous fare day.
	day := network.Day(sydneyTime(2023, time.September, 20, 3, 59))
	assert.Equal(t, "20230919", day.Date)
	assert.Equal(t, 2, day.DayOfWeek) // Tuesday

	day = network.Day(sydneyTime(2023, time.September, 20, 4, 0))
	assert.Equal(t, "20230920", day.Date)
	assert.Equal(t, 3, day.DayOfWeek) // Wednesday
}

func TestOpalDayUsesBundleTimezone(t *testing.T) {
	network := newTestNetwork()

	// 2023-09-20 01:00 UTC is 11:00 in Sydney.
	day := network.Day(time.Date(2023, time.September, 20, 1, 0, 0, 0, time.UTC))
	assert.Equal(t, "20230920", day.Date)
}

func TestDiscountedDays(t *testing.T) {
	network := newTestNetwork()

	saturday := network.Day(sydneyTime(2023, time.September, 23, 12, 0))
	assert.Equal(t, 6, saturday.DayOfWeek)
	assert.True(t, saturday.IsDiscounted)

	sunday := network.Day(sydneyTime(2023, time.September, 24, 12, 0))
	assert.True(t, sunday.IsDiscounted)

	weekday := network.Day(sydneyTime(2023, time.September, 20, 12, 0))
	assert.False(t, weekday.IsDiscounted)

	// 2023-09-25 is a Monday but a public holiday in the fixture.
	holiday := network.Day(sydneyTime(2023, time.September, 25, 12, 0))
	assert.Equal(t, 1, holiday.DayOfWeek)
	assert.True(t, holiday.IsDiscounted)
}

func TestDailyCapSelection(t *testing.T) {
	network := newTestNetwork()

	cap, err := network.DailyCap("ADULT", sydneyTime(2023, time.September, 20, 8, 0))
	require.NoError(t, err)
	assert.Equal(t, 1880, cap)

	cap, err = network.DailyCap("ADULT", sydneyTime(2023, time.September, 23, 8, 0))
	require.NoError(t, err)
	assert.Equal(t, 940, cap)

	// Saturday 03:00 is still the Friday fare day: standard cap.
	cap, err = network.DailyCap("ADULT", sydneyTime(2023, time.September, 23, 3, 0))
	require.NoError(t, err)
	assert.Equal(t, 1880, cap)

	_, err = network.DailyCap("PENSIONER", sydneyTime(2023, time.September, 20, 8, 0))
	assert.Error(t, err)
}

func TestNetworkForTime(t *testing.T) {
	older := newTestNetwork()
	older.Config.ValidFrom = "20200101"
	older.Config.ValidTo = "20230630"
	current := newTestNetwork()

	networks := Networks{older, current}

	assert.Same(t, older, networks.ForTime(sydneyTime(2022, time.March, 1, 12, 0)))
	assert.Same(t, current, networks.ForTime(sydneyTime(2023, time.September, 20, 12, 0)))

	// 2023-07-01 03:00 is still Opal date 20230630: the older bundle.
	assert.Same(t, older, networks.ForTime(sydneyTime(2023, time.July, 1, 3, 0)))
	assert.Same(t, current, networks.ForTime(sydneyTime(2023, time.July, 1, 5, 0)))

	// Outside every window the latest bundle is the fallback.
	assert.Same(t, current, networks.ForTime(sydneyTime(2031, time.January, 10, 12, 0)))
}
