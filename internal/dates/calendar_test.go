package dates

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWeekdayCalendar(t *testing.T) {
	cal := WeekdayCalendar()

	assert.True(t, cal.IsBusinessDay(d("2024-01-15")))  // Monday
	assert.False(t, cal.IsBusinessDay(d("2024-01-13"))) // Saturday
	assert.False(t, cal.IsBusinessDay(d("2024-01-14"))) // Sunday

	info := cal.Describe(d("2024-01-13"))
	assert.Equal(t, "Saturday", info.Weekday)
	assert.False(t, info.BusinessDay)
}

func TestCalendar_DescribeIndex(t *testing.T) {
	cal := WeekdayCalendar()
	infos := cal.DescribeIndex(idx("2024-01-12", "2024-01-13"))

	assert.Len(t, infos, 2)
	assert.Equal(t, d("2024-01-12"), infos[0].Date)
	assert.True(t, infos[0].BusinessDay)
	assert.False(t, infos[1].BusinessDay)
}

func TestNewCalendar_Exchange(t *testing.T) {
	cal := NewCalendar("")

	assert.False(t, cal.IsBusinessDay(d("2024-01-13")), "weekends are never business days")
	assert.True(t, cal.IsBusinessDay(d("2024-01-16")))
	assert.False(t, cal.IsBusinessDay(d("2024-12-25")), "christmas")
}

func TestCalendar_NilUsesWeekdays(t *testing.T) {
	var cal *Calendar
	assert.True(t, cal.IsBusinessDay(d("2024-01-16")))
}
