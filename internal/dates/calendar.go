package dates

import (
	"strings"
	"time"

	"github.com/scmhub/calendar"
	"github.com/sirupsen/logrus"

	"bidding-trends/internal/model"
)

// DefaultMIC is the exchange calendar used to flag holidays. Power markets
// trade every day, but bidding behaviour follows the business calendar, and
// the NYSE holiday set is a close match for NERC holidays.
const DefaultMIC = "xnys"

// Calendar labels delivery dates as business days or not, using
// scmhub/calendar with a plain weekday fallback.
type Calendar struct {
	cal      *calendar.Calendar
	fallback bool
	loc      *time.Location
}

// DayInfo describes one delivery date for option lists.
type DayInfo struct {
	Date        model.Date `json:"date"`
	Weekday     string     `json:"weekday"`
	BusinessDay bool       `json:"business_day"`
}

func NewCalendar(mic string) *Calendar {
	mic = strings.ToLower(strings.TrimSpace(mic))
	if mic == "" {
		mic = DefaultMIC
	}

	cal := calendar.GetCalendar(mic)
	if cal == nil && mic != DefaultMIC {
		cal = calendar.GetCalendar(DefaultMIC)
	}
	if cal == nil {
		logrus.WithField("mic", mic).Warn("no exchange calendar found, falling back to Mon-Fri business days")
		return WeekdayCalendar()
	}
	return &Calendar{cal: cal, loc: cal.Loc}
}

// WeekdayCalendar treats Monday through Friday as business days.
func WeekdayCalendar() *Calendar {
	return &Calendar{fallback: true, loc: time.UTC}
}

func (c *Calendar) IsBusinessDay(d model.Date) bool {
	if c == nil || c.fallback {
		wd := d.Weekday()
		return wd != time.Saturday && wd != time.Sunday
	}
	// Noon keeps the instant on the same day in any exchange zone.
	return c.cal.IsBusinessDay(d.Time(c.loc).Add(12 * time.Hour))
}

func (c *Calendar) Describe(d model.Date) DayInfo {
	return DayInfo{
		Date:        d,
		Weekday:     d.Weekday().String(),
		BusinessDay: c.IsBusinessDay(d),
	}
}

// DescribeIndex labels every date in idx.
func (c *Calendar) DescribeIndex(idx Index) []DayInfo {
	out := make([]DayInfo, 0, idx.Len())
	for _, d := range idx.dates {
		out = append(out, c.Describe(d))
	}
	return out
}
