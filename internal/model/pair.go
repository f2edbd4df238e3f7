package model

// YearOffsetMonths is how far back a year-over-year comparison looks.
const YearOffsetMonths = 12

// AlignedPair couples a delivery date with the same calendar day one year
// earlier. Both dates belong to the same resource's date set.
type AlignedPair struct {
	Date      Date `json:"date"`
	PriorYear Date `json:"prior_year"`
}

// PriorYearOf returns the date YearOffsetMonths calendar months before d.
func PriorYearOf(d Date) Date {
	return d.AddMonths(-YearOffsetMonths)
}
