package dates

import "bidding-trends/internal/model"

// BuildPairs pairs every date in idx with the date twelve calendar months
// earlier, keeping only pairs where both dates are in idx. Pairs come out in
// ascending order of the forward date.
func BuildPairs(idx Index) []model.AlignedPair {
	pairs := make([]model.AlignedPair, 0)
	for _, d := range idx.dates {
		back := model.PriorYearOf(d)
		if idx.Contains(back) {
			pairs = append(pairs, model.AlignedPair{Date: d, PriorYear: back})
		}
	}
	return pairs
}

// LookupBack returns the pair whose forward date is d. The boolean is false
// when d is not in idx or its year-ago date is not.
func LookupBack(idx Index, d model.Date) (model.AlignedPair, bool) {
	if !idx.Contains(d) {
		return model.AlignedPair{}, false
	}
	back := model.PriorYearOf(d)
	if !idx.Contains(back) {
		return model.AlignedPair{}, false
	}
	return model.AlignedPair{Date: d, PriorYear: back}, true
}

// PairSequence is the year-over-year view of an index: the aligned pairs and
// the index of their forward dates, so the comparison mode can be navigated
// the same way the plain date list is.
type PairSequence struct {
	pairs   []model.AlignedPair
	forward Index
	byDate  map[model.Date]model.AlignedPair
}

func NewPairSequence(idx Index) PairSequence {
	pairs := BuildPairs(idx)
	forward := make([]model.Date, len(pairs))
	byDate := make(map[model.Date]model.AlignedPair, len(pairs))
	for i, p := range pairs {
		forward[i] = p.Date
		byDate[p.Date] = p
	}
	return PairSequence{
		pairs:   pairs,
		forward: NewIndex(forward),
		byDate:  byDate,
	}
}

func (s PairSequence) Len() int { return len(s.pairs) }

// Pairs returns a copy of the aligned pairs in ascending order.
func (s PairSequence) Pairs() []model.AlignedPair {
	out := make([]model.AlignedPair, len(s.pairs))
	copy(out, s.pairs)
	return out
}

// Forward is the index of dates that have a year-ago counterpart.
func (s PairSequence) Forward() Index { return s.forward }

func (s PairSequence) Lookup(d model.Date) (model.AlignedPair, bool) {
	p, ok := s.byDate[d]
	return p, ok
}

// Adjacent navigates between forward dates with the same clamping rules as
// the package-level Adjacent.
func (s PairSequence) Adjacent(current model.Date, dir model.Direction) model.Date {
	return Adjacent(s.forward, current, dir)
}
