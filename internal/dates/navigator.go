package dates

import "bidding-trends/internal/model"

// Adjacent steps from current to the neighbouring date in idx.
//
// A date that is not in idx is returned unchanged, as is a step past either
// end: navigation never wraps and never leaves the index.
func Adjacent(idx Index, current model.Date, dir model.Direction) model.Date {
	i, ok := idx.Position(current)
	if !ok {
		return current
	}
	switch dir {
	case model.DirectionNext:
		if i < idx.Len()-1 {
			return idx.At(i + 1)
		}
	case model.DirectionPrev:
		if i > 0 {
			return idx.At(i - 1)
		}
	}
	return current
}
