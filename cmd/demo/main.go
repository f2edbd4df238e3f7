package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"

	"bidding-trends/internal/compare"
	"bidding-trends/internal/curve"
	"bidding-trends/internal/dates"
	"bidding-trends/internal/model"
	"bidding-trends/internal/store"
)

// Demo:
// - Generate a small synthetic bid dataset (two units, two winters)
// - Walk the date navigation for one unit
// - Show the year-over-year pairing, including a leap day with no partner
func main() {
	seed := flag.Int64("seed", 1, "Random seed for the synthetic curves")
	hour := flag.Int("hour", 18, "Hour ending to print")
	outCSV := flag.String("out", "", "Optional path to write the year-over-year CSV (e.g. results/yoy.csv)")
	flag.Parse()
	if *hour < 1 || *hour > model.HoursPerDay {
		fmt.Fprintln(os.Stderr, "--hour must be in [1, 24]")
		os.Exit(2)
	}

	rng := rand.New(rand.NewSource(*seed))
	records := synthetic(rng)

	ds, err := store.New(records)
	if err != nil {
		panic(err)
	}
	fmt.Printf("Loaded %d records for %d resources\n\n", ds.Len(), len(ds.Resources()))

	typ, name := "CCGT90", "FRNYPP_CC1_4"
	idx := ds.DistinctDates(typ, name)
	fmt.Printf("%s/%s has %d delivery dates\n", typ, name, idx.Len())

	first, _ := idx.First()
	cur := first
	fmt.Printf("walk forward from %s:", cur)
	for i := 0; i < 4; i++ {
		cur = dates.Adjacent(idx, cur, model.DirectionNext)
		fmt.Printf(" -> %s", cur)
	}
	fmt.Println()
	fmt.Printf("prev from first date stays at %s\n\n", dates.Adjacent(idx, first, model.DirectionPrev))

	pairs := ds.YearPairs(typ, name)
	fmt.Printf("%d year-over-year pairs\n", pairs.Len())
	leap := model.NewDate(2024, 2, 29)
	if pair, ok := pairs.Lookup(leap); ok {
		fmt.Printf("%s pairs with %s (month-end clamp)\n", pair.Date, pair.PriorYear)
	} else {
		fmt.Printf("%s has no partner (one year back is %s, not in the data)\n", leap, model.PriorYearOf(leap))
	}
	gap := model.NewDate(2024, 2, 12)
	if _, ok := pairs.Lookup(gap); !ok {
		fmt.Printf("%s has no partner: %s falls in the 2023 gap\n\n", gap, model.PriorYearOf(gap))
	}

	p := pairs.Pairs()[0]
	view, ok, err := compare.BuildYearOverYear(ds, typ, name, p.Date)
	if err != nil || !ok {
		panic(fmt.Sprintf("year-over-year for %s: ok=%v err=%v", p.Date, ok, err))
	}
	fmt.Printf("HE%d  %s (QSE %v) vs %s\n", *hour, view.Current.Date, view.Current.Agents, view.PriorYear.Date)
	printTiers(view.Current.Hours[*hour-1].Curve, view.PriorYear.Hours[*hour-1].Curve)

	if *outCSV != "" {
		key := view.Current.Key()
		rows := append(
			curve.ExportRows(key, view.PriorYear.Date, view.PriorYear.Hours),
			curve.ExportRows(key, view.Current.Date, view.Current.Hours)...,
		)
		if err := curve.WriteDayCSV(*outCSV, rows); err != nil {
			panic(err)
		}
		fmt.Printf("\nWrote %d rows to %s\n", len(rows), *outCSV)
	}
}

func printTiers(now, prior curve.Curve) {
	fmt.Printf("%-5s %-18s %-18s\n", "tier", "now mw@$", "prior mw@$")
	n := len(now.Prices)
	if len(prior.Prices) > n {
		n = len(prior.Prices)
	}
	cell := func(c curve.Curve, i int) string {
		if i >= len(c.Prices) {
			return ""
		}
		return fmt.Sprintf("%.0f@%.2f", c.Quantities[i], c.Prices[i])
	}
	for i := 0; i < n; i++ {
		fmt.Printf("%-5d %-18s %-18s\n", i+1, cell(now, i), cell(prior, i))
	}
}

// synthetic builds January through March of 2023 and 2024 for two units,
// with a gap in each year so navigation and pairing have holes to skip.
func synthetic(rng *rand.Rand) []model.BidRecord {
	units := []model.ResourceKey{
		{Type: "CCGT90", Name: "FRNYPP_CC1_4"},
		{Type: "SCGT90", Name: "DECKER_GT_1"},
	}
	var out []model.BidRecord
	for _, year := range []int{2023, 2024} {
		for d := model.NewDate(year, 1, 1); d.Year == year && d.Month <= 3; d = d.AddDays(1) {
			// skip a week in each year
			if d.Month == 2 && d.Day >= 10+(year-2023)*5 && d.Day < 17+(year-2023)*5 {
				continue
			}
			for _, u := range units {
				for he := 1; he <= model.HoursPerDay; he++ {
					out = append(out, syntheticBid(rng, u, d, he))
				}
			}
		}
	}
	return out
}

func syntheticBid(rng *rand.Rand, key model.ResourceKey, d model.Date, he int) model.BidRecord {
	tiers := 3 + rng.Intn(model.MaxTiers-2)
	r := model.BidRecord{
		DeliveryDate: d,
		HourEnding:   he,
		ResourceName: key.Name,
		ResourceType: key.Type,
		QSE:          "QSE_" + key.Name[:4],
		Quantities:   make([]float64, tiers),
		Prices:       make([]float64, tiers),
	}
	mw, price := 0.0, -25.0+rng.Float64()*20
	for i := 0; i < tiers; i++ {
		mw += 20 + rng.Float64()*40
		price += 5 + rng.Float64()*30
		r.Quantities[i] = float64(int(mw))
		r.Prices[i] = float64(int(price*100)) / 100
	}
	return r
}
