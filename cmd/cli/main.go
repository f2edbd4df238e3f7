package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bidding-trends/internal/compare"
	"bidding-trends/internal/config"
	"bidding-trends/internal/curve"
	"bidding-trends/internal/data"
	"bidding-trends/internal/dates"
	"bidding-trends/internal/logging"
	"bidding-trends/internal/model"
	"bidding-trends/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmds := map[string]func([]string){
		"types":     cmdTypes,
		"resources": cmdResources,
		"dates":     cmdDates,
		"adjacent":  cmdAdjacent,
		"curves":    cmdCurves,
		"pairs":     cmdPairs,
		"export":    cmdExport,
	}
	run, ok := cmds[os.Args[1]]
	if !ok {
		usage()
		os.Exit(2)
	}
	run(os.Args[2:])
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli types     --data bids/")
	fmt.Println("  cli resources --data bids/ --type CCGT90")
	fmt.Println("  cli dates     --data bids/ --type CCGT90 --name FRNYPP_CC1_4 [--mode year_over_year]")
	fmt.Println("  cli adjacent  --data bids/ --type CCGT90 --name FRNYPP_CC1_4 --date 2024-01-15 --direction next")
	fmt.Println("  cli curves    --data bids/ --type CCGT90 --name FRNYPP_CC1_4 --date 2024-01-15 [--hour 7] [--json]")
	fmt.Println("  cli pairs     --data bids/ --type CCGT90 --name FRNYPP_CC1_4")
	fmt.Println("  cli export    --data bids/ --type CCGT90 --name FRNYPP_CC1_4 --date 2024-01-15 [--yoy] --out results/day.csv")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - --data takes comma-separated CSV paths or directories; --config takes a YAML file instead")
	fmt.Println("  - dates accept YYYY-MM-DD or MM/DD/YYYY")
}

// common holds the flags every subcommand shares.
type common struct {
	fs       *flag.FlagSet
	cfgPath  *string
	dataPath *string
	logLevel *string
}

func newCommon(name string) *common {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	return &common{
		fs:       fs,
		cfgPath:  fs.String("config", "", "Path to YAML config"),
		dataPath: fs.String("data", "", "Comma-separated CSV paths or directories (overrides config)"),
		logLevel: fs.String("log-level", "warn", "Log level"),
	}
}

func (c *common) resourceFlags() (typ, name *string) {
	return c.fs.String("type", "", "Resource type"), c.fs.String("name", "", "Resource name")
}

func (c *common) parse(args []string) {
	_ = c.fs.Parse(args)
	logging.Setup(*c.logLevel, "text")
}

// dataset loads the records named by --data or --config.
func (c *common) dataset() *store.Dataset {
	var source data.Source
	switch {
	case *c.dataPath != "":
		source = data.FileSource{Paths: []string{*c.dataPath}}
	case *c.cfgPath != "":
		cfg, err := config.Load(*c.cfgPath)
		if err != nil {
			die(err)
		}
		if source, err = data.NewSource(cfg.Dataset); err != nil {
			die(err)
		}
	default:
		fmt.Fprintln(os.Stderr, "--data or --config is required")
		os.Exit(2)
	}

	records, err := source.Load(context.Background())
	if err != nil {
		die(err)
	}
	ds, err := store.New(records)
	if err != nil {
		die(err)
	}
	if n := len(ds.Duplicates()); n > 0 {
		fmt.Fprintf(os.Stderr, "warning: %d (resource, date, hour) keys have duplicate rows\n", n)
	}
	return ds
}

func cmdTypes(args []string) {
	c := newCommon("types")
	c.parse(args)
	for _, t := range c.dataset().ResourceTypes() {
		fmt.Println(t)
	}
}

func cmdResources(args []string) {
	c := newCommon("resources")
	typ := c.fs.String("type", "", "Resource type")
	c.parse(args)
	require(*typ != "", "--type is required")

	for _, n := range c.dataset().ResourceNames(*typ) {
		fmt.Println(n)
	}
}

func cmdDates(args []string) {
	c := newCommon("dates")
	typ, name := c.resourceFlags()
	modeFlag := c.fs.String("mode", "all", "all | year_over_year")
	mic := c.fs.String("calendar", dates.DefaultMIC, "Exchange calendar for business-day flags")
	c.parse(args)
	requireResource(typ, name)
	mode, err := compare.ParseMode(*modeFlag)
	if err != nil {
		die(err)
	}

	ds := c.dataset()
	cal := dates.NewCalendar(*mic)
	fmt.Printf("%-12s %-10s %-8s\n", "date", "weekday", "business")
	for _, info := range cal.DescribeIndex(compare.Dates(ds, *typ, *name, mode)) {
		fmt.Printf("%-12s %-10s %-8t\n", info.Date, info.Weekday, info.BusinessDay)
	}
}

func cmdAdjacent(args []string) {
	c := newCommon("adjacent")
	typ, name := c.resourceFlags()
	dateFlag := c.fs.String("date", "", "Current date")
	dirFlag := c.fs.String("direction", "next", "next | prev")
	modeFlag := c.fs.String("mode", "all", "all | year_over_year")
	c.parse(args)
	requireResource(typ, name)

	current := mustDate(*dateFlag)
	dir, err := model.ParseDirection(*dirFlag)
	if err != nil {
		die(err)
	}
	mode, err := compare.ParseMode(*modeFlag)
	if err != nil {
		die(err)
	}

	fmt.Println(compare.Step(c.dataset(), *typ, *name, current, dir, mode))
}

func cmdCurves(args []string) {
	c := newCommon("curves")
	typ, name := c.resourceFlags()
	dateFlag := c.fs.String("date", "", "Delivery date")
	hour := c.fs.Int("hour", 0, "Hour ending 1-24 (0 = whole day)")
	asJSON := c.fs.Bool("json", false, "Print JSON")
	c.parse(args)
	requireResource(typ, name)
	date := mustDate(*dateFlag)
	require(*hour >= 0 && *hour <= model.HoursPerDay, "--hour must be in [0, 24]")

	ds := c.dataset()
	if *hour > 0 {
		cv, err := curve.Extract(ds.Filter(*typ, *name), date, *hour)
		if err != nil {
			die(err)
		}
		if *asJSON {
			printJSON(cv)
			return
		}
		fmt.Printf("%-5s %-12s %-12s\n", "tier", "mw", "price")
		for i := range cv.Prices {
			fmt.Printf("%-5d %-12.3f %-12.2f\n", i+1, cv.Quantities[i], cv.Prices[i])
		}
		return
	}

	view, err := compare.BuildDay(ds, *typ, *name, date)
	if err != nil {
		die(err)
	}
	if *asJSON {
		printJSON(view)
		return
	}
	fmt.Printf("%s/%s %s  QSE: %s\n", *typ, *name, date, strings.Join(view.Agents, ", "))
	fmt.Printf("%-4s %-6s %-10s %-10s\n", "he", "tiers", "max_mw", "max_price")
	for _, h := range view.Hours {
		if !h.Present {
			fmt.Printf("%-4d %-6s\n", h.Hour, "-")
			continue
		}
		fmt.Printf("%-4d %-6d %-10.2f %-10.2f\n", h.Hour, len(h.Prices), maxOf(h.Quantities), maxOf(h.Prices))
	}
}

func cmdPairs(args []string) {
	c := newCommon("pairs")
	typ, name := c.resourceFlags()
	c.parse(args)
	requireResource(typ, name)

	fmt.Printf("%-12s %-12s\n", "date", "prior_year")
	for _, p := range c.dataset().YearPairs(*typ, *name).Pairs() {
		fmt.Printf("%-12s %-12s\n", p.Date, p.PriorYear)
	}
}

func cmdExport(args []string) {
	c := newCommon("export")
	typ, name := c.resourceFlags()
	dateFlag := c.fs.String("date", "", "Delivery date")
	yoy := c.fs.Bool("yoy", false, "Also export the same day one year earlier")
	outPath := c.fs.String("out", "results/day.csv", "Output CSV path")
	c.parse(args)
	requireResource(typ, name)
	date := mustDate(*dateFlag)

	ds := c.dataset()
	key := model.ResourceKey{Type: *typ, Name: *name}
	var rows []curve.ExportRow
	if *yoy {
		view, ok, err := compare.BuildYearOverYear(ds, *typ, *name, date)
		if err != nil {
			die(err)
		}
		if !ok {
			die(fmt.Errorf("%s has no delivery date one year before %s", key, date))
		}
		rows = append(rows, curve.ExportRows(key, view.PriorYear.Date, view.PriorYear.Hours)...)
		rows = append(rows, curve.ExportRows(key, view.Current.Date, view.Current.Hours)...)
	} else {
		view, err := compare.BuildDay(ds, *typ, *name, date)
		if err != nil {
			die(err)
		}
		rows = curve.ExportRows(key, date, view.Hours)
	}

	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		die(err)
	}
	if err := curve.WriteDayCSV(*outPath, rows); err != nil {
		die(err)
	}
	fmt.Printf("Wrote %d rows to %s\n", len(rows), *outPath)
}

func mustDate(s string) model.Date {
	require(s != "", "--date is required")
	d, err := model.ParseDate(s)
	if err != nil {
		die(err)
	}
	return d
}

func requireResource(typ, name *string) {
	require(*typ != "" && *name != "", "--type and --name are required")
}

func require(ok bool, msg string) {
	if !ok {
		fmt.Fprintln(os.Stderr, msg)
		os.Exit(2)
	}
}

func die(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		die(err)
	}
}

func maxOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
