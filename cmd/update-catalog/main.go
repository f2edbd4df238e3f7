package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"bidding-trends/internal/config"
	"bidding-trends/internal/data"
	"bidding-trends/internal/logging"
	"bidding-trends/internal/store"
)

func main() {
	var (
		cfgPath    = flag.String("config", "", "Path to YAML config")
		dataPath   = flag.String("data", "", "Comma-separated CSV paths or directories (overrides config)")
		outputPath = flag.String("output", "", "Output file path (default: ./data/catalog.json)")
		seedFile   = flag.String("seed", "", "Path to existing catalog to diff against (default: the output file)")
	)
	flag.Parse()
	logging.Setup(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))

	if *outputPath == "" {
		*outputPath = data.DefaultCatalogPath()
	}

	var source data.Source
	switch {
	case *dataPath != "":
		source = data.FileSource{Paths: []string{*dataPath}}
	case *cfgPath != "":
		cfg, err := config.Load(*cfgPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		if source, err = data.NewSource(cfg.Dataset); err != nil {
			log.Fatalf("Invalid dataset source: %v", err)
		}
	default:
		log.Fatal("--data or --config is required")
	}

	fmt.Printf("Building catalog from %s\n", source.Name())

	records, err := source.Load(context.Background())
	if err != nil {
		log.Fatalf("Failed to load bids: %v", err)
	}
	ds, err := store.New(records)
	if err != nil {
		log.Fatalf("Failed to build dataset: %v", err)
	}

	seedPath := *seedFile
	if seedPath == "" {
		seedPath = *outputPath
	}
	var seed *data.Catalog
	prev, err := data.LoadCatalog(seedPath, source.Name())
	switch {
	case errors.Is(err, data.ErrCatalogSource):
		fmt.Printf("Note: %s was built from %s; diffing anyway\n", seedPath, prev.Source)
		seed = prev
	case err == nil:
		seed = prev
		fmt.Printf("Loaded %d existing resources from %s\n", len(prev.Resources), seedPath)
	case !errors.Is(err, os.ErrNotExist):
		log.Fatalf("Failed to read seed catalog: %v", err)
	}

	catalog := data.BuildCatalog(ds, source.Name())
	added, removed := data.Diff(seed, catalog)
	for _, k := range added {
		fmt.Printf("  + %s\n", k)
	}
	for _, k := range removed {
		fmt.Printf("  - %s\n", k)
	}
	if n := len(ds.Duplicates()); n > 0 {
		fmt.Printf("Warning: %d (resource, date, hour) keys have duplicate rows\n", n)
	}

	if err := data.SaveCatalog(catalog, *outputPath); err != nil {
		log.Fatalf("Failed to save catalog: %v", err)
	}

	fmt.Printf("Saved %d resources to %s (%d added, %d removed)\n",
		len(catalog.Resources), *outputPath, len(added), len(removed))
}
