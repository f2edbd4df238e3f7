package data

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"bidding-trends/internal/curve"
	"bidding-trends/internal/model"
	"bidding-trends/internal/store"
)

// CatalogEntry summarizes one resource of a dataset.
type CatalogEntry struct {
	ResourceType string     `json:"resource_type"`
	ResourceName string     `json:"resource_name"`
	QSEs         []string   `json:"qses"`
	FirstDate    model.Date `json:"first_date"`
	LastDate     model.Date `json:"last_date"`
	DateCount    int        `json:"date_count"`
	PairCount    int        `json:"pair_count"`
}

func (e CatalogEntry) Key() model.ResourceKey {
	return model.ResourceKey{Type: e.ResourceType, Name: e.ResourceName}
}

// Catalog is the resource list the UI and update-catalog work from.
type Catalog struct {
	Source    string         `json:"source"`
	UpdatedAt string         `json:"updated_at"` // ISO 8601 timestamp
	Resources []CatalogEntry `json:"resources"`
}

// BuildCatalog summarizes every resource of ds, sorted by type then name.
func BuildCatalog(ds *store.Dataset, source string) *Catalog {
	cat := &Catalog{
		Source:    source,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
		Resources: []CatalogEntry{},
	}
	for _, key := range ds.Resources() {
		records := ds.Filter(key.Type, key.Name)
		idx := ds.DistinctDates(key.Type, key.Name)
		first, _ := idx.First()
		last, _ := idx.Last()

		qses := []string{}
		seen := map[string]bool{}
		for _, d := range idx.Dates() {
			for _, q := range curve.Agents(records, d) {
				if !seen[q] {
					seen[q] = true
					qses = append(qses, q)
				}
			}
		}

		cat.Resources = append(cat.Resources, CatalogEntry{
			ResourceType: key.Type,
			ResourceName: key.Name,
			QSEs:         qses,
			FirstDate:    first,
			LastDate:     last,
			DateCount:    idx.Len(),
			PairCount:    ds.YearPairs(key.Type, key.Name).Len(),
		})
	}
	return cat
}

// Diff returns the resources in next that are not in prev (added) and
// those in prev that are gone from next (removed).
func Diff(prev, next *Catalog) (added, removed []model.ResourceKey) {
	had := map[model.ResourceKey]bool{}
	if prev != nil {
		for _, e := range prev.Resources {
			had[e.Key()] = true
		}
	}
	has := map[model.ResourceKey]bool{}
	for _, e := range next.Resources {
		has[e.Key()] = true
		if !had[e.Key()] {
			added = append(added, e.Key())
		}
	}
	if prev != nil {
		for _, e := range prev.Resources {
			if !has[e.Key()] {
				removed = append(removed, e.Key())
			}
		}
	}
	return added, removed
}

// ErrCatalogSource is returned by LoadCatalog when the file was built
// from a different bid source than the one asked for.
var ErrCatalogSource = errors.New("catalog built from another source")

// Validate checks that every entry names a resource once and that its
// date span and counts are consistent.
func (c *Catalog) Validate() error {
	seen := map[model.ResourceKey]bool{}
	for i, e := range c.Resources {
		if e.ResourceType == "" || e.ResourceName == "" {
			return fmt.Errorf("catalog entry %d: resource type and name are required", i)
		}
		if seen[e.Key()] {
			return fmt.Errorf("catalog entry %d: duplicate resource %s", i, e.Key())
		}
		seen[e.Key()] = true
		if e.LastDate.Before(e.FirstDate) {
			return fmt.Errorf("catalog entry %s: last date %s before first date %s", e.Key(), e.LastDate, e.FirstDate)
		}
		if e.PairCount > e.DateCount {
			return fmt.Errorf("catalog entry %s: %d year-over-year pairs for %d dates", e.Key(), e.PairCount, e.DateCount)
		}
	}
	return nil
}

// LoadCatalog reads and validates a catalog. A non-empty source must match
// the catalog's Source, otherwise the error wraps ErrCatalogSource.
func LoadCatalog(filePath, source string) (*Catalog, error) {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", filePath, err)
	}

	var cat Catalog
	if err := json.Unmarshal(raw, &cat); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", filePath, err)
	}
	if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	if source != "" && cat.Source != source {
		return &cat, fmt.Errorf("%s: %w (%q, want %q)", filePath, ErrCatalogSource, cat.Source, source)
	}
	return &cat, nil
}

// SaveCatalog validates cat and replaces filePath through a temp file in
// the same directory, so readers never see a half-written catalog.
func SaveCatalog(cat *Catalog, filePath string) error {
	if err := cat.Validate(); err != nil {
		return err
	}
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create catalog dir: %w", err)
	}

	raw, err := json.MarshalIndent(cat, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".catalog-*.json")
	if err != nil {
		return fmt.Errorf("create temp catalog: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write catalog: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	return os.Rename(tmp.Name(), filePath)
}

// DefaultCatalogPath returns the catalog path, honoring CATALOG_FILE.
func DefaultCatalogPath() string {
	if path := os.Getenv("CATALOG_FILE"); path != "" {
		return path
	}
	return "./data/catalog.json"
}
