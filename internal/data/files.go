package data

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"bidding-trends/internal/model"
)

// maxParallelFiles bounds concurrent file parsing.
const maxParallelFiles = 4

// ExpandPaths resolves each entry to files. A directory contributes its
// *.csv and *.csv.gz files in name order; comma-separated lists are split.
func ExpandPaths(entries []string) ([]string, error) {
	var out []string
	for _, entry := range entries {
		for _, p := range strings.Split(entry, ",") {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			info, err := os.Stat(p)
			if err != nil {
				return nil, fmt.Errorf("stat %s: %w", p, err)
			}
			if !info.IsDir() {
				out = append(out, p)
				continue
			}
			dirEntries, err := os.ReadDir(p)
			if err != nil {
				return nil, fmt.Errorf("read dir %s: %w", p, err)
			}
			var found []string
			for _, e := range dirEntries {
				if !e.IsDir() && isCSVName(e.Name()) {
					found = append(found, filepath.Join(p, e.Name()))
				}
			}
			sort.Strings(found)
			out = append(out, found...)
		}
	}
	return out, nil
}

func isCSVName(name string) bool {
	name = strings.ToLower(name)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".csv.gz")
}

// LoadFiles parses paths concurrently and concatenates the records in path
// order. The first failure cancels the remaining reads.
func LoadFiles(ctx context.Context, paths []string, opts CSVOptions) ([]model.BidRecord, error) {
	files, err := ExpandPaths(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no bid files found in %v", paths)
	}

	start := time.Now()
	results := make([][]model.BidRecord, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFiles)
	for i, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			records, err := readFile(path, opts)
			if err != nil {
				return err
			}
			results[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, r := range results {
		total += len(r)
	}
	out := make([]model.BidRecord, 0, total)
	for _, r := range results {
		out = append(out, r...)
	}

	logrus.WithFields(logrus.Fields{
		"component": "data",
		"files":     len(files),
		"records":   len(out),
		"duration":  time.Since(start),
	}).Info("bid files loaded")
	return out, nil
}

func readFile(path string, opts CSVOptions) ([]model.BidRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return readMaybeGzip(f, path, opts)
}

func readMaybeGzip(r io.Reader, name string, opts CSVOptions) ([]model.BidRecord, error) {
	if strings.HasSuffix(strings.ToLower(name), ".gz") {
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gunzip %s: %w", name, err)
		}
		defer zr.Close()
		r = zr
	}
	return ReadCSV(r, name, opts)
}
