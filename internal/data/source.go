// Package data reads bid disclosures from CSV files, SQL tables or an
// object store into model.BidRecord slices.
package data

import (
	"context"
	"fmt"
	"strings"

	"bidding-trends/internal/config"
	"bidding-trends/internal/model"
)

// Source produces the full record set for one dataset load.
type Source interface {
	Name() string
	Load(ctx context.Context) ([]model.BidRecord, error)
}

// FileSource reads local CSV files and directories.
type FileSource struct {
	Paths   []string
	Options CSVOptions
}

func (s FileSource) Name() string {
	return "files:" + strings.Join(s.Paths, ",")
}

func (s FileSource) Load(ctx context.Context) ([]model.BidRecord, error) {
	return LoadFiles(ctx, s.Paths, s.Options)
}

// NewSource builds the source named by cfg.Source.
func NewSource(cfg config.DatasetConfig) (Source, error) {
	opts := CSVOptions{DateLayouts: cfg.DateLayouts}
	switch cfg.Source {
	case config.SourceFiles:
		return FileSource{Paths: cfg.Files, Options: opts}, nil
	case config.SourceSQL:
		return SQLSource{Driver: cfg.SQL.Driver, DSN: cfg.SQL.DSN, Table: cfg.SQL.Table}, nil
	case config.SourceS3:
		return S3Source{
			Bucket:         cfg.S3.Bucket,
			Prefix:         cfg.S3.Prefix,
			Region:         cfg.S3.Region,
			Endpoint:       cfg.S3.Endpoint,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			ForcePathStyle: cfg.S3.ForcePathStyle,
			Options:        opts,
		}, nil
	}
	return nil, fmt.Errorf("unknown dataset source %q", cfg.Source)
}
