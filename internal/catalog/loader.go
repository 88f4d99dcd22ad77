package catalog

import (
	"context"
	"fmt"
)

// Options locates and describes a catalog.
type Options struct {
	// Source is a local path or s3://bucket/key.
	Source string
	// Sheet selects the XLSX sheet; empty means the first one.
	Sheet string
	Schema
}

// Load fetches, parses and normalizes the catalog described by opts. The whole catalog is
// read into memory. objects serves s3:// sources and may be nil otherwise.
func Load(ctx context.Context, opts Options, objects ObjectGetter) ([]Record, error) {
	if opts.Source == "" {
		return nil, fmt.Errorf("catalog source is empty")
	}
	name := opts.Source
	if _, key, ok := ParseS3URI(opts.Source); ok {
		name = key
	}
	format, err := FormatFor(name)
	if err != nil {
		return nil, err
	}
	data, err := Fetch(ctx, opts.Source, objects)
	if err != nil {
		return nil, err
	}
	table, err := Parse(data, format, opts.Sheet)
	if err != nil {
		return nil, err
	}
	return Normalize(table, opts.Schema)
}
