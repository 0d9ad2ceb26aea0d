// Package source enumerates the current partition units of a table's
// ingestion sources (C10). It supplies exactly the metadata C2 needs to
// derive spec signatures and freshness; the reader implementations that
// would consume the bytes (CSV/Kafka/S3) are out of scope (§1).
package source

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/nipatil-cybage/nebula/internal/model"
)

// Unit is one partition/file/object a spec will be derived from.
type Unit struct {
	PartitionKey string
	MTime        time.Time
	SizeBytes    int64
}

// Enumerator lists the current units of one ingestion source. StaticEnumerator
// is the only implementation in this repository; runtime.Config.Enumerator
// accepts any other, and runtime falls back to an empty StaticEnumerator.
type Enumerator interface {
	Enumerate(ctx context.Context, table string, src model.IngestionSource) ([]Unit, error)
}

// StaticEnumerator returns a fixed unit list regardless of format, standing
// in for the CSV directory listing / Kafka partition set / S3 object
// listing that would otherwise be produced by the (out of scope) readers.
type StaticEnumerator struct {
	Units map[string][]Unit // keyed by source URI
}

func (e *StaticEnumerator) Enumerate(_ context.Context, _ string, src model.IngestionSource) ([]Unit, error) {
	units := e.Units[src.URI]
	out := make([]Unit, len(units))
	copy(out, units)
	sort.Slice(out, func(i, j int) bool { return out[i].PartitionKey < out[j].PartitionKey })
	return out, nil
}

// Signature derives a spec's stable identity from (table, source URI,
// source format, unit partition-key) — deliberately excluding mtime/size, which flow into
// freshness (invariant 3) rather than identity.
func Signature(table string, src model.IngestionSource, unit Unit) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00%s", table, src.URI, src.Format, unit.PartitionKey)
	return hex.EncodeToString(h.Sum(nil))
}

// CSVPartitionKey is a small helper the CSV shape uses to turn a file path
// into a partition key (the file's base name minus extension), grounded on
// the retained shape of original_source/src/storage/CsvReader.h without
// reimplementing the reader itself.
func CSVPartitionKey(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}
