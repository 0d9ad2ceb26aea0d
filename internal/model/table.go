package model

// ColumnKind is the leaf type of a schema column. Nebula only needs enough
// of the type tree to split dimensions from metrics in TableState (§4.8);
// deep type-checking belongs to the (out of scope) plan compiler.
type ColumnKind int

const (
	ColumnUnknown ColumnKind = iota
	ColumnString
	ColumnInt64
	ColumnFloat64
	ColumnBool
	ColumnTimestamp
)

// IsMetric reports whether values of this kind are aggregated (summed,
// averaged, ...) rather than grouped on.
func (k ColumnKind) IsMetric() bool {
	return k == ColumnInt64 || k == ColumnFloat64
}

// Column is one entry of a Table's ROW<...> schema.
type Column struct {
	Name string
	Kind ColumnKind
}

// SourceFormat discriminates the three ingestion source shapes (§3, C10).
type SourceFormat string

const (
	FormatCSV   SourceFormat = "CSV"
	FormatKafka SourceFormat = "KAFKA"
	FormatS3    SourceFormat = "S3"
)

// CSVSource holds the fields specific to a CSV-formatted source, grounded
// on original_source/src/storage/CsvReader.h.
type CSVSource struct {
	PathGlob      string
	Delimiter     string
	HeaderPresent bool
}

// KafkaSource holds the fields specific to a Kafka-formatted source,
// grounded on original_source/src/storage/kafka.
type KafkaSource struct {
	Brokers       []string
	Topic         string
	ConsumerGroup string
}

// S3Source holds the fields specific to an S3-formatted source.
type S3Source struct {
	Bucket string
	Prefix string
	Region string
}

// IngestionSource describes where a Table's data comes from. Only the
// metadata needed to enumerate partition units and derive a spec's
// identity/freshness is modeled; the reader implementations are out of
// scope (§1). Format discriminates which of CSV/Kafka/S3 is populated —
// exactly one of the three pointer fields is non-nil for a given Format,
// mirroring the Cursor sum type in internal/queryfanout.
type IngestionSource struct {
	URI          string
	Format       SourceFormat
	TimeColumn   string
	RetentionSec int64

	CSV   *CSVSource
	Kafka *KafkaSource
	S3    *S3Source
}

// Table is immutable within a config generation.
type Table struct {
	Name    string
	Schema  []Column
	Sources []IngestionSource
}

// Dimensions returns the non-metric columns.
func (t *Table) Dimensions() []Column {
	var out []Column
	for _, c := range t.Schema {
		if !c.Kind.IsMetric() {
			out = append(out, c)
		}
	}
	return out
}

// Metrics returns the metric columns.
func (t *Table) Metrics() []Column {
	var out []Column
	for _, c := range t.Schema {
		if c.Kind.IsMetric() {
			out = append(out, c)
		}
	}
	return out
}
