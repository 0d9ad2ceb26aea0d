package clusterconfig

import (
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/nipatil-cybage/nebula/internal/model"
)

// document mirrors the YAML shape in §6:
//
//	version: <string>
//	nodes: [ { host, port, role } ]
//	tables: [ { name, schema: "ROW<col:TYPE,...>", sources: [ { uri, format, time-column, retention, ... } ] } ]
//
// sources carries the per-format fields of C10's ingestion source
// catalogue alongside the four common ones (uri/format/time-column/
// retention): CSV uses path-glob/delimiter/header, KAFKA uses brokers/
// topic/consumer-group, S3 uses bucket/prefix/region.
type document struct {
	Version string     `yaml:"version"`
	Nodes   []nodeDoc  `yaml:"nodes"`
	Tables  []tableDoc `yaml:"tables"`
}

type nodeDoc struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	Role string `yaml:"role"`
}

type tableDoc struct {
	Name    string      `yaml:"name"`
	Schema  string      `yaml:"schema"`
	Sources []sourceDoc `yaml:"sources"`
}

type sourceDoc struct {
	URI        string `yaml:"uri"`
	Format     string `yaml:"format"`
	TimeColumn string `yaml:"time-column"`
	RetentionS int64  `yaml:"retention"`

	// CSV
	PathGlob      string `yaml:"path-glob"`
	Delimiter     string `yaml:"delimiter"`
	HeaderPresent bool   `yaml:"header"`

	// KAFKA
	Brokers       []string `yaml:"brokers"`
	Topic         string   `yaml:"topic"`
	ConsumerGroup string   `yaml:"consumer-group"`

	// S3
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
	Region string `yaml:"region"`
}

func parseDocument(raw []byte) (*model.ClusterInfo, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	info := &model.ClusterInfo{Version: doc.Version}

	for _, n := range doc.Nodes {
		role, err := parseRole(n.Role)
		if err != nil {
			return nil, fmt.Errorf("node %s:%d: %w", n.Host, n.Port, err)
		}
		info.Nodes = append(info.Nodes, model.NodeConfig{Host: n.Host, Port: n.Port, Role: role})
	}

	for _, t := range doc.Tables {
		cols, err := parseSchema(t.Schema)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", t.Name, err)
		}
		table := model.Table{Name: t.Name, Schema: cols}
		for _, s := range t.Sources {
			format, err := parseFormat(s.Format)
			if err != nil {
				return nil, fmt.Errorf("table %s source %s: %w", t.Name, s.URI, err)
			}
			src := model.IngestionSource{
				URI:          s.URI,
				Format:       format,
				TimeColumn:   s.TimeColumn,
				RetentionSec: s.RetentionS,
			}
			switch format {
			case model.FormatCSV:
				src.CSV = &model.CSVSource{
					PathGlob:      s.PathGlob,
					Delimiter:     s.Delimiter,
					HeaderPresent: s.HeaderPresent,
				}
			case model.FormatKafka:
				if s.Topic == "" || len(s.Brokers) == 0 {
					return nil, fmt.Errorf("table %s source %s: KAFKA source requires brokers and topic", t.Name, s.URI)
				}
				src.Kafka = &model.KafkaSource{
					Brokers:       s.Brokers,
					Topic:         s.Topic,
					ConsumerGroup: s.ConsumerGroup,
				}
			case model.FormatS3:
				if s.Bucket == "" {
					return nil, fmt.Errorf("table %s source %s: S3 source requires a bucket", t.Name, s.URI)
				}
				src.S3 = &model.S3Source{
					Bucket: s.Bucket,
					Prefix: s.Prefix,
					Region: s.Region,
				}
			}
			table.Sources = append(table.Sources, src)
		}
		info.Tables = append(info.Tables, table)
	}

	return info, nil
}

func parseRole(s string) (model.NodeRole, error) {
	switch strings.ToLower(s) {
	case "server":
		return model.NodeRoleServer, nil
	case "node":
		return model.NodeRoleNode, nil
	default:
		return model.NodeRoleUnknown, fmt.Errorf("unknown role %q", s)
	}
}

func parseFormat(s string) (model.SourceFormat, error) {
	switch strings.ToUpper(s) {
	case string(model.FormatCSV):
		return model.FormatCSV, nil
	case string(model.FormatKafka):
		return model.FormatKafka, nil
	case string(model.FormatS3):
		return model.FormatS3, nil
	default:
		return "", fmt.Errorf("unknown source format %q", s)
	}
}

// parseSchema turns "ROW<user:STRING,clicks:INT64>" into a column list.
func parseSchema(schema string) ([]model.Column, error) {
	schema = strings.TrimSpace(schema)
	if !strings.HasPrefix(schema, "ROW<") || !strings.HasSuffix(schema, ">") {
		return nil, fmt.Errorf("schema %q is not of the form ROW<...>", schema)
	}
	body := schema[len("ROW<") : len(schema)-1]
	if body == "" {
		return nil, nil
	}

	var cols []model.Column
	for _, part := range strings.Split(body, ",") {
		part = strings.TrimSpace(part)
		nameType := strings.SplitN(part, ":", 2)
		if len(nameType) != 2 {
			return nil, fmt.Errorf("column %q missing type", part)
		}
		kind, err := parseColumnKind(nameType[1])
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", part, err)
		}
		cols = append(cols, model.Column{Name: strings.TrimSpace(nameType[0]), Kind: kind})
	}
	return cols, nil
}

func parseColumnKind(s string) (model.ColumnKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "STRING":
		return model.ColumnString, nil
	case "INT64":
		return model.ColumnInt64, nil
	case "FLOAT64":
		return model.ColumnFloat64, nil
	case "BOOL":
		return model.ColumnBool, nil
	case "TIMESTAMP":
		return model.ColumnTimestamp, nil
	default:
		return model.ColumnUnknown, fmt.Errorf("unknown column type %q", s)
	}
}
