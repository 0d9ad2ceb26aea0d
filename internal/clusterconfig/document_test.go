package clusterconfig

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nipatil-cybage/nebula/internal/model"
)

const sampleYAML = `
version: "3"
nodes:
  - host: 10.0.0.1
    port: 7080
    role: node
  - host: 10.0.0.2
    port: 7080
    role: server
tables:
  - name: requests
    schema: "ROW<host:STRING,ts:TIMESTAMP,latency_ms:INT64>"
    sources:
      - uri: local:///data/requests
        format: CSV
        time-column: ts
        retention: 3600
        path-glob: "*.csv"
        delimiter: ","
        header: true
  - name: signups
    schema: "ROW<plan:STRING,ts:TIMESTAMP,amount:FLOAT64>"
    sources:
      - uri: s3://bucket/signups/
        format: S3
        time-column: ts
        retention: 7200
        bucket: bucket
        prefix: signups/
        region: us-west-2
  - name: clickstream
    schema: "ROW<event:STRING,ts:TIMESTAMP,value:FLOAT64>"
    sources:
      - uri: kafka://broker/clickstream
        format: KAFKA
        time-column: ts
        retention: 1800
        brokers: ["b1:9092", "b2:9092"]
        topic: clickstream
        consumer-group: nebula
`

func TestParseDocument(t *testing.T) {
	info, err := parseDocument([]byte(sampleYAML))
	require.NoError(t, err)

	require.Equal(t, "3", info.Version)
	require.Len(t, info.Nodes, 2)
	require.Equal(t, model.NodeRoleNode, info.Nodes[0].Role)
	require.Equal(t, model.NodeRoleServer, info.Nodes[1].Role)

	require.Len(t, info.Tables, 3)
	requests := info.Tables[0]
	require.Equal(t, "requests", requests.Name)
	require.Len(t, requests.Schema, 3)
	require.Equal(t, model.ColumnTimestamp, requests.Schema[1].Kind)
	require.Len(t, requests.Sources, 1)
	require.Equal(t, model.FormatCSV, requests.Sources[0].Format)
	require.Equal(t, int64(3600), requests.Sources[0].RetentionSec)
	require.NotNil(t, requests.Sources[0].CSV)
	require.Equal(t, "*.csv", requests.Sources[0].CSV.PathGlob)
	require.Equal(t, ",", requests.Sources[0].CSV.Delimiter)
	require.True(t, requests.Sources[0].CSV.HeaderPresent)
	require.Nil(t, requests.Sources[0].Kafka)
	require.Nil(t, requests.Sources[0].S3)

	signups := info.Tables[1]
	require.NotNil(t, signups.Sources[0].S3)
	require.Equal(t, "bucket", signups.Sources[0].S3.Bucket)
	require.Equal(t, "signups/", signups.Sources[0].S3.Prefix)
	require.Equal(t, "us-west-2", signups.Sources[0].S3.Region)

	clickstream := info.Tables[2]
	require.NotNil(t, clickstream.Sources[0].Kafka)
	require.Equal(t, []string{"b1:9092", "b2:9092"}, clickstream.Sources[0].Kafka.Brokers)
	require.Equal(t, "clickstream", clickstream.Sources[0].Kafka.Topic)
	require.Equal(t, "nebula", clickstream.Sources[0].Kafka.ConsumerGroup)
}

func TestParseDocumentRejectsKafkaSourceMissingTopic(t *testing.T) {
	bad := `
tables:
  - name: t
    schema: "ROW<a:STRING>"
    sources:
      - uri: kafka://broker/t
        format: KAFKA
        brokers: ["b1:9092"]
`
	_, err := parseDocument([]byte(bad))
	require.Error(t, err)
}

func TestParseDocumentRejectsS3SourceMissingBucket(t *testing.T) {
	bad := `
tables:
  - name: t
    schema: "ROW<a:STRING>"
    sources:
      - uri: s3://x/y
        format: S3
`
	_, err := parseDocument([]byte(bad))
	require.Error(t, err)
}

func TestParseDocumentRejectsUnknownRole(t *testing.T) {
	bad := `
nodes:
  - host: h1
    port: 1
    role: bogus
tables: []
`
	_, err := parseDocument([]byte(bad))
	require.Error(t, err)
}

func TestParseSchemaRejectsMalformedColumn(t *testing.T) {
	_, err := parseSchema("ROW<nocolon>")
	require.Error(t, err)
}

func TestParseSchemaEmptyBody(t *testing.T) {
	cols, err := parseSchema("ROW<>")
	require.NoError(t, err)
	require.Empty(t, cols)
}

func TestTableByNameDimensionsAndMetrics(t *testing.T) {
	info, err := parseDocument([]byte(sampleYAML))
	require.NoError(t, err)

	table, ok := info.TableByName("requests")
	require.True(t, ok)
	require.Len(t, table.Dimensions(), 2)
	require.Len(t, table.Metrics(), 1)

	_, ok = info.TableByName("missing")
	require.False(t, ok)
}
