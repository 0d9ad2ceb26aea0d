package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/nipatil-cybage/nebula/internal/model"
	"github.com/nipatil-cybage/nebula/internal/nodeclient"
	"github.com/nipatil-cybage/nebula/internal/queryfanout"
	"github.com/nipatil-cybage/nebula/internal/source"
	"github.com/nipatil-cybage/nebula/internal/specrepo"
)

func newTestQuery(t *testing.T) *queryfanout.Service {
	t.Helper()
	enum := &source.StaticEnumerator{Units: map[string][]source.Unit{
		"local:///data": {{PartitionKey: "p1", SizeBytes: 10}},
	}}
	specs := specrepo.New(enum)
	info := &model.ClusterInfo{Tables: []model.Table{{Name: "requests"}}}
	require.NoError(t, specs.Refresh(context.Background(), info))

	pool := nodeclient.NewPool(nodeclient.NewFakeDialer(map[model.NodeID]nodeclient.NodeClient{}))
	return queryfanout.New(func() *model.ClusterInfo { return info }, specs, pool)
}

func TestHealthzReturnsOK(t *testing.T) {
	r := Router(newTestQuery(t), prometheus.NewRegistry())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
}

func TestMetricsServesPrometheusExposition(t *testing.T) {
	registry := prometheus.NewRegistry()
	r := Router(newTestQuery(t), registry)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestDebugTablesListsTableNames(t *testing.T) {
	r := Router(newTestQuery(t), prometheus.NewRegistry())

	req := httptest.NewRequest(http.MethodGet, "/debug/tables", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var names []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &names))
	require.Equal(t, []string{"requests"}, names)
}

func TestDebugTablesRespectsLimitQueryParam(t *testing.T) {
	r := Router(newTestQuery(t), prometheus.NewRegistry())

	req := httptest.NewRequest(http.MethodGet, "/debug/tables?limit=0", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var names []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &names))
	require.Equal(t, []string{"requests"}, names)
}

func TestParseLimitRejectsNonDigits(t *testing.T) {
	require.Equal(t, 0, parseLimit("abc"))
	require.Equal(t, 42, parseLimit("42"))
}
