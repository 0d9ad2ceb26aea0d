// Package queryfanout implements the thin query surface (C8): listing
// tables, summarising one table's resident state, and fanning a query out
// to the nodes holding its blocks. It shares the node connector pool with
// the reconciliation path (internal/nodeclient) rather than opening its
// own, grounded on the teacher's router/shardserver composing a single
// catalog.Catalog instance (router/router.go, shardserver/shardserver.go).
package queryfanout

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nipatil-cybage/nebula/internal/errs"
	"github.com/nipatil-cybage/nebula/internal/model"
	"github.com/nipatil-cybage/nebula/internal/nodeclient"
	"github.com/nipatil-cybage/nebula/internal/specrepo"
	"github.com/nipatil-cybage/nebula/internal/telemetry"
)

// Service answers ListTables/TableState/Query against the coordinator's
// current ClusterInfo snapshot and spec graph.
type Service struct {
	// Info returns the current ClusterInfo snapshot; wired to the same
	// atomic.Pointer the scheduler publishes to (§5 "Shared resources").
	Info func() *model.ClusterInfo

	Specs *specrepo.Repository
	Pool  *nodeclient.Pool

	// PoolSize bounds fan-out concurrency for TableState/Query, mirroring
	// inventory.Collector's PoolSize (§5 sizing rule).
	PoolSize int

	// MaxTablesReturn caps ListTables regardless of the caller's limit
	// (flag MAX_TABLES_RETURN, §6).
	MaxTablesReturn int
}

func New(info func() *model.ClusterInfo, specs *specrepo.Repository, pool *nodeclient.Pool) *Service {
	return &Service{Info: info, Specs: specs, Pool: pool, PoolSize: 32, MaxTablesReturn: 500}
}

// ListTables returns up to limit table names from the in-memory catalogue
// (§4.8), further capped by MaxTablesReturn.
func (s *Service) ListTables(limit int) []string {
	info := s.Info()
	if info == nil {
		return nil
	}

	maxReturn := s.MaxTablesReturn
	if maxReturn <= 0 {
		maxReturn = 500
	}
	if limit <= 0 || limit > maxReturn {
		limit = maxReturn
	}

	names := make([]string, 0, len(info.Tables))
	for _, t := range info.Tables {
		names = append(names, t.Name)
	}
	sort.Strings(names)
	if len(names) > limit {
		names = names[:limit]
	}
	return names
}

// TableStateResult is the aggregate TableState answer (§4.8). Defined in
// the model package so the rpc package can reference it without an import
// cycle through nodeclient; aliased here for existing callers.
type TableStateResult = model.TableStateResult

// TableState aggregates (blockCount, rowCount, memBytes, minTime, maxTime)
// across every node holding a resident block for name, plus the table's
// dimension/metric column split (§4.8).
func (s *Service) TableState(ctx context.Context, name string) (*TableStateResult, error) {
	log, ctx := telemetry.StartSpan(ctx, "queryfanout.TableState")

	info := s.Info()
	if info == nil {
		return nil, fmt.Errorf("%w: no cluster config loaded", errs.ErrUnknownTable)
	}
	table, ok := info.TableByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrUnknownTable, name)
	}

	result := &TableStateResult{
		Name:       name,
		Dimensions: table.Dimensions(),
		Metrics:    table.Metrics(),
	}

	sigs := make(map[string]model.NodeID)
	for _, sp := range s.Specs.Specs() {
		if sp.Table != name || sp.State != model.SpecReady || sp.Affinity == nil {
			continue
		}
		sigs[sp.Signature] = *sp.Affinity
	}
	if len(sigs) == 0 {
		return result, nil
	}

	nodeSet := make(map[model.NodeID]struct{})
	for _, n := range sigs {
		nodeSet[n] = struct{}{}
	}
	nodes := make([]model.NodeID, 0, len(nodeSet))
	for n := range nodeSet {
		nodes = append(nodes, n)
	}

	type partial struct {
		blocks   int64
		rows     int64
		mem      int64
		minTime  time.Time
		maxTime  time.Time
		hasTimes bool
	}
	partials := make([]partial, len(nodes))

	g, gctx := errgroup.WithContext(ctx)
	limit := s.PoolSize
	if limit <= 0 {
		limit = 32
	}
	g.SetLimit(limit)

	for i, node := range nodes {
		i, node := i, node
		g.Go(func() error {
			client, err := s.Pool.Get(gctx, node)
			if err != nil {
				log.Warnf("table state: dial %s failed: %s", node, err)
				return nil
			}
			blocks, err := client.Blocks(gctx)
			if err != nil {
				log.Warnf("table state: blocks on %s failed: %s", node, err)
				return nil
			}
			var p partial
			for _, b := range blocks {
				if _, wanted := sigs[b.SpecSignature]; !wanted {
					continue
				}
				p.blocks++
				p.rows += b.RowCount
				p.mem += b.RawBytes
				if !p.hasTimes || b.MinTime.Before(p.minTime) {
					p.minTime = b.MinTime
				}
				if !p.hasTimes || b.MaxTime.After(p.maxTime) {
					p.maxTime = b.MaxTime
				}
				p.hasTimes = true
			}
			partials[i] = p
			return nil
		})
	}
	_ = g.Wait()

	for _, p := range partials {
		result.BlockCount += p.blocks
		result.RowCount += p.rows
		result.MemBytes += p.mem
		if !p.hasTimes {
			continue
		}
		if result.MinTime.IsZero() || p.minTime.Before(result.MinTime) {
			result.MinTime = p.minTime
		}
		if p.maxTime.After(result.MaxTime) {
			result.MaxTime = p.maxTime
		}
	}
	return result, nil
}

// Request is a minimal query request: the table to scan and the caller's
// auth context, which the (out of scope) plan compiler would use for row-
// and column-level predicates.
type Request struct {
	Table string
	User  string
	Groups []string
}

// Result is the query result envelope of §6: a JSON-typed payload plus
// execution stats. Defined in the model package so the rpc package can
// reference it without an import cycle through nodeclient; aliased here
// for existing callers.
type Result = model.QueryResult

type Stats = model.QueryStats

// Query compiles req to a trivial plan (one fragment per node holding the
// table), fans out a Query RPC to each such node (see fanoutQuery) merged
// through the Cursor boundary type, and returns a JSON-ready envelope. Full
// plan execution and row scanning are out of scope (§1); what is modeled is
// the merge step real query execution would plug into.
func (s *Service) Query(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	log, ctx := telemetry.StartSpan(ctx, "queryfanout.Query")
	log = log.With("table", req.Table, "user", req.User)

	if req.Table == "" {
		return nil, fmt.Errorf("%w: empty table name", errs.ErrUnknownTable)
	}

	state, err := s.TableState(ctx, req.Table)
	if err != nil {
		return &Result{
			Type: "JSON",
			Stats: Stats{
				QueryTimeMs: time.Since(start).Milliseconds(),
				Error:       "INVALID_TABLE",
				Message:     err.Error(),
			},
		}, err
	}

	cursor := s.fanoutQuery(ctx, req.Table, state, log)
	rows, err := cursor.AsBuffer(append(state.Dimensions, state.Metrics...))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrExecutionFailed, err)
	}

	log.Infof("query served: %d rows", state.RowCount)
	return &Result{
		Type: "JSON",
		Data: rows,
		Stats: Stats{
			QueryTimeMs: time.Since(start).Milliseconds(),
			RowsScanned: state.RowCount,
		},
	}, nil
}

// fanoutQuery issues the per-node Query RPC (C9's Query(Plan) ->
// stream<RowBatch> contract, stubbed to a unary per-block row list since
// plan execution is out of scope, §1) against every node holding a ready
// block of table, merging the replies into a Cursor. Falls back to a flat
// summary cursor when no node returns any rows, e.g. the table has no
// resident blocks yet.
func (s *Service) fanoutQuery(ctx context.Context, table string, state *TableStateResult, log *zap.SugaredLogger) Cursor {
	nodeSet := make(map[model.NodeID]struct{})
	for _, sp := range s.Specs.Specs() {
		if sp.Table != table || sp.State != model.SpecReady || sp.Affinity == nil {
			continue
		}
		nodeSet[*sp.Affinity] = struct{}{}
	}

	var composite []Cursor
	if len(nodeSet) > 0 {
		nodes := make([]model.NodeID, 0, len(nodeSet))
		for n := range nodeSet {
			nodes = append(nodes, n)
		}

		samples := make([][]map[string]interface{}, len(nodes))
		g, gctx := errgroup.WithContext(ctx)
		limit := s.PoolSize
		if limit <= 0 {
			limit = 32
		}
		g.SetLimit(limit)
		for i, node := range nodes {
			i, node := i, node
			g.Go(func() error {
				client, err := s.Pool.Get(gctx, node)
				if err != nil {
					log.Warnf("query: dial %s failed: %s", node, err)
					return nil
				}
				rows, err := client.Query(gctx, table)
				if err != nil {
					log.Warnf("query: query rpc on %s failed: %s", node, err)
					return nil
				}
				samples[i] = rows
				return nil
			})
		}
		_ = g.Wait()

		for _, rows := range samples {
			if len(rows) == 0 {
				continue
			}
			composite = append(composite, Cursor{Kind: CursorSamples, Samples: rows})
		}
	}

	if len(composite) == 0 {
		return Cursor{
			Kind: CursorFlat,
			Flat: map[string]interface{}{
				"table":       state.Name,
				"block_count": state.BlockCount,
				"row_count":   state.RowCount,
				"mem_bytes":   state.MemBytes,
			},
		}
	}
	return Cursor{Kind: CursorComposite, Composite: composite}
}
