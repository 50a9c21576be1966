// Package chunked reads a whole logical table through a store that caps every
// request at a fixed page size.
//
// Ranges are issued sequentially with strictly increasing, non-overlapping
// offsets. The loop stops when the expected row count is reached, after
// MaxEmptyPages consecutive empty pages, or at the MaxRows ceiling. The
// empty-page stop is a heuristic: a table with holes in its offset space can
// under-report, which Result.Partial makes visible. The ceiling lowers the
// target itself, so a capped read is complete but flagged Result.Truncated.
//
// With a unique, stable sort key the result has no duplicates. With a
// non-unique key, rows that tie across a page boundary may be duplicated or
// missed; that is not corrected here.
package chunked

import (
	"context"

	"tablesense/domain/table"
	"tablesense/internal"
	"tablesense/internal/errors"
	"tablesense/ports"
)

// Options bounds a read
type Options struct {
	MaxEmptyPages int
	MaxRows       int
}

// DefaultOptions returns the production stop conditions
func DefaultOptions() Options {
	return Options{
		MaxEmptyPages: 3,
		MaxRows:       500000,
	}
}

// Request describes one table read
type Request struct {
	Query table.Query
	// Total is the pre-fetched row count for Query
	Total int
	// Limit caps the rows returned; 0 means no caller cap
	Limit int
}

// Fetch records one range request issued to the store
type Fetch struct {
	From     int    `json:"from"`
	To       int    `json:"to"`
	Rows     int    `json:"rows"`
	Fallback bool   `json:"fallback,omitempty"`
	Err      string `json:"error,omitempty"`
}

// Result is the outcome of a read. Rows are in ascending offset order.
type Result struct {
	Rows         []table.Record
	Total        int
	Target       int
	Fetches      []Fetch
	UsedSort     bool
	UsedFallback bool
	Partial      bool
	// Truncated is set when the MaxRows ceiling cut the target below Total (or Limit)
	Truncated bool
	// Warning is a PARTIAL_RESULT AppError when Partial is set
	Warning error
}

// Reader issues chunked reads against one store
type Reader struct {
	store  ports.TableStore
	opts   Options
	logger *internal.Logger
}

// NewReader creates a reader; zero option fields take their defaults
func NewReader(store ports.TableStore, opts Options) *Reader {
	def := DefaultOptions()
	if opts.MaxEmptyPages <= 0 {
		opts.MaxEmptyPages = def.MaxEmptyPages
	}
	if opts.MaxRows <= 0 {
		opts.MaxRows = def.MaxRows
	}
	return &Reader{
		store:  store,
		opts:   opts,
		logger: internal.DefaultLogger.WithPrefix("ChunkedReader"),
	}
}

// Read retrieves up to min(Total, Limit, MaxRows) rows. Upstream failures
// never fail the read: they end the loop and yield a partial result. The
// returned error is set only for invalid configuration or input and for
// cancellation, in which case accumulated rows are discarded.
func (r *Reader) Read(ctx context.Context, req Request) (*Result, error) {
	if r.store == nil {
		return nil, errors.Configuration("chunked reader has no table store")
	}
	if err := req.Query.Validate(); err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}
	pageSize := r.store.PageSize()
	if pageSize <= 0 {
		return nil, errors.Configuration("table store reports a non-positive page size")
	}

	target := r.target(req)
	res := &Result{Total: req.Total, Target: target, Truncated: r.capped(req)}
	if res.Truncated {
		r.logger.Warn("%s holds %d rows, reading only the first %d", req.Query.Table, req.Total, target)
	}
	if target == 0 {
		return res, nil
	}

	q, usedSort, err := r.resolveSort(ctx, req.Query)
	if err != nil {
		return nil, err
	}
	res.UsedSort = usedSort

	var rows []table.Record
	var fetchErr error
	offset, emptyPages := 0, 0

	for len(rows) < target && offset < r.opts.MaxRows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		to := offset + pageSize - 1
		if remaining := target - len(rows); to > offset+remaining-1 {
			to = offset + remaining - 1
		}

		page, err := r.store.FetchRange(ctx, q, offset, to)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			r.logger.Error("range [%d,%d] of %s failed, keeping %d rows: %v", offset, to, q.Table, len(rows), err)
			res.Fetches = append(res.Fetches, Fetch{From: offset, To: to, Err: err.Error()})
			fetchErr = errors.UpstreamQuery(q.Table, err)
			break
		}
		res.Fetches = append(res.Fetches, Fetch{From: offset, To: to, Rows: len(page)})

		if len(page) == 0 {
			emptyPages++
			if emptyPages >= r.opts.MaxEmptyPages {
				r.logger.Warn("%d consecutive empty pages on %s at offset %d, stopping with %d of %d rows",
					emptyPages, q.Table, offset, len(rows), target)
				break
			}
		} else {
			emptyPages = 0
			rows = append(rows, page...)
		}
		offset = to + 1
	}

	if len(rows) == 0 && req.Total > 0 {
		rows, fetchErr = r.fallback(ctx, q, target, res, fetchErr)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	if len(rows) > target {
		rows = rows[:target]
	}
	res.Rows = rows

	if len(rows) < target {
		res.Partial = true
		res.Warning = errors.PartialResult(q.Table, len(rows), target, fetchErr)
		r.logger.Warn("partial read of %s: %d of %d rows", q.Table, len(rows), target)
	} else {
		r.logger.Debug("read %d rows from %s in %d fetches", len(rows), q.Table, len(res.Fetches))
	}
	return res, nil
}

// target is the number of rows the read aims for
func (r *Reader) target(req Request) int {
	target := requested(req)
	if target > r.opts.MaxRows {
		target = r.opts.MaxRows
	}
	if target < 0 {
		target = 0
	}
	return target
}

// capped reports whether the ceiling, not the caller, bounds the read
func (r *Reader) capped(req Request) bool {
	return requested(req) > r.opts.MaxRows
}

// requested is min(Total, Limit) before the ceiling applies
func requested(req Request) int {
	target := req.Total
	if req.Limit > 0 && req.Limit < target {
		target = req.Limit
	}
	return target
}

// resolveSort drops the sort key unless the store confirms the relation has
// it, so every page is ordered the same way or not at all.
func (r *Reader) resolveSort(ctx context.Context, q table.Query) (table.Query, bool, error) {
	if q.SortKey == "" {
		return q, false, nil
	}
	ok, err := r.store.HasColumn(ctx, q.Table, q.SortKey)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return q, false, ctxErr
	}
	if err != nil || !ok {
		r.logger.Info("sort key %q not available on %s, reading unordered (err=%v)", q.SortKey, q.Table, err)
		q.SortKey = ""
		return q, false, nil
	}
	return q, true, nil
}

// fallback issues the single unsorted, unfiltered request used when the main
// loop produced nothing.
func (r *Reader) fallback(ctx context.Context, q table.Query, target int, res *Result, prev error) ([]table.Record, error) {
	fb := q.Unfiltered()
	r.logger.Warn("no rows from %s despite total %d, trying one unfiltered fetch", q.Table, res.Total)

	page, err := r.store.FetchRange(ctx, fb, 0, target-1)
	if err != nil {
		r.logger.Error("fallback fetch of %s failed: %v", q.Table, err)
		res.Fetches = append(res.Fetches, Fetch{From: 0, To: target - 1, Fallback: true, Err: err.Error()})
		return nil, errors.UpstreamQuery(q.Table, err)
	}
	res.Fetches = append(res.Fetches, Fetch{From: 0, To: target - 1, Rows: len(page), Fallback: true})
	res.UsedFallback = len(page) > 0
	if len(page) == 0 {
		return nil, prev
	}
	return page, prev
}
