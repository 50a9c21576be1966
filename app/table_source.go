package app

import (
	"context"
	"fmt"

	"tablesense/domain/core"
	"tablesense/domain/table"
	"tablesense/internal"
	"tablesense/internal/chunked"
	"tablesense/internal/errors"
	"tablesense/internal/viewadapter"
	"tablesense/ports"
)

// ReadOptions narrows one table read
type ReadOptions struct {
	Predicates []table.Predicate
	// SortKey orders the chunked read; empty means the stable id field
	SortKey string
	// Limit caps the rows read; 0 reads the whole table up to the scan ceiling
	Limit int
}

// LoadedTable is a resolved, read and normalized table
type LoadedTable struct {
	// Name is the logical name when the project declares one, else the physical relation
	Name     string
	Physical string
	Total    int
	Rows     []table.Record
	Read     *chunked.Result
}

// TableSource resolves project tables and reads them through the chunked reader
type TableSource struct {
	resolver ports.ProjectResolver
	store    ports.TableStore
	reader   *chunked.Reader
	adapter  *viewadapter.Adapter
	logger   *internal.Logger
}

// NewTableSource creates a table source over one backing store
func NewTableSource(resolver ports.ProjectResolver, store ports.TableStore, scan chunked.Options) *TableSource {
	return &TableSource{
		resolver: resolver,
		store:    store,
		reader:   chunked.NewReader(store, scan),
		adapter:  viewadapter.NewDefault(),
		logger:   internal.DefaultLogger.WithPrefix("TableSource"),
	}
}

// Resolve maps a caller-supplied table name to the physical relation
func (s *TableSource) Resolve(ctx context.Context, projectID core.ProjectID, name string) (physical, display string, err error) {
	if s.resolver == nil || s.store == nil {
		return "", "", errors.Configuration("table source is missing its project resolver or table store")
	}
	if projectID.String() == "" {
		return "", "", errors.InvalidInput("project id is required")
	}

	p, err := s.resolver.Resolve(ctx, projectID)
	if err != nil {
		return "", "", storeError(err, "failed to resolve project")
	}

	physical, logical, ok := p.ResolveTable(name)
	if !ok {
		return "", "", errors.AccessDenied(fmt.Sprintf("table %q is not declared by project %s", name, projectID))
	}
	if !table.ValidIdentifier(physical) {
		return "", "", errors.InvalidInput(fmt.Sprintf("invalid table name %q", physical))
	}

	display = logical
	if display == "" {
		display = physical
	}
	return physical, display, nil
}

// Load resolves, counts, reads and normalizes a table. Upstream trouble
// during the chunked read yields a partial table rather than an error.
func (s *TableSource) Load(ctx context.Context, projectID core.ProjectID, name string, opts ReadOptions) (*LoadedTable, error) {
	physical, display, err := s.Resolve(ctx, projectID, name)
	if err != nil {
		return nil, err
	}

	sortKey := opts.SortKey
	if sortKey == "" {
		sortKey = table.IDField
	}
	q := table.Query{Table: physical, Predicates: opts.Predicates, SortKey: sortKey}
	if err := q.Validate(); err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}

	total, err := s.store.Count(ctx, q)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, storeError(err, "failed to count rows of "+physical)
	}

	res, err := s.reader.Read(ctx, chunked.Request{Query: q, Total: total, Limit: opts.Limit})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("loaded %s (%s): %d of %d rows, partial=%v", display, physical, len(res.Rows), total, res.Partial)
	return &LoadedTable{
		Name:     display,
		Physical: physical,
		Total:    total,
		Rows:     s.adapter.NormalizeAll(res.Rows, 0),
		Read:     res,
	}, nil
}

// storeError maps repository and store failures onto application error codes
func storeError(err error, message string) error {
	switch {
	case errors.IsAppError(err):
		return errors.Wrap(err, message)
	case core.IsNotFoundError(err):
		return errors.WithCode(errors.CodeNotFound, errors.Wrap(err, message))
	case core.IsValidationError(err):
		return errors.WithCode(errors.CodeInvalidInput, errors.Wrap(err, message))
	}
	return errors.WithCode(errors.CodeUpstreamQuery, errors.Wrap(err, message))
}
