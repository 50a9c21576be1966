// Package sqlstore reads tables through database/sql with a fixed per-request row cap.
package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"tablesense/domain/core"
	"tablesense/domain/table"
	"tablesense/ports"
)

// DefaultPageSize is the row cap applied when none is configured
const DefaultPageSize = 1000

// store implements ports.TableStore over sqlx. Placeholders are written as
// "?" and rebound for the connection's driver.
type store struct {
	db       *sqlx.DB
	pageSize int
}

// New creates a table store capped at pageSize rows per fetch
func New(db *sqlx.DB, pageSize int) ports.TableStore {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &store{db: db, pageSize: pageSize}
}

func (s *store) PageSize() int {
	return s.pageSize
}

// Count returns the number of rows matching the query predicates
func (s *store) Count(ctx context.Context, q table.Query) (int, error) {
	if err := q.Validate(); err != nil {
		return 0, err
	}
	where, args := whereClause(q.Predicates)
	query := s.db.Rebind(fmt.Sprintf("SELECT COUNT(*) FROM %s%s", quote(q.Table), where))

	var n int
	if err := s.db.GetContext(ctx, &n, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", q.Table, err)
	}
	return n, nil
}

// FetchRange returns rows in the inclusive offset range [from, to], at most
// PageSize of them
func (s *store) FetchRange(ctx context.Context, q table.Query, from, to int) ([]table.Record, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if from < 0 || to < from {
		return nil, fmt.Errorf("%w: [%d,%d]", core.ErrInvalidRange, from, to)
	}
	limit := to - from + 1
	if limit > s.pageSize {
		limit = s.pageSize
	}

	where, args := whereClause(q.Predicates)
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT * FROM %s%s", quote(q.Table), where)
	if q.SortKey != "" {
		fmt.Fprintf(&b, " ORDER BY %s", quote(q.SortKey))
	}
	b.WriteString(" LIMIT ? OFFSET ?")
	args = append(args, limit, from)

	rows, err := s.db.QueryxContext(ctx, s.db.Rebind(b.String()), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", q.Table, err)
	}
	defer rows.Close()

	records := make([]table.Record, 0, limit)
	for rows.Next() {
		rec := make(map[string]interface{})
		if err := rows.MapScan(rec); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", q.Table, err)
		}
		records = append(records, normalizeValues(rec))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s rows: %w", q.Table, err)
	}
	return records, nil
}

// HasColumn reads the column set of the relation without fetching rows
func (s *store) HasColumn(ctx context.Context, tableName, column string) (bool, error) {
	if !table.ValidIdentifier(tableName) {
		return false, core.NewIdentifierError(tableName)
	}
	rows, err := s.db.QueryxContext(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT 0", quote(tableName)))
	if err != nil {
		return false, fmt.Errorf("failed to inspect %s: %w", tableName, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return false, fmt.Errorf("failed to read %s columns: %w", tableName, err)
	}
	for _, c := range cols {
		if c == column {
			return true, nil
		}
	}
	return false, nil
}

// whereClause renders predicates as "?" placeholders joined by AND
func whereClause(preds []table.Predicate) (string, []interface{}) {
	if len(preds) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(preds))
	args := make([]interface{}, 0, len(preds))
	for _, p := range preds {
		op, _ := p.Op.SQL()
		parts = append(parts, fmt.Sprintf("%s %s ?", quote(p.Column), op))
		args = append(args, p.Value)
	}
	return " WHERE " + strings.Join(parts, " AND "), args
}

// quote wraps a validated identifier in double quotes
func quote(ident string) string {
	return `"` + ident + `"`
}

// normalizeValues turns driver byte slices into strings so rows serialize
// and parse like any other text value
func normalizeValues(rec map[string]interface{}) table.Record {
	for k, v := range rec {
		if b, ok := v.([]byte); ok {
			rec[k] = string(b)
		}
	}
	return rec
}
