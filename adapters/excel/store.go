package excel

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"tablesense/domain/core"
	"tablesense/domain/table"
	"tablesense/internal/inference"
	"tablesense/ports"
)

// DefaultPageSize is the row cap per fetch, matching the SQL store
const DefaultPageSize = 1000

// Store serves loaded sheets through the same capped range interface as a
// database. Sheets are read-only once added.
type Store struct {
	sheets   map[string]*Sheet
	pageSize int
}

var _ ports.TableStore = (*Store)(nil)

// NewStore creates a store over the given sheets, keyed by Sheet.Name
func NewStore(pageSize int, sheets ...*Sheet) *Store {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	s := &Store{sheets: make(map[string]*Sheet, len(sheets)), pageSize: pageSize}
	for _, sh := range sheets {
		s.sheets[sh.Name] = sh
	}
	return s
}

// Tables lists the loaded table names
func (s *Store) Tables() []string {
	names := make([]string, 0, len(s.sheets))
	for n := range s.sheets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (s *Store) PageSize() int {
	return s.pageSize
}

func (s *Store) Count(ctx context.Context, q table.Query) (int, error) {
	rows, err := s.selectRows(q)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (s *Store) FetchRange(ctx context.Context, q table.Query, from, to int) ([]table.Record, error) {
	if from < 0 || to < from {
		return nil, fmt.Errorf("%w: [%d,%d]", core.ErrInvalidRange, from, to)
	}
	rows, err := s.selectRows(q)
	if err != nil {
		return nil, err
	}
	if q.SortKey != "" {
		sortRows(rows, q.SortKey)
	}

	if from >= len(rows) {
		return []table.Record{}, nil
	}
	end := to + 1
	if end-from > s.pageSize {
		end = from + s.pageSize
	}
	if end > len(rows) {
		end = len(rows)
	}

	out := make([]table.Record, 0, end-from)
	for _, r := range rows[from:end] {
		out = append(out, copyRecord(r))
	}
	return out, nil
}

func (s *Store) HasColumn(ctx context.Context, tableName, column string) (bool, error) {
	sh, ok := s.sheets[tableName]
	if !ok {
		return false, fmt.Errorf("%w: %s", core.ErrTableNotFound, tableName)
	}
	for _, h := range sh.Headers {
		if h == column {
			return true, nil
		}
	}
	return false, nil
}

// selectRows returns the rows matching every predicate, in sheet order
func (s *Store) selectRows(q table.Query) ([]table.Record, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	sh, ok := s.sheets[q.Table]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrTableNotFound, q.Table)
	}

	rows := make([]table.Record, 0, len(sh.Rows))
	for _, r := range sh.Rows {
		if matchesAll(r, q.Predicates) {
			rows = append(rows, r)
		}
	}
	return rows, nil
}

func matchesAll(r table.Record, preds []table.Predicate) bool {
	for _, p := range preds {
		if !matches(compare(r[p.Column], p.Value), p.Op) {
			return false
		}
	}
	return true
}

func matches(c int, op table.Operator) bool {
	switch op {
	case table.OpEq, "":
		return c == 0
	case table.OpNeq:
		return c != 0
	case table.OpGt:
		return c > 0
	case table.OpGte:
		return c >= 0
	case table.OpLt:
		return c < 0
	case table.OpLte:
		return c <= 0
	}
	return false
}

// compare orders numerically when both sides parse as numbers, otherwise
// by string. nil sorts first.
func compare(a, b interface{}) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	if x, ok := inference.ParseNumber(a); ok {
		if y, ok := inference.ParseNumber(b); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func sortRows(rows []table.Record, key string) {
	sort.SliceStable(rows, func(i, j int) bool {
		return compare(rows[i][key], rows[j][key]) < 0
	})
}

func copyRecord(r table.Record) table.Record {
	out := make(table.Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
