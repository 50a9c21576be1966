package sqlstore

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"tablesense/domain/core"
	"tablesense/domain/table"
)

func openDB(t *testing.T, rows int) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE leads (id INTEGER PRIMARY KEY, status TEXT, amount REAL)`)
	require.NoError(t, err)

	tx := db.MustBegin()
	for i := 1; i <= rows; i++ {
		status := "new"
		if i%2 == 0 {
			status = "won"
		}
		tx.MustExec(`INSERT INTO leads (id, status, amount) VALUES (?, ?, ?)`, i, status, float64(i)*1.5)
	}
	require.NoError(t, tx.Commit())
	return db
}

func TestCount(t *testing.T) {
	s := New(openDB(t, 25), 10)
	ctx := context.Background()

	n, err := s.Count(ctx, table.Query{Table: "leads"})
	require.NoError(t, err)
	assert.Equal(t, 25, n)

	n, err = s.Count(ctx, table.Query{Table: "leads", Predicates: []table.Predicate{{Column: "status", Op: table.OpEq, Value: "won"}}})
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	n, err = s.Count(ctx, table.Query{Table: "leads", Predicates: []table.Predicate{
		{Column: "status", Op: table.OpEq, Value: "new"},
		{Column: "amount", Op: table.OpGt, Value: 30},
	}})
	require.NoError(t, err)
	assert.Equal(t, 3, n, "ids 21, 23 and 25")
}

func TestFetchRangeCapsAtPageSize(t *testing.T) {
	s := New(openDB(t, 25), 10)

	rows, err := s.FetchRange(context.Background(), table.Query{Table: "leads", SortKey: "id"}, 0, 99)
	require.NoError(t, err)
	require.Len(t, rows, 10)
	assert.EqualValues(t, 1, rows[0]["id"])
	assert.EqualValues(t, 10, rows[9]["id"])
	assert.Equal(t, "new", rows[0]["status"])
	assert.Equal(t, 1.5, rows[0]["amount"])
}

func TestFetchRangeOffsets(t *testing.T) {
	s := New(openDB(t, 25), 10)
	q := table.Query{Table: "leads", SortKey: "id"}

	var ids []int64
	for from := 0; from < 25; from += 10 {
		rows, err := s.FetchRange(context.Background(), q, from, from+9)
		require.NoError(t, err)
		for _, r := range rows {
			ids = append(ids, r["id"].(int64))
		}
	}
	require.Len(t, ids, 25)
	for i, id := range ids {
		assert.EqualValues(t, i+1, id)
	}
}

func TestFetchRangeShortRange(t *testing.T) {
	s := New(openDB(t, 25), 10)

	rows, err := s.FetchRange(context.Background(), table.Query{Table: "leads", SortKey: "id"}, 20, 22)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.EqualValues(t, 21, rows[0]["id"])
}

func TestFetchRangeRejectsBadInput(t *testing.T) {
	s := New(openDB(t, 1), 10)
	ctx := context.Background()

	_, err := s.FetchRange(ctx, table.Query{Table: "leads"}, 5, 2)
	assert.ErrorIs(t, err, core.ErrInvalidRange)

	_, err = s.FetchRange(ctx, table.Query{Table: `leads"; DROP TABLE leads; --`}, 0, 9)
	assert.ErrorIs(t, err, core.ErrInvalidIdentifier)

	_, err = s.FetchRange(ctx, table.Query{Table: "missing"}, 0, 9)
	assert.Error(t, err)
}

func TestHasColumn(t *testing.T) {
	s := New(openDB(t, 0), 10)
	ctx := context.Background()

	tests := []struct {
		column string
		want   bool
	}{
		{"id", true},
		{"status", true},
		{"created_at", false},
	}
	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			ok, err := s.HasColumn(ctx, "leads", tt.column)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}

	_, err := s.HasColumn(ctx, "no such", "id")
	assert.ErrorIs(t, err, core.ErrInvalidIdentifier)
}

func TestDefaultPageSize(t *testing.T) {
	s := New(openDB(t, 0), 0)
	assert.Equal(t, DefaultPageSize, s.PageSize())
}

func TestWhereClause(t *testing.T) {
	where, args := whereClause([]table.Predicate{
		{Column: "status", Value: "new"},
		{Column: "amount", Op: table.OpLte, Value: 10},
	})
	assert.Equal(t, ` WHERE "status" = ? AND "amount" <= ?`, where)
	assert.Equal(t, []interface{}{"new", 10}, args)

	where, args = whereClause(nil)
	assert.Empty(t, where)
	assert.Nil(t, args)
}
