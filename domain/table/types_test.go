package table

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tablesense/domain/core"
)

func TestQueryValidate(t *testing.T) {
	tests := []struct {
		name    string
		query   Query
		wantErr error
	}{
		{"plain", Query{Table: "leads"}, nil},
		{"sorted and filtered", Query{Table: "leads", SortKey: "id", Predicates: []Predicate{{Column: "status", Op: OpEq, Value: "new"}}}, nil},
		{"injection in table", Query{Table: "leads; drop table x"}, core.ErrInvalidIdentifier},
		{"bad sort key", Query{Table: "leads", SortKey: "id desc"}, core.ErrInvalidIdentifier},
		{"bad operator", Query{Table: "leads", Predicates: []Predicate{{Column: "amount", Op: "like", Value: 1}}}, core.ErrUnsupportedOp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUnfilteredDropsPredicatesAndSort(t *testing.T) {
	q := Query{Table: "deals", SortKey: "id", Predicates: []Predicate{{Column: "stage", Value: "won"}}}
	assert.Equal(t, Query{Table: "deals"}, q.Unfiltered())
}

func TestParsePredicate(t *testing.T) {
	tests := []struct {
		raw   string
		op    Operator
		value string
	}{
		{"won", OpEq, "won"},
		{"gte:100", OpGte, "100"},
		{"neq:lost", OpNeq, "lost"},
		{"10:30", OpEq, "10:30"},
		{"eq:", OpEq, ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			p, err := ParsePredicate("col", tt.raw)
			assert.NoError(t, err)
			assert.Equal(t, "col", p.Column)
			assert.Equal(t, tt.op, p.Op)
			assert.Equal(t, tt.value, p.Value)
		})
	}

	_, err := ParsePredicate("a-b", "1")
	assert.ErrorIs(t, err, core.ErrInvalidIdentifier)
}
