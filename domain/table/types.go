// Package table holds the plain row and query types exchanged with the backing store.
package table

import (
	"fmt"
	"regexp"
	"strings"

	"tablesense/domain/core"
)

// Record is one row as a field name → value mapping
type Record = map[string]interface{}

// IDField is the stable identifier every normalized row carries
const IDField = "id"

// Operator is a predicate comparison
type Operator string

const (
	OpEq  Operator = "eq"
	OpNeq Operator = "neq"
	OpGt  Operator = "gt"
	OpGte Operator = "gte"
	OpLt  Operator = "lt"
	OpLte Operator = "lte"
)

// Predicate is an equality or range filter applied by the store
type Predicate struct {
	Column string      `json:"column"`
	Op     Operator    `json:"op"`
	Value  interface{} `json:"value"`
}

// Query names a relation plus optional predicates and sort key.
// An empty SortKey means the store applies no ordering.
type Query struct {
	Table      string      `json:"table"`
	Predicates []Predicate `json:"predicates,omitempty"`
	SortKey    string      `json:"sortKey,omitempty"`
}

// Unfiltered returns the same relation with no predicates and no ordering
func (q Query) Unfiltered() Query {
	return Query{Table: q.Table}
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// ValidIdentifier reports whether name is safe to splice into SQL as a quoted identifier
func ValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

// Validate checks table, predicate, and sort identifiers and operators
func (q Query) Validate() error {
	if !ValidIdentifier(q.Table) {
		return core.NewIdentifierError(q.Table)
	}
	if q.SortKey != "" && !ValidIdentifier(q.SortKey) {
		return core.NewIdentifierError(q.SortKey)
	}
	for _, p := range q.Predicates {
		if !ValidIdentifier(p.Column) {
			return core.NewIdentifierError(p.Column)
		}
		if _, ok := p.Op.SQL(); !ok {
			return fmt.Errorf("%w: %s", core.ErrUnsupportedOp, p.Op)
		}
	}
	return nil
}

// SQL returns the comparison token for the operator
func (o Operator) SQL() (string, bool) {
	switch o {
	case OpEq, "":
		return "=", true
	case OpNeq:
		return "<>", true
	case OpGt:
		return ">", true
	case OpGte:
		return ">=", true
	case OpLt:
		return "<", true
	case OpLte:
		return "<=", true
	}
	return "", false
}

var operatorNames = map[string]Operator{
	string(OpEq):  OpEq,
	string(OpNeq): OpNeq,
	string(OpGt):  OpGt,
	string(OpGte): OpGte,
	string(OpLt):  OpLt,
	string(OpLte): OpLte,
}

// ParsePredicate reads a filter written as "[op:]value". A prefix that is not
// an operator name stays part of the value, so "10:30" compares for equality.
func ParsePredicate(column, raw string) (Predicate, error) {
	if !ValidIdentifier(column) {
		return Predicate{}, core.NewIdentifierError(column)
	}
	p := Predicate{Column: column, Op: OpEq, Value: raw}
	if prefix, value, ok := strings.Cut(raw, ":"); ok {
		if op, known := operatorNames[prefix]; known {
			p.Op = op
			p.Value = value
		}
	}
	return p, nil
}
