// Package analysis holds the output of schema inference over a table sample.
package analysis

import (
	"time"

	"tablesense/domain/core"
)

// DataType is the inferred value shape of a column
type DataType string

const (
	TypeBoolean DataType = "boolean"
	TypeDate    DataType = "date"
	TypeNumber  DataType = "number"
	TypeEnum    DataType = "enum"
	TypeText    DataType = "text"
	TypeJSON    DataType = "json"
	TypeUnknown DataType = "unknown"
)

// Category is the heuristic semantic grouping of a column, inferred from its name
type Category string

const (
	CategoryFinancial   Category = "financial"
	CategoryDates       Category = "dates"
	CategoryPeople      Category = "people"
	CategoryStatus      Category = "status"
	CategoryCompanies   Category = "companies"
	CategoryContact     Category = "contact"
	CategoryIdentifiers Category = "identifiers"
	CategorySystem      Category = "system"
	CategoryOther       Category = "other"
)

// AllCategories lists categories in detection order, with the fallback last
var AllCategories = []Category{
	CategoryFinancial,
	CategoryDates,
	CategoryPeople,
	CategoryStatus,
	CategoryCompanies,
	CategoryContact,
	CategoryIdentifiers,
	CategorySystem,
	CategoryOther,
}

// ColumnStats describes the sampled values of one column.
// Type-specific fields are nil when they do not apply.
type ColumnStats struct {
	Count          int `json:"count"`
	NullCount      int `json:"nullCount"`
	NullPercentage int `json:"nullPercentage"`
	UniqueCount    int `json:"uniqueCount"`

	// number
	Sum    *float64 `json:"sum,omitempty"`
	Avg    *float64 `json:"avg,omitempty"`
	Min    *float64 `json:"min,omitempty"`
	Max    *float64 `json:"max,omitempty"`
	Median *float64 `json:"median,omitempty"`
	StdDev *float64 `json:"stdDev,omitempty"`

	// enum and low-cardinality text
	UniqueValues      []string       `json:"uniqueValues,omitempty"`
	ValueDistribution map[string]int `json:"valueDistribution,omitempty"`

	// date
	MinDate *time.Time `json:"minDate,omitempty"`
	MaxDate *time.Time `json:"maxDate,omitempty"`

	// text
	AvgLength *float64 `json:"avgLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty"`

	// boolean
	TrueCount  *int `json:"trueCount,omitempty"`
	FalseCount *int `json:"falseCount,omitempty"`
}

// Column is the inferred profile of one field
type Column struct {
	Name                string        `json:"name"`
	DisplayName         string        `json:"displayName"`
	DataType            DataType      `json:"dataType"`
	Category            Category      `json:"category"`
	Stats               ColumnStats   `json:"stats"`
	SampleValues        []interface{} `json:"sampleValues"`
	RecommendationScore int           `json:"recommendationScore"`
	IsRecommended       bool          `json:"isRecommended"`
}

// IsEnumLike reports whether the column can drive a select filter or a distribution chart
func (c Column) IsEnumLike() bool {
	switch c.DataType {
	case TypeEnum, TypeBoolean:
		return c.Stats.UniqueCount > 0
	case TypeText:
		return c.Stats.UniqueCount > 0 && c.Stats.UniqueCount <= 20
	}
	return false
}

// DataAnalysis is the immutable result of analyzing one table sample
type DataAnalysis struct {
	TableName         string                `json:"tableName"`
	TotalRows         int                   `json:"totalRows"`
	SampleSize        int                   `json:"sampleSize"`
	TotalColumns      int                   `json:"totalColumns"`
	Columns           []Column              `json:"columns"`
	Categories        map[Category][]string `json:"categories"`
	RecommendedFields []string              `json:"recommendedFields"`
	SampleHash        core.Hash             `json:"sampleHash"`
	AnalyzedAt        time.Time             `json:"analyzedAt"`
}

// Column returns the named column profile
func (a *DataAnalysis) Column(name string) (Column, bool) {
	for _, c := range a.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnsOfType returns column names of the given type in analysis order
func (a *DataAnalysis) ColumnsOfType(t DataType) []string {
	var names []string
	for _, c := range a.Columns {
		if c.DataType == t {
			names = append(names, c.Name)
		}
	}
	return names
}

// EnumLikeColumns returns enum-like columns in analysis order
func (a *DataAnalysis) EnumLikeColumns() []Column {
	var cols []Column
	for _, c := range a.Columns {
		if c.IsEnumLike() {
			cols = append(cols, c)
		}
	}
	return cols
}
