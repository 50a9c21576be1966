package inference

import (
	"tablesense/domain/analysis"
)

const (
	// matchRatio is the share of non-null values a threshold rule needs, exclusive
	matchRatio = 0.8
	// maxEnumValues bounds the distinct values of an enum column
	maxEnumValues = 20
	// maxEnumRatio is the distinct/non-null ratio an enum column stays under
	maxEnumRatio = 0.3
)

// typeRule decides whether a non-empty set of non-null values has a type
type typeRule struct {
	dataType analysis.DataType
	matches  func(values []interface{}) bool
}

// typeRules is evaluated top to bottom; the first matching rule wins
var typeRules = []typeRule{
	{analysis.TypeBoolean, func(values []interface{}) bool {
		return countMatching(values, isBoolLike) == len(values)
	}},
	{analysis.TypeDate, func(values []interface{}) bool {
		return ratioOver(values, looksLikeDate, matchRatio)
	}},
	{analysis.TypeNumber, func(values []interface{}) bool {
		return ratioOver(values, isNumberLike, matchRatio)
	}},
	{analysis.TypeJSON, func(values []interface{}) bool {
		return ratioOver(values, isJSONValue, matchRatio)
	}},
	{analysis.TypeEnum, func(values []interface{}) bool {
		unique := countUnique(values)
		return unique <= maxEnumValues && float64(unique) < float64(len(values))*maxEnumRatio
	}},
}

// DetectDataType infers the type of a column from its sampled values. Null
// and blank values are ignored; a column with none left is unknown.
func DetectDataType(values []interface{}) analysis.DataType {
	present := nonNull(values)
	if len(present) == 0 {
		return analysis.TypeUnknown
	}
	for _, rule := range typeRules {
		if rule.matches(present) {
			return rule.dataType
		}
	}
	return analysis.TypeText
}

func isBoolLike(v interface{}) bool {
	_, ok := ParseBool(v)
	return ok
}

func isNumberLike(v interface{}) bool {
	_, ok := ParseNumber(v)
	return ok
}

func countMatching(values []interface{}, pred func(interface{}) bool) int {
	n := 0
	for _, v := range values {
		if pred(v) {
			n++
		}
	}
	return n
}

func ratioOver(values []interface{}, pred func(interface{}) bool, ratio float64) bool {
	return float64(countMatching(values, pred)) > float64(len(values))*ratio
}

func countUnique(values []interface{}) int {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[valueKey(v)] = struct{}{}
	}
	return len(seen)
}

func nonNull(values []interface{}) []interface{} {
	out := make([]interface{}, 0, len(values))
	for _, v := range values {
		if !isNull(v) {
			out = append(out, v)
		}
	}
	return out
}
