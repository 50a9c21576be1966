// Package scoring ranks analyzed columns by how useful they are on a default dashboard.
package scoring

import (
	"math"
	"sort"

	"tablesense/domain/analysis"
)

const (
	// RecommendThreshold is the minimum score of a recommended column
	RecommendThreshold = 50
	// MaxRecommended caps the recommended field list
	MaxRecommended = 15

	nonSystemBonus     = 20
	completenessWeight = 0.3
	enumBonus          = 10
	numberBonus        = 15
	highCardinality    = 1000
	highCardPenalty    = 10
)

// categoryWeights is product-tuned; keep the values stable
var categoryWeights = map[analysis.Category]float64{
	analysis.CategoryFinancial:   25,
	analysis.CategoryStatus:      20,
	analysis.CategoryPeople:      18,
	analysis.CategoryDates:       15,
	analysis.CategoryCompanies:   15,
	analysis.CategoryContact:     12,
	analysis.CategoryIdentifiers: 10,
	analysis.CategoryOther:       5,
	analysis.CategorySystem:      0,
}

// CategoryWeight returns the weight of a category, 0 for unknown ones
func CategoryWeight(c analysis.Category) float64 {
	return categoryWeights[c]
}

// Score computes the 0-100 recommendation score of a column
func Score(col analysis.Column) int {
	score := 0.0
	if col.Category != analysis.CategorySystem {
		score += nonSystemBonus
	}
	score += float64(100-col.Stats.NullPercentage) * completenessWeight
	score += CategoryWeight(col.Category)
	switch col.DataType {
	case analysis.TypeEnum:
		score += enumBonus
	case analysis.TypeNumber:
		score += numberBonus
	}
	if col.Stats.UniqueCount > highCardinality {
		score -= highCardPenalty
	}
	return int(math.Round(clamp(score, 0, 100)))
}

// Apply sets RecommendationScore and IsRecommended on every column
func Apply(cols []analysis.Column) {
	for i := range cols {
		cols[i].RecommendationScore = Score(cols[i])
		cols[i].IsRecommended = cols[i].RecommendationScore >= RecommendThreshold
	}
}

// Rank sorts columns by descending score, keeping input order between equal scores
func Rank(cols []analysis.Column) {
	sort.SliceStable(cols, func(i, j int) bool {
		return cols[i].RecommendationScore > cols[j].RecommendationScore
	})
}

// Recommended returns up to limit recommended column names in descending
// score order. A non-positive limit means MaxRecommended.
func Recommended(cols []analysis.Column, limit int) []string {
	if limit <= 0 {
		limit = MaxRecommended
	}
	ranked := append([]analysis.Column(nil), cols...)
	Rank(ranked)

	names := make([]string, 0, limit)
	for _, c := range ranked {
		if len(names) == limit {
			break
		}
		if c.IsRecommended {
			names = append(names, c.Name)
		}
	}
	return names
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
