package inference

import (
	"math"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"tablesense/domain/analysis"
)

const (
	// maxUniqueValues caps uniqueValues and valueDistribution
	maxUniqueValues = 50
)

// CalculateStats summarizes the sampled values of one column. Values that do
// not parse under the column type are excluded from the type-specific fields.
func CalculateStats(values []interface{}, dataType analysis.DataType) analysis.ColumnStats {
	s := analysis.ColumnStats{Count: len(values)}

	present := nonNull(values)
	s.NullCount = len(values) - len(present)
	if s.Count > 0 {
		s.NullPercentage = int(math.Round(float64(s.NullCount) / float64(s.Count) * 100))
	}

	freq, order := frequencies(present)
	s.UniqueCount = len(freq)

	switch dataType {
	case analysis.TypeNumber:
		numberStats(&s, present)
	case analysis.TypeDate:
		dateStats(&s, present)
	case analysis.TypeBoolean:
		boolStats(&s, present)
		distribution(&s, freq, order)
	case analysis.TypeEnum:
		distribution(&s, freq, order)
	case analysis.TypeText:
		textStats(&s, present)
		if s.UniqueCount <= maxUniqueValues {
			distribution(&s, freq, order)
		}
	}
	return s
}

func numberStats(s *analysis.ColumnStats, values []interface{}) {
	nums := make([]float64, 0, len(values))
	for _, v := range values {
		if f, ok := ParseNumber(v); ok {
			nums = append(nums, f)
		}
	}
	if len(nums) == 0 {
		return
	}

	sum, _ := stats.Sum(nums)
	mean, _ := stats.Mean(nums)
	min, _ := stats.Min(nums)
	max, _ := stats.Max(nums)
	median, _ := stats.Median(nums)
	stdDev := 0.0
	if len(nums) > 1 {
		stdDev = stat.StdDev(nums, nil)
	}

	s.Sum = &sum
	s.Avg = &mean
	s.Min = &min
	s.Max = &max
	s.Median = &median
	s.StdDev = &stdDev
}

func dateStats(s *analysis.ColumnStats, values []interface{}) {
	var minDate, maxDate time.Time
	found := false
	for _, v := range values {
		t, ok := ParseDate(v)
		if !ok {
			continue
		}
		if !found || t.Before(minDate) {
			minDate = t
		}
		if !found || t.After(maxDate) {
			maxDate = t
		}
		found = true
	}
	if found {
		s.MinDate = &minDate
		s.MaxDate = &maxDate
	}
}

func textStats(s *analysis.ColumnStats, values []interface{}) {
	if len(values) == 0 {
		return
	}
	total, longest := 0, 0
	for _, v := range values {
		n := utf8.RuneCountInString(valueKey(v))
		total += n
		if n > longest {
			longest = n
		}
	}
	avg := float64(total) / float64(len(values))
	s.AvgLength = &avg
	s.MaxLength = &longest
}

func boolStats(s *analysis.ColumnStats, values []interface{}) {
	trues, falses := 0, 0
	for _, v := range values {
		b, ok := ParseBool(v)
		if !ok {
			continue
		}
		if b {
			trues++
		} else {
			falses++
		}
	}
	s.TrueCount = &trues
	s.FalseCount = &falses
}

// distribution keeps the most frequent values, ties broken by value
func distribution(s *analysis.ColumnStats, freq map[string]int, order []string) {
	if len(freq) == 0 {
		return
	}
	keys := append([]string(nil), order...)
	sort.SliceStable(keys, func(i, j int) bool {
		if freq[keys[i]] != freq[keys[j]] {
			return freq[keys[i]] > freq[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > maxUniqueValues {
		keys = keys[:maxUniqueValues]
	}

	s.UniqueValues = keys
	s.ValueDistribution = make(map[string]int, len(keys))
	for _, k := range keys {
		s.ValueDistribution[k] = freq[k]
	}
}

// frequencies counts values by key and returns keys in first-seen order
func frequencies(values []interface{}) (map[string]int, []string) {
	freq := make(map[string]int)
	var order []string
	for _, v := range values {
		k := valueKey(v)
		if _, seen := freq[k]; !seen {
			order = append(order, k)
		}
		freq[k]++
	}
	return freq, order
}
