package inference

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// numberNoise is stripped before numeric parsing: currency symbols, percent
// signs, thousands separators and whitespace (including no-break spaces).
var numberNoise = strings.NewReplacer(
	"₪", "", "$", "", "€", "", "£", "", "¥", "",
	"%", "", ",", "",
	" ", "", "\u00a0", "", "\u202f", "",
)

// ParseNumber converts a numeric value or a formatted numeric string such as
// "₪1,234.50", "12%" or "(300)" into a float64.
func ParseNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		return finite(n)
	case float32:
		return finite(float64(n))
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return finite(f)
	case []byte:
		return parseNumericString(string(n))
	case string:
		return parseNumericString(n)
	}
	return 0, false
}

func parseNumericString(s string) (float64, bool) {
	clean := strings.TrimSpace(s)
	negative := false
	if strings.HasPrefix(clean, "(") && strings.HasSuffix(clean, ")") {
		clean = clean[1 : len(clean)-1]
		negative = true
	}
	clean = numberNoise.Replace(clean)
	if clean == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, false
	}
	if negative {
		f = -f
	}
	return finite(f)
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseBool accepts booleans and the literals true/false/0/1
func ParseBool(v interface{}) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "1":
			return true, true
		case "false", "0":
			return false, true
		}
		return false, false
	}
	if f, ok := ParseNumber(v); ok {
		switch f {
		case 1:
			return true, true
		case 0:
			return false, true
		}
	}
	return false, false
}

var (
	isoDatePattern     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}([T ]\d{2}:\d{2}(:\d{2}(\.\d+)?)?(Z|[+-]\d{2}:?\d{2})?)?$`)
	numericDatePattern = regexp.MustCompile(`^\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4}$`)
)

// dateLayouts are tried in order; day-first variants follow the ISO forms
// since the numeric short forms in the data are predominantly day-first.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"02.01.2006",
	"02-01-2006",
	"2006/01/02",
	"02/01/06",
	"Jan 2, 2006",
	"2 Jan 2006",
	"02-Jan-2006",
}

// ParseDate parses time values and date-like strings. Bare numbers are never
// treated as dates.
func ParseDate(v interface{}) (time.Time, bool) {
	switch d := v.(type) {
	case time.Time:
		return d, !d.IsZero()
	case *time.Time:
		if d == nil {
			return time.Time{}, false
		}
		return *d, !d.IsZero()
	case []byte:
		return parseDateString(string(d))
	case string:
		return parseDateString(d)
	}
	return time.Time{}, false
}

func parseDateString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 6 {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// looksLikeDate accepts the calendar-like shapes even when the value does not
// parse, e.g. "2024-02-30".
func looksLikeDate(v interface{}) bool {
	if _, ok := ParseDate(v); ok {
		return true
	}
	s, ok := v.(string)
	if !ok {
		return false
	}
	s = strings.TrimSpace(s)
	return isoDatePattern.MatchString(s) || numericDatePattern.MatchString(s)
}

// isJSONValue reports nested objects/arrays or strings holding a JSON object or array
func isJSONValue(v interface{}) bool {
	switch j := v.(type) {
	case map[string]interface{}, []interface{}:
		return true
	case []byte:
		return isJSONString(string(j))
	case string:
		return isJSONString(j)
	}
	return false
}

func isJSONString(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || (s[0] != '{' && s[0] != '[') {
		return false
	}
	return gjson.Valid(s)
}

// isNull treats nil and blank strings as missing
func isNull(v interface{}) bool {
	switch s := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(s) == ""
	case []byte:
		return len(strings.TrimSpace(string(s))) == 0
	}
	return false
}

// valueKey is the identity used for uniqueness and distributions
func valueKey(v interface{}) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case []byte:
		return strings.TrimSpace(string(s))
	case time.Time:
		return s.Format(time.RFC3339)
	case map[string]interface{}, []interface{}:
		if b, err := json.Marshal(s); err == nil {
			return string(b)
		}
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}
