// Package viewadapter normalizes raw rows of mixed shape into a uniform field → value mapping.
//
// A raw row is one of:
//   - Flat: plain columns, passed through
//   - JSONPayload: a payload field holding an object (or its JSON text), merged over the row
//   - LegacyArray: a payload field holding a positional array, mapped through a LegacyLayout
package viewadapter

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"tablesense/domain/table"
)

// Shape tags how a raw row encodes its fields
type Shape int

const (
	ShapeFlat Shape = iota
	ShapeJSONPayload
	ShapeLegacyArray
)

func (s Shape) String() string {
	switch s {
	case ShapeJSONPayload:
		return "json_payload"
	case ShapeLegacyArray:
		return "legacy_array"
	default:
		return "flat"
	}
}

// RawRow is a row resolved to exactly one shape
type RawRow struct {
	Shape      Shape
	Fields     table.Record
	PayloadKey string
	Object     map[string]interface{}
	Array      []interface{}
}

// Config controls payload detection
type Config struct {
	PayloadKeys []string
	Layout      LegacyLayout
	IDField     string
}

// DefaultConfig returns the payload keys and layout used by the ingestion collaborator
func DefaultConfig() Config {
	return Config{
		PayloadKeys: []string{"data", "payload", "raw_data"},
		Layout:      LegacyLayoutV1(),
		IDField:     table.IDField,
	}
}

// Adapter normalizes rows. It holds only read-only configuration and is safe for concurrent use.
type Adapter struct {
	config Config
}

// New creates an adapter
func New(config Config) *Adapter {
	if config.IDField == "" {
		config.IDField = table.IDField
	}
	return &Adapter{config: config}
}

// NewDefault creates an adapter with DefaultConfig
func NewDefault() *Adapter {
	return New(DefaultConfig())
}

// Classify resolves a row to its shape. An object payload wins over an array
// payload; a payload that parses as neither leaves the row flat.
func (a *Adapter) Classify(row table.Record) RawRow {
	var arrayKey string
	var array []interface{}

	for _, key := range a.config.PayloadKeys {
		value, present := row[key]
		if !present || value == nil {
			continue
		}
		obj, arr := decodePayload(value)
		if obj != nil {
			return RawRow{Shape: ShapeJSONPayload, Fields: row, PayloadKey: key, Object: obj}
		}
		if arr != nil && array == nil {
			arrayKey, array = key, arr
		}
	}

	if array != nil {
		return RawRow{Shape: ShapeLegacyArray, Fields: row, PayloadKey: arrayKey, Array: array}
	}
	return RawRow{Shape: ShapeFlat, Fields: row}
}

// Normalize maps one raw row to a uniform record with a stable identifier.
// position is the row's offset in the table and backs the fallback identifier.
func (a *Adapter) Normalize(row table.Record, position int) table.Record {
	raw := a.Classify(row)
	out := make(table.Record, len(row)+len(raw.Object)+len(raw.Array))

	for k, v := range raw.Fields {
		if raw.Shape != ShapeFlat && k == raw.PayloadKey {
			continue
		}
		out[k] = v
	}

	switch raw.Shape {
	case ShapeJSONPayload:
		for k, v := range raw.Object {
			out[k] = v
		}
	case ShapeLegacyArray:
		for i := 0; i < a.config.Layout.Len(); i++ {
			name, _ := a.config.Layout.FieldAt(i)
			if i < len(raw.Array) {
				out[name] = raw.Array[i]
				continue
			}
			if _, exists := out[name]; !exists {
				out[name] = nil
			}
		}
	}

	if !hasID(out[a.config.IDField]) {
		out[a.config.IDField] = fmt.Sprintf("row-%d", position)
	}
	return out
}

// NormalizeAll normalizes a batch whose first row sits at offset
func (a *Adapter) NormalizeAll(rows []table.Record, offset int) []table.Record {
	out := make([]table.Record, len(rows))
	for i, row := range rows {
		out[i] = a.Normalize(row, offset+i)
	}
	return out
}

// decodePayload returns the object or array a payload value holds, or neither
func decodePayload(value interface{}) (map[string]interface{}, []interface{}) {
	switch v := value.(type) {
	case map[string]interface{}:
		return v, nil
	case []interface{}:
		return nil, v
	case []byte:
		return decodePayloadText(string(v))
	case string:
		return decodePayloadText(v)
	}
	return nil, nil
}

func decodePayloadText(s string) (map[string]interface{}, []interface{}) {
	s = strings.TrimSpace(s)
	if s == "" || !gjson.Valid(s) {
		return nil, nil
	}
	parsed := gjson.Parse(s)
	switch {
	case parsed.IsObject():
		if obj, ok := parsed.Value().(map[string]interface{}); ok {
			return obj, nil
		}
	case parsed.IsArray():
		if arr, ok := parsed.Value().([]interface{}); ok {
			return nil, arr
		}
	}
	return nil, nil
}

func hasID(v interface{}) bool {
	switch id := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(id) != ""
	}
	return true
}
