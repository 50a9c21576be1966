package viewadapter

// LegacyLayout maps positional payload indexes to field names. It is
// immutable once built; accessors hand out copies.
type LegacyLayout struct {
	version string
	fields  []string
}

// NewLegacyLayout builds a layout from fields in positional order
func NewLegacyLayout(version string, fields ...string) LegacyLayout {
	return LegacyLayout{version: version, fields: append([]string(nil), fields...)}
}

// legacyV1 is the positional format written by the original import
// pipeline. Indexes are frozen; new fields go into a new version.
var legacyV1 = NewLegacyLayout("v1",
	"id",
	"created_at",
	"full_name",
	"phone",
	"email",
	"status",
	"source",
	"campaign",
	"agent",
	"branch",
	"amount",
	"notes",
)

// LegacyLayoutV1 returns the v1 positional layout
func LegacyLayoutV1() LegacyLayout { return legacyV1 }

// Version names the layout
func (l LegacyLayout) Version() string { return l.version }

// Len is the number of positional fields
func (l LegacyLayout) Len() int { return len(l.fields) }

// Fields returns a copy of the field names in positional order
func (l LegacyLayout) Fields() []string { return append([]string(nil), l.fields...) }

// FieldAt returns the field name for a positional index
func (l LegacyLayout) FieldAt(i int) (string, bool) {
	if i < 0 || i >= len(l.fields) {
		return "", false
	}
	return l.fields[i], true
}
