package inference

import (
	"regexp"
	"strings"

	"tablesense/domain/analysis"
)

// categoryRule maps a set of column-name patterns to a category
type categoryRule struct {
	category analysis.Category
	patterns []*regexp.Regexp
}

// token matches a word bounded by the start/end of the name or a separator
func token(words string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(^|_)(` + words + `)(_|$)`)
}

// substr matches anywhere in the name
func substr(words string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(` + words + `)`)
}

// categoryRules is evaluated top to bottom; the first rule with a matching
// pattern wins. Hebrew terms are matched as substrings since Hebrew column
// names rarely carry separators.
var categoryRules = []categoryRule{
	{analysis.CategoryFinancial, []*regexp.Regexp{
		substr(`amount|price|cost|revenue|commission|salary|payment|budget|balance|profit|income|invoice|discount|payout|bonus`),
		token(`fee|fees|total|sum|value|paid|tax|vat|deal_size|mrr|arr`),
		substr(`סכום|מחיר|עמלה|תשלום|הכנסה|שכר|עלות|מע"מ|יתרה|רווח`),
	}},
	{analysis.CategoryDates, []*regexp.Regexp{
		substr(`date|time|created|updated|modified|birthday|deadline|expir`),
		token(`at|on|month|year|day|week|quarter|period|dob`),
		substr(`תאריך|חודש|שנה|זמן|יום`),
	}},
	{analysis.CategoryPeople, []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(full_|first_|last_|display_|contact_)?name$`),
		substr(`agent|owner|customer|client|employee|manager|assignee|salesperson|person|lead_name`),
		token(`rep|user|username|member|staff|author`),
		substr(`שם|סוכן|לקוח|נציג|עובד|מנהל|איש`),
	}},
	{analysis.CategoryStatus, []*regexp.Regexp{
		substr(`status|stage|state|phase|priority|source|campaign|channel|outcome|result`),
		token(`type|kind|level|tier|active|enabled|stage_name`),
		substr(`סטטוס|שלב|מצב|סוג|מקור|קמפיין`),
	}},
	{analysis.CategoryCompanies, []*regexp.Regexp{
		substr(`company|organization|organisation|business|branch|provider|vendor|supplier|employer|brand|insurer`),
		token(`org|firm|account|agency`),
		substr(`חברה|ארגון|סניף|ספק|מבטח`),
	}},
	{analysis.CategoryContact, []*regexp.Regexp{
		substr(`email|phone|mobile|address|street|postal|whatsapp|website|linkedin`),
		token(`mail|tel|fax|city|zip|url|country`),
		substr(`טלפון|נייד|אימייל|מייל|כתובת|עיר|רחוב`),
	}},
	{analysis.CategoryIdentifiers, []*regexp.Regexp{
		token(`id|uid|code|no|num|number|key|ref|sku|serial|ssn`),
		substr(`reference|identifier|passport|license`),
		substr(`מספר|קוד|מזהה|ת"ז|תעודת`),
	}},
	{analysis.CategorySystem, []*regexp.Regexp{
		regexp.MustCompile(`^_`),
		substr(`uuid|hash|version|deleted|internal|metadata|payload|checksum|import_batch|tenant|sync`),
		token(`raw|json|etag|rev|row`),
	}},
}

// DetectCategory returns the category of the first rule matching the column
// name, or CategoryOther.
func DetectCategory(name string) analysis.Category {
	normalized := normalizeName(name)
	if normalized == "" {
		return analysis.CategoryOther
	}
	for _, rule := range categoryRules {
		for _, p := range rule.patterns {
			if p.MatchString(normalized) {
				return rule.category
			}
		}
	}
	return analysis.CategoryOther
}

// normalizeName lowers camelCase and separators into snake_case so token
// patterns see word boundaries.
func normalizeName(name string) string {
	var b strings.Builder
	runes := []rune(strings.TrimSpace(name))
	for i, r := range runes {
		switch {
		case r == ' ' || r == '-' || r == '.':
			b.WriteByte('_')
		case r >= 'A' && r <= 'Z':
			if i > 0 && isLowerOrDigit(runes[i-1]) {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isLowerOrDigit(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}
