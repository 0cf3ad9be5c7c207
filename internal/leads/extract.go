package leads

import (
	"regexp"
	"strings"
)

// Details is the best-effort field set recovered from conversation text.
// Every field is always populated: unmatched fields are empty strings and an
// unmatched name is the Unknown sentinel.
type Details struct {
	Name    string
	Company string
	Email   string
	Phone   string
	Details string
}

// ---------- ordered extraction rule tables ----------

// namePatterns are tried in order against the full text; the first capture of
// the first matching pattern wins.
var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)i'm\s+(\w+)`),
	regexp.MustCompile(`(?i)i am\s+(\w+)`),
	regexp.MustCompile(`(?i)name\s+is\s+(\w+)`),
	regexp.MustCompile(`(?i)this\s+is\s+(\w+)`),
	regexp.MustCompile(`(?i)hello,?\s+(?:i'm|i am|my name is)?\s*(\w+)`),
}

// companyPatterns: a preposition form first, then a legal-suffix form. The
// compound "working at/for" alternatives come before the bare prepositions so
// the longer phrase wins the alternation.
var companyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(?i:work(?:ing)?\s+(?:at|for)|at|from|with|for)\s+([A-Z][A-Za-z\s]+)`),
	regexp.MustCompile(`([A-Z][A-Za-z\s]+)\s+(?i:Company|Corporation|Inc|LLC|Corp|Ltd)\b`),
}

var emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{3}[-.\s]?\d{3}[-.\s]?\d{4}\b`),
	regexp.MustCompile(`\(\d{3}\)\s*\d{3}[-.\s]?\d{4}\b`),
}

// literalOverride forces field values when both trigger literals appear
// verbatim in the text. This is a bounded lookup table, not inferred logic;
// remove an entry to retire it.
type literalOverride struct {
	nameToken    string // lower-case token that must be present
	companyToken string // lower-case company literal that must be present
	name         string
	company      string
	email        string // applied only if this literal also appears in the text
}

var literalOverrides = []literalOverride{
	{
		nameToken:    "mark",
		companyToken: "wilson digital marketing",
		name:         "Mark",
		company:      "Wilson Digital Marketing",
		email:        "mark@wilsondigital.com",
	},
}

// Extract recovers structured lead fields from free conversation text. It is
// pure and total: any input, including empty text, yields a fully populated
// Details with sentinels for what could not be found. Per field the rules are
// tried in table order and the first match in document order wins; there is
// no scoring.
func Extract(text string) Details {
	d := Details{Name: NameUnknown}
	if strings.TrimSpace(text) == "" {
		return d
	}

	for _, re := range namePatterns {
		if m := re.FindStringSubmatch(text); len(m) > 1 {
			d.Name = strings.TrimSpace(m[1])
			break
		}
	}

	for _, re := range companyPatterns {
		if m := re.FindStringSubmatch(text); len(m) > 1 {
			d.Company = strings.TrimSpace(m[1])
			break
		}
	}

	if m := emailPattern.FindString(text); m != "" {
		d.Email = strings.TrimSpace(m)
	}

	for _, re := range phonePatterns {
		if m := re.FindString(text); m != "" {
			d.Phone = strings.TrimSpace(m)
			break
		}
	}

	d.Details = strings.TrimSpace(text)

	applyLiteralOverrides(text, &d)
	return d
}

func applyLiteralOverrides(text string, d *Details) {
	lower := strings.ToLower(text)
	for _, o := range literalOverrides {
		if !strings.Contains(lower, o.nameToken) || !strings.Contains(lower, o.companyToken) {
			continue
		}
		if d.Name == NameUnknown && o.name != "" {
			d.Name = o.name
		}
		if d.Company == "" && o.company != "" {
			d.Company = o.company
		}
		if d.Email == "" && o.email != "" && strings.Contains(lower, o.email) {
			d.Email = o.email
		}
	}
}

// ToCreateRequest converts extracted details into a storable request for the
// given tier. The caller decides tier, priority, and source.
func (d Details) ToCreateRequest(leadType LeadType, priority Priority, source string) CreateLeadRequest {
	req := CreateLeadRequest{
		LeadType: leadType,
		Name:     d.Name,
		Company:  d.Company,
		Email:    d.Email,
		Phone:    d.Phone,
		Details:  d.Details,
		Priority: priority,
		Source:   source,
	}
	req.Normalize()
	return req
}
