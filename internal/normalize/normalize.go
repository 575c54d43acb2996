// Package normalize strips bank-specific noise from transaction
// descriptions and extracts candidate vendor tokens.
package normalize

import (
	"regexp"
	"sort"
	"strings"
)

// knownPrefixes are processor artifacts that banks prepend to descriptions.
// They are tried longest-first so compound prefixes strip whole, never
// partially.
var knownPrefixes = []string{
	"PURCHASE AUTHORIZED ON",
	"DEBIT CARD PURCHASE",
	"RECURRING PAYMENT TO",
	"RECURRING PAYMENT",
	"ELECTRONIC PAYMENT",
	"CHECKCARD PURCHASE",
	"POS DEBIT PURCHASE",
	"ONLINE PAYMENT TO",
	"DEBIT PURCHASE",
	"CARD PURCHASE",
	"WEB PAYMENT TO",
	"POS PURCHASE",
	"ACH PAYMENT",
	"POS DEBIT",
	"CHECKCARD",
	"ACH DEBIT",
	"PAYPAL *",
	"PAYPAL*",
	"TST*",
	"TST *",
	"SQ *",
	"SQ*",
	"POS",
	"ACH",
}

var stateCodes = map[string]bool{
	"AL": true, "AK": true, "AZ": true, "AR": true, "CA": true, "CO": true,
	"CT": true, "DE": true, "FL": true, "GA": true, "HI": true, "ID": true,
	"IL": true, "IN": true, "IA": true, "KS": true, "KY": true, "LA": true,
	"ME": true, "MD": true, "MA": true, "MI": true, "MN": true, "MS": true,
	"MO": true, "MT": true, "NE": true, "NV": true, "NH": true, "NJ": true,
	"NM": true, "NY": true, "NC": true, "ND": true, "OH": true, "OK": true,
	"OR": true, "PA": true, "RI": true, "SC": true, "SD": true, "TN": true,
	"TX": true, "UT": true, "VT": true, "VA": true, "WA": true, "WV": true,
	"WI": true, "WY": true, "DC": true,
}

var countryTokens = map[string]bool{
	"US": true, "USA": true, "CAN": true, "GBR": true,
}

var (
	zipPattern      = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	digitRunPattern = regexp.MustCompile(`^\d+$`)
	storeNumPattern = regexp.MustCompile(`^[#*]\d+$`)
	refCodePattern  = regexp.MustCompile(`^X{2,}\d+$`)
)

func init() {
	// Longest-prefix-first so "POS DEBIT" wins over "POS".
	sort.Slice(knownPrefixes, func(i, j int) bool {
		return len(knownPrefixes[i]) > len(knownPrefixes[j])
	})
}

// Clean upper-cases and trims a raw description, strips known bank
// prefixes, strips trailing location and reference noise, and collapses
// whitespace. Clean is pure and idempotent: Clean(Clean(x)) == Clean(x).
func Clean(description string) string {
	s := strings.ToUpper(strings.TrimSpace(description))
	s = collapseWhitespace(s)

	s = stripPrefixes(s)
	s = stripSuffixes(s)

	return collapseWhitespace(s)
}

// ExtractVendor returns the first one to three whitespace-delimited tokens
// of the cleaned description, the candidate vendor name.
func ExtractVendor(description string) string {
	cleaned := Clean(description)
	if cleaned == "" {
		return ""
	}

	tokens := strings.Fields(cleaned)
	if len(tokens) > 3 {
		tokens = tokens[:3]
	}
	return strings.Join(tokens, " ")
}

// stripPrefixes removes leading processor artifacts. Prefixes are re-checked
// after each strip so stacked artifacts cannot survive a single Clean call;
// that is what keeps Clean idempotent.
func stripPrefixes(s string) string {
	for {
		stripped := false
		for _, prefix := range knownPrefixes {
			if !strings.HasPrefix(s, prefix) {
				continue
			}
			rest := strings.TrimSpace(s[len(prefix):])
			// A bare prefix with nothing after it is the whole
			// description; leave it alone.
			if rest == "" {
				return s
			}
			s = rest
			stripped = true
			break
		}
		if !stripped {
			return s
		}
	}
}

// stripSuffixes removes trailing location and reference tokens: two-letter
// state codes, ZIP codes, bare digit runs, store numbers, card reference
// codes, and country tokens.
func stripSuffixes(s string) string {
	tokens := strings.Fields(s)
	for len(tokens) > 1 {
		last := tokens[len(tokens)-1]
		if !isNoiseToken(last) {
			break
		}
		tokens = tokens[:len(tokens)-1]
	}
	return strings.Join(tokens, " ")
}

func isNoiseToken(token string) bool {
	if stateCodes[token] || countryTokens[token] {
		return true
	}
	return zipPattern.MatchString(token) ||
		digitRunPattern.MatchString(token) ||
		storeNumPattern.MatchString(token) ||
		refCodePattern.MatchString(token)
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
