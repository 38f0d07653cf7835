package analyze

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	reCurrencySymbols = regexp.MustCompile(`[$]`)
	reLineBreaks      = regexp.MustCompile(`\r?\n`)
	reWhitespaceRun   = regexp.MustCompile(`\s+`)
)

// CleanAmount strips currency symbols and embedded line breaks from a
// monetary string and collapses whitespace. The separator convention is left
// untouched; cleaned values are persisted as display strings.
func CleanAmount(raw string) string {
	if raw == "" {
		return ""
	}
	s := reCurrencySymbols.ReplaceAllString(raw, "")
	s = reLineBreaks.ReplaceAllString(s, "")
	s = reWhitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// CleanDate strips line breaks and collapses whitespace in a date string.
// No reparsing happens here; FormatDate handles the one supported layout.
func CleanDate(raw string) string {
	if raw == "" {
		return ""
	}
	s := reLineBreaks.ReplaceAllString(raw, "")
	s = reWhitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// FormatDate converts DD/MM/YYYY-shaped dates to YYYY-MM-DD for storage.
// Any other shape (already ISO, two-digit years, no slashes) returns ok=false
// and the caller keeps the cleaned value unconverted. Deliberately narrow:
// the upstream emits one layout, and guessing wider conventions risks
// swapping day and month.
func FormatDate(raw string) (string, bool) {
	if !strings.Contains(raw, "/") {
		return "", false
	}
	parts := strings.Split(raw, "/")
	if len(parts) != 3 {
		return "", false
	}
	day := strings.TrimSpace(reLineBreaks.ReplaceAllString(parts[0], ""))
	month := strings.TrimSpace(reLineBreaks.ReplaceAllString(parts[1], ""))
	year := strings.TrimSpace(reLineBreaks.ReplaceAllString(parts[2], ""))
	if day == "" || month == "" || len(year) != 4 {
		return "", false
	}
	for _, p := range []string{day, month, year} {
		if !isDigits(p) {
			return "", false
		}
	}
	if len(day) == 1 {
		day = "0" + day
	}
	if len(month) == 1 {
		month = "0" + month
	}
	return fmt.Sprintf("%s-%s-%s", year, month, day), true
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// ParseAmbiguousNumber disambiguates thousand/decimal separators:
// with both '.' and ',' present, '.' groups thousands and ',' marks decimals
// (Latin convention); multiple separators of one kind alone are all thousands
// separators; a single comma alone is the decimal point; a single dot alone
// keeps its ParseFloat meaning. ok=false means unparseable; callers must not
// coerce that to zero.
func ParseAmbiguousNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	dots := strings.Count(s, ".")
	commas := strings.Count(s, ",")
	switch {
	case dots > 0 && commas > 0:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case commas > 1:
		s = strings.ReplaceAll(s, ",", "")
	case commas == 1:
		s = strings.Replace(s, ",", ".", 1)
	case dots > 1:
		s = strings.ReplaceAll(s, ".", "")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// WithholdingRates is the statutory rate table applied to normalized
// amounts. ICA is jurisdiction-specific and stays zero until configured.
type WithholdingRates struct {
	Source float64 // fraction of subtotal
	VAT    float64 // fraction of tax amount
	ICA    float64 // fraction of subtotal
}

// DefaultWithholdingRates matches the rates the accounting flow applies
// today: 2.5% retefuente, 15% reteiva, no reteica.
var DefaultWithholdingRates = WithholdingRates{Source: 0.025, VAT: 0.15}

// Withholdings holds the computed statutory deductions, rounded to cents.
type Withholdings struct {
	ReteFuente float64
	ReteIVA    float64
	ReteICA    float64
}

// ComputeWithholdings derives the deductions from subtotal and tax strings.
// Inputs are parsed leniently (thousands commas stripped, malformed values
// collapse to 0) because a missing base simply means a zero withholding.
func ComputeWithholdings(subtotal, tax string, rates WithholdingRates) Withholdings {
	sub := lenientFloat(subtotal)
	iva := lenientFloat(tax)
	return Withholdings{
		ReteFuente: round2(sub * rates.Source),
		ReteIVA:    round2(iva * rates.VAT),
		ReteICA:    round2(sub * rates.ICA),
	}
}

// FormatAmount renders a computed amount the way withholdings are stored,
// with exactly two decimals.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func lenientFloat(raw string) float64 {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
