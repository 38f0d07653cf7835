package analyze

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FallbackFields is what the text-based extractor can recover from raw page
// text when the model returned no structured document. Monetary values are
// the verbatim captures, not normalized numbers.
type FallbackFields struct {
	CompanyTaxID string
	IssueDate    string
	SubtotalRaw  string
	TaxRaw       string
	TotalRaw     string
	Phones       []string
}

// headerLines is the region scanned for company-indicator keywords; the
// issuing company's data sits at the top of every layout seen so far.
const headerLines = 6

// companyIndicators mark a header fragment as belonging to the issuing
// company (legal-entity suffixes and common letterhead words, accent-free).
var companyIndicators = []string{"S.A.S", "S.A", "LTDA", "E.U", "EMPRESA", "COLOMBIA"}

var (
	// reTaxID captures a NIT: the keyword, a short gap, then digits with
	// optional grouping dots and a check-digit dash.
	reTaxID = regexp.MustCompile(`(?i)NIT[^0-9]{0,10}([0-9][0-9.,-]*[0-9])`)

	// Date patterns in fixed priority order. Calendar validity is not
	// checked; these only locate date-shaped tokens.
	reDateSlash    = regexp.MustCompile(`\b(\d{1,2}/\d{1,2}/\d{4})\b`)
	reDateISO      = regexp.MustCompile(`\b(\d{4}-\d{1,2}-\d{1,2})\b`)
	reDateShortYr  = regexp.MustCompile(`\b(\d{1,2}/\d{1,2}/\d{2})\b`)
	fallbackDateRe = []*regexp.Regexp{reDateSlash, reDateISO, reDateShortYr}

	// Monetary captures: keyword alternation, up to 10 non-digit filler
	// characters, then the numeric run, returned verbatim.
	reSubtotal = regexp.MustCompile(`(?i)(?:SUBTOTAL|SUB-TOTAL|SUB TOTAL)[^0-9]{0,10}([0-9][0-9.,]*)`)
	reTax      = regexp.MustCompile(`(?i)(?:^|[^A-Z])(?:IVA|I\.V\.A\.?)[^0-9]{0,10}([0-9][0-9.,]*)`)
	reNetTotal = regexp.MustCompile(`(?i)(?:VALOR TOTAL|TOTAL A PAGAR|NETO A PAGAR|(?:^|[^A-Z])TOTAL)[^0-9]{0,10}([0-9][0-9.,]*)`)

	rePhone = regexp.MustCompile(`(?i)(?:TEL(?:EFONO)?|CEL(?:ULAR)?|PHONE)[^0-9+]{0,10}(\+?[0-9][0-9 ()\-]{5,14}[0-9])`)

	reSpaceRun = regexp.MustCompile(`[ \t]+`)

	accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// NormalizeText prepares raw extracted text for pattern matching: accents
// are stripped via NFD decomposition and horizontal whitespace runs collapse
// to single spaces. Line structure is preserved for the header-region scan.
func NormalizeText(raw string) string {
	s, _, err := transform.String(accentStripper, raw)
	if err != nil {
		s = raw
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = reSpaceRun.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// ExtractFallback runs the ordered regex rules over raw page text. Pure,
// single pass, no state carried between documents.
func ExtractFallback(raw string) FallbackFields {
	text := NormalizeText(raw)
	return FallbackFields{
		CompanyTaxID: extractTaxID(text),
		IssueDate:    extractDate(text),
		SubtotalRaw:  firstCapture(reSubtotal, text),
		TaxRaw:       firstCapture(reTax, text),
		TotalRaw:     firstCapture(reNetTotal, text),
		Phones:       extractPhones(text),
	}
}

// extractTaxID prefers a NIT found in the header region when that region
// looks like the issuing company's letterhead; otherwise the first NIT
// anywhere wins, assuming the issuer's id appears before the counterpart's.
func extractTaxID(text string) string {
	lines := strings.Split(text, "\n")
	n := len(lines)
	if n > headerLines {
		n = headerLines
	}
	header := strings.ToUpper(strings.Join(lines[:n], "\n"))
	for _, kw := range companyIndicators {
		if strings.Contains(header, kw) {
			if id := firstCapture(reTaxID, header); id != "" {
				return id
			}
			break
		}
	}
	return firstCapture(reTaxID, text)
}

func extractDate(text string) string {
	for _, re := range fallbackDateRe {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}

func extractPhones(text string) []string {
	var phones []string
	for _, m := range rePhone.FindAllStringSubmatch(text, -1) {
		phones = append(phones, strings.TrimSpace(m[1]))
	}
	return phones
}

func firstCapture(re *regexp.Regexp, text string) string {
	if m := re.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}
