package constants

// DocType identifies which document family a batch run processes.
type DocType string

// Stable values (persisted in snapshot files and result rows).
const (
	DocTypeInvoice DocType = "INVOICE"
	DocTypeOrder   DocType = "PURCHASE_ORDER"
)

// DefaultModelID is the hosted document model both document families are
// analyzed with. Purchase orders reuse the invoice model; the candidate field
// maps absorb the vocabulary differences.
const DefaultModelID = "prebuilt-invoice"

// ParseDocType maps a user-supplied name to a DocType.
func ParseDocType(s string) (DocType, bool) {
	switch s {
	case "invoice", "invoices", string(DocTypeInvoice):
		return DocTypeInvoice, true
	case "order", "orders", string(DocTypeOrder):
		return DocTypeOrder, true
	}
	return "", false
}
