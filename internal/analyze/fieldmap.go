package analyze

import "github.com/dnkideas/invoice-ingest/internal/docintel"

// FieldMap maps each canonical field name to the ordered list of upstream
// field names that may carry it. Different model versions and document
// families use different vocabularies; the first present name wins.
// Static configuration, never mutated at run time.
type FieldMap map[string][]string

// ExtractedField is one resolved canonical field value.
type ExtractedField struct {
	Value      string
	Confidence float64
}

// Resolve scans the candidate names for canonical in order and returns the
// first field whose content is non-empty, with its confidence. When no
// candidate matches, the zero ExtractedField is returned (empty value,
// confidence 0).
func (m FieldMap) Resolve(fields map[string]docintel.Field, canonical string) ExtractedField {
	for _, name := range m[canonical] {
		f, ok := fields[name]
		if !ok || f.Content == "" {
			continue
		}
		return ExtractedField{Value: f.Content, Confidence: f.Confidence}
	}
	return ExtractedField{}
}

// InvoiceFieldMap covers received invoices analyzed with the invoice model.
var InvoiceFieldMap = FieldMap{
	"numero_factura":   {"InvoiceId", "InvoiceNumber"},
	"fecha_emision":    {"InvoiceDate"},
	"comercializadora": {"VendorName"},
	"nit":              {"VendorTaxId"},
	"subtotal":         {"SubTotal"},
	"iva":              {"TotalTax"},
	"total":            {"InvoiceTotal"},
}

// OrderFieldMap covers purchase orders, which come back through the same
// invoice model under a wider mix of field vocabularies.
var OrderFieldMap = FieldMap{
	"numero_orden":         {"InvoiceId", "InvoiceNumber", "PurchaseOrderNumber", "OrderNumber"},
	"fecha_elaboracion":    {"InvoiceDate", "PurchaseOrderDate", "IssueDate"},
	"fecha_limite_entrega": {"DueDate", "DeliveryDate"},
	"comprador_nombre":     {"VendorName", "BuyerName"},
	"comprador_nit":        {"CustomerTaxId", "CustomerVatId", "BuyerTaxId"},
	"comprador_direccion":  {"CustomerAddress", "BuyerAddress"},
	"forma_pago":           {"PaymentMethod", "PaymentTerms"},
	"terminos_pago":        {"PaymentTerm", "Terms"},
	"subtotal":             {"SubTotal"},
	"iva":                  {"TotalTax", "TaxAmount"},
	"total":                {"InvoiceTotal", "TotalAmount", "OrderTotal"},
}
