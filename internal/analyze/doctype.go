package analyze

import (
	"log/slog"

	"github.com/dnkideas/invoice-ingest/constants"
	"github.com/dnkideas/invoice-ingest/internal/docintel"
	"github.com/dnkideas/invoice-ingest/internal/entity"
)

// DocTypeConfig parameterizes the pipeline for one document family: which
// hosted model to call and which candidate field map resolves its canonical
// fields. Immutable configuration.
type DocTypeConfig struct {
	Type    constants.DocType
	ModelID string
	Fields  FieldMap
}

// InvoiceDocType processes received invoices.
var InvoiceDocType = DocTypeConfig{
	Type:    constants.DocTypeInvoice,
	ModelID: constants.DefaultModelID,
	Fields:  InvoiceFieldMap,
}

// OrderDocType processes purchase orders through the same hosted model.
var OrderDocType = DocTypeConfig{
	Type:    constants.DocTypeOrder,
	ModelID: constants.DefaultModelID,
	Fields:  OrderFieldMap,
}

// ConfigFor returns the pipeline configuration for a document type.
func ConfigFor(t constants.DocType) DocTypeConfig {
	if t == constants.DocTypeOrder {
		return OrderDocType
	}
	return InvoiceDocType
}

// buildInvoiceRecord maps a recognized document onto the canonical invoice
// shape: resolved fields cleaned, withholdings derived, first item's
// description carried as the invoice description.
func buildInvoiceRecord(m FieldMap, doc docintel.Document, rates WithholdingRates, filePath string, log *slog.Logger) *entity.InvoiceRecord {
	resolve := func(name string) string {
		return m.Resolve(doc.Fields, name).Value
	}

	subtotal := CleanAmount(resolve("subtotal"))
	iva := CleanAmount(resolve("iva"))
	wh := ComputeWithholdings(subtotal, iva, rates)

	description := ""
	if item, ok := FirstStructuredItem(doc.Fields["Items"]); ok {
		description = item.Description
	}

	return &entity.InvoiceRecord{
		InvoiceNumber: CleanAmount(resolve("numero_factura")),
		VendorName:    CleanAmount(resolve("comercializadora")),
		VendorTaxID:   CleanAmount(resolve("nit")),
		IssueDate:     normalizeIssueDate(resolve("fecha_emision"), log),
		Description:   description,
		Subtotal:      subtotal,
		Tax:           iva,
		ReteFuente:    FormatAmount(wh.ReteFuente),
		ReteIVA:       FormatAmount(wh.ReteIVA),
		ReteICA:       FormatAmount(wh.ReteICA),
		Total:         CleanAmount(resolve("total")),
		FilePath:      filePath,
	}
}

// buildOrderRecord maps a recognized document onto the canonical purchase
// order shape, flattening the first structured item (or the first item the
// text heuristics recover) into the record.
func buildOrderRecord(m FieldMap, doc docintel.Document, text string, filePath string, log *slog.Logger) *entity.OrderRecord {
	resolve := func(name string) string {
		return m.Resolve(doc.Fields, name).Value
	}
	amount := func(name string) string {
		if v := CleanAmount(resolve(name)); v != "" {
			return v
		}
		return "0"
	}

	rec := &entity.OrderRecord{
		OrderNumber:      CleanAmount(resolve("numero_orden")),
		IssueDate:        normalizeIssueDate(resolve("fecha_elaboracion"), log),
		DeliveryDeadline: CleanDate(resolve("fecha_limite_entrega")),
		BuyerName:        CleanAmount(resolve("comprador_nombre")),
		BuyerTaxID:       CleanAmount(resolve("comprador_nit")),
		BuyerAddress:     CleanAmount(resolve("comprador_direccion")),
		PaymentMethod:    CleanAmount(resolve("forma_pago")),
		PaymentTerms:     CleanAmount(resolve("terminos_pago")),
		Subtotal:         amount("subtotal"),
		Tax:              amount("iva"),
		Total:            amount("total"),
		Confidence:       doc.Confidence,
		FilePath:         filePath,
	}

	item, ok := FirstStructuredItem(doc.Fields["Items"])
	if !ok && text != "" {
		if extracted := ItemsFromText(NormalizeText(text)); len(extracted) > 0 {
			item, ok = extracted[0], true
		}
	}
	if ok {
		rec.RequestNumber = item.RequestNumber
		rec.Requester = item.Requester
		rec.SupplierItem = item.SupplierItem
		rec.ItemDescription = item.Description
		rec.Unit = item.Unit
		rec.Quantity = item.Quantity
		rec.UnitPrice = item.UnitPrice
		rec.ItemTax = item.Tax
		rec.ItemTotal = item.Amount
	}
	return rec
}

// normalizeIssueDate cleans the raw date and converts the one supported
// layout to ISO. Unconvertible dates pass through cleaned, with a warning so
// the gap is visible instead of silently widening the parser.
func normalizeIssueDate(raw string, log *slog.Logger) string {
	cleaned := CleanDate(raw)
	if cleaned == "" {
		return ""
	}
	if iso, ok := FormatDate(cleaned); ok {
		return iso
	}
	log.Warn("analyze.date.unnormalized", "value", cleaned)
	return cleaned
}
