package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/dnkideas/invoice-ingest/constants"
	"github.com/dnkideas/invoice-ingest/internal/entity"
)

// Service produces XLSX bytes from a processed result set, one row per
// successful document.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

var invoiceHeaders = []string{
	"File",
	"Invoice Number",
	"Vendor",
	"Vendor Tax ID",
	"Issue Date",
	"Description",
	"Subtotal",
	"Tax",
	"Retefuente",
	"Reteiva",
	"Reteica",
	"Total",
}

var orderHeaders = []string{
	"File",
	"Order Number",
	"Buyer",
	"Buyer Tax ID",
	"Issue Date",
	"Delivery Deadline",
	"Item Description",
	"Quantity",
	"Unit Price",
	"Item Total",
	"Subtotal",
	"Tax",
	"Total",
	"Payment Terms",
}

// ExportXLSX returns a workbook for the given doc type. Failed results are
// left out; the caller keeps them in the snapshot for retries.
func (s *Service) ExportXLSX(docType constants.DocType, results []entity.ProcessingResult) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	sheet := "Invoices"
	headers := invoiceHeaders
	if docType == constants.DocTypeOrder {
		sheet = "Orders"
		headers = orderHeaders
	}
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	rows := 0
	for _, res := range results {
		if !res.Succeeded {
			continue
		}
		var values []any
		switch {
		case docType == constants.DocTypeOrder && res.Order != nil:
			o := res.Order
			values = []any{
				res.FileName, o.OrderNumber, o.BuyerName, o.BuyerTaxID,
				o.IssueDate, o.DeliveryDeadline,
				truncate(o.ItemDescription, 140), o.Quantity, o.UnitPrice,
				o.ItemTotal, o.Subtotal, o.Tax, o.Total, o.PaymentTerms,
			}
		case docType != constants.DocTypeOrder && res.Invoice != nil:
			in := res.Invoice
			values = []any{
				res.FileName, in.InvoiceNumber, in.VendorName, in.VendorTaxID,
				in.IssueDate, truncate(in.Description, 140),
				in.Subtotal, in.Tax, in.ReteFuente, in.ReteIVA, in.ReteICA,
				in.Total,
			}
		default:
			continue
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		row++
		rows++
	}

	// Widen the identity and description columns.
	_ = f.SetColWidth(sheet, "A", "A", 32)
	_ = f.SetColWidth(sheet, "B", "D", 22)
	_ = f.SetColWidth(sheet, "E", "F", 16)
	_ = f.SetColWidth(sheet, "G", "G", 40)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"doc_type", string(docType),
		"rows", rows,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
