package analyze

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dnkideas/invoice-ingest/internal/docintel"
	"github.com/dnkideas/invoice-ingest/internal/entity"
)

// DocumentClient is the hosted OCR capability: submit a binary document,
// block until the remote operation finishes, get the recognized structure.
type DocumentClient interface {
	Analyze(ctx context.Context, modelID string, document []byte) (*docintel.AnalyzeResult, error)
}

// Analyzer runs the per-document pipeline for one document family:
// remote analysis, field resolution, normalization, item extraction, and the
// text-only fallback when the model recognized no structure.
type Analyzer struct {
	log    *slog.Logger
	client DocumentClient
	cfg    DocTypeConfig
	rates  WithholdingRates
}

func NewAnalyzer(client DocumentClient, cfg DocTypeConfig, rates WithholdingRates, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	if rates == (WithholdingRates{}) {
		rates = DefaultWithholdingRates
	}
	return &Analyzer{
		log:    logger,
		client: client,
		cfg:    cfg,
		rates:  rates,
	}
}

// Analyze processes a single file into a ProcessingResult. Failures of the
// remote call or of extraction are captured in the result, never returned;
// one input document always yields exactly one result.
func (a *Analyzer) Analyze(ctx context.Context, filePath string) entity.ProcessingResult {
	fileName := filepath.Base(filePath)
	result := entity.ProcessingResult{
		FileName:    fileName,
		FilePath:    filePath,
		DocType:     string(a.cfg.Type),
		ProcessedAt: time.Now().UTC(),
	}

	document, err := os.ReadFile(filePath)
	if err != nil {
		a.log.Error("analyze.read_failed", "file", fileName, "error", err)
		result.Error = &entity.ResultError{Message: err.Error()}
		return result
	}

	res, err := a.client.Analyze(ctx, a.cfg.ModelID, document)
	if err != nil {
		a.log.Error("analyze.service_failed", "file", fileName, "error", err)
		result.Error = &entity.ResultError{Message: err.Error()}
		var apiErr *docintel.APIError
		if errors.As(err, &apiErr) {
			result.Error.StatusCode = apiErr.StatusCode
		}
		return result
	}

	if len(res.Documents) == 0 {
		text := res.Text()
		if text == "" {
			a.log.Warn("analyze.no_structure", "file", fileName)
			result.Error = &entity.ResultError{Message: "no document structure detected"}
			return result
		}
		// Generic text came back even though the specialized model found
		// nothing; recover what the regex rules can.
		a.log.Warn("analyze.fallback_text", "file", fileName, "text_bytes", len(text))
		a.buildFromFallback(&result, text, filePath)
		result.Succeeded = true
		return result
	}

	doc := res.Documents[0]
	switch {
	case a.cfg.Type == OrderDocType.Type:
		result.Order = buildOrderRecord(a.cfg.Fields, doc, res.Text(), filePath, a.log)
		a.log.Info("analyze.order.ok",
			"file", fileName,
			"order", result.Order.OrderNumber,
			"buyer", result.Order.BuyerName,
			"total", result.Order.Total,
			"confidence", doc.Confidence)
	default:
		result.Invoice = buildInvoiceRecord(a.cfg.Fields, doc, a.rates, filePath, a.log)
		a.log.Info("analyze.invoice.ok",
			"file", fileName,
			"invoice", result.Invoice.InvoiceNumber,
			"vendor", result.Invoice.VendorName,
			"total", result.Invoice.Total)
	}
	result.Succeeded = true
	return result
}

// buildFromFallback fills the result from the text-based extractor. The
// record is partial: whatever the ordered patterns recovered, withholdings
// derived from the ambiguous-number parses of the raw captures.
func (a *Analyzer) buildFromFallback(result *entity.ProcessingResult, text, filePath string) {
	fb := ExtractFallback(text)

	issueDate := fb.IssueDate
	if iso, ok := FormatDate(issueDate); ok {
		issueDate = iso
	}

	wh := a.fallbackWithholdings(fb)

	switch a.cfg.Type {
	case OrderDocType.Type:
		rec := &entity.OrderRecord{
			BuyerTaxID: fb.CompanyTaxID,
			IssueDate:  issueDate,
			Subtotal:   fb.SubtotalRaw,
			Tax:        fb.TaxRaw,
			Total:      fb.TotalRaw,
			FilePath:   filePath,
		}
		if items := ItemsFromText(NormalizeText(text)); len(items) > 0 {
			rec.ItemDescription = items[0].Description
			rec.Quantity = items[0].Quantity
			rec.UnitPrice = items[0].UnitPrice
			rec.ItemTotal = items[0].Amount
		}
		result.Order = rec
	default:
		result.Invoice = &entity.InvoiceRecord{
			VendorTaxID: fb.CompanyTaxID,
			IssueDate:   issueDate,
			Subtotal:    fb.SubtotalRaw,
			Tax:         fb.TaxRaw,
			ReteFuente:  FormatAmount(wh.ReteFuente),
			ReteIVA:     FormatAmount(wh.ReteIVA),
			ReteICA:     FormatAmount(wh.ReteICA),
			Total:       fb.TotalRaw,
			FilePath:    filePath,
		}
	}
}

func (a *Analyzer) fallbackWithholdings(fb FallbackFields) Withholdings {
	sub, _ := ParseAmbiguousNumber(fb.SubtotalRaw)
	tax, _ := ParseAmbiguousNumber(fb.TaxRaw)
	return Withholdings{
		ReteFuente: round2(sub * a.rates.Source),
		ReteIVA:    round2(tax * a.rates.VAT),
		ReteICA:    round2(sub * a.rates.ICA),
	}
}
