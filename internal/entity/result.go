package entity

import "time"

// ResultError captures why a document failed, with the upstream HTTP status
// when the failure came from the document service.
type ResultError struct {
	Message    string `json:"message"`
	StatusCode int    `json:"status_code,omitempty"`
}

// ProcessingResult is the per-document outcome and the unit of idempotence
// for batch resume: a file is skipped on later runs only when a prior result
// with the same FileName succeeded.
type ProcessingResult struct {
	FileName    string         `json:"file_name"`
	FilePath    string         `json:"file_path"`
	DocType     string         `json:"doc_type"`
	Succeeded   bool           `json:"succeeded"`
	Invoice     *InvoiceRecord `json:"invoice,omitempty"`
	Order       *OrderRecord   `json:"order,omitempty"`
	Error       *ResultError   `json:"error,omitempty"`
	ProcessedAt time.Time      `json:"processed_at"`
}

// Total returns the record's total string, whichever record type is set.
func (r *ProcessingResult) Total() string {
	switch {
	case r.Invoice != nil:
		return r.Invoice.Total
	case r.Order != nil:
		return r.Order.Total
	}
	return ""
}

// Summary aggregates a batch run.
type Summary struct {
	Total       int     `json:"total"`
	Succeeded   int     `json:"succeeded"`
	Failed      int     `json:"failed"`
	Skipped     int     `json:"skipped"`
	TotalAmount float64 `json:"total_amount"`
}
