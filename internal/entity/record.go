package entity

// InvoiceRecord is the canonical output shape for a processed invoice.
// Monetary fields keep the cleaned upstream strings; withholdings are
// computed and formatted with two decimals. Immutable after creation.
type InvoiceRecord struct {
	InvoiceNumber string `json:"invoice_number"`
	VendorName    string `json:"vendor_name"`
	VendorTaxID   string `json:"vendor_tax_id"`
	IssueDate     string `json:"issue_date"`
	Description   string `json:"description"`
	Subtotal      string `json:"subtotal"`
	Tax           string `json:"tax"`
	ReteFuente    string `json:"rete_fuente"`
	ReteIVA       string `json:"rete_iva"`
	ReteICA       string `json:"rete_ica"`
	Total         string `json:"total"`
	FilePath      string `json:"file_path"`
}

// OrderRecord is the canonical output shape for a processed purchase order.
// One representative line item is carried per document.
type OrderRecord struct {
	OrderNumber      string  `json:"order_number"`
	IssueDate        string  `json:"issue_date"`
	DeliveryDeadline string  `json:"delivery_deadline,omitempty"`
	BuyerName        string  `json:"buyer_name"`
	BuyerTaxID       string  `json:"buyer_tax_id"`
	BuyerAddress     string  `json:"buyer_address,omitempty"`
	PaymentMethod    string  `json:"payment_method,omitempty"`
	PaymentTerms     string  `json:"payment_terms,omitempty"`
	Subtotal         string  `json:"subtotal"`
	Tax              string  `json:"tax"`
	Total            string  `json:"total"`
	Confidence       float64 `json:"confidence"`

	// First line item, flattened.
	RequestNumber   string `json:"request_number,omitempty"`
	Requester       string `json:"requester,omitempty"`
	SupplierItem    string `json:"supplier_item,omitempty"`
	ItemDescription string `json:"item_description,omitempty"`
	Unit            string `json:"unit,omitempty"`
	Quantity        string `json:"quantity,omitempty"`
	UnitPrice       string `json:"unit_price,omitempty"`
	ItemTax         string `json:"item_tax,omitempty"`
	ItemTotal       string `json:"item_total,omitempty"`

	FilePath string `json:"file_path"`
}
