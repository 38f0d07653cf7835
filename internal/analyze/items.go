package analyze

import (
	"regexp"
	"strings"

	"github.com/dnkideas/invoice-ingest/internal/docintel"
)

// LineItem is one item-level row. The structured path fills every property
// the model recognized; the text heuristics only recover quantity,
// description and the two amounts.
type LineItem struct {
	RequestNumber string
	Requester     string
	SupplierItem  string
	Description   string
	Unit          string
	Quantity      string
	UnitPrice     string
	Tax           string
	Amount        string
}

// FirstStructuredItem extracts the first entry of a structured Items array.
// Multi-line documents are deliberately reduced to one representative line;
// downstream storage models a single item per document.
func FirstStructuredItem(items docintel.Field) (LineItem, bool) {
	if len(items.ValueArray) == 0 {
		return LineItem{}, false
	}
	props := items.ValueArray[0].ValueObject
	if props == nil {
		return LineItem{}, false
	}
	prop := func(name string) string {
		return props[name].Content
	}
	supplierItem := prop("ProductCode")
	if supplierItem == "" {
		supplierItem = prop("SupplierItem")
	}
	return LineItem{
		RequestNumber: prop("RequestNumber"),
		Requester:     prop("Requester"),
		SupplierItem:  supplierItem,
		Description:   CleanAmount(prop("Description")),
		Unit:          prop("Unit"),
		Quantity:      prop("Quantity"),
		UnitPrice:     prop("UnitPrice"),
		Tax:           prop("Tax"),
		Amount:        prop("Amount"),
	}, true
}

// reItemRow matches one item line laid out as
// <quantity> <description 5-100 chars> <amount> <amount>.
var reItemRow = regexp.MustCompile(`(?m)^\s*(\d+(?:[.,]\d+)?)\s+(.{5,100}?)\s+(\d[\d.,]*)\s+(\d[\d.,]*)\s*$`)

// reColumnSplit separates columns on a tab or a run of two or more spaces.
var reColumnSplit = regexp.MustCompile(`\t| {2,}`)

var reNumericCell = regexp.MustCompile(`^\$?\d[\d.,]*$`)

// ItemsFromText recovers item rows from raw page text when no structured
// item array came back. The row pattern is tried first; when it matches
// nothing, lines are split on whitespace runs and kept when at least three
// columns exist and at least two look numeric, taking the quantity from the
// first column only when it is purely numeric.
func ItemsFromText(text string) []LineItem {
	if matches := reItemRow.FindAllStringSubmatch(text, -1); len(matches) > 0 {
		items := make([]LineItem, 0, len(matches))
		for _, m := range matches {
			items = append(items, LineItem{
				Quantity:    m[1],
				Description: strings.TrimSpace(m[2]),
				UnitPrice:   m[3],
				Amount:      m[4],
			})
		}
		return items
	}
	return itemsFromColumns(text)
}

func itemsFromColumns(text string) []LineItem {
	var items []LineItem
	for _, line := range strings.Split(text, "\n") {
		cols := splitColumns(line)
		if len(cols) < 3 {
			continue
		}
		numeric := 0
		for _, c := range cols {
			if reNumericCell.MatchString(c) {
				numeric++
			}
		}
		if numeric < 2 {
			continue
		}

		item := LineItem{}
		rest := cols
		if isDigits(cols[0]) {
			item.Quantity = cols[0]
			rest = cols[1:]
		}
		var desc []string
		var amounts []string
		for _, c := range rest {
			if reNumericCell.MatchString(c) {
				amounts = append(amounts, c)
			} else {
				desc = append(desc, c)
			}
		}
		item.Description = strings.Join(desc, " ")
		if len(amounts) > 0 {
			item.UnitPrice = amounts[0]
		}
		if len(amounts) > 1 {
			item.Amount = amounts[len(amounts)-1]
		}
		items = append(items, item)
	}
	return items
}

func splitColumns(line string) []string {
	var cols []string
	for _, c := range reColumnSplit.Split(strings.TrimSpace(line), -1) {
		if c = strings.TrimSpace(c); c != "" {
			cols = append(cols, c)
		}
	}
	return cols
}
