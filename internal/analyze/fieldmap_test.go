package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dnkideas/invoice-ingest/internal/docintel"
)

func TestFieldMapResolve(t *testing.T) {
	t.Parallel()

	m := FieldMap{
		"numero_factura": {"InvoiceId", "InvoiceNumber"},
		"total":          {"InvoiceTotal"},
	}

	t.Run("first present candidate wins", func(t *testing.T) {
		t.Parallel()
		fields := map[string]docintel.Field{
			"InvoiceId":     {Content: "FE-123", Confidence: 0.97},
			"InvoiceNumber": {Content: "OTHER", Confidence: 0.5},
		}
		got := m.Resolve(fields, "numero_factura")
		assert.Equal(t, "FE-123", got.Value)
		assert.InDelta(t, 0.97, got.Confidence, 1e-9)
	})

	t.Run("empty content falls through to next candidate", func(t *testing.T) {
		t.Parallel()
		fields := map[string]docintel.Field{
			"InvoiceId":     {Content: ""},
			"InvoiceNumber": {Content: "FE-456", Confidence: 0.8},
		}
		got := m.Resolve(fields, "numero_factura")
		assert.Equal(t, "FE-456", got.Value)
	})

	t.Run("no candidate present yields zero value", func(t *testing.T) {
		t.Parallel()
		got := m.Resolve(map[string]docintel.Field{}, "numero_factura")
		assert.Equal(t, "", got.Value)
		assert.Zero(t, got.Confidence)
	})

	t.Run("unknown canonical name yields zero value", func(t *testing.T) {
		t.Parallel()
		fields := map[string]docintel.Field{"InvoiceId": {Content: "x"}}
		got := m.Resolve(fields, "no_such_field")
		assert.Equal(t, "", got.Value)
	})
}

func TestOrderFieldMapVocabulary(t *testing.T) {
	t.Parallel()

	t.Run("order number falls back through shared invoice vocabulary", func(t *testing.T) {
		t.Parallel()
		fields := map[string]docintel.Field{
			"PurchaseOrderNumber": {Content: "OC-001"},
		}
		got := OrderFieldMap.Resolve(fields, "numero_orden")
		assert.Equal(t, "OC-001", got.Value)
	})

	t.Run("invoice id outranks order specific names", func(t *testing.T) {
		t.Parallel()
		fields := map[string]docintel.Field{
			"InvoiceId":           {Content: "OC-FROM-MODEL"},
			"PurchaseOrderNumber": {Content: "OC-001"},
		}
		got := OrderFieldMap.Resolve(fields, "numero_orden")
		assert.Equal(t, "OC-FROM-MODEL", got.Value)
	})
}
