package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dnkideas/invoice-ingest/internal/docintel"
)

func TestFirstStructuredItem(t *testing.T) {
	t.Parallel()

	t.Run("first array entry wins", func(t *testing.T) {
		t.Parallel()
		items := docintel.Field{
			ValueArray: []docintel.Field{
				{ValueObject: map[string]docintel.Field{
					"Description": {Content: "Tornillos acero"},
					"Quantity":    {Content: "10"},
					"UnitPrice":   {Content: "1.500"},
					"Amount":      {Content: "15.000"},
					"Unit":        {Content: "UND"},
				}},
				{ValueObject: map[string]docintel.Field{
					"Description": {Content: "Segunda linea"},
				}},
			},
		}
		item, ok := FirstStructuredItem(items)
		require.True(t, ok)
		assert.Equal(t, "Tornillos acero", item.Description)
		assert.Equal(t, "10", item.Quantity)
		assert.Equal(t, "1.500", item.UnitPrice)
		assert.Equal(t, "15.000", item.Amount)
		assert.Equal(t, "UND", item.Unit)
	})

	t.Run("product code carries as supplier item", func(t *testing.T) {
		t.Parallel()
		items := docintel.Field{
			ValueArray: []docintel.Field{
				{ValueObject: map[string]docintel.Field{
					"ProductCode": {Content: "SKU-99"},
				}},
			},
		}
		item, ok := FirstStructuredItem(items)
		require.True(t, ok)
		assert.Equal(t, "SKU-99", item.SupplierItem)
	})

	t.Run("empty array yields nothing", func(t *testing.T) {
		t.Parallel()
		_, ok := FirstStructuredItem(docintel.Field{})
		assert.False(t, ok)
	})

	t.Run("entry without object yields nothing", func(t *testing.T) {
		t.Parallel()
		_, ok := FirstStructuredItem(docintel.Field{ValueArray: []docintel.Field{{Content: "raw"}}})
		assert.False(t, ok)
	})
}

func TestItemsFromText(t *testing.T) {
	t.Parallel()

	t.Run("row pattern recovers quantity description and amounts", func(t *testing.T) {
		t.Parallel()
		text := "2 Tornillos acero inoxidable 1.500 3.000"
		items := ItemsFromText(text)
		require.Len(t, items, 1)
		assert.Equal(t, "2", items[0].Quantity)
		assert.Equal(t, "Tornillos acero inoxidable", items[0].Description)
		assert.Equal(t, "1.500", items[0].UnitPrice)
		assert.Equal(t, "3.000", items[0].Amount)
	})

	t.Run("multiple rows", func(t *testing.T) {
		t.Parallel()
		text := "1 Servicio de mantenimiento 250.000 250.000\n3 Cajas de archivo 12.000 36.000"
		items := ItemsFromText(text)
		require.Len(t, items, 2)
		assert.Equal(t, "Cajas de archivo", items[1].Description)
		assert.Equal(t, "36.000", items[1].Amount)
	})

	t.Run("column layout recovered when row pattern misses", func(t *testing.T) {
		t.Parallel()
		text := "10\tResma papel carta\t$12.500\t$125.000"
		items := ItemsFromText(text)
		require.Len(t, items, 1)
		assert.Equal(t, "10", items[0].Quantity)
		assert.Equal(t, "Resma papel carta", items[0].Description)
		assert.Equal(t, "$12.500", items[0].UnitPrice)
		assert.Equal(t, "$125.000", items[0].Amount)
	})

	t.Run("lines without enough numeric columns are skipped", func(t *testing.T) {
		t.Parallel()
		text := "Observaciones:  entregar  en  bodega"
		assert.Empty(t, ItemsFromText(text))
	})
}
