package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleInvoiceText = `ACME COLOMBIA S.A.S
NIT 900.123.456-7
Calle 123 # 45-67, Bogota
Tel: 601 555 1234
FACTURA ELECTRONICA DE VENTA
Fecha: 15/03/2024
Cliente: Distribuciones del Sur LTDA
NIT 800.987.654-3
SUBTOTAL $ 1.000.000
IVA 190.000
TOTAL A PAGAR 1.190.000`

func TestNormalizeText(t *testing.T) {
	t.Parallel()

	t.Run("accents are stripped", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "Factura Electronica", NormalizeText("Facturá Electrónica"))
	})

	t.Run("horizontal whitespace collapses but lines survive", func(t *testing.T) {
		t.Parallel()
		got := NormalizeText("SUBTOTAL\t\t1.000\r\n  IVA   190  ")
		assert.Equal(t, "SUBTOTAL 1.000\nIVA 190", got)
	})
}

func TestExtractFallback(t *testing.T) {
	t.Parallel()

	fb := ExtractFallback(sampleInvoiceText)

	t.Run("issuer tax id taken from letterhead", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "900.123.456-7", fb.CompanyTaxID)
	})

	t.Run("issue date located", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "15/03/2024", fb.IssueDate)
	})

	t.Run("monetary captures are verbatim", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "1.000.000", fb.SubtotalRaw)
		assert.Equal(t, "190.000", fb.TaxRaw)
		assert.Equal(t, "1.190.000", fb.TotalRaw)
	})

	t.Run("phone recovered", func(t *testing.T) {
		t.Parallel()
		require.Len(t, fb.Phones, 1)
		assert.Equal(t, "601 555 1234", fb.Phones[0])
	})
}

func TestExtractFallbackEdgeCases(t *testing.T) {
	t.Parallel()

	t.Run("no letterhead keyword falls back to first tax id anywhere", func(t *testing.T) {
		t.Parallel()
		text := "Documento sin encabezado\nAlgo mas\nNIT 900.111.222-3\nNIT 800.444.555-6"
		fb := ExtractFallback(text)
		assert.Equal(t, "900.111.222-3", fb.CompanyTaxID)
	})

	t.Run("subtotal keyword variants", func(t *testing.T) {
		t.Parallel()
		fb := ExtractFallback("SUB-TOTAL: 500.000")
		assert.Equal(t, "500.000", fb.SubtotalRaw)
		fb = ExtractFallback("Sub total 250,5")
		assert.Equal(t, "250,5", fb.SubtotalRaw)
	})

	t.Run("iva requires a word boundary", func(t *testing.T) {
		t.Parallel()
		fb := ExtractFallback("VIVA LA EMPRESA 100\nIVA 19")
		assert.Equal(t, "19", fb.TaxRaw)
	})

	t.Run("subtotal keyword does not satisfy the total pattern", func(t *testing.T) {
		t.Parallel()
		fb := ExtractFallback("SUBTOTAL 100")
		assert.Equal(t, "100", fb.SubtotalRaw)
		assert.Equal(t, "", fb.TotalRaw)
	})

	t.Run("date priority prefers four digit year over short year", func(t *testing.T) {
		t.Parallel()
		fb := ExtractFallback("Vence: 01/02/24\nEmitida: 15/03/2024")
		assert.Equal(t, "15/03/2024", fb.IssueDate)
	})

	t.Run("iso date recognized", func(t *testing.T) {
		t.Parallel()
		fb := ExtractFallback("Fecha 2024-03-15")
		assert.Equal(t, "2024-03-15", fb.IssueDate)
	})

	t.Run("mixed separator amounts parse to plain numbers", func(t *testing.T) {
		t.Parallel()
		fb := ExtractFallback("NIT: 900123456-7\nSUBTOTAL 1.000,00 IVA 190,00")
		assert.Equal(t, "900123456-7", fb.CompanyTaxID)
		assert.Equal(t, "1.000,00", fb.SubtotalRaw)
		v, ok := ParseAmbiguousNumber(fb.SubtotalRaw)
		require.True(t, ok)
		assert.InDelta(t, 1000, v, 1e-9)
	})

	t.Run("empty text yields zero fields", func(t *testing.T) {
		t.Parallel()
		fb := ExtractFallback("")
		assert.Equal(t, FallbackFields{}, fb)
	})
}
