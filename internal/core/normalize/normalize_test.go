package normalize

import (
	"testing"

	"audit-service/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"1.234,56", 1234.56},
		{" 10,5 ", 10.5},
		{"1 000,00", 1000},
		{"0", 0},
		{"", 0},
		{"abc", 0},
		{"nan", 0},
		{"Inf", 0},
		{"-5,00", 0},
		{"12", 12},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.InDelta(t, tc.want, ParseNumber(tc.in), 1e-9)
		})
	}
}

func TestNormalizeCFOP(t *testing.T) {
	assert.Equal(t, "6403", NormalizeCFOP("6.403"))
	assert.Equal(t, "5102", NormalizeCFOP("  5102 "))
	assert.Equal(t, domain.NoCode, NormalizeCFOP(""))
	assert.Equal(t, domain.NoCode, NormalizeCFOP("nan"))
	assert.Equal(t, domain.NoCode, NormalizeCFOP("None"))
}

func TestNormalizeCFOP_Idempotente(t *testing.T) {
	for _, raw := range []string{"6403", "6.403", "", " 1.556 "} {
		once := NormalizeCFOP(raw)
		assert.Equal(t, once, NormalizeCFOP(once), raw)
	}
}

func TestNormalizeCST(t *testing.T) {
	assert.Equal(t, "60", NormalizeCST("060"))
	assert.Equal(t, "00", NormalizeCST("000"))
	assert.Equal(t, "10", NormalizeCST("10"))
	assert.Equal(t, "05", NormalizeCST("5"))
	assert.Equal(t, "00", NormalizeCST(""))
	assert.Equal(t, "90", NormalizeCST(" 290 "))
}

func TestNormalizeUF(t *testing.T) {
	assert.Equal(t, "BA", NormalizeUF(" ba "))
	assert.Equal(t, "SAOPAULO", NormalizeUF("São Paulo"))
	assert.Equal(t, "AMAPA", NormalizeUF("Amapá"))
}

func TestFromOutbound(t *testing.T) {
	cells := make([]string, len(domain.OutboundColumns))
	cells[0] = "123"
	cells[3] = "ba"
	cells[6] = "6.403"
	cells[13] = "1.000,00"
	cells[18] = "1.100,00"
	cells[19] = "010"
	cells[20] = "1.000,00"
	cells[21] = "12,00"
	cells[22] = "120,00"
	cells[24] = "x"

	line := FromOutbound(domain.NewOutboundRecord(cells), 7)

	assert.Equal(t, domain.Outbound, line.Direction)
	assert.Equal(t, 7, line.Row)
	assert.Equal(t, "123", line.DocumentNumber)
	assert.Equal(t, "BA", line.DestinationUF)
	assert.Equal(t, "6403", line.CFOP)
	assert.Equal(t, "10", line.CST)
	assert.Equal(t, "010", line.CSTRaw)
	assert.InDelta(t, 1000.0, line.ItemValue, 1e-9)
	assert.InDelta(t, 1100.0, line.AccountingValue, 1e-9)
	assert.InDelta(t, 12.0, line.Rate, 1e-9)
	assert.InDelta(t, 120.0, line.ICMS, 1e-9)
	assert.Zero(t, line.ST)
}

func TestFromInbound_ShortRow(t *testing.T) {
	line := Row(domain.Inbound, []string{"55", "01/01/2025"}, 1)

	assert.Equal(t, domain.Inbound, line.Direction)
	assert.Equal(t, domain.NoCode, line.CFOP)
	assert.Equal(t, "00", line.CST)
	assert.Zero(t, line.Rate)
	assert.Empty(t, line.DestinationUF)
}

func TestRemoveAccents(t *testing.T) {
	assert.Equal(t, "Denegacao", RemoveAccents("Denegação"))
	assert.Equal(t, "DIAGNOSTICO_ERRO", RemoveAccents("DIAGNÓSTICO_ERRO"))
}
