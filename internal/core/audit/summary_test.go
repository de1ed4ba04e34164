package audit

import (
	"testing"

	"audit-service/internal/core/rules"
	"audit-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCFOPSummary(t *testing.T) {
	exempt := rules.MustDefault().Summary.ExemptCSTs
	lines := []domain.TransactionLine{
		{CFOP: "5405", CST: "60", AccountingValue: 300, TaxBase: 0, ST: 12},
		{CFOP: "5102", CST: "00", AccountingValue: 1000, TaxBase: 1000, ICMS: 180},
		{CFOP: "5102", CST: "20", AccountingValue: 500, TaxBase: 300, ICMS: 54, IPI: 5},
		{CFOP: domain.NoCode, CST: "00", AccountingValue: 10},
		{CFOP: "5102", CST: "40", AccountingValue: 100, TaxBase: 150},
	}

	rows := BuildCFOPSummary(lines, exempt)

	require.Len(t, rows, 3)
	assert.Equal(t, []string{"5102", "5405", domain.NoCode}, []string{rows[0].CFOP, rows[1].CFOP, rows[2].CFOP})

	r := rows[0]
	assert.Equal(t, 3, r.Lines)
	assert.Equal(t, 1600.0, r.AccountingValue)
	assert.Equal(t, 1450.0, r.TaxBase)
	assert.Equal(t, 234.0, r.TaxAmount)
	assert.Equal(t, 5.0, r.IPIAmount)
	assert.Equal(t, 200.0, r.Exempt, "CST 20 vai para isentas; base acima do contábil não gera negativo")
	assert.Zero(t, r.Other)

	assert.Equal(t, 300.0, rows[1].Other, "CST 60 não está no conjunto de isentas")
	assert.Equal(t, 12.0, rows[1].STAmount)

	assert.Equal(t, 1, rows[2].Lines)
	assert.Equal(t, 10.0, rows[2].Other)
}

func TestBuildCFOPSummary_ConservaValorContabil(t *testing.T) {
	lines := []domain.TransactionLine{}
	total := 0.0
	for i, v := range []float64{0.1, 0.2, 0.3, 10.55, 99.99, 1234.56, 7.77} {
		cfop := []string{"1102", "2102", "1556"}[i%3]
		lines = append(lines, domain.TransactionLine{CFOP: cfop, CST: "00", AccountingValue: v})
		total += v
	}

	rows := BuildCFOPSummary(lines, nil)

	sum, count := 0.0, 0
	for _, r := range rows {
		sum += r.AccountingValue
		count += r.Lines
	}
	assert.InDelta(t, total, sum, 1e-6)
	assert.Equal(t, len(lines), count)
}

func TestBuildCFOPSummary_Vazio(t *testing.T) {
	assert.Empty(t, BuildCFOPSummary(nil, nil))
}
