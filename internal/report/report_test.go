package report

import (
	"bytes"
	"testing"

	"audit-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestRenderDiagnostic(t *testing.T) {
	regular := RenderDiagnostic(domain.Diagnostic{})
	assert.Equal(t, domain.RenderedDiagnostic{
		Diagnostico:      "Escrituração Regular",
		ParametroCliente: "-",
		SolucaoContabil:  "-",
	}, regular)

	rendered := RenderDiagnostic(domain.Diagnostic{Findings: []domain.Finding{
		{Code: domain.RuleICMSProprio6403, Message: "A.", ClientAction: "ca", SystemAction: "sa"},
		{Code: domain.RuleAliquotaInterestadual, Message: "B.", ClientAction: "cb"},
	}})
	assert.Equal(t, "A. | B.", rendered.Diagnostico)
	assert.Equal(t, "ca | cb", rendered.ParametroCliente)
	assert.Equal(t, "sa", rendered.SolucaoContabil)

	onlyMessage := RenderDiagnostic(domain.Diagnostic{Findings: []domain.Finding{{Message: "C."}}})
	assert.Equal(t, "-", onlyMessage.ParametroCliente)
	assert.Equal(t, "-", onlyMessage.SolucaoContabil)
}

func TestFormatBRL(t *testing.T) {
	cases := map[float64]string{
		0:          "R$ 0,00",
		12.5:       "R$ 12,50",
		1234.56:    "R$ 1.234,56",
		1234567.89: "R$ 1.234.567,89",
		-15.5:      "R$ -15,50",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatBRL(in))
	}
}

func sampleReport() *domain.AuditReport {
	bad := domain.Diagnostic{Findings: []domain.Finding{{Code: domain.RuleSTObrigatoria, Message: "CST 10 exige ST, mas o valor está zerado."}}}
	adjusted := domain.TaxBalance{Tax: domain.TaxICMS, Debit: 180, Credit: 130, Net: 50, Status: domain.StatusRecolher}
	return &domain.AuditReport{
		RunID: "run-1",
		Inbound: domain.LedgerResult{
			Direction: domain.Inbound,
			Columns:   domain.InboundColumns,
			Lines: []domain.AuditedLine{
				{Source: []string{"1", "01/01/2025"}, Rendered: RenderDiagnostic(domain.Diagnostic{})},
			},
			Summary: []domain.CFOPSummaryRow{{CFOP: "1102", Lines: 1, AccountingValue: 100}},
		},
		Outbound: domain.LedgerResult{
			Direction: domain.Outbound,
			Columns:   domain.OutboundColumns,
			Lines: []domain.AuditedLine{
				{Source: []string{"10"}, Diagnostic: domain.Diagnostic{}, Rendered: RenderDiagnostic(domain.Diagnostic{})},
				{Source: []string{"11"}, Diagnostic: bad, Rendered: RenderDiagnostic(bad)},
			},
			NonCompliant: 1,
		},
		Balances: domain.BalanceSheet{
			Balances: []domain.TaxBalance{
				{Tax: domain.TaxICMS, Debit: 180, Credit: 100, Net: 80, Status: domain.StatusRecolher},
				{Tax: domain.TaxICMSST, Status: domain.StatusCredor},
				{Tax: domain.TaxIPI, Status: domain.StatusCredor},
			},
			FreightCredit: 30,
			AdjustedICMS:  &adjusted,
		},
		FreightCredit: &domain.FreightCredit{
			Total:     30,
			Documents: 1,
			ByCFOP:    []domain.FreightCFOP{{CFOP: "6353", Documents: 1, Credit: 30}},
		},
	}
}

func TestWriteWorkbook(t *testing.T) {
	data, err := WriteWorkbook(sampleReport())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{
		SheetEntradas, SheetSaidas, SheetApuracao, SheetResumoEntradas, SheetResumoSaidas, SheetFretes,
	}, f.GetSheetList())

	rows, err := f.GetRows(SheetSaidas)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	diagCol := len(domain.OutboundColumns)
	assert.Equal(t, "DIAGNÓSTICO_ERRO", rows[0][diagCol])
	assert.Equal(t, "SOLUÇÃO_CONTABIL", rows[0][diagCol+2])
	assert.Equal(t, "Escrituração Regular", rows[1][diagCol])
	assert.Equal(t, "CST 10 exige ST, mas o valor está zerado.", rows[2][diagCol])

	regularStyle, err := f.GetCellStyle(SheetSaidas, "A2")
	require.NoError(t, err)
	flaggedStyle, err := f.GetCellStyle(SheetSaidas, "A3")
	require.NoError(t, err)
	assert.Zero(t, regularStyle)
	assert.NotZero(t, flaggedStyle)

	width, err := f.GetColWidth(SheetSaidas, "B")
	require.NoError(t, err)
	assert.Equal(t, 18.0, width)

	apuracao, err := f.GetRows(SheetApuracao)
	require.NoError(t, err)
	require.Len(t, apuracao, 6)
	assert.Equal(t, "ICMS", apuracao[1][0])
	assert.Equal(t, "Recolher", apuracao[1][4])
	assert.Equal(t, "ICMS após frete", apuracao[5][0])
}

func TestWriteWorkbook_SemFrete(t *testing.T) {
	r := sampleReport()
	r.FreightCredit = nil
	r.Balances.AdjustedICMS = nil

	data, err := WriteWorkbook(r)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	assert.NotContains(t, f.GetSheetList(), SheetFretes)
}

func TestWriteSummaryPDF(t *testing.T) {
	data, err := WriteSummaryPDF(sampleReport())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}
