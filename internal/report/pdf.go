package report

import (
	"fmt"
	"strconv"

	"audit-service/internal/domain"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 156, Green: 0, Blue: 6}
)

// WriteSummaryPDF renders the balances, the non-compliance counts and the
// freight credit of a run as a one-page PDF.
func WriteSummaryPDF(r *domain.AuditReport) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Auditoria ICMS/ST/IPI", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(titleRow(r.RunID))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(sectionRow("APURAÇÃO"))
	m.AddRows(balanceHeaderRow())
	for _, b := range r.Balances.Balances {
		m.AddRows(balanceRow(string(b.Tax), b))
	}
	if adj := r.Balances.AdjustedICMS; adj != nil {
		m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.2}))
		m.AddRows(keyValueRow("Crédito de frete (CT-e)", FormatBRL(r.Balances.FreightCredit)))
		m.AddRows(balanceRow("ICMS após frete", *adj))
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(sectionRow("INCONSISTÊNCIAS"))
	m.AddRows(keyValueRow("Entradas com erro", fmt.Sprintf("%d de %d", r.Inbound.NonCompliant, len(r.Inbound.Lines))))
	m.AddRows(keyValueRow("Saídas com erro", fmt.Sprintf("%d de %d", r.Outbound.NonCompliant, len(r.Outbound.Lines))))

	if fc := r.FreightCredit; fc != nil {
		m.AddRows(line.NewRow(3))
		m.AddRows(sectionRow("FRETES CT-e"))
		m.AddRows(keyValueRow("Documentos considerados", strconv.Itoa(fc.Documents)))
		m.AddRows(keyValueRow("Duplicados / cancelados", fmt.Sprintf("%d / %d", fc.Duplicates, fc.Cancelled)))
		for _, c := range fc.ByCFOP {
			m.AddRows(keyValueRow("CFOP "+c.CFOP, FormatBRL(c.Credit)))
		}
		m.AddRows(keyValueRow("Total", FormatBRL(fc.Total)))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("erro ao gerar PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

func titleRow(runID string) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New("Relatório de Auditoria Fiscal", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
		),
		col.New(4).Add(
			text.New("Execução "+runID, props.Text{
				Size: 7, Align: align.Right, Top: 3, Color: colorGray,
			}),
		),
	)
}

func sectionRow(label string) core.Row {
	return row.New(8).Add(
		col.New(12).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 9, Color: colorPrimary, Top: 2,
		})),
	)
}

func balanceHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Top: 1,
		}))
	}
	return row.New(7).Add(
		h("Tributo", 3, align.Left),
		h("Débito", 2, align.Right),
		h("Crédito", 2, align.Right),
		h("Saldo", 3, align.Right),
		h("Situação", 2, align.Center),
	)
}

func balanceRow(label string, b domain.TaxBalance) core.Row {
	status := props.Text{Size: 8, Align: align.Center, Top: 1}
	if b.Status == domain.StatusRecolher {
		status.Style = fontstyle.Bold
		status.Color = colorAlert
	}
	return row.New(6).Add(
		col.New(3).Add(text.New(label, props.Text{Size: 8, Top: 1})),
		col.New(2).Add(text.New(FormatBRL(b.Debit), props.Text{Size: 8, Align: align.Right, Top: 1})),
		col.New(2).Add(text.New(FormatBRL(b.Credit), props.Text{Size: 8, Align: align.Right, Top: 1})),
		col.New(3).Add(text.New(FormatBRL(b.Net), props.Text{Size: 8, Align: align.Right, Top: 1, Style: fontstyle.Bold})),
		col.New(2).Add(text.New(string(b.Status), status)),
	)
}

func keyValueRow(key, value string) core.Row {
	return row.New(6).Add(
		col.New(6).Add(text.New(key, props.Text{Size: 8, Top: 1})),
		col.New(6).Add(text.New(value, props.Text{Size: 8, Align: align.Right, Top: 1})),
	)
}
