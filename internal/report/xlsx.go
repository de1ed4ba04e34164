package report

import (
	"fmt"

	"audit-service/internal/domain"

	"github.com/xuri/excelize/v2"
)

// Sheet names of the audit workbook.
const (
	SheetEntradas       = "Entradas Auditadas"
	SheetSaidas         = "Saídas Auditadas"
	SheetApuracao       = "Apuração"
	SheetResumoEntradas = "Resumo CFOP Entradas"
	SheetResumoSaidas   = "Resumo CFOP Saídas"
	SheetFretes         = "Fretes CT-e"
)

const (
	highlightColor = "FFC7CE"
	columnWidth    = 18
)

type workbook struct {
	f         *excelize.File
	header    int
	highlight int
}

// WriteWorkbook renders the report as an XLSX file.
func WriteWorkbook(r *domain.AuditReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	w := &workbook{f: f}
	var err error
	if w.header, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return nil, err
	}
	w.highlight, err = f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{highlightColor}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}

	if err := f.SetSheetName(f.GetSheetName(0), SheetEntradas); err != nil {
		return nil, err
	}
	if err := w.ledgerSheet(SheetEntradas, r.Inbound); err != nil {
		return nil, fmt.Errorf("erro ao gerar aba %s: %w", SheetEntradas, err)
	}
	if err := w.ledgerSheet(SheetSaidas, r.Outbound); err != nil {
		return nil, fmt.Errorf("erro ao gerar aba %s: %w", SheetSaidas, err)
	}
	if err := w.balanceSheet(r.Balances); err != nil {
		return nil, fmt.Errorf("erro ao gerar aba %s: %w", SheetApuracao, err)
	}
	if err := w.summarySheet(SheetResumoEntradas, r.Inbound.Summary); err != nil {
		return nil, fmt.Errorf("erro ao gerar aba %s: %w", SheetResumoEntradas, err)
	}
	if err := w.summarySheet(SheetResumoSaidas, r.Outbound.Summary); err != nil {
		return nil, fmt.Errorf("erro ao gerar aba %s: %w", SheetResumoSaidas, err)
	}
	if r.FreightCredit != nil {
		if err := w.freightSheet(r.FreightCredit); err != nil {
			return nil, fmt.Errorf("erro ao gerar aba %s: %w", SheetFretes, err)
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("erro ao gravar planilha: %w", err)
	}
	return buf.Bytes(), nil
}

func (w *workbook) sheet(name string) error {
	if idx, _ := w.f.GetSheetIndex(name); idx >= 0 {
		return nil
	}
	_, err := w.f.NewSheet(name)
	return err
}

// row writes values starting at column A of the given 1-based row.
func (w *workbook) row(sheet string, n int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	return w.f.SetSheetRow(sheet, cell, &values)
}

func (w *workbook) styleRow(sheet string, n, width, style int) error {
	first, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(width, n)
	if err != nil {
		return err
	}
	return w.f.SetCellStyle(sheet, first, last, style)
}

func (w *workbook) headerRow(sheet string, labels []string) error {
	values := make([]interface{}, len(labels))
	for i, l := range labels {
		values[i] = l
	}
	if err := w.row(sheet, 1, values); err != nil {
		return err
	}
	return w.styleRow(sheet, 1, len(labels), w.header)
}

func (w *workbook) ledgerSheet(name string, ledger domain.LedgerResult) error {
	if err := w.sheet(name); err != nil {
		return err
	}
	labels := append(append([]string{}, ledger.Columns...), ColumnDiagnostico, ColumnParametroCliente, ColumnSolucaoContabil)
	if err := w.headerRow(name, labels); err != nil {
		return err
	}

	for i, l := range ledger.Lines {
		n := i + 2
		values := make([]interface{}, 0, len(labels))
		for _, cell := range l.Source {
			values = append(values, cell)
		}
		for len(values) < len(ledger.Columns) {
			values = append(values, "")
		}
		values = append(values, l.Rendered.Diagnostico, l.Rendered.ParametroCliente, l.Rendered.SolucaoContabil)
		if err := w.row(name, n, values); err != nil {
			return err
		}
		if !l.Diagnostic.Compliant() {
			if err := w.styleRow(name, n, len(labels), w.highlight); err != nil {
				return err
			}
		}
	}
	return w.f.SetColWidth(name, "A", "AN", columnWidth)
}

func (w *workbook) balanceSheet(sheet domain.BalanceSheet) error {
	if err := w.sheet(SheetApuracao); err != nil {
		return err
	}
	if err := w.headerRow(SheetApuracao, []string{"Tributo", "Débito (Saídas)", "Crédito (Entradas)", "Saldo", "Situação"}); err != nil {
		return err
	}
	n := 2
	for _, b := range sheet.Balances {
		if err := w.row(SheetApuracao, n, []interface{}{string(b.Tax), b.Debit, b.Credit, b.Net, string(b.Status)}); err != nil {
			return err
		}
		n++
	}
	if adj := sheet.AdjustedICMS; adj != nil {
		if err := w.row(SheetApuracao, n, []interface{}{"Crédito de frete (CT-e)", 0.0, sheet.FreightCredit, -sheet.FreightCredit, ""}); err != nil {
			return err
		}
		n++
		if err := w.row(SheetApuracao, n, []interface{}{"ICMS após frete", adj.Debit, adj.Credit, adj.Net, string(adj.Status)}); err != nil {
			return err
		}
	}
	return w.f.SetColWidth(SheetApuracao, "A", "E", 24)
}

func (w *workbook) summarySheet(name string, rows []domain.CFOPSummaryRow) error {
	if err := w.sheet(name); err != nil {
		return err
	}
	if err := w.headerRow(name, []string{"CFOP", "Linhas", "Valor Contábil", "Base de Cálculo", "ICMS", "ICMS-ST", "IPI", "Isentas", "Outras"}); err != nil {
		return err
	}
	for i, r := range rows {
		values := []interface{}{r.CFOP, r.Lines, r.AccountingValue, r.TaxBase, r.TaxAmount, r.STAmount, r.IPIAmount, r.Exempt, r.Other}
		if err := w.row(name, i+2, values); err != nil {
			return err
		}
	}
	return w.f.SetColWidth(name, "A", "I", columnWidth)
}

func (w *workbook) freightSheet(fc *domain.FreightCredit) error {
	if err := w.sheet(SheetFretes); err != nil {
		return err
	}
	if err := w.headerRow(SheetFretes, []string{"CFOP", "Documentos", "Crédito ICMS"}); err != nil {
		return err
	}
	n := 2
	for _, c := range fc.ByCFOP {
		if err := w.row(SheetFretes, n, []interface{}{c.CFOP, c.Documents, c.Credit}); err != nil {
			return err
		}
		n++
	}
	footer := [][]interface{}{
		{"Total", fc.Documents, fc.Total},
		{"Duplicados", fc.Duplicates},
		{"Cancelados/denegados", fc.Cancelled},
		{"Não CT-e", fc.NonFreight},
		{"Inválidos", fc.Invalid},
	}
	for _, values := range footer {
		if err := w.row(SheetFretes, n, values); err != nil {
			return err
		}
		n++
	}
	return w.f.SetColWidth(SheetFretes, "A", "C", columnWidth)
}
