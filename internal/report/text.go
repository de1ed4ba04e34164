// Package report renders audit results: diagnostic text, the XLSX workbook and
// the PDF balance summary.
package report

import (
	"strings"

	"audit-service/internal/domain"

	"github.com/shopspring/decimal"
)

// Constants for the text form of diagnostics.
const (
	RegularMarker    = "Escrituração Regular"
	EmptyGuidance    = "-"
	FindingSeparator = " | "
)

// Appended columns of the audited ledger sheets.
const (
	ColumnDiagnostico      = "DIAGNÓSTICO_ERRO"
	ColumnParametroCliente = "PARAMETRO_CLIENTE"
	ColumnSolucaoContabil  = "SOLUÇÃO_CONTABIL"
)

// RenderDiagnostic joins the findings into the three report columns.
func RenderDiagnostic(d domain.Diagnostic) domain.RenderedDiagnostic {
	if d.Compliant() {
		return domain.RenderedDiagnostic{
			Diagnostico:      RegularMarker,
			ParametroCliente: EmptyGuidance,
			SolucaoContabil:  EmptyGuidance,
		}
	}
	var messages, client, system []string
	for _, f := range d.Findings {
		messages = append(messages, f.Message)
		if f.ClientAction != "" {
			client = append(client, f.ClientAction)
		}
		if f.SystemAction != "" {
			system = append(system, f.SystemAction)
		}
	}
	return domain.RenderedDiagnostic{
		Diagnostico:      strings.Join(messages, FindingSeparator),
		ParametroCliente: joinOrEmpty(client),
		SolucaoContabil:  joinOrEmpty(system),
	}
}

func joinOrEmpty(parts []string) string {
	if len(parts) == 0 {
		return EmptyGuidance
	}
	return strings.Join(parts, FindingSeparator)
}

// FormatBRL formats a value as Brazilian currency ("R$ 1.234,56").
func FormatBRL(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	fixed := d.StringFixed(2)
	intPart, frac := fixed[:len(fixed)-3], fixed[len(fixed)-2:]

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return "R$ " + sign + b.String() + "," + frac
}
