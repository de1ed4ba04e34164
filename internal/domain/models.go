// package domain/models.go
package domain

import "io"

// Direction identifies which ledger a line comes from.
type Direction string

// Constants for ledger directions.
const (
	Inbound  Direction = "ENTRADA"
	Outbound Direction = "SAIDA"
)

// NoCode is the operation code assigned to rows whose CFOP is empty or unreadable,
// so they stay visible when grouping.
const NoCode = "NO_CODE"

// TaxType defines the taxes covered by the balance.
type TaxType string

// Constants for tax types.
const (
	TaxICMS   TaxType = "ICMS"
	TaxICMSST TaxType = "ICMS-ST"
	TaxIPI    TaxType = "IPI"
)

// BalanceStatus is the payable/creditor label of a TaxBalance.
type BalanceStatus string

// Constants for balance status.
const (
	StatusRecolher BalanceStatus = "Recolher"
	StatusCredor   BalanceStatus = "Credor"
)

// TransactionLine is one normalized row of either ledger. All monetary fields are
// finite and non-negative.
type TransactionLine struct {
	Direction       Direction `json:"direction"`
	Row             int       `json:"row"`
	DocumentNumber  string    `json:"document_number"`
	IssueDate       string    `json:"issue_date"`
	CFOP            string    `json:"cfop"`
	CST             string    `json:"cst"`
	CSTRaw          string    `json:"cst_raw"`
	ItemValue       float64   `json:"item_value"`
	AccountingValue float64   `json:"accounting_value"`
	TaxBase         float64   `json:"tax_base"`
	Rate            float64   `json:"rate"`
	ICMS            float64   `json:"icms"`
	STBase          float64   `json:"st_base"`
	ST              float64   `json:"st"`
	IPI             float64   `json:"ipi"`
	Freight         float64   `json:"freight"`
	Discount        float64   `json:"discount"`
	PIS             float64   `json:"pis"`
	COFINS          float64   `json:"cofins"`
	DestinationUF   string    `json:"destination_uf,omitempty"`
}

// RuleCode identifies a rule family of the audit engine.
type RuleCode string

// Constants for the rule families.
const (
	RuleICMSProprio6403       RuleCode = "ICMS_PROPRIO_6403"
	RuleICMSCalculo           RuleCode = "ICMS_CALCULO"
	RuleBaseSubavaliada       RuleCode = "BASE_SUBAVALIADA"
	RuleAliquotaInterestadual RuleCode = "ALIQUOTA_INTERESTADUAL"
	RuleSTObrigatoria         RuleCode = "ST_OBRIGATORIA"
	RuleSTCST90               RuleCode = "ST_CST90"
	RuleSTIndevida            RuleCode = "ST_INDEVIDA"
	RuleIPIVendaIndustrial    RuleCode = "IPI_VENDA_INDUSTRIAL"
	RuleIPICredito            RuleCode = "IPI_CREDITO"
	RuleICMSCredito           RuleCode = "ICMS_CREDITO"
	RuleCreditoUsoConsumo     RuleCode = "CREDITO_USO_CONSUMO"
	RuleDevolucaoSemEstorno   RuleCode = "DEVOLUCAO_SEM_ESTORNO"
)

// Finding is one fired rule for a line. ClientAction and SystemAction may be empty.
type Finding struct {
	Code         RuleCode `json:"code"`
	Message      string   `json:"message"`
	ClientAction string   `json:"client_action,omitempty"`
	SystemAction string   `json:"system_action,omitempty"`
}

// Diagnostic is the ordered list of findings for one line.
type Diagnostic struct {
	Findings []Finding `json:"findings"`
}

// Compliant reports whether no rule fired.
func (d Diagnostic) Compliant() bool {
	return len(d.Findings) == 0
}

// Has reports whether the given rule fired.
func (d Diagnostic) Has(code RuleCode) bool {
	for _, f := range d.Findings {
		if f.Code == code {
			return true
		}
	}
	return false
}

// RenderedDiagnostic is the text form of a Diagnostic used by reports.
type RenderedDiagnostic struct {
	Diagnostico      string `json:"diagnostico"`
	ParametroCliente string `json:"parametro_cliente"`
	SolucaoContabil  string `json:"solucao_contabil"`
}

// AuditedLine pairs a normalized line with its source cells and verdict.
type AuditedLine struct {
	Source     []string           `json:"source"`
	Line       TransactionLine    `json:"line"`
	Diagnostic Diagnostic         `json:"diagnostic"`
	Rendered   RenderedDiagnostic `json:"rendered"`
}

// TaxBalance is the debit/credit position of one tax.
type TaxBalance struct {
	Tax    TaxType       `json:"tax"`
	Debit  float64       `json:"debit"`
	Credit float64       `json:"credit"`
	Net    float64       `json:"net"`
	Status BalanceStatus `json:"status"`
}

// BalanceSheet holds the balances of a run. AdjustedICMS is set only when a freight
// credit was supplied.
type BalanceSheet struct {
	Balances      []TaxBalance `json:"balances"`
	FreightCredit float64      `json:"freight_credit"`
	AdjustedICMS  *TaxBalance  `json:"adjusted_icms,omitempty"`
}

// Balance returns the balance for the given tax.
func (b BalanceSheet) Balance(tax TaxType) (TaxBalance, bool) {
	for _, tb := range b.Balances {
		if tb.Tax == tax {
			return tb, true
		}
	}
	return TaxBalance{}, false
}

// CFOPSummaryRow is one line of the statutory per-CFOP summary.
type CFOPSummaryRow struct {
	CFOP            string  `json:"cfop"`
	Lines           int     `json:"lines"`
	AccountingValue float64 `json:"accounting_value"`
	TaxBase         float64 `json:"tax_base"`
	TaxAmount       float64 `json:"tax_amount"`
	STAmount        float64 `json:"st_amount"`
	IPIAmount       float64 `json:"ipi_amount"`
	Exempt          float64 `json:"exempt"`
	Other           float64 `json:"other"`
}

// FreightCFOP is the freight ICMS credit of one CFOP.
type FreightCFOP struct {
	CFOP      string  `json:"cfop"`
	Documents int     `json:"documents"`
	Credit    float64 `json:"credit"`
}

// FreightCredit is the output of the CT-e extraction.
type FreightCredit struct {
	Total        float64       `json:"total"`
	Documents    int           `json:"documents"`
	Duplicates   int           `json:"duplicates"`
	Cancelled    int           `json:"cancelled"`
	NonFreight   int           `json:"non_freight"`
	Invalid      int           `json:"invalid"`
	ByCFOP       []FreightCFOP `json:"by_cfop"`
	DocumentKeys []string      `json:"document_keys"`
}

// LedgerResult is the audited view of one ledger.
type LedgerResult struct {
	Direction    Direction        `json:"direction"`
	Columns      []string         `json:"columns"`
	Lines        []AuditedLine    `json:"lines"`
	NonCompliant int              `json:"non_compliant"`
	Summary      []CFOPSummaryRow `json:"cfop_summary"`
}

// AuditReport is the result of one audit run.
type AuditReport struct {
	RunID         string         `json:"run_id"`
	Inbound       LedgerResult   `json:"inbound"`
	Outbound      LedgerResult   `json:"outbound"`
	Balances      BalanceSheet   `json:"balances"`
	FreightCredit *FreightCredit `json:"freight_credit,omitempty"`
}

// SourceFile is an uploaded or opened input file.
type SourceFile struct {
	Name   string
	Reader io.Reader
}
