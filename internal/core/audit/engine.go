// internal/core/audit/engine.go
package audit

import (
	"fmt"
	"strings"

	"audit-service/internal/core/rules"
	"audit-service/internal/domain"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Engine evaluates the rule battery over single lines. It keeps no state
// between calls and is safe for concurrent use.
type Engine struct {
	rules *rules.Catalogue
}

// NewEngine creates an engine over the given catalogue.
func NewEngine(catalogue *rules.Catalogue) *Engine {
	return &Engine{rules: catalogue}
}

type check func(e *Engine, l domain.TransactionLine) (domain.Finding, bool)

// checks run in this order; the order only affects how findings are listed.
var checks = []check{
	checkICMSProprio,
	checkICMSCalculo,
	checkBaseSubavaliada,
	checkST,
	checkIPIVendaIndustrial,
	checkIPICredito,
	checkICMSCredito,
	checkCreditoUsoConsumo,
	checkDevolucaoSemEstorno,
	checkAliquotaInterestadual,
}

// Audit returns the findings of every rule that fires for the line.
func (e *Engine) Audit(l domain.TransactionLine) domain.Diagnostic {
	findings := []domain.Finding{}
	for _, c := range checks {
		if f, ok := c(e, l); ok {
			findings = append(findings, f)
		}
	}
	return domain.Diagnostic{Findings: findings}
}

// --- Malha ICMS próprio ---

func checkICMSProprio(e *Engine, l domain.TransactionLine) (domain.Finding, bool) {
	if l.Direction != domain.Outbound || !rules.In(e.rules.SubstituteTaxpayerCFOPs, l.CFOP) || l.ICMS != 0 {
		return domain.Finding{}, false
	}
	return domain.Finding{
		Code:         domain.RuleICMSProprio6403,
		Message:      fmt.Sprintf("ICMS próprio não destacado no CFOP %s.", l.CFOP),
		ClientAction: "Destacar o ICMS próprio na NF-e de substituto tributário.",
		SystemAction: "Habilitar o cálculo de ICMS próprio no acumulador de ST (substituto).",
	}, true
}

func checkICMSCalculo(e *Engine, l domain.TransactionLine) (domain.Finding, bool) {
	if l.Direction != domain.Outbound || l.ICMS <= 0 || l.TaxBase <= 0 {
		return domain.Finding{}, false
	}
	expected := decimal.NewFromFloat(l.TaxBase).Mul(decimal.NewFromFloat(l.Rate)).Div(hundred).Round(2)
	diff := expected.Sub(decimal.NewFromFloat(l.ICMS)).Abs()
	if !diff.GreaterThan(decimal.NewFromFloat(e.rules.Tolerances.ICMSCalculation)) {
		return domain.Finding{}, false
	}
	return domain.Finding{
		Code:         domain.RuleICMSCalculo,
		Message:      fmt.Sprintf("Cálculo do ICMS divergente (esperado: %s).", expected.StringFixed(2)),
		ClientAction: "Corrigir o faturamento: base x alíquota não confere com o destacado.",
		SystemAction: "Revisar a alíquota no cadastro do produto ou a exceção fiscal.",
	}, true
}

func checkBaseSubavaliada(e *Engine, l domain.TransactionLine) (domain.Finding, bool) {
	if l.TaxBase <= 0 {
		return domain.Finding{}, false
	}
	operation := decimal.NewFromFloat(l.ItemValue).
		Add(decimal.NewFromFloat(l.Freight)).
		Sub(decimal.NewFromFloat(l.Discount))
	gap := operation.Sub(decimal.NewFromFloat(l.TaxBase))
	if !gap.GreaterThan(decimal.NewFromFloat(e.rules.Tolerances.BaseUnderstatement)) {
		return domain.Finding{}, false
	}
	return domain.Finding{
		Code:         domain.RuleBaseSubavaliada,
		Message:      fmt.Sprintf("Base de cálculo do ICMS menor que o valor da operação (diferença: %s).", gap.StringFixed(2)),
		ClientAction: "Incluir frete e demais acréscimos na base de cálculo do ICMS.",
		SystemAction: "Revisar a composição da base de cálculo no acumulador.",
	}, true
}

// --- Malha ICMS ST ---

// checkST is a chain: at most one ST finding per line.
func checkST(e *Engine, l domain.TransactionLine) (domain.Finding, bool) {
	st := e.rules.ST
	cst := cstLabel(l)
	switch {
	case rules.In(st.MandatoryCSTs, l.CST) && l.ST == 0:
		return domain.Finding{
			Code:         domain.RuleSTObrigatoria,
			Message:      fmt.Sprintf("CST %s exige ST, mas o valor está zerado.", cst),
			ClientAction: "Calcular e informar o valor do ICMS ST retido.",
			SystemAction: "No acumulador, aba Estadual, marcar 'Gera guia de ST'.",
		}, true
	case st.OptionalCST != "" && l.CST == st.OptionalCST && rules.In(st.GeneratingCFOPs, l.CFOP) && l.ST == 0:
		return domain.Finding{
			Code:         domain.RuleSTCST90,
			Message:      fmt.Sprintf("CST %s em operação de substituição (CFOP %s) sem ICMS ST informado.", cst, l.CFOP),
			ClientAction: "Informar o ICMS ST retido ou revisar o CST da operação.",
			SystemAction: fmt.Sprintf("Vincular o CFOP %s a um acumulador que gere guia de ST.", l.CFOP),
		}, true
	case l.ST > 0 && !rules.In(st.MandatoryCSTs, l.CST) && l.CST != st.OptionalCST && !rules.In(st.ToleratedCSTs, l.CST):
		return domain.Finding{
			Code:         domain.RuleSTIndevida,
			Message:      fmt.Sprintf("Destaque de ST indevido para CST %s.", cst),
			ClientAction: fmt.Sprintf("Remover a ST ou ajustar o CST para final %s.", stCSTList(st)),
		}, true
	}
	return domain.Finding{}, false
}

// --- Malha IPI ---

func checkIPIVendaIndustrial(e *Engine, l domain.TransactionLine) (domain.Finding, bool) {
	if !rules.In(e.rules.IndustrialSaleCFOPs, l.CFOP) || l.IPI != 0 {
		return domain.Finding{}, false
	}
	return domain.Finding{
		Code:         domain.RuleIPIVendaIndustrial,
		Message:      "Venda industrial sem destaque de IPI.",
		ClientAction: "Informar o IPI (saída de produção própria).",
		SystemAction: "Vincular a tabela de IPI no produto e usar acumulador industrial.",
	}, true
}

func checkIPICredito(e *Engine, l domain.TransactionLine) (domain.Finding, bool) {
	if l.Direction != domain.Inbound || !rules.In(e.rules.IPICreditCFOPs, l.CFOP) || l.IPI != 0 {
		return domain.Finding{}, false
	}
	return domain.Finding{
		Code:         domain.RuleIPICredito,
		Message:      fmt.Sprintf("Compra para industrialização (CFOP %s) sem crédito de IPI.", l.CFOP),
		ClientAction: "Conferir o IPI destacado na NF-e do fornecedor.",
		SystemAction: "Habilitar o crédito de IPI no acumulador de compras para industrialização.",
	}, true
}

// --- Malha de créditos nas entradas ---

func checkICMSCredito(e *Engine, l domain.TransactionLine) (domain.Finding, bool) {
	if l.Direction != domain.Inbound || !rules.In(e.rules.FullCreditCFOPs, l.CFOP) ||
		!rules.In(e.rules.FullCreditCSTs, l.CST) || l.ICMS != 0 {
		return domain.Finding{}, false
	}
	return domain.Finding{
		Code:         domain.RuleICMSCredito,
		Message:      fmt.Sprintf("Entrada tributada integralmente (CST %s) sem crédito de ICMS.", cstLabel(l)),
		ClientAction: "Conferir o ICMS destacado na NF-e de entrada.",
		SystemAction: fmt.Sprintf("Habilitar o crédito de ICMS no acumulador de entradas do CFOP %s.", l.CFOP),
	}, true
}

func checkCreditoUsoConsumo(e *Engine, l domain.TransactionLine) (domain.Finding, bool) {
	if l.Direction != domain.Inbound || !rules.In(e.rules.ConsumptionCFOPs, l.CFOP) || l.ICMS <= 0 {
		return domain.Finding{}, false
	}
	return domain.Finding{
		Code:         domain.RuleCreditoUsoConsumo,
		Message:      fmt.Sprintf("Crédito de ICMS indevido em material de uso e consumo (CFOP %s).", l.CFOP),
		ClientAction: "Não aproveitar crédito de ICMS em material de uso e consumo.",
		SystemAction: "Configurar o acumulador de uso e consumo sem crédito de ICMS.",
	}, true
}

func checkDevolucaoSemEstorno(e *Engine, l domain.TransactionLine) (domain.Finding, bool) {
	ret := e.rules.Returns
	if !rules.In(ret.CFOPs, l.CFOP) || l.ICMS != 0 || rules.In(ret.ExemptCSTs, l.CST) {
		return domain.Finding{}, false
	}
	return domain.Finding{
		Code:         domain.RuleDevolucaoSemEstorno,
		Message:      fmt.Sprintf("Devolução (CFOP %s) sem estorno do ICMS.", l.CFOP),
		ClientAction: "Destacar o ICMS na devolução conforme a nota de origem.",
		SystemAction: "Configurar o acumulador de devolução para estornar o ICMS.",
	}, true
}

// --- Malha UF (interestadual) ---

func checkAliquotaInterestadual(e *Engine, l domain.TransactionLine) (domain.Finding, bool) {
	inter := e.rules.Interstate
	if l.Direction != domain.Outbound || inter.CFOPPrefix == "" || !strings.HasPrefix(l.CFOP, inter.CFOPPrefix) {
		return domain.Finding{}, false
	}
	group, ok := e.rules.RateGroupFor(l.DestinationUF)
	if !ok || group.Allows(l.Rate) {
		return domain.Finding{}, false
	}
	return domain.Finding{
		Code:         domain.RuleAliquotaInterestadual,
		Message:      fmt.Sprintf("Alíquota para a UF %s incorreta (espera-se %g%%).", l.DestinationUF, group.NominalRate),
		ClientAction: fmt.Sprintf("Ajustar a alíquota interestadual para %g%% nas saídas para %s.", group.NominalRate, l.DestinationUF),
	}, true
}

func cstLabel(l domain.TransactionLine) string {
	if l.CSTRaw != "" {
		return l.CSTRaw
	}
	return l.CST
}

func stCSTList(st rules.STRules) string {
	codes := append([]string{}, st.MandatoryCSTs...)
	if st.OptionalCST != "" {
		codes = append(codes, st.OptionalCST)
	}
	if len(codes) <= 1 {
		return strings.Join(codes, "")
	}
	return strings.Join(codes[:len(codes)-1], ", ") + " ou " + codes[len(codes)-1]
}
