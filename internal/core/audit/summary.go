// internal/core/audit/summary.go
package audit

import (
	"sort"

	"audit-service/internal/core/rules"
	"audit-service/internal/domain"

	"github.com/shopspring/decimal"
)

type summaryAcc struct {
	lines      int
	accounting decimal.Decimal
	base       decimal.Decimal
	tax        decimal.Decimal
	st         decimal.Decimal
	ipi        decimal.Decimal
	exempt     decimal.Decimal
	other      decimal.Decimal
}

// BuildCFOPSummary groups lines by CFOP in ascending order. The part of the
// accounting value outside the ICMS base goes to Exempt when the line's CST
// is one of exemptCSTs and to Other otherwise.
func BuildCFOPSummary(lines []domain.TransactionLine, exemptCSTs []string) []domain.CFOPSummaryRow {
	groups := map[string]*summaryAcc{}
	for _, l := range lines {
		acc, ok := groups[l.CFOP]
		if !ok {
			acc = &summaryAcc{}
			groups[l.CFOP] = acc
		}
		accounting := decimal.NewFromFloat(l.AccountingValue)
		base := decimal.NewFromFloat(l.TaxBase)

		acc.lines++
		acc.accounting = acc.accounting.Add(accounting)
		acc.base = acc.base.Add(base)
		acc.tax = acc.tax.Add(decimal.NewFromFloat(l.ICMS))
		acc.st = acc.st.Add(decimal.NewFromFloat(l.ST))
		acc.ipi = acc.ipi.Add(decimal.NewFromFloat(l.IPI))

		remainder := decimal.Max(accounting.Sub(base), decimal.Zero)
		if rules.In(exemptCSTs, l.CST) {
			acc.exempt = acc.exempt.Add(remainder)
		} else {
			acc.other = acc.other.Add(remainder)
		}
	}

	cfops := make([]string, 0, len(groups))
	for cfop := range groups {
		cfops = append(cfops, cfop)
	}
	sort.Strings(cfops)

	rows := make([]domain.CFOPSummaryRow, 0, len(cfops))
	for _, cfop := range cfops {
		acc := groups[cfop]
		rows = append(rows, domain.CFOPSummaryRow{
			CFOP:            cfop,
			Lines:           acc.lines,
			AccountingValue: acc.accounting.InexactFloat64(),
			TaxBase:         acc.base.InexactFloat64(),
			TaxAmount:       acc.tax.InexactFloat64(),
			STAmount:        acc.st.InexactFloat64(),
			IPIAmount:       acc.ipi.InexactFloat64(),
			Exempt:          acc.exempt.InexactFloat64(),
			Other:           acc.other.InexactFloat64(),
		})
	}
	return rows
}
