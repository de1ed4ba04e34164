// internal/core/audit/balance.go
package audit

import (
	"audit-service/internal/domain"

	"github.com/shopspring/decimal"
)

// taxAmount selects the amount of one tax from a line.
func taxAmount(tax domain.TaxType, l domain.TransactionLine) float64 {
	switch tax {
	case domain.TaxICMS:
		return l.ICMS
	case domain.TaxICMSST:
		return l.ST
	case domain.TaxIPI:
		return l.IPI
	}
	return 0
}

var balanceTaxes = []domain.TaxType{domain.TaxICMS, domain.TaxICMSST, domain.TaxIPI}

// AggregateBalances computes debit (outbound) versus credit (inbound) per tax.
// When freight is not nil its total is deducted from the ICMS net position
// into BalanceSheet.AdjustedICMS.
func AggregateBalances(inbound, outbound []domain.TransactionLine, freight *domain.FreightCredit) domain.BalanceSheet {
	sheet := domain.BalanceSheet{Balances: make([]domain.TaxBalance, 0, len(balanceTaxes))}
	for _, tax := range balanceTaxes {
		debit := sumTax(tax, outbound)
		credit := sumTax(tax, inbound)
		sheet.Balances = append(sheet.Balances, newTaxBalance(tax, debit, credit))
	}

	if freight != nil {
		icms, _ := sheet.Balance(domain.TaxICMS)
		sheet.FreightCredit = freight.Total
		adjusted := newTaxBalance(domain.TaxICMS,
			decimal.NewFromFloat(icms.Debit),
			decimal.NewFromFloat(icms.Credit).Add(decimal.NewFromFloat(freight.Total)))
		sheet.AdjustedICMS = &adjusted
	}
	return sheet
}

func sumTax(tax domain.TaxType, lines []domain.TransactionLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(decimal.NewFromFloat(taxAmount(tax, l)))
	}
	return total
}

func newTaxBalance(tax domain.TaxType, debit, credit decimal.Decimal) domain.TaxBalance {
	net := debit.Sub(credit)
	status := domain.StatusCredor
	if net.IsPositive() {
		status = domain.StatusRecolher
	}
	return domain.TaxBalance{
		Tax:    tax,
		Debit:  debit.InexactFloat64(),
		Credit: credit.InexactFloat64(),
		Net:    net.InexactFloat64(),
		Status: status,
	}
}
