package audit

import (
	"testing"

	"audit-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateBalances(t *testing.T) {
	inbound := []domain.TransactionLine{
		{Direction: domain.Inbound, ICMS: 100.10, ST: 0, IPI: 30},
		{Direction: domain.Inbound, ICMS: 50.20, ST: 12, IPI: 0},
	}
	outbound := []domain.TransactionLine{
		{Direction: domain.Outbound, ICMS: 200.30, ST: 5, IPI: 10},
	}

	sheet := AggregateBalances(inbound, outbound, nil)

	require.Len(t, sheet.Balances, 3)
	assert.Nil(t, sheet.AdjustedICMS)
	assert.Zero(t, sheet.FreightCredit)

	icms, ok := sheet.Balance(domain.TaxICMS)
	require.True(t, ok)
	assert.Equal(t, 200.30, icms.Debit)
	assert.Equal(t, 150.30, icms.Credit)
	assert.Equal(t, 50.0, icms.Net)
	assert.Equal(t, domain.StatusRecolher, icms.Status)

	st, _ := sheet.Balance(domain.TaxICMSST)
	assert.Equal(t, -7.0, st.Net)
	assert.Equal(t, domain.StatusCredor, st.Status)

	ipi, _ := sheet.Balance(domain.TaxIPI)
	assert.Equal(t, -20.0, ipi.Net)
	assert.Equal(t, domain.StatusCredor, ipi.Status)
}

func TestAggregateBalances_Identidade(t *testing.T) {
	inbound := []domain.TransactionLine{{ICMS: 0.1}, {ICMS: 0.2}, {ICMS: 0.3}}
	outbound := []domain.TransactionLine{{ICMS: 1.7}, {ICMS: 2.9}}

	sheet := AggregateBalances(inbound, outbound, nil)
	for _, b := range sheet.Balances {
		assert.InDelta(t, b.Debit-b.Credit, b.Net, 1e-9, string(b.Tax))
	}
	icms, _ := sheet.Balance(domain.TaxICMS)
	assert.Equal(t, 4.0, icms.Net)
}

func TestAggregateBalances_SaldoZeroEhCredor(t *testing.T) {
	sheet := AggregateBalances(nil, nil, nil)
	for _, b := range sheet.Balances {
		assert.Zero(t, b.Net)
		assert.Equal(t, domain.StatusCredor, b.Status)
	}
}

func TestAggregateBalances_CreditoFrete(t *testing.T) {
	inbound := []domain.TransactionLine{{ICMS: 100}}
	outbound := []domain.TransactionLine{{ICMS: 180}}

	sheet := AggregateBalances(inbound, outbound, &domain.FreightCredit{Total: 95.5})

	icms, _ := sheet.Balance(domain.TaxICMS)
	assert.Equal(t, 80.0, icms.Net, "o saldo original não muda")

	require.NotNil(t, sheet.AdjustedICMS)
	assert.Equal(t, 95.5, sheet.FreightCredit)
	assert.Equal(t, 195.5, sheet.AdjustedICMS.Credit)
	assert.Equal(t, -15.5, sheet.AdjustedICMS.Net)
	assert.Equal(t, domain.StatusCredor, sheet.AdjustedICMS.Status)
}

func TestAggregateBalances_Idempotente(t *testing.T) {
	inbound := []domain.TransactionLine{{ICMS: 10.01, IPI: 3}}
	outbound := []domain.TransactionLine{{ICMS: 20.02, ST: 1}}
	assert.Equal(t,
		AggregateBalances(inbound, outbound, nil),
		AggregateBalances(inbound, outbound, nil))
}
