package service

import (
	"context"
	"testing"

	"ledger/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTransaction_Sale(t *testing.T) {
	f := newFixture(t)
	tr := f.sale(t, "10", "50", "")

	assert.True(t, dec("500").Equal(tr.TotalPrice))
	assert.Equal(t, "2024-03-15", tr.Date.Format(models.DateLayout))
	assert.True(t, dec("40").Equal(f.stock(t)))
	require.NotNil(t, tr.FinancialRecord)
	assert.True(t, tr.FinancialRecord.AmountPaid.IsZero())
	assert.True(t, dec("500").Equal(tr.RemainingAmount()))
	assert.Empty(t, tr.FinancialRecord.Installments)
	assert.Equal(t, int64(1), f.count(t, &models.FinancialRecord{}))
}

func TestCreateTransaction_TotalIgnoresCallerInput(t *testing.T) {
	f := newFixture(t)
	tr := f.purchase(t, "2.5", "12.35", "")
	assert.Equal(t, "30.88", tr.TotalPrice.StringFixed(2))
	assert.True(t, dec("52.5").Equal(f.stock(t)))
}

func TestCreateTransaction_InsufficientStock(t *testing.T) {
	f := newFixture(t)
	f.setCapital(t, "1000")
	_, err := f.ledger.CreateTransaction(context.Background(), TransactionInput{
		Direction: models.DirectionOut, ProductID: f.product.ID, ContactID: f.contact.ID,
		Weight: "1000", PricePerKg: "50", PaidAmountNow: "100",
	})
	require.ErrorIs(t, err, ErrInsufficientStock)

	assert.True(t, dec("50").Equal(f.stock(t)))
	assert.Equal(t, int64(0), f.count(t, &models.Transaction{}))
	assert.Equal(t, int64(0), f.count(t, &models.FinancialRecord{}))
	assert.Equal(t, int64(0), f.count(t, &models.PaymentInstallment{}))
	assert.True(t, dec("1000").Equal(f.balance(t)))
}

func TestCreateTransaction_AllowNegativeStock(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.AllowNegativeStock = true })
	f.sale(t, "80", "50", "")
	assert.True(t, dec("-30").Equal(f.stock(t)))
}

func TestCreateTransaction_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cases := []TransactionInput{
		{Direction: "sideways", ProductID: f.product.ID, ContactID: f.contact.ID, Weight: "1", PricePerKg: "1"},
		{Direction: models.DirectionIn, ProductID: f.product.ID, ContactID: f.contact.ID, Weight: "0", PricePerKg: "1"},
		{Direction: models.DirectionIn, ProductID: f.product.ID, ContactID: f.contact.ID, Weight: "1", PricePerKg: "x"},
		{Direction: models.DirectionIn, ProductID: f.product.ID, ContactID: f.contact.ID, Weight: "1", PricePerKg: "1", PaidAmountNow: "-5"},
		{Direction: models.DirectionIn, ContactID: f.contact.ID, Weight: "1", PricePerKg: "1"},
	}
	for _, in := range cases {
		_, err := f.ledger.CreateTransaction(ctx, in)
		require.Error(t, err)
		assert.True(t, IsValidation(err), "%+v", in)
	}

	_, err := f.ledger.CreateTransaction(ctx, TransactionInput{
		Direction: models.DirectionIn, ProductID: 999, ContactID: f.contact.ID, Weight: "1", PricePerKg: "1",
	})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int64(0), f.count(t, &models.Transaction{}))
}

func TestCreateTransaction_PaidNow(t *testing.T) {
	f := newFixture(t)
	f.setCapital(t, "1000")

	sale := f.sale(t, "10", "50", "150")
	require.Len(t, sale.FinancialRecord.Installments, 1)
	assert.True(t, dec("150").Equal(sale.FinancialRecord.AmountPaid))
	assert.True(t, dec("350").Equal(sale.RemainingAmount()))
	assert.Equal(t, noteCashReceived, sale.FinancialRecord.Installments[0].Notes)
	assert.True(t, dec("1150").Equal(f.balance(t)))

	buy := f.purchase(t, "20", "30", "600")
	assert.True(t, buy.FinancialRecord.IsFullyPaid(buy.TotalPrice))
	assert.True(t, dec("550").Equal(f.balance(t)))
}

func TestDeleteTransaction_ReversesEffects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setCapital(t, "1000")

	tr := f.sale(t, "10", "50", "200")
	_, err := f.ledger.RecordPayment(ctx, tr.FinancialRecord.ID, PaymentInput{Amount: "100"})
	require.NoError(t, err)
	assert.True(t, dec("1300").Equal(f.balance(t)))
	assert.True(t, dec("40").Equal(f.stock(t)))

	require.NoError(t, f.ledger.DeleteTransaction(ctx, tr.ID))
	assert.True(t, dec("1000").Equal(f.balance(t)))
	assert.True(t, dec("50").Equal(f.stock(t)))
	assert.Equal(t, int64(0), f.count(t, &models.Transaction{}))
	assert.Equal(t, int64(0), f.count(t, &models.FinancialRecord{}))
	assert.Equal(t, int64(0), f.count(t, &models.PaymentInstallment{}))

	assert.ErrorIs(t, f.ledger.DeleteTransaction(ctx, tr.ID), ErrNotFound)
}

func TestListTransactions_Filter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.sale(t, "1", "50", "")
	f.purchase(t, "5", "30", "")
	_, err := f.ledger.CreateTransaction(ctx, TransactionInput{
		Date: day(2024, 1, 10), Direction: models.DirectionIn, ProductID: f.product.ID,
		ContactID: f.contact.ID, Weight: "1", PricePerKg: "30",
	})
	require.NoError(t, err)

	all, err := f.ledger.ListTransactions(ctx, TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "2024-01-10", all[2].Date.Format(models.DateLayout))

	week, err := ParsePeriod(PeriodWeek, "", "", testToday)
	require.NoError(t, err)
	recent, err := f.ledger.ListTransactions(ctx, TransactionFilter{Range: week, Direction: models.DirectionIn})
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.True(t, dec("150").Equal(recent[0].TotalPrice))
}

func TestCreateTransaction_FractionalStockStaysExact(t *testing.T) {
	f := newFixture(t)
	f.purchase(t, "0.10", "30", "0")
	f.purchase(t, "0.20", "30", "0")
	assert.Equal(t, "50.3", f.stock(t).String())

	f.sale(t, "0.30", "50", "0")
	assert.Equal(t, "50", f.stock(t).String())
}
