package service

import (
	"context"
	"testing"

	"ledger/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncomeAndHomeExpense(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setCapital(t, "1000")

	inc, err := f.ledger.CreateIncome(ctx, CashFlowInput{Amount: "250", Description: "rent"})
	require.NoError(t, err)
	assert.True(t, dec("1250").Equal(f.balance(t)))

	exp, err := f.ledger.CreateHomeExpense(ctx, CashFlowInput{Amount: "400", Date: day(2024, 3, 1)})
	require.NoError(t, err)
	assert.True(t, dec("850").Equal(f.balance(t)))

	incomes, err := f.ledger.ListIncomes(ctx, DateRange{})
	require.NoError(t, err)
	assert.Len(t, incomes, 1)
	expenses, err := f.ledger.ListHomeExpenses(ctx, DateRange{Start: day(2024, 3, 10)})
	require.NoError(t, err)
	assert.Empty(t, expenses)

	require.NoError(t, f.ledger.DeleteIncome(ctx, inc.ID))
	assert.True(t, dec("600").Equal(f.balance(t)))
	require.NoError(t, f.ledger.DeleteHomeExpense(ctx, exp.ID))
	assert.True(t, dec("1000").Equal(f.balance(t)))

	assert.ErrorIs(t, f.ledger.DeleteIncome(ctx, inc.ID), ErrNotFound)
	_, err = f.ledger.CreateIncome(ctx, CashFlowInput{Amount: "0"})
	assert.True(t, IsValidation(err))
}

func TestContactExpense_PayerRules(t *testing.T) {
	for _, tc := range []struct {
		name      string
		adjusts   bool
		payer     models.PayerType
		afterSave string
	}{
		{"us", false, models.PayerUs, "700"},
		{"them", false, models.PayerThem, "1000"},
		{"them credits capital", true, models.PayerThem, "1300"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, func(o *Options) { o.ThemExpenseAdjustsCapital = tc.adjusts })
			ctx := context.Background()
			f.setCapital(t, "1000")

			e, err := f.ledger.CreateContactExpense(ctx, CashFlowInput{
				Amount: "300", ContactID: f.contact.ID, PayerType: tc.payer, Description: "transport",
			})
			require.NoError(t, err)
			assert.True(t, dec(tc.afterSave).Equal(f.balance(t)))

			// 删除按当时记录的调整额冲回，与之后的配置无关
			f.ledger.opts.ThemExpenseAdjustsCapital = !tc.adjusts
			require.NoError(t, f.ledger.DeleteContactExpense(ctx, e.ID))
			assert.True(t, dec("1000").Equal(f.balance(t)))
		})
	}
}

func TestContactExpense_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.ledger.CreateContactExpense(ctx, CashFlowInput{Amount: "10", ContactID: f.contact.ID, PayerType: "nobody"})
	assert.True(t, IsValidation(err))
	_, err = f.ledger.CreateContactExpense(ctx, CashFlowInput{Amount: "10", PayerType: models.PayerUs})
	assert.True(t, IsValidation(err))
	_, err = f.ledger.CreateContactExpense(ctx, CashFlowInput{Amount: "10", ContactID: 77, PayerType: models.PayerUs})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.ledger.CreateContactExpense(ctx, CashFlowInput{Amount: "10", ContactID: f.contact.ID, PayerType: models.PayerUs})
	require.NoError(t, err)
	list, err := f.ledger.ListContactExpenses(ctx, f.contact.ID, DateRange{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Contact)
	assert.Equal(t, "Ahmed", list[0].Contact.Name)
}
