package service

import (
	"context"
	"testing"

	"ledger/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedReport 一笔销售、一笔采购、两笔联系人费用和一笔已付一期的贷款
func seedReport(t *testing.T) *fixture {
	t.Helper()
	f := newFixture(t)
	ctx := context.Background()
	f.setCapital(t, "1000")
	f.sale(t, "10", "50", "200")
	f.purchase(t, "20", "30", "100")
	_, err := f.ledger.CreateProduct(ctx, ProductInput{Name: "Wool", QuantityAvailable: "10", PurchasePricePerKg: "5", SellingPricePerKg: "8"})
	require.NoError(t, err)
	_, err = f.ledger.CreateContactExpense(ctx, CashFlowInput{Amount: "40", ContactID: f.contact.ID, PayerType: models.PayerUs})
	require.NoError(t, err)
	_, err = f.ledger.CreateContactExpense(ctx, CashFlowInput{Amount: "15", ContactID: f.contact.ID, PayerType: models.PayerThem})
	require.NoError(t, err)

	loan, err := f.ledger.CreateLoan(ctx, LoanInput{
		BankName: "NBE", LoanType: "commercial", TotalLoanAmount: "120000",
		InterestRatePercentage: "6", LoanPeriodMonths: 12, StartDate: day(2024, 1, 17), IsActive: true,
	})
	require.NoError(t, err)
	_, err = f.ledger.SetInstallmentPaid(ctx, loan.Installments[0].ID, true)
	require.NoError(t, err)
	return f
}

func TestDashboard(t *testing.T) {
	f := seedReport(t)
	d, err := f.reporter.Dashboard(context.Background(), DateRange{})
	require.NoError(t, err)

	assert.True(t, dec("500").Equal(d.TotalSales))
	assert.True(t, dec("600").Equal(d.TotalPurchases))
	assert.True(t, dec("300").Equal(d.CostOfGoodsSold))
	assert.True(t, dec("200").Equal(d.NetProfit))
	assert.True(t, dec("300").Equal(d.Receivable))
	assert.True(t, dec("500").Equal(d.Payable))
	assert.Len(t, d.ReceivableDetail, 1)
	assert.Len(t, d.PayableDetail, 1)
	require.Len(t, d.RecentSales, 1)
	assert.False(t, d.RecentSales[0].IsFullyPaid)

	assert.Len(t, d.Inventory, 2)
	require.Len(t, d.LowStock, 1)
	assert.Equal(t, "Wool", d.LowStock[0].Name)

	require.NotNil(t, d.Bank)
	assert.True(t, dec("127200").Equal(d.Bank.TotalFlow))
	assert.True(t, dec("10600").Equal(d.Bank.TotalPaid))
	assert.True(t, dec("116600").Equal(d.Bank.TotalRemaining))
	require.NotNil(t, d.Bank.NextInstallmentDate)
	assert.Equal(t, "2024-03-17", d.Bank.NextInstallmentDate.Format(models.DateLayout))

	require.Len(t, d.Alerts.Overdue, 1)
	assert.Equal(t, "2024-02-17", d.Alerts.Overdue[0].DueDate.Format(models.DateLayout))
	require.Len(t, d.Alerts.Upcoming, 1)
	require.NotNil(t, d.Alerts.Upcoming[0].Loan)
	assert.Equal(t, "NBE", d.Alerts.Upcoming[0].Loan.BankName)

	require.NotNil(t, d.Capital)
	assert.True(t, dec("-9540").Equal(*d.Capital))
}

func TestDashboard_PeriodExcludesTransactions(t *testing.T) {
	f := seedReport(t)
	rng, err := ParsePeriod(PeriodCustom, "2024-01-01", "2024-01-31", testToday)
	require.NoError(t, err)
	d, err := f.reporter.Dashboard(context.Background(), rng)
	require.NoError(t, err)
	assert.True(t, d.TotalSales.IsZero())
	assert.True(t, d.Receivable.IsZero())
	assert.Empty(t, d.RecentSales)
}

func TestContactBalances_Netting(t *testing.T) {
	f := seedReport(t)
	ctx := context.Background()
	_, err := f.ledger.CreateContact(ctx, ContactInput{Name: "Zaki"})
	require.NoError(t, err)

	list, err := f.reporter.ContactBalances(ctx, DateRange{})
	require.NoError(t, err)
	require.Len(t, list, 2)

	b := list[0]
	assert.Equal(t, "Ahmed", b.Contact.Name)
	assert.True(t, dec("500").Equal(b.SalesToThem))
	assert.True(t, dec("40").Equal(b.ExpensesWePaid))
	assert.True(t, dec("200").Equal(b.PaymentsFromThem))
	assert.True(t, dec("600").Equal(b.PurchasesFromThem))
	assert.True(t, dec("15").Equal(b.ExpensesTheyPaid))
	assert.True(t, dec("100").Equal(b.PaymentsToThem))
	// (500 + 40 - 200) - (600 + 15 - 100)
	assert.True(t, dec("-175").Equal(b.Net))

	assert.True(t, list[1].Net.IsZero())
}

func TestContactStatement(t *testing.T) {
	f := seedReport(t)
	ctx := context.Background()
	st, err := f.reporter.ContactStatement(ctx, f.contact.ID)
	require.NoError(t, err)

	assert.Len(t, st.Transactions, 2)
	assert.True(t, dec("500").Equal(st.TotalOut))
	assert.True(t, dec("600").Equal(st.TotalIn))
	assert.True(t, dec("300").Equal(st.BalanceUs))
	assert.True(t, dec("500").Equal(st.BalanceThem))
	assert.True(t, dec("-200").Equal(st.NetBalance))
	assert.True(t, dec("200").Equal(st.TotalRemaining))
	require.Len(t, st.Payments, 2)
	assert.Equal(t, "Cotton", st.Payments[0].ProductName)
	assert.Len(t, st.Expenses, 2)
	assert.True(t, dec("-175").Equal(st.Balance.Net))

	_, err = f.reporter.ContactStatement(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBankStatement(t *testing.T) {
	f := seedReport(t)
	st, err := f.reporter.BankStatement(context.Background())
	require.NoError(t, err)
	require.NotNil(t, st.Loan)
	assert.Len(t, st.Installments, 12)
	assert.True(t, dec("7200").Equal(st.Summary.TotalInterest))
	assert.True(t, dec("116600").Equal(st.Summary.TotalRemaining))

	empty := newFixture(t)
	st, err = empty.reporter.BankStatement(context.Background())
	require.NoError(t, err)
	assert.Nil(t, st.Loan)
	assert.Empty(t, st.Installments)
}

func TestParsePeriod(t *testing.T) {
	r, err := ParsePeriod("", "", "", testToday)
	require.NoError(t, err)
	assert.True(t, r.IsZero())

	r, err = ParsePeriod(PeriodToday, "", "", testToday)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", r.Start.Format(models.DateLayout))
	assert.Equal(t, "2024-03-15", r.End.Format(models.DateLayout))

	r, err = ParsePeriod(PeriodWeek, "", "", testToday)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-08", r.Start.Format(models.DateLayout))
	assert.True(t, r.End.IsZero())

	r, err = ParsePeriod(PeriodMonth, "", "", testToday)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-14", r.Start.Format(models.DateLayout))

	r, err = ParsePeriod(PeriodCustom, "2024-01-01", "", testToday)
	require.NoError(t, err)
	assert.True(t, r.IsZero())

	r, err = ParsePeriod(PeriodCustom, "2024-01-01", "2024-01-31", testToday)
	require.NoError(t, err)
	assert.True(t, r.Contains(day(2024, 1, 31)))
	assert.False(t, r.Contains(day(2024, 2, 1)))

	_, err = ParsePeriod(PeriodCustom, "2024-02-01", "2024-01-31", testToday)
	assert.True(t, IsValidation(err))
	_, err = ParsePeriod(PeriodCustom, "01/02/2024", "2024-01-31", testToday)
	assert.True(t, IsValidation(err))
	_, err = ParsePeriod("year", "", "", testToday)
	assert.True(t, IsValidation(err))
}
