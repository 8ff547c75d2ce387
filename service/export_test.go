package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionsWorkbook(t *testing.T) {
	f := newFixture(t)
	f.setCapital(t, "0")
	f.sale(t, "10", "50", "200")
	f.purchase(t, "2", "30", "")

	list, err := f.ledger.ListTransactions(context.Background(), TransactionFilter{})
	require.NoError(t, err)
	wb, err := TransactionsWorkbook(list)
	require.NoError(t, err)
	defer wb.Close()

	header, err := wb.GetCellValue(TransactionsSheet, "H1")
	require.NoError(t, err)
	assert.Equal(t, "总价", header)

	// 倒序：第二行是后登记的采购
	dir, _ := wb.GetCellValue(TransactionsSheet, "C2")
	assert.Equal(t, "采购", dir)
	total, _ := wb.GetCellValue(TransactionsSheet, "H3")
	assert.Equal(t, "500", total)
	remaining, _ := wb.GetCellValue(TransactionsSheet, "J3")
	assert.Equal(t, "300", remaining)
	contact, _ := wb.GetCellValue(TransactionsSheet, "E3")
	assert.Equal(t, "Ahmed", contact)

	summary, _ := wb.GetCellValue(TransactionsSheet, "A4")
	assert.Equal(t, "合计", summary)
	count, _ := wb.GetCellValue(TransactionsSheet, "K4")
	assert.Equal(t, "共 2 条记录", count)
}

func TestBankStatementWorkbook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	loan := createTestLoan(t, f)
	_, err := f.ledger.SetInstallmentPaid(ctx, loan.Installments[0].ID, true)
	require.NoError(t, err)

	st, err := f.reporter.BankStatement(ctx)
	require.NoError(t, err)
	wb, err := BankStatementWorkbook(st)
	require.NoError(t, err)
	defer wb.Close()

	due, _ := wb.GetCellValue(BankStatementSheet, "B2")
	assert.Equal(t, "2024-01-01", due)
	paid, _ := wb.GetCellValue(BankStatementSheet, "G2")
	assert.Equal(t, "是", paid)
	paidOn, _ := wb.GetCellValue(BankStatementSheet, "H2")
	assert.Equal(t, "2024-03-15", paidOn)
	amount, _ := wb.GetCellValue(BankStatementSheet, "F13")
	assert.Equal(t, "10600", amount)
	flow, _ := wb.GetCellValue(BankStatementSheet, "F14")
	assert.Equal(t, "127200", flow)
	remaining, _ := wb.GetCellValue(BankStatementSheet, "H14")
	assert.Equal(t, "未付 116600.00", remaining)
}
