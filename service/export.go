package service

import (
	"fmt"

	"ledger/models"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	TransactionsSheet  = "交易记录"
	BankStatementSheet = "贷款对账单"
)

var thinBorder = []excelize.Border{
	{Type: "left", Color: "000000", Style: 1},
	{Type: "top", Color: "000000", Style: 1},
	{Type: "bottom", Color: "000000", Style: 1},
	{Type: "right", Color: "000000", Style: 1},
}

type sheetStyles struct {
	header, data, summary int
}

func newSheet(name string, widths map[string]float64) (*excelize.File, sheetStyles, error) {
	f := excelize.NewFile()
	var st sheetStyles
	if err := f.SetSheetName("Sheet1", name); err != nil {
		f.Close()
		return nil, st, err
	}
	var err error
	if st.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder,
	}); err != nil {
		f.Close()
		return nil, st, err
	}
	if st.data, err = f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder,
	}); err != nil {
		f.Close()
		return nil, st, err
	}
	if st.summary, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"FFC000"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder,
	}); err != nil {
		f.Close()
		return nil, st, err
	}
	for col, w := range widths {
		f.SetColWidth(name, col, col, w)
	}
	return f, st, nil
}

func writeHeaders(f *excelize.File, sheet string, style int, headers []string) {
	for i, h := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, style)
	}
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func directionLabel(d models.Direction) string {
	if d == models.DirectionOut {
		return "销售"
	}
	return "采购"
}

// TransactionsWorkbook 交易导出为 xlsx，末行为合计
func TransactionsWorkbook(list []models.Transaction) (*excelize.File, error) {
	sheet := TransactionsSheet
	f, st, err := newSheet(sheet, map[string]float64{
		"A": 8, "B": 12, "C": 8, "D": 18, "E": 18, "F": 10, "G": 10, "H": 12, "I": 12, "J": 12, "K": 30,
	})
	if err != nil {
		return nil, err
	}
	writeHeaders(f, sheet, st.header, []string{"ID", "日期", "方向", "商品", "联系人", "重量", "单价", "总价", "已付", "未付", "备注"})

	var sales, purchases, remaining decimal.Decimal
	for i, t := range list {
		row := i + 2
		v := viewOf(t)
		paid := t.TotalPrice.Sub(v.RemainingAmount)
		product, contact := "", ""
		if t.Product != nil {
			product = t.Product.Name
		}
		if t.Contact != nil {
			contact = t.Contact.Name
		}
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), t.ID)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), t.Date.Format(models.DateLayout))
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), directionLabel(t.Direction))
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), product)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), contact)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), money(t.Weight))
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), money(t.PricePerKg))
		f.SetCellValue(sheet, fmt.Sprintf("H%d", row), money(t.TotalPrice))
		f.SetCellValue(sheet, fmt.Sprintf("I%d", row), money(paid))
		f.SetCellValue(sheet, fmt.Sprintf("J%d", row), money(v.RemainingAmount))
		f.SetCellValue(sheet, fmt.Sprintf("K%d", row), t.Notes)
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("K%d", row), st.data)

		if t.Direction == models.DirectionOut {
			sales = sales.Add(t.TotalPrice)
		} else {
			purchases = purchases.Add(t.TotalPrice)
		}
		remaining = remaining.Add(v.RemainingAmount)
	}

	summaryRow := len(list) + 2
	f.SetCellValue(sheet, fmt.Sprintf("A%d", summaryRow), "合计")
	f.MergeCell(sheet, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("C%d", summaryRow))
	f.SetCellValue(sheet, fmt.Sprintf("D%d", summaryRow), fmt.Sprintf("销售 %s", sales.StringFixed(2)))
	f.SetCellValue(sheet, fmt.Sprintf("E%d", summaryRow), fmt.Sprintf("采购 %s", purchases.StringFixed(2)))
	f.SetCellValue(sheet, fmt.Sprintf("J%d", summaryRow), money(remaining))
	f.SetCellValue(sheet, fmt.Sprintf("K%d", summaryRow), fmt.Sprintf("共 %d 条记录", len(list)))
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("K%d", summaryRow), st.summary)
	return f, nil
}

// BankStatementWorkbook 贷款月供明细导出为 xlsx
func BankStatementWorkbook(st *BankStatement) (*excelize.File, error) {
	sheet := BankStatementSheet
	f, styles, err := newSheet(sheet, map[string]float64{
		"A": 8, "B": 12, "C": 12, "D": 12, "E": 12, "F": 14, "G": 10, "H": 14,
	})
	if err != nil {
		return nil, err
	}
	writeHeaders(f, sheet, styles.header, []string{"期数", "到期日", "本金", "利息", "附加费用", "月供总额", "已付", "实际付款日"})

	for i, inst := range st.Installments {
		row := i + 2
		paid, paidOn := "否", ""
		if inst.IsPaid {
			paid = "是"
		}
		if inst.ActualPaymentDate != nil {
			paidOn = inst.ActualPaymentDate.Format(models.DateLayout)
		}
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), i+1)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), inst.DueDate.Format(models.DateLayout))
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), money(inst.PrincipalComponent))
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), money(inst.InterestComponent))
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), money(inst.ExtraCharges))
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), money(inst.TotalInstallmentAmount))
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), paid)
		f.SetCellValue(sheet, fmt.Sprintf("H%d", row), paidOn)
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("H%d", row), styles.data)
	}

	s := st.Summary
	summaryRow := len(st.Installments) + 2
	f.SetCellValue(sheet, fmt.Sprintf("A%d", summaryRow), "合计")
	f.MergeCell(sheet, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("C%d", summaryRow))
	f.SetCellValue(sheet, fmt.Sprintf("D%d", summaryRow), money(s.TotalInterest))
	f.SetCellValue(sheet, fmt.Sprintf("F%d", summaryRow), money(s.TotalFlow))
	f.SetCellValue(sheet, fmt.Sprintf("G%d", summaryRow), fmt.Sprintf("已付 %s", s.TotalPaid.StringFixed(2)))
	f.SetCellValue(sheet, fmt.Sprintf("H%d", summaryRow), fmt.Sprintf("未付 %s", s.TotalRemaining.StringFixed(2)))
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("H%d", summaryRow), styles.summary)
	return f, nil
}
