package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"ledger/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Reporter 只读的报表聚合，不修改任何账务数据
type Reporter struct {
	db   *gorm.DB
	opts Options
	now  func() time.Time
}

// NewReporter 创建报表服务
func NewReporter(db *gorm.DB, opts Options) *Reporter {
	return &Reporter{db: db, opts: opts, now: time.Now}
}

// SetClock 替换"今天"的来源
func (r *Reporter) SetClock(now func() time.Time) {
	r.now = now
}

// Today 当前日期
func (r *Reporter) Today() time.Time {
	return models.DateOf(r.now())
}

// TransactionView 交易及其未付余额
type TransactionView struct {
	models.Transaction
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	IsFullyPaid     bool            `json:"is_fully_paid"`
}

func viewOf(t models.Transaction) TransactionView {
	v := TransactionView{Transaction: t, RemainingAmount: t.RemainingAmount()}
	v.IsFullyPaid = !v.RemainingAmount.IsPositive()
	return v
}

func (r *Reporter) transactions(ctx context.Context, rng DateRange, where ...interface{}) ([]models.Transaction, error) {
	q := rng.apply(r.db.WithContext(ctx), "date").
		Preload("Product").Preload("Contact").Preload("FinancialRecord")
	if len(where) > 0 {
		q = q.Where(where[0], where[1:]...)
	}
	var list []models.Transaction
	if err := q.Order("date DESC, id DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("查询交易失败: %w", err)
	}
	return list, nil
}

// BankSummary 启用中贷款的概要
type BankSummary struct {
	LoanID                uint            `json:"loan_id"`
	BankName              string          `json:"bank_name"`
	TotalFlow             decimal.Decimal `json:"total_flow"`
	TotalInterest         decimal.Decimal `json:"total_interest"`
	TotalPaid             decimal.Decimal `json:"total_paid"`
	TotalRemaining        decimal.Decimal `json:"total_remaining"`
	NextInstallmentAmount decimal.Decimal `json:"next_installment_amount"`
	NextInstallmentDate   *time.Time      `json:"next_installment_date"`
}

// BankStatement 贷款对账单
type BankStatement struct {
	Loan         *models.Loan             `json:"loan"`
	Installments []models.LoanInstallment `json:"installments"`
	Summary      BankSummary              `json:"summary"`
}

// ActiveLoan 第一笔启用中的贷款及其月供，没有时返回 nil
func (r *Reporter) ActiveLoan(ctx context.Context) (*models.Loan, error) {
	var loans []models.Loan
	err := r.db.WithContext(ctx).
		Preload("Installments", func(db *gorm.DB) *gorm.DB { return db.Order("due_date ASC") }).
		Where("is_active = ?", true).Order("id ASC").Limit(1).Find(&loans).Error
	if err != nil {
		return nil, fmt.Errorf("查询贷款失败: %w", err)
	}
	if len(loans) == 0 {
		return nil, nil
	}
	return &loans[0], nil
}

// BankStatement 启用中贷款的月供明细与汇总
func (r *Reporter) BankStatement(ctx context.Context) (*BankStatement, error) {
	loan, err := r.ActiveLoan(ctx)
	if err != nil {
		return nil, err
	}
	st := &BankStatement{Installments: []models.LoanInstallment{}}
	if loan == nil {
		return st, nil
	}
	st.Loan = loan
	st.Installments = loan.Installments
	st.Summary = summarizeLoan(loan, r.Today())
	return st, nil
}

func summarizeLoan(loan *models.Loan, today time.Time) BankSummary {
	s := BankSummary{LoanID: loan.ID, BankName: loan.BankName}
	for _, i := range loan.Installments {
		s.TotalFlow = s.TotalFlow.Add(i.TotalInstallmentAmount)
		s.TotalInterest = s.TotalInterest.Add(i.InterestComponent)
		if i.IsPaid {
			s.TotalPaid = s.TotalPaid.Add(i.TotalInstallmentAmount)
			continue
		}
		if s.NextInstallmentDate == nil && !i.DueDate.Before(today) {
			d := i.DueDate
			s.NextInstallmentDate = &d
			s.NextInstallmentAmount = i.TotalInstallmentAmount
		}
	}
	s.TotalRemaining = s.TotalFlow.Sub(s.TotalPaid)
	return s
}

// InstallmentAlerts 即将到期与已逾期的未付月供
type InstallmentAlerts struct {
	Upcoming []models.LoanInstallment `json:"upcoming"`
	Overdue  []models.LoanInstallment `json:"overdue"`
}

// Empty 没有任何提醒
func (a *InstallmentAlerts) Empty() bool {
	return len(a.Upcoming) == 0 && len(a.Overdue) == 0
}

// Alerts 今天起 window 天内到期的和已逾期的未付月供；window 小于 0 时使用配置值
func (r *Reporter) Alerts(ctx context.Context, window int) (*InstallmentAlerts, error) {
	if window < 0 {
		window = r.opts.AlertWindowDays
	}
	today := r.Today()
	out := &InstallmentAlerts{}
	if err := r.db.WithContext(ctx).Preload("Loan").
		Where("is_paid = ? AND due_date >= ? AND due_date <= ?", false, today, today.AddDate(0, 0, window)).
		Order("due_date ASC").Find(&out.Upcoming).Error; err != nil {
		return nil, fmt.Errorf("查询到期月供失败: %w", err)
	}
	if err := r.db.WithContext(ctx).Preload("Loan").
		Where("is_paid = ? AND due_date < ?", false, today).
		Order("due_date ASC").Find(&out.Overdue).Error; err != nil {
		return nil, fmt.Errorf("查询逾期月供失败: %w", err)
	}
	return out, nil
}

// Dashboard 仪表盘汇总
type Dashboard struct {
	TotalSales       decimal.Decimal    `json:"total_sales"`
	TotalPurchases   decimal.Decimal    `json:"total_purchases"`
	CostOfGoodsSold  decimal.Decimal    `json:"cost_of_goods_sold"`
	NetProfit        decimal.Decimal    `json:"net_profit"`
	Receivable       decimal.Decimal    `json:"receivable"`
	Payable          decimal.Decimal    `json:"payable"`
	ReceivableDetail []TransactionView  `json:"receivable_details"`
	PayableDetail    []TransactionView  `json:"debt_details"`
	RecentSales      []TransactionView  `json:"recent_sales"`
	Inventory        []models.Product   `json:"inventory"`
	LowStock         []models.Product   `json:"low_stock"`
	Bank             *BankSummary       `json:"bank_summary"`
	Alerts           *InstallmentAlerts `json:"alerts"`
	Capital          *decimal.Decimal   `json:"capital"`
}

// Dashboard 按日期范围汇总销售、采购、利润、应收应付、库存和贷款
func (r *Reporter) Dashboard(ctx context.Context, rng DateRange) (*Dashboard, error) {
	list, err := r.transactions(ctx, rng)
	if err != nil {
		return nil, err
	}
	d := &Dashboard{
		ReceivableDetail: []TransactionView{},
		PayableDetail:    []TransactionView{},
		RecentSales:      []TransactionView{},
	}
	for _, t := range list {
		v := viewOf(t)
		switch t.Direction {
		case models.DirectionOut:
			d.TotalSales = d.TotalSales.Add(t.TotalPrice)
			if t.Product != nil {
				d.CostOfGoodsSold = d.CostOfGoodsSold.Add(t.Weight.Mul(t.Product.PurchasePricePerKg))
			}
			if v.RemainingAmount.IsPositive() {
				d.Receivable = d.Receivable.Add(v.RemainingAmount)
				d.ReceivableDetail = append(d.ReceivableDetail, v)
			}
			if len(d.RecentSales) < r.opts.RecentSalesLimit {
				d.RecentSales = append(d.RecentSales, v)
			}
		case models.DirectionIn:
			d.TotalPurchases = d.TotalPurchases.Add(t.TotalPrice)
			if v.RemainingAmount.IsPositive() {
				d.Payable = d.Payable.Add(v.RemainingAmount)
				d.PayableDetail = append(d.PayableDetail, v)
			}
		}
	}
	d.CostOfGoodsSold = d.CostOfGoodsSold.Round(2)
	d.NetProfit = d.TotalSales.Sub(d.CostOfGoodsSold)
	byDateAsc := func(s []TransactionView) {
		sort.SliceStable(s, func(i, j int) bool { return s[i].Date.Before(s[j].Date) })
	}
	byDateAsc(d.ReceivableDetail)
	byDateAsc(d.PayableDetail)

	db := r.db.WithContext(ctx)
	if err := db.Order("name ASC").Find(&d.Inventory).Error; err != nil {
		return nil, fmt.Errorf("查询库存失败: %w", err)
	}
	d.LowStock = []models.Product{}
	for _, p := range d.Inventory {
		if p.QuantityAvailable.LessThan(r.opts.LowStockThreshold) {
			d.LowStock = append(d.LowStock, p)
		}
	}

	loan, err := r.ActiveLoan(ctx)
	if err != nil {
		return nil, err
	}
	if loan != nil {
		s := summarizeLoan(loan, r.Today())
		d.Bank = &s
	}
	if d.Alerts, err = r.Alerts(ctx, -1); err != nil {
		return nil, err
	}

	var c models.Capital
	res := db.Limit(1).Find(&c, models.CapitalID)
	if res.Error != nil {
		return nil, fmt.Errorf("查询现金余额失败: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		d.Capital = &c.InitialAmount
	}
	return d, nil
}

// ContactBalance 联系人往来净额，正数表示对方欠我们，负数表示我们欠对方
type ContactBalance struct {
	Contact           models.Contact  `json:"contact"`
	SalesToThem       decimal.Decimal `json:"sales_to_them"`
	ExpensesWePaid    decimal.Decimal `json:"expenses_we_paid"`
	PaymentsFromThem  decimal.Decimal `json:"payments_from_them"`
	PurchasesFromThem decimal.Decimal `json:"purchases_from_them"`
	ExpensesTheyPaid  decimal.Decimal `json:"expenses_they_paid"`
	PaymentsToThem    decimal.Decimal `json:"payments_to_them"`
	Net               decimal.Decimal `json:"net"`
}

// compute net = (销售 + 我方垫付 - 对方付款) - (采购 + 对方代付 - 我方付款)
func (b *ContactBalance) compute() {
	owedToUs := b.SalesToThem.Add(b.ExpensesWePaid).Sub(b.PaymentsFromThem)
	owedByUs := b.PurchasesFromThem.Add(b.ExpensesTheyPaid).Sub(b.PaymentsToThem)
	b.Net = owedToUs.Sub(owedByUs)
}

// ContactBalances 每个联系人在日期范围内的往来净额
func (r *Reporter) ContactBalances(ctx context.Context, rng DateRange) ([]ContactBalance, error) {
	var contacts []models.Contact
	if err := r.db.WithContext(ctx).Order("name ASC, id ASC").Find(&contacts).Error; err != nil {
		return nil, fmt.Errorf("查询联系人失败: %w", err)
	}
	txs, err := r.transactions(ctx, rng)
	if err != nil {
		return nil, err
	}
	var expenses []models.ContactExpense
	if err := rng.apply(r.db.WithContext(ctx), "date").Find(&expenses).Error; err != nil {
		return nil, fmt.Errorf("查询联系人费用失败: %w", err)
	}

	index := make(map[uint]*ContactBalance, len(contacts))
	out := make([]ContactBalance, len(contacts))
	for i, c := range contacts {
		out[i].Contact = c
		index[c.ID] = &out[i]
	}
	for _, t := range txs {
		b := index[t.ContactID]
		if b == nil {
			continue
		}
		paid := decimal.Zero
		if t.FinancialRecord != nil {
			paid = t.FinancialRecord.AmountPaid
		}
		if t.Direction == models.DirectionOut {
			b.SalesToThem = b.SalesToThem.Add(t.TotalPrice)
			b.PaymentsFromThem = b.PaymentsFromThem.Add(paid)
		} else {
			b.PurchasesFromThem = b.PurchasesFromThem.Add(t.TotalPrice)
			b.PaymentsToThem = b.PaymentsToThem.Add(paid)
		}
	}
	for _, e := range expenses {
		b := index[e.ContactID]
		if b == nil {
			continue
		}
		if e.PayerType == models.PayerUs {
			b.ExpensesWePaid = b.ExpensesWePaid.Add(e.Amount)
		} else {
			b.ExpensesTheyPaid = b.ExpensesTheyPaid.Add(e.Amount)
		}
	}
	for i := range out {
		out[i].compute()
	}
	return out, nil
}

// PaymentEntry 联系人付款历史中的一条
type PaymentEntry struct {
	models.PaymentInstallment
	TransactionID   uint             `json:"transaction_id"`
	Direction       models.Direction `json:"direction"`
	TransactionDate time.Time        `json:"transaction_date"`
	ProductName     string           `json:"product_name"`
}

// ContactStatement 联系人对账单
type ContactStatement struct {
	Contact        models.Contact          `json:"contact"`
	Transactions   []TransactionView       `json:"transactions"`
	TotalOut       decimal.Decimal         `json:"total_out"`
	TotalIn        decimal.Decimal         `json:"total_in"`
	BalanceUs      decimal.Decimal         `json:"balance_us"`
	BalanceThem    decimal.Decimal         `json:"balance_them"`
	NetBalance     decimal.Decimal         `json:"net_balance"`
	TotalRemaining decimal.Decimal         `json:"total_remaining"`
	Payments       []PaymentEntry          `json:"payment_history"`
	Expenses       []models.ContactExpense `json:"expenses"`
	Balance        ContactBalance          `json:"balance"`
}

// ContactStatement 单个联系人的交易、余额与付款历史
func (r *Reporter) ContactStatement(ctx context.Context, contactID uint) (*ContactStatement, error) {
	var c models.Contact
	if err := r.db.WithContext(ctx).First(&c, contactID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("联系人 %d: %w", contactID, ErrNotFound)
		}
		return nil, fmt.Errorf("查询联系人失败: %w", err)
	}
	var txs []models.Transaction
	err := r.db.WithContext(ctx).Preload("Product").
		Preload("FinancialRecord").Preload("FinancialRecord.Installments").
		Where("contact_id = ?", contactID).Order("date DESC, id DESC").Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("查询交易失败: %w", err)
	}

	st := &ContactStatement{Contact: c, Transactions: []TransactionView{}, Payments: []PaymentEntry{}}
	st.Balance.Contact = c
	for _, t := range txs {
		v := viewOf(t)
		st.Transactions = append(st.Transactions, v)
		paid := decimal.Zero
		if t.FinancialRecord != nil {
			paid = t.FinancialRecord.AmountPaid
			name := ""
			if t.Product != nil {
				name = t.Product.Name
			}
			for _, p := range t.FinancialRecord.Installments {
				st.Payments = append(st.Payments, PaymentEntry{
					PaymentInstallment: p,
					TransactionID:      t.ID,
					Direction:          t.Direction,
					TransactionDate:    t.Date,
					ProductName:        name,
				})
			}
		}
		if t.Direction == models.DirectionOut {
			st.TotalOut = st.TotalOut.Add(t.TotalPrice)
			st.BalanceUs = st.BalanceUs.Add(v.RemainingAmount)
			st.Balance.SalesToThem = st.Balance.SalesToThem.Add(t.TotalPrice)
			st.Balance.PaymentsFromThem = st.Balance.PaymentsFromThem.Add(paid)
		} else {
			st.TotalIn = st.TotalIn.Add(t.TotalPrice)
			st.BalanceThem = st.BalanceThem.Add(v.RemainingAmount)
			st.Balance.PurchasesFromThem = st.Balance.PurchasesFromThem.Add(t.TotalPrice)
			st.Balance.PaymentsToThem = st.Balance.PaymentsToThem.Add(paid)
		}
	}
	st.NetBalance = st.BalanceUs.Sub(st.BalanceThem)
	st.TotalRemaining = st.NetBalance.Abs()
	sort.SliceStable(st.Payments, func(i, j int) bool {
		return st.Payments[i].DatePaid.After(st.Payments[j].DatePaid)
	})

	if err := r.db.WithContext(ctx).Where("contact_id = ?", contactID).Order("date DESC, id DESC").Find(&st.Expenses).Error; err != nil {
		return nil, fmt.Errorf("查询联系人费用失败: %w", err)
	}
	for _, e := range st.Expenses {
		if e.PayerType == models.PayerUs {
			st.Balance.ExpensesWePaid = st.Balance.ExpensesWePaid.Add(e.Amount)
		} else {
			st.Balance.ExpensesTheyPaid = st.Balance.ExpensesTheyPaid.Add(e.Amount)
		}
	}
	st.Balance.compute()
	return st, nil
}
