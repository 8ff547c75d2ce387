package service

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"ledger/database"
	"ledger/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

var testToday = time.Date(2024, 3, 15, 10, 30, 0, 0, time.Local)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_loc=auto", name, dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

type fixture struct {
	db       *gorm.DB
	ledger   *Ledger
	reporter *Reporter
	contact  *models.Contact
	product  *models.Product
}

func newFixture(t *testing.T, mutate ...func(*Options)) *fixture {
	t.Helper()
	opts := DefaultOptions()
	for _, m := range mutate {
		m(&opts)
	}
	db := newTestDB(t)
	l := NewLedger(db, NewCapitalService(db, nil, opts.CapitalMissing), opts)
	l.SetClock(func() time.Time { return testToday })
	r := NewReporter(db, opts)
	r.SetClock(func() time.Time { return testToday })

	ctx := context.Background()
	c, err := l.CreateContact(ctx, ContactInput{Name: "Ahmed", Phone: "0100"})
	require.NoError(t, err)
	p, err := l.CreateProduct(ctx, ProductInput{
		Name: "Cotton", QuantityAvailable: "50", PurchasePricePerKg: "30", SellingPricePerKg: "50",
	})
	require.NoError(t, err)
	return &fixture{db: db, ledger: l, reporter: r, contact: c, product: p}
}

func (f *fixture) setCapital(t *testing.T, amount string) {
	t.Helper()
	_, err := f.ledger.Capital().Set(context.Background(), dec(amount), "")
	require.NoError(t, err)
}

func (f *fixture) balance(t *testing.T) decimal.Decimal {
	t.Helper()
	c, err := f.ledger.Capital().Balance(context.Background())
	require.NoError(t, err)
	return c.InitialAmount
}

func (f *fixture) sale(t *testing.T, weight, price, paidNow string) *models.Transaction {
	t.Helper()
	tr, err := f.ledger.CreateTransaction(context.Background(), TransactionInput{
		Direction: models.DirectionOut, ProductID: f.product.ID, ContactID: f.contact.ID,
		Weight: weight, PricePerKg: price, PaidAmountNow: paidNow,
	})
	require.NoError(t, err)
	return tr
}

func (f *fixture) purchase(t *testing.T, weight, price, paidNow string) *models.Transaction {
	t.Helper()
	tr, err := f.ledger.CreateTransaction(context.Background(), TransactionInput{
		Direction: models.DirectionIn, ProductID: f.product.ID, ContactID: f.contact.ID,
		Weight: weight, PricePerKg: price, PaidAmountNow: paidNow,
	})
	require.NoError(t, err)
	return tr
}

func (f *fixture) stock(t *testing.T) decimal.Decimal {
	t.Helper()
	p, err := f.ledger.GetProduct(context.Background(), f.product.ID)
	require.NoError(t, err)
	return p.QuantityAvailable
}

func (f *fixture) record(t *testing.T, transactionID uint) models.FinancialRecord {
	t.Helper()
	var rec models.FinancialRecord
	require.NoError(t, f.db.Preload("Installments").Where("transaction_id = ?", transactionID).First(&rec).Error)
	return rec
}

func (f *fixture) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}
