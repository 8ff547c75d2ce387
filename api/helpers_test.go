package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"ledger/database"
	"ledger/service"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	dbSeq     atomic.Int64
	testToday = time.Date(2024, 3, 15, 9, 0, 0, 0, time.Local)
)

func init() {
	gin.SetMode(gin.TestMode)
}

// setupMockDB gorm(mysql) + sqlmock
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, func()) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return gormDB, mock, func() {
		sqlDB.Close()
	}
}

// setupLedger 内存 sqlite 上的完整账务服务
func setupLedger(t *testing.T) (*service.Ledger, *service.Reporter) {
	t.Helper()
	dsn := fmt.Sprintf("file:api_%d?mode=memory&cache=shared&_loc=auto", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	opts := service.DefaultOptions()
	l := service.NewLedger(db, service.NewCapitalService(db, nil, opts.CapitalMissing), opts)
	l.SetClock(func() time.Time { return testToday })
	r := service.NewReporter(db, opts)
	r.SetClock(func() time.Time { return testToday })
	return l, r
}

func newLedgerFromDB(db *gorm.DB) *service.Ledger {
	opts := service.DefaultOptions()
	return service.NewLedger(db, service.NewCapitalService(db, nil, opts.CapitalMissing), opts)
}

type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	var req = httptest.NewRequest(method, path, nil)
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp apiResponse
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

// decode 把 data 解析为 map
func decode(t *testing.T, raw json.RawMessage) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &m))
	return m
}
