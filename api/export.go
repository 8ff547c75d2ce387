package api

import (
	"fmt"
	"log/slog"
	"net/url"

	"ledger/models"
	"ledger/service"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出处理器
type ExportHandler struct {
	ledger   *service.Ledger
	reporter *service.Reporter
}

// NewExportHandler 创建导出处理器
func NewExportHandler(l *service.Ledger, r *service.Reporter) *ExportHandler {
	return &ExportHandler{ledger: l, reporter: r}
}

// Transactions 按周期导出交易为 Excel
func (h *ExportHandler) Transactions(c *gin.Context) {
	today := h.ledger.Today()
	rng, err := periodRange(c, today)
	if err != nil {
		RespondError(c, err, "")
		return
	}
	list, err := h.ledger.ListTransactions(c.Request.Context(), service.TransactionFilter{Range: rng})
	if err != nil {
		RespondError(c, err, "查询交易失败")
		return
	}
	f, err := service.TransactionsWorkbook(list)
	if err != nil {
		RespondError(c, err, "生成 Excel 失败")
		return
	}
	writeWorkbook(c, f, fmt.Sprintf("%s_%s.xlsx", service.TransactionsSheet, today.Format(models.DateLayout)))
}

// BankStatement 导出启用中贷款的月供明细
func (h *ExportHandler) BankStatement(c *gin.Context) {
	st, err := h.reporter.BankStatement(c.Request.Context())
	if err != nil {
		RespondError(c, err, "生成贷款对账单失败")
		return
	}
	f, err := service.BankStatementWorkbook(st)
	if err != nil {
		RespondError(c, err, "生成 Excel 失败")
		return
	}
	writeWorkbook(c, f, fmt.Sprintf("%s_%s.xlsx", service.BankStatementSheet, h.reporter.Today().Format(models.DateLayout)))
}

func writeWorkbook(c *gin.Context, f *excelize.File, filename string) {
	defer f.Close()
	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(filename)))
	if err := f.Write(c.Writer); err != nil {
		slog.Error("写出 Excel 失败", "file", filename, "error", err)
	}
}
