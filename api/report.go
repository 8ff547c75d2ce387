package api

import (
	"ledger/service"

	"github.com/gin-gonic/gin"
)

// ReportHandler 只读报表处理器
type ReportHandler struct {
	reporter *service.Reporter
}

func NewReportHandler(r *service.Reporter) *ReportHandler {
	return &ReportHandler{reporter: r}
}

// Dashboard 仪表盘，支持 period=all|today|week|month|custom
func (h *ReportHandler) Dashboard(c *gin.Context) {
	rng, err := periodRange(c, h.reporter.Today())
	if err != nil {
		RespondError(c, err, "")
		return
	}
	d, err := h.reporter.Dashboard(c.Request.Context(), rng)
	if err != nil {
		RespondError(c, err, "生成仪表盘失败")
		return
	}
	Success(c, d)
}

// ContactBalances 每个联系人的往来净额
func (h *ReportHandler) ContactBalances(c *gin.Context) {
	rng, err := periodRange(c, h.reporter.Today())
	if err != nil {
		RespondError(c, err, "")
		return
	}
	list, err := h.reporter.ContactBalances(c.Request.Context(), rng)
	if err != nil {
		RespondError(c, err, "计算往来净额失败")
		return
	}
	Success(c, ListResponse{Total: len(list), List: list})
}

// ContactStatement 联系人对账单
func (h *ReportHandler) ContactStatement(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	st, err := h.reporter.ContactStatement(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err, "生成对账单失败")
		return
	}
	Success(c, st)
}

// BankStatement 启用中贷款的对账单
func (h *ReportHandler) BankStatement(c *gin.Context) {
	st, err := h.reporter.BankStatement(c.Request.Context())
	if err != nil {
		RespondError(c, err, "生成贷款对账单失败")
		return
	}
	Success(c, st)
}
