package api

import (
	"context"
	"encoding/json"
	"strconv"

	"ledger/models"
	"ledger/service"

	"github.com/gin-gonic/gin"
)

// CashFlowHandler 收入、家庭支出与联系人费用处理器
type CashFlowHandler struct {
	ledger *service.Ledger
}

func NewCashFlowHandler(l *service.Ledger) *CashFlowHandler {
	return &CashFlowHandler{ledger: l}
}

type CashFlowRequest struct {
	Amount      json.Number      `json:"amount" binding:"required" example:"500"`
	Date        string           `json:"date" example:"2024-03-15"`
	Description string           `json:"description"`
	ContactID   uint             `json:"contact_id"`
	PayerType   models.PayerType `json:"payer_type" example:"us"`
}

func (h *CashFlowHandler) bind(c *gin.Context) (service.CashFlowInput, bool) {
	var req CashFlowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return service.CashFlowInput{}, false
	}
	date, err := optionalDate("date", req.Date)
	if err != nil {
		RespondError(c, err, "")
		return service.CashFlowInput{}, false
	}
	return service.CashFlowInput{
		Amount:      req.Amount.String(),
		Date:        date,
		Description: req.Description,
		ContactID:   req.ContactID,
		PayerType:   req.PayerType,
	}, true
}

func (h *CashFlowHandler) remove(c *gin.Context, del func(context.Context, uint) error, fallback string) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := del(c.Request.Context(), id); err != nil {
		RespondError(c, err, fallback)
		return
	}
	SuccessWithMessage(c, "删除成功", nil)
}

// CreateIncome 登记其他收入
func (h *CashFlowHandler) CreateIncome(c *gin.Context) {
	in, ok := h.bind(c)
	if !ok {
		return
	}
	rec, err := h.ledger.CreateIncome(c.Request.Context(), in)
	if err != nil {
		RespondError(c, err, "登记收入失败")
		return
	}
	SuccessWithMessage(c, "创建成功", rec)
}

// ListIncomes 收入列表
func (h *CashFlowHandler) ListIncomes(c *gin.Context) {
	rng, err := periodRange(c, h.ledger.Today())
	if err != nil {
		RespondError(c, err, "")
		return
	}
	list, err := h.ledger.ListIncomes(c.Request.Context(), rng)
	if err != nil {
		RespondError(c, err, "查询收入失败")
		return
	}
	Success(c, ListResponse{Total: len(list), List: list})
}

// DeleteIncome 删除收入
func (h *CashFlowHandler) DeleteIncome(c *gin.Context) {
	h.remove(c, h.ledger.DeleteIncome, "删除收入失败")
}

// CreateHomeExpense 登记家庭支出
func (h *CashFlowHandler) CreateHomeExpense(c *gin.Context) {
	in, ok := h.bind(c)
	if !ok {
		return
	}
	rec, err := h.ledger.CreateHomeExpense(c.Request.Context(), in)
	if err != nil {
		RespondError(c, err, "登记家庭支出失败")
		return
	}
	SuccessWithMessage(c, "创建成功", rec)
}

// ListHomeExpenses 家庭支出列表
func (h *CashFlowHandler) ListHomeExpenses(c *gin.Context) {
	rng, err := periodRange(c, h.ledger.Today())
	if err != nil {
		RespondError(c, err, "")
		return
	}
	list, err := h.ledger.ListHomeExpenses(c.Request.Context(), rng)
	if err != nil {
		RespondError(c, err, "查询家庭支出失败")
		return
	}
	Success(c, ListResponse{Total: len(list), List: list})
}

// DeleteHomeExpense 删除家庭支出
func (h *CashFlowHandler) DeleteHomeExpense(c *gin.Context) {
	h.remove(c, h.ledger.DeleteHomeExpense, "删除家庭支出失败")
}

// CreateContactExpense 登记联系人费用
func (h *CashFlowHandler) CreateContactExpense(c *gin.Context) {
	in, ok := h.bind(c)
	if !ok {
		return
	}
	rec, err := h.ledger.CreateContactExpense(c.Request.Context(), in)
	if err != nil {
		RespondError(c, err, "登记联系人费用失败")
		return
	}
	SuccessWithMessage(c, "创建成功", rec)
}

// ListContactExpenses 联系人费用列表，可按 contact_id 过滤
func (h *CashFlowHandler) ListContactExpenses(c *gin.Context) {
	rng, err := periodRange(c, h.ledger.Today())
	if err != nil {
		RespondError(c, err, "")
		return
	}
	contactID, _ := strconv.ParseUint(c.Query("contact_id"), 10, 64)
	list, err := h.ledger.ListContactExpenses(c.Request.Context(), uint(contactID), rng)
	if err != nil {
		RespondError(c, err, "查询联系人费用失败")
		return
	}
	Success(c, ListResponse{Total: len(list), List: list})
}

// DeleteContactExpense 删除联系人费用
func (h *CashFlowHandler) DeleteContactExpense(c *gin.Context) {
	h.remove(c, h.ledger.DeleteContactExpense, "删除联系人费用失败")
}
