package api

import (
	"encoding/json"
	"strconv"

	"ledger/models"
	"ledger/service"

	"github.com/gin-gonic/gin"
)

// TransactionHandler 进/出货处理器
type TransactionHandler struct {
	ledger *service.Ledger
}

func NewTransactionHandler(l *service.Ledger) *TransactionHandler {
	return &TransactionHandler{ledger: l}
}

type CreateTransactionRequest struct {
	Date          string           `json:"date" example:"2024-03-15"`
	Direction     models.Direction `json:"direction" binding:"required" example:"out"`
	ProductID     uint             `json:"product_id" binding:"required"`
	ContactID     uint             `json:"contact_id" binding:"required"`
	Weight        json.Number      `json:"weight" binding:"required" example:"10"`
	PricePerKg    json.Number      `json:"price_per_kg" binding:"required" example:"50"`
	PaidAmountNow json.Number      `json:"paid_amount_now" example:"0"`
	Notes         string           `json:"notes"`
}

// Create 登记交易
func (h *TransactionHandler) Create(c *gin.Context) {
	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	date, err := optionalDate("date", req.Date)
	if err != nil {
		RespondError(c, err, "")
		return
	}
	t, err := h.ledger.CreateTransaction(c.Request.Context(), service.TransactionInput{
		Date:          date,
		Direction:     req.Direction,
		ProductID:     req.ProductID,
		ContactID:     req.ContactID,
		Weight:        req.Weight.String(),
		PricePerKg:    req.PricePerKg.String(),
		PaidAmountNow: req.PaidAmountNow.String(),
		Notes:         req.Notes,
	})
	if err != nil {
		RespondError(c, err, "登记交易失败")
		return
	}
	SuccessWithMessage(c, "登记成功", t)
}

// List 交易列表，支持 period/direction/contact_id/product_id 过滤
func (h *TransactionHandler) List(c *gin.Context) {
	rng, err := periodRange(c, h.ledger.Today())
	if err != nil {
		RespondError(c, err, "")
		return
	}
	f := service.TransactionFilter{Range: rng, Direction: models.Direction(c.Query("direction"))}
	if f.Direction != "" && !f.Direction.Valid() {
		BadRequest(c, "direction 必须为 in 或 out")
		return
	}
	if v := c.Query("contact_id"); v != "" {
		id, _ := strconv.ParseUint(v, 10, 64)
		f.ContactID = uint(id)
	}
	if v := c.Query("product_id"); v != "" {
		id, _ := strconv.ParseUint(v, 10, 64)
		f.ProductID = uint(id)
	}
	f.Limit, _ = strconv.Atoi(c.Query("limit"))

	list, err := h.ledger.ListTransactions(c.Request.Context(), f)
	if err != nil {
		RespondError(c, err, "查询交易失败")
		return
	}
	Success(c, ListResponse{Total: len(list), List: list})
}

// Get 交易详情
func (h *TransactionHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	t, err := h.ledger.GetTransaction(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err, "查询交易失败")
		return
	}
	Success(c, t)
}

// Delete 删除交易并冲回库存和现金
func (h *TransactionHandler) Delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.ledger.DeleteTransaction(c.Request.Context(), id); err != nil {
		RespondError(c, err, "删除交易失败")
		return
	}
	SuccessWithMessage(c, "删除成功", nil)
}

// PaymentHandler 收/付款处理器
type PaymentHandler struct {
	ledger *service.Ledger
}

func NewPaymentHandler(l *service.Ledger) *PaymentHandler {
	return &PaymentHandler{ledger: l}
}

type PaymentRequest struct {
	Amount   json.Number `json:"amount" binding:"required" example:"200"`
	DatePaid string      `json:"date_paid" example:"2024-03-15"`
	Notes    string      `json:"notes"`
}

func (r PaymentRequest) input() (service.PaymentInput, error) {
	date, err := optionalDate("date_paid", r.DatePaid)
	if err != nil {
		return service.PaymentInput{}, err
	}
	return service.PaymentInput{Amount: r.Amount.String(), DatePaid: date, Notes: r.Notes}, nil
}

// Create 在财务记录下登记付款
func (h *PaymentHandler) Create(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	in, err := req.input()
	if err != nil {
		RespondError(c, err, "")
		return
	}
	p, err := h.ledger.RecordPayment(c.Request.Context(), id, in)
	if err != nil {
		RespondError(c, err, "登记付款失败")
		return
	}
	SuccessWithMessage(c, p.Notes, p)
}

// List 财务记录下的付款
func (h *PaymentHandler) List(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	list, err := h.ledger.ListPayments(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err, "查询付款失败")
		return
	}
	Success(c, ListResponse{Total: len(list), List: list})
}

// Update 修改付款
func (h *PaymentHandler) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	in, err := req.input()
	if err != nil {
		RespondError(c, err, "")
		return
	}
	p, err := h.ledger.UpdatePayment(c.Request.Context(), id, in)
	if err != nil {
		RespondError(c, err, "修改付款失败")
		return
	}
	SuccessWithMessage(c, "更新成功", p)
}

// Delete 删除付款
func (h *PaymentHandler) Delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.ledger.DeletePayment(c.Request.Context(), id); err != nil {
		RespondError(c, err, "删除付款失败")
		return
	}
	SuccessWithMessage(c, "删除成功", nil)
}
