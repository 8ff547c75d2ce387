package api

import (
	"encoding/json"

	"ledger/service"

	"github.com/gin-gonic/gin"
)

// LoanHandler 银行贷款与月供处理器
type LoanHandler struct {
	ledger *service.Ledger
}

func NewLoanHandler(l *service.Ledger) *LoanHandler {
	return &LoanHandler{ledger: l}
}

type LoanRequest struct {
	BankName               string      `json:"bank_name" binding:"required" example:"NBE"`
	LoanType               string      `json:"loan_type" example:"commercial"`
	TotalLoanAmount        json.Number `json:"total_loan_amount" example:"120000"`
	InterestRatePercentage json.Number `json:"interest_rate_percentage" example:"6"`
	LoanPeriodMonths       int         `json:"loan_period_months" example:"12"`
	StartDate              string      `json:"start_date" example:"2024-01-01"`
	IsActive               *bool       `json:"is_active"`
}

func (r LoanRequest) input() (service.LoanInput, error) {
	start, err := optionalDate("start_date", r.StartDate)
	if err != nil {
		return service.LoanInput{}, err
	}
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return service.LoanInput{
		BankName:               r.BankName,
		LoanType:               r.LoanType,
		TotalLoanAmount:        r.TotalLoanAmount.String(),
		InterestRatePercentage: r.InterestRatePercentage.String(),
		LoanPeriodMonths:       r.LoanPeriodMonths,
		StartDate:              start,
		IsActive:               active,
	}, nil
}

// Create 创建贷款并生成月供
func (h *LoanHandler) Create(c *gin.Context) {
	var req LoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	in, err := req.input()
	if err != nil {
		RespondError(c, err, "")
		return
	}
	loan, err := h.ledger.CreateLoan(c.Request.Context(), in)
	if err != nil {
		RespondError(c, err, "创建贷款失败")
		return
	}
	SuccessWithMessage(c, "创建成功", loan)
}

// List 贷款列表
func (h *LoanHandler) List(c *gin.Context) {
	list, err := h.ledger.ListLoans(c.Request.Context())
	if err != nil {
		RespondError(c, err, "查询贷款失败")
		return
	}
	Success(c, ListResponse{Total: len(list), List: list})
}

// Get 贷款详情与月供
func (h *LoanHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	loan, err := h.ledger.GetLoan(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err, "查询贷款失败")
		return
	}
	Success(c, loan)
}

// Update 修改贷款描述与启用状态
func (h *LoanHandler) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req LoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	in, err := req.input()
	if err != nil {
		RespondError(c, err, "")
		return
	}
	if req.IsActive == nil {
		current, err := h.ledger.GetLoan(c.Request.Context(), id)
		if err != nil {
			RespondError(c, err, "查询贷款失败")
			return
		}
		in.IsActive = current.IsActive
	}
	loan, err := h.ledger.UpdateLoan(c.Request.Context(), id, in)
	if err != nil {
		RespondError(c, err, "修改贷款失败")
		return
	}
	SuccessWithMessage(c, "更新成功", loan)
}

type InstallmentPaidRequest struct {
	IsPaid *bool `json:"is_paid" binding:"required"`
}

// SetPaid 设置月供已付状态
func (h *LoanHandler) SetPaid(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req InstallmentPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	inst, err := h.ledger.SetInstallmentPaid(c.Request.Context(), id, *req.IsPaid)
	if err != nil {
		RespondError(c, err, "更新月供失败")
		return
	}
	SuccessWithMessage(c, "更新成功", inst)
}

// Toggle 反转月供已付状态
func (h *LoanHandler) Toggle(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	inst, err := h.ledger.ToggleInstallment(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err, "更新月供失败")
		return
	}
	SuccessWithMessage(c, "更新成功", inst)
}

type InstallmentChargesRequest struct {
	ExtraCharges json.Number `json:"extra_charges" binding:"required" example:"15"`
}

// UpdateCharges 修改月供附加费用
func (h *LoanHandler) UpdateCharges(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req InstallmentChargesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	inst, err := h.ledger.UpdateInstallmentCharges(c.Request.Context(), id, req.ExtraCharges.String())
	if err != nil {
		RespondError(c, err, "更新附加费用失败")
		return
	}
	SuccessWithMessage(c, "已重新计算月供总额", inst)
}
