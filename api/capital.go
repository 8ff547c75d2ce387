package api

import (
	"encoding/json"
	"strconv"

	"ledger/service"

	"github.com/gin-gonic/gin"
)

// CapitalHandler 现金余额处理器
type CapitalHandler struct {
	capital *service.CapitalService
}

func NewCapitalHandler(s *service.CapitalService) *CapitalHandler {
	return &CapitalHandler{capital: s}
}

// Get 当前余额
func (h *CapitalHandler) Get(c *gin.Context) {
	balance, err := h.capital.Balance(c.Request.Context())
	if err != nil {
		RespondError(c, err, "查询现金余额失败")
		return
	}
	Success(c, balance)
}

type SetCapitalRequest struct {
	Amount json.Number `json:"amount" binding:"required" example:"50000"`
	Note   string      `json:"note"`
}

// Set 设定余额，差额记为手工调整
func (h *CapitalHandler) Set(c *gin.Context) {
	var req SetCapitalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	amount, err := service.ParseDecimal("amount", req.Amount.String())
	if err != nil {
		RespondError(c, err, "")
		return
	}
	balance, err := h.capital.Set(c.Request.Context(), amount, req.Note)
	if err != nil {
		RespondError(c, err, "设定现金余额失败")
		return
	}
	SuccessWithMessage(c, "更新成功", balance)
}

// Movements 最近的资金流水，limit 默认 50
func (h *CapitalHandler) Movements(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 0 {
		BadRequest(c, "limit 必须为非负整数")
		return
	}
	list, err := h.capital.Movements(c.Request.Context(), limit)
	if err != nil {
		RespondError(c, err, "查询资金流水失败")
		return
	}
	Success(c, ListResponse{Total: len(list), List: list})
}
