package api

import (
	"encoding/json"

	"ledger/service"

	"github.com/gin-gonic/gin"
)

// ContactHandler 联系人处理器
type ContactHandler struct {
	ledger *service.Ledger
}

func NewContactHandler(l *service.Ledger) *ContactHandler {
	return &ContactHandler{ledger: l}
}

type ContactRequest struct {
	Name  string `json:"name" binding:"required" example:"Ahmed"`
	Phone string `json:"phone" example:"0100000000"`
	Notes string `json:"notes"`
}

func (r ContactRequest) input() service.ContactInput {
	return service.ContactInput{Name: r.Name, Phone: r.Phone, Notes: r.Notes}
}

// Create 新建联系人
func (h *ContactHandler) Create(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	contact, err := h.ledger.CreateContact(c.Request.Context(), req.input())
	if err != nil {
		RespondError(c, err, "创建联系人失败")
		return
	}
	SuccessWithMessage(c, "创建成功", contact)
}

// Update 修改联系人
func (h *ContactHandler) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	contact, err := h.ledger.UpdateContact(c.Request.Context(), id, req.input())
	if err != nil {
		RespondError(c, err, "修改联系人失败")
		return
	}
	SuccessWithMessage(c, "更新成功", contact)
}

// Get 查询联系人
func (h *ContactHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	contact, err := h.ledger.GetContact(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err, "查询联系人失败")
		return
	}
	Success(c, contact)
}

// List 联系人列表
func (h *ContactHandler) List(c *gin.Context) {
	list, err := h.ledger.ListContacts(c.Request.Context())
	if err != nil {
		RespondError(c, err, "查询联系人失败")
		return
	}
	Success(c, ListResponse{Total: len(list), List: list})
}

// Delete 删除联系人
func (h *ContactHandler) Delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.ledger.DeleteContact(c.Request.Context(), id); err != nil {
		RespondError(c, err, "删除联系人失败")
		return
	}
	SuccessWithMessage(c, "删除成功", nil)
}

// ProductHandler 商品处理器
type ProductHandler struct {
	ledger *service.Ledger
}

func NewProductHandler(l *service.Ledger) *ProductHandler {
	return &ProductHandler{ledger: l}
}

type ProductRequest struct {
	Name               string      `json:"name" binding:"required" example:"Cotton"`
	QuantityAvailable  json.Number `json:"quantity_available" example:"100"`
	PurchasePricePerKg json.Number `json:"purchase_price_per_kg" example:"30"`
	SellingPricePerKg  json.Number `json:"selling_price_per_kg" example:"50"`
}

func (r ProductRequest) input() service.ProductInput {
	return service.ProductInput{
		Name:               r.Name,
		QuantityAvailable:  r.QuantityAvailable.String(),
		PurchasePricePerKg: r.PurchasePricePerKg.String(),
		SellingPricePerKg:  r.SellingPricePerKg.String(),
	}
}

// Create 新建商品
func (h *ProductHandler) Create(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	p, err := h.ledger.CreateProduct(c.Request.Context(), req.input())
	if err != nil {
		RespondError(c, err, "创建商品失败")
		return
	}
	SuccessWithMessage(c, "创建成功", p)
}

// Update 修改商品名称和单价
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	p, err := h.ledger.UpdateProduct(c.Request.Context(), id, req.input())
	if err != nil {
		RespondError(c, err, "修改商品失败")
		return
	}
	SuccessWithMessage(c, "更新成功", p)
}

// Get 查询商品
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	p, err := h.ledger.GetProduct(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err, "查询商品失败")
		return
	}
	Success(c, p)
}

// List 商品列表
func (h *ProductHandler) List(c *gin.Context) {
	list, err := h.ledger.ListProducts(c.Request.Context())
	if err != nil {
		RespondError(c, err, "查询商品失败")
		return
	}
	Success(c, ListResponse{Total: len(list), List: list})
}

// Delete 删除商品
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.ledger.DeleteProduct(c.Request.Context(), id); err != nil {
		RespondError(c, err, "删除商品失败")
		return
	}
	SuccessWithMessage(c, "删除成功", nil)
}
