package handler

import (
	"money-tracking/internal/ledger"
	"money-tracking/internal/util"

	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	Ledger *ledger.Service
}

func NewCategoryHandler(svc *ledger.Service) *CategoryHandler {
	return &CategoryHandler{Ledger: svc}
}

type categoryReq struct {
	Name  string `json:"name" binding:"required,max=64"`
	Icon  string `json:"icon" binding:"max=32"`
	Color string `json:"color" binding:"max=16"`
}

// ListCategories accepts an optional ?type= filter.
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	items, err := h.Ledger.ListCategories(c.Request.Context(), c.Query("type"))
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"items": items})
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req categoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid parameters")
		return
	}
	cat, err := h.Ledger.CreateCategory(c.Request.Context(), ledger.CategoryInput(req))
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"category": cat})
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	var req categoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid parameters")
		return
	}
	cat, err := h.Ledger.UpdateCategory(c.Request.Context(), c.Param("id"), ledger.CategoryInput(req))
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"category": cat})
}

func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	if err := h.Ledger.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"message": "deleted"})
}
