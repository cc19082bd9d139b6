package handler

import (
	"money-tracking/internal/ledger"
	"money-tracking/internal/util"

	"github.com/gin-gonic/gin"
)

// AccountHandler serves accounts and their derived balances.
type AccountHandler struct {
	Ledger *ledger.Service
}

func NewAccountHandler(svc *ledger.Service) *AccountHandler {
	return &AccountHandler{Ledger: svc}
}

type createAccountReq struct {
	Name           string `json:"name" binding:"required,max=64"`
	Type           string `json:"type" binding:"required,oneof=bank cash"`
	Icon           string `json:"icon" binding:"max=32"`
	InitialBalance int64  `json:"initial_balance"`
}

type updateAccountReq struct {
	Name string `json:"name" binding:"required,max=64"`
	Icon string `json:"icon" binding:"max=32"`
}

func (h *AccountHandler) ListAccounts(c *gin.Context) {
	items, err := h.Ledger.ListAccounts(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	var worth int64
	for _, a := range items {
		worth += a.Balance
	}
	util.Success(c, util.Response{
		"items":     items,
		"net_worth": worth,
	})
}

func (h *AccountHandler) CreateAccount(c *gin.Context) {
	var req createAccountReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid parameters")
		return
	}
	acc, err := h.Ledger.CreateAccount(c.Request.Context(), ledger.AccountInput{
		Name:           req.Name,
		Type:           req.Type,
		Icon:           req.Icon,
		InitialBalance: req.InitialBalance,
	})
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"account": acc})
}

func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	var req updateAccountReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid parameters")
		return
	}
	acc, err := h.Ledger.UpdateAccount(c.Request.Context(), c.Param("id"), req.Name, req.Icon)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"account": acc})
}

func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	if err := h.Ledger.DeleteAccount(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"message": "deleted"})
}

func (h *AccountHandler) GetBalance(c *gin.Context) {
	b, err := h.Ledger.AccountBalance(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"balance": b})
}
