package handler

import (
	"money-tracking/internal/ledger"
	"money-tracking/internal/util"

	"github.com/gin-gonic/gin"
)

type TransferHandler struct {
	Ledger *ledger.Service
}

func NewTransferHandler(svc *ledger.Service) *TransferHandler {
	return &TransferHandler{Ledger: svc}
}

type createTransferReq struct {
	FromAccountID string `json:"from_account_id" binding:"required"`
	ToAccountID   string `json:"to_account_id" binding:"required"`
	Amount        int64  `json:"amount"`
	AmountText    string `json:"amount_text"`
	Note          string `json:"note" binding:"max=255"`
}

func (h *TransferHandler) CreateTransfer(c *gin.Context) {
	var req createTransferReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid parameters")
		return
	}
	amount, ok := amountOf(req.Amount, req.AmountText)
	if !ok {
		badRequest(c, "please enter a valid amount")
		return
	}
	id, err := h.Ledger.RecordTransfer(c.Request.Context(), ledger.TransferInput{
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		Amount:        amount,
		Note:          req.Note,
	})
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"transfer_id": id})
}

func (h *TransferHandler) GetTransfer(c *gin.Context) {
	legs, err := h.Ledger.Transfer(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"legs": legs})
}
