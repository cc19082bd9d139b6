package handler

import (
	"time"

	"money-tracking/internal/ledger"
	"money-tracking/internal/util"

	"github.com/gin-gonic/gin"
)

// PlanificationHandler serves plans, their items and settlement.
type PlanificationHandler struct {
	Ledger *ledger.Service
}

func NewPlanificationHandler(svc *ledger.Service) *PlanificationHandler {
	return &PlanificationHandler{Ledger: svc}
}

type createPlanificationReq struct {
	Title    string `json:"title" binding:"required,max=128"`
	Deadline string `json:"deadline"`
}

type addItemReq struct {
	Type       string  `json:"type" binding:"required,oneof=income expense"`
	Amount     int64   `json:"amount"`
	AmountText string  `json:"amount_text"`
	CategoryID *string `json:"category_id"`
	Note       string  `json:"note" binding:"max=255"`
}

type deadlineReq struct {
	Deadline string `json:"deadline"` // empty clears it
}

type validateReq struct {
	AccountID string `json:"account_id" binding:"required"`
}

func deadlineOf(s string) (*time.Time, bool) {
	if s == "" {
		return nil, true
	}
	t, ok := parseTime(s)
	if !ok {
		return nil, false
	}
	return &t, true
}

func (h *PlanificationHandler) CreatePlanification(c *gin.Context) {
	var req createPlanificationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid parameters")
		return
	}
	deadline, ok := deadlineOf(req.Deadline)
	if !ok {
		badRequest(c, "invalid deadline")
		return
	}
	p, err := h.Ledger.CreatePlanification(c.Request.Context(), req.Title, deadline)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"planification": p})
}

// ListPlanifications accepts an optional ?status=pending|completed.
func (h *PlanificationHandler) ListPlanifications(c *gin.Context) {
	items, err := h.Ledger.ListPlanifications(c.Request.Context(), c.Query("status"))
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"items": items})
}

func (h *PlanificationHandler) GetPlanification(c *gin.Context) {
	p, err := h.Ledger.GetPlanification(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"planification": p})
}

func (h *PlanificationHandler) AddItem(c *gin.Context) {
	var req addItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid parameters")
		return
	}
	amount, ok := amountOf(req.Amount, req.AmountText)
	if !ok {
		badRequest(c, "please enter a valid amount")
		return
	}
	item, err := h.Ledger.AddItem(c.Request.Context(), c.Param("id"), ledger.ItemInput{
		Amount:     amount,
		Type:       req.Type,
		CategoryID: req.CategoryID,
		Note:       req.Note,
	})
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"item": item})
}

func (h *PlanificationHandler) RemoveItem(c *gin.Context) {
	if err := h.Ledger.RemoveItem(c.Request.Context(), c.Param("itemId")); err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"message": "deleted"})
}

func (h *PlanificationHandler) UpdateDeadline(c *gin.Context) {
	var req deadlineReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid parameters")
		return
	}
	deadline, ok := deadlineOf(req.Deadline)
	if !ok {
		badRequest(c, "invalid deadline")
		return
	}
	p, err := h.Ledger.UpdateDeadline(c.Request.Context(), c.Param("id"), deadline)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"planification": p})
}

func (h *PlanificationHandler) DeletePlanification(c *gin.Context) {
	if err := h.Ledger.DeletePlanification(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"message": "deleted"})
}

// ValidatePlanification settles the plan on the given account.
func (h *PlanificationHandler) ValidatePlanification(c *gin.Context) {
	var req validateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "account_id is required")
		return
	}
	if err := h.Ledger.Validate(c.Request.Context(), c.Param("id"), req.AccountID); err != nil {
		fail(c, err)
		return
	}
	p, err := h.Ledger.GetPlanification(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"planification": p})
}

// CheckExpired runs the expiry sweep on demand, e.g. on app focus.
func (h *PlanificationHandler) CheckExpired(c *gin.Context) {
	n, err := h.Ledger.CheckExpired(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"expired": n})
}
