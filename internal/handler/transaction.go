package handler

import (
	"time"

	"money-tracking/internal/ledger"
	"money-tracking/internal/util"

	"github.com/gin-gonic/gin"
)

// TransactionHandler serves the transaction feed, single movements and
// statistics.
type TransactionHandler struct {
	Ledger *ledger.Service
}

func NewTransactionHandler(svc *ledger.Service) *TransactionHandler {
	return &TransactionHandler{Ledger: svc}
}

// ---------- requests ----------

type createTransactionReq struct {
	Type       string  `json:"type" binding:"required,oneof=income expense"`
	Amount     int64   `json:"amount"`      // cents
	AmountText string  `json:"amount_text"` // "12.34", overrides amount
	CategoryID *string `json:"category_id"`
	AccountID  *string `json:"account_id"`
	Note       string  `json:"note" binding:"max=255"`
}

type importReq struct {
	AccountID  *string            `json:"account_id"`
	Candidates []ledger.Candidate `json:"candidates" binding:"required,min=1,max=200"`
}

// CreateTransaction records one expense or income.
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	var req createTransactionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid parameters")
		return
	}
	amount, ok := amountOf(req.Amount, req.AmountText)
	if !ok {
		badRequest(c, "please enter a valid amount")
		return
	}

	id, err := h.Ledger.RecordTransaction(c.Request.Context(), ledger.TransactionInput{
		Type:       req.Type,
		Amount:     amount,
		CategoryID: req.CategoryID,
		AccountID:  req.AccountID,
		Note:       req.Note,
	})
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"id": id})
}

// ListTransactions returns the feed with the same filters as the summary.
// Query: account_id, type, category_id, start, end (YYYY-MM-DD), page, page_size.
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	page, size := pageParams(c)

	f := ledger.TransactionFilter{
		AccountID:  c.Query("account_id"),
		CategoryID: c.Query("category_id"),
		Limit:      size,
		Offset:     (page - 1) * size,
	}
	if t := c.Query("type"); t == "income" || t == "expense" {
		f.Type = t
	}
	if s := c.Query("start"); s != "" {
		start, err := time.Parse("2006-01-02", s)
		if err != nil {
			badRequest(c, "start must be YYYY-MM-DD")
			return
		}
		f.From = start
	}
	if s := c.Query("end"); s != "" {
		end, err := time.Parse("2006-01-02", s)
		if err != nil {
			badRequest(c, "end must be YYYY-MM-DD")
			return
		}
		// end date is inclusive
		f.To = end.AddDate(0, 0, 1)
	}

	items, err := h.Ledger.ListTransactions(c.Request.Context(), f)
	if err != nil {
		fail(c, err)
		return
	}
	totals, err := h.Ledger.Totals(c.Request.Context(), f.From, f.To)
	if err != nil {
		fail(c, err)
		return
	}

	util.Success(c, util.Response{
		"items": items,
		"page":  page,
		"size":  size,
		"summary": gin.H{
			"total_income":  totals.Income,
			"total_expense": totals.Expense,
			"net":           totals.Net(),
		},
	})
}

// DeleteTransaction soft-deletes a transaction (both legs for a transfer).
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	if err := h.Ledger.DeleteTransaction(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"message": "deleted"})
}

// ImportCandidates records parser output one candidate at a time.
func (h *TransactionHandler) ImportCandidates(c *gin.Context) {
	var req importReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid parameters")
		return
	}
	results := h.Ledger.ImportCandidates(c.Request.Context(), req.AccountID, req.Candidates)
	imported := 0
	for _, r := range results {
		if r.Error == "" {
			imported++
		}
	}
	util.Success(c, util.Response{
		"results":  results,
		"imported": imported,
	})
}

// GetMonthlyStats returns daily and per-category totals. Query: month=YYYY-MM.
func (h *TransactionHandler) GetMonthlyStats(c *gin.Context) {
	monthStr := c.Query("month")
	if monthStr == "" {
		monthStr = time.Now().UTC().Format("2006-01")
	}
	month, err := time.Parse("2006-01", monthStr)
	if err != nil {
		badRequest(c, "month must be YYYY-MM")
		return
	}

	stats, err := h.Ledger.MonthlyStats(c.Request.Context(), month)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"stats": stats})
}

// GetTotals returns income and expense between start and end (YYYY-MM-DD).
func (h *TransactionHandler) GetTotals(c *gin.Context) {
	var from, to time.Time
	if s := c.Query("start"); s != "" {
		t, ok := parseTime(s)
		if !ok {
			badRequest(c, "invalid start")
			return
		}
		from = t
	}
	if s := c.Query("end"); s != "" {
		t, ok := parseTime(s)
		if !ok {
			badRequest(c, "invalid end")
			return
		}
		to = t
	}
	totals, err := h.Ledger.Totals(c.Request.Context(), from, to)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{
		"income":  totals.Income,
		"expense": totals.Expense,
		"net":     totals.Net(),
	})
}
