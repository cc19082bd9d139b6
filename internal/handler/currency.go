package handler

import (
	"context"
	"log"
	"net/http"
	"strings"

	"money-tracking/internal/ledger"
	"money-tracking/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// RateSource supplies exchange rates.
type RateSource interface {
	Rate(ctx context.Context, from, to string) (decimal.Decimal, error)
}

type CurrencyHandler struct {
	Ledger *ledger.Service
	Rates  RateSource
}

func NewCurrencyHandler(svc *ledger.Service, rates RateSource) *CurrencyHandler {
	return &CurrencyHandler{Ledger: svc, Rates: rates}
}

type changeCurrencyReq struct {
	Code string `json:"code" binding:"required,len=3"`
	// Rate is optional; when empty it is fetched from the rate source.
	Rate string `json:"rate"`
}

func (h *CurrencyHandler) GetCurrency(c *gin.Context) {
	code, err := h.Ledger.Currency(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"currency": code})
}

// ChangeCurrency re-denominates the whole ledger into the new currency.
func (h *CurrencyHandler) ChangeCurrency(c *gin.Context) {
	var req changeCurrencyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid parameters")
		return
	}
	ctx := c.Request.Context()
	code := strings.ToUpper(req.Code)

	current, err := h.Ledger.Currency(ctx)
	if err != nil {
		fail(c, err)
		return
	}

	var rate decimal.Decimal
	if req.Rate != "" {
		if rate, err = decimal.NewFromString(req.Rate); err != nil || !rate.IsPositive() {
			badRequest(c, "rate must be a positive number")
			return
		}
	} else {
		if h.Rates == nil {
			badRequest(c, "rate is required")
			return
		}
		if rate, err = h.Rates.Rate(ctx, current, code); err != nil {
			log.Printf("handler: rate %s->%s: %v", current, code, err)
			util.Error(c, http.StatusBadGateway, util.CodeServerErr, "exchange rate unavailable")
			return
		}
	}

	if err := h.Ledger.ChangeCurrency(ctx, code, rate); err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{
		"currency": code,
		"previous": current,
		"rate":     rate.String(),
	})
}
