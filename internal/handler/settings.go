package handler

import (
	"money-tracking/internal/ledger"
	"money-tracking/internal/util"

	"github.com/gin-gonic/gin"
)

type SettingsHandler struct {
	Ledger *ledger.Service
}

func NewSettingsHandler(svc *ledger.Service) *SettingsHandler {
	return &SettingsHandler{Ledger: svc}
}

type settingReq struct {
	Value string `json:"value" binding:"max=255"`
}

type onboardReq struct {
	BankInitial int64  `json:"bank_initial"`
	CashInitial int64  `json:"cash_initial"`
	Currency    string `json:"currency"`
}

func (h *SettingsHandler) ListSettings(c *gin.Context) {
	all, err := h.Ledger.AllSettings(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"settings": all})
}

func (h *SettingsHandler) GetSetting(c *gin.Context) {
	v, err := h.Ledger.GetSetting(c.Request.Context(), c.Param("key"))
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"key": c.Param("key"), "value": v})
}

func (h *SettingsHandler) PutSetting(c *gin.Context) {
	var req settingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid parameters")
		return
	}
	if err := h.Ledger.SetSetting(c.Request.Context(), c.Param("key"), req.Value); err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"key": c.Param("key"), "value": req.Value})
}

func (h *SettingsHandler) OnboardingStatus(c *gin.Context) {
	done, err := h.Ledger.Onboarded(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"completed": done})
}

// Onboard creates the default accounts and categories on first run.
func (h *SettingsHandler) Onboard(c *gin.Context) {
	var req onboardReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid parameters")
		return
	}
	if err := h.Ledger.Onboard(c.Request.Context(), ledger.OnboardInput(req)); err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"completed": true})
}
