package handler

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"money-tracking/internal/ledger"
	"money-tracking/internal/util"

	"github.com/gin-gonic/gin"
)

// fail maps a ledger error onto the response envelope. Storage failures are
// logged and reported generically.
func fail(c *gin.Context, err error) {
	switch ledger.KindOf(err) {
	case ledger.KindValidation:
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
	case ledger.KindInsufficientBalance:
		util.Error(c, http.StatusBadRequest, util.CodeInsufficientBalance, "insufficient balance")
	case ledger.KindLimitReached:
		util.Error(c, http.StatusBadRequest, util.CodeLimitReached, err.Error())
	case ledger.KindNotFound:
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "record not found")
	case ledger.KindPlanificationLocked:
		util.Error(c, http.StatusConflict, util.CodeLocked, "planification is completed")
	case ledger.KindAlreadyValidated:
		util.Error(c, http.StatusConflict, util.CodeAlreadyValidated, "planification already validated")
	default:
		log.Printf("handler: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "storage failure, please retry")
	}
}

func badRequest(c *gin.Context, msg string) {
	util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, msg)
}

// dateLayouts are accepted for dates and deadlines in requests.
var dateLayouts = []string{
	time.RFC3339,          // 2025-12-03T00:00:00+08:00
	"2006-01-02T15:04:05", // 2025-12-03T00:00:00
	"2006-01-02",          // 2025-12-03
}

func parseTime(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// pageParams reads page/page_size, defaulting to 1/20 and capping size at 100.
func pageParams(c *gin.Context) (page, size int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	size, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if size <= 0 || size > 100 {
		size = 20
	}
	return page, size
}

// amountOf resolves a request amount given either in cents or as a decimal
// text in major units.
func amountOf(cents int64, text string) (int64, bool) {
	if text == "" {
		return cents, true
	}
	v, err := util.ParseAmount(text)
	if err != nil {
		return 0, false
	}
	return v, true
}
