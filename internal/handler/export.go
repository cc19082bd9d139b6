package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"money-tracking/internal/ledger"
	"money-tracking/internal/models"
	"money-tracking/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportHandler exports the transaction feed as CSV or XLSX.
type ExportHandler struct {
	Ledger *ledger.Service
}

func NewExportHandler(svc *ledger.Service) *ExportHandler {
	return &ExportHandler{Ledger: svc}
}

var exportHeaders = []string{"Date", "Type", "Category", "Account", "Amount", "Note"}

// exportRows renders the default feed, amounts in the working currency.
func (h *ExportHandler) exportRows(c *gin.Context) ([][]string, bool) {
	ctx := c.Request.Context()
	items, err := h.Ledger.ListTransactions(ctx, ledger.TransactionFilter{})
	if err != nil {
		fail(c, err)
		return nil, false
	}
	currency, err := h.Ledger.Currency(ctx)
	if err != nil {
		fail(c, err)
		return nil, false
	}

	rows := make([][]string, 0, len(items))
	for _, t := range items {
		typeText := "Expense"
		if t.Type == models.TypeIncome {
			typeText = "Income"
		}
		account := t.AccountName
		if t.Label != "" {
			typeText = "Transfer"
			account = t.Label
		}
		rows = append(rows, []string{
			t.CreatedAt.Format("2006-01-02"),
			typeText,
			t.CategoryName,
			account,
			util.DisplayAmount(t.Amount, currency),
			t.Note,
		})
	}
	return rows, true
}

func (h *ExportHandler) ExportCSV(c *gin.Context) {
	rows, ok := h.exportRows(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s.csv\"",
		time.Now().Format("20060102")))

	// UTF-8 BOM so spreadsheet apps detect the encoding
	_, _ = c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	_ = writer.Write(exportHeaders)
	_ = writer.WriteAll(rows)
}

func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	rows, ok := h.exportRows(c)
	if !ok {
		return
	}

	f := excelize.NewFile()
	defer f.Close()
	sheetName := "Transactions"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "create sheet failed")
		return
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	for i, v := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, v)
	}
	for r, row := range rows {
		for col, v := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, r+2)
			_ = f.SetCellValue(sheetName, cell, v)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 12)
	_ = f.SetColWidth(sheetName, "B", "B", 10)
	_ = f.SetColWidth(sheetName, "C", "D", 18)
	_ = f.SetColWidth(sheetName, "E", "E", 14)
	_ = f.SetColWidth(sheetName, "F", "F", 30)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "export failed")
	}
}
