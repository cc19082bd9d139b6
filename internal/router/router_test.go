package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"money-tracking/internal/config"
	"money-tracking/internal/database"
	"money-tracking/internal/ledger"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRates struct {
	rate decimal.Decimal
	err  error
}

func (f *fakeRates) Rate(context.Context, string, string) (decimal.Decimal, error) {
	return f.rate, f.err
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t      *testing.T
	engine *gin.Engine
	rates  *fakeRates
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()

	cfg := &config.Config{
		Server:   config.ServerConfig{Mode: gin.TestMode},
		Database: config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(dir, "ledger.db")},
		Security: config.SecurityConfig{EncryptionKey: "router-test-key"},
		Backup:   config.BackupConfig{Dir: filepath.Join(dir, "backups")},
	}
	db, err := database.Init(cfg.Database)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	rates := &fakeRates{rate: decimal.NewFromInt(2)}
	engine := SetupRouter(cfg, Deps{
		DB:     db,
		Ledger: ledger.New(db),
		Rates:  rates,
		Logger: log.New(io.Discard, "", 0),
	})
	return &testServer{t: t, engine: engine, rates: rates}
}

func (s *testServer) do(method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

// ok performs the request, expects a success envelope and decodes its data.
func (s *testServer) ok(method, path string, body, out any) {
	s.t.Helper()
	w, env := s.do(method, path, body)
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(s.t, 0, env.Code)
	if out != nil {
		require.NoError(s.t, json.Unmarshal(env.Data, out))
	}
}

type accountList struct {
	Items []struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		IsDefault bool   `json:"is_default"`
		Balance   int64  `json:"balance"`
	} `json:"items"`
	NetWorth int64 `json:"net_worth"`
}

func (s *testServer) onboard(bank, cash int64) (bankID, cashID string) {
	s.t.Helper()
	s.ok(http.MethodPost, "/api/onboarding", gin.H{
		"bank_initial": bank, "cash_initial": cash, "currency": "USD",
	}, nil)
	var list accountList
	s.ok(http.MethodGet, "/api/accounts", nil, &list)
	for _, a := range list.Items {
		switch a.Name {
		case "Bank":
			bankID = a.ID
		case "Cash":
			cashID = a.ID
		}
	}
	require.NotEmpty(s.t, bankID)
	require.NotEmpty(s.t, cashID)
	return bankID, cashID
}

func (s *testServer) accounts() accountList {
	s.t.Helper()
	var list accountList
	s.ok(http.MethodGet, "/api/accounts", nil, &list)
	return list
}

func TestOnboarding(t *testing.T) {
	s := newTestServer(t)

	var status struct {
		Completed bool `json:"completed"`
	}
	s.ok(http.MethodGet, "/api/onboarding", nil, &status)
	assert.False(t, status.Completed)

	s.onboard(10000, 2000)

	s.ok(http.MethodGet, "/api/onboarding", nil, &status)
	assert.True(t, status.Completed)

	list := s.accounts()
	assert.Len(t, list.Items, 2)
	assert.Equal(t, int64(12000), list.NetWorth)

	w, env := s.do(http.MethodPost, "/api/onboarding", gin.H{"currency": "USD"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 40001, env.Code)
}

func TestExpenseRejectedOnInsufficientBalance(t *testing.T) {
	s := newTestServer(t)
	_, cashID := s.onboard(10000, 2000)

	w, env := s.do(http.MethodPost, "/api/transactions", gin.H{
		"type": "expense", "amount": 50000, "account_id": cashID,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 40002, env.Code)

	s.ok(http.MethodPost, "/api/transactions", gin.H{
		"type": "expense", "amount_text": "12.50", "account_id": cashID, "note": "lunch",
	}, nil)
	assert.Equal(t, int64(12000-1250), s.accounts().NetWorth)
}

func TestTransferShowsOnceInFeed(t *testing.T) {
	s := newTestServer(t)
	bankID, cashID := s.onboard(10000, 0)

	var created struct {
		TransferID string `json:"transfer_id"`
	}
	s.ok(http.MethodPost, "/api/transfers", gin.H{
		"from_account_id": bankID, "to_account_id": cashID, "amount": 3000,
	}, &created)
	require.NotEmpty(t, created.TransferID)

	var feed struct {
		Items []struct {
			ID    string `json:"id"`
			Label string `json:"label"`
		} `json:"items"`
	}
	s.ok(http.MethodGet, "/api/transactions", nil, &feed)
	require.Len(t, feed.Items, 1)
	assert.Equal(t, "Bank → Cash", feed.Items[0].Label)

	var legs struct {
		Legs []struct {
			Type string `json:"type"`
		} `json:"legs"`
	}
	s.ok(http.MethodGet, "/api/transfers/"+created.TransferID, nil, &legs)
	require.Len(t, legs.Legs, 2)
	assert.Equal(t, "expense", legs.Legs[0].Type)
	assert.Equal(t, "income", legs.Legs[1].Type)

	assert.Equal(t, int64(10000), s.accounts().NetWorth)

	// deleting one leg removes the whole transfer
	s.ok(http.MethodDelete, "/api/transactions/"+feed.Items[0].ID, nil, nil)
	w, env := s.do(http.MethodGet, "/api/transfers/"+created.TransferID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 40401, env.Code)
}

func TestDeleteUnknownTransaction(t *testing.T) {
	s := newTestServer(t)
	s.onboard(0, 0)

	w, env := s.do(http.MethodDelete, "/api/transactions/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 40401, env.Code)
}

func TestPlanificationLifecycle(t *testing.T) {
	s := newTestServer(t)
	bankID, _ := s.onboard(10000, 0)

	var created struct {
		Planification struct {
			ID string `json:"id"`
		} `json:"planification"`
	}
	s.ok(http.MethodPost, "/api/planifications", gin.H{
		"title": "Groceries", "deadline": "2099-01-31",
	}, &created)
	planID := created.Planification.ID
	require.NotEmpty(t, planID)

	s.ok(http.MethodPost, "/api/planifications/"+planID+"/items", gin.H{
		"type": "expense", "amount": 4000, "note": "rice",
	}, nil)
	s.ok(http.MethodPost, "/api/planifications/"+planID+"/items", gin.H{
		"type": "income", "amount": 1000,
	}, nil)

	var got struct {
		Planification struct {
			Status        string `json:"status"`
			TotalExpenses int64  `json:"total_expenses"`
			TotalIncome   int64  `json:"total_income"`
		} `json:"planification"`
	}
	s.ok(http.MethodGet, "/api/planifications/"+planID, nil, &got)
	assert.Equal(t, "pending", got.Planification.Status)
	assert.Equal(t, int64(4000), got.Planification.TotalExpenses)
	assert.Equal(t, int64(1000), got.Planification.TotalIncome)

	s.ok(http.MethodPost, "/api/planifications/"+planID+"/validate", gin.H{"account_id": bankID}, &got)
	assert.Equal(t, "completed", got.Planification.Status)
	assert.Equal(t, int64(10000-4000+1000), s.accounts().NetWorth)

	w, env := s.do(http.MethodPost, "/api/planifications/"+planID+"/validate", gin.H{"account_id": bankID})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 40902, env.Code)

	w, env = s.do(http.MethodPost, "/api/planifications/"+planID+"/items", gin.H{
		"type": "expense", "amount": 1,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 40901, env.Code)

	w, _ = s.do(http.MethodPost, "/api/planifications/"+planID+"/validate", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChangeCurrency(t *testing.T) {
	s := newTestServer(t)
	s.onboard(10000, 2001)

	var res struct {
		Currency string `json:"currency"`
		Previous string `json:"previous"`
	}
	s.ok(http.MethodPost, "/api/currency", gin.H{"code": "eur"}, &res)
	assert.Equal(t, "EUR", res.Currency)
	assert.Equal(t, "USD", res.Previous)
	assert.Equal(t, int64(20000+4002), s.accounts().NetWorth)

	// an explicit rate bypasses the rate source
	s.ok(http.MethodPost, "/api/currency", gin.H{"code": "USD", "rate": "0.5"}, nil)
	assert.Equal(t, int64(10000+2001), s.accounts().NetWorth)

	s.rates.err = errors.New("upstream down")
	w, env := s.do(http.MethodPost, "/api/currency", gin.H{"code": "EUR"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, 50001, env.Code)

	w, _ = s.do(http.MethodPost, "/api/currency", gin.H{"code": "EUR", "rate": "-1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var cur struct {
		Currency string `json:"currency"`
	}
	s.ok(http.MethodGet, "/api/currency", nil, &cur)
	assert.Equal(t, "USD", cur.Currency)
}

func TestProtectedSettingRejected(t *testing.T) {
	s := newTestServer(t)
	s.onboard(0, 0)

	w, env := s.do(http.MethodPut, "/api/settings/currency", gin.H{"value": "EUR"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 40001, env.Code)

	s.ok(http.MethodPut, "/api/settings/theme", gin.H{"value": "dark"}, nil)
	var got struct {
		Value string `json:"value"`
	}
	s.ok(http.MethodGet, "/api/settings/theme", nil, &got)
	assert.Equal(t, "dark", got.Value)
}

func TestBackupRestore(t *testing.T) {
	s := newTestServer(t)
	bankID, _ := s.onboard(10000, 0)
	s.ok(http.MethodPost, "/api/transactions", gin.H{
		"type": "expense", "amount": 2500, "account_id": bankID,
	}, nil)

	var created struct {
		Backup struct {
			ID   string `json:"id"`
			Size int64  `json:"size"`
		} `json:"backup"`
	}
	s.ok(http.MethodPost, "/api/backups", nil, &created)
	require.NotEmpty(t, created.Backup.ID)
	assert.Positive(t, created.Backup.Size)

	s.ok(http.MethodPost, "/api/transactions", gin.H{
		"type": "expense", "amount": 1000, "account_id": bankID,
	}, nil)
	require.Equal(t, int64(6500), s.accounts().NetWorth)

	var restored struct {
		TransactionsCount int `json:"transactions_count"`
	}
	s.ok(http.MethodPost, fmt.Sprintf("/api/backups/%s/restore", created.Backup.ID), nil, &restored)
	assert.Equal(t, 1, restored.TransactionsCount)
	assert.Equal(t, int64(7500), s.accounts().NetWorth)

	var list struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
	}
	s.ok(http.MethodGet, "/api/backups", nil, &list)
	assert.Len(t, list.Items, 1)

	s.ok(http.MethodDelete, "/api/backups/"+created.Backup.ID, nil, nil)
	w, _ := s.do(http.MethodPost, "/api/backups/"+created.Backup.ID+"/restore", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportCSV(t *testing.T) {
	s := newTestServer(t)
	bankID, _ := s.onboard(10000, 0)
	s.ok(http.MethodPost, "/api/transactions", gin.H{
		"type": "expense", "amount": 1234, "account_id": bankID, "note": "books",
	}, nil)

	w, _ := s.do(http.MethodGet, "/api/export/csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")

	body := w.Body.Bytes()
	require.True(t, bytes.HasPrefix(body, []byte{0xEF, 0xBB, 0xBF}))
	text := string(body[3:])
	assert.True(t, strings.HasPrefix(text, "Date,Type,Category,Account,Amount,Note"))
	assert.Contains(t, text, "books")
	assert.Contains(t, text, "Bank")
}

func TestLocalOnlyApplied(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{Server: config.ServerConfig{LocalOnly: true}}
	engine := SetupRouter(cfg, Deps{Logger: log.New(io.Discard, "", 0)})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.RemoteAddr = "127.0.0.1:51234"
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOversizedAmountTextRejected(t *testing.T) {
	s := newTestServer(t)
	bankID, _ := s.onboard(10000, 0)

	w, env := s.do(http.MethodPost, "/api/transactions", gin.H{
		"type": "income", "amount_text": "184467440737095517.16", "account_id": bankID,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 40001, env.Code)
	assert.Equal(t, int64(10000), s.accounts().NetWorth)
}
