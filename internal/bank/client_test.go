package bank

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestBackend(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, 5*time.Second)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestGetBalanceDecodesEnvelope(t *testing.T) {
	t.Parallel()

	client := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/balance" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("X-Customer-ID"); got != "CUST001" {
			t.Errorf("expected customer header, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"balance": 45230.5, "accountType": "SAVINGS"},
		})
	})

	got, err := client.GetBalance(context.Background(), "CUST001")
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if got.Balance != 45230.5 || got.AccountType != "SAVINGS" {
		t.Fatalf("unexpected balance: %+v", got)
	}
}

func TestEnvelopeFailureBecomesError(t *testing.T) {
	t.Parallel()

	client := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"message": "customer not found",
		})
	})

	_, err := client.GetBalance(context.Background(), "CUST404")
	if err == nil {
		t.Fatal("expected error for success=false envelope")
	}
	if !strings.Contains(err.Error(), "customer not found") {
		t.Fatalf("expected backend message in error, got %v", err)
	}
}

func TestHTTPErrorStatusBecomesError(t *testing.T) {
	t.Parallel()

	client := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"error":   "backend exploded",
		})
	})

	_, err := client.GetAccount(context.Background(), "CUST001")
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if !strings.Contains(err.Error(), "backend exploded") {
		t.Fatalf("expected backend error text, got %v", err)
	}
}

func TestGetTransactionsPassesLimit(t *testing.T) {
	t.Parallel()

	client := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("limit"); got != "5" {
			t.Errorf("expected limit 5, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"transactions": []map[string]any{
					{"transactionId": "TXN1", "type": "CREDIT", "amount": 5000, "timestamp": "2026-03-01T10:00:00Z"},
					{"transactionId": "TXN2", "type": "DEBIT", "amount": 250, "timestamp": "2026-03-01T11:00:00Z"},
				},
			},
		})
	})

	txns, err := client.GetTransactions(context.Background(), "CUST001", 5)
	if err != nil {
		t.Fatalf("GetTransactions failed: %v", err)
	}
	if len(txns) != 2 || txns[0].TransactionID != "TXN1" || txns[1].Type != "DEBIT" {
		t.Fatalf("unexpected transactions: %+v", txns)
	}
}

func TestGetChequeStatusFillsNumber(t *testing.T) {
	t.Parallel()

	client := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/cheque/123456") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"amount": 15000, "status": "PENDING"},
		})
	})

	cheque, err := client.GetChequeStatus(context.Background(), "CUST001", "123456")
	if err != nil {
		t.Fatalf("GetChequeStatus failed: %v", err)
	}
	if cheque.ChequeNumber != "123456" {
		t.Fatalf("expected cheque number backfilled, got %q", cheque.ChequeNumber)
	}
	if cheque.Status != "PENDING" {
		t.Fatalf("unexpected status: %q", cheque.Status)
	}
}
