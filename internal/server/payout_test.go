package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/smallbiznis/lienclock/internal/clock"
	payoutdomain "github.com/smallbiznis/lienclock/internal/payout/domain"
)

type stubPayoutService struct {
	snapshot payoutdomain.LedgerSnapshot
	payout   *payoutdomain.Payout
	err      error

	gotBrokerID string
	gotNow      time.Time
}

func (s *stubPayoutService) BrokerSnapshot(ctx context.Context, brokerID string, now time.Time) (payoutdomain.LedgerSnapshot, error) {
	s.gotBrokerID = brokerID
	s.gotNow = now
	return s.snapshot, s.err
}

func (s *stubPayoutService) Disburse(ctx context.Context, brokerID string, now time.Time) (*payoutdomain.Payout, error) {
	s.gotBrokerID = brokerID
	s.gotNow = now
	return s.payout, s.err
}

func newPayoutTestRouter(stub *stubPayoutService, now time.Time) *gin.Engine {
	gin.SetMode(gin.TestMode)
	s := &Server{
		log:       zap.NewNop(),
		clock:     clock.Fixed(now),
		payoutSvc: stub,
	}
	r := gin.New()
	r.GET("/api/v1/brokers/:id/payout-report", s.BrokerPayoutReport)
	r.POST("/api/v1/brokers/:id/disburse", s.DisburseBroker)
	return r
}

func TestBrokerPayoutReportUsesClock(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	stub := &stubPayoutService{snapshot: payoutdomain.LedgerSnapshot{EarnedCents: 5000}}
	r := newPayoutTestRouter(stub, now)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/brokers/42/payout-report", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if stub.gotBrokerID != "42" {
		t.Fatalf("broker id = %q, want 42", stub.gotBrokerID)
	}
	if !stub.gotNow.Equal(now) {
		t.Fatalf("now = %v, want %v", stub.gotNow, now)
	}

	var body struct {
		Data payoutdomain.LedgerSnapshot `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Data.EarnedCents != 5000 {
		t.Fatalf("earned = %d, want 5000", body.Data.EarnedCents)
	}
}

func TestBrokerPayoutReportAsOfOverride(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	asOf := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	stub := &stubPayoutService{}
	r := newPayoutTestRouter(stub, now)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/brokers/42/payout-report?as_of="+asOf.Format(time.RFC3339), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !stub.gotNow.Equal(asOf) {
		t.Fatalf("now = %v, want as_of %v", stub.gotNow, asOf)
	}
}

func TestBrokerPayoutReportRejectsBadAsOf(t *testing.T) {
	stub := &stubPayoutService{}
	r := newPayoutTestRouter(stub, time.Now().UTC())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/brokers/42/payout-report?as_of=yesterday", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestDisburseErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nothing due", payoutdomain.ErrNothingDue, http.StatusConflict},
		{"unknown broker", payoutdomain.ErrBrokerNotFound, http.StatusNotFound},
		{"bad broker id", payoutdomain.ErrInvalidBroker, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubPayoutService{err: tc.err}
			r := newPayoutTestRouter(stub, time.Now().UTC())

			req := httptest.NewRequest(http.MethodPost, "/api/v1/brokers/42/disburse", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}
}
