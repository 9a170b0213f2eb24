package integrationtests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	bidding "auction-escrow/internal/biddingService"
	"auction-escrow/internal/escrow"
	"auction-escrow/internal/finalizer"
	model "auction-escrow/internal/models"
	"auction-escrow/internal/repository"
	"auction-escrow/internal/seed"
	"auction-escrow/internal/server"
	"auction-escrow/internal/wallet"

	"code.cloudfoundry.org/clock/fakeclock"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)

// testEnv is the full service stack on the memory store with a fake clock.
type testEnv struct {
	router    *gin.Engine
	repo      *repository.MemoryRepo
	clock     *fakeclock.FakeClock
	finalizer *finalizer.Finalizer
	escrow    *escrow.Service
}

// SetupTestEnv initializes the router with in-memory repository for integration testing.
func SetupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := repository.NewMemoryRepo(time.Second)
	clk := fakeclock.NewFakeClock(start)
	env := &testEnv{
		repo:      repo,
		clock:     clk,
		finalizer: finalizer.New(repo, clk, nil, finalizer.Options{Workers: 2}),
		escrow:    escrow.New(repo, clk, nil, escrow.Options{}),
	}
	env.router = server.SetupRouter(server.Services{
		Bidding:   bidding.NewBiddingService(repo, clk, nil),
		Finalizer: env.finalizer,
		Escrow:    env.escrow,
		Wallet:    wallet.New(repo, clk),
	})
	return env
}

func (e *testEnv) user(t *testing.T, role model.Role, balance int64) model.User {
	t.Helper()
	u, err := seed.User(context.Background(), e.repo, role, decimal.NewFromInt(balance), start)
	require.NoError(t, err)
	return u
}

// auction opens a one-hour auction with a 5,000 increment.
func (e *testEnv) auction(t *testing.T, seller model.User, starting int64) model.Auction {
	t.Helper()
	a, err := seed.PublishedAuction(context.Background(), e.repo, seed.Auction{
		SellerID:      seller.ID,
		Title:         "integration lot",
		StartingPrice: decimal.NewFromInt(starting),
		MinIncrement:  decimal.NewFromInt(5_000),
		StartAt:       start,
		EndAt:         start.Add(time.Hour),
	}, start)
	require.NoError(t, err)
	return a
}

// ExecuteRequestAndParse executes an HTTP request on the given router and parses the response
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	case string:
		reqBody = []byte(v)
	default:
		var err error
		reqBody, err = json.Marshal(v)
		require.NoError(t, err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	var resp map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return resp, w
}

func data(t *testing.T, resp map[string]any) map[string]any {
	t.Helper()
	d, ok := resp["data"].(map[string]any)
	require.True(t, ok, "response has no object data: %v", resp)
	return d
}
