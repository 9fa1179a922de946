package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/cache"
	"github.com/sells-group/leadgen-cli/internal/leads"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/verify"
	"github.com/sells-group/leadgen-cli/pkg/neverbounce"
)

// newTestEnv builds an appEnv on a temp SQLite pair with the remote cache
// tier unreachable, so the gateway runs local-primary, and the provider
// stubbed to return "valid" for every address.
func newTestEnv(t *testing.T) *appEnv {
	t.Helper()
	dir := t.TempDir()

	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "success", "result": "valid", "flags": [], "execution_time": 10}`))
	}))
	t.Cleanup(provider.Close)

	remote := cache.NewRemoteStore("http://127.0.0.1:1",
		cache.WithRemoteHTTPClient(&http.Client{Timeout: time.Second}))
	local, err := cache.NewLocalStore(filepath.Join(dir, "cache.db"))
	require.NoError(t, err)

	ledger, err := leads.OpenLedger(filepath.Join(dir, "ledger.db"))
	require.NoError(t, err)

	selector := cache.NewProbeSelector(context.Background(), remote, time.Minute)
	gateway := cache.NewGateway(remote, local, selector)

	env := &appEnv{
		Gateway: gateway,
		Local:   local,
		Ledger:  ledger,
		Orchestrator: verify.New(gateway,
			neverbounce.NewClient("test-key", neverbounce.WithBaseURL(provider.URL))),
	}
	t.Cleanup(env.Close)
	return env
}

func TestServeHealth(t *testing.T) {
	router := newRouter(newTestEnv(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestServeVerify(t *testing.T) {
	router := newRouter(newTestEnv(t))

	body, _ := json.Marshal(verifyRequest{
		Name:        "Jane Doe",
		Domain:      "example.com",
		CompanyName: "Acme",
		ListID:      "list-a",
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/verify", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool                    `json:"success"`
		Results map[string]verifyResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Results, 3)
	for _, addr := range []string{"jane@example.com", "jane.doe@example.com", "janedoe@example.com"} {
		res, ok := resp.Results[addr]
		require.True(t, ok, addr)
		require.NotNil(t, res.Outcome)
		assert.Equal(t, model.StatusValid, res.Outcome.Status)
	}
}

func TestServeVerifyBadRequest(t *testing.T) {
	router := newRouter(newTestEnv(t))

	tests := []struct {
		name string
		body string
	}{
		{"malformed_json", `{not json`},
		{"missing_fields", `{"name": "Jane Doe"}`},
		{"single_token_name", `{"name": "Jane", "domain": "example.com"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/verify", bytes.NewReader([]byte(tt.body))))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestServeLeadsCount(t *testing.T) {
	env := newTestEnv(t)
	router := newRouter(env)
	ctx := context.Background()

	require.NoError(t, env.Gateway.Put(ctx, model.VerificationRecord{
		Email: "a@example.com", Status: model.StatusValid, ListID: "A", CreatedAt: 1,
	}))
	require.NoError(t, env.Gateway.Put(ctx, model.VerificationRecord{
		Email: "b@example.com", Status: model.StatusInvalid, CreatedAt: 2,
	}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leads/count", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool                    `json:"success"`
		Counts  model.AggregationResult `json:"counts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Counts.TotalLeads)
	assert.Equal(t, 1, resp.Counts.ValidUnexported)
	assert.Equal(t, 1, resp.Counts.Invalid)
	assert.Equal(t, map[string]int{"A": 1}, resp.Counts.PerList)
}

func TestServeCacheStats(t *testing.T) {
	env := newTestEnv(t)
	router := newRouter(env)

	require.NoError(t, env.Gateway.Put(context.Background(), model.VerificationRecord{
		Email: "a@example.com", Status: model.StatusValid, CreatedAt: 1,
	}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cache/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool             `json:"success"`
		Stats   model.CacheStats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(1), resp.Stats.TotalEntries)
}
