package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/email"
	"github.com/sells-group/leadgen-cli/internal/leads"
	"github.com/sells-group/leadgen-cli/internal/model"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the verification HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           newRouter(env),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			zap.L().Info("server: listening", zap.Int("port", cfg.Server.Port))
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		zap.L().Info("server: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func newRouter(env *appEnv) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/verify", func(w http.ResponseWriter, req *http.Request) {
		var body verifyRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		lead := model.LeadContext{
			CompanyName: body.CompanyName,
			Domain:      body.Domain,
			ListID:      body.ListID,
		}
		emails := body.Emails
		if len(emails) == 0 {
			if body.Name == "" || body.Domain == "" {
				writeError(w, http.StatusBadRequest, "name and domain (or emails) are required")
				return
			}
			candidates := email.Generate(body.Name, body.Domain)
			if len(candidates) == 0 {
				writeError(w, http.StatusBadRequest, "name must include first and last name")
				return
			}
			for _, c := range candidates {
				emails = append(emails, c.Address())
			}
			if first, last, ok := email.SplitName(body.Name); ok {
				lead.FirstName = first
				lead.LastName = last
			}
		}

		results := env.Orchestrator.VerifyBatch(req.Context(), emails, lead)

		out := make(map[string]verifyResult, len(results))
		for addr, res := range results {
			if res.Err != nil {
				out[addr] = verifyResult{Error: res.Err.Error()}
				continue
			}
			out[addr] = verifyResult{Outcome: res.Outcome}
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "results": out})
	})

	r.Get("/leads/count", func(w http.ResponseWriter, req *http.Request) {
		agg := leads.NewAggregator(env.Gateway, env.Ledger)
		result, err := agg.Aggregate(req.Context())
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "counts": result})
	})

	r.Get("/cache/stats", func(w http.ResponseWriter, req *http.Request) {
		stats, err := env.Gateway.Stats(req.Context())
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "stats": stats})
	})

	return r
}

type verifyRequest struct {
	Name        string   `json:"name"`
	Domain      string   `json:"domain"`
	CompanyName string   `json:"companyName"`
	ListID      string   `json:"listId"`
	Emails      []string `json:"emails"`
}

type verifyResult struct {
	Outcome *model.Outcome `json:"outcome,omitempty"`
	Error   string         `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Error("server: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}
