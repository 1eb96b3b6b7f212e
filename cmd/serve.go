package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/proppulse/underwrite/internal/analysis"
	"github.com/proppulse/underwrite/internal/finance"
	"github.com/proppulse/underwrite/internal/model"
	"github.com/proppulse/underwrite/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initAnalyzer(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		router := buildRouter(env.Analyzer, env.Store, cfg.Server.AllowedOrigins, criteriaFromConfig(cfg.Criteria))

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: router,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

type analyzeRequest struct {
	Address         string                    `json:"address"`
	ForceEstimation bool                      `json:"force_estimation"`
	Criteria        *model.InvestmentCriteria `json:"criteria,omitempty"`
}

// buildRouter assembles the API routes. The analyzer may be nil in tests
// that only exercise the store-backed endpoints.
func buildRouter(analyzer *analysis.Analyzer, st store.Store, allowedOrigins []string, defaultCriteria model.InvestmentCriteria) http.Handler {
	r := chi.NewRouter()

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/api/analyze", func(w http.ResponseWriter, req *http.Request) {
		var body analyzeRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if body.Address == "" {
			writeErr(w, http.StatusBadRequest, "address is required")
			return
		}

		criteria := defaultCriteria
		if body.Criteria != nil {
			criteria = body.Criteria.WithDefaults()
		}

		result, err := analyzer.Analyze(req.Context(), analysis.Request{
			Address:         body.Address,
			Criteria:        &criteria,
			ForceEstimation: body.ForceEstimation,
		})
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, finance.ErrPropertyValueMissing) ||
				errors.Is(err, finance.ErrIncomeMissing) ||
				finance.IsDivisionUndefined(err) {
				status = http.StatusUnprocessableEntity
			}
			zap.L().Error("analyze request failed",
				zap.String("address", body.Address),
				zap.Error(err),
			)
			writeErr(w, status, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, result)
	})

	r.Get("/api/analysis/{id}", func(w http.ResponseWriter, req *http.Request) {
		result, err := st.GetAnalysis(req.Context(), chi.URLParam(req, "id"))
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		if result == nil {
			writeErr(w, http.StatusNotFound, "analysis not found")
			return
		}
		writeJSON(w, http.StatusOK, result)
	})

	r.Get("/api/analyses", func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		limit, _ := strconv.Atoi(q.Get("limit"))
		offset, _ := strconv.Atoi(q.Get("offset"))

		summaries, err := st.ListAnalyses(req.Context(), store.ListFilter{
			Status: model.DealStatus(q.Get("status")),
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, summaries)
	})

	r.Get("/api/lookup", func(w http.ResponseWriter, req *http.Request) {
		address := req.URL.Query().Get("address")
		if address == "" {
			writeErr(w, http.StatusBadRequest, "address is required")
			return
		}
		force, _ := strconv.ParseBool(req.URL.Query().Get("force_estimation"))

		rec, err := analyzer.QuickLookup(req.Context(), address, force)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, rec)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
