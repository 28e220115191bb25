package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/siteiq/internal/model"
	"github.com/sells-group/siteiq/internal/sentiment"
	"github.com/sells-group/siteiq/internal/training"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the JSON API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		aggregator, err := newAggregator()
		if err != nil {
			return err
		}

		api := &apiServer{env: env, aggregator: aggregator}

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/health", api.handleHealth)
		r.Route("/v1", func(r chi.Router) {
			r.Post("/score", api.handleScore)
			r.Post("/train", api.handleTrain)
			r.Get("/analyses", api.handleListAnalyses)
			r.Get("/businesses/{id}/sentiment", api.handleSentiment)
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(context.Background())
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

type apiServer struct {
	env        *appEnv
	aggregator *sentiment.Aggregator
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *apiServer) handleScore(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Category  string  `json:"category"`
		RadiusM   float64 `json:"radius_m"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := model.ParseCategory(req.Category)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := model.ValidateCoordinates(req.Latitude, req.Longitude); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	radius := req.RadiusM
	if radius <= 0 {
		radius = float64(cfg.Scoring.DefaultRadiusM)
	}

	result, err := s.env.engine.Score(r.Context(), req.Latitude, req.Longitude, category, radius)
	if err != nil {
		zap.L().Error("api: score failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "scoring failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleTrain kicks off training in the background and returns immediately.
// Training can run for minutes; holding the request open would just invite
// client timeouts.
func (s *apiServer) handleTrain(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := model.ParseCategory(req.Category)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	go func() {
		ctx := context.Background()
		builder := training.NewBuilder(s.env.repo, s.env.extractor,
			float64(cfg.Scoring.DefaultRadiusM),
			cfg.Training.Concurrency, cfg.Training.QueryRate)
		trainer := training.NewTrainer(s.env.models, cfg.Training.Timeout)

		ds, err := builder.Build(ctx, category)
		if err != nil {
			zap.L().Error("api: training dataset build failed",
				zap.String("category", category.String()),
				zap.Error(err))
			return
		}
		result, err := trainer.Train(ctx, ds)
		if err != nil {
			zap.L().Error("api: training failed",
				zap.String("category", category.String()),
				zap.Error(err))
			return
		}
		if result.Success {
			s.env.engine.RefreshModel(category)
		}
		zap.L().Info("api: training complete",
			zap.String("category", category.String()),
			zap.Bool("success", result.Success),
			zap.String("algorithm", result.Algorithm))
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{
		"status":   "accepted",
		"category": category.String(),
	})
}

func (s *apiServer) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	var category model.Category
	if raw := r.URL.Query().Get("category"); raw != "" {
		parsed, err := model.ParseCategory(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		category = parsed
	}
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	records, err := s.env.analyses.List(r.Context(), category, limit)
	if err != nil {
		zap.L().Error("api: list analyses failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "listing failed")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *apiServer) handleSentiment(w http.ResponseWriter, r *http.Request) {
	businessID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid business id")
		return
	}

	reviews, err := s.env.repo.ListReviews(r.Context(), businessID)
	if err != nil {
		zap.L().Error("api: list reviews failed",
			zap.Int64("business_id", businessID),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "review lookup failed")
		return
	}

	writeJSON(w, http.StatusOK, s.aggregator.Analyze(reviews))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
