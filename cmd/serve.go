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
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cityscope/cityscope-cli/internal/model"
	"github.com/cityscope/cityscope-cli/internal/needs"
	"github.com/cityscope/cityscope-cli/internal/store"
	"github.com/cityscope/cityscope-cli/pkg/chat"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for the dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx, "serve")
		if err != nil {
			return err
		}
		defer env.Close()

		var chatGW chat.Gateway
		if cfg.Chat.WebhookURL != "" || cfg.Chat.AnthropicKey != "" {
			chatGW, err = initChat()
			if err != nil {
				return err
			}
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(env, chatGW),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			if err := shutdownServer(srv); err != nil {
				zap.L().Warn("server shutdown", zap.Error(err))
			}
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// shutdownServer drains in-flight requests on a fresh deadline; the signal
// context is already canceled by the time shutdown starts.
func shutdownServer(srv *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func newRouter(env *pipelineEnv, chatGW chat.Gateway) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/v1/indices", func(w http.ResponseWriter, r *http.Request) {
		lat, err1 := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
		lon, err2 := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
		if err1 != nil || err2 != nil {
			writeError(w, http.StatusBadRequest, "lat and lon query parameters are required")
			return
		}

		loc := model.Location{Latitude: lat, Longitude: lon, Name: r.URL.Query().Get("name")}
		snap, err := env.Pipeline.ComposeIndices(r.Context(), loc)
		if err != nil {
			if errors.Is(err, model.ErrInvalidLocation) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			zap.L().Error("compose failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "compose failed")
			return
		}

		if err := env.Store.SaveSnapshot(r.Context(), snap); err != nil {
			zap.L().Warn("snapshot save failed", zap.Error(err))
		}

		writeJSON(w, http.StatusOK, snap)
	})

	r.Get("/v1/snapshots", func(w http.ResponseWriter, r *http.Request) {
		filter := store.SnapshotFilter{Limit: 50}
		if q := r.URL.Query().Get("quality"); q != "" {
			filter.Quality = model.SampleQuality(q)
		}
		if l := r.URL.Query().Get("limit"); l != "" {
			if n, err := strconv.Atoi(l); err == nil {
				filter.Limit = n
			}
		}
		if s := r.URL.Query().Get("since_hours"); s != "" {
			if n, err := strconv.Atoi(s); err == nil && n > 0 {
				filter.Since = time.Now().Add(-time.Duration(n) * time.Hour)
			}
		}

		snaps, err := env.Store.ListSnapshots(r.Context(), filter)
		if err != nil {
			zap.L().Error("list snapshots failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "list snapshots failed")
			return
		}
		writeJSON(w, http.StatusOK, snaps)
	})

	r.Post("/v1/needs", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			SnapshotIDs []string `json:"snapshot_ids"`
			IncludeLow  bool     `json:"include_low"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		var snaps []model.CityHealthSnapshot
		if len(req.SnapshotIDs) > 0 {
			for _, id := range req.SnapshotIDs {
				snap, err := env.Store.GetSnapshot(r.Context(), id)
				if err != nil {
					writeError(w, http.StatusNotFound, fmt.Sprintf("snapshot %s not found", id))
					return
				}
				snaps = append(snaps, *snap)
			}
		} else {
			var err error
			snaps, err = env.Store.ListSnapshots(r.Context(), store.SnapshotFilter{Limit: 100})
			if err != nil {
				zap.L().Error("list snapshots failed", zap.Error(err))
				writeError(w, http.StatusInternalServerError, "list snapshots failed")
				return
			}
		}

		opts := []needs.Option{}
		if req.IncludeLow {
			opts = append(opts, needs.WithLowSeverity())
		}
		if env.Districts != nil {
			opts = append(opts, needs.WithDistricts(env.Districts))
		}

		writeJSON(w, http.StatusOK, needs.New(opts...).Aggregate(snaps))
	})

	r.Post("/v1/chat", func(w http.ResponseWriter, r *http.Request) {
		if chatGW == nil {
			writeError(w, http.StatusServiceUnavailable, "assistant backend not configured")
			return
		}

		var req struct {
			Prompt string `json:"prompt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Prompt == "" {
			writeError(w, http.StatusBadRequest, "prompt is required")
			return
		}

		answer, err := chatGW.Ask(r.Context(), req.Prompt)
		if err != nil {
			var chatErr *chat.Error
			if errors.As(err, &chatErr) {
				zap.L().Error("assistant request failed",
					zap.String("class", string(chatErr.Class)),
					zap.Error(err),
				)
				writeJSON(w, http.StatusBadGateway, map[string]string{
					"error": chatErr.UserMessage(),
					"class": string(chatErr.Class),
				})
				return
			}
			writeError(w, http.StatusBadGateway, "assistant request failed")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
