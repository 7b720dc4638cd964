package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agrimitra/mandi-cli/internal/acquire"
	"github.com/agrimitra/mandi-cli/internal/normalize"
	"github.com/agrimitra/mandi-cli/internal/prices"
	"github.com/agrimitra/mandi-cli/pkg/scraperapi"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve mandi prices over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		svc := initService(st)
		scraper := initScraperClient()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newRouter(svc, scraper),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("server listening", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "serve")
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// newRouter builds the HTTP API. The price endpoint mirrors the facade
// contract: it always answers 200 with records, placeholder-tagged when
// every live source is down.
func newRouter(svc *prices.Service, scraper scraperapi.Client) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/prices", func(w http.ResponseWriter, req *http.Request) {
			q := prices.Query{
				State:    req.URL.Query().Get("state"),
				District: req.URL.Query().Get("district"),
				Date:     req.URL.Query().Get("date"),
			}
			if raw := req.URL.Query().Get("commodities"); raw != "" {
				for _, c := range strings.Split(raw, ",") {
					if c = strings.TrimSpace(c); c != "" {
						q.Commodities = append(q.Commodities, c)
					}
				}
			}

			result := svc.GetPrices(req.Context(), q)
			writeJSON(w, http.StatusOK, result)
		})

		r.Get("/markets", func(w http.ResponseWriter, req *http.Request) {
			state := req.URL.Query().Get("state")
			if state == "" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "state is required"})
				return
			}

			if scraper.Health(req.Context()) {
				markets, err := scraper.Markets(req.Context(), state)
				if err == nil {
					writeJSON(w, http.StatusOK, map[string]any{"success": true, "markets": markets})
					return
				}
				zap.L().Warn("api: markets lookup failed", zap.Error(err))
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"success": true,
				"markets": []string{acquire.DefaultMarket(state)},
			})
		})

		r.Get("/commodities", func(w http.ResponseWriter, req *http.Request) {
			if scraper.Health(req.Context()) {
				commodities, err := scraper.Commodities(req.Context())
				if err == nil {
					writeJSON(w, http.StatusOK, map[string]any{"success": true, "commodities": commodities})
					return
				}
				zap.L().Warn("api: commodities lookup failed", zap.Error(err))
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"success":     true,
				"commodities": normalize.KnownCommodities(),
			})
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
