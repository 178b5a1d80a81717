package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/digiberkat/storefront-go/internal/cart"
	"github.com/digiberkat/storefront-go/internal/notify"
	"github.com/digiberkat/storefront-go/internal/orders"
	"github.com/digiberkat/storefront-go/internal/products"
	"github.com/digiberkat/storefront-go/internal/recommendations"
	"github.com/digiberkat/storefront-go/pkg/auth"
	"github.com/digiberkat/storefront-go/pkg/config"
	pkgerrors "github.com/digiberkat/storefront-go/pkg/errors"
	"github.com/digiberkat/storefront-go/pkg/logger"
	"github.com/digiberkat/storefront-go/pkg/metrics"
	"github.com/digiberkat/storefront-go/pkg/storefront"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tokens := auth.NewStaticTokenProvider(cfg.Auth.BearerToken)

	client, err := storefront.NewClient(ctx, cfg.API, tokens, logg)
	if err != nil {
		logg.Error(ctx, "failed to create api client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	cartMetrics := metrics.NewCartSyncMetrics(registry)

	sink := notify.NewLogSink(logg)

	engine, err := cart.NewEngine(cart.Options{
		Gateway:        client,
		Sink:           sink,
		Logger:         logg,
		Metrics:        cartMetrics,
		DebounceWindow: cfg.Cart.DebounceWindow,
		EventBuffer:    cfg.Cart.EventBuffer,
	})
	if err != nil {
		logg.Error(ctx, "failed to create cart engine", err)
		os.Exit(1)
	}
	defer engine.Close()

	flow, err := orders.NewFlow(orders.Options{
		Gateway: client,
		Cart:    engine,
		Sink:    sink,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create order flow", err)
		os.Exit(1)
	}

	catalog, err := products.NewService(client, logg)
	if err != nil {
		logg.Error(ctx, "failed to create catalog service", err)
		os.Exit(1)
	}
	recoStore := recommendations.NewStore()

	if err := engine.Refresh(ctx); err != nil {
		logg.Error(ctx, "initial cart fetch failed", err)
	}

	addr := ":" + cfg.App.DebugPort
	startCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(startCtx, "starting debug server")

	server := &http.Server{
		Addr:    addr,
		Handler: newRouter(registry, engine, flow, catalog, recoStore),
	}
	go func() {
		<-ctx.Done()
		_ = server.Shutdown(context.Background())
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(startCtx, "debug server stopped unexpectedly", err)
		os.Exit(1)
	}
}

// newRouter exposes the engine over a local debug surface: health, metrics
// and thin JSON endpoints mirroring the operations a storefront UI drives.
func newRouter(registry *prometheus.Registry, engine *cart.Engine, flow *orders.Flow, catalog products.Service, recoStore *recommendations.Store) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	router.Route("/cart", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, engine.Snapshot())
		})
		r.Post("/refresh", func(w http.ResponseWriter, req *http.Request) {
			respond(w, engine.Refresh(req.Context()), engine)
		})
		r.Post("/items", func(w http.ResponseWriter, req *http.Request) {
			var params storefront.AddItemParams
			if err := json.NewDecoder(req.Body).Decode(&params); err != nil {
				writeError(w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payload"))
				return
			}
			respond(w, engine.AddItem(req.Context(), params), engine)
		})
		r.Post("/items/{id}/delta/{delta}", func(w http.ResponseWriter, req *http.Request) {
			itemID, delta := pathInt(req, "id"), pathInt(req, "delta")
			respond(w, engine.ApplyDelta(req.Context(), itemID, delta), engine)
		})
		r.Post("/items/{id}/variant/{variantID}", func(w http.ResponseWriter, req *http.Request) {
			itemID, variantID := pathInt(req, "id"), pathInt(req, "variantID")
			respond(w, engine.ApplyVariantChange(req.Context(), itemID, variantID), engine)
		})
		r.Post("/items/{id}/remove", func(w http.ResponseWriter, req *http.Request) {
			respond(w, engine.RequestRemoval(req.Context(), pathInt(req, "id")), engine)
		})
		r.Post("/items/{id}/remove/confirm", func(w http.ResponseWriter, req *http.Request) {
			respond(w, engine.ConfirmRemoval(req.Context(), pathInt(req, "id")), engine)
		})
		r.Post("/items/{id}/remove/cancel", func(w http.ResponseWriter, req *http.Request) {
			respond(w, engine.CancelRemoval(pathInt(req, "id")), engine)
		})
	})

	router.Route("/orders", func(r chi.Router) {
		r.Post("/", func(w http.ResponseWriter, req *http.Request) {
			ack, err := flow.Submit(req.Context())
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, ack)
		})
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			history, err := flow.History(req.Context())
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, history)
		})
		r.Get("/{id}", func(w http.ResponseWriter, req *http.Request) {
			detail, err := flow.Detail(req.Context(), pathInt(req, "id"))
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, detail)
		})
		r.Post("/{id}/cancel", func(w http.ResponseWriter, req *http.Request) {
			if err := flow.Cancel(req.Context(), pathInt(req, "id")); err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
		})
	})

	router.Route("/products", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			list, err := catalog.List(req.Context())
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, list)
		})
		r.Get("/{id}", func(w http.ResponseWriter, req *http.Request) {
			product, err := catalog.Detail(req.Context(), pathInt(req, "id"))
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, product)
		})
		r.Get("/recommend", func(w http.ResponseWriter, req *http.Request) {
			query := req.URL.Query().Get("q")
			results, err := catalog.Recommend(req.Context(), query)
			if err != nil {
				writeError(w, err)
				return
			}
			recoStore.Set(query, results)
			writeJSON(w, http.StatusOK, results)
		})
	})

	return router
}

func pathInt(req *http.Request, key string) int {
	value, _ := strconv.Atoi(chi.URLParam(req, key))
	return value
}

func respond(w http.ResponseWriter, err error, engine *cart.Engine) {
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, engine.Snapshot())
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := err.Error()
	if typed := pkgerrors.As(err); typed != nil {
		meta := pkgerrors.MetadataFor(typed.Code())
		status = meta.HTTPStatus
		message = pkgerrors.UserMessage(err, meta.PublicMessage)
	}
	writeJSON(w, status, map[string]string{"error": message})
}
