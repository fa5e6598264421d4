package routes

import (
	"net/http"

	"aoi-bknd/internal/config"
	"aoi-bknd/internal/geocode"
	"aoi-bknd/internal/handlers"
	"aoi-bknd/internal/localcache"
	"aoi-bknd/internal/logger"
	"aoi-bknd/internal/mapsync"
	mdlwr "aoi-bknd/internal/middleware"
	"aoi-bknd/internal/services"
	"aoi-bknd/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

func NewRouter(db *bun.DB, cache localcache.Store, cfg *config.Config, logr *logger.Logger) http.Handler {
	r := chi.NewRouter()

	// Basic middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	remote := store.NewPostgres(db)
	featureSvc := services.NewFeatureService(remote, cache, logr.Logger)
	draftSvc := services.NewDraftService(cache, logr.Logger)
	draftSvc.LoadFromDisk()

	geocoder := geocode.NewClient(cfg.GeocoderBaseURL, cfg.GeocoderUserAgent, cfg.GeocoderLimit)
	searchSvc := services.NewSearchService(geocoder, featureSvc, logr.Logger, cfg.SearchDebounce)
	uploadSvc := services.NewUploadService(logr.Logger)

	// The engine drives an in-memory canvas; a widget click selects the
	// clicked feature.
	canvas := mapsync.NewMemoryCanvas()
	var engine *mapsync.Engine
	engine = mapsync.NewEngine(canvas, func(featureID string) {
		engine.Select(featureID)
	})

	featureHandler := handlers.NewFeatureHandler(featureSvc, engine, logr.Logger)
	draftHandler := handlers.NewDraftHandler(draftSvc, logr.Logger)
	searchHandler := handlers.NewSearchHandler(searchSvc, featureSvc, engine, logr.Logger)
	uploadHandler := handlers.NewUploadHandler(uploadSvc, engine, logr.Logger)
	mapHandler := handlers.NewMapHandler(engine, canvas, logr.Logger)

	// Mutating feature routes are guarded only when a key is configured.
	guard := func(r chi.Router) chi.Router { return r }
	if cfg.JWTPublicKeyPath != "" {
		authMW, err := mdlwr.NewAuthMiddleware(cfg.JWTPublicKeyPath, logr.Logger)
		if err != nil {
			logr.Fatal("failed to init auth middleware", zap.Error(err))
		}
		guard = func(r chi.Router) chi.Router { return r.With(authMW.JWTAuth) }
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte("ok"))
		if err != nil {
			return
		}
	})

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/features", func(r chi.Router) {
			r.Get("/", featureHandler.ListFeatures)
			guard(r).Post("/", featureHandler.CreateFeature)
			guard(r).Patch("/{id}", featureHandler.UpdateFeature)
			guard(r).Delete("/{id}", featureHandler.DeleteFeature)
		})

		r.Route("/drafts", func(r chi.Router) {
			r.Get("/", draftHandler.ListDrafts)
			r.Post("/", draftHandler.CreateDraft)
			r.Put("/{id}", draftHandler.UpdateDraft)
			r.Delete("/{id}", draftHandler.DeleteDraft)
			r.Post("/{id}/toggle", draftHandler.ToggleDraft)
		})

		r.Route("/search", func(r chi.Router) {
			r.Get("/", searchHandler.Search)
			r.Post("/select", searchHandler.SelectResult)
			r.Post("/outline", searchHandler.ShowOutline)
			guard(r).Post("/confirm", searchHandler.ConfirmSelection)
		})

		r.Post("/upload", uploadHandler.Upload)

		r.Route("/map", func(r chi.Router) {
			r.Get("/layers", mapHandler.Layers)
			r.Post("/select", mapHandler.Select)
			r.Post("/click", mapHandler.Click)
			r.Post("/preview", mapHandler.SetPreview)
			r.Delete("/preview", mapHandler.ClearPreview)
			r.Post("/focus", mapHandler.Focus)
			r.Post("/base-layer", mapHandler.SetBaseLayer)
			r.Post("/draw", mapHandler.Draw)
		})

	})

	return r
}
