package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	auth "github.com/lumen-lms/lumenlms/internal/auth/middleware"
	"github.com/lumen-lms/lumenlms/internal/catalog"
	"github.com/lumen-lms/lumenlms/internal/config"
	"github.com/lumen-lms/lumenlms/internal/db"
	"github.com/lumen-lms/lumenlms/internal/lti"
	"github.com/lumen-lms/lumenlms/internal/tools"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	toolStore := &tools.SQLStore{DB: dbh, Issuer: cfg.PublicURL}
	catalogStore := &catalog.SQLStore{DB: dbh}

	// --- Signing key ---
	var signing *lti.SigningContext
	if cfg.PrivateKeyPath != "" {
		pemData, err := os.ReadFile(cfg.PrivateKeyPath)
		if err != nil {
			log.Fatalf("read signing key: %v", err)
		}
		signing, err = lti.NewSigningContext(pemData, cfg.KeyID)
		if err != nil {
			log.Fatalf("signing key: %v", err)
		}
	} else {
		// Ephemeral key: fine for dev, useless across restarts.
		log.Printf("LTI_PRIVATE_KEY_PATH not set; generating an ephemeral signing key")
		signing, err = lti.GenerateSigningContext(cfg.KeyID)
		if err != nil {
			log.Fatalf("signing key: %v", err)
		}
	}

	claims, err := lti.NewClaimsBuilder(cfg.TokenTTLSeconds, lti.PlatformInfo{
		GUID:         cfg.PlatformGUID,
		Name:         cfg.PlatformName,
		URL:          cfg.PublicURL,
		ContactEmail: cfg.ContactEmail,
		Description:  cfg.PlatformDescription,
	})
	if err != nil {
		log.Fatalf("claims builder: %v", err)
	}

	authSvc := auth.NewAuthService(cfg.SessionSecret)

	launch := &lti.LaunchServer{
		Registry:      toolStore,
		Launches:      catalogStore,
		Claims:        claims,
		Signing:       signing,
		CurrentUserID: auth.UserIDFromRequest,
	}
	jwks := &lti.JWKSHandler{
		Signing: signing,
		MaxAge:  time.Duration(cfg.JWKSMaxAgeSeconds) * time.Second,
	}
	meta := &lti.MetadataServer{
		Issuer:        cfg.PublicURL,
		AuthorizePath: "/lti/authorize_redirect",
		JWKSPath:      "/lti/security/jwks",
		ProductName:   cfg.PlatformName,
		PlatformGUID:  cfg.PlatformGUID,
	}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Dev credential check: username must equal password, user must exist.
	// Replace with a real password store before exposing publicly.
	checkCreds := func(username, password string) (int64, error) {
		if username != password {
			return 0, auth.ErrNoSession
		}
		u, err := catalogStore.UserByUsername(context.Background(), username)
		if err != nil {
			return 0, err
		}
		return u.ID, nil
	}
	r.Post("/auth/login", auth.LoginHandler(authSvc, checkCreds))

	r.Get("/.well-known/openid-configuration", meta.OpenIDConfiguration())

	r.Route("/lti", func(lr chi.Router) {
		// Launch initiation requires an LMS session; the OIDC callback and
		// JWKS are hit by the tool / the user's bounced browser and are not
		// session-gated.
		lr.Group(func(pr chi.Router) {
			pr.Use(auth.SessionMiddleware(authSvc))
			pr.Get("/launch/{courseID}/{viewID}", launch.InitiationHandler())
		})
		lr.Get("/authorize_redirect", launch.AuthorizeRedirectHandler())
		lr.Post("/authorize_redirect", launch.AuthorizeRedirectHandler())
		lr.Method(http.MethodGet, "/security/jwks", jwks)
	})

	r.Route("/admin", func(ar chi.Router) {
		ar.Use(auth.AdminBasicAuth(cfg.AdminUser, cfg.AdminPassHash))
		ar.Mount("/tools", tools.Routes(toolStore))
	})

	s := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Printf("platformd listening on %s (issuer %s)", cfg.HTTPAddr, cfg.PublicURL)
	log.Fatal(s.ListenAndServe())
}
