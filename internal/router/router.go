package router

import (
	"database/sql"
	"net/http"
	"time"

	_ "advogados-solidarios/docs"
	"advogados-solidarios/internal/adapters/auth/jwtauth"
	mem "advogados-solidarios/internal/adapters/storage/memory"
	pg "advogados-solidarios/internal/adapters/storage/postgres"
	"advogados-solidarios/internal/domain/accounts"
	"advogados-solidarios/internal/domain/cases"
	"advogados-solidarios/internal/domain/history"
	"advogados-solidarios/internal/domain/proposals"
	"advogados-solidarios/internal/middleware"
	"advogados-solidarios/internal/platform/logger"
	"advogados-solidarios/internal/platform/metrics"
	"advogados-solidarios/internal/ports/auth"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

const devSecret = "dev-secret-change-me"

type Options struct {
	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB
	// Opcional: si viene (Redis), las sesiones sobreviven reinicios.
	Sessions auth.SessionStore

	JWTSecret string
	JWTIssuer string
	TokenTTL  time.Duration

	LoginRatePerMin int
	// DevAuth habilita X-Debug-User-ID sin token.
	DevAuth bool

	Logger  logger.Logger
	Metrics *metrics.Metrics
}

func NewRouter(opts Options) (http.Handler, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}

	var (
		caseRepo     cases.Repository
		proposalRepo proposals.Repository
		accountRepo  accounts.Repository
		sessions     = opts.Sessions
	)

	if opts.DB != nil {
		caseRepo = pg.NewCasesRepo(opts.DB)
		proposalRepo = pg.NewProposalsRepo(opts.DB)
		accountRepo = pg.NewAccountsRepo(opts.DB)
	}

	// Lo que no viene de Postgres/Redis queda en memoria.
	store := mem.NewStore()
	if caseRepo == nil {
		caseRepo = store.Cases()
		proposalRepo = store.Proposals()
		accountRepo = store.Accounts()
	}
	if sessions == nil {
		sessions = store.Sessions()
	}

	secret := opts.JWTSecret
	if secret == "" {
		secret = devSecret
	}
	tokens, err := jwtauth.New(jwtauth.Config{
		Secret: secret,
		Issuer: opts.JWTIssuer,
		TTL:    opts.TokenTTL,
	}, sessions)
	if err != nil {
		return nil, err
	}

	// Services por módulo
	casesSvc := cases.NewService(caseRepo, log, m)
	proposalsSvc := proposals.NewService(proposalRepo, casesSvc, log, m)
	historySvc := history.NewService(casesSvc, proposalsSvc)
	accountsSvc := accounts.NewService(accountRepo, log, m)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log, m))
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(tokens, opts.DevAuth))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", m.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// Rutas por módulo
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(opts.LoginRatePerMin, log))
		accounts.RegisterPublicRoutes(r, accountsSvc, tokens)
	})
	accounts.RegisterRoutes(r, tokens)

	cases.RegisterRoutes(r, casesSvc)
	history.RegisterRoutes(r, historySvc)
	proposals.RegisterRoutes(r, proposalsSvc)

	return r, nil
}
