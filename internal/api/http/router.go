package http

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	auth "github.com/mind-engage/mindengage-qbank/internal/auth/middleware"
	"github.com/mind-engage/mindengage-qbank/internal/config"
	"github.com/mind-engage/mindengage-qbank/internal/events"
	"github.com/mind-engage/mindengage-qbank/internal/logger"
	"github.com/mind-engage/mindengage-qbank/internal/qbank"
	"github.com/mind-engage/mindengage-qbank/internal/rbac"
)

// Deps is everything the router mounts. Generator and Materials may be nil,
// in which case their routes are not mounted.
type Deps struct {
	Config    config.Config
	DB        *sql.DB
	Log       *logger.Logger
	Auth      *auth.AuthService
	Users     *auth.UserStore
	Engine    *qbank.Engine
	Events    *events.EventRepo
	Generator Generator
	Materials Materials
}

func NewRouter(d Deps) http.Handler {
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	cfg := d.Config

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	// Generation calls hold the request open for the whole provider round trip.
	r.Use(middleware.Timeout(cfg.LLM.Timeout + 30*time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.EnableLocalAuth {
		r.Post("/auth/login", auth.LoginHandler(d.Auth, d.Users))
		if cfg.EnableSignUp {
			r.Post("/auth/signup", auth.SignupHandler(d.Auth, d.Users, d.Log))
		}
	}

	r.Get("/healthz", HealthzHandler())
	r.Get("/readyz", ReadyzHandler(d.DB))
	r.Get("/exams", ListExamsHandler())

	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(d.Auth))
		if cfg.Mode == config.ModeOnline {
			pr.Use(auth.AttachRoleFromDB(d.DB, false))
		}

		pr.With(rbac.Require(rbac.PermSetsCreate)).
			Post("/question-sets", CreateQuestionSetHandler(d.Engine, d.Log))
		pr.With(rbac.Require(rbac.PermSetsView)).
			Get("/question-sets", ListQuestionSetsHandler(d.Engine, d.Log))
		pr.With(rbac.Require(rbac.PermSetsView)).
			Get("/question-sets/in-progress", InProgressSetsHandler(d.Engine, d.Log))
		pr.With(rbac.Require(rbac.PermSetsView)).
			Get("/question-sets/{setID}/unseen", UnseenQuestionsHandler(d.Engine, d.Log))

		pr.With(rbac.Require(rbac.PermQuestionsView)).
			Get("/questions/{questionID}", GetQuestionHandler(d.Engine, d.Log))
		pr.With(rbac.Require(rbac.PermAnswersRecord)).
			Get("/questions/{questionID}/answers", ListAnswersHandler(d.Engine, d.Log))
		pr.With(rbac.Require(rbac.PermQuestionsView)).
			Get("/questions/{questionID}/opinions", ListOpinionsHandler(d.Engine, d.Log))
		pr.With(rbac.Require(rbac.PermAnswersRecord)).
			Post("/answers", RecordAnswerHandler(d.Engine, d.Log))
		pr.With(rbac.Require(rbac.PermOpinionsRecord)).
			Post("/opinions", RecordOpinionHandler(d.Engine, d.Log))

		if d.Generator != nil {
			pr.With(rbac.Require(rbac.PermQuestionsGenerate)).
				Post("/questions/generate", GenerateQuestionsHandler(d.Generator, d.Log))
		}
		if d.Materials != nil {
			pr.With(rbac.Require(rbac.PermMaterialsGenerate)).
				Post("/learning-materials/generate", GenerateMaterialHandler(d.Materials, d.Log))
			pr.With(rbac.Require(rbac.PermMaterialsView)).
				Get("/learning-materials/{exam}/{topic}", GetMaterialHandler(d.Materials, d.Log))
		}
		if d.Events != nil {
			pr.With(rbac.Require(rbac.PermEventsView)).
				Get("/events", ListEventsHandler(d.Events, d.Log))
		}
	})

	return r
}
