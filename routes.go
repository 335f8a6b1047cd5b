package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"opsdesk/entities/auth"
	"opsdesk/entities/budgets"
	"opsdesk/entities/chat"
	"opsdesk/entities/leads"
	"opsdesk/entities/tasks"
	"opsdesk/entities/users"
	"opsdesk/middlewares"
	"opsdesk/schemas"
	"opsdesk/utils"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const HEALTH_TIMEOUT = 2 * time.Second

type routerDeps struct {
	cfg      *utils.Config
	logger   *slog.Logger
	verifier middlewares.TokenVerifier
	limiter  middlewares.Limiter
	proxies  middlewares.TrustedProxies

	auth    *auth.Handler
	users   *users.Handler
	leads   *leads.Handler
	tasks   *tasks.Handler
	budgets *budgets.Handler
	chat    *chat.Relay

	// ready reports whether the primary store is reachable.
	ready func(ctx context.Context) error
}

func newRouter(d routerDeps) http.Handler {
	const (
		admin   = schemas.USERS_ROLE_ADMIN
		manager = schemas.USERS_ROLE_MANAGER
		sales   = schemas.USERS_ROLE_SALES
	)

	authed := func(h http.HandlerFunc, roles ...string) http.Handler {
		return middlewares.Auth(d.verifier, roles...)(h)
	}
	limited := func(scope string, h http.HandlerFunc) http.Handler {
		return middlewares.RateLimit(d.limiter, scope, d.proxies, d.logger)(h)
	}

	mux := http.NewServeMux()

	mux.Handle("POST /api/auth/register", limited("register", d.auth.Register))
	mux.Handle("POST /api/auth/login", limited("login", d.auth.Login))

	mux.Handle("POST /api/leads", limited("leads", d.leads.CreateOne))
	mux.Handle("GET /api/leads", authed(d.leads.GetAll, admin, manager, sales))
	mux.Handle("GET /api/leads/analytics", authed(d.leads.GetAnalytics, admin, manager))
	// "PUT /api/leads/{id}/stage" would overlap "PUT /api/leads/stages/{id}",
	// so per-lead actions share one pattern.
	leadActions := map[string]http.Handler{
		"stage":  authed(d.leads.UpdateOneStage, admin, manager, sales),
		"pick":   authed(d.leads.PickOne, sales),
		"assign": authed(d.leads.AssignOne, admin),
	}
	mux.HandleFunc("PUT /api/leads/{id}/{action}", func(w http.ResponseWriter, r *http.Request) {
		h, ok := leadActions[r.PathValue("action")]
		if !ok {
			utils.SendError(w, d.logger, utils.NewNotFoundError("Rota não encontrada"))
			return
		}
		h.ServeHTTP(w, r)
	})
	mux.Handle("GET /api/leads/stages", authed(d.leads.GetAllStages, admin, manager, sales))
	mux.Handle("POST /api/leads/stages", authed(d.leads.CreateOneStage, admin, manager))
	mux.Handle("PUT /api/leads/stages/{id}", authed(d.leads.UpdateOneStageName, admin, manager))
	mux.Handle("DELETE /api/leads/stages/{id}", authed(d.leads.DeleteOneStage, admin, manager))

	mux.Handle("POST /api/tasks", authed(d.tasks.CreateOne))
	mux.Handle("GET /api/tasks", authed(d.tasks.GetAll))
	mux.Handle("GET /api/tasks/leaderboard", authed(d.tasks.GetLeaderboard))
	mux.Handle("PUT /api/tasks/{id}", authed(d.tasks.UpdateOne))
	mux.Handle("DELETE /api/tasks/{id}", authed(d.tasks.DeleteOne))

	mux.Handle("GET /api/users", authed(d.users.GetAll))
	mux.Handle("PUT /api/users/{id}", authed(d.users.UpdateOne, admin))

	mux.Handle("POST /api/budget", authed(d.budgets.CreateOne, admin, manager))
	mux.Handle("GET /api/budget", authed(d.budgets.GetAll, admin, manager))
	mux.Handle("GET /api/budget/analytics", authed(d.budgets.GetAnalytics, admin, manager))
	mux.Handle("GET /api/budget/legacy", authed(d.budgets.GetManyOld, admin, manager))
	mux.Handle("POST /api/budget/salary/{userId}", authed(d.budgets.PaySalary, admin))
	mux.Handle("DELETE /api/budget/{id}", authed(d.budgets.DeleteOne, admin, manager))

	mux.Handle("GET /api/chat/messages", authed(d.chat.GetMessages))
	mux.HandleFunc("GET /ws/chat", d.chat.ServeWS)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if d.ready != nil {
			ctx, cancel := context.WithTimeout(r.Context(), HEALTH_TIMEOUT)
			defer cancel()
			if err := d.ready(ctx); err != nil {
				d.logger.Warn("health check failed", "error", err)
				utils.SendResponse(w, http.StatusServiceUnavailable, "", nil, utils.CANNOT_CONNECT_TO_MONGODB)
				return
			}
		}
		utils.SendResponse(w, http.StatusOK, "ok", nil, 0)
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	var handler http.Handler = mux
	handler = middlewares.Cors(d.cfg.CORSOrigins)(handler)
	handler = middlewares.SecurityHeaders(handler)
	handler = middlewares.Metrics(handler)
	handler = middlewares.RequestLogger(d.logger)(handler)
	return handler
}
