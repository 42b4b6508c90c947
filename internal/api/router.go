// Package api serves the JSON HTTP API.
package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/erazemk/sef/internal/model"
)

// Options configures the API router.
type Options struct {
	JWTSecret   string
	TokenTTL    time.Duration
	RecentLimit int
}

// NewRouter creates the API router with all endpoints registered. Reads are
// open to every signed-in user, ledger and registry writes need a manager and
// account administration needs an admin.
func NewRouter(db *sql.DB, opts Options) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: opts.JWTSecret, TokenTTL: opts.TokenTTL}
	usersHandler := &UsersHandler{DB: db}
	lockersHandler := &LockersHandler{DB: db}
	assetsHandler := &AssetsHandler{DB: db}
	transactionsHandler := &TransactionsHandler{DB: db}
	dashboardHandler := &DashboardHandler{DB: db, RecentLimit: opts.RecentLimit}

	authMW := AuthMiddleware(opts.JWTSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireManager := RequireRole(model.RoleManager)

	read := func(h http.HandlerFunc) http.Handler { return authMW(h) }
	write := func(h http.HandlerFunc) http.Handler { return authMW(requireManager(h)) }
	admin := func(h http.HandlerFunc) http.Handler { return authMW(requireAdmin(h)) }

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated routes.
	mux.Handle("PUT /api/auth/password", read(authHandler.ChangePassword))
	mux.Handle("POST /api/auth/logout", read(authHandler.Logout))

	// Users (admin only).
	mux.Handle("GET /api/users", admin(usersHandler.List))
	mux.Handle("POST /api/users", admin(usersHandler.Create))
	mux.Handle("GET /api/users/{id}", admin(usersHandler.Get))
	mux.Handle("PUT /api/users/{id}", admin(usersHandler.Update))
	mux.Handle("PUT /api/users/{id}/password", admin(usersHandler.ResetPassword))
	mux.Handle("DELETE /api/users/{id}", admin(usersHandler.Delete))

	// Lockers.
	mux.Handle("GET /api/lockers", read(lockersHandler.List))
	mux.Handle("POST /api/lockers", write(lockersHandler.Create))
	mux.Handle("GET /api/lockers/{id}", read(lockersHandler.Get))
	mux.Handle("PUT /api/lockers/{id}", write(lockersHandler.Update))
	mux.Handle("DELETE /api/lockers/{id}", write(lockersHandler.Delete))
	mux.Handle("GET /api/lockers/{id}/assets", read(assetsHandler.ListByLocker))
	mux.Handle("POST /api/lockers/{id}/assets", write(assetsHandler.Create))
	mux.Handle("GET /api/lockers/{id}/transactions", read(transactionsHandler.ListByLocker))
	mux.Handle("GET /api/lockers/{id}/transactions/filter", read(transactionsHandler.ListByLocker))
	mux.Handle("GET /api/lockers/{id}/dashboard", read(dashboardHandler.Get))
	mux.Handle("GET /api/dashboard", read(dashboardHandler.GetAll))

	// Assets.
	mux.Handle("GET /api/assets/{id}", read(assetsHandler.Get))
	mux.Handle("PUT /api/assets/{id}", write(assetsHandler.Update))
	mux.Handle("DELETE /api/assets/{id}", write(assetsHandler.Delete))
	mux.Handle("GET /api/assets/{id}/transactions", read(assetsHandler.Transactions))
	mux.Handle("GET /api/assets/{id}/status", read(assetsHandler.Status))
	mux.Handle("GET /api/assets/{id}/edit-history", read(assetsHandler.EditHistory))

	// Transactions.
	mux.Handle("POST /api/transactions", write(transactionsHandler.Create))
	mux.Handle("GET /api/transactions/{id}", read(transactionsHandler.Get))
	mux.Handle("PUT /api/transactions/{id}", write(transactionsHandler.Update))
	mux.Handle("DELETE /api/transactions/{id}", write(transactionsHandler.Delete))

	return mux
}
