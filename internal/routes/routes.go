package routes

import (
	"net/http"

	"github.com/lozanotech/task-manager-api/internal/app"
	"github.com/lozanotech/task-manager-api/internal/handler"
	"github.com/lozanotech/task-manager-api/internal/middleware"
)

func SetupRoutes(a *app.App) http.Handler {
	// Handlers
	auth := handler.NewAuthHandler(a.AuthService)
	account := handler.NewAccountHandler(a.UserService, a.AvatarService)
	task := handler.NewTaskHandler(a.TaskService)

	requireAuth := middleware.RequireAuth(a.AuthService, a.UserService)
	rateLimiter := middleware.RateLimitAuth(a.Cfg.AuthRateLimit, a.Cfg.AuthRateWindow)

	mux := http.NewServeMux()

	// Public routes (rate limited: credential guessing)
	mux.HandleFunc("POST /users", rateLimiter(auth.Register))
	mux.HandleFunc("POST /users/login", rateLimiter(auth.Login))
	mux.HandleFunc("GET /users/{id}/avatar", account.Avatar)

	// Account
	mux.HandleFunc("POST /users/logout", requireAuth(auth.Logout))
	mux.HandleFunc("POST /users/logoutAll", requireAuth(auth.LogoutAll))
	mux.HandleFunc("GET /users/me", requireAuth(account.Me))
	mux.HandleFunc("PATCH /users/me", requireAuth(account.UpdateMe))
	mux.HandleFunc("DELETE /users/me", requireAuth(account.DeleteMe))
	mux.HandleFunc("POST /users/me/avatar", requireAuth(account.UploadAvatar))
	mux.HandleFunc("DELETE /users/me/avatar", requireAuth(account.DeleteAvatar))

	// Tasks (all owner-scoped, including the single fetch)
	mux.HandleFunc("POST /tasks", requireAuth(task.Create))
	mux.HandleFunc("GET /tasks", requireAuth(task.List))
	mux.HandleFunc("GET /tasks/{id}", requireAuth(task.ByID))
	mux.HandleFunc("PATCH /tasks/{id}", requireAuth(task.Update))
	mux.HandleFunc("DELETE /tasks/{id}", requireAuth(task.Delete))

	// Global middleware - executed in order (top to bottom)
	return middleware.Chain(
		mux,
		middleware.RequestLogging,
	)
}
