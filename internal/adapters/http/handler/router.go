package handler

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/ogurasousui/employee-management/internal/adapters/http/middleware"
	"github.com/ogurasousui/employee-management/internal/core/employee"
	"github.com/ogurasousui/employee-management/internal/core/user"
	"github.com/rs/zerolog"
)

// Tokens はトークンの発行と検証をまとめたものです。
type Tokens interface {
	TokenIssuer
	middleware.TokenParser
}

// RouterDeps はルーター構築に必要な依存関係です。
type RouterDeps struct {
	Employees      employee.UseCase
	Users          user.UseCase
	Tokens         Tokens
	Uploads        Uploader
	UploadDir      string
	MaxUploadBytes int64
	Logger         zerolog.Logger
}

// NewRouter は HTTP API のルーティングを構築します。
func NewRouter(deps RouterDeps) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Logging(deps.Logger), middleware.Recovery, middleware.CORS)

	r.HandleFunc("/health", Health).Methods(http.MethodGet)

	authHandler := NewAuthHandler(deps.Users, deps.Tokens)
	r.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	r.Handle("/auth/me", middleware.Authenticate(deps.Tokens)(http.HandlerFunc(authHandler.Me))).Methods(http.MethodGet)

	employees := NewEmployeeHandler(deps.Employees, deps.Uploads, deps.MaxUploadBytes)
	api := r.PathPrefix("/employees").Subrouter()
	api.Use(middleware.Authenticate(deps.Tokens))
	api.HandleFunc("", employees.List).Methods(http.MethodGet)
	api.HandleFunc("", employees.Create).Methods(http.MethodPost)
	api.HandleFunc("/export", employees.Export).Methods(http.MethodGet)
	api.HandleFunc("/{id}", employees.Get).Methods(http.MethodGet)
	api.HandleFunc("/{id}", employees.Update).Methods(http.MethodPut)
	api.Handle("/{id}", middleware.RequireAdmin(http.HandlerFunc(employees.Delete))).Methods(http.MethodDelete)

	if deps.UploadDir != "" {
		r.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", noDirListing(http.FileServer(http.Dir(deps.UploadDir))))).
			Methods(http.MethodGet, http.MethodHead)
	}

	// プリフライトは CORS ミドルウェアで応答させるため、全パスで OPTIONS を受け付けます。
	r.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Message: "route not found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Message: "method not allowed"})
	})

	return r
}

// Health は稼働確認用のレスポンスを返します。
func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
