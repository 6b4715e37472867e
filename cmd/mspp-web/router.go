package main

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/interpose/middleware"
	"github.com/justinas/alice"
)

func router(config *Global) http.Handler {
	router := mux.NewRouter()
	POST := router.Methods("POST").Subrouter()
	GET := router.Methods("GET", "HEAD").Subrouter()
	DELETE := router.Methods("DELETE").Subrouter()

	h := handler{Global: config}

	GET.HandleFunc("/api/health", h.Health)
	GET.HandleFunc("/api/files", h.ListFiles)

	//
	// POST
	//
	POST.HandleFunc("/api/upload", h.Upload)
	POST.HandleFunc("/api/plot/{chart_type}", h.Plot)
	POST.HandleFunc("/api/export/{chart_type}", h.Export)
	POST.HandleFunc("/api/export-bundle", h.ExportBundle)

	DELETE.HandleFunc("/api/files", h.ClearFiles)

	standard := alice.New(
		// Log all requests to STDOUT
		middleware.GorillaLog(),
	)

	return standard.Then(router)
}
