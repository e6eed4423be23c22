package main

import (
	"github.com/hibiken/asynq"

	catalogJob "books-commons/internal/domains/catalog/job"
	"books-commons/internal/shared"
	"books-commons/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	enrichBook  *catalogJob.EnrichBookHandler
	enrichSweep *catalogJob.EnrichSweepHandler
}

// initializeHandlers creates all job handlers with their dependencies
func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		enrichBook:  catalogJob.NewEnrichBookHandler(c.CatalogService),
		enrichSweep: catalogJob.NewEnrichSweepHandler(c.CatalogService),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	// Catalog enrichment
	mux.HandleFunc(shared.TypeCatalogEnrichBook, h.enrichBook.ProcessTask)
	mux.HandleFunc(shared.TypeCatalogEnrichSweep, h.enrichSweep.ProcessTask)
}
