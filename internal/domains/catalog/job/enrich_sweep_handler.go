package job

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	catalogService "books-commons/internal/domains/catalog/service"
)

// EnrichSweepHandler - periodic task: enqueue enrichment cho books còn thiếu metadata
type EnrichSweepHandler struct {
	catalogService catalogService.Service
}

func NewEnrichSweepHandler(catalogService catalogService.Service) *EnrichSweepHandler {
	return &EnrichSweepHandler{catalogService: catalogService}
}

func (h *EnrichSweepHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	count, err := h.catalogService.SweepIncomplete(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Catalog enrichment sweep failed")
		return fmt.Errorf("sweep incomplete books: %w", err)
	}

	log.Info().Int("enqueued", count).Msg("Catalog enrichment sweep completed")
	return nil
}
