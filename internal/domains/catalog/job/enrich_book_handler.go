package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	catalogService "books-commons/internal/domains/catalog/service"
	"books-commons/internal/shared"
	"books-commons/internal/shared/apperror"
)

// EnrichBookHandler bổ sung metadata + mirror ảnh bìa cho một book
type EnrichBookHandler struct {
	catalogService catalogService.Service
}

func NewEnrichBookHandler(catalogService catalogService.Service) *EnrichBookHandler {
	return &EnrichBookHandler{catalogService: catalogService}
}

// ProcessTask xử lý TypeCatalogEnrichBook
func (h *EnrichBookHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.EnrichBookPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal EnrichBook payload")
		return fmt.Errorf("unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	bookID, err := uuid.Parse(payload.BookID)
	if err != nil {
		return fmt.Errorf("invalid book_id %q: %w", payload.BookID, asynq.SkipRetry)
	}

	log.Info().Str("book_id", payload.BookID).Msg("Enriching book metadata")

	if err := h.catalogService.EnrichBook(ctx, bookID); err != nil {
		if apperror.IsKind(err, apperror.KindNotFound) {
			// book đã bị xoá trước khi job chạy
			log.Warn().Str("book_id", payload.BookID).Msg("Book disappeared before enrichment")
			return nil
		}
		log.Error().Err(err).Str("book_id", payload.BookID).Msg("Failed to enrich book")
		return fmt.Errorf("enrich book: %w", err)
	}
	return nil
}
