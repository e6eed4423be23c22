package shared

// Asynq task types
const (
	TypeCatalogEnrichBook  = "catalog:enrich_book"
	TypeCatalogEnrichSweep = "catalog:enrich_sweep"
)

// Queue names, cùng priority weights với worker
const (
	QueueHigh    = "high"
	QueueDefault = "default"
	QueueLow     = "low"
)

// EnrichBookPayload - payload của TypeCatalogEnrichBook
type EnrichBookPayload struct {
	BookID string `json:"book_id"`
}
