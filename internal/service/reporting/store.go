package reporting

import (
	"context"

	"github.com/mamadbah2/landscaper/internal/domain/models"
)

// Store is the read side of the storage collaborator. Absent rows are reported as nil or
// empty results, never as errors.
type Store interface {
	Client(ctx context.Context, id int64) (*models.Client, error)
	Clients(ctx context.Context, activeOnly bool) ([]models.Client, error)
	ClientVisits(ctx context.Context, clientID int64) ([]models.Visit, error)
	// ClientMaterials returns the enabled configured materials joined with the catalog.
	ClientMaterials(ctx context.Context, clientID int64) ([]models.ClientMaterial, error)
	VisitMaterials(ctx context.Context, visitID int64) ([]models.VisitMaterial, error)
	VisitMaterialsForClient(ctx context.Context, clientID int64) ([]models.VisitMaterial, error)
	// Snapshot fetches every client with its history in one batch.
	Snapshot(ctx context.Context, activeOnly bool) (*models.Dataset, error)
	Setting(ctx context.Context, key, fallback string) (string, error)
}

// HistoryStore is implemented by stores that load one client's full history in a single
// read. The service uses it instead of the four per-table lookups when available.
type HistoryStore interface {
	ClientHistory(ctx context.Context, clientID int64) (*models.ClientHistory, error)
}

// SnapshotRepository persists scheduled profitability snapshots.
type SnapshotRepository interface {
	SaveSnapshots(ctx context.Context, snapshots []models.ProfitabilitySnapshot) error
}
