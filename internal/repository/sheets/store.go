package sheets

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mamadbah2/landscaper/internal/domain/models"
)

// Sheet ranges, one tab per table. Row 1 of every tab is a header and is skipped because
// its id column does not parse.
const (
	clientsRange         = "Clients!A:H"
	materialsRange       = "Materials!A:F"
	clientMaterialsRange = "ClientMaterials!A:F"
	visitsRange          = "Visits!A:H"
	visitMaterialsRange  = "VisitMaterials!A:E"
	settingsRange        = "Settings!A:B"
	snapshotsRange       = "Snapshots!A:H"
)

// Store reads clients, visits and materials from a spreadsheet. Every call loads a fresh
// copy of the workbook, so results are a consistent snapshot of the sheet at read time.
type Store struct {
	repo   Repository
	logger *zap.Logger
}

// NewStore wraps a range repository.
func NewStore(repo Repository, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{repo: repo, logger: logger}
}

type workbook struct {
	clients         []models.Client
	visits          []models.Visit
	clientMaterials []models.ClientMaterial
	visitMaterials  []models.VisitMaterial
}

func (s *Store) load(ctx context.Context) (*workbook, error) {
	ranges := []string{clientsRange, materialsRange, clientMaterialsRange, visitsRange, visitMaterialsRange}
	rows := make([][][]interface{}, len(ranges))

	g, gctx := errgroup.WithContext(ctx)
	for i, r := range ranges {
		i, r := i, r
		g.Go(func() error {
			values, err := s.repo.ReadRange(gctx, r)
			if err != nil {
				return fmt.Errorf("load %s: %w", r, err)
			}
			rows[i] = values
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	materials := s.parseMaterials(rows[1])
	wb := &workbook{
		clients: s.parseClients(rows[0]),
		visits:  s.parseVisits(rows[3]),
	}
	wb.clientMaterials = s.parseClientMaterials(rows[2], materials)

	visitOwner := make(map[int64]int64, len(wb.visits))
	for _, v := range wb.visits {
		visitOwner[v.ID] = v.ClientID
	}
	wb.visitMaterials = s.parseVisitMaterials(rows[4], materials, visitOwner)

	return wb, nil
}

// Client returns the client or nil when the sheet has no such row.
func (s *Store) Client(ctx context.Context, id int64) (*models.Client, error) {
	wb, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range wb.clients {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, nil
}

// Clients returns clients ordered by name.
func (s *Store) Clients(ctx context.Context, activeOnly bool) ([]models.Client, error) {
	wb, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return wb.clientList(activeOnly), nil
}

// ClientVisits returns a client's visits, newest first.
func (s *Store) ClientVisits(ctx context.Context, clientID int64) ([]models.Visit, error) {
	wb, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return wb.visitsOf(clientID), nil
}

// ClientMaterials returns the client's enabled configured materials.
func (s *Store) ClientMaterials(ctx context.Context, clientID int64) ([]models.ClientMaterial, error) {
	wb, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return wb.clientMaterialsOf(clientID), nil
}

// VisitMaterials returns the materials logged on one visit.
func (s *Store) VisitMaterials(ctx context.Context, visitID int64) ([]models.VisitMaterial, error) {
	wb, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	var out []models.VisitMaterial
	for _, vm := range wb.visitMaterials {
		if vm.VisitID == visitID {
			out = append(out, vm)
		}
	}
	return out, nil
}

// VisitMaterialsForClient returns every material logged on the client's visits.
func (s *Store) VisitMaterialsForClient(ctx context.Context, clientID int64) ([]models.VisitMaterial, error) {
	wb, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return wb.visitMaterialsOf(clientID), nil
}

// Snapshot groups the whole workbook by client from a single load.
func (s *Store) Snapshot(ctx context.Context, activeOnly bool) (*models.Dataset, error) {
	wb, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	clients := wb.clientList(activeOnly)
	dataset := &models.Dataset{Histories: make([]models.ClientHistory, 0, len(clients))}
	for _, c := range clients {
		dataset.Histories = append(dataset.Histories, wb.history(c))
	}
	return dataset, nil
}

// ClientHistory loads one client with its visits and materials from a single read of the
// workbook. It returns nil when the sheet has no such client.
func (s *Store) ClientHistory(ctx context.Context, clientID int64) (*models.ClientHistory, error) {
	wb, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range wb.clients {
		if c.ID == clientID {
			h := wb.history(c)
			return &h, nil
		}
	}
	return nil, nil
}

// Setting reads a key from the Settings tab.
func (s *Store) Setting(ctx context.Context, key, fallback string) (string, error) {
	rows, err := s.repo.ReadRange(ctx, settingsRange)
	if err != nil {
		return "", fmt.Errorf("load %s: %w", settingsRange, err)
	}
	if v, ok := parseSettings(rows)[key]; ok {
		return v, nil
	}
	return fallback, nil
}

// SaveSnapshots appends one row per client to the Snapshots tab. It is used when no
// MongoDB is configured.
func (s *Store) SaveSnapshots(ctx context.Context, snapshots []models.ProfitabilitySnapshot) error {
	for _, snap := range snapshots {
		st := snap.Statistics
		values := []interface{}{
			snap.RunID,
			snap.TakenAt.Format(time.RFC3339),
			snap.ClientID,
			st.ClientName,
			st.ActualMonthlyCharge,
			st.ProposedMonthlyRate,
			st.MonthlyProfitLoss,
			st.IsProfitable,
		}
		if err := s.repo.WriteRow(ctx, snapshotsRange, values); err != nil {
			return fmt.Errorf("append snapshot for client %d: %w", snap.ClientID, err)
		}
	}
	return nil
}

func (wb *workbook) history(c models.Client) models.ClientHistory {
	return models.ClientHistory{
		Client:          c,
		Visits:          wb.visitsOf(c.ID),
		VisitMaterials:  wb.visitMaterialsOf(c.ID),
		ClientMaterials: wb.clientMaterialsOf(c.ID),
	}
}

func (wb *workbook) clientList(activeOnly bool) []models.Client {
	out := make([]models.Client, 0, len(wb.clients))
	for _, c := range wb.clients {
		if activeOnly && !c.IsActive {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (wb *workbook) visitsOf(clientID int64) []models.Visit {
	var out []models.Visit
	for _, v := range wb.visits {
		if v.ClientID == clientID {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].VisitDate.After(out[j].VisitDate) })
	return out
}

func (wb *workbook) clientMaterialsOf(clientID int64) []models.ClientMaterial {
	var out []models.ClientMaterial
	for _, cm := range wb.clientMaterials {
		if cm.ClientID == clientID && cm.IsEnabled {
			out = append(out, cm)
		}
	}
	return out
}

func (wb *workbook) visitMaterialsOf(clientID int64) []models.VisitMaterial {
	var out []models.VisitMaterial
	for _, vm := range wb.visitMaterials {
		if vm.ClientID == clientID {
			out = append(out, vm)
		}
	}
	return out
}
