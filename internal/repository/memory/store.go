// Package memory holds an in-process store used by the CLI demo mode and by tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mamadbah2/landscaper/internal/domain/models"
)

// Store keeps clients, visits and materials in maps guarded by a RWMutex.
type Store struct {
	mu              sync.RWMutex
	clients         map[int64]models.Client
	visits          map[int64]models.Visit
	materials       map[int64]models.Material
	clientMaterials []models.ClientMaterial
	visitMaterials  []models.VisitMaterial
	settings        map[string]string
	nextID          int64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		clients:   make(map[int64]models.Client),
		visits:    make(map[int64]models.Visit),
		materials: make(map[int64]models.Material),
		settings:  make(map[string]string),
	}
}

func (s *Store) id(current int64) int64 {
	if current != 0 {
		if current > s.nextID {
			s.nextID = current
		}
		return current
	}
	s.nextID++
	return s.nextID
}

// AddClient stores a client, assigning an id when it has none.
func (s *Store) AddClient(c models.Client) models.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.id(c.ID)
	s.clients[c.ID] = c
	return c
}

// AddMaterial stores a catalog entry, assigning an id when it has none.
func (s *Store) AddMaterial(m models.Material) models.Material {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = s.id(m.ID)
	s.materials[m.ID] = m
	return m
}

// AddVisit stores a visit, assigning an id when it has none.
func (s *Store) AddVisit(v models.Visit) models.Visit {
	s.mu.Lock()
	defer s.mu.Unlock()
	v.ID = s.id(v.ID)
	s.visits[v.ID] = v
	return v
}

// AssignMaterial configures a recurring material on a client. The material must already
// be in the catalog.
func (s *Store) AssignMaterial(clientID, materialID int64, customCost *float64, multiplier float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clientMaterials = append(s.clientMaterials, models.ClientMaterial{
		ID:         s.id(0),
		ClientID:   clientID,
		Material:   s.materials[materialID],
		CustomCost: customCost,
		Multiplier: multiplier,
		IsEnabled:  true,
	})
}

// LogMaterial records material usage on a visit at the given unit cost.
func (s *Store) LogMaterial(visitID, materialID int64, quantity, costAtTime float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visitMaterials = append(s.visitMaterials, models.VisitMaterial{
		ID:         s.id(0),
		VisitID:    visitID,
		ClientID:   s.visits[visitID].ClientID,
		Material:   s.materials[materialID],
		Quantity:   quantity,
		CostAtTime: costAtTime,
	})
}

// SetSetting stores a global setting.
func (s *Store) SetSetting(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[key] = value
}

// Client returns the client or nil when it does not exist.
func (s *Store) Client(_ context.Context, id int64) (*models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clients[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// Clients returns clients ordered by name.
func (s *Store) Clients(_ context.Context, activeOnly bool) ([]models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clientList(activeOnly), nil
}

// ClientVisits returns a client's visits, newest first.
func (s *Store) ClientVisits(_ context.Context, clientID int64) ([]models.Visit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.visitsOf(clientID), nil
}

// ClientMaterials returns the client's enabled configured materials.
func (s *Store) ClientMaterials(_ context.Context, clientID int64) ([]models.ClientMaterial, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clientMaterialsOf(clientID), nil
}

// VisitMaterials returns the materials logged on one visit.
func (s *Store) VisitMaterials(_ context.Context, visitID int64) ([]models.VisitMaterial, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.VisitMaterial
	for _, vm := range s.visitMaterials {
		if vm.VisitID == visitID {
			out = append(out, vm)
		}
	}
	return out, nil
}

// VisitMaterialsForClient returns every material logged on any of the client's visits.
func (s *Store) VisitMaterialsForClient(_ context.Context, clientID int64) ([]models.VisitMaterial, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.visitMaterialsOf(clientID), nil
}

// Snapshot copies every client's history under a single read lock.
func (s *Store) Snapshot(_ context.Context, activeOnly bool) (*models.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clients := s.clientList(activeOnly)
	dataset := &models.Dataset{Histories: make([]models.ClientHistory, 0, len(clients))}
	for _, c := range clients {
		dataset.Histories = append(dataset.Histories, models.ClientHistory{
			Client:          c,
			Visits:          s.visitsOf(c.ID),
			VisitMaterials:  s.visitMaterialsOf(c.ID),
			ClientMaterials: s.clientMaterialsOf(c.ID),
		})
	}
	return dataset, nil
}

// Setting returns the stored value or fallback.
func (s *Store) Setting(_ context.Context, key, fallback string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.settings[key]; ok {
		return v, nil
	}
	return fallback, nil
}

func (s *Store) clientList(activeOnly bool) []models.Client {
	out := make([]models.Client, 0, len(s.clients))
	for _, c := range s.clients {
		if activeOnly && !c.IsActive {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *Store) visitsOf(clientID int64) []models.Visit {
	var out []models.Visit
	for _, v := range s.visits {
		if v.ClientID == clientID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].VisitDate.Equal(out[j].VisitDate) {
			return out[i].VisitDate.After(out[j].VisitDate)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (s *Store) clientMaterialsOf(clientID int64) []models.ClientMaterial {
	var out []models.ClientMaterial
	for _, cm := range s.clientMaterials {
		if cm.ClientID == clientID && cm.IsEnabled {
			out = append(out, cm)
		}
	}
	return out
}

func (s *Store) visitMaterialsOf(clientID int64) []models.VisitMaterial {
	var out []models.VisitMaterial
	for _, vm := range s.visitMaterials {
		if vm.ClientID == clientID {
			out = append(out, vm)
		}
	}
	return out
}
