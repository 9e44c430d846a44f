// Package postgres is the relational store behind the reporting service.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mamadbah2/landscaper/internal/domain/models"
)

// Store reads clients, visits and materials through gorm.
type Store struct {
	db *gorm.DB
}

// NewStore wraps an open gorm connection.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the tables the store reads.
func Migrate(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).AutoMigrate(
		&ClientRow{},
		&MaterialRow{},
		&ClientMaterialRow{},
		&VisitRow{},
		&VisitMaterialRow{},
		&SettingRow{},
	)
}

// Client returns the client or nil when it does not exist.
func (s *Store) Client(ctx context.Context, id int64) (*models.Client, error) {
	var row ClientRow
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	client := row.toModel()
	return &client, nil
}

// Clients returns clients ordered by name.
func (s *Store) Clients(ctx context.Context, activeOnly bool) ([]models.Client, error) {
	rows, err := clientRows(s.db.WithContext(ctx), activeOnly)
	if err != nil {
		return nil, err
	}
	out := make([]models.Client, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

// ClientVisits returns a client's visits, newest first.
func (s *Store) ClientVisits(ctx context.Context, clientID int64) ([]models.Visit, error) {
	rows, err := visitRows(s.db.WithContext(ctx), []int64{clientID})
	if err != nil {
		return nil, err
	}
	return toVisits(rows), nil
}

// ClientMaterials returns the client's enabled configured materials.
func (s *Store) ClientMaterials(ctx context.Context, clientID int64) ([]models.ClientMaterial, error) {
	rows, err := clientMaterialRows(s.db.WithContext(ctx), []int64{clientID})
	if err != nil {
		return nil, err
	}
	out := make([]models.ClientMaterial, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

// VisitMaterials returns the materials logged on one visit.
func (s *Store) VisitMaterials(ctx context.Context, visitID int64) ([]models.VisitMaterial, error) {
	var rows []VisitMaterialRow
	err := visitMaterialQuery(s.db.WithContext(ctx)).
		Where("visit_materials.visit_id = ?", visitID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toVisitMaterials(rows), nil
}

// VisitMaterialsForClient returns every material logged on the client's visits.
func (s *Store) VisitMaterialsForClient(ctx context.Context, clientID int64) ([]models.VisitMaterial, error) {
	rows, err := visitMaterialRows(s.db.WithContext(ctx), []int64{clientID})
	if err != nil {
		return nil, err
	}
	return toVisitMaterials(rows), nil
}

// Snapshot loads every client with its visits and materials inside one read-only
// repeatable-read transaction, using one query per table.
func (s *Store) Snapshot(ctx context.Context, activeOnly bool) (*models.Dataset, error) {
	var (
		clients   []ClientRow
		visits    []VisitRow
		configs   []ClientMaterialRow
		usedItems []VisitMaterialRow
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if clients, err = clientRows(tx, activeOnly); err != nil {
			return err
		}
		if len(clients) == 0 {
			return nil
		}

		ids := make([]int64, 0, len(clients))
		for _, c := range clients {
			ids = append(ids, c.ID)
		}
		if visits, err = visitRows(tx, ids); err != nil {
			return err
		}
		if configs, err = clientMaterialRows(tx, ids); err != nil {
			return err
		}
		usedItems, err = visitMaterialRows(tx, ids)
		return err
	}, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	return groupHistories(clients, visits, configs, usedItems), nil
}

// groupHistories attaches rows to their client, keeping the client order and the row
// order of each query. Rows of clients outside the list are dropped.
func groupHistories(clients []ClientRow, visits []VisitRow, configs []ClientMaterialRow, usedItems []VisitMaterialRow) *models.Dataset {
	byClient := make(map[int64]*models.ClientHistory, len(clients))
	dataset := &models.Dataset{Histories: make([]models.ClientHistory, len(clients))}
	for i, c := range clients {
		dataset.Histories[i].Client = c.toModel()
		byClient[c.ID] = &dataset.Histories[i]
	}
	for _, v := range visits {
		if h, ok := byClient[v.ClientID]; ok {
			h.Visits = append(h.Visits, v.toModel())
		}
	}
	for _, cm := range configs {
		if h, ok := byClient[cm.ClientID]; ok {
			h.ClientMaterials = append(h.ClientMaterials, cm.toModel())
		}
	}
	for _, vm := range usedItems {
		if h, ok := byClient[vm.ClientID]; ok {
			h.VisitMaterials = append(h.VisitMaterials, vm.toModel())
		}
	}
	return dataset
}

// Setting returns the stored value or fallback.
func (s *Store) Setting(ctx context.Context, key, fallback string) (string, error) {
	var row SettingRow
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fallback, nil
		}
		return "", err
	}
	return row.Value, nil
}

func clientRows(db *gorm.DB, activeOnly bool) ([]ClientRow, error) {
	var rows []ClientRow
	query := db.Model(&ClientRow{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("name ASC, id ASC").Find(&rows).Error
	return rows, err
}

func visitRows(db *gorm.DB, clientIDs []int64) ([]VisitRow, error) {
	var rows []VisitRow
	err := db.Where("client_id IN ?", clientIDs).
		Order("visit_date DESC, id DESC").
		Find(&rows).Error
	return rows, err
}

func clientMaterialRows(db *gorm.DB, clientIDs []int64) ([]ClientMaterialRow, error) {
	var rows []ClientMaterialRow
	err := db.Preload("Material").
		Where("client_id IN ? AND is_enabled = ?", clientIDs, true).
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

func visitMaterialRows(db *gorm.DB, clientIDs []int64) ([]VisitMaterialRow, error) {
	var rows []VisitMaterialRow
	err := visitMaterialQuery(db).
		Where("visits.client_id IN ?", clientIDs).
		Find(&rows).Error
	return rows, err
}

func visitMaterialQuery(db *gorm.DB) *gorm.DB {
	return db.Model(&VisitMaterialRow{}).
		Select("visit_materials.*, visits.client_id").
		Joins("JOIN visits ON visits.id = visit_materials.visit_id").
		Preload("Material").
		Order("visit_materials.id ASC")
}

func toVisits(rows []VisitRow) []models.Visit {
	out := make([]models.Visit, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out
}

func toVisitMaterials(rows []VisitMaterialRow) []models.VisitMaterial {
	out := make([]models.VisitMaterial, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out
}
