package postgres

import (
	"time"

	"github.com/mamadbah2/landscaper/internal/domain/models"
)

// ClientRow maps the clients table.
type ClientRow struct {
	ID            int64     `gorm:"primaryKey"`
	Name          string    `gorm:"size:200;not null"`
	Email         string    `gorm:"size:200"`
	Phone         string    `gorm:"size:50"`
	Address       string    `gorm:"size:500"`
	MonthlyCharge float64   `gorm:"not null;default:0"`
	IsActive      bool      `gorm:"not null;default:true"`
	ClientType    string    `gorm:"size:50"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

func (ClientRow) TableName() string { return "clients" }

// MaterialRow maps the global materials catalog.
type MaterialRow struct {
	ID           int64   `gorm:"primaryKey"`
	Name         string  `gorm:"size:200;not null;uniqueIndex"`
	DefaultCost  float64 `gorm:"not null;default:0"`
	Unit         string  `gorm:"size:50"`
	MaterialType string  `gorm:"size:20;not null;default:material"`
	IsGlobal     bool    `gorm:"not null;default:true"`
}

func (MaterialRow) TableName() string { return "materials" }

// ClientMaterialRow maps client_materials.
type ClientMaterialRow struct {
	ID         int64       `gorm:"primaryKey"`
	ClientID   int64       `gorm:"not null;uniqueIndex:idx_client_material"`
	MaterialID int64       `gorm:"not null;uniqueIndex:idx_client_material"`
	CustomCost *float64    `gorm:"default:null"`
	Multiplier float64     `gorm:"not null;default:1"`
	IsEnabled  bool        `gorm:"not null;default:true"`
	Material   MaterialRow `gorm:"foreignKey:MaterialID"`
}

func (ClientMaterialRow) TableName() string { return "client_materials" }

// VisitRow maps visits.
type VisitRow struct {
	ID              int64     `gorm:"primaryKey"`
	ClientID        int64     `gorm:"not null;index"`
	VisitDate       time.Time `gorm:"type:date;not null;index"`
	StartTime       string    `gorm:"size:8;not null"`
	EndTime         string    `gorm:"size:8;not null"`
	DurationMinutes float64   `gorm:"not null"`
	Notes           string    `gorm:"type:text"`
	NeedsReview     bool      `gorm:"not null;default:false"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
}

func (VisitRow) TableName() string { return "visits" }

// VisitMaterialRow maps visit_materials. ClientID is filled from the joined visit.
type VisitMaterialRow struct {
	ID         int64       `gorm:"primaryKey"`
	VisitID    int64       `gorm:"not null;index"`
	MaterialID int64       `gorm:"not null"`
	Quantity   float64     `gorm:"not null;default:1"`
	CostAtTime float64     `gorm:"not null"`
	ClientID   int64       `gorm:"->;-:migration"`
	Material   MaterialRow `gorm:"foreignKey:MaterialID"`
}

func (VisitMaterialRow) TableName() string { return "visit_materials" }

// SettingRow maps the key/value settings table.
type SettingRow struct {
	Key   string `gorm:"primaryKey;size:100"`
	Value string `gorm:"type:text"`
}

func (SettingRow) TableName() string { return "settings" }

func (r ClientRow) toModel() models.Client {
	return models.Client{
		ID:            r.ID,
		Name:          r.Name,
		Email:         r.Email,
		Phone:         r.Phone,
		Address:       r.Address,
		MonthlyCharge: r.MonthlyCharge,
		IsActive:      r.IsActive,
		ClientType:    r.ClientType,
	}
}

func (r MaterialRow) toModel() models.Material {
	return models.Material{
		ID:           r.ID,
		Name:         r.Name,
		DefaultCost:  r.DefaultCost,
		Unit:         r.Unit,
		MaterialType: models.ParseMaterialType(r.MaterialType),
		IsGlobal:     r.IsGlobal,
	}
}

func (r ClientMaterialRow) toModel() models.ClientMaterial {
	return models.ClientMaterial{
		ID:         r.ID,
		ClientID:   r.ClientID,
		Material:   r.Material.toModel(),
		CustomCost: r.CustomCost,
		Multiplier: r.Multiplier,
		IsEnabled:  r.IsEnabled,
	}
}

func (r VisitRow) toModel() models.Visit {
	return models.Visit{
		ID:              r.ID,
		ClientID:        r.ClientID,
		VisitDate:       r.VisitDate,
		StartTime:       r.StartTime,
		EndTime:         r.EndTime,
		DurationMinutes: r.DurationMinutes,
		Notes:           r.Notes,
		NeedsReview:     r.NeedsReview,
	}
}

func (r VisitMaterialRow) toModel() models.VisitMaterial {
	return models.VisitMaterial{
		ID:         r.ID,
		VisitID:    r.VisitID,
		ClientID:   r.ClientID,
		Material:   r.Material.toModel(),
		Quantity:   r.Quantity,
		CostAtTime: r.CostAtTime,
	}
}
