package models

import "time"

// MaterialType separates physical consumables from billable services.
type MaterialType string

const (
	MaterialTypeMaterial MaterialType = "material"
	MaterialTypeService  MaterialType = "service"
)

// ParseMaterialType maps free-form storage values onto a MaterialType. Anything that is
// not explicitly a service is treated as a material.
func ParseMaterialType(value string) MaterialType {
	if MaterialType(value) == MaterialTypeService {
		return MaterialTypeService
	}
	return MaterialTypeMaterial
}

// Client is a billed customer/property receiving recurring service.
type Client struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Phone         string  `json:"phone"`
	Address       string  `json:"address"`
	MonthlyCharge float64 `json:"monthly_charge"`
	IsActive      bool    `json:"is_active"`
	ClientType    string  `json:"client_type"`
}

// Visit is one completed service appointment.
type Visit struct {
	ID              int64     `json:"id"`
	ClientID        int64     `json:"client_id"`
	VisitDate       time.Time `json:"visit_date"`
	StartTime       string    `json:"start_time"`
	EndTime         string    `json:"end_time"`
	DurationMinutes float64   `json:"duration_minutes"`
	Notes           string    `json:"notes"`
	NeedsReview     bool      `json:"needs_review"`
}

// Material is a catalog entry for a consumable or service.
type Material struct {
	ID           int64        `json:"id"`
	Name         string       `json:"name"`
	DefaultCost  float64      `json:"default_cost"`
	Unit         string       `json:"unit"`
	MaterialType MaterialType `json:"material_type"`
	IsGlobal     bool         `json:"is_global"`
}

// ClientMaterial is a recurring material/service configured on a client profile.
type ClientMaterial struct {
	ID         int64    `json:"id"`
	ClientID   int64    `json:"client_id"`
	Material   Material `json:"material"`
	CustomCost *float64 `json:"custom_cost"`
	Multiplier float64  `json:"multiplier"`
	IsEnabled  bool     `json:"is_enabled"`
}

// EffectiveCost returns the client override when present, else the catalog default.
func (cm ClientMaterial) EffectiveCost() float64 {
	if cm.CustomCost != nil {
		return *cm.CustomCost
	}
	return cm.Material.DefaultCost
}

// YearlyCost is the configured contribution per year.
func (cm ClientMaterial) YearlyCost() float64 {
	return cm.EffectiveCost() * cm.Multiplier
}

// VisitMaterial is a material/service logged against a single visit.
type VisitMaterial struct {
	ID         int64    `json:"id"`
	VisitID    int64    `json:"visit_id"`
	ClientID   int64    `json:"client_id"`
	Material   Material `json:"material"`
	Quantity   float64  `json:"quantity"`
	CostAtTime float64  `json:"cost_at_time"`
}

// Cost is quantity times the unit cost snapshotted when the visit was recorded.
func (vm VisitMaterial) Cost() float64 {
	return vm.Quantity * vm.CostAtTime
}

// ClientHistory bundles everything the analytics need for one client.
type ClientHistory struct {
	Client          Client           `json:"client"`
	Visits          []Visit          `json:"visits"`
	VisitMaterials  []VisitMaterial  `json:"visit_materials"`
	ClientMaterials []ClientMaterial `json:"client_materials"`
}

// Dataset is a batch snapshot of the store, grouped by client.
type Dataset struct {
	Histories []ClientHistory `json:"histories"`
}

// AllVisits flattens the visits of every client in the dataset.
func (d *Dataset) AllVisits() []Visit {
	if d == nil {
		return nil
	}
	var visits []Visit
	for _, h := range d.Histories {
		visits = append(visits, h.Visits...)
	}
	return visits
}
