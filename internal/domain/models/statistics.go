package models

import "time"

// ClientStatistics is the cost projection and profitability verdict for one client.
// Money is rounded to 2 decimals, minutes to 1 decimal.
type ClientStatistics struct {
	ClientID            int64   `json:"client_id" bson:"client_id"`
	ClientName          string  `json:"client_name" bson:"client_name"`
	ActualMonthlyCharge float64 `json:"actual_monthly_charge" bson:"actual_monthly_charge"`
	HourlyRate          float64 `json:"hourly_rate" bson:"hourly_rate"`

	VisitCount     int `json:"visit_count" bson:"visit_count"`
	VisitsThisYear int `json:"visits_this_year" bson:"visits_this_year"`

	ConfiguredMaterialsCostYearly float64 `json:"configured_materials_cost_yearly" bson:"configured_materials_cost_yearly"`
	ConfiguredServicesCostYearly  float64 `json:"configured_services_cost_yearly" bson:"configured_services_cost_yearly"`
	VisitMaterialCost             float64 `json:"visit_material_cost" bson:"visit_material_cost"`
	VisitServiceCost              float64 `json:"visit_service_cost" bson:"visit_service_cost"`
	TotalMaterialCost             float64 `json:"total_material_cost" bson:"total_material_cost"`
	TotalServiceCost              float64 `json:"total_service_cost" bson:"total_service_cost"`
	TotalMaterialsServicesCost    float64 `json:"total_materials_services_cost" bson:"total_materials_services_cost"`

	AvgTimePerVisit float64 `json:"avg_time_per_visit" bson:"avg_time_per_visit"`
	MinTimePerVisit float64 `json:"min_time_per_visit" bson:"min_time_per_visit"`
	MaxTimePerVisit float64 `json:"max_time_per_visit" bson:"max_time_per_visit"`
	TotalDuration   float64 `json:"total_duration" bson:"total_duration"`

	TotalLaborCost           float64 `json:"total_labor_cost" bson:"total_labor_cost"`
	AvgLaborCostPerVisit     float64 `json:"avg_labor_cost_per_visit" bson:"avg_labor_cost_per_visit"`
	AvgCostPerVisit          float64 `json:"avg_cost_per_visit" bson:"avg_cost_per_visit"`
	ProjectedVisitsPerYear   float64 `json:"projected_visits_per_year" bson:"projected_visits_per_year"`
	ProjectedYearlyLaborCost float64 `json:"projected_yearly_labor_cost" bson:"projected_yearly_labor_cost"`
	EstYearlyCost            float64 `json:"est_yearly_cost" bson:"est_yearly_cost"`
	ProposedMonthlyRate      float64 `json:"proposed_monthly_rate" bson:"proposed_monthly_rate"`
	MonthlyProfitLoss        float64 `json:"monthly_profit_loss" bson:"monthly_profit_loss"`
	IsProfitable             bool    `json:"is_profitable" bson:"is_profitable"`
}

// AnomalousVisit is a visit whose duration is far above its client's average.
type AnomalousVisit struct {
	Visit
	ClientName   string  `json:"client_name"`
	AvgDuration  float64 `json:"avg_duration"`
	TotalVisits  int     `json:"total_visits"`
	PercentOfAvg float64 `json:"percent_of_avg"`
}

// MonthlyAverage is one point of the per-month trend for a client.
type MonthlyAverage struct {
	Month   time.Time `json:"month"`
	Average float64   `json:"average"`
	Visits  int       `json:"visits"`
}

// TodoList groups everything that needs an operator's attention.
type TodoList struct {
	VisitsNeedingReview    []Visit          `json:"visits_needing_review"`
	AnomalousVisits        []AnomalousVisit `json:"anomalous_visits"`
	ClientsMissingServices []Client         `json:"clients_missing_services"`
	ClientsMissingContact  []Client         `json:"clients_missing_contact"`
}
