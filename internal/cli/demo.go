package cli

import (
	"time"

	"github.com/mamadbah2/landscaper/internal/domain/models"
	"github.com/mamadbah2/landscaper/internal/repository/memory"
)

// demoStore is a small portfolio: one client that covers its costs, one that does not,
// and one with a visit that ran far past its usual length.
func demoStore() *memory.Store {
	store := memory.NewStore()
	today := time.Now().UTC().Truncate(24 * time.Hour)

	mulch := store.AddMaterial(models.Material{Name: "Mulch", DefaultCost: 35, Unit: "yard", MaterialType: models.MaterialTypeMaterial, IsGlobal: true})
	fert := store.AddMaterial(models.Material{Name: "Fertilization", DefaultCost: 60, Unit: "application", MaterialType: models.MaterialTypeService, IsGlobal: true})
	aeration := store.AddMaterial(models.Material{Name: "Aeration", DefaultCost: 120, Unit: "each", MaterialType: models.MaterialTypeService, IsGlobal: true})

	maple := store.AddClient(models.Client{Name: "Maple Street HOA", MonthlyCharge: 650, IsActive: true, Email: "board@maple.example", Address: "100 Maple St", ClientType: "commercial"})
	cedar := store.AddClient(models.Client{Name: "Cedar Ridge", MonthlyCharge: 180, IsActive: true, Phone: "555-0142", Address: "7 Cedar Ridge Rd", ClientType: "residential"})
	pine := store.AddClient(models.Client{Name: "Pine Hollow", MonthlyCharge: 220, IsActive: true, ClientType: "residential"})
	store.AddClient(models.Client{Name: "Elm Court", MonthlyCharge: 150, IsActive: false, Email: "elm@example.com", Address: "3 Elm Ct"})

	for i, d := range []float64{45, 50, 40, 55, 45, 50} {
		store.AddVisit(models.Visit{ClientID: maple.ID, VisitDate: today.AddDate(0, 0, -7*(i+1)), StartTime: "08:00", DurationMinutes: d})
	}
	for i, d := range []float64{90, 95, 85, 100} {
		v := store.AddVisit(models.Visit{ClientID: cedar.ID, VisitDate: today.AddDate(0, 0, -7*(i+1)), StartTime: "10:00", DurationMinutes: d})
		if i == 0 {
			store.LogMaterial(v.ID, mulch.ID, 3, 35)
		}
	}
	for i, d := range []float64{30, 35, 30, 240, 30} {
		store.AddVisit(models.Visit{ClientID: pine.ID, VisitDate: today.AddDate(0, 0, -7*(i+1)), StartTime: "13:00", DurationMinutes: d, NeedsReview: d > 200})
	}

	store.AssignMaterial(maple.ID, fert.ID, nil, 4)
	store.AssignMaterial(maple.ID, aeration.ID, nil, 1)
	custom := 55.0
	store.AssignMaterial(cedar.ID, fert.ID, &custom, 4)

	return store
}
