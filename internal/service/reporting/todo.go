package reporting

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mamadbah2/landscaper/internal/analytics"
	"github.com/mamadbah2/landscaper/internal/domain/models"
)

// TodoList collects the visits and clients that need an operator's attention. Manually
// flagged visits and duration anomalies are reported separately; the anomaly list is
// recomputed on every call.
func (s *Service) TodoList(ctx context.Context) (*models.TodoList, error) {
	dataset, err := s.store.Snapshot(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("load client snapshot: %w", err)
	}

	todo := &models.TodoList{
		VisitsNeedingReview:    []models.Visit{},
		ClientsMissingServices: []models.Client{},
		ClientsMissingContact:  []models.Client{},
	}

	names := make(map[int64]string, len(dataset.Histories))
	for _, h := range dataset.Histories {
		names[h.Client.ID] = h.Client.Name

		for _, v := range h.Visits {
			if v.NeedsReview {
				todo.VisitsNeedingReview = append(todo.VisitsNeedingReview, v)
			}
		}

		if !hasEnabledMaterials(h.ClientMaterials) {
			todo.ClientsMissingServices = append(todo.ClientsMissingServices, h.Client)
		}

		if missingContact(h.Client) {
			todo.ClientsMissingContact = append(todo.ClientsMissingContact, h.Client)
		}
	}

	sort.SliceStable(todo.VisitsNeedingReview, func(i, j int) bool {
		return todo.VisitsNeedingReview[i].VisitDate.After(todo.VisitsNeedingReview[j].VisitDate)
	})

	todo.AnomalousVisits = analytics.DetectAnomalies(dataset.AllVisits(), s.opts.ThresholdPercent)
	for i := range todo.AnomalousVisits {
		todo.AnomalousVisits[i].ClientName = names[todo.AnomalousVisits[i].ClientID]
	}

	return todo, nil
}

// VisitMaterials lists what was logged on a single visit, for reviewing a flagged visit.
func (s *Service) VisitMaterials(ctx context.Context, visitID int64) ([]models.VisitMaterial, error) {
	items, err := s.store.VisitMaterials(ctx, visitID)
	if err != nil {
		return nil, fmt.Errorf("load materials for visit %d: %w", visitID, err)
	}
	return items, nil
}

func hasEnabledMaterials(items []models.ClientMaterial) bool {
	for _, item := range items {
		if item.IsEnabled {
			return true
		}
	}
	return false
}

func missingContact(c models.Client) bool {
	noEmail := strings.TrimSpace(c.Email) == ""
	noPhone := strings.TrimSpace(c.Phone) == ""
	noAddress := strings.TrimSpace(c.Address) == ""
	return (noEmail && noPhone) || noAddress
}
