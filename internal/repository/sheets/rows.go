package sheets

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/landscaper/internal/domain/models"
)

const dateLayout = "2006-01-02"

func (s *Store) parseClients(rows [][]interface{}) []models.Client {
	var out []models.Client
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		id, err := parseInt(row[0])
		if err != nil {
			s.logger.Debug("skip client row with invalid id", zap.Any("value", row[0]), zap.Error(err))
			continue
		}
		charge, _ := parseFloat(cell(row, 5))
		out = append(out, models.Client{
			ID:            id,
			Name:          parseString(row[1]),
			Email:         parseString(cell(row, 2)),
			Phone:         parseString(cell(row, 3)),
			Address:       parseString(cell(row, 4)),
			MonthlyCharge: charge,
			IsActive:      parseBool(cell(row, 6), true),
			ClientType:    parseString(cell(row, 7)),
		})
	}
	return out
}

func (s *Store) parseMaterials(rows [][]interface{}) map[int64]models.Material {
	out := make(map[int64]models.Material)
	for _, row := range rows {
		if len(row) < 3 {
			continue
		}
		id, err := parseInt(row[0])
		if err != nil {
			s.logger.Debug("skip material row with invalid id", zap.Any("value", row[0]), zap.Error(err))
			continue
		}
		cost, _ := parseFloat(row[2])
		out[id] = models.Material{
			ID:           id,
			Name:         parseString(row[1]),
			DefaultCost:  cost,
			Unit:         parseString(cell(row, 3)),
			MaterialType: models.ParseMaterialType(strings.ToLower(parseString(cell(row, 4)))),
			IsGlobal:     parseBool(cell(row, 5), true),
		}
	}
	return out
}

func (s *Store) parseClientMaterials(rows [][]interface{}, materials map[int64]models.Material) []models.ClientMaterial {
	var out []models.ClientMaterial
	for _, row := range rows {
		if len(row) < 3 {
			continue
		}
		id, err := parseInt(row[0])
		if err != nil {
			continue
		}
		clientID, err1 := parseInt(row[1])
		materialID, err2 := parseInt(row[2])
		material, ok := materials[materialID]
		if err1 != nil || err2 != nil || !ok {
			s.logger.Debug("skip client material row with unknown references", zap.Int64("id", id))
			continue
		}

		var custom *float64
		if v, err := parseFloat(cell(row, 3)); err == nil {
			custom = &v
		}
		multiplier, err := parseFloat(cell(row, 4))
		if err != nil {
			multiplier = 1
		}

		out = append(out, models.ClientMaterial{
			ID:         id,
			ClientID:   clientID,
			Material:   material,
			CustomCost: custom,
			Multiplier: multiplier,
			IsEnabled:  parseBool(cell(row, 5), true),
		})
	}
	return out
}

func (s *Store) parseVisits(rows [][]interface{}) []models.Visit {
	var out []models.Visit
	for _, row := range rows {
		if len(row) < 6 {
			continue
		}
		id, err := parseInt(row[0])
		if err != nil {
			continue
		}
		clientID, err := parseInt(row[1])
		if err != nil {
			s.logger.Debug("skip visit row with invalid client", zap.Int64("id", id), zap.Error(err))
			continue
		}
		date, err := parseDate(row[2])
		if err != nil {
			s.logger.Debug("skip visit row with invalid date", zap.Int64("id", id), zap.Any("value", row[2]), zap.Error(err))
			continue
		}
		duration, err := parseFloat(row[5])
		if err != nil {
			s.logger.Debug("skip visit row with invalid duration", zap.Int64("id", id), zap.Any("value", row[5]), zap.Error(err))
			continue
		}
		out = append(out, models.Visit{
			ID:              id,
			ClientID:        clientID,
			VisitDate:       date,
			StartTime:       parseString(row[3]),
			EndTime:         parseString(row[4]),
			DurationMinutes: duration,
			Notes:           parseString(cell(row, 6)),
			NeedsReview:     parseBool(cell(row, 7), false),
		})
	}
	return out
}

func (s *Store) parseVisitMaterials(rows [][]interface{}, materials map[int64]models.Material, visitOwner map[int64]int64) []models.VisitMaterial {
	var out []models.VisitMaterial
	for _, row := range rows {
		if len(row) < 5 {
			continue
		}
		id, err := parseInt(row[0])
		if err != nil {
			continue
		}
		visitID, err1 := parseInt(row[1])
		materialID, err2 := parseInt(row[2])
		clientID, known := visitOwner[visitID]
		material, ok := materials[materialID]
		if err1 != nil || err2 != nil || !known || !ok {
			s.logger.Debug("skip visit material row with unknown references", zap.Int64("id", id))
			continue
		}
		quantity, _ := parseFloat(row[3])
		cost, _ := parseFloat(row[4])
		out = append(out, models.VisitMaterial{
			ID:         id,
			VisitID:    visitID,
			ClientID:   clientID,
			Material:   material,
			Quantity:   quantity,
			CostAtTime: cost,
		})
	}
	return out
}

func parseSettings(rows [][]interface{}) map[string]string {
	out := make(map[string]string)
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		out[parseString(row[0])] = parseString(row[1])
	}
	return out
}

func cell(row []interface{}, idx int) interface{} {
	if idx < len(row) {
		return row[idx]
	}
	return nil
}

func parseString(value interface{}) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(value))
}

func parseDate(value interface{}) (time.Time, error) {
	str := parseString(value)
	if str == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if len(str) > 10 {
		str = str[:10]
	}
	return time.Parse(dateLayout, str)
}

func parseInt(value interface{}) (int64, error) {
	if f, ok := value.(float64); ok {
		if f != math.Trunc(f) {
			return 0, fmt.Errorf("non-integer value %v", f)
		}
		return int64(f), nil
	}
	str := parseString(value)
	if str == "" {
		return 0, fmt.Errorf("empty numeric value")
	}
	return strconv.ParseInt(str, 10, 64)
}

func parseFloat(value interface{}) (float64, error) {
	if f, ok := value.(float64); ok {
		return f, nil
	}
	str := strings.TrimPrefix(parseString(value), "$")
	if str == "" {
		return 0, fmt.Errorf("empty numeric value")
	}
	return strconv.ParseFloat(strings.ReplaceAll(str, ",", ""), 64)
}

func parseBool(value interface{}, fallback bool) bool {
	if b, ok := value.(bool); ok {
		return b
	}
	if f, ok := value.(float64); ok {
		return f != 0
	}
	switch strings.ToLower(parseString(value)) {
	case "1", "true", "yes", "y":
		return true
	case "0", "false", "no", "n":
		return false
	default:
		return fallback
	}
}
