package models

import "time"

// ProfitabilitySnapshot is one client's statistics as captured by a scheduled run.
type ProfitabilitySnapshot struct {
	RunID      string           `bson:"run_id" json:"run_id"`
	TakenAt    time.Time        `bson:"taken_at" json:"taken_at"`
	ClientID   int64            `bson:"client_id" json:"client_id"`
	Statistics ClientStatistics `bson:"statistics" json:"statistics"`
}
