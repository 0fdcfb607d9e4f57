package syncrun

import "time"

// SyncRun is the archived outcome of one conversation sync.
type SyncRun struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organizationId"`
	Synced         int       `json:"totalSynced"`
	Errors         int       `json:"totalErrors"`
	Skipped        int       `json:"totalSkipped"`
	DurationMS     int64     `json:"elapsedMs"`
	CreatedAt      time.Time `json:"createdAt"`
}
