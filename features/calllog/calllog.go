package calllog

import "time"

// CallLog is one synced conversation. ExternalID is the remote provider's
// conversation id and is unique per organization.
type CallLog struct {
	ID              string           `json:"id"`
	OrganizationID  string           `json:"organizationId"`
	AgentID         string           `json:"agentId"`
	AgentName       string           `json:"agentName"`
	ExternalID      string           `json:"externalId"`
	Status          string           `json:"status"`
	DurationSeconds int              `json:"durationSeconds"`
	Cost            float64          `json:"cost"`
	Transcript      []TranscriptTurn `json:"transcript"`
	AudioURL        string           `json:"audioUrl"`
	StartedAt       time.Time        `json:"startedAt"`
	CreatedAt       time.Time        `json:"createdAt"`
}

// TranscriptTurn is one canonical utterance regardless of which shape the
// remote provider returned the transcript in.
type TranscriptTurn struct {
	Role          string  `json:"role"`
	Message       string  `json:"message"`
	OffsetSeconds float64 `json:"offsetSeconds"`
}

type Agent struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organizationId"`
	ExternalID     string `json:"externalId"`
	Name           string `json:"name"`
}

type User struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organizationId"`
	Email          string `json:"email"`
	Name           string `json:"name"`
}

type Integration struct {
	OrganizationID string
	Provider       string
	APIKey         string
	Active         bool
}

type SyncSummary struct {
	Synced    int   `json:"totalSynced"`
	Errors    int   `json:"totalErrors"`
	Skipped   int   `json:"totalSkipped"`
	ElapsedMS int64 `json:"elapsedMs"`
}
