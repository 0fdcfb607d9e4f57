package voiceapi

import "encoding/json"

// ConversationSummary is one row of the conversations listing.
type ConversationSummary struct {
	ConversationID    string `json:"conversation_id"`
	AgentID           string `json:"agent_id"`
	StartTimeUnixSecs int64  `json:"start_time_unix_secs"`
	CallDurationSecs  int    `json:"call_duration_secs"`
	Status            string `json:"status"`
}

type ConversationsPage struct {
	Conversations []ConversationSummary `json:"conversations"`
}

// ConversationDetail is the full record for a single conversation. The
// transcript is kept raw: the provider serializes it as a flat string, a
// bare array of turns, or an object wrapping a messages array, and the
// caller normalizes whichever shape arrived.
type ConversationDetail struct {
	ConversationID string               `json:"conversation_id"`
	AgentID        string               `json:"agent_id"`
	Status         string               `json:"status"`
	Transcript     json.RawMessage      `json:"transcript"`
	Metadata       ConversationMetadata `json:"metadata"`
	AudioURL       string               `json:"audio_url"`
	Recordings     []Recording          `json:"recordings"`
}

type ConversationMetadata struct {
	StartTimeUnixSecs int64   `json:"start_time_unix_secs"`
	CallDurationSecs  int     `json:"call_duration_secs"`
	Cost              float64 `json:"cost"`
	LLMCharge         float64 `json:"llm_charge"`
}

type Recording struct {
	URL string `json:"url"`
}
