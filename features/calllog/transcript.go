package calllog

import (
	"encoding/json"
	"strings"
)

// The remote API returns transcripts in one of three shapes: a flat string,
// a bare array of turns, or an object wrapping the array under "messages".
// Each shape has its own normalization func; NormalizeTranscript dispatches
// on the JSON head token.

type rawTurn struct {
	Role          string  `json:"role"`
	Message       string  `json:"message"`
	Text          string  `json:"text"`
	IsAgent       *bool   `json:"is_agent"`
	TimeInCallSec float64 `json:"time_in_call_secs"`
}

type wrappedTranscript struct {
	Messages []rawTurn `json:"messages"`
}

// NormalizeTranscript converts any of the three remote shapes into the
// canonical ordered turn sequence. An empty or null payload yields an empty
// transcript; an unrecognized shape is an error.
func NormalizeTranscript(raw json.RawMessage) ([]TranscriptTurn, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return []TranscriptTurn{}, nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return normalizeFlat(s), nil
	case '[':
		var turns []rawTurn
		if err := json.Unmarshal(raw, &turns); err != nil {
			return nil, err
		}
		return normalizeTurns(turns), nil
	default:
		var wrapped wrappedTranscript
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, err
		}
		return normalizeTurns(wrapped.Messages), nil
	}
}

// normalizeFlat maps a flat transcript string to a single agent-attributed
// turn; the remote API only uses this shape for agent-generated summaries.
func normalizeFlat(s string) []TranscriptTurn {
	s = strings.TrimSpace(s)
	if s == "" {
		return []TranscriptTurn{}
	}
	return []TranscriptTurn{{Role: "agent", Message: s}}
}

func normalizeTurns(turns []rawTurn) []TranscriptTurn {
	out := make([]TranscriptTurn, 0, len(turns))
	for _, t := range turns {
		msg := t.Message
		if msg == "" {
			msg = t.Text
		}
		if strings.TrimSpace(msg) == "" {
			continue
		}

		role := t.Role
		if role == "" {
			role = "user"
			if t.IsAgent != nil && *t.IsAgent {
				role = "agent"
			}
		}

		out = append(out, TranscriptTurn{
			Role:          role,
			Message:       msg,
			OffsetSeconds: t.TimeInCallSec,
		})
	}
	return out
}
