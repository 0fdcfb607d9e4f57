package calllog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"voxboard/backend/internal/adapter/voiceapi"
	"voxboard/backend/internal/billing"
)

// voiceProvider names the integration row whose credential authenticates
// voice-API calls.
const voiceProvider = "elevenlabs"

type VoiceClient interface {
	GetConversations(ctx context.Context, apiKey, agentID string, pageSize int) (*voiceapi.ConversationsPage, error)
	GetConversation(ctx context.Context, apiKey, conversationID string) (*voiceapi.ConversationDetail, error)
}

type Service struct {
	repo      Repository
	voice     VoiceClient
	pageSize  int
	batchSize int
}

func NewService(repo Repository, voice VoiceClient, pageSize, batchSize int) *Service {
	return &Service{repo: repo, voice: voice, pageSize: pageSize, batchSize: batchSize}
}

// candidate is a remote conversation paired with the local agent it belongs to.
type candidate struct {
	agent Agent
	conv  voiceapi.ConversationSummary
}

// Sync pulls the organization's conversations from the voice provider and
// persists the ones not seen before. Per-agent listing and per-conversation
// existence checks fan out concurrently with all outcomes collected; detail
// fetches run in sequential batches of batchSize, which is the only bound on
// in-flight requests against the provider.
func (s *Service) Sync(ctx context.Context, orgID string) (*SyncSummary, error) {
	start := time.Now()

	integration, err := s.repo.GetIntegration(ctx, orgID, voiceProvider)
	if err != nil {
		return nil, err
	}
	if integration == nil || integration.APIKey == "" {
		return nil, ErrIntegrationNotConfigured
	}

	agents, err := s.repo.GetAgents(ctx, orgID)
	if err != nil {
		return nil, err
	}

	summary := &SyncSummary{}
	summaries, failedAgents := s.listConversations(ctx, integration.APIKey, agents)
	summary.Errors += failedAgents
	queue := s.filterExisting(ctx, orgID, summaries, summary)

	pool, err := ants.NewPool(s.batchSize)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	var mu sync.Mutex
	for batchStart := 0; batchStart < len(queue); batchStart += s.batchSize {
		batchEnd := min(batchStart+s.batchSize, len(queue))

		var wg sync.WaitGroup
		for _, c := range queue[batchStart:batchEnd] {
			wg.Add(1)
			c := c
			if err := pool.Submit(func() {
				defer wg.Done()
				if err := s.syncOne(ctx, integration.APIKey, orgID, c); err != nil {
					slog.WarnContext(ctx, "failed to sync conversation", "conversationId", c.conv.ConversationID, "error", err)
					mu.Lock()
					summary.Errors++
					mu.Unlock()
					return
				}
				mu.Lock()
				summary.Synced++
				mu.Unlock()
			}); err != nil {
				wg.Done()
				mu.Lock()
				summary.Errors++
				mu.Unlock()
			}
		}
		wg.Wait()
	}

	summary.ElapsedMS = time.Since(start).Milliseconds()
	slog.InfoContext(ctx, "sync finished", "organizationId", orgID,
		"synced", summary.Synced, "errors", summary.Errors, "skipped", summary.Skipped, "elapsedMs", summary.ElapsedMS)
	return summary, nil
}

// listConversations requests one page of summaries per agent concurrently.
// A failing agent contributes zero conversations and one counted error; it
// never aborts the rest.
func (s *Service) listConversations(ctx context.Context, apiKey string, agents []Agent) ([]candidate, int) {
	results := make([][]candidate, len(agents))
	failed := make([]bool, len(agents))

	var wg sync.WaitGroup
	for i, agent := range agents {
		wg.Add(1)
		go func(i int, agent Agent) {
			defer wg.Done()
			page, err := s.voice.GetConversations(ctx, apiKey, agent.ExternalID, s.pageSize)
			if err != nil {
				slog.WarnContext(ctx, "failed to list conversations for agent", "agentId", agent.ID, "error", err)
				failed[i] = true
				return
			}
			batch := make([]candidate, 0, len(page.Conversations))
			for _, conv := range page.Conversations {
				batch = append(batch, candidate{agent: agent, conv: conv})
			}
			results[i] = batch
		}(i, agent)
	}
	wg.Wait()

	var all []candidate
	failedAgents := 0
	for i, batch := range results {
		if failed[i] {
			failedAgents++
			continue
		}
		all = append(all, batch...)
	}
	return all, failedAgents
}

// filterExisting drops conversations already persisted for this organization,
// checking all candidates concurrently. Already-seen ones count as skipped;
// a failed check counts as an error.
func (s *Service) filterExisting(ctx context.Context, orgID string, all []candidate, summary *SyncSummary) []candidate {
	keep := make([]candidate, 0, len(all))

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, c := range all {
		wg.Add(1)
		go func(c candidate) {
			defer wg.Done()
			existing, err := s.repo.GetByExternalID(ctx, orgID, c.conv.ConversationID)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				slog.WarnContext(ctx, "existence check failed", "conversationId", c.conv.ConversationID, "error", err)
				summary.Errors++
			case existing != nil:
				summary.Skipped++
			default:
				keep = append(keep, c)
			}
		}(c)
	}
	wg.Wait()

	return keep
}

func (s *Service) syncOne(ctx context.Context, apiKey, orgID string, c candidate) error {
	detail, err := s.voice.GetConversation(ctx, apiKey, c.conv.ConversationID)
	if err != nil {
		return err
	}

	turns, err := NormalizeTranscript(detail.Transcript)
	if err != nil {
		// A transcript we cannot parse should not lose the call itself.
		slog.WarnContext(ctx, "unrecognized transcript shape", "conversationId", c.conv.ConversationID, "error", err)
		turns = []TranscriptTurn{}
	}

	duration := detail.Metadata.CallDurationSecs
	if duration == 0 {
		duration = c.conv.CallDurationSecs
	}

	status := detail.Status
	if status == "" {
		status = c.conv.Status
	}

	startSecs := detail.Metadata.StartTimeUnixSecs
	if startSecs == 0 {
		startSecs = c.conv.StartTimeUnixSecs
	}
	startedAt := time.Now().UTC()
	if startSecs > 0 {
		startedAt = time.Unix(startSecs, 0).UTC()
	}

	log := &CallLog{
		ID:              uuid.New().String(),
		OrganizationID:  orgID,
		AgentID:         c.agent.ID,
		AgentName:       c.agent.Name,
		ExternalID:      c.conv.ConversationID,
		Status:          status,
		DurationSeconds: duration,
		Cost:            billing.CallCost(duration, detail.Metadata.Cost, detail.Metadata.LLMCharge),
		Transcript:      turns,
		AudioURL:        audioReference(detail, c.conv.ConversationID),
		StartedAt:       startedAt,
	}
	return s.repo.Create(ctx, log)
}

// audioReference prefers the provider's explicit URL, then the first entry of
// its recordings array, then a locally served playback path.
func audioReference(detail *voiceapi.ConversationDetail, conversationID string) string {
	if detail.AudioURL != "" {
		return detail.AudioURL
	}
	if len(detail.Recordings) > 0 && detail.Recordings[0].URL != "" {
		return detail.Recordings[0].URL
	}
	return "/api/call-audio/" + conversationID
}

func (s *Service) List(ctx context.Context, orgID string, limit, offset int) ([]CallLog, error) {
	return s.repo.List(ctx, orgID, limit, offset)
}

func (s *Service) Count(ctx context.Context, orgID string) (int, error) {
	return s.repo.Count(ctx, orgID)
}
