package syncrun

import "context"

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Record satisfies the sync handler's RunRecorder.
func (s *Service) Record(ctx context.Context, orgID string, synced, errs, skipped int, elapsedMS int64) error {
	return s.repo.Save(ctx, &SyncRun{
		OrganizationID: orgID,
		Synced:         synced,
		Errors:         errs,
		Skipped:        skipped,
		DurationMS:     elapsedMS,
	})
}

func (s *Service) List(ctx context.Context, orgID string, limit int) ([]SyncRun, error) {
	return s.repo.List(ctx, orgID, limit)
}

func (s *Service) Count(ctx context.Context, orgID string) (int, error) {
	return s.repo.Count(ctx, orgID)
}
