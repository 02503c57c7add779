package audit

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/medibot/medibot/internal/platform/middleware"
)

// Service persists audit entries and serves the super admin's trail
// view. It satisfies middleware.AuditRecorder.
type Service struct {
	repo EntryRepository
}

func NewService(repo EntryRepository) *Service {
	return &Service{repo: repo}
}

// RecordAction stores one entry. Failures are logged, not propagated:
// a broken audit insert must not fail the user's request, which has
// already committed.
func (s *Service) RecordAction(entry middleware.AuditEntry) error {
	if err := s.repo.Insert(context.Background(), entry); err != nil {
		log.Error().Err(err).
			Str("resource", entry.Resource).
			Str("action", entry.Action).
			Msg("audit entry not persisted")
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context, f Filters, limit, offset int) ([]*Entry, int, error) {
	return s.repo.List(ctx, f, limit, offset)
}
