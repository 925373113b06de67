package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/blackhole/records-system/internal/core/domain"
	"github.com/blackhole/records-system/internal/core/ports"
)

// AuditSink receives audit events. Publish must not block the caller.
type AuditSink interface {
	Publish(event domain.AuditEvent)
}

type nopSink struct{}

func (nopSink) Publish(domain.AuditEvent) {}

// NopAuditSink discards every event.
var NopAuditSink AuditSink = nopSink{}

func audit(sink AuditSink, action domain.AuditAction, actor, subject, detail string) {
	sink.Publish(domain.AuditEvent{
		Action:     action,
		Actor:      actor,
		Subject:    subject,
		Detail:     detail,
		OccurredAt: time.Now().UTC(),
	})
}

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

type auditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

// NewAuditService returns the read side of the audit trail.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log}
}

func (s *auditService) Recent(ctx context.Context, limit int) ([]domain.AuditEvent, error) {
	switch {
	case limit <= 0:
		limit = defaultAuditLimit
	case limit > maxAuditLimit:
		limit = maxAuditLimit
	}
	events, err := s.repo.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []domain.AuditEvent{}
	}
	return events, nil
}
