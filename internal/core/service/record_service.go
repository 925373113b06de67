package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/blackhole/records-system/internal/core/domain"
	"github.com/blackhole/records-system/internal/core/ports"
)

type recordService struct {
	repo  ports.RecordRepository
	audit AuditSink
	log   zerolog.Logger
}

// NewRecordService returns a RecordService implementation.
func NewRecordService(repo ports.RecordRepository, sink AuditSink, log zerolog.Logger) ports.RecordService {
	if sink == nil {
		sink = NopAuditSink
	}
	return &recordService{repo: repo, audit: sink, log: log}
}

// Add stores a new record. Only administrators may add records.
func (s *recordService) Add(ctx context.Context, actor domain.Identity, in ports.AddRecordInput) (*domain.Record, error) {
	if !actor.IsAdmin() {
		return nil, domain.Forbidden("Only administrators can add records.")
	}

	rec := &domain.Record{
		Name:        strings.TrimSpace(in.Name),
		Age:         in.Age,
		DateOfBirth: in.DateOfBirth.UTC(),
		Description: strings.TrimSpace(in.Description),
		ConnectedTo: strings.TrimSpace(in.ConnectedTo),
	}
	if err := validateRecord(rec); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, rec)
	if err != nil {
		return nil, err
	}

	audit(s.audit, domain.AuditRecordAdded, actor.Username, strconv.FormatInt(created.ID, 10), created.Name)
	s.log.Info().Str("actor", actor.Username).Int64("record_id", created.ID).Msg("record added")
	return created, nil
}

func validateRecord(r *domain.Record) error {
	var missing []string
	if r.Name == "" {
		missing = append(missing, "name")
	}
	if r.Age <= 0 {
		missing = append(missing, "age")
	}
	if r.DateOfBirth.IsZero() {
		missing = append(missing, "date_of_birth")
	}
	if r.Description == "" {
		missing = append(missing, "description")
	}
	if r.ConnectedTo == "" {
		missing = append(missing, "connected_to")
	}
	if len(missing) > 0 {
		return domain.Validation("Missing or invalid fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Search returns records whose name or description contains query,
// ignoring case. A blank query is rejected; otherwise the query is matched
// as given, surrounding spaces included.
func (s *recordService) Search(ctx context.Context, query string) ([]domain.Record, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.Validation("Please enter a valid search query.")
	}
	records, err := s.repo.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []domain.Record{}
	}
	return records, nil
}

func (s *recordService) List(ctx context.Context) ([]domain.Record, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []domain.Record{}
	}
	return records, nil
}
