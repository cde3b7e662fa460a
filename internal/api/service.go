package api

import (
	"context"

	"darkroom/internal/ledger"
	"darkroom/internal/migrate"
)

// LedgerReader abstracts the ledger reads needed for API queries.
type LedgerReader interface {
	List(ctx context.Context, statuses ...ledger.Status) ([]*ledger.Photo, error)
}

// Service exposes read-only migration views as API DTOs.
type Service struct {
	store LedgerReader
}

// NewService constructs a Service around the provided reader.
func NewService(store LedgerReader) *Service {
	if store == nil {
		return nil
	}
	return &Service{store: store}
}

// Errors returns the failed photos with their total count.
func (s *Service) Errors(ctx context.Context) (*ErrorListResponse, error) {
	if s == nil || s.store == nil {
		return &ErrorListResponse{}, nil
	}
	photos, err := s.store.List(ctx, ledger.StatusError)
	if err != nil {
		return nil, err
	}
	resp := &ErrorListResponse{
		Errors: make([]ErrorItem, 0, len(photos)),
		Total:  len(photos),
	}
	for _, photo := range photos {
		updated := photo.UpdatedAt
		resp.Errors = append(resp.Errors, ErrorItem{
			ID:           photo.ID,
			SourceRef:    photo.SourceRef,
			FileName:     photo.FileName,
			ErrorMessage: photo.ErrorMessage,
			UpdatedAt:    formatTime(&updated),
		})
	}
	return resp, nil
}

// FromSnapshot converts a migration snapshot into the API payload.
func FromSnapshot(snap *migrate.Snapshot) StatusResponse {
	if snap == nil {
		return StatusResponse{}
	}
	return StatusResponse{
		Total:     snap.Total,
		Processed: snap.Processed,
		Pending:   snap.Pending,
		Claimed:   snap.Claimed,
		Errors:    snap.Errors,
		RunStatus: string(snap.RunStatus),
		Config: RunConfig{
			BatchSize:   snap.Config.BatchSize,
			Concurrency: snap.Config.Concurrency,
			Quality:     snap.Config.Quality,
			MaxWidth:    snap.Config.MaxWidth,
		},
		StartedAt:     formatTime(snap.StartedAt),
		LastUpdatedAt: formatTime(snap.LastUpdatedAt),
		CompletedAt:   formatTime(snap.CompletedAt),
	}
}
