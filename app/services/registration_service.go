package services

import (
	"context"
	"time"

	"github.com/shashiranjanraj/vanijya/app/models"
	"github.com/shashiranjanraj/vanijya/app/notify"
	"github.com/shashiranjanraj/vanijya/pkg/apperr"
	"github.com/shashiranjanraj/vanijya/pkg/logger"
)

// RegistrationStore is the persistence contract for service requests.
type RegistrationStore interface {
	Create(ctx context.Context, req *models.RegistrationRequest) error
	ByEmail(ctx context.Context, email string) ([]models.RegistrationRequest, error)
	DeleteByEmail(ctx context.Context, email string) (int64, error)
}

// RegistrationService accepts contact/service-request submissions.
type RegistrationService struct {
	store    RegistrationStore
	notifier notify.Notifier
}

func NewRegistrationService(store RegistrationStore, notifier notify.Notifier) *RegistrationService {
	return &RegistrationService{store: store, notifier: notifier}
}

// Submit notifies the team inbox and persists the request. Notification runs
// first and its failure fails the whole submission; the client can retry.
func (s *RegistrationService) Submit(ctx context.Context, req *models.RegistrationRequest) (*models.RegistrationRequest, error) {
	req.CreatedAt = time.Now().UTC()

	if err := s.notifier.RegistrationSubmitted(req); err != nil {
		logger.WithCtx(ctx).Error("registration notification failed", "email", req.Email, "error", err)
		return nil, apperr.Wrap(apperr.Upstream, "failed to send notification", err)
	}

	if err := s.store.Create(ctx, req); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to store request", err)
	}

	return req, nil
}

// ListMine returns the caller's submitted requests, newest first.
func (s *RegistrationService) ListMine(ctx context.Context, email string) ([]models.RegistrationRequest, error) {
	reqs, err := s.store.ByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to list requests", err)
	}
	return reqs, nil
}
