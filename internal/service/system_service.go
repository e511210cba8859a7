package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aeworks/ops-api/internal/auth"
	"github.com/aeworks/ops-api/internal/domain"
	"github.com/aeworks/ops-api/internal/store"
	"go.uber.org/zap"
)

// SystemService manages the cloud connection stored in SystemMeta
type SystemService struct {
	meta   *store.MetaStore
	logger *zap.Logger
	now    func() time.Time
}

// NewSystemService creates a new SystemService
func NewSystemService(meta *store.MetaStore, logger *zap.Logger) *SystemService {
	return &SystemService{meta: meta, logger: logger, now: time.Now}
}

// Meta returns the current connection state
func (s *SystemService) Meta(ctx context.Context) domain.SystemMeta {
	return s.meta.Get(ctx)
}

// Connect stores the cloud token. The account email comes from the request
// or, failing that, from the ID token's claims.
func (s *SystemService) Connect(ctx context.Context, req domain.ConnectRequest) (domain.SystemMeta, error) {
	email := req.Email
	if email == "" && req.IDToken != "" {
		claims, err := auth.ParseIDToken(req.IDToken, s.now())
		switch {
		case err == nil:
			email = claims.Email
		case errors.Is(err, auth.ErrMissingEmail):
			s.logger.Debug("ID token carries no email claim")
		default:
			return domain.SystemMeta{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}

	meta, err := s.meta.Update(ctx, func(m *domain.SystemMeta) {
		m.AccessToken = req.AccessToken
		if email != "" {
			m.AccountEmail = email
		}
		if req.ClientID != "" {
			m.ClientID = req.ClientID
		}
	})
	if err != nil {
		return meta, err
	}

	s.logger.Info("Cloud account connected", zap.String("account", meta.AccountEmail))
	return meta, nil
}

// Disconnect forgets the token and account; the document id is kept so a
// later connect resumes against the same master document. Backends whose
// access is configured rather than granted (local, azure) always come back
// connected, so they refuse with ErrStandingConnection.
func (s *SystemService) Disconnect(ctx context.Context) (domain.SystemMeta, error) {
	if standing := s.meta.Defaults().AccessToken; standing != "" {
		return s.meta.Get(ctx), fmt.Errorf("%w: the %s vault has no cloud account", ErrStandingConnection, standing)
	}
	meta, err := s.meta.Update(ctx, func(m *domain.SystemMeta) {
		m.AccessToken = ""
		m.AccountEmail = ""
	})
	if err != nil {
		return meta, err
	}
	s.logger.Info("Cloud account disconnected")
	return meta, nil
}
