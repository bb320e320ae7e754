package icons

import (
	"context"
	"log/slog"

	"github.com/cartodesk/cartodesk-api/internal/domain/mapstate"
)

var _ Service = (*ServiceImpl)(nil)

// Service defines the business logic contract for the icon catalog.
type Service interface {
	List(ctx context.Context) ([]string, error)
	Upload(ctx context.Context, data []byte, mimeType string) (string, error)
	Delete(ctx context.Context, name string) error
}

// ServiceImpl keeps the store's icon catalog in sync with the repository
// after every change.
type ServiceImpl struct {
	repo   Repository
	store  *mapstate.Store
	logger *slog.Logger
}

func NewServiceImpl(repo Repository, store *mapstate.Store, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{repo: repo, store: store, logger: logger}
}

func (s *ServiceImpl) List(ctx context.Context) ([]string, error) {
	names, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	s.store.SetIcons(names)
	return names, nil
}

func (s *ServiceImpl) Upload(ctx context.Context, data []byte, mimeType string) (string, error) {
	name, err := s.repo.Save(ctx, data, mimeType)
	if err != nil {
		return "", err
	}
	s.refreshCatalog(ctx)
	return name, nil
}

func (s *ServiceImpl) Delete(ctx context.Context, name string) error {
	if err := s.repo.Delete(ctx, name); err != nil {
		return err
	}
	s.refreshCatalog(ctx)
	return nil
}

func (s *ServiceImpl) refreshCatalog(ctx context.Context) {
	names, err := s.repo.List(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to refresh icon catalog", "error", err)
		return
	}
	s.store.SetIcons(names)
}
