package service

import (
	"context"

	"go.uber.org/zap"

	"parfumpos/internal/domain"
)

func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) ListPerfumes(ctx context.Context, filter domain.PerfumeFilter) ([]domain.Perfume, error) {
	return s.repo.ListPerfumes(ctx, filter)
}

func (s *Service) GetPerfume(ctx context.Context, id int64) (*domain.Perfume, error) {
	return s.repo.FindPerfume(ctx, id)
}

func (s *Service) ListVariants(ctx context.Context, filter domain.VariantFilter) ([]domain.Variant, error) {
	return s.repo.ListVariants(ctx, filter)
}

// GetVariant serves reads through the cache. Writes invalidate; stale entries
// can only live for the configured TTL.
func (s *Service) GetVariant(ctx context.Context, id int64) (*domain.Variant, error) {
	if v, ok, err := s.cache.Get(ctx, id); err == nil && ok {
		return v, nil
	} else if err != nil {
		s.log.Warn("variant cache read failed", zap.Int64("variant_id", id), zap.Error(err))
	}

	v, err := s.repo.FindVariant(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, v, s.cacheTTL); err != nil {
		s.log.Warn("variant cache write failed", zap.Int64("variant_id", id), zap.Error(err))
	}
	return v, nil
}
