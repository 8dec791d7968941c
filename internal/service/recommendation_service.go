package service

import (
	"context"

	"companion-counselling-be/internal/dto"
	"companion-counselling-be/internal/entity"
	"companion-counselling-be/internal/pkg/logger"
	"companion-counselling-be/internal/pkg/recommender"
	"companion-counselling-be/internal/repository/memory"
	"companion-counselling-be/internal/repository/unitofwork"
)

type IRecommendationService interface {
	RecommendConsultants(ctx context.Context, actor entity.Actor) ([]*dto.ConsultantRecommendation, error)
}

// ConsultantRecommender is satisfied by *recommender.Recommender.
type ConsultantRecommender interface {
	Recommend(ctx context.Context, userID uint) ([]recommender.Recommendation, error)
}

type recommendationService struct {
	uowFactory  unitofwork.RepositoryFactory
	recommender ConsultantRecommender
	cache       *memory.RecommendationCache
	logger      logger.ILogger
}

// NewRecommendationService accepts a nil recommender (feature off) and a nil cache.
func NewRecommendationService(
	uowFactory unitofwork.RepositoryFactory,
	rec ConsultantRecommender,
	cache *memory.RecommendationCache,
	log logger.ILogger,
) IRecommendationService {
	return &recommendationService{uowFactory: uowFactory, recommender: rec, cache: cache, logger: log}
}

func (s *recommendationService) score(ctx context.Context, userID uint) ([]recommender.Recommendation, error) {
	if s.cache != nil {
		if recs, ok := s.cache.Get(userID); ok {
			return recs, nil
		}
	}
	recs, err := s.recommender.Recommend(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(userID, recs)
	}
	return recs, nil
}

// RecommendConsultants degrades to an empty list when the scorer fails.
func (s *recommendationService) RecommendConsultants(ctx context.Context, actor entity.Actor) ([]*dto.ConsultantRecommendation, error) {
	if err := requireRole(actor, entity.RoleUser); err != nil {
		return nil, err
	}

	result := make([]*dto.ConsultantRecommendation, 0)
	if s.recommender == nil {
		return result, nil
	}

	recs, err := s.score(ctx, actor.ID)
	if err != nil {
		s.logger.Warn("RecommendationService", "Recommender failed", map[string]interface{}{
			"user_id": actor.ID,
			"error":   err.Error(),
		})
		return result, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	for _, rec := range recs {
		consultant, err := uow.DirectoryRepository().FindConsultant(ctx, rec.ConsultantID)
		if err != nil {
			s.logger.Warn("RecommendationService", "Failed to load consultant", map[string]interface{}{
				"consultant_id": rec.ConsultantID,
				"error":         err.Error(),
			})
			continue
		}
		if consultant == nil {
			continue
		}
		result = append(result, &dto.ConsultantRecommendation{
			ConsultantId: consultant.Id,
			Name:         consultant.DisplayName(),
			Score:        rec.Score,
		})
	}
	return result, nil
}
