// file: internal/services/rating_service.go
package services

import (
	"context"
	"errors"
	"math"
	"strconv"
	"time"

	"doclib/internal/cache"
	"doclib/internal/events"
	"doclib/internal/models"
	"doclib/internal/repositories"

	"go.uber.org/zap"
)

type ratingService struct {
	ratings  repositories.RatingRepository
	docs     repositories.DocumentRepository
	notifier Notifier
	locker   cache.Locker
	lockTTL  time.Duration
	events   events.EventBus
	loader   *cache.Loader
	logger   *zap.Logger
}

// NewRatingService creates a rating service. Aggregate recomputation is
// serialized per document through locker.
func NewRatingService(
	ratings repositories.RatingRepository,
	docs repositories.DocumentRepository,
	notifier Notifier,
	locker cache.Locker,
	lockTTL time.Duration,
	bus events.EventBus,
	loader *cache.Loader,
	logger *zap.Logger,
) RatingService {
	if locker == nil {
		locker = cache.NewMemoryLocker()
	}
	if lockTTL <= 0 {
		lockTTL = 5 * time.Second
	}
	return &ratingService{
		ratings:  ratings,
		docs:     docs,
		notifier: notifier,
		locker:   locker,
		lockTTL:  lockTTL,
		events:   bus,
		loader:   loader,
		logger:   logger,
	}
}

func (s *ratingService) Upsert(ctx context.Context, req *RateDocumentRequest) (*RatingResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if _, err := requireApproved(ctx, s.docs, s.logger, req.DocumentID); err != nil {
		return nil, err
	}

	ctx = context.WithoutCancel(ctx)
	rating := &models.Rating{
		UserID:     req.UserID,
		DocumentID: req.DocumentID,
		Score:      req.Score,
		Review:     req.Review,
	}
	created, err := s.ratings.Upsert(ctx, rating)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, EntityNotFoundError("document", req.DocumentID)
		}
		return nil, internalError(s.logger, "failed to save rating", err,
			zap.Int64("user_id", req.UserID), zap.Int64("document_id", req.DocumentID))
	}

	agg, err := s.recompute(ctx, req.DocumentID)
	if err != nil {
		return nil, err
	}
	invalidateListings(ctx, s.loader)
	publishEngagement(ctx, s.events, s.logger, events.EngagementRating, req.DocumentID, &req.UserID)

	result := &RatingResult{Rating: rating, Aggregate: *agg, Created: created}
	_, notifyErr := s.notifier.NotifyDocumentOwner(ctx, req.DocumentID, req.UserID, models.NotificationNewRating, req.UserName)
	return result, NewSideEffectError("notification", notifyErr)
}

func (s *ratingService) Delete(ctx context.Context, userID, documentID int64) (*models.RatingAggregate, error) {
	ctx = context.WithoutCancel(ctx)
	if err := s.ratings.Delete(ctx, userID, documentID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, EntityNotFoundError("rating", documentID)
		}
		return nil, internalError(s.logger, "failed to delete rating", err,
			zap.Int64("user_id", userID), zap.Int64("document_id", documentID))
	}

	agg, err := s.recompute(ctx, documentID)
	if err != nil {
		return nil, err
	}
	invalidateListings(ctx, s.loader)
	publishEngagement(ctx, s.events, s.logger, events.EngagementUnrate, documentID, &userID)
	return agg, nil
}

// recompute derives the aggregate from the rating rows under a per-document
// lock. If the lock cannot be taken the recompute still runs; the last
// writer wins and the next rating change corrects any drift.
func (s *ratingService) recompute(ctx context.Context, documentID int64) (*models.RatingAggregate, error) {
	unlock, err := s.locker.Lock(ctx, "rating:"+strconv.FormatInt(documentID, 10), s.lockTTL)
	if err != nil {
		s.logger.Warn("Recomputing rating without lock", zap.Int64("document_id", documentID), zap.Error(err))
		unlock = func() {}
	}
	defer unlock()

	count, sum, err := s.ratings.Stats(ctx, documentID)
	if err != nil {
		return nil, internalError(s.logger, "failed to compute rating stats", err, zap.Int64("document_id", documentID))
	}
	agg := ComputeAggregate(count, sum)
	if err := s.ratings.UpdateAggregate(ctx, documentID, agg); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, internalError(s.logger, "failed to store rating aggregate", err, zap.Int64("document_id", documentID))
	}
	return &agg, nil
}

// ComputeAggregate averages sum over count rounded to one decimal.
// No ratings yields 0/0.
func ComputeAggregate(count, sum int64) models.RatingAggregate {
	if count <= 0 {
		return models.RatingAggregate{}
	}
	avg := float64(sum) / float64(count)
	return models.RatingAggregate{
		AverageRating: math.Round(avg*10) / 10,
		TotalRatings:  count,
	}
}

func (s *ratingService) GetMine(ctx context.Context, userID, documentID int64) (*models.Rating, error) {
	rating, err := s.ratings.Get(ctx, userID, documentID)
	if err != nil {
		return nil, internalError(s.logger, "failed to load rating", err)
	}
	if rating == nil {
		return nil, EntityNotFoundError("rating", documentID)
	}
	return rating, nil
}

func (s *ratingService) List(ctx context.Context, documentID int64, p models.PaginationParams) (*models.Page[*models.Rating], error) {
	if _, err := requireApproved(ctx, s.docs, s.logger, documentID); err != nil {
		return nil, err
	}
	p = models.NewPaginationParams(p.Page, p.Limit)
	ratings, total, err := s.ratings.ListByDocument(ctx, documentID, p)
	if err != nil {
		return nil, internalError(s.logger, "failed to list ratings", err, zap.Int64("document_id", documentID))
	}
	return models.NewPage(ratings, total, p), nil
}

func (s *ratingService) Distribution(ctx context.Context, documentID int64) (*models.RatingDistribution, error) {
	if _, err := requireApproved(ctx, s.docs, s.logger, documentID); err != nil {
		return nil, err
	}
	counts, err := s.ratings.Distribution(ctx, documentID)
	if err != nil {
		return nil, internalError(s.logger, "failed to load rating distribution", err, zap.Int64("document_id", documentID))
	}
	return BuildDistribution(counts), nil
}

// BuildDistribution returns zero-filled buckets for stars 5 down to 1.
// Percentages are rounded to one decimal and are 0 without ratings.
func BuildDistribution(counts map[int]int64) *models.RatingDistribution {
	var total int64
	for stars := 1; stars <= 5; stars++ {
		total += counts[stars]
	}

	dist := &models.RatingDistribution{
		TotalRatings: total,
		Buckets:      make([]models.RatingBucket, 0, 5),
	}
	for stars := 5; stars >= 1; stars-- {
		bucket := models.RatingBucket{Stars: stars, Count: counts[stars]}
		if total > 0 {
			bucket.Percentage = math.Round(float64(bucket.Count)*1000/float64(total)) / 10
		}
		dist.Buckets = append(dist.Buckets, bucket)
	}
	return dist
}
