package data

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/quorumlabs/peerpanel/src/api/types"
)

// streamReviews carries one event per stored review so downstream
// consumers (notifiers, analytics) can follow panel activity.
const streamReviews = "peerpanel.reviews"

func MustRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	return redis.NewClient(opt)
}

// PublishReviewEvent appends a review event to the reviews stream.
func PublishReviewEvent(ctx context.Context, rdb *redis.Client, review *types.Review) error {
	_, err := rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: streamReviews,
		Values: map[string]interface{}{
			"review_id":      review.ID,
			"panelist_id":    review.PanelistID,
			"proposal_id":    review.ProposalID,
			"overall_score":  review.OverallScore,
			"recommendation": review.Recommendation,
		},
	}).Result()
	return err
}
