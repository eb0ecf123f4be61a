// Package review orchestrates panel review generation and aggregates the
// results. A panel run fans out one generation per panelist, tolerates
// individual failures, and always completes the proposal.
package review

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/quorumlabs/peerpanel/src/agents/panelist"
	aicore "github.com/quorumlabs/peerpanel/src/ai/core"
	"github.com/quorumlabs/peerpanel/src/api/data"
	"github.com/quorumlabs/peerpanel/src/api/types"
)

// Generations for one panel run that may hit the model concurrently.
const maxConcurrentReviews = 3

// Service generates and stores reviews.
type Service struct {
	db     *gorm.DB
	rdb    *redis.Client
	client aicore.Client
}

// NewService wires the store and model backend. rdb may be nil; review
// events are then not published.
func NewService(db *gorm.DB, rdb *redis.Client, client aicore.Client) *Service {
	return &Service{db: db, rdb: rdb, client: client}
}

// GenerateReview produces and stores one review. Model trouble degrades to
// the generator's fallback review; only missing records and storage errors
// fail the call.
func (s *Service) GenerateReview(ctx context.Context, panelistID, proposalID uint64) (*types.Review, error) {
	var p types.Panelist
	if err := s.db.First(&p, panelistID).Error; err != nil {
		return nil, fmt.Errorf("panelist %d: %w", panelistID, err)
	}
	var prop types.Proposal
	if err := s.db.First(&prop, proposalID).Error; err != nil {
		return nil, fmt.Errorf("proposal %d: %w", proposalID, err)
	}

	reviewer := panelist.NewReviewer(toPersona(p), s.client)
	generated := reviewer.ReviewProposal(ctx, panelist.Proposal{
		Title:        prop.Title,
		Abstract:     prop.Abstract,
		Content:      prop.Content,
		ResearchArea: prop.ResearchArea,
	})

	rec := types.Review{
		PanelistID:       p.ID,
		ProposalID:       prop.ID,
		OverallScore:     generated.OverallScore,
		Recommendation:   generated.Recommendation,
		NoveltyScore:     generated.NoveltyScore,
		FeasibilityScore: generated.FeasibilityScore,
		ImpactScore:      generated.ImpactScore,
		MethodologyScore: generated.MethodologyScore,
		ClarityScore:     generated.ClarityScore,
		Summary:          generated.Summary,
		Strengths:        types.StringList(generated.Strengths),
		Weaknesses:       types.StringList(generated.Weaknesses),
		DetailedComments: generated.DetailedComments,
		Suggestions:      generated.Suggestions,
		ReasoningTrace:   types.TraceList(generated.ReasoningTrace),
	}
	if err := s.db.Create(&rec).Error; err != nil {
		return nil, fmt.Errorf("store review: %w", err)
	}

	if s.rdb != nil {
		if err := data.PublishReviewEvent(ctx, s.rdb, &rec); err != nil {
			log.Printf("review: publish event for review %d: %v", rec.ID, err)
		}
	}
	return &rec, nil
}

// PanelResult reports one panel run.
type PanelResult struct {
	Reviews   []types.Review `json:"reviews"`
	Requested int            `json:"requested"`
}

// GeneratePanelReview fans review generation out across the given
// panelists (all known panelists when none are given). Individual failures
// are logged and skipped. The proposal is marked completed after the run
// even when every generation failed.
func (s *Service) GeneratePanelReview(ctx context.Context, proposalID uint64, panelistIDs []uint64) (*PanelResult, error) {
	if len(panelistIDs) == 0 {
		var all []types.Panelist
		if err := s.db.Find(&all).Error; err != nil {
			return nil, fmt.Errorf("list panelists: %w", err)
		}
		for _, p := range all {
			panelistIDs = append(panelistIDs, p.ID)
		}
	}

	var wg sync.WaitGroup
	results := make([]*types.Review, len(panelistIDs))
	semaphore := make(chan struct{}, maxConcurrentReviews)

	for i, id := range panelistIDs {
		wg.Add(1)
		go func(slot int, panelistID uint64) {
			defer wg.Done()

			select {
			case semaphore <- struct{}{}:
				defer func() { <-semaphore }()
			case <-ctx.Done():
				log.Printf("review: panel run cancelled before panelist %d", panelistID)
				return
			}

			rec, err := s.GenerateReview(ctx, panelistID, proposalID)
			if err != nil {
				log.Printf("review: panelist %d on proposal %d: %v", panelistID, proposalID, err)
				return
			}
			results[slot] = rec
		}(i, id)
	}
	wg.Wait()

	reviews := make([]types.Review, 0, len(panelistIDs))
	for _, rec := range results {
		if rec != nil {
			reviews = append(reviews, *rec)
		}
	}

	// Completed means the run happened, not that it produced reviews.
	if err := s.db.Model(&types.Proposal{}).
		Where("id = ?", proposalID).
		Update("status", types.StatusCompleted).Error; err != nil {
		log.Printf("review: mark proposal %d completed: %v", proposalID, err)
	}

	return &PanelResult{Reviews: reviews, Requested: len(panelistIDs)}, nil
}

// Summary aggregates all reviews for one proposal.
type Summary struct {
	ProposalID              uint64             `json:"proposal_id"`
	ReviewCount             int                `json:"review_count"`
	AverageScore            float64            `json:"average_score"`
	ScoreRange              []float64          `json:"score_range,omitempty"`
	RecommendationBreakdown map[string]int     `json:"recommendation_breakdown"`
	CategoryAverages        map[string]float64 `json:"category_averages,omitempty"`
	Reviews                 []types.Review     `json:"reviews"`
}

var categoryScores = map[string]func(*types.Review) *float64{
	"novelty":     func(r *types.Review) *float64 { return r.NoveltyScore },
	"feasibility": func(r *types.Review) *float64 { return r.FeasibilityScore },
	"impact":      func(r *types.Review) *float64 { return r.ImpactScore },
	"methodology": func(r *types.Review) *float64 { return r.MethodologyScore },
	"clarity":     func(r *types.Review) *float64 { return r.ClarityScore },
}

// Summarize computes review statistics for a proposal. A proposal with no
// reviews yields a zeroed summary, not an error.
func (s *Service) Summarize(proposalID uint64) (*Summary, error) {
	var reviews []types.Review
	if err := s.db.Where("proposal_id = ?", proposalID).Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("load reviews: %w", err)
	}

	summary := &Summary{
		ProposalID:              proposalID,
		ReviewCount:             len(reviews),
		RecommendationBreakdown: map[string]int{},
		Reviews:                 reviews,
	}
	if len(reviews) == 0 {
		summary.Reviews = []types.Review{}
		return summary, nil
	}

	var sum float64
	low, high := reviews[0].OverallScore, reviews[0].OverallScore
	for _, r := range reviews {
		sum += r.OverallScore
		if r.OverallScore < low {
			low = r.OverallScore
		}
		if r.OverallScore > high {
			high = r.OverallScore
		}
		summary.RecommendationBreakdown[r.Recommendation]++
	}
	summary.AverageScore = sum / float64(len(reviews))
	summary.ScoreRange = []float64{low, high}

	summary.CategoryAverages = make(map[string]float64, len(categoryScores))
	for category, score := range categoryScores {
		var total float64
		var n int
		for i := range reviews {
			if v := score(&reviews[i]); v != nil {
				total += *v
				n++
			}
		}
		if n > 0 {
			summary.CategoryAverages[category] = total / float64(n)
		} else {
			summary.CategoryAverages[category] = 0
		}
	}

	return summary, nil
}

// SubmitFeedback records a user's rating of one review.
func (s *Service) SubmitFeedback(reviewID uint64, rating float64, feedback string) (*types.Review, error) {
	var rec types.Review
	if err := s.db.First(&rec, reviewID).Error; err != nil {
		return nil, fmt.Errorf("review %d: %w", reviewID, err)
	}

	rec.UserRating = &rating
	rec.UserFeedback = feedback
	if err := s.db.Model(&types.Review{}).Where("id = ?", rec.ID).Updates(map[string]interface{}{
		"user_rating":   rating,
		"user_feedback": feedback,
	}).Error; err != nil {
		return nil, fmt.Errorf("update review %d: %w", rec.ID, err)
	}
	return &rec, nil
}

func toPersona(p types.Panelist) panelist.Panelist {
	return panelist.Panelist{
		Name:           p.Name,
		Bio:            p.Bio,
		ExpertiseAreas: []string(p.ExpertiseAreas),
		Publications:   p.Publications,
		Personality: panelist.Personality{
			Critical:    p.CriticalScore,
			Openness:    p.OpennessScore,
			Seriousness: p.SeriousnessScore,
		},
	}
}
