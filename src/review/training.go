package review

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"gorm.io/gorm"

	agentcore "github.com/quorumlabs/peerpanel/src/agents/core"
	"github.com/quorumlabs/peerpanel/src/api/types"
)

// Training aggregates user feedback on reviews. It is groundwork for
// later tuning, not a learning system: nothing here updates models.
type Training struct {
	db *gorm.DB
}

func NewTraining(db *gorm.DB) *Training {
	return &Training{db: db}
}

// ScoreSet flattens one review's scores for export. Category scores stay
// nullable.
type ScoreSet struct {
	Overall     float64  `json:"overall"`
	Novelty     *float64 `json:"novelty"`
	Feasibility *float64 `json:"feasibility"`
	Impact      *float64 `json:"impact"`
	Methodology *float64 `json:"methodology"`
	Clarity     *float64 `json:"clarity"`
}

// FeedbackText carries the prose sections of one review.
type FeedbackText struct {
	Summary          string   `json:"summary"`
	Strengths        []string `json:"strengths"`
	Weaknesses       []string `json:"weaknesses"`
	DetailedComments string   `json:"detailed_comments"`
}

// FeedbackRecord is one user-rated review flattened for training export.
type FeedbackRecord struct {
	ReviewID       uint64           `json:"review_id"`
	PanelistID     uint64           `json:"panelist_id"`
	ProposalID     uint64           `json:"proposal_id"`
	Scores         ScoreSet         `json:"scores"`
	Feedback       FeedbackText     `json:"feedback"`
	UserRating     float64          `json:"user_rating"`
	UserFeedback   string           `json:"user_feedback"`
	ReasoningTrace []agentcore.Step `json:"reasoning_trace"`
}

// CollectFeedbackData returns every review that carries a user rating.
func (t *Training) CollectFeedbackData() ([]FeedbackRecord, error) {
	var reviews []types.Review
	if err := t.db.Where("user_rating IS NOT NULL").Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("load rated reviews: %w", err)
	}

	records := make([]FeedbackRecord, 0, len(reviews))
	for i := range reviews {
		records = append(records, toFeedbackRecord(&reviews[i]))
	}
	return records, nil
}

func toFeedbackRecord(r *types.Review) FeedbackRecord {
	var rating float64
	if r.UserRating != nil {
		rating = *r.UserRating
	}
	return FeedbackRecord{
		ReviewID:   r.ID,
		PanelistID: r.PanelistID,
		ProposalID: r.ProposalID,
		Scores: ScoreSet{
			Overall:     r.OverallScore,
			Novelty:     r.NoveltyScore,
			Feasibility: r.FeasibilityScore,
			Impact:      r.ImpactScore,
			Methodology: r.MethodologyScore,
			Clarity:     r.ClarityScore,
		},
		Feedback: FeedbackText{
			Summary:          r.Summary,
			Strengths:        r.Strengths,
			Weaknesses:       r.Weaknesses,
			DetailedComments: r.DetailedComments,
		},
		UserRating:     rating,
		UserFeedback:   r.UserFeedback,
		ReasoningTrace: r.ReasoningTrace,
	}
}

// Insight is one observation about the feedback corpus.
type Insight struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// Analysis summarizes feedback patterns.
type Analysis struct {
	TotalReviews          int       `json:"total_reviews"`
	AverageRating         float64   `json:"average_rating"`
	HighRatedCount        int       `json:"high_rated_count"`
	LowRatedCount         int       `json:"low_rated_count"`
	Insights              []Insight `json:"insights"`
	TrainingDataAvailable bool      `json:"training_data_available"`
}

// Ratings at or above 4 count as high, at or below 2 as low; ten rated
// reviews make the corpus usable.
const (
	highRatingFloor   = 4
	lowRatingCeiling  = 2
	minTrainingCorpus = 10
)

// AnalyzeFeedbackPatterns computes rating statistics over all rated
// reviews. No feedback yields an empty analysis, not an error.
func (t *Training) AnalyzeFeedbackPatterns() (*Analysis, error) {
	records, err := t.CollectFeedbackData()
	if err != nil {
		return nil, err
	}

	analysis := &Analysis{TotalReviews: len(records), Insights: []Insight{}}
	if len(records) == 0 {
		return analysis, nil
	}

	var sum float64
	for _, rec := range records {
		sum += rec.UserRating
		if rec.UserRating >= highRatingFloor {
			analysis.HighRatedCount++
		}
		if rec.UserRating <= lowRatingCeiling {
			analysis.LowRatedCount++
		}
	}
	analysis.AverageRating = sum / float64(len(records))

	if analysis.HighRatedCount > 0 {
		analysis.Insights = append(analysis.Insights, Insight{
			Type:    "positive",
			Message: fmt.Sprintf("%d reviews received high ratings (4-5 stars)", analysis.HighRatedCount),
			Count:   analysis.HighRatedCount,
		})
	}
	if analysis.LowRatedCount > 0 {
		analysis.Insights = append(analysis.Insights, Insight{
			Type:    "negative",
			Message: fmt.Sprintf("%d reviews received low ratings (1-2 stars)", analysis.LowRatedCount),
			Count:   analysis.LowRatedCount,
		})
	}
	analysis.TrainingDataAvailable = len(records) >= minTrainingCorpus

	return analysis, nil
}

// SuggestImprovements turns the analysis into operator guidance.
func (t *Training) SuggestImprovements() ([]string, error) {
	analysis, err := t.AnalyzeFeedbackPatterns()
	if err != nil {
		return nil, err
	}

	var suggestions []string
	if analysis.TotalReviews < minTrainingCorpus {
		suggestions = append(suggestions, "Collect more user feedback to enable meaningful training")
	}
	if analysis.AverageRating < 3.5 {
		suggestions = append(suggestions, "Overall review quality is below target. Consider adjusting AI prompts.")
	}
	if analysis.LowRatedCount > analysis.HighRatedCount {
		suggestions = append(suggestions, "More reviews are rated poorly than highly. Review generation logic needs improvement.")
	}
	if analysis.TrainingDataAvailable {
		suggestions = append(suggestions, "Sufficient training data available. Consider implementing fine-tuning.")
	}
	return suggestions, nil
}

// ExportTrainingData writes all feedback records to a JSON file.
func (t *Training) ExportTrainingData(path string) error {
	records, err := t.CollectFeedbackData()
	if err != nil {
		return err
	}
	raw, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode training data: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write training data: %w", err)
	}
	return nil
}

// Performance summarizes how one panelist's reviews were rated.
type Performance struct {
	PanelistID         uint64         `json:"panelist_id"`
	TotalReviews       int            `json:"total_reviews"`
	AverageRating      float64        `json:"average_rating"`
	Performance        string         `json:"performance"`
	RatingDistribution map[string]int `json:"rating_distribution,omitempty"`
}

// PanelistPerformance grades a panelist by the user ratings their reviews
// received.
func (t *Training) PanelistPerformance(panelistID uint64) (*Performance, error) {
	var reviews []types.Review
	if err := t.db.Where("panelist_id = ? AND user_rating IS NOT NULL", panelistID).Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("load rated reviews: %w", err)
	}

	if len(reviews) == 0 {
		return &Performance{PanelistID: panelistID, Performance: "No data"}, nil
	}

	var sum float64
	dist := map[string]int{"5": 0, "4": 0, "3": 0, "2": 0, "1": 0}
	for _, r := range reviews {
		rating := *r.UserRating
		sum += rating
		if whole := int(rating); float64(whole) == rating && whole >= 1 && whole <= 5 {
			dist[strconv.Itoa(whole)]++
		}
	}
	avg := sum / float64(len(reviews))

	grade := "Needs Improvement"
	switch {
	case avg >= 4:
		grade = "Excellent"
	case avg >= 3:
		grade = "Good"
	case avg >= 2:
		grade = "Fair"
	}

	return &Performance{
		PanelistID:         panelistID,
		TotalReviews:       len(reviews),
		AverageRating:      avg,
		Performance:        grade,
		RatingDistribution: dist,
	}, nil
}
