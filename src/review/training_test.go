package review

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/quorumlabs/peerpanel/src/api/types"
)

func seedRatedReview(t *testing.T, db *gorm.DB, panelistID, proposalID uint64, rating float64) types.Review {
	t.Helper()
	rec := types.Review{
		PanelistID:     panelistID,
		ProposalID:     proposalID,
		OverallScore:   7,
		Recommendation: "accept",
		Summary:        "fine",
		Strengths:      types.StringList{"clear"},
		Weaknesses:     types.StringList{"thin"},
		UserRating:     &rating,
		UserFeedback:   "noted",
	}
	require.NoError(t, db.Create(&rec).Error)
	return rec
}

func TestCollectFeedbackDataSkipsUnrated(t *testing.T) {
	db := newTestDB(t)
	p := seedPanelist(t, db, "Dr. Chen")
	prop := seedProposal(t, db)

	seedRatedReview(t, db, p.ID, prop.ID, 5)
	unrated := types.Review{PanelistID: p.ID, ProposalID: prop.ID, OverallScore: 6, Recommendation: "revise"}
	require.NoError(t, db.Create(&unrated).Error)

	training := NewTraining(db)
	records, err := training.CollectFeedbackData()
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, 5.0, records[0].UserRating)
	require.Equal(t, []string{"clear"}, records[0].Feedback.Strengths)
	require.Equal(t, 7.0, records[0].Scores.Overall)
	require.Nil(t, records[0].Scores.Novelty)
}

func TestAnalyzeFeedbackPatterns(t *testing.T) {
	db := newTestDB(t)
	p := seedPanelist(t, db, "Dr. Chen")
	prop := seedProposal(t, db)

	seedRatedReview(t, db, p.ID, prop.ID, 5)
	seedRatedReview(t, db, p.ID, prop.ID, 4)
	seedRatedReview(t, db, p.ID, prop.ID, 2)

	training := NewTraining(db)
	analysis, err := training.AnalyzeFeedbackPatterns()
	require.NoError(t, err)

	require.Equal(t, 3, analysis.TotalReviews)
	require.InDelta(t, 11.0/3.0, analysis.AverageRating, 1e-9)
	require.Equal(t, 2, analysis.HighRatedCount)
	require.Equal(t, 1, analysis.LowRatedCount)
	require.False(t, analysis.TrainingDataAvailable)
	require.Len(t, analysis.Insights, 2)
	require.Equal(t, "positive", analysis.Insights[0].Type)
	require.Contains(t, analysis.Insights[0].Message, "2 reviews received high ratings")
	require.Equal(t, "negative", analysis.Insights[1].Type)
}

func TestAnalyzeFeedbackPatternsEmpty(t *testing.T) {
	db := newTestDB(t)
	training := NewTraining(db)

	analysis, err := training.AnalyzeFeedbackPatterns()
	require.NoError(t, err)
	require.Zero(t, analysis.TotalReviews)
	require.Zero(t, analysis.AverageRating)
	require.Empty(t, analysis.Insights)
	require.False(t, analysis.TrainingDataAvailable)
}

func TestSuggestImprovements(t *testing.T) {
	db := newTestDB(t)
	training := NewTraining(db)

	// With no feedback at all, the corpus-size and quality rules both fire.
	suggestions, err := training.SuggestImprovements()
	require.NoError(t, err)
	require.Equal(t, []string{
		"Collect more user feedback to enable meaningful training",
		"Overall review quality is below target. Consider adjusting AI prompts.",
	}, suggestions)

	p := seedPanelist(t, db, "Dr. Chen")
	prop := seedProposal(t, db)
	for i := 0; i < 10; i++ {
		seedRatedReview(t, db, p.ID, prop.ID, 5)
	}

	suggestions, err = training.SuggestImprovements()
	require.NoError(t, err)
	require.Equal(t, []string{
		"Sufficient training data available. Consider implementing fine-tuning.",
	}, suggestions)
}

func TestSuggestImprovementsPoorRatings(t *testing.T) {
	db := newTestDB(t)
	p := seedPanelist(t, db, "Dr. Chen")
	prop := seedProposal(t, db)
	seedRatedReview(t, db, p.ID, prop.ID, 1)
	seedRatedReview(t, db, p.ID, prop.ID, 2)
	seedRatedReview(t, db, p.ID, prop.ID, 5)

	training := NewTraining(db)
	suggestions, err := training.SuggestImprovements()
	require.NoError(t, err)
	require.Contains(t, suggestions, "More reviews are rated poorly than highly. Review generation logic needs improvement.")
	require.Contains(t, suggestions, "Overall review quality is below target. Consider adjusting AI prompts.")
}

func TestExportTrainingData(t *testing.T) {
	db := newTestDB(t)
	p := seedPanelist(t, db, "Dr. Chen")
	prop := seedProposal(t, db)
	seedRatedReview(t, db, p.ID, prop.ID, 4)

	training := NewTraining(db)
	path := filepath.Join(t.TempDir(), "training.json")
	require.NoError(t, training.ExportTrainingData(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var records []FeedbackRecord
	require.NoError(t, json.Unmarshal(raw, &records))
	require.Len(t, records, 1)
	require.Equal(t, p.ID, records[0].PanelistID)
}

func TestPanelistPerformance(t *testing.T) {
	db := newTestDB(t)
	p := seedPanelist(t, db, "Dr. Chen")
	other := seedPanelist(t, db, "Dr. Garcia")
	prop := seedProposal(t, db)

	seedRatedReview(t, db, p.ID, prop.ID, 5)
	seedRatedReview(t, db, p.ID, prop.ID, 4)
	seedRatedReview(t, db, p.ID, prop.ID, 4.5)
	seedRatedReview(t, db, other.ID, prop.ID, 1)

	training := NewTraining(db)
	perf, err := training.PanelistPerformance(p.ID)
	require.NoError(t, err)

	require.Equal(t, 3, perf.TotalReviews)
	require.InDelta(t, 4.5, perf.AverageRating, 1e-9)
	require.Equal(t, "Excellent", perf.Performance)
	require.Equal(t, 1, perf.RatingDistribution["5"])
	require.Equal(t, 1, perf.RatingDistribution["4"])
	// Fractional ratings are not binned.
	require.Equal(t, 0, perf.RatingDistribution["3"])
}

func TestPanelistPerformanceNoData(t *testing.T) {
	db := newTestDB(t)
	training := NewTraining(db)

	perf, err := training.PanelistPerformance(7)
	require.NoError(t, err)
	require.Equal(t, "No data", perf.Performance)
	require.Zero(t, perf.TotalReviews)
	require.Nil(t, perf.RatingDistribution)
}
