package review

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	aicore "github.com/quorumlabs/peerpanel/src/ai/core"
	"github.com/quorumlabs/peerpanel/src/api/types"
)

const reviewJSON = `{
  "overall_score": 8.0,
  "recommendation": "accept",
  "novelty_score": 9,
  "feasibility_score": 7,
  "impact_score": 8,
  "methodology_score": 7,
  "clarity_score": 8,
  "strengths": ["Well scoped", "Novel angle", "Clear writing"],
  "weaknesses": ["Thin evaluation", "No baselines", "Tight timeline"],
  "summary": "Strong proposal overall.",
  "detailed_comments": "Methodology holds up.",
  "suggestions": "Add baselines."
}`

type fixedClient struct {
	response string
	err      error
}

func (f fixedClient) Complete(context.Context, []aicore.Message, aicore.Options) (string, error) {
	return f.response, f.err
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "peerpanel.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&types.Panelist{}, &types.Proposal{}, &types.Review{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Serialize access: sqlite allows one writer at a time.
	sqlDB.SetMaxOpenConns(1)
	return db
}

func seedPanelist(t *testing.T, db *gorm.DB, name string) types.Panelist {
	t.Helper()
	p := types.Panelist{
		Name:             name,
		ExpertiseAreas:   types.StringList{"Distributed Systems"},
		Bio:              "Systems researcher.",
		CriticalScore:    5,
		OpennessScore:    5,
		SeriousnessScore: 5,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func seedProposal(t *testing.T, db *gorm.DB) types.Proposal {
	t.Helper()
	prop := types.Proposal{
		Title:        "Consensus under churn",
		Abstract:     "Agreement protocols under membership churn.",
		Content:      "Long body.",
		ResearchArea: "Distributed Systems",
		Status:       types.StatusPending,
	}
	require.NoError(t, db.Create(&prop).Error)
	return prop
}

func TestGenerateReviewStoresRecord(t *testing.T) {
	db := newTestDB(t)
	p := seedPanelist(t, db, "Dr. Chen")
	prop := seedProposal(t, db)
	svc := NewService(db, nil, fixedClient{response: reviewJSON})

	rec, err := svc.GenerateReview(context.Background(), p.ID, prop.ID)
	require.NoError(t, err)
	require.NotZero(t, rec.ID)
	require.Equal(t, 8.0, rec.OverallScore)
	require.Equal(t, "accept", rec.Recommendation)

	var stored types.Review
	require.NoError(t, db.First(&stored, rec.ID).Error)
	require.Equal(t, p.ID, stored.PanelistID)
	require.Equal(t, prop.ID, stored.ProposalID)
	require.Equal(t, types.StringList{"Well scoped", "Novel angle", "Clear writing"}, stored.Strengths)
	require.NotNil(t, stored.NoveltyScore)
	require.Equal(t, 9.0, *stored.NoveltyScore)
	require.Nil(t, stored.UserRating)
}

func TestGenerateReviewFallsBackOnModelError(t *testing.T) {
	db := newTestDB(t)
	p := seedPanelist(t, db, "Dr. Chen")
	prop := seedProposal(t, db)
	svc := NewService(db, nil, fixedClient{err: errors.New("provider down")})

	rec, err := svc.GenerateReview(context.Background(), p.ID, prop.ID)
	require.NoError(t, err)
	require.Equal(t, "revise", rec.Recommendation)
	require.Equal(t, 5.0, rec.OverallScore)
	require.Contains(t, rec.Weaknesses[0], "provider down")
}

func TestGenerateReviewUnknownRecords(t *testing.T) {
	db := newTestDB(t)
	p := seedPanelist(t, db, "Dr. Chen")
	prop := seedProposal(t, db)
	svc := NewService(db, nil, fixedClient{response: reviewJSON})

	_, err := svc.GenerateReview(context.Background(), p.ID+999, prop.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = svc.GenerateReview(context.Background(), p.ID, prop.ID+999)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPanelReviewToleratesFailures(t *testing.T) {
	db := newTestDB(t)
	p1 := seedPanelist(t, db, "Dr. Chen")
	p2 := seedPanelist(t, db, "Dr. Garcia")
	prop := seedProposal(t, db)
	svc := NewService(db, nil, fixedClient{response: reviewJSON})

	missing := p2.ID + 999
	result, err := svc.GeneratePanelReview(context.Background(), prop.ID, []uint64{p1.ID, missing, p2.ID})
	require.NoError(t, err)

	require.Equal(t, 3, result.Requested)
	require.Len(t, result.Reviews, 2)
	reviewed := []uint64{result.Reviews[0].PanelistID, result.Reviews[1].PanelistID}
	require.ElementsMatch(t, []uint64{p1.ID, p2.ID}, reviewed)

	var reloaded types.Proposal
	require.NoError(t, db.First(&reloaded, prop.ID).Error)
	require.Equal(t, types.StatusCompleted, reloaded.Status)
}

func TestPanelReviewDefaultsToAllPanelists(t *testing.T) {
	db := newTestDB(t)
	seedPanelist(t, db, "Dr. Chen")
	seedPanelist(t, db, "Dr. Garcia")
	seedPanelist(t, db, "Dr. Patel")
	prop := seedProposal(t, db)
	svc := NewService(db, nil, fixedClient{response: reviewJSON})

	result, err := svc.GeneratePanelReview(context.Background(), prop.ID, nil)
	require.NoError(t, err)
	require.Equal(t, 3, result.Requested)
	require.Len(t, result.Reviews, 3)
}

func TestSummarize(t *testing.T) {
	db := newTestDB(t)
	p := seedPanelist(t, db, "Dr. Chen")
	prop := seedProposal(t, db)

	six, eight := 6.0, 8.0
	require.NoError(t, db.Create(&types.Review{
		PanelistID: p.ID, ProposalID: prop.ID,
		OverallScore: 6, Recommendation: "revise",
		NoveltyScore: &six,
	}).Error)
	require.NoError(t, db.Create(&types.Review{
		PanelistID: p.ID, ProposalID: prop.ID,
		OverallScore: 8, Recommendation: "accept",
		NoveltyScore: &eight,
	}).Error)

	svc := NewService(db, nil, fixedClient{response: reviewJSON})
	summary, err := svc.Summarize(prop.ID)
	require.NoError(t, err)

	require.Equal(t, 2, summary.ReviewCount)
	require.Equal(t, 7.0, summary.AverageScore)
	require.Equal(t, []float64{6, 8}, summary.ScoreRange)
	require.Equal(t, map[string]int{"revise": 1, "accept": 1}, summary.RecommendationBreakdown)
	require.Equal(t, 7.0, summary.CategoryAverages["novelty"])
	// No review carried a feasibility score, so its average reports zero.
	require.Equal(t, 0.0, summary.CategoryAverages["feasibility"])
	require.Len(t, summary.Reviews, 2)
}

func TestSummarizeEmpty(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil, fixedClient{response: reviewJSON})

	summary, err := svc.Summarize(42)
	require.NoError(t, err)
	require.Equal(t, uint64(42), summary.ProposalID)
	require.Zero(t, summary.ReviewCount)
	require.Zero(t, summary.AverageScore)
	require.Empty(t, summary.ScoreRange)
	require.Empty(t, summary.RecommendationBreakdown)
	require.NotNil(t, summary.Reviews)
	require.Empty(t, summary.Reviews)
}

func TestSubmitFeedback(t *testing.T) {
	db := newTestDB(t)
	p := seedPanelist(t, db, "Dr. Chen")
	prop := seedProposal(t, db)
	rec := types.Review{PanelistID: p.ID, ProposalID: prop.ID, OverallScore: 7, Recommendation: "accept"}
	require.NoError(t, db.Create(&rec).Error)

	svc := NewService(db, nil, fixedClient{response: reviewJSON})
	updated, err := svc.SubmitFeedback(rec.ID, 4.5, "useful review")
	require.NoError(t, err)
	require.NotNil(t, updated.UserRating)
	require.Equal(t, 4.5, *updated.UserRating)

	var stored types.Review
	require.NoError(t, db.First(&stored, rec.ID).Error)
	require.NotNil(t, stored.UserRating)
	require.Equal(t, 4.5, *stored.UserRating)
	require.Equal(t, "useful review", stored.UserFeedback)

	_, err = svc.SubmitFeedback(rec.ID+999, 3, "x")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
