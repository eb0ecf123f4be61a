package panelist

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	aicore "github.com/quorumlabs/peerpanel/src/ai/core"
)

type stubClient struct {
	response string
	err      error
	messages []aicore.Message
	options  aicore.Options
}

func (s *stubClient) Complete(_ context.Context, messages []aicore.Message, opts aicore.Options) (string, error) {
	s.messages = messages
	s.options = opts
	return s.response, s.err
}

func samplePanelist() Panelist {
	return Panelist{
		Name:           "Dr. Chen",
		Bio:            "Works on verification of distributed protocols.",
		ExpertiseAreas: []string{"Distributed Systems", "Formal Methods", "Networking", "Compilers"},
		Personality:    Personality{Critical: 8, Openness: 2, Seriousness: 8},
	}
}

func sampleProposal() Proposal {
	return Proposal{
		Title:        "Consensus under churn",
		Abstract:     "We study agreement protocols in networks with high membership churn.",
		Content:      "Full proposal body with methodology details.",
		ResearchArea: "Distributed Systems",
	}
}

func TestRoleDescriptionTraitPhrases(t *testing.T) {
	role := RoleDescription(samplePanelist())

	require.Contains(t, role, "an expert reviewer named Dr. Chen")
	// Only the first three expertise areas make it into the persona.
	require.Contains(t, role, "with expertise in Distributed Systems, Formal Methods, Networking")
	require.NotContains(t, role, "Compilers")

	require.Contains(t, role, "You are highly critical and rigorous in your evaluations")
	require.Contains(t, role, "You prefer well-established methodologies and approaches")
	require.Contains(t, role, "You provide extremely thorough and formal analysis")

	require.NotContains(t, role, "supportive and encouraging")
	require.NotContains(t, role, "open to novel and unconventional")
	require.NotContains(t, role, "concise and practical")
}

func TestRoleDescriptionMidRangeAddsNothing(t *testing.T) {
	p := samplePanelist()
	p.Personality = Personality{Critical: 5, Openness: 5, Seriousness: 5}

	role := RoleDescription(p)

	require.Equal(t, "an expert reviewer named Dr. Chen. with expertise in Distributed Systems, Formal Methods, Networking.", role)
}

func TestReviewProposalParsesModelJSON(t *testing.T) {
	client := &stubClient{response: `Here is my assessment:
{
  "overall_score": 7.5,
  "recommendation": "accept",
  "novelty_score": 8,
  "feasibility_score": 6,
  "impact_score": 7,
  "methodology_score": 7,
  "clarity_score": 9,
  "strengths": ["Clear problem statement", "Strong evaluation plan", "Relevant prior work"],
  "weaknesses": ["Limited failure model", "No cost analysis", "Small testbed"],
  "summary": "A solid proposal on consensus under churn.",
  "detailed_comments": "The methodology is sound.",
  "suggestions": "Add a cost analysis."
}`}
	reviewer := NewReviewer(samplePanelist(), client)

	review := reviewer.ReviewProposal(context.Background(), sampleProposal())

	require.Equal(t, 7.5, review.OverallScore)
	require.Equal(t, RecommendAccept, review.Recommendation)
	require.NotNil(t, review.NoveltyScore)
	require.Equal(t, 8.0, *review.NoveltyScore)
	require.Len(t, review.Strengths, 3)
	require.Equal(t, "A solid proposal on consensus under churn.", review.Summary)
	require.Empty(t, review.ReasoningTrace)

	// One call, persona as system message, proposal summary in the prompt.
	require.Equal(t, aicore.RoleSystem, client.messages[0].Role)
	require.Equal(t, reviewer.Role(), client.messages[0].Content)
	require.Contains(t, client.messages[1].Content, "Title: Consensus under churn")
	require.Contains(t, client.messages[1].Content, "Critical Score: 8/10")
	require.Equal(t, 2500, client.options.MaxCompletionTokens)
}

func TestReviewProposalFallbackOnProse(t *testing.T) {
	client := &stubClient{response: "I think this proposal is quite interesting but I cannot score it."}
	reviewer := NewReviewer(samplePanelist(), client)

	review := reviewer.ReviewProposal(context.Background(), sampleProposal())

	require.Equal(t, 5.0, review.OverallScore)
	require.Equal(t, RecommendRevise, review.Recommendation)
	require.Equal(t, 5.0, *review.NoveltyScore)
	require.Equal(t, 5.0, *review.ClarityScore)
	require.Equal(t, []string{"Unable to generate review"}, review.Strengths)
	require.Len(t, review.Weaknesses, 1)
	require.Contains(t, review.Weaknesses[0], "Error:")
	require.Equal(t, "Review generation failed. Please try again.", review.Summary)
	require.Equal(t, client.response, review.DetailedComments)
	require.Equal(t, "N/A", review.Suggestions)
	require.NotNil(t, review.ReasoningTrace)
	require.Empty(t, review.ReasoningTrace)
}

func TestReviewProposalFallbackOnInvalidJSON(t *testing.T) {
	client := &stubClient{response: `{"overall_score": "not a number"}`}
	reviewer := NewReviewer(samplePanelist(), client)

	review := reviewer.ReviewProposal(context.Background(), sampleProposal())

	require.Equal(t, RecommendRevise, review.Recommendation)
	require.Contains(t, review.Weaknesses[0], "Error:")
	require.Equal(t, client.response, review.DetailedComments)
}

func TestReviewProposalFallbackOnModelError(t *testing.T) {
	client := &stubClient{err: errors.New("rate limited")}
	reviewer := NewReviewer(samplePanelist(), client)

	review := reviewer.ReviewProposal(context.Background(), sampleProposal())

	require.Equal(t, RecommendRevise, review.Recommendation)
	require.Contains(t, review.Weaknesses[0], "rate limited")
	require.Empty(t, review.DetailedComments)
}

func TestReviewProposalNormalizesPartialJSON(t *testing.T) {
	client := &stubClient{response: `{"summary": "ok", "recommendation": "strong accept"}`}
	reviewer := NewReviewer(samplePanelist(), client)

	review := reviewer.ReviewProposal(context.Background(), sampleProposal())

	require.Equal(t, RecommendRevise, review.Recommendation)
	require.Equal(t, 5.0, review.OverallScore)
	require.Nil(t, review.NoveltyScore)
	require.NotNil(t, review.Strengths)
	require.NotNil(t, review.Weaknesses)
}

func TestReviewPromptTruncatesProposal(t *testing.T) {
	longAbstract := make([]byte, 0, 1200)
	for i := 0; i < 1200; i++ {
		longAbstract = append(longAbstract, 'a')
	}
	prop := sampleProposal()
	prop.Abstract = string(longAbstract)

	client := &stubClient{response: "{}"}
	reviewer := NewReviewer(samplePanelist(), client)
	_ = reviewer.ReviewProposal(context.Background(), prop)

	prompt := client.messages[1].Content
	require.NotContains(t, prompt, prop.Abstract)
	require.Contains(t, prompt, prop.Abstract[:500])
}
