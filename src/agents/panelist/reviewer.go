// Package panelist turns a reviewer persona plus a proposal summary into a
// structured scored review through a single model call with a strict JSON
// contract. Responses that cannot be parsed degrade to a deterministic
// fallback review; the caller never sees an error.
package panelist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	agentcore "github.com/quorumlabs/peerpanel/src/agents/core"
	aicore "github.com/quorumlabs/peerpanel/src/ai/core"
	"github.com/quorumlabs/peerpanel/src/extract"
)

// Recommendation values a review may carry.
const (
	RecommendAccept = "accept"
	RecommendRevise = "revise"
	RecommendReject = "reject"
)

const (
	maxAbstractChars = 500
	maxPreviewChars  = 1000
	reviewMaxTokens  = 2500
)

// Personality holds the trait scores shaping a reviewer's voice, each in
// [0,10] with 5 as the neutral default.
type Personality struct {
	Critical    float64 `json:"critical_score"`
	Openness    float64 `json:"openness_score"`
	Seriousness float64 `json:"seriousness_score"`
}

// Panelist describes one reviewer persona.
type Panelist struct {
	Name           string
	Bio            string
	ExpertiseAreas []string
	Publications   []extract.Publication
	Personality    Personality
}

// Proposal is the slice of a submission a reviewer sees.
type Proposal struct {
	Title        string
	Abstract     string
	Content      string
	ResearchArea string
}

// Review is the structured output of one reviewer. Category scores are
// pointers because a model may omit them; the overall score never is.
type Review struct {
	OverallScore     float64          `json:"overall_score"`
	Recommendation   string           `json:"recommendation"`
	NoveltyScore     *float64         `json:"novelty_score"`
	FeasibilityScore *float64         `json:"feasibility_score"`
	ImpactScore      *float64         `json:"impact_score"`
	MethodologyScore *float64         `json:"methodology_score"`
	ClarityScore     *float64         `json:"clarity_score"`
	Strengths        []string         `json:"strengths"`
	Weaknesses       []string         `json:"weaknesses"`
	Summary          string           `json:"summary"`
	DetailedComments string           `json:"detailed_comments"`
	Suggestions      string           `json:"suggestions"`
	ReasoningTrace   []agentcore.Step `json:"reasoning_trace"`
}

// Reviewer generates reviews for one panelist persona.
type Reviewer struct {
	panelist Panelist
	role     string
	agent    *agentcore.Agent
	client   aicore.Client
}

// NewReviewer builds the persona role string and its reasoning agent.
func NewReviewer(p Panelist, client aicore.Client) *Reviewer {
	role := RoleDescription(p)
	taskContext := map[string]any{
		"name":         p.Name,
		"expertise":    p.ExpertiseAreas,
		"publications": topPublications(p.Publications, 5),
		"bio":          p.Bio,
		"personality":  p.Personality,
	}
	return &Reviewer{
		panelist: p,
		role:     role,
		agent:    agentcore.New(role, taskContext, client),
		client:   client,
	}
}

// RoleDescription builds the deterministic system persona from trait
// thresholds: scores of 7 and above or 3 and below add a phrase, mid-range
// scores add nothing.
func RoleDescription(p Panelist) string {
	top := p.ExpertiseAreas
	if len(top) > 3 {
		top = top[:3]
	}
	parts := []string{
		fmt.Sprintf("an expert reviewer named %s", p.Name),
		fmt.Sprintf("with expertise in %s", strings.Join(top, ", ")),
	}

	if p.Personality.Critical >= 7 {
		parts = append(parts, "You are highly critical and rigorous in your evaluations")
	} else if p.Personality.Critical <= 3 {
		parts = append(parts, "You are supportive and encouraging in your reviews")
	}

	if p.Personality.Openness >= 7 {
		parts = append(parts, "You are very open to novel and unconventional ideas")
	} else if p.Personality.Openness <= 3 {
		parts = append(parts, "You prefer well-established methodologies and approaches")
	}

	if p.Personality.Seriousness >= 7 {
		parts = append(parts, "You provide extremely thorough and formal analysis")
	} else if p.Personality.Seriousness <= 3 {
		parts = append(parts, "You provide concise and practical feedback")
	}

	return strings.Join(parts, ". ") + "."
}

// Agent exposes the underlying reasoning agent.
func (r *Reviewer) Agent() *agentcore.Agent { return r.agent }

// Role returns the persona system string.
func (r *Reviewer) Role() string { return r.role }

// ReviewProposal issues the single structured review call. Whatever the
// model does, the result satisfies the review schema.
func (r *Reviewer) ReviewProposal(ctx context.Context, prop Proposal) *Review {
	messages := []aicore.Message{
		{Role: aicore.RoleSystem, Content: r.role},
		{Role: aicore.RoleUser, Content: r.reviewPrompt(prop)},
	}

	raw, err := r.client.Complete(ctx, messages, aicore.Options{
		Temperature:         0.7,
		MaxCompletionTokens: reviewMaxTokens,
	})
	if err != nil {
		return r.fallbackReview(err, "")
	}

	block, ok := aicore.JSONBlock(raw)
	if !ok {
		return r.fallbackReview(errors.New("no JSON found in response"), raw)
	}
	var review Review
	if err := json.Unmarshal([]byte(block), &review); err != nil {
		return r.fallbackReview(err, raw)
	}

	normalizeReview(&review)
	review.ReasoningTrace = r.agent.Trace()
	return &review
}

// ExplainReasoning renders the persona's recorded trace.
func (r *Reviewer) ExplainReasoning() string {
	return r.agent.ExplainReasoning()
}

func (r *Reviewer) reviewPrompt(prop Proposal) string {
	return fmt.Sprintf(`You are reviewing a research proposal. Provide a comprehensive review with the following structure:

PROPOSAL INFORMATION:
Title: %s
Research Area: %s
Abstract: %s
Content Preview: %s

YOUR BACKGROUND:
Expertise: %s
Bio: %s

YOUR PERSONALITY TRAITS:
- Critical Score: %g/10 (higher = more critical)
- Openness Score: %g/10 (higher = more open to novel ideas)
- Seriousness Score: %g/10 (higher = more thorough and formal)

REVIEW REQUIREMENTS:
1. Provide scores (1-10) for:
   - Novelty: How original and innovative is the research?
   - Feasibility: How realistic is the proposed methodology?
   - Impact: What is the potential significance of the work?
   - Methodology: How sound is the research approach?
   - Clarity: How well-written and clear is the proposal?

2. Provide an overall score (1-10) and recommendation (accept/revise/reject)

3. List 3-5 specific strengths

4. List 3-5 specific weaknesses

5. Write a summary paragraph (3-5 sentences)

6. Provide detailed comments addressing methodology, novelty, and impact

7. Offer constructive suggestions for improvement

Adjust your tone and scoring based on your personality traits. Be consistent with your expertise and background.

Return your review in the following JSON format:
{
    "overall_score": <float>,
    "recommendation": "<accept|revise|reject>",
    "novelty_score": <float>,
    "feasibility_score": <float>,
    "impact_score": <float>,
    "methodology_score": <float>,
    "clarity_score": <float>,
    "strengths": [<list of strings>],
    "weaknesses": [<list of strings>],
    "summary": "<string>",
    "detailed_comments": "<string>",
    "suggestions": "<string>"
}`,
		prop.Title,
		prop.ResearchArea,
		truncateRunes(prop.Abstract, maxAbstractChars),
		truncateRunes(prop.Content, maxPreviewChars),
		strings.Join(r.panelist.ExpertiseAreas, ", "),
		r.panelist.Bio,
		r.panelist.Personality.Critical,
		r.panelist.Personality.Openness,
		r.panelist.Personality.Seriousness,
	)
}

// fallbackReview is the deterministic degraded review: neutral scores, a
// revise recommendation, and the raw model output preserved for operators.
func (r *Reviewer) fallbackReview(cause error, raw string) *Review {
	return &Review{
		OverallScore:     5.0,
		Recommendation:   RecommendRevise,
		NoveltyScore:     floatPtr(5.0),
		FeasibilityScore: floatPtr(5.0),
		ImpactScore:      floatPtr(5.0),
		MethodologyScore: floatPtr(5.0),
		ClarityScore:     floatPtr(5.0),
		Strengths:        []string{"Unable to generate review"},
		Weaknesses:       []string{fmt.Sprintf("Error: %v", cause)},
		Summary:          "Review generation failed. Please try again.",
		DetailedComments: raw,
		Suggestions:      "N/A",
		ReasoningTrace:   []agentcore.Step{},
	}
}

// normalizeReview fills schema holes a lenient model response may leave.
func normalizeReview(r *Review) {
	if r.OverallScore == 0 {
		r.OverallScore = 5.0
	}
	switch r.Recommendation {
	case RecommendAccept, RecommendRevise, RecommendReject:
	default:
		r.Recommendation = RecommendRevise
	}
	if r.Strengths == nil {
		r.Strengths = []string{}
	}
	if r.Weaknesses == nil {
		r.Weaknesses = []string{}
	}
}

func topPublications(pubs []extract.Publication, n int) []extract.Publication {
	if len(pubs) > n {
		pubs = pubs[:n]
	}
	return pubs
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func floatPtr(v float64) *float64 { return &v }
