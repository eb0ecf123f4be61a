package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	agentcore "github.com/quorumlabs/peerpanel/src/agents/core"
	"github.com/quorumlabs/peerpanel/src/extract"
)

// Proposal review lifecycle states.
const (
	StatusPending   = "pending"
	StatusReviewing = "reviewing"
	StatusCompleted = "completed"
)

// Panelist is a configured reviewer persona.
type Panelist struct {
	ID               uint64          `gorm:"primaryKey" json:"id"`
	Name             string          `gorm:"size:200;not null" json:"name"`
	Email            string          `gorm:"size:200;index" json:"email"`
	ProfileURL       string          `gorm:"size:500" json:"profile_url"`
	ExpertiseAreas   StringList      `gorm:"type:text" json:"expertise_areas"`
	Publications     PublicationList `gorm:"type:text" json:"publications"`
	Affiliations     StringList      `gorm:"type:text" json:"affiliations"`
	Bio              string          `gorm:"type:text" json:"bio"`
	CriticalScore    float64         `gorm:"default:5" json:"critical_score"`
	OpennessScore    float64         `gorm:"default:5" json:"openness_score"`
	SeriousnessScore float64         `gorm:"default:5" json:"seriousness_score"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// Proposal is a submitted document awaiting panel review.
type Proposal struct {
	ID           uint64     `gorm:"primaryKey" json:"id"`
	Title        string     `gorm:"size:500;not null" json:"title"`
	Content      string     `gorm:"type:longtext" json:"content"`
	Abstract     string     `gorm:"type:text" json:"abstract"`
	Filename     string     `gorm:"size:255" json:"filename"`
	FilePath     string     `gorm:"size:512" json:"-"`
	Keywords     StringList `gorm:"type:text" json:"keywords"`
	ResearchArea string     `gorm:"size:200" json:"research_area"`
	Status       string     `gorm:"size:32;default:pending" json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Review is one panelist's scored evaluation of one proposal. Category
// scores are nullable; user feedback fields stay null until submitted.
type Review struct {
	ID               uint64     `gorm:"primaryKey" json:"id"`
	PanelistID       uint64     `gorm:"index;not null" json:"panelist_id"`
	ProposalID       uint64     `gorm:"index;not null" json:"proposal_id"`
	OverallScore     float64    `json:"overall_score"`
	Recommendation   string     `gorm:"size:16" json:"recommendation"`
	NoveltyScore     *float64   `json:"novelty_score"`
	FeasibilityScore *float64   `json:"feasibility_score"`
	ImpactScore      *float64   `json:"impact_score"`
	MethodologyScore *float64   `json:"methodology_score"`
	ClarityScore     *float64   `json:"clarity_score"`
	Summary          string     `gorm:"type:text" json:"summary"`
	Strengths        StringList `gorm:"type:text" json:"strengths"`
	Weaknesses       StringList `gorm:"type:text" json:"weaknesses"`
	DetailedComments string     `gorm:"type:text" json:"detailed_comments"`
	Suggestions      string     `gorm:"type:text" json:"suggestions"`
	ReasoningTrace   TraceList  `gorm:"type:text" json:"reasoning_trace"`
	UserRating       *float64   `json:"user_rating"`
	UserFeedback     string     `gorm:"type:text" json:"user_feedback"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Setting is one runtime-tunable key/value pair.
type Setting struct {
	ID    uint8  `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"size:64;not null" json:"name"`
	Value string `gorm:"size:256;not null" json:"value"`
}

// StringList stores a JSON array of strings in a text column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return jsonValue(l)
}

func (l *StringList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

// PublicationList stores extracted publications as JSON.
type PublicationList []extract.Publication

func (l PublicationList) Value() (driver.Value, error) {
	if l == nil {
		l = PublicationList{}
	}
	return jsonValue(l)
}

func (l *PublicationList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

// TraceList stores a reasoning trace as JSON.
type TraceList []agentcore.Step

func (l TraceList) Value() (driver.Value, error) {
	if l == nil {
		l = TraceList{}
	}
	return jsonValue(l)
}

func (l *TraceList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

func jsonValue(v interface{}) (driver.Value, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func scanJSON(value, dest interface{}) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dest)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("types: cannot scan %T into a JSON column", value)
	}
}
