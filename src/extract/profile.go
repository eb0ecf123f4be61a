package extract

import "strings"

// Source identifies which extraction path produced a profile.
type Source string

const (
	SourceWebsite             Source = "website"
	SourceAcademicIndex       Source = "academic_index"
	SourceProfessionalNetwork Source = "professional_network"
	SourceError               Source = "error"
)

const (
	maxExpertiseAreas = 15
	maxPublications   = 10
)

// Publication is one work attributed to a person.
type Publication struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// Profile is the result of extracting a person from a web page.
type Profile struct {
	Name           string        `json:"name"`
	Bio            string        `json:"bio"`
	ExpertiseAreas []string      `json:"expertise_areas"`
	Publications   []Publication `json:"publications"`
	Affiliations   []string      `json:"affiliations"`
	Source         Source        `json:"source"`
	URL            string        `json:"url"`
	Note           string        `json:"note,omitempty"`

	// Enrichment fields, set only when an Enhancer ran.
	PrimaryDomain string `json:"primary_domain,omitempty"`
	CareerLevel   string `json:"career_level,omitempty"`
	AIEnhanced    bool   `json:"ai_enhanced,omitempty"`

	// Error is non-empty only on error profiles; EnhancementError records a
	// failed enrichment on an otherwise good profile.
	Error            string `json:"error,omitempty"`
	EnhancementError string `json:"ai_enhancement_error,omitempty"`
}

// ErrorProfile is the deterministic degraded result: every content field
// stays at its default so callers can rely on the shape.
func ErrorProfile(pageURL string, cause error) *Profile {
	return &Profile{
		Name:           "Unknown",
		ExpertiseAreas: []string{},
		Publications:   []Publication{},
		Affiliations:   []string{},
		Source:         SourceError,
		URL:            pageURL,
		Error:          cause.Error(),
	}
}

// Clone returns a copy that shares no slices with p.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	out := *p
	out.ExpertiseAreas = append([]string(nil), p.ExpertiseAreas...)
	out.Publications = append([]Publication(nil), p.Publications...)
	out.Affiliations = append([]string(nil), p.Affiliations...)
	return &out
}

// Partial holds whatever fields one extraction strategy recovered.
type Partial struct {
	Name         string
	Bio          string
	Expertise    []string
	Publications []Publication
	Affiliations []string
}

// fillFrom copies fields from other into gaps p still has. Earlier
// strategies in a cascade therefore win per field.
func (p *Partial) fillFrom(other *Partial) {
	if other == nil {
		return
	}
	if p.Name == "" {
		p.Name = other.Name
	}
	if p.Bio == "" {
		p.Bio = other.Bio
	}
	if len(p.Expertise) == 0 {
		p.Expertise = other.Expertise
	}
	if len(p.Publications) == 0 {
		p.Publications = other.Publications
	}
	if len(p.Affiliations) == 0 {
		p.Affiliations = other.Affiliations
	}
}

// profile assembles the final Profile, enforcing the expertise and
// publication caps.
func (p *Partial) profile(source Source, pageURL string) *Profile {
	pubs := p.Publications
	if len(pubs) > maxPublications {
		pubs = pubs[:maxPublications]
	}
	if pubs == nil {
		pubs = []Publication{}
	}
	return &Profile{
		Name:           p.Name,
		Bio:            p.Bio,
		ExpertiseAreas: dedupeCap(p.Expertise, maxExpertiseAreas),
		Publications:   pubs,
		Affiliations:   orEmptyList(p.Affiliations),
		Source:         source,
		URL:            pageURL,
	}
}

// dedupeCap drops blank and repeated entries, preserving first-seen order,
// and truncates to limit.
func dedupeCap(items []string, limit int) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
		if len(out) == limit {
			break
		}
	}
	return out
}

func orEmptyList(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
