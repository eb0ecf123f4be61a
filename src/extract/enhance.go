package extract

import (
	"context"
	"fmt"
	"strings"

	aicore "github.com/quorumlabs/peerpanel/src/ai/core"
)

// Enhancer normalizes and enriches extracted profiles through a model
// backend.
type Enhancer struct {
	client aicore.Client
}

func NewEnhancer(client aicore.Client) *Enhancer {
	return &Enhancer{client: client}
}

var enhanceSchema = aicore.Schema{
	"expertise_areas": aicore.FieldList,
	"enhanced_bio":    aicore.FieldString,
	"primary_domain":  aicore.FieldString,
	"career_level":    aicore.FieldString,
}

// Enhance asks the model for a richer read of the profile and merges the
// answer in. Error profiles pass through untouched. A failed model call
// annotates the profile and mutates nothing else.
func (e *Enhancer) Enhance(ctx context.Context, profile *Profile) *Profile {
	if profile == nil || profile.Error != "" {
		return profile
	}

	data, err := aicore.ExtractStructured(ctx, e.client, enhancePrompt(profile), enhanceSchema)
	if err != nil {
		profile.EnhancementError = err.Error()
		return profile
	}

	merged := append(append([]string{}, profile.ExpertiseAreas...), aicore.StringList(data["expertise_areas"])...)
	profile.ExpertiseAreas = dedupeCap(merged, maxExpertiseAreas)

	if bio, _ := data["enhanced_bio"].(string); runeLen(bio) > 50 {
		profile.Bio = bio
	}
	profile.PrimaryDomain, _ = data["primary_domain"].(string)
	profile.CareerLevel, _ = data["career_level"].(string)
	profile.AIEnhanced = true
	return profile
}

func enhancePrompt(p *Profile) string {
	top := p.ExpertiseAreas
	if len(top) > 5 {
		top = top[:5]
	}
	return fmt.Sprintf(`Analyze this professional profile and extract structured information:

Name: %s
Bio: %s
Current Expertise: %s
Publications: %d found

Extract:
1. **All expertise areas** (be comprehensive - include methods, domains, applications)
2. **Enhanced bio** (2-3 sentences, professional tone)
3. **Primary research domain** (one phrase)
4. **Career level** (PhD Student, Postdoc, Assistant Professor, Associate Professor, Full Professor, Industry Researcher, etc.)

Return as JSON:
{
    "expertise_areas": [<comprehensive list of 5-15 areas>],
    "enhanced_bio": "<2-3 sentence professional bio>",
    "primary_domain": "<one phrase>",
    "career_level": "<level>"
}`,
		p.Name, truncateRunes(p.Bio, 500), strings.Join(top, ", "), len(p.Publications))
}
