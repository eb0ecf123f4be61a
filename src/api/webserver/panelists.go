package webserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"github.com/quorumlabs/peerpanel/src/api/types"
	"github.com/quorumlabs/peerpanel/src/extract"
)

type Panelists struct {
	db        *gorm.DB
	pipe      *extract.Pipeline
	sanitizer *bluemonday.Policy
}

func NewPanelists(db *gorm.DB, pipe *extract.Pipeline) Panelists {
	// Extracted pages and user-supplied bios are untrusted; strip all markup.
	return Panelists{db: db, pipe: pipe, sanitizer: bluemonday.StrictPolicy()}
}

func (h Panelists) List(c *gin.Context) {
	var panelists []types.Panelist
	if err := h.db.Find(&panelists).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"panelists": panelists})
}

func (h Panelists) Create(c *gin.Context) {
	var req struct {
		Name             string   `json:"name" binding:"max=200"`
		Email            string   `json:"email" binding:"omitempty,email,max=200"`
		ProfileURL       string   `json:"profile_url" binding:"omitempty,url,max=500"`
		ExpertiseAreas   []string `json:"expertise_areas"`
		Bio              string   `json:"bio" binding:"max=5000"`
		CriticalScore    *float64 `json:"critical_score" binding:"omitempty,min=0,max=10"`
		OpennessScore    *float64 `json:"openness_score" binding:"omitempty,min=0,max=10"`
		SeriousnessScore *float64 `json:"seriousness_score" binding:"omitempty,min=0,max=10"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	var prof *extract.Profile
	if req.ProfileURL != "" {
		prof = h.pipe.Extract(c.Request.Context(), req.ProfileURL)
		h.sanitizeProfile(prof)
	}

	// Explicit fields win over extracted ones; publications and
	// affiliations only ever come from extraction.
	p := types.Panelist{
		Name:             req.Name,
		Email:            req.Email,
		ProfileURL:       req.ProfileURL,
		ExpertiseAreas:   req.ExpertiseAreas,
		Bio:              h.sanitizer.Sanitize(req.Bio),
		CriticalScore:    scoreOrDefault(req.CriticalScore),
		OpennessScore:    scoreOrDefault(req.OpennessScore),
		SeriousnessScore: scoreOrDefault(req.SeriousnessScore),
	}
	if prof != nil {
		if p.Name == "" {
			p.Name = prof.Name
		}
		if len(p.ExpertiseAreas) == 0 {
			p.ExpertiseAreas = prof.ExpertiseAreas
		}
		if p.Bio == "" {
			p.Bio = prof.Bio
		}
		p.Publications = prof.Publications
		p.Affiliations = prof.Affiliations
	}
	if p.Name == "" {
		p.Name = "Unknown"
	}

	if err := h.db.Create(&p).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"panelist": p, "profile_extraction": prof})
}

func (h Panelists) Get(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	var p types.Panelist
	if err := h.db.First(&p, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"err": "panelist not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"panelist": p})
}

func (h Panelists) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	var p types.Panelist
	if err := h.db.First(&p, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"err": "panelist not found"})
		return
	}

	var req struct {
		Name             *string   `json:"name" binding:"omitempty,max=200"`
		Email            *string   `json:"email" binding:"omitempty,email,max=200"`
		Bio              *string   `json:"bio" binding:"omitempty,max=5000"`
		ExpertiseAreas   *[]string `json:"expertise_areas"`
		CriticalScore    *float64  `json:"critical_score" binding:"omitempty,min=0,max=10"`
		OpennessScore    *float64  `json:"openness_score" binding:"omitempty,min=0,max=10"`
		SeriousnessScore *float64  `json:"seriousness_score" binding:"omitempty,min=0,max=10"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Bio != nil {
		updates["bio"] = h.sanitizer.Sanitize(*req.Bio)
	}
	if req.ExpertiseAreas != nil {
		updates["expertise_areas"] = types.StringList(*req.ExpertiseAreas)
	}
	if req.CriticalScore != nil {
		updates["critical_score"] = *req.CriticalScore
	}
	if req.OpennessScore != nil {
		updates["openness_score"] = *req.OpennessScore
	}
	if req.SeriousnessScore != nil {
		updates["seriousness_score"] = *req.SeriousnessScore
	}
	if len(updates) > 0 {
		if err := h.db.Model(&p).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"panelist": p})
}

func (h Panelists) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	var p types.Panelist
	if err := h.db.First(&p, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"err": "panelist not found"})
		return
	}
	// Reviews survive their author so past panel runs stay auditable.
	if err := h.db.Delete(&p).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (h Panelists) ExtractProfile(c *gin.Context) {
	var req struct {
		URL string `json:"url" binding:"required,url,max=500"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	prof := h.pipe.Extract(c.Request.Context(), req.URL)
	h.sanitizeProfile(prof)
	c.JSON(http.StatusOK, gin.H{"profile": prof})
}

// sanitizeProfile strips markup from every extracted free-text field
// before it reaches storage or a response body.
func (h Panelists) sanitizeProfile(p *extract.Profile) {
	if p == nil {
		return
	}
	p.Name = h.sanitizer.Sanitize(p.Name)
	p.Bio = h.sanitizer.Sanitize(p.Bio)
	for i, area := range p.ExpertiseAreas {
		p.ExpertiseAreas[i] = h.sanitizer.Sanitize(area)
	}
	for i, pub := range p.Publications {
		p.Publications[i].Title = h.sanitizer.Sanitize(pub.Title)
	}
	for i, aff := range p.Affiliations {
		p.Affiliations[i] = h.sanitizer.Sanitize(aff)
	}
}

func scoreOrDefault(v *float64) float64 {
	if v == nil {
		return 5.0
	}
	return *v
}
