package webserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"github.com/quorumlabs/peerpanel/src/review"
)

type Reviews struct {
	svc       *review.Service
	sanitizer *bluemonday.Policy
}

func NewReviews(svc *review.Service) Reviews {
	return Reviews{svc: svc, sanitizer: bluemonday.StrictPolicy()}
}

func (h Reviews) Generate(c *gin.Context) {
	var req struct {
		PanelistID uint64 `json:"panelist_id" binding:"required"`
		ProposalID uint64 `json:"proposal_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	rec, err := h.svc.GenerateReview(c.Request.Context(), req.PanelistID, req.ProposalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"err": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"review": rec})
}

func (h Reviews) Panel(c *gin.Context) {
	var req struct {
		ProposalID  uint64   `json:"proposal_id" binding:"required"`
		PanelistIDs []uint64 `json:"panelist_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	result, err := h.svc.GeneratePanelReview(c.Request.Context(), req.ProposalID, req.PanelistIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"reviews":   result.Reviews,
		"count":     len(result.Reviews),
		"requested": result.Requested,
	})
}

func (h Reviews) ProposalSummary(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	summary, err := h.svc.Summarize(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

func (h Reviews) Feedback(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	var req struct {
		Rating   float64 `json:"rating" binding:"required,min=1,max=5"`
		Feedback string  `json:"feedback" binding:"max=10000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	rec, err := h.svc.SubmitFeedback(id, req.Rating, h.sanitizer.Sanitize(req.Feedback))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"err": "review not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"review": rec})
}
