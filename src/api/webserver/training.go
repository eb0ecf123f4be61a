package webserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/quorumlabs/peerpanel/src/review"
)

type Training struct {
	svc *review.Training
}

func NewTraining(svc *review.Training) Training {
	return Training{svc: svc}
}

func (h Training) Analysis(c *gin.Context) {
	analysis, err := h.svc.AnalyzeFeedbackPatterns()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"analysis": analysis})
}

func (h Training) Improvements(c *gin.Context) {
	suggestions, err := h.svc.SuggestImprovements()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	if suggestions == nil {
		suggestions = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"improvements": suggestions})
}

func (h Training) PanelistReport(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	performance, err := h.svc.PanelistPerformance(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"performance": performance})
}
