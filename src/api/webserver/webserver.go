// Package webserver exposes the panel review system over HTTP.
package webserver

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	aicore "github.com/quorumlabs/peerpanel/src/ai/core"
	"github.com/quorumlabs/peerpanel/src/api/config"
	"github.com/quorumlabs/peerpanel/src/extract"
	"github.com/quorumlabs/peerpanel/src/review"
)

func New(cfg config.Config, db *gorm.DB, rdb *redis.Client, client aicore.Client, pipe *extract.Pipeline) *gin.Engine {
	g := gin.New()
	g.Use(gin.Logger(), gin.Recovery())
	attachRoutes(g, cfg, db, rdb, client, pipe)
	return g
}

func attachRoutes(r *gin.Engine, cfg config.Config, db *gorm.DB, rdb *redis.Client, client aicore.Client, pipe *extract.Pipeline) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
	}))

	panelistH := NewPanelists(db, pipe)
	proposalH := NewProposals(db, cfg.UploadDir)
	reviewH := NewReviews(review.NewService(db, rdb, client))
	trainingH := NewTraining(review.NewTraining(db))

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "healthy", "ai_provider": cfg.AI.Provider})
		})
		api.POST("/extract-profile", panelistH.ExtractProfile)

		api.GET("/panelists", panelistH.List)
		api.POST("/panelists", panelistH.Create)
		api.GET("/panelists/:id", panelistH.Get)
		api.PUT("/panelists/:id", panelistH.Update)
		api.DELETE("/panelists/:id", panelistH.Delete)

		api.GET("/proposals", proposalH.List)
		api.POST("/proposals/upload", proposalH.Upload)
		api.GET("/proposals/:id", proposalH.Get)
		api.DELETE("/proposals/:id", proposalH.Delete)

		api.POST("/reviews/generate", reviewH.Generate)
		api.POST("/reviews/panel", reviewH.Panel)
		api.GET("/reviews/proposal/:id", reviewH.ProposalSummary)
		api.POST("/reviews/:id/feedback", reviewH.Feedback)

		api.GET("/training/analysis", trainingH.Analysis)
		api.GET("/training/improvements", trainingH.Improvements)
		api.GET("/training/panelists/:id", trainingH.PanelistReport)
	}
}
