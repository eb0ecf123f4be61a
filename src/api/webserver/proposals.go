package webserver

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quorumlabs/peerpanel/src/api/types"
	"github.com/quorumlabs/peerpanel/src/parser"
)

const maxUploadBytes = 16 << 20

var allowedUploadExt = map[string]bool{
	".pdf": true,
	".txt": true,
	".md":  true,
}

type Proposals struct {
	db        *gorm.DB
	uploadDir string
}

func NewProposals(db *gorm.DB, uploadDir string) Proposals {
	return Proposals{db: db, uploadDir: uploadDir}
}

func (h Proposals) List(c *gin.Context) {
	var proposals []types.Proposal
	if err := h.db.Order("created_at desc").Find(&proposals).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"proposals": proposals})
}

func (h Proposals) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "no file provided"})
		return
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedUploadExt[ext] {
		c.JSON(http.StatusBadRequest, gin.H{"err": "unsupported file type, expected pdf, txt or md"})
		return
	}
	if file.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"err": "file exceeds 16MB limit"})
		return
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	// Prefix with a UUID so repeated uploads of the same file never collide.
	stored := uuid.NewString() + "_" + filepath.Base(file.Filename)
	path := filepath.Join(h.uploadDir, stored)
	if err := c.SaveUploadedFile(file, path); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}

	parsed, err := parser.Parse(path)
	if err != nil {
		_ = os.Remove(path)
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	p := types.Proposal{
		Title:    parsed.Title,
		Content:  parsed.Content,
		Abstract: parsed.Abstract,
		Filename: file.Filename,
		FilePath: path,
		Status:   types.StatusPending,
	}
	if err := h.db.Create(&p).Error; err != nil {
		_ = os.Remove(path)
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"proposal": p})
}

func (h Proposals) Get(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	var p types.Proposal
	if err := h.db.First(&p, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"err": "proposal not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"proposal": p})
}

func (h Proposals) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	var p types.Proposal
	if err := h.db.First(&p, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"err": "proposal not found"})
		return
	}
	if p.FilePath != "" {
		if err := os.Remove(p.FilePath); err != nil && !os.IsNotExist(err) {
			log.Printf("proposal %d: remove %s: %v", p.ID, p.FilePath, err)
		}
	}
	if err := h.db.Delete(&p).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}
