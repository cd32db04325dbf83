package controllers

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/freelance-platform/marketplace-api/utils"
	"github.com/gin-gonic/gin"
)

// UploadController serves avatars stored on local disk
type UploadController struct {
	dir string
}

// NewUploadController creates an UploadController serving files from dir
func NewUploadController(dir string) *UploadController {
	return &UploadController{dir: dir}
}

// GetUploadedImage handles GET /api/uploads/:filename - serves uploaded PNG and JPEG images
func (uc *UploadController) GetUploadedImage(c *gin.Context) {
	filename := c.Param("filename")

	// Security: Prevent directory traversal attacks
	if !utils.IsSafeFilename(filename) {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid filename",
			"code":    "INVALID_FILENAME",
		})
		return
	}

	contentType := utils.ContentTypeForFile(filename)
	if contentType == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Only PNG and JPEG files are supported",
			"code":    "INVALID_FILE_TYPE",
		})
		return
	}

	filePath := filepath.Join(uc.dir, filename)
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		c.JSON(http.StatusNotFound, gin.H{
			"message": "Image not found",
			"code":    "FILE_NOT_FOUND",
		})
		return
	}

	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "public, max-age=86400") // Cache for 24 hours
	c.File(filePath)
}
