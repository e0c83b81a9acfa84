package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/handyhub-dev/handyhub-api/services"
	"github.com/handyhub-dev/handyhub-api/utils"
)

// UploadFile handles POST /api/upload - multipart file upload to the media
// host, returning the URL the client stores on its profile or application
func UploadFile(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No file uploaded"})
		return
	}

	media := services.GetMediaService()
	if media == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "File storage is not configured"})
		return
	}

	key, err := media.UploadFile(fileHeader)
	if err != nil {
		var uploadErr *utils.FileUploadError
		if errors.As(err, &uploadErr) {
			c.JSON(http.StatusBadRequest, gin.H{"message": uploadErr.Message})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to upload file"})
		return
	}

	url, err := media.GetFileURL(key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to upload file"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url, "key": key})
}
