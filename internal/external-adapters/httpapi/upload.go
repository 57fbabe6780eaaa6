package httpapi

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// uploadTimeLayout renders UTC timestamps like 2025-01-15T10-30-00-000Z once ':' and '.' are replaced
const uploadTimeLayout = "2006-01-02T15:04:05.000"

var uploadNameReplacer = strings.NewReplacer(":", "-", ".", "-")

// UploadIPA stores a manually uploaded iOS package for the next scan run
func UploadIPA(uploadDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		l := zap.L().With(zap.String("endpoint", "UploadIPA"))

		if err := os.MkdirAll(uploadDir, 0750); err != nil {
			l.Error("failed to create upload directory", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
			return
		}

		header, err := c.FormFile("file")
		if err != nil {
			if !errors.Is(err, http.ErrMissingFile) {
				l.Warn("invalid upload form", zap.Error(err))
			}
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "No file provided"})
			return
		}

		name := filepath.Base(header.Filename)
		l.Debug("received upload", zap.String("name", name), zap.Int64("size", header.Size))

		if !strings.HasSuffix(strings.ToLower(name), ".ipa") {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "Invalid file type. Only IPA files are allowed.",
			})
			return
		}

		stamp := uploadNameReplacer.Replace(time.Now().UTC().Format(uploadTimeLayout)) + "Z"
		filename := stamp + "_" + name

		if err := c.SaveUploadedFile(header, filepath.Join(uploadDir, filename)); err != nil {
			l.Error("failed to save upload", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
			return
		}

		l.Info("file saved", zap.String("filename", filename))
		c.JSON(http.StatusOK, gin.H{"success": true, "filename": filename})
	}
}
