package httpapi

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ServeFile returns a stored report or icon
func ServeFile(files FileResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		rel := c.Param("path")

		path, err := files.ResolveFile(rel)
		if err != nil {
			zap.L().Warn("rejected file request", zap.String("path", rel), zap.Error(err))
			writeError(c, http.StatusNotFound, "File not found")
			return
		}

		//nolint:gosec // G304: path is confined to the reports directory by ResolveFile
		data, err := os.ReadFile(path)
		if err != nil {
			writeError(c, http.StatusNotFound, "File not found")
			return
		}

		c.Data(http.StatusOK, contentType(path), data)
	}
}

func contentType(path string) string {
	switch {
	case strings.HasSuffix(path, ".pdf"):
		return "application/pdf"
	case strings.HasSuffix(path, ".png"):
		return "image/png"
	default:
		return "application/octet-stream"
	}
}
