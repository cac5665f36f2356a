package upload

import (
	"errors"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/apperr"
	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/logs"
	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/storage"
)

// ServeFile GET /api/files/:id
func ServeFile(blobs storage.BlobStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		id := c.Param("id")

		body, meta, err := blobs.Open(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, storage.ErrBlobNotFound) {
				apperr.Respond(c, apperr.New(apperr.FileNotFound))
				return
			}
			logs.LogJSON("ERROR", "File read error", map[string]interface{}{
				"error":  err.Error(),
				"route":  route,
				"fileID": id,
			})
			apperr.Respond(c, apperr.Wrap(apperr.FileNotFound, err))
			return
		}
		defer body.Close()

		contentType := meta.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		headers := map[string]string{
			"X-Content-Type-Options": "nosniff",
			"Cache-Control":          "private, max-age=3600",
		}
		if meta.Filename != "" {
			headers["Content-Disposition"] = mime.FormatMediaType("inline", map[string]string{"filename": meta.Filename})
		}

		size := meta.Size
		if size <= 0 {
			size = -1
		}
		c.DataFromReader(http.StatusOK, size, contentType, body, headers)
	}
}
