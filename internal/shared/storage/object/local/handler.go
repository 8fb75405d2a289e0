package local

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"glucowizard-backend/internal/shared/server/respond"
	"glucowizard-backend/internal/shared/telemetry"
)

// Handler serves signed downloads for the local store.
type Handler struct {
	Store *Store
}

// RegisterRoutes mounts the download route on the given group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/files/*key", h.download)
}

func (h *Handler) download(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	token := c.Query("token")
	if token == "" {
		respond.Error(c, http.StatusUnauthorized, respond.CodeUnauthorized, "missing download token", nil)
		return
	}
	if err := h.Store.VerifyToken(token, key); err != nil {
		respond.Error(c, http.StatusForbidden, respond.CodeForbidden, "invalid or expired download link", nil)
		return
	}

	rc, err := h.Store.Open(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "file not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to open file", nil)
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", `inline; filename="`+path.Base(key)+`"`)
	c.Header("Cache-Control", "private, max-age=0")
	c.Header("Content-Type", h.Store.ContentType(key))
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		telemetry.Error("files.download_failed", map[string]any{
			"request_id": c.GetString("requestId"),
			"err":        err,
		})
	}
}
