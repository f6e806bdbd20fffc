// Package static serves the bundled single page app and answers unknown routes.
package static

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/patient-registry/pkg/httputil"
)

const statusPage = `<!DOCTYPE html>
<html>
<head><title>Patient Registry API</title></head>
<body>
<h1>Patient Registry API</h1>
<p>The API is running. No frontend bundle is installed.</p>
<p>Health: <a href="/health">/health</a></p>
</body>
</html>`

type Handler struct {
	dir string
}

// NewHandler serves files from dir. An empty dir serves only the status page.
func NewHandler(dir string) *Handler {
	return &Handler{dir: dir}
}

// NoRoute answers /api paths with a 404 envelope. Other GET and HEAD
// requests get the matching bundle file, index.html for client side routes,
// or the inline status page when no bundle is installed.
func (h *Handler) NoRoute(c *gin.Context) {
	p := c.Request.URL.Path
	if p == "/api" || strings.HasPrefix(p, "/api/") ||
		(c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) {
		c.JSON(http.StatusNotFound, httputil.Response{
			Success: false,
			Message: "Route not found",
		})
		return
	}

	if h.dir != "" {
		if file, ok := h.lookup(p); ok {
			c.File(file)
			return
		}
		if index, ok := h.lookup("/index.html"); ok {
			c.File(index)
			return
		}
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(statusPage))
}

// lookup resolves an URL path to a regular file inside dir.
func (h *Handler) lookup(urlPath string) (string, bool) {
	clean := path.Clean("/" + urlPath)
	if clean == "/" {
		return "", false
	}
	full := filepath.Join(h.dir, filepath.FromSlash(clean))
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		return "", false
	}
	return full, true
}
