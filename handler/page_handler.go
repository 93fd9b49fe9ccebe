package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go-deposit-api/common"
)

// PageHandler serves the landing page and the public asset directory.
type PageHandler struct {
	index       *template.Template
	public      fs.FS
	destination string
}

func NewPageHandler(templateDir, publicDir, destination string) (*PageHandler, error) {
	index, err := template.ParseFiles(filepath.Join(templateDir, "index.html"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse index template: %w", err)
	}
	return &PageHandler{
		index:       index,
		public:      os.DirFS(publicDir),
		destination: destination,
	}, nil
}

func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) *common.AppError {
	var buf bytes.Buffer
	data := struct{ Destination string }{Destination: h.destination}
	if err := h.index.Execute(&buf, data); err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Could not render page", err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
	return nil
}

// Static serves a regular file from the public directory. Directories and
// missing files are 404.
func (h *PageHandler) Static(w http.ResponseWriter, r *http.Request) *common.AppError {
	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if name == "" || !fs.ValidPath(name) {
		return common.NewAppError(http.StatusNotFound, "Not Found", nil)
	}

	info, err := fs.Stat(h.public, name)
	if err != nil || info.IsDir() {
		return common.NewAppError(http.StatusNotFound, "Not Found", nil)
	}

	http.ServeFileFS(w, r, h.public, name)
	return nil
}
