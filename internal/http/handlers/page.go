package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strings"

	"imagestudio/internal/domain"
	"imagestudio/internal/view"
)

//go:embed templates/*.html
var templateFS embed.FS

// refreshSeconds is the meta refresh interval of a loading page. The event
// stream reloads sooner when scripts are enabled.
const refreshSeconds = 3

type pageData struct {
	View    view.View
	Refresh int
}

func parseTemplates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"imageURL": imageURL,
	}).ParseFS(templateFS, "templates/*.html")
}

// imageURL marks a reference safe for an img src. Only inline images and
// http(s) URLs are accepted.
func imageURL(ref domain.ImageRef) template.URL {
	s := string(ref)
	switch {
	case strings.HasPrefix(s, "data:image/"),
		strings.HasPrefix(s, "https://"),
		strings.HasPrefix(s, "http://"):
		return template.URL(s)
	default:
		return ""
	}
}

func (a *App) renderPage(w http.ResponseWriter, r *http.Request, snap domain.Snapshot) {
	data := pageData{View: view.Derive(snap, a.copyFor(r))}
	if snap.State.IsLoading() {
		data.Refresh = refreshSeconds
	}

	var buf bytes.Buffer
	if err := a.tmpl.ExecuteTemplate(&buf, "index.html", data); err != nil {
		a.log(r).Error().Err(err).Msg("render page")
		http.Error(w, domain.UnknownErrorMessage, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
