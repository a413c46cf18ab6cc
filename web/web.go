// Package web renders the HTML pages: the public checklist form reached from
// a device's QR code and the admin dashboard.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"net/url"
	"time"

	"inspectlog/auth"
	"inspectlog/deviceqr"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

var pageFiles = []string{
	"home.html",
	"login.html",
	"log_form.html",
	"admin.html",
	"admin_logs.html",
}

// Pages holds the parsed templates and the services the pages call into.
type Pages struct {
	db    *sqlx.DB
	auth  *auth.Manager
	qr    *deviceqr.Service
	pages map[string]*template.Template
	now   func() time.Time
}

// New parses every page against the shared layout.
func New(db *sqlx.DB, m *auth.Manager, qr *deviceqr.Service) (*Pages, error) {
	funcs := template.FuncMap{
		// QR images are stored as PNG data URIs, which html/template
		// would otherwise replace in src attributes.
		"qrSrc": func(s string) template.URL { return template.URL(s) },
	}
	p := &Pages{db: db, auth: m, qr: qr, pages: make(map[string]*template.Template), now: time.Now}
	for _, name := range pageFiles {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templatesFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		p.pages[name] = t
	}
	return p, nil
}

// StaticHandler serves the embedded stylesheet under /static/.
func StaticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		log.Fatalf("embedded static directory missing: %v", err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}

// Register adds the page routes to r.
func (p *Pages) Register(r *mux.Router) {
	r.HandleFunc("/", p.home).Methods(http.MethodGet)
	r.HandleFunc("/login", p.loginPage).Methods(http.MethodGet)
	r.HandleFunc("/login", p.loginSubmit).Methods(http.MethodPost)
	r.HandleFunc("/logout", p.logout).Methods(http.MethodPost)
	r.HandleFunc("/log/{deviceId}", p.logForm).Methods(http.MethodGet)
	r.HandleFunc("/log/{deviceId}", p.logSubmit).Methods(http.MethodPost)
	r.HandleFunc("/admin", p.admin).Methods(http.MethodGet)
	r.HandleFunc("/admin/devices", p.issueQR).Methods(http.MethodPost)
	r.HandleFunc("/admin/devices/delete", p.deleteDevice).Methods(http.MethodPost)
	r.HandleFunc("/admin/logs/{deviceId}", p.adminLogs).Methods(http.MethodGet)
	r.HandleFunc("/admin/logs/{deviceId}/edit/{logId}", p.editLog).Methods(http.MethodPost)
	r.HandleFunc("/admin/logs/{deviceId}/delete/{logId}", p.deleteLog).Methods(http.MethodPost)
}

// pageData is embedded in every page's data so the layout can read it.
type pageData struct {
	Session auth.Session
	Error   string
	Notice  string
}

func newPageData(r *http.Request) pageData {
	return pageData{
		Session: auth.FromContext(r.Context()),
		Notice:  r.URL.Query().Get("notice"),
	}
}

func (p *Pages) render(w http.ResponseWriter, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := p.pages[name].ExecuteTemplate(&buf, "layout.html", data); err != nil {
		log.Printf("Error executing template %s: %v", name, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func redirectWithNotice(w http.ResponseWriter, r *http.Request, target, notice string) {
	if notice != "" {
		target += "?notice=" + url.QueryEscape(notice)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (p *Pages) home(w http.ResponseWriter, r *http.Request) {
	p.render(w, http.StatusOK, "home.html", newPageData(r))
}
