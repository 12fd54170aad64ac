// Package web serves the operator HTML surface.
//
// Pages are classic server-rendered forms: GET renders, POST mutates the
// store and redirects with a flash message. Templates are embedded so the
// binary is self-contained.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/applight/applight-core/internal/automation"
	"github.com/applight/applight-core/internal/infrastructure/logging"
	"github.com/applight/applight-core/internal/light"
	"github.com/applight/applight-core/internal/scene"
	"github.com/applight/applight-core/internal/sensor"
)

//go:embed templates/*.html
var templatesFS embed.FS

// pages lists every content template rendered inside the layout.
var pages = []string{
	"dashboard.html",
	"sensors.html",
	"sensor_detail.html",
	"lights.html",
	"light_detail.html",
	"scenarios.html",
	"scenario_add.html",
	"automations.html",
	"automation_add.html",
}

// Deps holds the dependencies required by the web handler.
type Deps struct {
	Logger      *logging.Logger
	Sensors     sensor.Repository
	Lights      light.Repository
	Scenarios   scene.Repository
	Automations automation.Repository
}

// Handler renders the HTML dashboard and CRUD pages.
type Handler struct {
	logger      *logging.Logger
	sensors     sensor.Repository
	lights      light.Repository
	scenarios   scene.Repository
	automations automation.Repository
	templates   map[string]*template.Template
	router      chi.Router
}

// New creates the web handler and parses all embedded templates.
func New(deps Deps) (*Handler, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Sensors == nil || deps.Lights == nil || deps.Scenarios == nil || deps.Automations == nil {
		return nil, fmt.Errorf("all repositories are required")
	}

	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		tmpl, err := template.ParseFS(templatesFS, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}
		templates[page] = tmpl
	}

	h := &Handler{
		logger:      deps.Logger,
		sensors:     deps.Sensors,
		lights:      deps.Lights,
		scenarios:   deps.Scenarios,
		automations: deps.Automations,
		templates:   templates,
	}
	h.router = h.buildRouter()

	return h, nil
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// buildRouter wires the page routes.
func (h *Handler) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	})

	r.Get("/dashboard", h.handleDashboard)

	r.Get("/sensors", h.handleSensorsList)
	r.Get("/sensors/{id}", h.handleSensorDetail)
	r.Post("/sensors/{id}", h.handleSensorUpdate)

	r.Get("/lights", h.handleLightsList)
	r.Get("/lights/{id}", h.handleLightDetail)
	r.Post("/lights/{id}", h.handleLightUpdate)

	r.Get("/scenarios", h.handleScenariosList)
	r.Get("/scenarios/add", h.handleScenarioAddForm)
	r.Post("/scenarios/add", h.handleScenarioAdd)

	r.Get("/automations", h.handleAutomationsList)
	r.Get("/automations/add", h.handleAutomationAddForm)
	r.Post("/automations/add", h.handleAutomationAdd)

	return r
}

// pageData is passed to every template.
type pageData struct {
	Title string
	Flash string
	Data  any
}

// render executes a page template inside the layout, consuming any pending
// flash message.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, page, title string, data any) {
	tmpl, ok := h.templates[page]
	if !ok {
		h.logger.Error("unknown template", "page", page)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pd := pageData{
		Title: title,
		Flash: popFlash(w, r),
		Data:  data,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "layout.html", pd); err != nil {
		h.logger.Error("template execution failed", "page", page, "error", err)
	}
}

// flashCookie is the short-lived cookie carrying a one-shot flash message.
const flashCookie = "applight_flash"

// setFlash stores a flash message shown on the next rendered page.
func setFlash(w http.ResponseWriter, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(message),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
	})
}

// popFlash reads and clears the pending flash message, if any.
func popFlash(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return ""
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	message, err := url.QueryUnescape(c.Value)
	if err != nil {
		return ""
	}
	return message
}
