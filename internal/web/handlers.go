package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/applight/applight-core/internal/automation"
	"github.com/applight/applight-core/internal/light"
	"github.com/applight/applight-core/internal/scene"
	"github.com/applight/applight-core/internal/sensor"
)

// dashboardData aggregates every entity list for the landing page.
type dashboardData struct {
	Sensors     []sensor.Sensor
	Lights      []light.Light
	Scenarios   []scene.Scenario
	Automations []automation.Automation
}

// handleDashboard renders the overview page.
func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		data dashboardData
		err  error
	)
	if data.Sensors, err = h.sensors.List(ctx); err != nil {
		h.renderError(w, "failed to load sensors", err)
		return
	}
	if data.Lights, err = h.lights.List(ctx); err != nil {
		h.renderError(w, "failed to load lights", err)
		return
	}
	if data.Scenarios, err = h.scenarios.List(ctx); err != nil {
		h.renderError(w, "failed to load scenarios", err)
		return
	}
	if data.Automations, err = h.automations.List(ctx); err != nil {
		h.renderError(w, "failed to load automations", err)
		return
	}

	h.render(w, r, "dashboard.html", "Dashboard", data)
}

// handleSensorsList renders the sensors table.
func (h *Handler) handleSensorsList(w http.ResponseWriter, r *http.Request) {
	sensors, err := h.sensors.List(r.Context())
	if err != nil {
		h.renderError(w, "failed to load sensors", err)
		return
	}
	h.render(w, r, "sensors.html", "Sensors", sensors)
}

// handleSensorDetail renders the sensor edit form.
func (h *Handler) handleSensorDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	sns, err := h.sensors.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sensor.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.renderError(w, "failed to load sensor", err)
		return
	}

	h.render(w, r, "sensor_detail.html", "Sensor", sns)
}

// handleSensorUpdate applies the posted form to a sensor.
// Omitted fields keep their prior values.
func (h *Handler) handleSensorUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	sns, err := h.sensors.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sensor.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.renderError(w, "failed to load sensor", err)
		return
	}

	if err := r.ParseForm(); err != nil {
		setFlash(w, "Invalid form data")
		http.Redirect(w, r, r.URL.Path, http.StatusSeeOther)
		return
	}

	if v, ok := formString(r, "sensor_type"); ok {
		sns.SensorType = v
	}
	if v, ok := formString(r, "model"); ok {
		sns.Model = &v
	}
	if v, ok := formString(r, "location"); ok {
		sns.Location = &v
	}
	if raw, ok := formString(r, "last_value"); ok {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			setFlash(w, "Last value must be a number")
			http.Redirect(w, r, r.URL.Path, http.StatusSeeOther)
			return
		}
		sns.LastValue = &v
	}
	if raw, ok := formString(r, "calibration_value"); ok {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			setFlash(w, "Calibration value must be a number")
			http.Redirect(w, r, r.URL.Path, http.StatusSeeOther)
			return
		}
		sns.CalibrationValue = v
	}

	if err := h.sensors.Update(ctx, sns); err != nil {
		h.renderError(w, "failed to update sensor", err)
		return
	}

	setFlash(w, "Sensor updated successfully!")
	http.Redirect(w, r, "/sensors", http.StatusSeeOther)
}

// handleLightsList renders the lights table.
func (h *Handler) handleLightsList(w http.ResponseWriter, r *http.Request) {
	lights, err := h.lights.List(r.Context())
	if err != nil {
		h.renderError(w, "failed to load lights", err)
		return
	}
	h.render(w, r, "lights.html", "Lights", lights)
}

// handleLightDetail renders the light edit form.
func (h *Handler) handleLightDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	lt, err := h.lights.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, light.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.renderError(w, "failed to load light", err)
		return
	}

	h.render(w, r, "light_detail.html", "Light", lt)
}

// handleLightUpdate applies the posted form to a light.
// The state checkbox is on iff submitted as "on"; an absent checkbox means
// off, matching how browsers submit unchecked boxes. Other omitted fields
// keep their prior values.
func (h *Handler) handleLightUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	lt, err := h.lights.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, light.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.renderError(w, "failed to load light", err)
		return
	}

	if err := r.ParseForm(); err != nil {
		setFlash(w, "Invalid form data")
		http.Redirect(w, r, r.URL.Path, http.StatusSeeOther)
		return
	}

	lt.State = r.PostForm.Get("state") == "on"
	if raw, ok := formString(r, "brightness"); ok {
		v, err := strconv.Atoi(raw)
		if err != nil {
			setFlash(w, "Brightness must be a number")
			http.Redirect(w, r, r.URL.Path, http.StatusSeeOther)
			return
		}
		lt.Brightness = v
	}
	if v, ok := formString(r, "color"); ok {
		lt.Color = &v
	}
	if v, ok := formString(r, "name"); ok {
		lt.Name = v
	}

	if err := h.lights.Update(ctx, lt); err != nil {
		h.renderError(w, "failed to update light", err)
		return
	}

	setFlash(w, "Light updated successfully!")
	http.Redirect(w, r, "/lights", http.StatusSeeOther)
}

// handleScenariosList renders the scenarios table.
func (h *Handler) handleScenariosList(w http.ResponseWriter, r *http.Request) {
	scenarios, err := h.scenarios.List(r.Context())
	if err != nil {
		h.renderError(w, "failed to load scenarios", err)
		return
	}
	h.render(w, r, "scenarios.html", "Scenarios", scenarios)
}

// handleScenarioAddForm renders the empty scenario form.
func (h *Handler) handleScenarioAddForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "scenario_add.html", "Add Scenario", nil)
}

// handleScenarioAdd creates a scenario from the posted form.
func (h *Handler) handleScenarioAdd(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		setFlash(w, "Invalid form data")
		http.Redirect(w, r, "/scenarios/add", http.StatusSeeOther)
		return
	}

	sc := &scene.Scenario{Name: r.PostForm.Get("name")}
	if v, ok := formString(r, "settings"); ok && v != "" {
		sc.Settings = &v
	}

	if err := h.scenarios.Create(r.Context(), sc); err != nil {
		if errors.Is(err, scene.ErrInvalidName) {
			setFlash(w, "Name is required")
			http.Redirect(w, r, "/scenarios/add", http.StatusSeeOther)
			return
		}
		h.renderError(w, "failed to create scenario", err)
		return
	}

	setFlash(w, "Scenario added successfully!")
	http.Redirect(w, r, "/scenarios", http.StatusSeeOther)
}

// handleAutomationsList renders the automations table.
func (h *Handler) handleAutomationsList(w http.ResponseWriter, r *http.Request) {
	automations, err := h.automations.List(r.Context())
	if err != nil {
		h.renderError(w, "failed to load automations", err)
		return
	}
	h.render(w, r, "automations.html", "Automations", automations)
}

// handleAutomationAddForm renders the empty automation form.
func (h *Handler) handleAutomationAddForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "automation_add.html", "Add Automation", nil)
}

// handleAutomationAdd creates an automation from the posted form.
// The scheduled_time field is optional; when set it drives the poller.
func (h *Handler) handleAutomationAdd(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		setFlash(w, "Invalid form data")
		http.Redirect(w, r, "/automations/add", http.StatusSeeOther)
		return
	}

	a := &automation.Automation{
		Active: r.PostForm.Get("active") == "on",
	}
	if v, ok := formString(r, "trigger"); ok && v != "" {
		a.Trigger = &v
	}
	if v, ok := formString(r, "action"); ok && v != "" {
		a.Action = &v
	}
	if raw, ok := formString(r, "scheduled_time"); ok && raw != "" {
		t, err := automation.ParseTimeOfDay(raw)
		if err != nil {
			setFlash(w, "Scheduled time must be HH:MM")
			http.Redirect(w, r, "/automations/add", http.StatusSeeOther)
			return
		}
		a.ScheduledTime = &t
	}

	if err := h.automations.Create(r.Context(), a); err != nil {
		h.renderError(w, "failed to create automation", err)
		return
	}

	setFlash(w, "Automation added successfully!")
	http.Redirect(w, r, "/automations", http.StatusSeeOther)
}

// renderError logs the failure and returns a plain 500 page.
func (h *Handler) renderError(w http.ResponseWriter, message string, err error) {
	h.logger.Error(message, "error", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// pathID parses the {id} URL parameter.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return 0, false
	}
	return id, true
}

// formString returns a form value and whether the field was submitted at all.
// The distinction drives fallback-to-existing update semantics.
func formString(r *http.Request, name string) (string, bool) {
	if !r.PostForm.Has(name) {
		return "", false
	}
	return r.PostForm.Get(name), true
}
