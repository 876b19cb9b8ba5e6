package web

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/knelavan/skilltime/internal/config"
	"github.com/knelavan/skilltime/internal/errors"
	"github.com/knelavan/skilltime/internal/mirror"
	"github.com/knelavan/skilltime/internal/ops"
	"github.com/knelavan/skilltime/internal/store"
	"github.com/knelavan/skilltime/internal/vault"
)

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	st       *store.Store
	cfg      *config.Config
	mirror   *mirror.Service
	renderer *Renderer
}

// requireUser loads the current session user, redirecting to the login
// page when nobody is logged in. Returns nil when a redirect was issued.
func (h *Handlers) requireUser(w http.ResponseWriter, r *http.Request) *vault.User {
	user, err := ops.CurrentUser(h.st)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return nil
	}
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return nil
	}
	return user
}

// HandleLoginPage handles GET /login — the name prompt.
func (h *Handlers) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	user, err := ops.CurrentUser(h.st)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	if user != nil {
		http.Redirect(w, r, "/vault", http.StatusFound)
		return
	}

	h.renderer.renderPage(w, "login", LoginPageData{
		PageData: PageData{Title: "Welcome", Version: h.renderer.version},
	})
}

// HandleLogin handles POST /login — create the local session.
func (h *Handlers) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	_, err := ops.Login(h.st, ops.LoginInput{Name: r.FormValue("name")})
	if err != nil {
		h.renderer.renderPageStatus(w, http.StatusBadRequest, "login", LoginPageData{
			PageData: PageData{Title: "Welcome", Version: h.renderer.version},
			Error:    errorMessage(err),
		})
		return
	}

	http.Redirect(w, r, "/vault", http.StatusFound)
}

// HandleLogout handles POST /logout.
func (h *Handlers) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if _, err := ops.Logout(h.st); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

// HandleDashboard handles GET /vault — the capsule overview.
func (h *Handlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	user := h.requireUser(w, r)
	if user == nil {
		return
	}

	result, err := ops.List(h.st, ops.ListInput{})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, "dashboard", DashboardPageData{
		PageData: PageData{
			Title:   "Your Vault",
			Version: h.renderer.version,
			Nav:     "vault",
			User:    user,
		},
		Items: result.Items,
		Total: result.Total,
	})
}

// HandleSealPage handles GET /vault/seal — the seal form.
func (h *Handlers) HandleSealPage(w http.ResponseWriter, r *http.Request) {
	user := h.requireUser(w, r)
	if user == nil {
		return
	}
	h.renderSealForm(w, user, "", http.StatusOK)
}

// HandleSeal handles POST /vault/seal — create a new capsule.
func (h *Handlers) HandleSeal(w http.ResponseWriter, r *http.Request) {
	user := h.requireUser(w, r)
	if user == nil {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	months, _ := strconv.Atoi(r.FormValue("duration_months"))
	_, err := ops.Seal(h.st, ops.SealInput{
		SkillID:         r.FormValue("skill_id"),
		Content:         r.FormValue("content"),
		MessageToFuture: r.FormValue("message_to_future"),
		DurationMonths:  months,
	})
	if err != nil {
		h.renderSealForm(w, user, errorMessage(err), http.StatusBadRequest)
		return
	}

	http.Redirect(w, r, "/vault", http.StatusFound)
}

// renderSealForm renders the seal page, optionally with a form error.
func (h *Handlers) renderSealForm(w http.ResponseWriter, user *vault.User, formErr string, status int) {
	skills, err := ops.ListSkills(h.st)
	if err != nil {
		h.renderer.renderPageStatus(w, http.StatusInternalServerError, "error", ErrorPageData{
			PageData:   PageData{Title: "Error", Version: h.renderer.version},
			StatusCode: http.StatusInternalServerError,
			Message:    err.Error(),
		})
		return
	}

	h.renderer.renderPageStatus(w, status, "seal", SealPageData{
		PageData: PageData{
			Title:   "Seal a Capsule",
			Version: h.renderer.version,
			Nav:     "seal",
			User:    user,
		},
		Skills:    skills.Items,
		Durations: vault.SupportedDurations,
		Error:     formErr,
	})
}

// HandleMirror handles GET /vault/{id} — view one capsule.
func (h *Handlers) HandleMirror(w http.ResponseWriter, r *http.Request) {
	user := h.requireUser(w, r)
	if user == nil {
		return
	}

	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("capsule ID is required"))
		return
	}

	capsule, err := ops.Fetch(h.st, ops.FetchInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, "mirror", MirrorPageData{
		PageData: PageData{
			Title:   capsule.SkillName,
			Version: h.renderer.version,
			Nav:     "vault",
			User:    user,
		},
		Capsule: capsule.CapsuleView,
	})
}

// HandleUnlock handles POST /vault/{id}/unlock.
func (h *Handlers) HandleUnlock(w http.ResponseWriter, r *http.Request) {
	user := h.requireUser(w, r)
	if user == nil {
		return
	}

	id := r.PathValue("id")
	if _, err := ops.Unlock(h.st, ops.UnlockInput{ID: id}); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, "/vault/"+id, http.StatusFound)
}

// HandleReflect handles POST /vault/{id}/reflect — run the growth mirror.
func (h *Handlers) HandleReflect(w http.ResponseWriter, r *http.Request) {
	user := h.requireUser(w, r)
	if user == nil {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	id := r.PathValue("id")

	// Reflecting reads the sealed snapshot, so the capsule is opened
	// first. Unlock is a no-op on an already-opened capsule and carries
	// the lock error for a sealed one.
	if _, err := ops.Unlock(h.st, ops.UnlockInput{ID: id}); err != nil {
		h.renderMirrorError(w, r, user, id, err)
		return
	}

	result, err := ops.Reflect(r.Context(), h.st, h.mirror, ops.ReflectInput{
		ID:             id,
		PresentContent: r.FormValue("present_content"),
	})
	if err != nil {
		h.renderMirrorError(w, r, user, id, err)
		return
	}

	capsule, err := ops.Fetch(h.st, ops.FetchInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, "mirror", MirrorPageData{
		PageData: PageData{
			Title:   capsule.SkillName,
			Version: h.renderer.version,
			Nav:     "vault",
			User:    user,
		},
		Capsule:       capsule.CapsuleView,
		NarrativeHTML: renderMarkdown(result.Narrative),
	})
}

// renderMirrorError re-renders the capsule page with the error inline.
// Validation and lock errors keep the user on the page they acted on.
func (h *Handlers) renderMirrorError(w http.ResponseWriter, r *http.Request, user *vault.User, id string, err error) {
	capsule, fetchErr := ops.Fetch(h.st, ops.FetchInput{ID: id})
	if fetchErr != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.renderer.renderPageStatus(w, errorStatus(err), "mirror", MirrorPageData{
		PageData: PageData{
			Title:   capsule.SkillName,
			Version: h.renderer.version,
			Nav:     "vault",
			User:    user,
		},
		Capsule: capsule.CapsuleView,
		Error:   errorMessage(err),
	})
}

// HandleSettings handles GET /settings.
func (h *Handlers) HandleSettings(w http.ResponseWriter, r *http.Request) {
	user := h.requireUser(w, r)
	if user == nil {
		return
	}
	h.renderSettings(w, user, settingsView{}, http.StatusOK)
}

// HandleCreatorKey handles POST /settings/creator — verify the creator
// key and show the creator panel. The key unlocks extra controls in the
// UI only; nothing in the data layer depends on it.
func (h *Handlers) HandleCreatorKey(w http.ResponseWriter, r *http.Request) {
	user := h.requireUser(w, r)
	if user == nil {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	key := r.FormValue("creator_key")
	view := settingsView{}
	if ops.VerifyCreatorKey(h.cfg, key) {
		view.creator = true
		view.creatorKey = key
	} else {
		view.errMsg = "That key doesn't match."
	}
	h.renderSettings(w, user, view, http.StatusOK)
}

// HandleAddSkill handles POST /settings/skills — add a custom skill.
func (h *Handlers) HandleAddSkill(w http.ResponseWriter, r *http.Request) {
	user := h.requireUser(w, r)
	if user == nil {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	view := settingsView{
		creator:    ops.VerifyCreatorKey(h.cfg, r.FormValue("creator_key")),
		creatorKey: r.FormValue("creator_key"),
	}

	result, err := ops.AddSkill(h.st, ops.AddSkillInput{
		Name:     r.FormValue("name"),
		Category: r.FormValue("category"),
		Icon:     r.FormValue("icon"),
		Color:    r.FormValue("color"),
	})
	if err != nil {
		view.errMsg = errorMessage(err)
		h.renderSettings(w, user, view, http.StatusBadRequest)
		return
	}

	view.message = "Added skill \"" + result.Skill.Name + "\"."
	h.renderSettings(w, user, view, http.StatusOK)
}

// HandleExport handles GET /settings/export — download the vault as JSON.
func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	user := h.requireUser(w, r)
	if user == nil {
		return
	}

	result, err := ops.Export(h.st, ops.ExportInput{})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	w.Header().Set("Content-Disposition", "attachment; filename=\"skilltime-export.json\"")
	http.ServeFile(w, r, result.Path)
}

// HandleReset handles POST /settings/reset — wipe the vault.
func (h *Handlers) HandleReset(w http.ResponseWriter, r *http.Request) {
	user := h.requireUser(w, r)
	if user == nil {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	if r.FormValue("confirm") != "true" {
		view := settingsView{errMsg: "Check the confirmation box to reset the vault."}
		h.renderSettings(w, user, view, http.StatusBadRequest)
		return
	}

	if _, err := ops.Reset(h.st); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	// Reset clears the session too
	http.Redirect(w, r, "/login", http.StatusFound)
}

// settingsView carries the transient bits of settings-page state between
// a form submission and the re-rendered page.
type settingsView struct {
	creator    bool
	creatorKey string
	message    string
	errMsg     string
}

// renderSettings renders the settings page with the skill catalog.
func (h *Handlers) renderSettings(w http.ResponseWriter, user *vault.User, view settingsView, status int) {
	skills, err := ops.ListSkills(h.st)
	if err != nil {
		h.renderer.renderPageStatus(w, http.StatusInternalServerError, "error", ErrorPageData{
			PageData:   PageData{Title: "Error", Version: h.renderer.version},
			StatusCode: http.StatusInternalServerError,
			Message:    err.Error(),
		})
		return
	}

	h.renderer.renderPageStatus(w, status, "settings", SettingsPageData{
		PageData: PageData{
			Title:   "Settings",
			Version: h.renderer.version,
			Nav:     "settings",
			User:    user,
		},
		Skills:     skills.Items,
		Categories: vault.Categories(),
		Creator:    view.creator,
		CreatorKey: view.creatorKey,
		Message:    view.message,
		Error:      view.errMsg,
	})
}

// errorMessage extracts the user-facing message from a vault error.
func errorMessage(err error) string {
	var vErr *errors.VaultError
	if stderrors.As(err, &vErr) {
		return vErr.Message
	}
	return err.Error()
}

// errorStatus extracts the HTTP status from a vault error.
func errorStatus(err error) int {
	var vErr *errors.VaultError
	if stderrors.As(err, &vErr) {
		return vErr.Status
	}
	return http.StatusInternalServerError
}
