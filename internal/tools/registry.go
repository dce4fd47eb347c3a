package tools

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lumen-lms/lumenlms/internal/lti"
)

/*
Admin registry API for external tools.

This is the "surrounding CRUD system" that owns ToolConfig: a thin HTTP API
over the Store interface so administrators can register tools, hand the
generated client_id to the tool operator, and disable registrations.
ToolConfig is immutable during a launch; only this API mutates it.

Mount under /admin/tools behind the bcrypt Basic-auth middleware.
*/

// Store is the persistence interface the registry API delegates to.
type Store interface {
	Create(ctx context.Context, t Tool) error
	Get(ctx context.Context, clientID string) (Tool, error)
	List(ctx context.Context, offset, limit int) ([]Tool, error)
	Update(ctx context.Context, t Tool) error
	Delete(ctx context.Context, clientID string) error
}

// CreateToolReq is the admin request body for create and update.
type CreateToolReq struct {
	ClientID      string `json:"client_id,omitempty"` // generated when empty
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	LoginURL      string `json:"login_url"`
	LaunchURI     string `json:"launch_uri"`
	DeploymentID  string `json:"deployment_id,omitempty"`
	UsernameField string `json:"username_field,omitempty"`
	KeyID         string `json:"key_id,omitempty"`
	Active        bool   `json:"active"`
}

// Routes returns the CRUD endpoints for tool registrations.
func Routes(store Store) http.Handler {
	r := chi.NewRouter()
	r.Post("/", createTool(store))
	r.Get("/", listTools(store))
	r.Get("/{clientID}", getTool(store))
	r.Put("/{clientID}", updateTool(store))
	r.Delete("/{clientID}", deleteTool(store))
	return r
}

func createTool(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateToolReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
			return
		}
		if req.ClientID == "" {
			// Opaque id handed to the tool operator during registration.
			req.ClientID = uuid.NewString()
		}
		t, msg := toolFromReq(req)
		if msg != "" {
			writeErr(w, http.StatusBadRequest, msg)
			return
		}
		t.CreatedAt = time.Now().UTC()
		if err := store.Create(r.Context(), t); err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, t)
	}
}

func getTool(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := store.Get(r.Context(), chi.URLParam(r, "clientID"))
		if err != nil {
			if errors.Is(err, NotFound) {
				writeErr(w, http.StatusNotFound, "tool not found")
				return
			}
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, t)
	}
}

func listTools(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offset, limit := parsePage(r, 0, 100)
		items, err := store.List(r.Context(), offset, limit)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}

func updateTool(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID := chi.URLParam(r, "clientID")
		var req CreateToolReq // full replacement
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
			return
		}
		// client_id in the path is canonical; body may omit or must match.
		if req.ClientID != "" && strings.TrimSpace(req.ClientID) != clientID {
			writeErr(w, http.StatusBadRequest, "client_id in body must match path")
			return
		}
		req.ClientID = clientID
		t, msg := toolFromReq(req)
		if msg != "" {
			writeErr(w, http.StatusBadRequest, msg)
			return
		}
		if err := store.Update(r.Context(), t); err != nil {
			if errors.Is(err, NotFound) {
				writeErr(w, http.StatusNotFound, "tool not found")
				return
			}
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, t)
	}
}

func deleteTool(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.Delete(r.Context(), chi.URLParam(r, "clientID")); err != nil {
			if errors.Is(err, NotFound) {
				writeErr(w, http.StatusNotFound, "tool not found")
				return
			}
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func toolFromReq(req CreateToolReq) (Tool, string) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return Tool{}, "name is required"
	}
	launchURI := strings.TrimSpace(req.LaunchURI)
	if !isHTTPURL(launchURI) {
		return Tool{}, "launch_uri must be an absolute http(s) URL"
	}
	loginURL := strings.TrimSpace(req.LoginURL)
	if loginURL != "" && !isHTTPURL(loginURL) {
		return Tool{}, "login_url must be an absolute http(s) URL"
	}
	field := lti.UsernameField(strings.TrimSpace(req.UsernameField))
	if field == "" {
		field = lti.SubAnonID
	}
	if !validUsernameField(field) {
		return Tool{}, "username_field must be USERNAME, EMAIL or ANON_ID"
	}
	deployment := strings.TrimSpace(req.DeploymentID)
	if deployment == "" {
		deployment = "1"
	}
	return Tool{
		ClientID:      strings.TrimSpace(req.ClientID),
		Name:          name,
		Description:   strings.TrimSpace(req.Description),
		LoginURL:      loginURL,
		LaunchURI:     launchURI,
		DeploymentID:  deployment,
		UsernameField: field,
		KeyID:         strings.TrimSpace(req.KeyID),
		Active:        req.Active,
	}, ""
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func parsePage(r *http.Request, defOffset, defLimit int) (int, int) {
	offset, limit := defOffset, defLimit
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	return offset, limit
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
