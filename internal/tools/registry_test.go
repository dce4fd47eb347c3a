package tools_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/google/uuid"

	"github.com/lumen-lms/lumenlms/internal/lti"
	"github.com/lumen-lms/lumenlms/internal/tools"
)

type memStore struct {
	byID map[string]tools.Tool
}

func newMemStore() *memStore { return &memStore{byID: map[string]tools.Tool{}} }

func (m *memStore) Create(_ context.Context, t tools.Tool) error {
	if _, exists := m.byID[t.ClientID]; exists {
		return fmt.Errorf("duplicate client_id %q", t.ClientID)
	}
	m.byID[t.ClientID] = t
	return nil
}

func (m *memStore) Get(_ context.Context, clientID string) (tools.Tool, error) {
	t, ok := m.byID[clientID]
	if !ok {
		return tools.Tool{}, tools.NotFound
	}
	return t, nil
}

func (m *memStore) List(_ context.Context, offset, limit int) ([]tools.Tool, error) {
	ids := make([]string, 0, len(m.byID))
	for id := range m.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := []tools.Tool{}
	for i := offset; i < len(ids) && len(out) < limit; i++ {
		out = append(out, m.byID[ids[i]])
	}
	return out, nil
}

func (m *memStore) Update(_ context.Context, t tools.Tool) error {
	if _, ok := m.byID[t.ClientID]; !ok {
		return tools.NotFound
	}
	m.byID[t.ClientID] = t
	return nil
}

func (m *memStore) Delete(_ context.Context, clientID string) error {
	if _, ok := m.byID[clientID]; !ok {
		return tools.NotFound
	}
	delete(m.byID, clientID)
	return nil
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	r := httptest.NewRequest(method, path, &buf)
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestCreateToolGeneratesClientID(t *testing.T) {
	h := tools.Routes(newMemStore())
	w := doJSON(t, h, "POST", "/", tools.CreateToolReq{
		Name:      "Test provider",
		LoginURL:  "https://example.com/oidc/login",
		LaunchURI: "https://example.com/launch",
		Active:    true,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var created tools.Tool
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if _, err := uuid.Parse(created.ClientID); err != nil {
		t.Errorf("client_id %q is not a generated uuid: %v", created.ClientID, err)
	}
	if created.DeploymentID != "1" {
		t.Errorf("deployment_id = %q, want default 1", created.DeploymentID)
	}
	if created.UsernameField != lti.SubAnonID {
		t.Errorf("username_field = %q, want default ANON_ID", created.UsernameField)
	}
}

func TestCreateToolValidation(t *testing.T) {
	h := tools.Routes(newMemStore())
	cases := []struct {
		name string
		req  tools.CreateToolReq
	}{
		{"missing name", tools.CreateToolReq{LaunchURI: "https://example.com/launch"}},
		{"relative launch uri", tools.CreateToolReq{Name: "x", LaunchURI: "/launch"}},
		{"non-http launch uri", tools.CreateToolReq{Name: "x", LaunchURI: "ftp://example.com/launch"}},
		{"bad login url", tools.CreateToolReq{Name: "x", LaunchURI: "https://example.com/launch", LoginURL: "not a url"}},
		{"bad username field", tools.CreateToolReq{Name: "x", LaunchURI: "https://example.com/launch", UsernameField: "FULL_NAME"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if w := doJSON(t, h, "POST", "/", tc.req); w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, body %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestToolCRUDRoundTrip(t *testing.T) {
	store := newMemStore()
	h := tools.Routes(store)

	w := doJSON(t, h, "POST", "/", tools.CreateToolReq{
		ClientID:      "client-id-1",
		Name:          "Test provider",
		LoginURL:      "https://example.com/oidc/login",
		LaunchURI:     "https://example.com/launch",
		UsernameField: "USERNAME",
		Active:        true,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, h, "GET", "/client-id-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get: %d", w.Code)
	}
	var got tools.Tool
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Name != "Test provider" || got.UsernameField != lti.SubUsername {
		t.Errorf("got %+v", got)
	}

	w = doJSON(t, h, "PUT", "/client-id-1", tools.CreateToolReq{
		Name:      "Renamed provider",
		LoginURL:  "https://example.com/oidc/login",
		LaunchURI: "https://example.com/launch",
		Active:    false,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update: %d %s", w.Code, w.Body.String())
	}
	updated, _ := store.Get(context.Background(), "client-id-1")
	if updated.Name != "Renamed provider" || updated.Active {
		t.Errorf("updated: %+v", updated)
	}

	w = doJSON(t, h, "DELETE", "/client-id-1", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", w.Code)
	}
	if w = doJSON(t, h, "GET", "/client-id-1", nil); w.Code != http.StatusNotFound {
		t.Errorf("get after delete: %d", w.Code)
	}
}

func TestUpdateToolClientIDMismatch(t *testing.T) {
	store := newMemStore()
	store.byID["client-id-1"] = tools.Tool{ClientID: "client-id-1", Name: "x", LaunchURI: "https://example.com/launch"}
	h := tools.Routes(store)

	w := doJSON(t, h, "PUT", "/client-id-1", tools.CreateToolReq{
		ClientID:  "client-id-2",
		Name:      "x",
		LaunchURI: "https://example.com/launch",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d", w.Code)
	}
}

func TestUpdateToolNotFound(t *testing.T) {
	h := tools.Routes(newMemStore())
	w := doJSON(t, h, "PUT", "/nope", tools.CreateToolReq{
		Name:      "x",
		LaunchURI: "https://example.com/launch",
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, body %s", w.Code, w.Body.String())
	}
}

func TestToolConfigView(t *testing.T) {
	tool := tools.Tool{
		ClientID:      "client-id-1",
		Name:          "Test provider",
		LoginURL:      "https://example.com/oidc/login",
		LaunchURI:     "https://example.com/launch",
		DeploymentID:  "1",
		UsernameField: lti.SubUsername,
	}
	cfg := tool.Config("https://lms.example.edu")
	if cfg.Issuer != "https://lms.example.edu" {
		t.Errorf("issuer = %q", cfg.Issuer)
	}
	if cfg.ClientID != "client-id-1" || cfg.LaunchURI != "https://example.com/launch" {
		t.Errorf("config = %+v", cfg)
	}
}
