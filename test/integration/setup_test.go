package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/meghalaya-hospital/registry-admin/internal/domain/patient"
	"github.com/meghalaya-hospital/registry-admin/internal/platform/registry"
	"github.com/meghalaya-hospital/registry-admin/internal/platform/session"
)

const (
	testEmail    = "admin@meghalaya.test"
	testPassword = "s3cret"
	testNetwork  = "net-001"
)

// fakeRegistry is an in-process stand-in for the externally-owned backend.
// It implements just enough of the REST contract for the client, session,
// and directory layers to be exercised end to end.
type fakeRegistry struct {
	mu       sync.Mutex
	token    string
	patients map[string]*patient.Patient
	order    []string
	nextID   int
	users    []registry.StaffUser

	requests atomic.Int64
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		token:    "tok-e2e-12345",
		patients: map[string]*patient.Patient{},
		users: []registry.StaffUser{
			{ID: "u-1", FirstName: "Registry", LastName: "Admin", Email: testEmail, Phone: "9000000001", Role: "admin"},
			{ID: "u-2", FirstName: "Daphi", LastName: "Syiem", Email: "daphi@meghalaya.test", Phone: "9000000002", Role: "clerk"},
		},
	}
}

// Requests reports how many HTTP requests reached the backend.
func (f *fakeRegistry) Requests() int64 { return f.requests.Load() }

// bearerToken reads the accepted token under the lock; tests rotate it
// concurrently with in-flight requests.
func (f *fakeRegistry) bearerToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

// rotateToken simulates a server-side invalidation of the issued token.
func (f *fakeRegistry) rotateToken(tok string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = tok
}

func (f *fakeRegistry) handler() http.Handler {
	e := echo.New()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			f.requests.Add(1)
			return next(c)
		}
	})

	e.POST("/auth/login", f.login)
	e.POST("/abha/verify", f.verifyABHA)

	authed := e.Group("", f.requireBearer)
	authed.GET("/patients", f.list)
	authed.POST("/patients", f.create)
	authed.GET("/patients/:id", f.get)
	authed.PATCH("/patients/:id", f.update)
	authed.DELETE("/patients/:id", f.remove)
	authed.PATCH("/patients/:id/activate", f.setActive(true))
	authed.PATCH("/patients/:id/deactivate", f.setActive(false))
	authed.GET("/users", f.listUsers)
	authed.GET("/users/:id", f.getUser)
	authed.POST("/abha/generate", f.generateABHA)

	return e
}

func (f *fakeRegistry) requireBearer(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if c.Request().Header.Get("Authorization") != "Bearer "+f.bearerToken() {
			return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
		}
		return next(c)
	}
}

func (f *fakeRegistry) login(c echo.Context) error {
	var creds map[string]string
	if err := c.Bind(&creds); err != nil {
		return err
	}
	if creds["email"] != testEmail || creds["password"] != testPassword {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "invalid credentials"})
	}
	return c.JSON(http.StatusOK, registry.LoginResult{
		AccessToken: f.bearerToken(),
		User: registry.User{
			ID:        "u-1",
			Name:      "Registry Admin",
			Email:     testEmail,
			NetworkID: testNetwork,
		},
	})
}

func (f *fakeRegistry) list(c echo.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	network := c.QueryParam("networkId")
	out := []patient.Patient{}
	for _, id := range f.order {
		p := f.patients[id]
		if network == "" || p.NetworkID == network {
			out = append(out, *p)
		}
	}
	return c.JSON(http.StatusOK, out)
}

func (f *fakeRegistry) create(c echo.Context) error {
	var p patient.Patient
	if err := json.NewDecoder(c.Request().Body).Decode(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "malformed patient payload"})
	}
	if p.ID != "" || p.UPID != "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "id is server-assigned"})
	}
	if p.MRN == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "mrn is required"})
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p.ID = fmt.Sprintf("p-%d", f.nextID)
	p.UPID = fmt.Sprintf("UP-%03d", f.nextID)
	f.patients[p.ID] = &p
	f.order = append(f.order, p.ID)
	return c.JSON(http.StatusCreated, p)
}

func (f *fakeRegistry) lookup(id string) *patient.Patient {
	if p, ok := f.patients[id]; ok {
		return p
	}
	for _, p := range f.patients {
		if p.UPID == id {
			return p
		}
	}
	return nil
}

func (f *fakeRegistry) get(c echo.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.lookup(c.Param("id"))
	if p == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "no such patient"})
	}
	return c.JSON(http.StatusOK, *p)
}

func (f *fakeRegistry) update(c echo.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.lookup(c.Param("id"))
	if p == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "no such patient"})
	}
	// Last-write-wins partial merge, like the real backend.
	if err := json.NewDecoder(c.Request().Body).Decode(p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "malformed patch payload"})
	}
	return c.JSON(http.StatusOK, *p)
}

func (f *fakeRegistry) remove(c echo.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.lookup(c.Param("id"))
	if p == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "no such patient"})
	}
	delete(f.patients, p.ID)
	for i, id := range f.order {
		if id == p.ID {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return c.NoContent(http.StatusNoContent)
}

func (f *fakeRegistry) setActive(active bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		p := f.lookup(c.Param("id"))
		if p == nil {
			return c.JSON(http.StatusNotFound, map[string]string{"message": "no such patient"})
		}
		p.Active = active
		return c.JSON(http.StatusOK, *p)
	}
}

func (f *fakeRegistry) listUsers(c echo.Context) error {
	take := len(f.users)
	if n, err := strconv.Atoi(c.QueryParam("take")); err == nil && n < take {
		take = n
	}
	// The users collection is wrapped in a data envelope, unlike /patients.
	return c.JSON(http.StatusOK, map[string]interface{}{"data": f.users[:take]})
}

func (f *fakeRegistry) getUser(c echo.Context) error {
	for _, u := range f.users {
		if u.ID == c.Param("id") {
			return c.JSON(http.StatusOK, u)
		}
	}
	return c.JSON(http.StatusNotFound, map[string]string{"message": "no such user"})
}

func (f *fakeRegistry) verifyABHA(c echo.Context) error {
	var req map[string]string
	if err := c.Bind(&req); err != nil {
		return err
	}
	status := "verified"
	if req["abha"] == "" {
		status = "not_found"
	}
	return c.JSON(http.StatusOK, map[string]string{"status": status})
}

func (f *fakeRegistry) generateABHA(c echo.Context) error {
	var req registry.GenerateABHARequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, registry.ABHAAccount{
		ABHANumber:  "91-1234-5678-9012",
		HealthID:    "asha@abdm",
		Status:      "created",
		PatientName: req.Name,
	})
}

// harness wires a fake backend, a file-backed session store, and a client
// with the store injected as its token source.
type harness struct {
	backend *fakeRegistry
	store   *session.Store
	client  *registry.Client
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	backend := newFakeRegistry()
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	store := session.Open(filepath.Join(t.TempDir(), "session.json"), zerolog.Nop())
	client := registry.NewClient(srv.URL, srv.Client(), store, zerolog.Nop())
	return &harness{backend: backend, store: store, client: client}
}
