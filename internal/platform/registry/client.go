// Package registry is the HTTP client for the externally-owned patient
// registry API. It translates CRUD intents into authenticated REST calls and
// maps every failure to a typed *Error; it performs no retries, caching, or
// request cancellation beyond the caller's context.
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/meghalaya-hospital/registry-admin/internal/domain/patient"
)

// TokenSource supplies the current bearer token. An empty string means no
// session; protected operations fail before touching the network.
type TokenSource interface {
	Token() string
}

// StaticToken is a fixed-token TokenSource, mainly for tests and scripts.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

// User identifies the logged-in staff member as returned by the auth
// endpoints.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	NetworkID string `json:"networkId"`
}

// StaffUser is one entry of the staff directory served by GET /users. Its
// shape differs from the login User: names are split and the record carries
// a role instead of a network id.
type StaffUser struct {
	ID        string `json:"id" yaml:"id"`
	FirstName string `json:"firstName" yaml:"firstName"`
	LastName  string `json:"lastName" yaml:"lastName"`
	Email     string `json:"email" yaml:"email"`
	Phone     string `json:"phone" yaml:"phone"`
	Role      string `json:"role" yaml:"role"`
}

// DisplayName joins the non-empty name parts.
func (u StaffUser) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// LoginResult is the response of POST /auth/login.
type LoginResult struct {
	AccessToken string `json:"accessToken"`
	User        User   `json:"user"`
}

// RegisterForm is the multipart payload of POST /auth/register.
type RegisterForm struct {
	Name     string
	Email    string
	Password string
}

// ABHAAccount is the response of POST /abha/generate.
type ABHAAccount struct {
	ABHANumber  string `json:"abhaNumber"`
	HealthID    string `json:"healthId"`
	Status      string `json:"status"`
	PatientName string `json:"patientName,omitempty"`
}

// GenerateABHARequest is the payload of POST /abha/generate. The yaml tags
// let the CLI read request files with the same key names as the wire.
type GenerateABHARequest struct {
	AadhaarNumber string `json:"aadhaarNumber" yaml:"aadhaarNumber"`
	MobileNumber  string `json:"mobileNumber" yaml:"mobileNumber"`
	Name          string `json:"name" yaml:"name"`
}

// Client issues REST calls against the registry base URL. The zero value is
// not usable; construct with NewClient.
type Client struct {
	baseURL string
	httpc   *http.Client
	tokens  TokenSource
	log     zerolog.Logger
}

func NewClient(baseURL string, httpc *http.Client, tokens TokenSource, log zerolog.Logger) *Client {
	if httpc == nil {
		httpc = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   httpc,
		tokens:  tokens,
		log:     log,
	}
}

// Login exchanges credentials for a bearer token. No auth header is sent.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body := map[string]string{"email": email, "password": password}
	var out LoginResult
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, body, false, &out); err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, &Error{Kind: KindUnknown, Message: "login response carried no access token"}
	}
	return &out, nil
}

// Register creates a staff account. avatarPath, when non-empty, is attached
// as a file part.
func (c *Client) Register(ctx context.Context, form RegisterForm, avatarPath string) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("name", form.Name)
	_ = mw.WriteField("email", form.Email)
	_ = mw.WriteField("password", form.Password)
	if avatarPath != "" {
		f, err := os.Open(avatarPath)
		if err != nil {
			return fmt.Errorf("open avatar: %w", err)
		}
		defer f.Close()
		part, err := mw.CreateFormFile("avatar", filepath.Base(avatarPath))
		if err != nil {
			return fmt.Errorf("avatar part: %w", err)
		}
		if _, err := io.Copy(part, f); err != nil {
			return fmt.Errorf("read avatar: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/register", &buf)
	if err != nil {
		return errNetwork(err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.send(req, nil)
}

// List fetches the full patient collection for a network. The backend owns
// filtering by tenant; no pagination exists.
func (c *Client) List(ctx context.Context, networkID string) ([]patient.Patient, error) {
	q := url.Values{}
	if networkID != "" {
		q.Set("networkId", networkID)
	}
	var out []patient.Patient
	if err := c.do(ctx, http.MethodGet, "/patients", q, nil, true, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches a single record by id or UPID.
func (c *Client) Get(ctx context.Context, identifier string) (*patient.Patient, error) {
	var out patient.Patient
	if err := c.do(ctx, http.MethodGet, "/patients/"+url.PathEscape(identifier), nil, nil, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create submits a draft (no id) and returns the server-assigned record.
func (c *Client) Create(ctx context.Context, draft *patient.Patient) (*patient.Patient, error) {
	var out patient.Patient
	if err := c.do(ctx, http.MethodPost, "/patients", nil, draft, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update PATCHes a partial payload keyed by id and returns the updated
// record. Callers build the map so absent fields stay absent on the wire.
func (c *Client) Update(ctx context.Context, id string, partial map[string]interface{}) (*patient.Patient, error) {
	var out patient.Patient
	if err := c.do(ctx, http.MethodPatch, "/patients/"+url.PathEscape(id), nil, partial, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a record. Only HTTP 204 counts as success; any other status
// is reported as not-found, preserving the backend's delete contract.
func (c *Client) Delete(ctx context.Context, id string) error {
	token := c.tokens.Token()
	if token == "" {
		return errUnauthorized("no session token; log in first")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/patients/"+url.PathEscape(id), nil)
	if err != nil {
		return errNetwork(err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("id", id).Msg("delete patient failed")
		return errNetwork(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		e := &Error{Kind: KindNotFound, StatusCode: resp.StatusCode, Message: extractMessage(body)}
		if e.Message == "" {
			e.Message = "patient not found"
		}
		c.log.Warn().Int("status", resp.StatusCode).Str("id", id).Msg("delete patient rejected")
		return e
	}
	return nil
}

// Activate re-enables a record via the dedicated sub-resource.
func (c *Client) Activate(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPatch, "/patients/"+url.PathEscape(id)+"/activate", nil, nil, true, nil)
}

// Deactivate disables a record without deleting it.
func (c *Client) Deactivate(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPatch, "/patients/"+url.PathEscape(id)+"/deactivate", nil, nil, true, nil)
}

// ListUsers fetches up to take staff accounts. The backend wraps the
// collection in a data envelope, unlike the bare patient list.
func (c *Client) ListUsers(ctx context.Context, take int) ([]StaffUser, error) {
	if take <= 0 {
		take = 10
	}
	q := url.Values{}
	q.Set("take", strconv.Itoa(take))
	var out struct {
		Data []StaffUser `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/users", q, nil, true, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// GetUser fetches one staff account by id.
func (c *Client) GetUser(ctx context.Context, id string) (*StaffUser, error) {
	var out StaffUser
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, nil, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyABHA checks a national health ID against the ABHA service. No auth
// header is sent.
func (c *Client) VerifyABHA(ctx context.Context, abha string) (string, error) {
	body := map[string]string{"abha": abha}
	var out struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodPost, "/abha/verify", nil, body, false, &out); err != nil {
		return "", err
	}
	return out.Status, nil
}

// GenerateABHA requests a new ABHA account for a patient.
func (c *Client) GenerateABHA(ctx context.Context, req GenerateABHARequest) (*ABHAAccount, error) {
	var out ABHAAccount
	if err := c.do(ctx, http.MethodPost, "/abha/generate", nil, req, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do issues one JSON request. When auth is required and no token is
// available the call fails as unauthorized without touching the network.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}, auth bool, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return errNetwork(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		token := c.tokens.Token()
		if token == "" {
			return errUnauthorized("no session token; log in first")
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.send(req, out)
}

// send executes a prepared request, maps failures to typed errors, and
// decodes a JSON success body into out when asked.
func (c *Client) send(req *http.Request, out interface{}) error {
	c.log.Debug().Str("method", req.Method).Str("path", req.URL.Path).Msg("registry request")

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("method", req.Method).Str("path", req.URL.Path).Msg("registry request failed")
		return errNetwork(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errNetwork(err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		e := errFromResponse(resp.StatusCode, respBody)
		c.log.Warn().
			Int("status", resp.StatusCode).
			Str("kind", string(e.Kind)).
			Str("path", req.URL.Path).
			Msg("registry request rejected")
		return e
	}
	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &Error{Kind: KindUnknown, StatusCode: resp.StatusCode, Message: "malformed response body", cause: err}
	}
	return nil
}
