package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TestContext carries HTTP state between the steps of one scenario.
type TestContext struct {
	BaseURL    string
	SigningKey string
	Deployer   string

	client     *http.Client
	principal  string
	status     int
	body       []byte
	properties map[string]uint64
	actors     map[string]string
}

// NewTestContext reads the target server from E2E_BASE_URL and the shared
// HMAC key from E2E_JWT_SIGNING_KEY.
func NewTestContext() *TestContext {
	return &TestContext{
		BaseURL:    strings.TrimRight(envOr("E2E_BASE_URL", "http://localhost:8080"), "/"),
		SigningKey: envOr("E2E_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		Deployer:   envOr("E2E_DEPLOYER", "deployer"),
		client:     &http.Client{Timeout: 10 * time.Second},
		properties: map[string]uint64{},
		actors:     map[string]string{},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Reset clears per-scenario state.
func (tc *TestContext) Reset() {
	tc.principal = ""
	tc.status = 0
	tc.body = nil
	tc.properties = map[string]uint64{}
	tc.actors = map[string]string{}
}

// Actor maps a scenario alias to a principal unique to this scenario, so
// runs against a long-lived server do not collide. "deployer" is fixed.
func (tc *TestContext) Actor(alias string) string {
	if alias == "deployer" {
		return tc.Deployer
	}
	if p, ok := tc.actors[alias]; ok {
		return p
	}
	p := fmt.Sprintf("%s-%d", alias, time.Now().UnixNano())
	tc.actors[alias] = p
	return p
}

// ActAs authenticates subsequent requests as the aliased principal; an empty
// alias sends no token.
func (tc *TestContext) ActAs(alias string) {
	if alias == "" {
		tc.principal = ""
		return
	}
	tc.principal = tc.Actor(alias)
}

func (tc *TestContext) token(principal string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   principal,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(5 * time.Minute)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(tc.SigningKey))
}

func (tc *TestContext) POST(path string, body interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return tc.do(http.MethodPost, path, bytes.NewReader(payload))
}

func (tc *TestContext) GET(path string) error {
	return tc.do(http.MethodGet, path, nil)
}

func (tc *TestContext) do(method, path string, body io.Reader) error {
	req, err := http.NewRequest(method, tc.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if tc.principal != "" {
		token, err := tc.token(tc.principal)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := tc.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	tc.status = resp.StatusCode
	tc.body, err = io.ReadAll(resp.Body)
	return err
}

func (tc *TestContext) GetStatus() int { return tc.status }

// GetResponseField reads a dotted path such as "property.owner".
func (tc *TestContext) GetResponseField(field string) (interface{}, error) {
	var data map[string]interface{}
	if err := json.Unmarshal(tc.body, &data); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %s", tc.body)
	}
	var cur interface{} = data
	for _, part := range strings.Split(field, ".") {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("field %q not found in %s", field, tc.body)
		}
		if cur, ok = m[part]; !ok {
			return nil, fmt.Errorf("field %q not found in %s", field, tc.body)
		}
	}
	return cur, nil
}

func (tc *TestContext) SaveProperty(alias string, id uint64) { tc.properties[alias] = id }

func (tc *TestContext) PropertyID(alias string) (uint64, error) {
	id, ok := tc.properties[alias]
	if !ok {
		return 0, fmt.Errorf("no property saved as %q", alias)
	}
	return id, nil
}
