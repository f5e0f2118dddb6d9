//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	apphandler "homestay/internal/application/handler"
	"homestay/internal/application/service"
	"homestay/internal/application/store"
	jwttoken "homestay/internal/jwt_token"
	"homestay/internal/numbering"
	"homestay/internal/platform/metrics"
	"homestay/internal/policy"
	"homestay/pkg/domain"
	"homestay/pkg/platform/middleware/callback"
)

const (
	signingKey   = "e2e-signing-key"
	issuer       = "homestay-e2e"
	audience     = "homestay-api"
	gatewayToken = "e2e-gateway-token"
	district     = "Shimla"
)

// TestContext holds one scenario's server and the ids it has collected.
type TestContext struct {
	server *httptest.Server
	tokens map[string]string
	actor  string

	status int
	body   []byte

	applicationID string
	parentID      string
	paymentID     string
}

func (tc *TestContext) start() error {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(
		service.NewInMemoryTx(store.NewInMemory()),
		numbering.New(numbering.NewMemorySequencer()),
		policy.NewHolder(policy.Default()),
		service.WithLogger(logger),
	)

	jwt := jwttoken.NewJWTService(signingKey, issuer, audience)
	actors := map[string]domain.Actor{
		"owner":             {Role: domain.RoleOwner},
		"second owner":      {Role: domain.RoleOwner},
		"dealing assistant": {Role: domain.RoleDealingAssistant, District: district},
		"district officer":  {Role: domain.RoleDistrictOfficer, District: district},
		"other officer":     {Role: domain.RoleDistrictOfficer, District: "Kullu"},
		"admin":             {Role: domain.RoleAdmin},
	}
	tc.tokens = make(map[string]string, len(actors))
	for name, actor := range actors {
		id, err := domain.ParseUserID(uuid.NewString())
		if err != nil {
			return err
		}
		actor.ID = id
		token, err := jwt.GenerateAccessToken(actor, time.Hour)
		if err != nil {
			return fmt.Errorf("mint token for %s: %w", name, err)
		}
		tc.tokens[name] = token
	}

	router := chi.NewRouter()
	apphandler.New(svc, logger, metrics.NewWithRegisterer(prometheus.NewRegistry()), jwttoken.NewJWTServiceAdapter(jwt),
		apphandler.WithGatewayToken(gatewayToken),
	).Register(router)
	tc.server = httptest.NewServer(router)
	tc.actor = "owner"
	return nil
}

func (tc *TestContext) stop() {
	if tc.server != nil {
		tc.server.Close()
	}
}

func (tc *TestContext) request(method, path string, body any) error {
	return tc.requestAs(tc.actor, method, path, body)
}

func (tc *TestContext) requestAs(actor, method, path string, body any) error {
	token, ok := tc.tokens[actor]
	if !ok {
		return fmt.Errorf("unknown actor %q", actor)
	}
	return tc.send(method, path, body, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	})
}

func (tc *TestContext) gateway(path string, body any) error {
	return tc.send(http.MethodPost, path, body, func(req *http.Request) {
		req.Header.Set(callback.HeaderGatewayToken, gatewayToken)
	})
}

func (tc *TestContext) send(method, path string, body any, decorate func(*http.Request)) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, tc.server.URL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	decorate(req)

	resp, err := tc.server.Client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	tc.status = resp.StatusCode
	tc.body, err = io.ReadAll(resp.Body)
	return err
}

// expectStatus turns an unexpected status into a step error carrying the
// response body.
func (tc *TestContext) expectStatus(want int) error {
	if tc.status != want {
		return fmt.Errorf("expected status %d, got %d: %s", want, tc.status, tc.body)
	}
	return nil
}

func (tc *TestContext) json() (map[string]any, error) {
	var out map[string]any
	if err := json.Unmarshal(tc.body, &out); err != nil {
		return nil, fmt.Errorf("decode response %q: %w", tc.body, err)
	}
	return out, nil
}

func (tc *TestContext) field(name string) (any, error) {
	body, err := tc.json()
	if err != nil {
		return nil, err
	}
	v, ok := body[name]
	if !ok {
		return nil, fmt.Errorf("response has no %q: %s", name, tc.body)
	}
	return v, nil
}

func (tc *TestContext) stringField(name string) (string, error) {
	v, err := tc.field(name)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%q is %T, not a string", name, v)
	}
	return s, nil
}

func (tc *TestContext) applicationPath(suffix string) string {
	return "/applications/" + tc.applicationID + suffix
}
