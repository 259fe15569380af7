// Package gateway is the thin client for the remote reservation/order
// service. The service itself is a black box; this package only knows the
// handful of transaction, payment and task endpoints the orchestrator
// drives, and maps every remote failure to an upstream-classified error.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/iliyamo/pos-order-api/internal/apperr"
)

// Service holds the connection-independent configuration: endpoints and the
// shared HTTP client. It carries no credential; per-request credentials
// live in immutable Session values so nothing is reassigned between
// concurrent calls.
type Service struct {
	endpoint       string
	waiterEndpoint string
	projectID      string
	hc             *http.Client
}

// New builds a Service for the given gateway endpoint and passport (scope
// broker) endpoint.
func New(endpoint, waiterEndpoint, projectID string) *Service {
	return &Service{
		endpoint:       endpoint,
		waiterEndpoint: waiterEndpoint,
		projectID:      projectID,
		hc:             &http.Client{Timeout: 30 * time.Second},
	}
}

// Session binds the service to one request's access token. Sessions are
// plain values; construct one per inbound request and discard it.
func (s *Service) Session(accessToken string) Session {
	return Session{svc: s, token: accessToken}
}

// Session is an immutable per-call client for the gateway.
type Session struct {
	svc   *Service
	token string
}

// PublishPassport obtains a short-lived authorization passport for the
// given scope from the broker. The broker endpoint is project-scoped and
// unauthenticated.
func (s *Service) PublishPassport(ctx context.Context, scope string) (string, error) {
	url := fmt.Sprintf("%s/projects/%s/passports", s.waiterEndpoint, s.projectID)
	var out struct {
		Token string `json:"token"`
	}
	if err := s.doJSON(ctx, http.MethodPost, url, "", map[string]string{"scope": scope}, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

func (sess Session) do(ctx context.Context, method, path string, in, out interface{}) error {
	return sess.svc.doJSON(ctx, method, sess.svc.endpoint+path, sess.token, in, out)
}

func (s *Service) doJSON(ctx context.Context, method, url, token string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := s.hc.Do(req)
	if err != nil {
		return apperr.Wrap(apperr.KindUpstream, err, "gateway request failed")
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return apperr.New(apperr.KindUpstream, "gateway returned %d: %s", res.StatusCode, bytes.TrimSpace(detail))
	}
	if out == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return apperr.Wrap(apperr.KindUpstream, err, "gateway response decode failed")
	}
	return nil
}
