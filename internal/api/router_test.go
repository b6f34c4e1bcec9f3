package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sigcheck/internal/api/handlers"
	"sigcheck/internal/api/middleware"
	"sigcheck/internal/engine/signature"
	"sigcheck/internal/platform/auth"
	"sigcheck/internal/platform/config"
)

const (
	testSecret     = "your-secret-key"
	projectPayload = `{"type":"project.created","data":{"id":"123","name":"test-project"}}`
	projectDigest  = "21f7a392fa85dc225dfc1470906f2df3a2bb1aa9398658c3dccc99686bd6bd02"
)

type testOptions struct {
	secret      string
	jwtSecret   string
	exposeDebug bool
	maxBody     int64
}

func newTestRouter(t *testing.T, opts testOptions) http.Handler {
	t.Helper()
	if opts.maxBody == 0 {
		opts.maxBody = 1 << 20
	}
	whCfg := config.WebhooksConfig{
		Secret:          opts.secret,
		SignatureHeader: "x-signature",
		ExposeDebug:     opts.exposeDebug,
	}
	clock := signature.WithClock(func() time.Time {
		return time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	})
	webhooks := signature.NewService(whCfg.Secret, clock)
	verifier := signature.NewService(whCfg.VerifySecretOrDefault(), clock)
	tokenSvc := auth.NewTokenService(config.AuthConfig{JWTSecret: opts.jwtSecret, Issuer: "sigcheck", TokenTTL: time.Hour})

	return NewRouter(&Dependencies{
		SignatureHandler: handlers.NewSignatureHandler(whCfg, opts.maxBody, webhooks, verifier),
		HealthHandler:    handlers.NewHealthHandler(webhooks, verifier),
		MetricsHandler:   handlers.NewMetricsHandler(),
		AuthMiddleware:   middleware.NewAuthMiddleware(tokenSvc, auth.ScopeGenerate),
		MetricsPath:      "/metrics",
	})
}

func do(t *testing.T, h http.Handler, method, path, body string, headers map[string]string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var out map[string]interface{}
	if strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
			t.Fatalf("invalid JSON response %q: %v", rr.Body.String(), err)
		}
	}
	return rr, out
}

func TestGenerateSignature(t *testing.T) {
	router := newTestRouter(t, testOptions{secret: testSecret})

	body, _ := json.Marshal(map[string]string{"secret": testSecret, "payload": projectPayload})
	rr, out := do(t, router, "POST", RouteGenerate, string(body), nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if out["signature"] != projectDigest {
		t.Errorf("expected %s, got %v", projectDigest, out["signature"])
	}
	if rr.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("expected a request id header")
	}
}

func TestGenerateSignature_BadRequests(t *testing.T) {
	router := newTestRouter(t, testOptions{secret: testSecret, maxBody: 256})

	tests := []struct {
		name   string
		body   string
		status int
		errMsg string
	}{
		{name: "missing secret", body: `{"payload":"x"}`, status: 400, errMsg: "Secret and payload are required"},
		{name: "missing payload", body: `{"secret":"x"}`, status: 400, errMsg: "Secret and payload are required"},
		{name: "empty strings", body: `{"secret":"","payload":""}`, status: 400, errMsg: "Secret and payload are required"},
		{name: "not json", body: `secret=x`, status: 400, errMsg: "Invalid request body"},
		{name: "too large", body: `{"secret":"x","payload":"` + strings.Repeat("a", 512) + `"}`, status: 413, errMsg: "Request body too large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, out := do(t, router, "POST", RouteGenerate, tt.body, nil)
			if rr.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rr.Code)
			}
			if out["error"] != tt.errMsg {
				t.Errorf("expected error %q, got %v", tt.errMsg, out["error"])
			}
		})
	}
}

func TestGenerateSignature_RequiresTokenWhenConfigured(t *testing.T) {
	router := newTestRouter(t, testOptions{secret: testSecret, jwtSecret: "jwt-secret"})
	body := `{"secret":"s","payload":"p"}`

	rr, out := do(t, router, "POST", RouteGenerate, body, nil)
	if rr.Code != http.StatusUnauthorized || out["code"] != "unauthorized" {
		t.Fatalf("expected 401 unauthorized, got %d %v", rr.Code, out)
	}

	rr, _ = do(t, router, "POST", RouteGenerate, body, map[string]string{"Authorization": "Token abc"})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad scheme, got %d", rr.Code)
	}

	token, err := auth.NewTokenService(config.AuthConfig{JWTSecret: "jwt-secret", Issuer: "sigcheck", TokenTTL: time.Hour}).GenerateToken("tester", 0)
	if err != nil {
		t.Fatal(err)
	}
	rr, out = do(t, router, "POST", RouteGenerate, body, map[string]string{"Authorization": "Bearer " + token})
	if rr.Code != http.StatusOK || out["signature"] == "" {
		t.Fatalf("expected 200 with signature, got %d %v", rr.Code, out)
	}
}

func TestVerifySignature(t *testing.T) {
	router := newTestRouter(t, testOptions{secret: testSecret})

	rr, out := do(t, router, "POST", RouteVerify, projectPayload, map[string]string{"x-signature": projectDigest})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if out["valid"] != true || out["expectedSignature"] != projectDigest || out["providedSignature"] != projectDigest {
		t.Errorf("unexpected body %v", out)
	}

	for _, provided := range []string{"deadbeef", "zz", projectDigest[:63] + "3"} {
		rr, out = do(t, router, "POST", RouteVerify, projectPayload, map[string]string{"x-signature": provided})
		if rr.Code != http.StatusOK || out["valid"] != false {
			t.Errorf("expected valid=false for %q, got %d %v", provided, rr.Code, out)
		}
	}
}

func TestVerifySignature_Failures(t *testing.T) {
	router := newTestRouter(t, testOptions{secret: testSecret})

	rr, out := do(t, router, "POST", RouteVerify, projectPayload, nil)
	if rr.Code != http.StatusBadRequest || out["valid"] != false || out["error"] != "No signature provided" {
		t.Errorf("unexpected response %d %v", rr.Code, out)
	}

	rr, out = do(t, router, "POST", RouteVerify, "", map[string]string{"x-signature": projectDigest})
	if rr.Code != http.StatusBadRequest || out["valid"] != false {
		t.Errorf("unexpected response for empty body %d %v", rr.Code, out)
	}

	unconfigured := newTestRouter(t, testOptions{})
	rr, out = do(t, unconfigured, "POST", RouteVerify, projectPayload, map[string]string{"x-signature": projectDigest})
	if rr.Code != http.StatusInternalServerError || out["error"] != "Failed to verify signature" {
		t.Errorf("unexpected response without secret %d %v", rr.Code, out)
	}
}

func TestWebhookValidator_Scenarios(t *testing.T) {
	router := newTestRouter(t, testOptions{secret: testSecret, exposeDebug: true})

	sign := func(body string) string {
		sig, err := signature.GenerateSignature([]byte(testSecret), []byte(body))
		if err != nil {
			t.Fatal(err)
		}
		return sig
	}

	tests := []struct {
		name    string
		body    string
		sig     string
		status  int
		code    string
		message string
	}{
		{
			name:    "A project created",
			body:    projectPayload,
			sig:     projectDigest,
			status:  200,
			message: `Project "test-project" created successfully`,
		},
		{
			name:   "B flipped signature",
			body:   projectPayload,
			sig:    projectDigest[:63] + "3",
			status: 401,
			code:   "invalid_signature",
		},
		{
			name:   "C missing signature",
			body:   projectPayload,
			sig:    "",
			status: 400,
			code:   "missing_signature",
		},
		{
			name:    "D deployment created",
			body:    `{"type":"deployment.created"}`,
			sig:     sign(`{"type":"deployment.created"}`),
			status:  200,
			message: "Deployment created successfully",
		},
		{
			name:    "E unknown type",
			body:    `{"type":"foo.bar"}`,
			sig:     sign(`{"type":"foo.bar"}`),
			status:  200,
			message: `Webhook type "foo.bar" processed successfully`,
		},
		{
			name:   "malformed payload",
			body:   `not json`,
			sig:    sign(`not json`),
			status: 500,
			code:   "validation_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{"Content-Type": "application/json"}
			if tt.sig != "" {
				headers["x-signature"] = tt.sig
			}
			rr, out := do(t, router, "POST", RouteWebhook, tt.body, headers)

			if rr.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rr.Code, rr.Body.String())
			}
			if tt.code != "" {
				if out["code"] != tt.code {
					t.Errorf("expected code %s, got %v", tt.code, out["code"])
				}
				return
			}
			if out["success"] != true || out["message"] != tt.message {
				t.Errorf("unexpected body %v", out)
			}
			if out["timestamp"] != "2026-10-17T12:00:00.000Z" {
				t.Errorf("unexpected timestamp %v", out["timestamp"])
			}
		})
	}
}

func TestWebhookValidator_Debug(t *testing.T) {
	flipped := projectDigest[:63] + "3"
	headers := map[string]string{"x-signature": flipped}

	_, out := do(t, newTestRouter(t, testOptions{secret: testSecret, exposeDebug: true}), "POST", RouteWebhook, projectPayload, headers)
	debug, ok := out["debug"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected debug block, got %v", out)
	}
	if debug["expected"] != projectDigest || debug["provided"] != flipped {
		t.Errorf("unexpected debug block %v", debug)
	}

	_, out = do(t, newTestRouter(t, testOptions{secret: testSecret}), "POST", RouteWebhook, projectPayload, headers)
	if _, ok := out["debug"]; ok {
		t.Errorf("expected no debug block when disabled, got %v", out)
	}
	if out["error"] != "Signature didn't match" {
		t.Errorf("unexpected error %v", out["error"])
	}
}

func TestWebhookValidator_MissingSecret(t *testing.T) {
	router := newTestRouter(t, testOptions{})
	rr, out := do(t, router, "POST", RouteWebhook, projectPayload, map[string]string{"x-signature": projectDigest})

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if out["code"] != "missing_secret" || out["error"] != "No integration secret found" {
		t.Errorf("unexpected body %v", out)
	}
}

func TestHealthAndFallbacks(t *testing.T) {
	rr, out := do(t, newTestRouter(t, testOptions{secret: testSecret}), "GET", RouteHealth, "", nil)
	if rr.Code != http.StatusOK || out["status"] != "healthy" {
		t.Errorf("expected healthy, got %d %v", rr.Code, out)
	}

	router := newTestRouter(t, testOptions{})
	rr, out = do(t, router, "GET", RouteHealth, "", nil)
	if rr.Code != http.StatusServiceUnavailable || out["status"] != "degraded" {
		t.Errorf("expected degraded, got %d %v", rr.Code, out)
	}

	rr, out = do(t, router, "GET", "/nope", "", nil)
	if rr.Code != http.StatusNotFound || out["code"] != "not_found" {
		t.Errorf("expected not_found, got %d %v", rr.Code, out)
	}

	rr, out = do(t, router, "GET", RouteWebhook, "", nil)
	if rr.Code != http.StatusMethodNotAllowed || out["code"] != "method_not_allowed" {
		t.Errorf("expected method_not_allowed, got %d %v", rr.Code, out)
	}

	rr, _ = do(t, router, "GET", "/metrics", "", nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "sigcheck_http_request_duration_seconds") {
		t.Errorf("expected metrics exposition, got %d", rr.Code)
	}
}
