// Package e2etests exercises a running API instance over HTTP. The tests are
// opt-in: set E2E_BASE_URL (and E2E_JWT_SIGNING_KEY matching the server's
// AUTH_JWT_SIGNING_KEY) to run them against a live stack.
package e2etests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const timeout = 5 * time.Second

var httpClient = &http.Client{Timeout: timeout}

type env struct {
	baseURL    string
	signingKey []byte
	issuer     string
	audience   string
}

func newEnv(t *testing.T) *env {
	t.Helper()

	baseURL := os.Getenv("E2E_BASE_URL")
	if baseURL == "" {
		t.Skip("E2E_BASE_URL not set; skipping end-to-end tests")
	}

	key := os.Getenv("E2E_JWT_SIGNING_KEY")
	if key == "" {
		t.Fatal("E2E_JWT_SIGNING_KEY must be set when E2E_BASE_URL is")
	}

	issuer := os.Getenv("E2E_JWT_ISSUER")
	if issuer == "" {
		issuer = "webapp"
	}

	audience := os.Getenv("E2E_JWT_AUDIENCE")
	if audience == "" {
		audience = "webapp-api"
	}

	return &env{baseURL: baseURL, signingKey: []byte(key), issuer: issuer, audience: audience}
}

func (e *env) token(t *testing.T, userID uuid.UUID) string {
	t.Helper()

	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		Issuer:    e.issuer,
		Audience:  []string{e.audience},
		ID:        uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(e.signingKey)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	return signed
}

func (e *env) post(t *testing.T, path, token string, body any) (int, map[string]any) {
	t.Helper()

	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, e.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return e.do(t, req)
}

func (e *env) get(t *testing.T, path, token string) (int, map[string]any) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, e.baseURL+path, nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return e.do(t, req)
}

func (e *env) do(t *testing.T, req *http.Request) (int, map[string]any) {
	t.Helper()

	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatalf("request %s: %v", req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}

	var body map[string]any
	if len(raw) > 0 {
		if uerr := json.Unmarshal(raw, &body); uerr != nil {
			t.Fatalf("decode body %q: %v", raw, uerr)
		}
	}

	return resp.StatusCode, body
}

func TestE2E_CreditFlow(t *testing.T) {
	e := newEnv(t)

	// Fresh user per run so reruns don't interfere with each other.
	userID := uuid.New()
	token := e.token(t, userID)

	t.Run("submit_without_credit_record_fails", func(t *testing.T) {
		code, body := e.post(t, "/submit", token, map[string]string{
			"userId":   userID.String(),
			"formData": "first attempt",
		})
		if code != http.StatusBadRequest {
			t.Fatalf("want 400 before any top-up, got %d (%v)", code, body)
		}
	})

	t.Run("topup_initializes_and_credits", func(t *testing.T) {
		code, body := e.post(t, "/topup", token, map[string]any{
			"userId": userID.String(),
			"amount": 2,
		})
		if code != http.StatusOK {
			t.Fatalf("top-up: want 200, got %d (%v)", code, body)
		}
		if got := body["newCreditBalance"]; got != float64(2) {
			t.Fatalf("newCreditBalance: want 2, got %v", got)
		}
	})

	t.Run("submit_consumes_one_credit", func(t *testing.T) {
		code, body := e.post(t, "/submit", token, map[string]string{
			"userId":   userID.String(),
			"formData": "hello from e2e",
		})
		if code != http.StatusOK {
			t.Fatalf("submit: want 200, got %d (%v)", code, body)
		}
		if got := body["creditBalance"]; got != float64(1) {
			t.Fatalf("creditBalance after submit: want 1, got %v", got)
		}
	})

	t.Run("balance_reflects_charges", func(t *testing.T) {
		code, body := e.get(t, "/balance", token)
		if code != http.StatusOK {
			t.Fatalf("balance: want 200, got %d (%v)", code, body)
		}
		if got := body["creditBalance"]; got != float64(1) {
			t.Fatalf("creditBalance: want 1, got %v", got)
		}
	})

	t.Run("exhausted_balance_rejects_submit", func(t *testing.T) {
		code, _ := e.post(t, "/submit", token, map[string]string{
			"userId":   userID.String(),
			"formData": "second",
		})
		if code != http.StatusOK {
			t.Fatalf("second submit should succeed, got %d", code)
		}

		code, body := e.post(t, "/submit", token, map[string]string{
			"userId":   userID.String(),
			"formData": "third",
		})
		if code != http.StatusBadRequest {
			t.Fatalf("want 400 on exhausted balance, got %d (%v)", code, body)
		}
	})

	t.Run("submissions_listed_newest_first", func(t *testing.T) {
		code, body := e.get(t, "/submissions", token)
		if code != http.StatusOK {
			t.Fatalf("submissions: want 200, got %d (%v)", code, body)
		}

		subs, ok := body["submissions"].([]any)
		if !ok || len(subs) != 2 {
			t.Fatalf("want 2 submissions, got %v", body["submissions"])
		}
	})
}

func TestE2E_AuthRequired(t *testing.T) {
	e := newEnv(t)
	userID := uuid.New()

	code, _ := e.post(t, "/submit", "", map[string]string{
		"userId":   userID.String(),
		"formData": "x",
	})
	if code != http.StatusUnauthorized {
		t.Fatalf("no token: want 401, got %d", code)
	}

	// A valid token for a different user must not act on this user.
	otherToken := e.token(t, uuid.New())

	code, _ = e.post(t, "/submit", otherToken, map[string]string{
		"userId":   userID.String(),
		"formData": "x",
	})
	if code != http.StatusUnauthorized {
		t.Fatalf("mismatched user: want 401, got %d", code)
	}
}

func TestE2E_Healthz(t *testing.T) {
	e := newEnv(t)

	resp, err := httpClient.Get(fmt.Sprintf("%s/healthz", e.baseURL))
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz: want 200, got %d", resp.StatusCode)
	}
}
