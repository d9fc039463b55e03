package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gusgushz/baches/internal/model"
)

func staticToken(tok string) TokenSource {
	return func() string { return tok }
}

func TestEndpointNormalization(t *testing.T) {
	cases := []struct {
		base string
		path string
		want string
	}{
		{"https://x.test", "/vehicles", "https://x.test/api/vehicles"},
		{"https://x.test/", "/vehicles", "https://x.test/api/vehicles"},
		{"https://x.test/api", "/vehicles", "https://x.test/api/vehicles"},
		{"https://x.test/api/", "/vehicles", "https://x.test/api/vehicles"},
		{"https://x.test/api/vehicles", "/vehicles", "https://x.test/api/vehicles"},
		{"https://x.test/vehicles", "/vehicles", "https://x.test/vehicles"},
		{"https://x.test/api", "/vehicles/v1", "https://x.test/api/vehicles/v1"},
		{"https://x.test/api/vehicles", "/vehicles/v1", "https://x.test/api/vehicles/v1"},
		{"https://x.test", "/auth/login", "https://x.test/api/auth/login"},
	}
	for _, tc := range cases {
		c := New(tc.base, nil, nil)
		if got := c.endpoint(tc.path); got != tc.want {
			t.Fatalf("endpoint(%q, %q) = %q, want %q", tc.base, tc.path, got, tc.want)
		}
	}
}

func TestLoginSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method %s", r.Method)
		}
		w.Write([]byte(`{"message":"Login exitoso","data":{"id":"1","role":"admin","name":"Gus","lastname":"Pech","email":"a@b.com"},"token":"abc"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, nil, nil)
	user, token, err := c.Login(context.Background(), "a@b.com", "Secret1!")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.ID != "1" || user.Role != model.RoleAdmin {
		t.Fatalf("unexpected user: %+v", user)
	}
	if token != "abc" {
		t.Fatalf("token = %q, want abc", token)
	}
}

func TestLoginRefusesWorkerRole(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"Login exitoso","data":{"id":"9","role":"worker","name":"Luis"},"token":"abc"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, nil, nil)
	_, _, err := c.Login(context.Background(), "w@b.com", "Secret1!")
	if !errors.Is(err, ErrWorkerRole) {
		t.Fatalf("expected ErrWorkerRole, got %v", err)
	}
}

func TestLoginWithoutNetworkReportsOffline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := New(srv.URL, nil, nil)
	_, _, err := c.Login(context.Background(), "a@b.com", "Secret1!")
	if !errors.Is(err, ErrOffline) {
		t.Fatalf("expected ErrOffline, got %v", err)
	}
}

func TestLoginFailureEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"Credenciales incorrectas","error":"invalid credentials"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, nil, nil)
	_, _, err := c.Login(context.Background(), "a@b.com", "wrong")
	if err == nil || err.Error() != "invalid credentials" {
		t.Fatalf("expected error field to win, got %v", err)
	}
}

func TestErrorMessageExtraction(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"message field", 400, `{"message":"tiene una asignación activa"}`, "tiene una asignación activa"},
		{"error field", 400, `{"error":"boom"}`, "boom"},
		{"raw text", 500, `backend exploded`, "backend exploded"},
		{"empty body", 503, ``, "Error 503"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := New(srv.URL, staticToken("tok"), nil)
			err := c.DeleteWorker(context.Background(), "w1")
			if err == nil || err.Error() != tc.want {
				t.Fatalf("error = %v, want %q", err, tc.want)
			}
		})
	}
}

func TestAuthenticatedCallWithoutTokenNeverHitsNetwork(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := New(srv.URL, staticToken(""), nil)
	if _, err := c.Workers(context.Background()); !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}
	if called {
		t.Fatal("request must not leave the process without a token")
	}
}

func TestAuthorizationAndRequestIDHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Fatalf("Authorization = %q", got)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Fatal("X-Request-ID missing")
		}
		w.Write([]byte(`{"workers":[]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, staticToken("tok-1"), nil)
	if _, err := c.Workers(context.Background()); err != nil {
		t.Fatalf("workers: %v", err)
	}
}

func TestReportsPagination(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("limit"); got != "50" {
			t.Fatalf("limit = %q", got)
		}
		if got := r.URL.Query().Get("skip"); got != "100" {
			t.Fatalf("skip = %q", got)
		}
		w.Write([]byte(`{"reports":[{"_id":"r1","severity":"alta"}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, staticToken("tok"), nil)
	reports, err := c.Reports(context.Background(), 50, 100)
	if err != nil {
		t.Fatalf("reports: %v", err)
	}
	if len(reports) != 1 || reports[0].Severity != model.SeverityHigh {
		t.Fatalf("unexpected reports: %+v", reports)
	}
}

func TestWorkersListNormalizesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"users":[{"_id":"w1","fullname":"Ana","role":"worker"}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, staticToken("tok"), nil)
	workers, err := c.Workers(context.Background())
	if err != nil {
		t.Fatalf("workers: %v", err)
	}
	if len(workers) != 1 || workers[0].ID != "w1" || workers[0].Name != "Ana" {
		t.Fatalf("unexpected workers: %+v", workers)
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("Secret1!"); err != nil {
		t.Fatalf("valid password rejected: %v", err)
	}
	for _, bad := range []string{"short1!", "alllowercase1!", "ALLUPPER1!", "NoDigits!!", "NoSymbol11"} {
		if err := ValidatePassword(bad); err == nil {
			t.Fatalf("password %q should be rejected", bad)
		}
	}
}

func TestCreateWorkerValidatesBeforeNetwork(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := New(srv.URL, staticToken("tok"), nil)
	err := c.CreateWorker(context.Background(), WorkerInput{
		Name: "Ana", Lastname: "Uc", Email: "ana@b.com", Password: "weak",
	})
	if err == nil {
		t.Fatal("weak password must block the submit")
	}
	if called {
		t.Fatal("validation failure must not reach the network")
	}
}
