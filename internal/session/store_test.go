package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gusgushz/baches/internal/model"
)

func testUser() model.UserProfile {
	return model.UserProfile{ID: "1", Role: model.RoleAdmin, Name: "Gus", Lastname: "Pech", Email: "a@b.com"}
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1",
		"exp": exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func TestLoginLogoutInvariant(t *testing.T) {
	store := NewStore(t.TempDir(), nil)
	store.Hydrate()

	check := func(step string) {
		t.Helper()
		hasUser := store.User() != nil
		hasToken := store.Token() != ""
		if hasUser != hasToken {
			t.Fatalf("%s: user and token out of sync (user=%t token=%t)", step, hasUser, hasToken)
		}
	}

	check("initial")
	store.Login(testUser(), "abc", true)
	check("after login")
	if !store.Authenticated() {
		t.Fatal("expected authenticated after login")
	}
	store.Logout()
	check("after logout")
	store.Logout() // double logout must be harmless
	check("after double logout")
	store.Login(testUser(), "xyz", false)
	check("after second login")
}

func TestStorageExclusivity(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, nil)
	store.Hydrate()

	store.Login(testUser(), "tok-remember", true)
	if _, err := os.Stat(filepath.Join(dir, rememberedFile)); err != nil {
		t.Fatalf("remembered file should exist: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, transientFile)); !os.IsNotExist(err) {
		t.Fatalf("transient file should be absent after remembered login")
	}

	store.Login(testUser(), "tok-temp", false)
	if _, err := os.Stat(filepath.Join(dir, transientFile)); err != nil {
		t.Fatalf("transient file should exist: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, rememberedFile)); !os.IsNotExist(err) {
		t.Fatalf("remembered file should be removed after non-remembered login")
	}

	store.Logout()
	for _, name := range []string{rememberedFile, transientFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
			t.Fatalf("%s should be gone after logout", name)
		}
	}
}

func TestHydrateRestoresRememberedSession(t *testing.T) {
	dir := t.TempDir()
	first := NewStore(dir, nil)
	first.Hydrate()
	first.Login(testUser(), signedToken(t, time.Now().Add(time.Hour)), true)

	second := NewStore(dir, nil)
	if !second.Hydrating() {
		t.Fatal("store should report hydrating before Hydrate")
	}
	second.Hydrate()
	if second.Hydrating() {
		t.Fatal("store should not report hydrating after Hydrate")
	}
	if !second.Authenticated() {
		t.Fatal("expected restored session")
	}
	if second.User().ID != "1" {
		t.Fatalf("restored user id = %q", second.User().ID)
	}
}

func TestHydrateFallsBackToTransient(t *testing.T) {
	dir := t.TempDir()
	first := NewStore(dir, nil)
	first.Hydrate()
	first.Login(testUser(), "opaque-token", false)

	second := NewStore(dir, nil)
	second.Hydrate()
	if !second.Authenticated() {
		t.Fatal("expected transient session to be restored")
	}
	if second.Token() != "opaque-token" {
		t.Fatalf("token = %q", second.Token())
	}
}

func TestHydrateToleratesCorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, rememberedFile), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	store := NewStore(dir, nil)
	store.Hydrate()
	if store.Authenticated() {
		t.Fatal("corrupt session file must leave the store unauthenticated")
	}
}

func TestHydrateDiscardsExpiredToken(t *testing.T) {
	dir := t.TempDir()
	u := testUser()
	data, err := json.Marshal(persisted{User: &u, Token: signedToken(t, time.Now().Add(-time.Hour))})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, rememberedFile), data, 0o600); err != nil {
		t.Fatal(err)
	}
	store := NewStore(dir, nil)
	store.Hydrate()
	if store.Authenticated() {
		t.Fatal("expired persisted token must not restore a session")
	}
}

func TestHydrateRunsOnce(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, nil)
	store.Hydrate()
	store.Login(testUser(), "abc", true)
	// A second Hydrate must not clobber the live session.
	store.Hydrate()
	if store.Token() != "abc" {
		t.Fatalf("second hydrate changed state, token = %q", store.Token())
	}
}

func TestTokenHiddenOnceExpired(t *testing.T) {
	store := NewStore(t.TempDir(), nil)
	store.Hydrate()
	now := time.Now()
	store.Login(testUser(), signedToken(t, now.Add(time.Minute)), false)
	if store.Token() == "" {
		t.Fatal("fresh token should be visible")
	}
	store.now = func() time.Time { return now.Add(2 * time.Minute) }
	if store.Token() != "" {
		t.Fatal("expired token must not be handed out")
	}
	if store.Authenticated() {
		t.Fatal("session with an expired token is not authenticated")
	}
}

func TestTokenExpired(t *testing.T) {
	now := time.Now()
	if TokenExpired(signedToken(t, now.Add(time.Hour)), now) {
		t.Fatal("future token reported expired")
	}
	if !TokenExpired(signedToken(t, now.Add(-time.Minute)), now) {
		t.Fatal("past token reported valid")
	}
	if TokenExpired("opaque-non-jwt-token", now) {
		t.Fatal("opaque token must be given the benefit of the doubt")
	}
	if !TokenExpired("", now) {
		t.Fatal("empty token is always expired")
	}
}
