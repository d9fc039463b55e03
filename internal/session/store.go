// Package session is the single source of truth for "who is logged in" and
// the bearer token attached to every authenticated request.
//
// Login state is persisted under .bachadmin/session/ in one of two files:
// session.json survives until an explicit logout ("remember me"), while
// session.tmp.json is the non-remembered variant that the next hydration
// treats as second choice. Exactly one of the two exists after a login.
package session

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gusgushz/baches/internal/logbook"
	"github.com/gusgushz/baches/internal/model"
)

const (
	rememberedFile = "session.json"
	transientFile  = "session.tmp.json"
)

// ErrNoToken signals an operation that requires a session was attempted
// without one.
var ErrNoToken = errors.New("session: no hay sesión activa")

type persisted struct {
	User  *model.UserProfile `json:"user"`
	Token string             `json:"token"`
}

// Store holds the current user and token. Invariant: user and token are
// always both set or both empty; every mutation goes through Login/Logout.
type Store struct {
	dir string
	log *logbook.Logbook
	now func() time.Time

	mu        sync.RWMutex
	user      *model.UserProfile
	token     string
	hydrating bool
	hydrated  sync.Once
}

// NewStore creates a store that persists into dir. The store reports
// Hydrating() == true until Hydrate has run.
func NewStore(dir string, log *logbook.Logbook) *Store {
	return &Store{
		dir:       dir,
		log:       log.Scoped("session"),
		now:       time.Now,
		hydrating: true,
	}
}

// Hydrate restores a persisted session: the remembered file first, the
// transient file as fallback. Corrupt or missing files leave the store
// unauthenticated; hydration never fails the program. Runs at most once.
func (s *Store) Hydrate() {
	s.hydrated.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		defer func() { s.hydrating = false }()

		for _, name := range []string{rememberedFile, transientFile} {
			p, ok := s.readFile(name)
			if !ok {
				continue
			}
			if TokenExpired(p.Token, s.now()) {
				s.log.Warn("persisted token expired, discarding %s", name)
				continue
			}
			s.user = p.User
			s.token = p.Token
			s.log.Info("session restored for %s from %s", p.User.Email, name)
			return
		}
	})
}

func (s *Store) readFile(name string) (persisted, bool) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Warn("read %s: %v", name, err)
		}
		return persisted{}, false
	}
	var p persisted
	if err := json.Unmarshal(data, &p); err != nil {
		s.log.Warn("discarding corrupt %s: %v", name, err)
		return persisted{}, false
	}
	if p.User == nil || p.Token == "" {
		return persisted{}, false
	}
	return p, true
}

// Hydrating reports whether the one-time storage hydration has not finished
// yet. Guards must wait for false before deciding where to route.
func (s *Store) Hydrating() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hydrating
}

// Login stores the session in memory and persists it. With remember the
// durable file is written and the transient one removed; without remember,
// the reverse. Login itself does not fail: persistence problems are logged
// and the in-memory session stays valid for the life of the process.
func (s *Store) Login(user model.UserProfile, token string, remember bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := user
	s.user = &u
	s.token = token

	target, other := rememberedFile, transientFile
	if !remember {
		target, other = transientFile, rememberedFile
	}
	data, err := json.Marshal(persisted{User: &u, Token: token})
	if err == nil {
		if err := os.MkdirAll(s.dir, 0o755); err == nil {
			if err := os.WriteFile(filepath.Join(s.dir, target), data, 0o600); err != nil {
				s.log.Warn("persist session: %v", err)
			}
		}
	}
	_ = os.Remove(filepath.Join(s.dir, other))
	s.log.Info("login %s (remember=%t)", user.Email, remember)
}

// Logout removes both storage files, whichever of the two exists, and
// empties the in-memory session.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = os.Remove(filepath.Join(s.dir, rememberedFile))
	_ = os.Remove(filepath.Join(s.dir, transientFile))
	if s.user != nil {
		s.log.Info("logout %s", s.user.Email)
	}
	s.user = nil
	s.token = ""
}

// User returns a copy of the current user, or nil when logged out.
func (s *Store) User() *model.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Token returns the current bearer token. It is empty when logged out and
// also once the token's exp claim has passed, so requests with a dead token
// are refused before they leave the process.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if TokenExpired(s.token, s.now()) {
		return ""
	}
	return s.token
}

// Authenticated reports whether a usable session is present.
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.token != "" && !TokenExpired(s.token, s.now())
}

// TokenExpired inspects the token's exp claim without verifying the
// signature; this client only consumes tokens, the backend validates them.
// Tokens that don't parse or carry no exp are given the benefit of the
// doubt so an opaque token still works.
func TokenExpired(token string, now time.Time) bool {
	if token == "" {
		return true
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}
