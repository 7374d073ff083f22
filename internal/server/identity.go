package server

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"tailscale.com/client/tailscale/apitype"
)

type ctxKey int

const (
	userIDKey ctxKey = iota
	userInfoKey
)

// UserInfo is the caller identity shown by /api/v1/me.
type UserInfo struct {
	Login       string `json:"login"`
	DisplayName string `json:"display_name"`
}

var devUser = UserInfo{Login: "local", DisplayName: "Local Dev User"}

// WhoIser resolves a tailnet peer address to its owner.
type WhoIser interface {
	WhoIs(ctx context.Context, remoteAddr string) (*apitype.WhoIsResponse, error)
}

// userCache remembers resolved logins so seeding runs once per process.
type userCache struct {
	mu  sync.RWMutex
	ids map[string]int
}

func newUserCache() *userCache {
	return &userCache{ids: make(map[string]int)}
}

func (c *userCache) get(login string) (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.ids[login]
	return id, ok
}

func (c *userCache) put(login string, id int) {
	c.mu.Lock()
	c.ids[login] = id
	c.mu.Unlock()
}

// Identity resolves the caller to a user ID. Without Tailscale every request
// is the local dev user.
func (s *Server) Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info, err := s.callerInfo(r)
		if err != nil {
			s.log.Warn("identity lookup failed", "remote", r.RemoteAddr, "error", err)
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unknown caller"})
			return
		}

		id, ok := s.users.get(info.Login)
		if !ok {
			id, err = s.svc.ResolveUser(r.Context(), info.Login, info.DisplayName)
			if err != nil {
				s.log.Error("resolving user", "login", info.Login, "error", err)
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "resolving user failed"})
				return
			}
			s.users.put(info.Login, id)
		}

		if sw, ok := w.(*statusWriter); ok {
			sw.userID = id
		}
		ctx := context.WithValue(r.Context(), userIDKey, id)
		ctx = context.WithValue(ctx, userInfoKey, info)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) callerInfo(r *http.Request) (UserInfo, error) {
	if s.whois == nil {
		return devUser, nil
	}
	who, err := s.whois.WhoIs(r.Context(), r.RemoteAddr)
	if err != nil {
		return UserInfo{}, err
	}
	if who.UserProfile == nil || who.UserProfile.LoginName == "" {
		return UserInfo{}, errors.New("peer has no user profile")
	}
	return UserInfo{Login: who.UserProfile.LoginName, DisplayName: who.UserProfile.DisplayName}, nil
}

// userIDFromContext returns the resolved user, or 0 when Identity did not run.
func userIDFromContext(r *http.Request) int {
	if id, ok := r.Context().Value(userIDKey).(int); ok {
		return id
	}
	return 0
}

func userInfoFromContext(r *http.Request) UserInfo {
	if info, ok := r.Context().Value(userInfoKey).(UserInfo); ok {
		return info
	}
	return devUser
}

// mustUserID writes 401 and returns false when no user was resolved.
func mustUserID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id := userIDFromContext(r)
	if id == 0 {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "no identity"})
		return 0, false
	}
	return id, true
}
