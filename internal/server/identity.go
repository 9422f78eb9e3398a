package server

import (
	"context"
	"net/http"

	"tailscale.com/client/local"
)

// UserInfo identifies the caller, from Tailscale whois when available.
type UserInfo struct {
	Login       string `json:"login"`
	DisplayName string `json:"display_name"`
}

type contextKey string

const userInfoKey contextKey = "userInfo"

func withUserInfo(ctx context.Context, info UserInfo) context.Context {
	return context.WithValue(ctx, userInfoKey, info)
}

// SetTailscale attaches a tsnet local client. Requests are then identified
// via whois on the remote address.
func (s *Server) SetTailscale(lc *local.Client) {
	s.lc = lc
}

// identify resolves the caller identity. Without a tsnet client every caller
// is the local dev user.
func (s *Server) identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.lc == nil {
			next.ServeHTTP(w, r)
			return
		}
		res, err := s.lc.WhoIs(r.Context(), r.RemoteAddr)
		if err != nil || res.UserProfile == nil {
			next.ServeHTTP(w, r)
			return
		}
		info := UserInfo{
			Login:       res.UserProfile.LoginName,
			DisplayName: res.UserProfile.DisplayName,
		}
		next.ServeHTTP(w, r.WithContext(withUserInfo(r.Context(), info)))
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	info, ok := r.Context().Value(userInfoKey).(UserInfo)
	if !ok {
		info = UserInfo{Login: "local", DisplayName: "Local Dev User"}
	}
	writeJSON(w, http.StatusOK, info)
}
