package server

import (
	"encoding/json"
	"log"
	"net/http"
	"path"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/easymake/clubportal/cmd/clubportal/internal/auth"
	"github.com/easymake/clubportal/cmd/clubportal/internal/gate"
)

// SessionResponse describes the caller's resolved session.
type SessionResponse struct {
	Authenticated bool       `json:"authenticated"`
	Subject       string     `json:"subject,omitempty"`
	Role          string     `json:"role"`
	ClubID        string     `json:"club_id,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

// PageResponse stands in for a rendered page. Rendering belongs to the
// frontend; the server only proves which page the caller reached.
type PageResponse struct {
	Page string `json:"page"`
	Path string `json:"path"`
	Role string `json:"role"`
}

// HealthResponse is the body of the health endpoint.
type HealthResponse struct {
	Status      string `json:"status"`
	AdminPrefix string `json:"admin_prefix"`
}

// HandleHealth reports that the server is up and where the admin console lives.
func HandleHealth(paths gate.Paths) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", AdminPrefix: paths.AdminPrefix})
	}
}

// HandleSession returns the session the middleware resolved for the request.
func HandleSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := auth.SessionFromContext(r.Context())

		resp := SessionResponse{
			Authenticated: session.Authenticated(),
			Subject:       session.Subject,
			Role:          session.Role.String(),
			ClubID:        session.ClubID,
		}
		if !session.ExpiresAt.IsZero() {
			exp := session.ExpiresAt.UTC()
			resp.ExpiresAt = &exp
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// HandleLogout clears the session cookie. Revoking the session itself is the
// identity provider's job.
func HandleLogout(cookieName string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{
			Name:     cookieName,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
		})
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("Logged out"))
	}
}

// MountPages registers placeholder handlers for the public site and the admin
// console. The gate middleware has already run by the time any of them is
// reached.
func MountPages(r chi.Router, paths gate.Paths) {
	r.Get("/", handlePage("home"))
	r.Get("/clubs", handlePage("clubs"))
	r.Get("/clubs/{clubID}", handlePage("club"))
	r.Get("/activities", handlePage("activities"))
	r.Get(paths.NotAuthorized, handlePage("not-authorized"))

	r.Get(paths.SignIn, handlePage("sign-in"))
	r.Get(paths.AdminHome, handlePage("admin-home"))
	r.Get(paths.SystemPrefix, handlePage("system"))
	r.Get(path.Join(paths.SystemPrefix, "*"), handlePage("system"))
	r.Get(paths.ClubPrefix, handlePage("my-club"))
	r.Get(path.Join(paths.ClubPrefix, "*"), handlePage("my-club"))
	if paths.AdminPrefix != paths.AdminHome {
		r.Get(paths.AdminPrefix, handlePage("admin"))
	}
	r.Get(path.Join(paths.AdminPrefix, "*"), handlePage("admin"))
}

func handlePage(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := auth.SessionFromContext(r.Context())
		writeJSON(w, http.StatusOK, PageResponse{
			Page: name,
			Path: r.URL.Path,
			Role: session.Role.String(),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("write response: %v", err)
	}
}
