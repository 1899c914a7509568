package server

import (
	"fmt"
	"net/http"

	"github.com/teemow/meetsched/internal/logging"
)

// The auth pages are meant for the calendar owner's browser during the
// one-time consent flow, so they render minimal HTML rather than JSON.

const authPage = `<html><body style="font-family: sans-serif; padding: 40px; text-align: center;">
<h1%s>%s</h1>
<p>%s</p>
</body></html>`

func writeAuthPage(w http.ResponseWriter, status int, heading, headingStyle, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, authPage, headingStyle, heading, body)
}

func (s *Server) handleAuthSetup(w http.ResponseWriter, r *http.Request) {
	if s.auth.Connected() {
		writeAuthPage(w, http.StatusOK,
			"Already Connected!", "",
			`Your Google Calendar is connected. <a href="/auth/disconnect">Disconnect</a>`)
		return
	}
	http.Redirect(w, r, s.auth.AuthURL(), http.StatusFound)
}

func (s *Server) handleAuthCallback(w http.ResponseWriter, r *http.Request) {
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		writeAuthPage(w, http.StatusBadRequest,
			"Authorization Failed", "",
			"The consent screen reported: "+errParam)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		writeAuthPage(w, http.StatusBadRequest,
			"Authorization Failed", "",
			"No authorization code in callback.")
		return
	}

	if err := s.auth.Exchange(r.Context(), code); err != nil {
		s.logger.Error("auth code exchange failed", logging.Err(err))
		writeAuthPage(w, http.StatusBadGateway,
			"Error", "",
			"Could not complete the calendar connection. Try again from the setup page.")
		return
	}

	writeAuthPage(w, http.StatusOK,
		"Success!", ` style="color: green;"`,
		"Google Calendar connected. You can now accept bookings.")
}

func (s *Server) handleAuthDisconnect(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Disconnect(); err != nil {
		s.logger.Error("disconnect failed", logging.Err(err))
		writeAuthPage(w, http.StatusInternalServerError,
			"Error", "",
			"Could not remove the stored credential.")
		return
	}
	writeAuthPage(w, http.StatusOK,
		"Disconnected", "",
		`<a href="/auth/setup">Reconnect</a>`)
}
