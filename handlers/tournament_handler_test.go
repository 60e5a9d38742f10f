package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/sparkychildcharlie/tournament-engine/middleware"
	"github.com/sparkychildcharlie/tournament-engine/models"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "handler-test-secret"

func signedToken(t *testing.T, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": 1,
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return token
}

func TestMutatingHandlersRequireOrganizerRole(t *testing.T) {
	// The role gate rejects before the service is touched, so a nil
	// service is safe here.
	h := NewTournamentHandler(nil)

	endpoints := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"create", h.Create},
		{"add participant", h.AddParticipant},
		{"remove participant", h.RemoveParticipant},
		{"substitute participant", h.SubstituteParticipant},
		{"set busy", h.SetParticipantBusy},
		{"freeze", h.Freeze},
		{"submit result", h.SubmitResult},
		{"disqualify", h.Disqualify},
	}

	token := signedToken(t, models.RolePlayer)
	for _, ep := range endpoints {
		t.Run(ep.name, func(t *testing.T) {
			wrapped := middleware.Authenticate(testJWTSecret)(ep.handler)
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}"))
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()
			wrapped.ServeHTTP(rec, req)
			require.Equal(t, http.StatusForbidden, rec.Code)
		})
	}
}

func TestOrganizerPassesRoleGate(t *testing.T) {
	h := NewTournamentHandler(nil)
	wrapped := middleware.Authenticate(testJWTSecret)(http.HandlerFunc(h.Create))

	// An organizer clears the gate and fails later, on the malformed
	// body, proving the rejection above is the role check.
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("not json"))
	req.Header.Set("Authorization", "Bearer "+signedToken(t, models.RoleOrganizer))
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
