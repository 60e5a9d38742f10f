package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sparkychildcharlie/tournament-engine/brackets"
	"github.com/sparkychildcharlie/tournament-engine/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapServiceErrorToHTTP(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"tournament not found", services.ErrTournamentNotFound, http.StatusNotFound},
		{"unknown handle", brackets.ErrUserNotAdded, http.StatusNotFound},
		{"duplicate participant", services.ErrParticipantConflict, http.StatusConflict},
		{"bracket already frozen", brackets.ErrBracketFrozen, http.StatusConflict},
		{"bracket not frozen", brackets.ErrBracketNotFrozen, http.StatusConflict},
		{"tournament not ended", brackets.ErrTournamentNotEnded, http.StatusConflict},
		{"no live bracket", services.ErrTournamentNotRunning, http.StatusConflict},
		{"tournament completed", services.ErrTournamentCompleted, http.StatusConflict},
		{"bad result token", brackets.ErrInvalidMatchResult, http.StatusBadRequest},
		{"match not playable", brackets.ErrInvalidMatch, http.StatusBadRequest},
		{"missing name", services.ErrTournamentNameRequired, http.StatusBadRequest},
		{"bad credentials", services.ErrAuthInvalidCredentials, http.StatusUnauthorized},
		{"forbidden", services.ErrForbiddenOperation, http.StatusForbidden},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			mapServiceErrorToHTTP(rec, req, tt.err)
			assert.Equal(t, tt.want, rec.Code)
			assert.Contains(t, rec.Body.String(), "error")
		})
	}
}

func TestReadJSONRejectsUnknownFields(t *testing.T) {
	var dst struct {
		Handle string `json:"handle"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"handle":"ann","extra":1}`))
	rec := httptest.NewRecorder()

	err := readJSON(rec, req, &dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown key")
}

func TestReadJSONRejectsEmptyBody(t *testing.T) {
	var dst struct{}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	rec := httptest.NewRecorder()

	err := readJSON(rec, req, &dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not be empty")
}

func TestReadJSONRejectsMultipleValues(t *testing.T) {
	var dst struct {
		Handle string `json:"handle"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"handle":"ann"}{"handle":"bob"}`))
	rec := httptest.NewRecorder()

	err := readJSON(rec, req, &dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "single JSON value")
}
