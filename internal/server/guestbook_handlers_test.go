package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkbase/inkbase/internal/models"
)

func TestGuestbookSignAndList(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/guestbook", "", models.CreateGuestbookEntryRequest{
		Name:    "visitor",
		Message: "hello there",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, "/guestbook", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	entries := decodeData[[]*models.GuestbookEntry](t, w)
	require.Len(t, entries, 1)
	assert.Equal(t, "visitor", entries[0].Name)
	assert.Equal(t, "hello there", entries[0].Message)
}

func TestGuestbookValidation(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/guestbook", "", models.CreateGuestbookEntryRequest{Message: "anonymous"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGuestbookDisabledByFlag(t *testing.T) {
	env := newTestEnv(t)
	adminToken, _ := env.registerAndLogin(t, "root", "root@example.com")

	disabled := false
	w := env.do(t, http.MethodPut, "/feature-flags/"+models.FlagGuestbook, adminToken, models.UpdateFeatureFlagRequest{Enabled: &disabled})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/guestbook", "", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPost, "/guestbook", "", models.CreateGuestbookEntryRequest{Name: "v", Message: "m"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}
