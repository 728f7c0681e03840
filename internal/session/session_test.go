package session

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickbite/internal/model"
)

func openTempStore(t *testing.T, path string) *Store {
	t.Helper()
	store, err := OpenStore(path)
	require.NoError(t, err)
	return store
}

func mintToken(t *testing.T, userID, name string, role model.Role) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID,
		"name": name,
		"role": string(role),
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte("session-test-secret"))
	require.NoError(t, err)
	return signed
}

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	store := openTempStore(t, path)
	defer store.Close()

	got, err := store.Get("missing")
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, store.Set("city", "Mumbai"))
	require.NoError(t, store.Set("city", "Pune")) // upsert

	got, err = store.Get("city")
	require.NoError(t, err)
	assert.Equal(t, "Pune", got)

	require.NoError(t, store.Delete("city"))
	got, err = store.Get("city")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSessionSetTokenParsesClaims(t *testing.T) {
	store := openTempStore(t, filepath.Join(t.TempDir(), "state.db"))
	s, err := New(store)
	require.NoError(t, err)
	defer s.Close()

	assert.False(t, s.Authenticated())

	tok := mintToken(t, "u1", "Ravi", model.RoleCustomer)
	require.NoError(t, s.SetToken(tok))

	assert.True(t, s.Authenticated())
	assert.Equal(t, tok, s.Token())
	c := s.Claims()
	assert.Equal(t, "u1", c.UserID)
	assert.Equal(t, "Ravi", c.Name)
	assert.Equal(t, model.RoleCustomer, c.Role)
}

func TestSessionRejectsMalformedToken(t *testing.T) {
	store := openTempStore(t, filepath.Join(t.TempDir(), "state.db"))
	s, err := New(store)
	require.NoError(t, err)
	defer s.Close()

	require.Error(t, s.SetToken("not-a-jwt"))
	assert.False(t, s.Authenticated())
}

func TestSessionPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	tok := mintToken(t, "u1", "Ravi", model.RoleCustomer)

	s, err := New(openTempStore(t, path))
	require.NoError(t, err)
	require.NoError(t, s.SetToken(tok))
	require.NoError(t, s.SetSelectedCity("Mumbai"))
	require.NoError(t, s.Close())

	// fresh process: state comes back from disk
	s2, err := New(openTempStore(t, path))
	require.NoError(t, err)
	defer s2.Close()

	assert.Equal(t, tok, s2.Token())
	assert.Equal(t, "u1", s2.Claims().UserID)
	city, err := s2.SelectedCity()
	require.NoError(t, err)
	assert.Equal(t, "Mumbai", city)
}

func TestSessionDiscardsMalformedPersistedToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	store := openTempStore(t, path)
	require.NoError(t, store.Set("token", "garbage"))
	require.NoError(t, store.Close())

	s, err := New(openTempStore(t, path))
	require.NoError(t, err, "a stale token must not block startup")
	defer s.Close()
	assert.False(t, s.Authenticated())

	// and it was scrubbed from disk
	got, err := s.store.Get("token")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSessionLogoutClearsEverything(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	s, err := New(openTempStore(t, path))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SetToken(mintToken(t, "u1", "Ravi", model.RoleCustomer)))
	require.NoError(t, s.Logout())

	assert.False(t, s.Authenticated())
	assert.Empty(t, s.Claims().UserID)
	got, err := s.store.Get("token")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSessionExpireMatchesLogout(t *testing.T) {
	s, err := New(openTempStore(t, filepath.Join(t.TempDir(), "state.db")))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SetToken(mintToken(t, "u1", "Ravi", model.RoleCustomer)))
	s.Expire()

	assert.False(t, s.Authenticated())
	got, err := s.store.Get("token")
	require.NoError(t, err)
	assert.Empty(t, got)
}
