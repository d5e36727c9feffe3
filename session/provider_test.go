package session

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triologic/medrec/testutils"
)

func TestProvideSessionManager(t *testing.T) {
	t.Run("memory store from config", func(t *testing.T) {
		cfg := testutils.GetTestConfig()

		manager, err := ProvideSessionManager(cfg, nil, nil)
		require.NoError(t, err)
		assert.NotNil(t, manager.Store)
		assert.Equal(t, cfg.Session.Name, manager.Cookie.Name)
		assert.Equal(t, cfg.Session.MaxAge, manager.Lifetime)
		assert.True(t, manager.Cookie.HttpOnly)
	})

	t.Run("explicit store option wins", func(t *testing.T) {
		store := NewMemoryStore()

		manager, err := ProvideSessionManager(testutils.GetTestConfig(), &Options{Store: store}, nil)
		require.NoError(t, err)
		assert.Equal(t, store, manager.Store)
	})

	t.Run("database store", func(t *testing.T) {
		cfg := testutils.GetTestConfig()
		cfg.Session.Store = "database"
		db := testutils.SetupTestDB(t)

		manager, err := ProvideSessionManager(cfg, nil, db)
		require.NoError(t, err)
		assert.NotNil(t, manager.Store)
	})

	t.Run("database store without database", func(t *testing.T) {
		cfg := testutils.GetTestConfig()
		cfg.Session.Store = "database"

		_, err := ProvideSessionManager(cfg, nil, nil)
		assert.ErrorContains(t, err, "requires database")
	})

	t.Run("unsupported store", func(t *testing.T) {
		cfg := testutils.GetTestConfig()
		cfg.Session.Store = "redis"

		_, err := ProvideSessionManager(cfg, nil, nil)
		assert.ErrorContains(t, err, "unsupported session store")
	})

	t.Run("same-site mapping", func(t *testing.T) {
		tests := map[string]http.SameSite{
			"strict":  http.SameSiteStrictMode,
			"lax":     http.SameSiteLaxMode,
			"none":    http.SameSiteNoneMode,
			"unknown": http.SameSiteLaxMode,
		}
		for value, want := range tests {
			cfg := testutils.GetTestConfig()
			cfg.Session.SameSite = value

			manager, err := ProvideSessionManager(cfg, nil, nil)
			require.NoError(t, err)
			assert.Equal(t, want, manager.Cookie.SameSite, "same-site %q", value)
		}
	})
}

func TestProvideSessionService(t *testing.T) {
	db := testutils.SetupTestDB(t, &DoctorSession{})
	manager, err := ProvideSessionManager(testutils.GetTestConfig(), &Options{Store: NewMemoryStore()}, nil)
	require.NoError(t, err)

	assert.NotNil(t, ProvideSessionService(db, manager))
	assert.Nil(t, ProvideSessionService(nil, manager))
	assert.Nil(t, ProvideSessionService(db, nil))
}
