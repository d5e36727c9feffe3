package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triologic/medrec/services/account"
	"github.com/triologic/medrec/session"
	"github.com/triologic/medrec/testutils"
)

func TestNewApp(t *testing.T) {
	builder := NewApp()

	require.NotNil(t, builder)
	assert.Empty(t, builder.services)
	assert.Empty(t, builder.models)
	assert.Empty(t, builder.fxOptions)
	assert.Empty(t, builder.errors)
}

func TestAppBuilder_WithConfig(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		cfg := testutils.GetTestConfig()
		builder := NewApp()

		result := builder.WithConfig(cfg)

		assert.Equal(t, builder, result)
		assert.Equal(t, cfg, builder.config)
	})

	t.Run("nil config", func(t *testing.T) {
		builder := NewApp().WithConfig(nil)

		assert.Nil(t, builder.config)
		require.Len(t, builder.errors, 1)
		assert.Contains(t, builder.errors[0].Error(), "config cannot be nil")

		_, err := builder.Build()
		assert.ErrorContains(t, err, "configuration errors")
	})
}

func TestAppBuilder_WithDatabase(t *testing.T) {
	builder := NewApp().WithDatabase(&account.Doctor{}, &account.VerificationCode{})

	assert.True(t, builder.services["database"])
	assert.Len(t, builder.models, 2)
}

func TestAppBuilder_WithSessions(t *testing.T) {
	t.Run("default options", func(t *testing.T) {
		builder := NewApp().WithSessions()

		assert.True(t, builder.services["sessions"])
		assert.True(t, builder.services["database"], "sessions imply database")
		assert.Len(t, builder.fxOptions, 1)
	})

	t.Run("explicit store", func(t *testing.T) {
		builder := NewApp().WithSessions(&session.Options{Store: session.NewMemoryStore()})
		assert.Len(t, builder.fxOptions, 1)
	})
}

func TestAppBuilder_Build(t *testing.T) {
	t.Run("full build", func(t *testing.T) {
		cfg := testutils.GetTestConfig()

		application, err := NewApp().
			WithConfig(cfg).
			WithDatabase(&account.Doctor{}).
			WithSessions(&session.Options{Store: session.NewMemoryStore()}).
			Build()
		require.NoError(t, err)

		assert.Equal(t, cfg, application.Config())
		assert.NotNil(t, application.Logger())
		require.NotNil(t, application.DB())
		assert.True(t, application.DB().Migrator().HasTable(&account.Doctor{}))
	})

	t.Run("without database", func(t *testing.T) {
		application, err := NewApp().WithConfig(testutils.GetTestConfig()).Build()
		require.NoError(t, err)
		assert.Nil(t, application.DB())
	})
}
