package app

import (
	"fmt"

	"github.com/triologic/medrec/config"
	"github.com/triologic/medrec/database"
	"github.com/triologic/medrec/middleware/ratelimit"
	"github.com/triologic/medrec/server"
	"github.com/triologic/medrec/services/logging"
	"github.com/triologic/medrec/session"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type AppBuilder struct {
	config    *config.Config
	services  map[string]bool
	models    []any
	fxOptions []fx.Option
	errors    []error
}

func NewApp() *AppBuilder {
	return &AppBuilder{
		services:  make(map[string]bool),
		models:    make([]any, 0),
		fxOptions: make([]fx.Option, 0),
		errors:    make([]error, 0),
	}
}

func (b *AppBuilder) WithConfig(cfg *config.Config) *AppBuilder {
	if cfg == nil {
		b.addError("config cannot be nil")
		return b
	}
	b.config = cfg
	return b
}

func (b *AppBuilder) WithAutoConfig() *AppBuilder {
	cfg := &config.Config{}
	if err := config.LoadConfig(cfg); err != nil {
		b.addError(fmt.Sprintf("failed to load config: %v", err))
		return b
	}
	b.config = cfg
	return b
}

func (b *AppBuilder) WithDatabase(models ...any) *AppBuilder {
	b.services["database"] = true
	b.models = append(b.models, models...)
	return b
}

func (b *AppBuilder) WithSessions(opts ...*session.Options) *AppBuilder {
	b.services["sessions"] = true
	b.services["database"] = true

	if len(opts) > 0 {
		b.fxOptions = append(b.fxOptions, fx.Supply(opts[0]))
	} else {
		var nilOpts *session.Options
		b.fxOptions = append(b.fxOptions, fx.Supply(nilOpts))
	}
	return b
}

func (b *AppBuilder) WithFxOptions(opts ...fx.Option) *AppBuilder {
	b.fxOptions = append(b.fxOptions, opts...)
	return b
}

func (b *AppBuilder) Build() (*App, error) {
	if len(b.errors) > 0 {
		return nil, fmt.Errorf("configuration errors: %v", b.errors)
	}

	if b.config == nil {
		b.WithAutoConfig()
		if len(b.errors) > 0 {
			return nil, fmt.Errorf("configuration errors: %v", b.errors)
		}
	}

	logger, err := b.createLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	var db *gorm.DB
	if b.services["database"] {
		modelsOpt := &database.ModelsOption{}
		if len(b.models) > 0 {
			modelsOpt = database.WithModels(b.models...)
		}

		db, err = database.ProvideDatabase(*b.config, modelsOpt)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		logger.Infof("database connected (driver=%s)", b.config.Database.Driver)
	}

	options := []fx.Option{
		fx.Supply(b.config),
		fx.Supply(logger),
		fx.NopLogger,
	}
	if db != nil {
		options = append(options, fx.Supply(db))
	}

	options = append(options, server.NewProvider())
	options = append(options, ratelimit.Module)

	if b.services["sessions"] {
		options = append(options, session.Module)
	}

	options = append(options, b.fxOptions...)

	app := &App{
		config: b.config,
		logger: logger,
		db:     db,
	}

	options = append(options, fx.Invoke(func(srv *server.Server) {
		app.server = srv
	}))

	app.fx = fx.New(options...)
	return app, nil
}

func (b *AppBuilder) addError(msg string) {
	b.errors = append(b.errors, fmt.Errorf("%s", msg))
}

func (b *AppBuilder) createLogger() (*logging.Service, error) {
	if b.config == nil {
		return nil, fmt.Errorf("config required for logger creation")
	}

	return logging.NewService(logging.Config{
		Level:      logging.LogLevel(b.config.Log.Level),
		Format:     b.config.Log.Format,
		OutputPath: b.config.Log.Output,
	})
}
