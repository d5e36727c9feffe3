package patient

import (
	"github.com/triologic/medrec/config"
	"github.com/triologic/medrec/services/logging"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func ProvidePatientService(cfg *config.Config, db *gorm.DB, logger *logging.Service) *Service {
	return NewService(cfg, db, logger)
}

var Module = fx.Options(
	fx.Provide(ProvidePatientService),
)
