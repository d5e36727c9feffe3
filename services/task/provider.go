package task

import (
	"github.com/triologic/medrec/services/logging"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func ProvideTaskService(db *gorm.DB, logger *logging.Service) *Service {
	return NewService(db, logger)
}

var Module = fx.Options(
	fx.Provide(ProvideTaskService),
)
