package account

import (
	"github.com/triologic/medrec/config"
	"github.com/triologic/medrec/services/logging"
	"github.com/triologic/medrec/services/mail"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func ProvideAccountService(cfg *config.Config, db *gorm.DB, logger *logging.Service) *Service {
	return NewService(cfg, db, logger)
}

type OptionalMailService struct {
	fx.In
	MailService *mail.Service `optional:"true"`
}

func WireMailService(svc *Service, opt OptionalMailService) {
	if opt.MailService != nil {
		svc.SetMailService(opt.MailService)
	}
}

var Module = fx.Options(
	fx.Provide(ProvideAccountService),
	fx.Invoke(WireMailService),
)
