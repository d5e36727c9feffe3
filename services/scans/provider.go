package scans

import (
	"github.com/triologic/medrec/config"
	"github.com/triologic/medrec/services/logging"
	"github.com/triologic/medrec/services/patient"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func ProvideStore(cfg *config.Config) *Store {
	return NewStore(cfg.Uploads.Dir)
}

func ProvideScanService(cfg *config.Config, db *gorm.DB, store *Store, patientSvc *patient.Service, logger *logging.Service) *Service {
	return NewService(cfg, db, store, patientSvc, logger)
}

func WireFileStore(patientSvc *patient.Service, store *Store) {
	patientSvc.SetFileStore(store)
}

var Module = fx.Options(
	fx.Provide(ProvideStore),
	fx.Provide(ProvideScanService),
	fx.Invoke(WireFileStore),
)
