package appointment

import (
	"github.com/triologic/medrec/services/logging"
	"github.com/triologic/medrec/services/patient"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func ProvideAppointmentService(db *gorm.DB, patientSvc *patient.Service, logger *logging.Service) *Service {
	return NewService(db, patientSvc, logger)
}

var Module = fx.Options(
	fx.Provide(ProvideAppointmentService),
)
