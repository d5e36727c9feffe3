package intake

import (
	"time"

	"github.com/triologic/medrec/services/logging"
	"github.com/triologic/medrec/services/patient"
	"github.com/triologic/medrec/services/scans"
	"go.uber.org/fx"
)

func ProvideIntakeService(patientSvc *patient.Service, scanSvc *scans.Service, logger *logging.Service) *Service {
	return NewService(patientSvc, scanSvc, logger)
}

func StartPruneWorker(svc *Service) {
	svc.StartPruneWorker(time.Hour)
}

var Module = fx.Options(
	fx.Provide(ProvideIntakeService),
	fx.Invoke(StartPruneWorker),
)
