package main

import (
	"log"

	"github.com/triologic/medrec/app"
	"github.com/triologic/medrec/handlers"
	"github.com/triologic/medrec/openapi"
	"github.com/triologic/medrec/services/account"
	"github.com/triologic/medrec/services/appointment"
	"github.com/triologic/medrec/services/intake"
	"github.com/triologic/medrec/services/mail"
	"github.com/triologic/medrec/services/patient"
	"github.com/triologic/medrec/services/report"
	"github.com/triologic/medrec/services/scans"
	"github.com/triologic/medrec/services/task"
	"github.com/triologic/medrec/session"
)

func main() {
	application, err := app.NewApp().
		WithDatabase(
			&account.Doctor{},
			&account.VerificationCode{},
			&account.ResetToken{},
			&session.DoctorSession{},
			&patient.Patient{},
			&patient.Condition{},
			&patient.Allergy{},
			&patient.Medication{},
			&patient.Surgery{},
			&patient.EmergencyContact{},
			&patient.Scan{},
			&patient.VitalSigns{},
			&patient.Prescription{},
			&patient.ClinicalNote{},
			&appointment.Appointment{},
			&task.Task{},
		).
		WithSessions().
		WithFxOptions(
			mail.Module,
			account.Module,
			patient.Module,
			scans.Module,
			intake.Module,
			appointment.Module,
			task.Module,
			report.Module,
			handlers.Module,
			openapi.Module,
		).
		Build()
	if err != nil {
		log.Fatalf("Failed to build application: %v", err)
	}

	application.Run()
}
