package handlers

import (
	"github.com/labstack/echo/v4"
	"github.com/triologic/medrec/config"
	"github.com/triologic/medrec/middleware/ratelimit"
	"github.com/triologic/medrec/middleware/requireauth"
	"github.com/triologic/medrec/server"
	"github.com/triologic/medrec/session"
	"go.uber.org/fx"
)

type RouteParams struct {
	fx.In

	Config          *config.Config
	Server          *server.Server
	SessionManager  *session.Manager
	SessionService  session.SessionService
	RateLimitConfig *ratelimit.Config

	Auth         *AuthHandler
	Patients     *PatientHandler
	Intake       *IntakeHandler
	Appointments *AppointmentHandler
	Tasks        *TaskHandler
	Reports      *ReportHandler
	Settings     *SettingsHandler
}

// RegisterRoutes wires the whole HTTP surface: session middleware on
// everything, rate limiting on the pre-session auth endpoints, and the
// auth gate on everything doctor-scoped.
func RegisterRoutes(p RouteParams) {
	p.Server.Use(session.Middleware(p.SessionManager))
	p.Server.Use(session.SessionServiceMiddleware(p.SessionService))

	var limited []echo.MiddlewareFunc
	if p.Config.RateLimit.Enabled {
		limited = append(limited, ratelimit.Middleware(p.RateLimitConfig))
	}

	api := p.Server.Group("/api")

	public := api.Group("", limited...)
	public.POST("/signup", p.Auth.Signup)
	public.POST("/login", p.Auth.Login)
	public.POST("/verify-code", p.Auth.VerifyCode)
	public.POST("/resend-code", p.Auth.ResendCode)
	public.POST("/forgot-password", p.Auth.ForgotPassword)
	public.POST("/reset-password", p.Auth.ResetPassword)

	private := api.Group("", requireauth.Middleware())
	private.POST("/logout", p.Auth.Logout)
	private.GET("/me", p.Auth.Me)

	private.GET("/patients", p.Patients.List)
	private.POST("/patients", p.Patients.Create)
	private.GET("/patients/names", p.Patients.ListNames)
	private.GET("/patients/:id", p.Patients.Get)
	private.POST("/patients/:id", p.Patients.Update)
	private.POST("/patients/:id/delete", p.Patients.Delete)
	private.POST("/patients/:id/billing", p.Patients.SaveBilling)
	private.POST("/patients/:id/scans", p.Patients.UploadScan)
	private.POST("/patients/:id/vitals", p.Patients.AddVitals)
	private.POST("/patients/:id/prescriptions", p.Patients.AddPrescription)
	private.POST("/patients/:id/notes", p.Patients.AddNote)
	private.GET("/patients/:id/records", p.Patients.Records)

	private.GET("/intake/draft", p.Intake.Draft)
	private.POST("/intake/personal", p.Intake.SetPersonal)
	private.POST("/intake/history", p.Intake.SetHistory)
	private.POST("/intake/contact", p.Intake.SetContact)
	private.POST("/intake/scans", p.Intake.StageScan)
	private.POST("/intake/scans/:id/remove", p.Intake.RemoveStagedScan)
	private.POST("/intake/clear", p.Intake.Clear)
	private.POST("/intake/submit", p.Intake.Submit)

	private.GET("/appointments", p.Appointments.List)
	private.POST("/appointments", p.Appointments.Save)

	private.GET("/tasks", p.Tasks.List)
	private.POST("/tasks", p.Tasks.Save)
	private.POST("/tasks/:id/status", p.Tasks.UpdateStatus)

	private.GET("/reports", p.Reports.Summary)

	private.POST("/profile", p.Settings.UpdateProfile)
	private.POST("/password", p.Settings.ChangePassword)
	private.GET("/sessions", p.Settings.Sessions)
	private.POST("/sessions/:id/revoke", p.Settings.RevokeSession)
}

var Module = fx.Options(
	fx.Provide(NewAuthHandler),
	fx.Provide(NewPatientHandler),
	fx.Provide(NewIntakeHandler),
	fx.Provide(NewAppointmentHandler),
	fx.Provide(NewTaskHandler),
	fx.Provide(NewReportHandler),
	fx.Provide(NewSettingsHandler),
	fx.Invoke(RegisterRoutes),
)
