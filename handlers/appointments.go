package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/triologic/medrec/services/appointment"
	"github.com/triologic/medrec/session"
)

type AppointmentHandler struct {
	appointmentSvc *appointment.Service
}

func NewAppointmentHandler(appointmentSvc *appointment.Service) *AppointmentHandler {
	return &AppointmentHandler{appointmentSvc: appointmentSvc}
}

func (h *AppointmentHandler) List(c echo.Context) error {
	result, err := h.appointmentSvc.List(session.GetDoctorID(c), c.QueryParam("filter"))
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, "", map[string]any{
		"appointments": result.Appointments,
		"counts":       result.Counts,
	})
}

func (h *AppointmentHandler) Save(c echo.Context) error {
	var input appointment.SaveInput
	if err := c.Bind(&input); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	appt, err := h.appointmentSvc.Save(session.GetDoctorID(c), input)
	if err != nil {
		return failErr(c, err)
	}

	status := http.StatusCreated
	message := "Appointment scheduled"
	if input.ID > 0 {
		status = http.StatusOK
		message = "Appointment updated"
	}
	return ok(c, status, message, map[string]any{
		"appointment": appt,
	})
}
