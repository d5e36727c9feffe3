package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/triologic/medrec/services/report"
	"github.com/triologic/medrec/session"
)

type ReportHandler struct {
	reportSvc *report.Service
}

func NewReportHandler(reportSvc *report.Service) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

func (h *ReportHandler) Summary(c echo.Context) error {
	summary, err := h.reportSvc.Summarize(session.GetDoctorID(c))
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, "", map[string]any{
		"report": summary,
	})
}
