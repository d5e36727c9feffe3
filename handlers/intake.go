package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/triologic/medrec/services/intake"
	"github.com/triologic/medrec/services/patient"
	"github.com/triologic/medrec/session"
)

type IntakeHandler struct {
	intakeSvc *intake.Service
}

func NewIntakeHandler(intakeSvc *intake.Service) *IntakeHandler {
	return &IntakeHandler{intakeSvc: intakeSvc}
}

// draftToken scopes the draft to the current session.
func draftToken(c echo.Context) string {
	manager := session.GetManager(c)
	if manager == nil {
		return ""
	}
	return manager.Token(c.Request().Context())
}

func (h *IntakeHandler) SetPersonal(c echo.Context) error {
	var input patient.PersonalInfo
	if err := c.Bind(&input); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	h.intakeSvc.SetPersonal(draftToken(c), input)
	return ok(c, http.StatusOK, "Personal information saved", nil)
}

func (h *IntakeHandler) SetHistory(c echo.Context) error {
	var input patient.MedicalHistory
	if err := c.Bind(&input); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	h.intakeSvc.SetHistory(draftToken(c), input)
	return ok(c, http.StatusOK, "Medical history saved", nil)
}

func (h *IntakeHandler) SetContact(c echo.Context) error {
	var input patient.ContactInfo
	if err := c.Bind(&input); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	h.intakeSvc.SetContact(draftToken(c), input)
	return ok(c, http.StatusOK, "Emergency contact saved", nil)
}

func (h *IntakeHandler) Draft(c echo.Context) error {
	draft := h.intakeSvc.Draft(draftToken(c))
	staged := h.intakeSvc.ListStaged(draftToken(c))
	if staged == nil {
		staged = []intake.StagedScan{}
	}
	return ok(c, http.StatusOK, "", map[string]any{
		"draft":  draft,
		"staged": staged,
	})
}

// StageScan buffers an attachment in the draft; nothing touches disk or
// the database until submit.
func (h *IntakeHandler) StageScan(c echo.Context) error {
	fileHeader, err := c.FormFile("scan")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Scan file is required")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return fail(c, http.StatusBadRequest, "Could not read the uploaded file")
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return fail(c, http.StatusBadRequest, "Could not read the uploaded file")
	}

	localID, err := h.intakeSvc.Stage(draftToken(c), intake.StagedScan{
		FileName:    fileHeader.Filename,
		MimeType:    fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		ScanType:    c.FormValue("scan_type"),
		ScanName:    c.FormValue("scan_name"),
		Description: c.FormValue("description"),
		ScanDate:    c.FormValue("scan_date"),
		Content:     content,
	})
	if err != nil {
		return failErr(c, err)
	}

	return ok(c, http.StatusCreated, "Scan staged", map[string]any{
		"local_id": localID,
	})
}

func (h *IntakeHandler) RemoveStagedScan(c echo.Context) error {
	localID, err := strconv.Atoi(c.Param("id"))
	if err != nil || localID <= 0 {
		return fail(c, http.StatusBadRequest, "Invalid staged scan id")
	}

	if !h.intakeSvc.RemoveStaged(draftToken(c), localID) {
		return fail(c, http.StatusNotFound, "Staged scan not found")
	}
	return ok(c, http.StatusOK, "Staged scan removed", nil)
}

func (h *IntakeHandler) Clear(c echo.Context) error {
	h.intakeSvc.Clear(draftToken(c))
	return ok(c, http.StatusOK, "Draft cleared", nil)
}

func (h *IntakeHandler) Submit(c echo.Context) error {
	var billing patient.BillingInput
	if err := c.Bind(&billing); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	var progress []string
	result, err := h.intakeSvc.Submit(session.GetDoctorID(c), draftToken(c), billing,
		func(k, total int, fileName string) {
			progress = append(progress, "Uploading "+fileName+" ("+strconv.Itoa(k)+"/"+strconv.Itoa(total)+")")
		})
	if err != nil {
		return failErr(c, err)
	}

	message := "Patient registered successfully"
	if len(result.Failed) > 0 {
		message = "Patient registered, but some scans could not be uploaded"
	}

	return ok(c, http.StatusCreated, message, map[string]any{
		"result":   result,
		"progress": progress,
	})
}
