package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/triologic/medrec/services/patient"
	"github.com/triologic/medrec/services/scans"
	"github.com/triologic/medrec/session"
)

type PatientHandler struct {
	patientSvc *patient.Service
	scanSvc    *scans.Service
}

func NewPatientHandler(patientSvc *patient.Service, scanSvc *scans.Service) *PatientHandler {
	return &PatientHandler{
		patientSvc: patientSvc,
		scanSvc:    scanSvc,
	}
}

func (h *PatientHandler) parseParamID(c echo.Context) (uint, error) {
	return patient.ParseID(c.Param("id"))
}

type createPatientRequest struct {
	Personal patient.PersonalInfo   `json:"personal"`
	History  patient.MedicalHistory `json:"history"`
	Contact  patient.ContactInfo    `json:"contact"`
}

func (h *PatientHandler) Create(c echo.Context) error {
	var req createPatientRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	p, err := h.patientSvc.Create(session.GetDoctorID(c), req.Personal, req.History, req.Contact)
	if err != nil {
		return failErr(c, err)
	}

	return ok(c, http.StatusCreated, "Patient created", map[string]any{
		"patient_id": patient.FormatID(p.ID),
	})
}

func (h *PatientHandler) List(c echo.Context) error {
	patients, err := h.patientSvc.List(session.GetDoctorID(c))
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, "", map[string]any{
		"patients": patients,
	})
}

func (h *PatientHandler) ListNames(c echo.Context) error {
	names, err := h.patientSvc.ListNames(session.GetDoctorID(c))
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, "", map[string]any{
		"patients": names,
	})
}

func (h *PatientHandler) Get(c echo.Context) error {
	patientID, err := h.parseParamID(c)
	if err != nil {
		return failErr(c, err)
	}

	details, err := h.patientSvc.Get(session.GetDoctorID(c), patientID)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, "", map[string]any{
		"patient": details,
	})
}

func (h *PatientHandler) Update(c echo.Context) error {
	patientID, err := h.parseParamID(c)
	if err != nil {
		return failErr(c, err)
	}

	var input patient.UpdateInput
	if err := c.Bind(&input); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	p, err := h.patientSvc.Update(session.GetDoctorID(c), patientID, input)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, "Patient updated", map[string]any{
		"patient": p,
	})
}

func (h *PatientHandler) SaveBilling(c echo.Context) error {
	patientID, err := h.parseParamID(c)
	if err != nil {
		return failErr(c, err)
	}

	var input patient.BillingInput
	if err := c.Bind(&input); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	if err := h.patientSvc.SaveBilling(session.GetDoctorID(c), patientID, input); err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, "Billing saved", nil)
}

func (h *PatientHandler) Delete(c echo.Context) error {
	patientID, err := h.parseParamID(c)
	if err != nil {
		return failErr(c, err)
	}

	if err := h.patientSvc.Delete(session.GetDoctorID(c), patientID); err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, "Patient deleted", nil)
}

// UploadScan accepts a multipart form with the file under "scan".
func (h *PatientHandler) UploadScan(c echo.Context) error {
	patientID, err := h.parseParamID(c)
	if err != nil {
		return failErr(c, err)
	}

	fileHeader, err := c.FormFile("scan")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Scan file is required")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return fail(c, http.StatusBadRequest, "Could not read the uploaded file")
	}
	defer src.Close()

	row, err := h.scanSvc.Upload(session.GetDoctorID(c), patientID, scans.UploadInput{
		FileName:    fileHeader.Filename,
		MimeType:    fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		ScanType:    c.FormValue("scan_type"),
		ScanName:    c.FormValue("scan_name"),
		Description: c.FormValue("description"),
		ScanDate:    c.FormValue("scan_date"),
		Content:     src,
	})
	if err != nil {
		return failErr(c, err)
	}

	return ok(c, http.StatusCreated, "Scan uploaded", map[string]any{
		"scan": row,
	})
}

func (h *PatientHandler) AddVitals(c echo.Context) error {
	patientID, err := h.parseParamID(c)
	if err != nil {
		return failErr(c, err)
	}

	var input patient.VitalsInput
	if err := c.Bind(&input); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	row, err := h.patientSvc.AddVitals(session.GetDoctorID(c), patientID, input)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusCreated, "Vital signs recorded", map[string]any{
		"vitals": row,
	})
}

func (h *PatientHandler) AddPrescription(c echo.Context) error {
	patientID, err := h.parseParamID(c)
	if err != nil {
		return failErr(c, err)
	}

	var input patient.PrescriptionInput
	if err := c.Bind(&input); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	row, err := h.patientSvc.AddPrescription(session.GetDoctorID(c), patientID, input)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusCreated, "Prescription recorded", map[string]any{
		"prescription": row,
	})
}

func (h *PatientHandler) AddNote(c echo.Context) error {
	patientID, err := h.parseParamID(c)
	if err != nil {
		return failErr(c, err)
	}

	var input patient.NoteInput
	if err := c.Bind(&input); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	row, err := h.patientSvc.AddNote(session.GetDoctorID(c), patientID, input)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusCreated, "Clinical note recorded", map[string]any{
		"note": row,
	})
}

func (h *PatientHandler) Records(c echo.Context) error {
	patientID, err := h.parseParamID(c)
	if err != nil {
		return failErr(c, err)
	}

	records, err := h.patientSvc.GetRecords(session.GetDoctorID(c), patientID)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, "", map[string]any{
		"records": records,
	})
}
