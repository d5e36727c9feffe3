package appointment

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/triologic/medrec/services/logging"
	"github.com/triologic/medrec/services/patient"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrNotFound      = errors.New("appointment not found")
	ErrInvalidStatus = errors.New("invalid appointment status")
)

var validStatuses = map[string]bool{
	"scheduled": true,
	"completed": true,
	"cancelled": true,
	"no_show":   true,
}

type Service struct {
	db         *gorm.DB
	patientSvc *patient.Service
	logger     *logging.Service
}

func NewService(db *gorm.DB, patientSvc *patient.Service, logger *logging.Service) *Service {
	return &Service{
		db:         db,
		patientSvc: patientSvc,
		logger:     logger,
	}
}

type SaveInput struct {
	ID        uint   `json:"id"`
	PatientID string `json:"patient_id"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Duration  int    `json:"duration"`
	Status    string `json:"status"`
	Type      string `json:"type"`
	Reason    string `json:"reason"`
	Notes     string `json:"notes"`
}

// Save creates an appointment, or updates when an id is supplied. Both
// paths require the referenced patient to belong to the doctor.
func (s *Service) Save(doctorID uint, input SaveInput) (*Appointment, error) {
	patientID, err := patient.ParseID(input.PatientID)
	if err != nil {
		return nil, err
	}
	if err := s.patientSvc.Authorize(doctorID, patientID); err != nil {
		return nil, err
	}

	date := strings.TrimSpace(input.Date)
	timeOfDay := strings.TrimSpace(input.Time)
	if date == "" || timeOfDay == "" {
		return nil, fmt.Errorf("date and time are required")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("invalid date: %s (expected YYYY-MM-DD)", date)
	}
	if _, err := time.Parse("15:04", timeOfDay); err != nil {
		return nil, fmt.Errorf("invalid time: %s (expected HH:MM)", timeOfDay)
	}

	status := strings.TrimSpace(input.Status)
	if status == "" {
		status = "scheduled"
	}
	if !validStatuses[status] {
		return nil, ErrInvalidStatus
	}

	apptType := strings.TrimSpace(input.Type)
	if apptType == "" {
		apptType = "checkup"
	}

	duration := input.Duration
	if duration <= 0 {
		duration = 30
	}

	if input.ID > 0 {
		var existing Appointment
		err := s.db.Where("id = ? AND doctor_id = ?", input.ID, doctorID).First(&existing).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("failed to load appointment: %w", err)
		}

		updates := map[string]any{
			"patient_id": patientID,
			"date":       date,
			"time":       timeOfDay,
			"duration":   duration,
			"status":     status,
			"type":       apptType,
			"reason":     strings.TrimSpace(input.Reason),
			"notes":      strings.TrimSpace(input.Notes),
		}
		if err := s.db.Model(&existing).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update appointment: %w", err)
		}
		return &existing, nil
	}

	appt := &Appointment{
		DoctorID:  doctorID,
		PatientID: patientID,
		Date:      date,
		Time:      timeOfDay,
		Duration:  duration,
		Status:    status,
		Type:      apptType,
		Reason:    strings.TrimSpace(input.Reason),
		Notes:     strings.TrimSpace(input.Notes),
	}
	if err := s.db.Create(appt).Error; err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("appointment created",
			zap.Uint("appointment_id", appt.ID),
			zap.Uint("patient_id", patientID))
	}
	return appt, nil
}

type ListEntry struct {
	Appointment
	PatientName  string `json:"patient_name"`
	PatientPhone string `json:"patient_phone"`
	DisplayID    string `json:"patient_display_id"`
}

type ListResult struct {
	Appointments []ListEntry    `json:"appointments"`
	Counts       map[string]int `json:"counts"`
}

// List returns the doctor's appointments for the chosen window joined to
// patient names, ordered scheduled-first then by date and time, plus
// per-status counts over the same window.
func (s *Service) List(doctorID uint, filter string) (*ListResult, error) {
	q := s.db.Model(&Appointment{}).Where("doctor_id = ?", doctorID)

	now := time.Now()
	today := now.Format("2006-01-02")
	switch filter {
	case "today":
		q = q.Where("date = ?", today)
	case "week":
		q = q.Where("date >= ? AND date <= ?", today, now.AddDate(0, 0, 7).Format("2006-01-02"))
	case "month":
		q = q.Where("date >= ? AND date <= ?", today, now.AddDate(0, 1, 0).Format("2006-01-02"))
	case "", "all":
	default:
		return nil, fmt.Errorf("invalid filter: %s", filter)
	}

	var appointments []Appointment
	err := q.Order("CASE WHEN status = 'scheduled' THEN 0 ELSE 1 END, date ASC, time ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}

	type patientRow struct {
		ID               uint
		FirstName        string
		LastName         string
		PhoneCountryCode string
		PhoneNumber      string
	}
	var patients []patientRow
	if err := s.db.Table("patients").
		Select("id", "first_name", "last_name", "phone_country_code", "phone_number").
		Where("doctor_id = ? AND deleted_at IS NULL", doctorID).
		Find(&patients).Error; err != nil {
		return nil, fmt.Errorf("failed to load patients: %w", err)
	}
	byID := make(map[uint]patientRow, len(patients))
	for _, p := range patients {
		byID[p.ID] = p
	}

	result := &ListResult{
		Appointments: make([]ListEntry, 0, len(appointments)),
		Counts:       map[string]int{"scheduled": 0, "completed": 0, "cancelled": 0, "no_show": 0},
	}
	for _, a := range appointments {
		entry := ListEntry{Appointment: a, DisplayID: patient.FormatID(a.PatientID)}
		if p, ok := byID[a.PatientID]; ok {
			entry.PatientName = p.FirstName + " " + p.LastName
			if p.PhoneNumber != "" {
				entry.PatientPhone = strings.TrimSpace(p.PhoneCountryCode + " " + p.PhoneNumber)
			}
		}
		result.Appointments = append(result.Appointments, entry)
		result.Counts[a.Status]++
	}
	return result, nil
}
