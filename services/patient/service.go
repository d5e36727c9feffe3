package patient

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/triologic/medrec/config"
	"github.com/triologic/medrec/services/logging"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrNotOwned        = errors.New("patient does not belong to this doctor")
	ErrPatientNotFound = errors.New("patient not found")
)

// FileStore is the slice of scan storage the patient service needs when
// cascading a delete.
type FileStore interface {
	RemoveFile(relPath string) error
	RemovePatientDir(patientID uint) error
}

type Service struct {
	config    *config.Config
	db        *gorm.DB
	logger    *logging.Service
	fileStore FileStore
}

func NewService(cfg *config.Config, db *gorm.DB, logger *logging.Service) *Service {
	return &Service{
		config: cfg,
		db:     db,
		logger: logger,
	}
}

func (s *Service) SetFileStore(store FileStore) {
	s.fileStore = store
}

func (s *Service) DB() *gorm.DB {
	return s.db
}

type PersonalInfo struct {
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	Email            string `json:"email"`
	Sex              string `json:"sex"`
	DOB              string `json:"dob"`
	AddressLine1     string `json:"address_line1"`
	Nationality      string `json:"nationality"`
	ZipCode          string `json:"zip_code"`
	State            string `json:"state"`
	PhoneCountryCode string `json:"phone_country_code"`
	PhoneNumber      string `json:"phone_number"`
	ReasonForVisit   string `json:"reason_for_visit"`
}

type CodeDetail struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

type MedicationEntry struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

type SurgeryEntry struct {
	Detail string `json:"detail"`
	Date   string `json:"date"`
}

type MedicalHistory struct {
	Conditions       []CodeDetail      `json:"conditions"`
	Allergies        []CodeDetail      `json:"allergies"`
	Medications      []MedicationEntry `json:"medications"`
	Surgeries        []SurgeryEntry    `json:"surgeries"`
	NoKnownAllergies bool              `json:"no_known_allergies"`
	NoSurgeries      bool              `json:"no_surgeries"`
	NoMedication     bool              `json:"no_medication"`
}

type ContactInfo struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	Relationship     string `json:"relationship"`
	PhoneCountryCode string `json:"phone_country_code"`
	PhoneNumber      string `json:"phone_number"`
}

// requiredPersonalFields drives fail-fast validation; the first missing
// field is named in the error.
var requiredPersonalFields = []struct {
	label string
	value func(*PersonalInfo) string
}{
	{"first_name", func(p *PersonalInfo) string { return p.FirstName }},
	{"last_name", func(p *PersonalInfo) string { return p.LastName }},
	{"email", func(p *PersonalInfo) string { return p.Email }},
	{"sex", func(p *PersonalInfo) string { return p.Sex }},
	{"dob", func(p *PersonalInfo) string { return p.DOB }},
	{"address_line1", func(p *PersonalInfo) string { return p.AddressLine1 }},
	{"nationality", func(p *PersonalInfo) string { return p.Nationality }},
	{"zip_code", func(p *PersonalInfo) string { return p.ZipCode }},
	{"state", func(p *PersonalInfo) string { return p.State }},
	{"phone_number", func(p *PersonalInfo) string { return p.PhoneNumber }},
}

func validatePersonal(personal *PersonalInfo) error {
	for _, f := range requiredPersonalFields {
		if strings.TrimSpace(f.value(personal)) == "" {
			return fmt.Errorf("missing required field: %s", f.label)
		}
	}
	return nil
}

// Create writes the patient aggregate in one transaction: the patient
// row, the emergency contact when both name and email are present, and
// the history collections with blank entries skipped.
func (s *Service) Create(doctorID uint, personal PersonalInfo, history MedicalHistory, contact ContactInfo) (*Patient, error) {
	if err := validatePersonal(&personal); err != nil {
		return nil, err
	}

	p := &Patient{
		DoctorID:          doctorID,
		FirstName:         strings.TrimSpace(personal.FirstName),
		LastName:          strings.TrimSpace(personal.LastName),
		Email:             strings.TrimSpace(personal.Email),
		Sex:               strings.TrimSpace(personal.Sex),
		DOB:               strings.TrimSpace(personal.DOB),
		AddressLine1:      strings.TrimSpace(personal.AddressLine1),
		Nationality:       strings.TrimSpace(personal.Nationality),
		ZipCode:           strings.TrimSpace(personal.ZipCode),
		State:             strings.TrimSpace(personal.State),
		PhoneCountryCode:  strings.TrimSpace(personal.PhoneCountryCode),
		PhoneNumber:       strings.TrimSpace(personal.PhoneNumber),
		ReasonForVisit:    strings.TrimSpace(personal.ReasonForVisit),
		FormStatus:        "draft",
		LastStepCompleted: 3,
		NoKnownAllergies:  history.NoKnownAllergies,
		NoSurgeries:       history.NoSurgeries,
		NoMedication:      history.NoMedication,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return err
		}

		contactName := strings.TrimSpace(contact.Name)
		contactEmail := strings.TrimSpace(contact.Email)
		if contactName != "" && contactEmail != "" {
			first, last := splitName(contactName)
			ec := &EmergencyContact{
				PatientID:        p.ID,
				FirstName:        first,
				LastName:         last,
				Email:            contactEmail,
				Relationship:     strings.TrimSpace(contact.Relationship),
				PhoneCountryCode: strings.TrimSpace(contact.PhoneCountryCode),
				PhoneNumber:      strings.TrimSpace(contact.PhoneNumber),
			}
			if err := tx.Create(ec).Error; err != nil {
				return err
			}
		}

		for _, c := range history.Conditions {
			if strings.TrimSpace(c.Code) == "" {
				continue
			}
			if err := tx.Create(&Condition{PatientID: p.ID, Code: strings.TrimSpace(c.Code), Detail: c.Detail}).Error; err != nil {
				return err
			}
		}
		for _, a := range history.Allergies {
			if strings.TrimSpace(a.Code) == "" {
				continue
			}
			if err := tx.Create(&Allergy{PatientID: p.ID, Code: strings.TrimSpace(a.Code), Detail: a.Detail}).Error; err != nil {
				return err
			}
		}
		for _, m := range history.Medications {
			if strings.TrimSpace(m.Name) == "" {
				continue
			}
			if err := tx.Create(&Medication{PatientID: p.ID, Name: strings.TrimSpace(m.Name), Reason: m.Reason}).Error; err != nil {
				return err
			}
		}
		for _, sg := range history.Surgeries {
			if strings.TrimSpace(sg.Detail) == "" {
				continue
			}
			if err := tx.Create(&Surgery{PatientID: p.ID, Detail: strings.TrimSpace(sg.Detail), Date: sg.Date}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if s.logger != nil {
			s.logger.Error("failed to create patient", zap.Error(err), zap.Uint("doctor_id", doctorID))
		}
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("patient created",
			zap.Uint("patient_id", p.ID),
			zap.Uint("doctor_id", doctorID))
	}
	return p, nil
}

func splitName(full string) (string, string) {
	parts := strings.SplitN(strings.TrimSpace(full), " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.TrimSpace(parts[1])
}

// Authorize confirms the patient exists and belongs to the doctor. Every
// patient-scoped operation runs this before any business validation.
func (s *Service) Authorize(doctorID, patientID uint) error {
	var id uint
	err := s.db.Model(&Patient{}).
		Select("id").
		Where("id = ? AND doctor_id = ?", patientID, doctorID).
		First(&id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotOwned
		}
		return fmt.Errorf("failed to check patient ownership: %w", err)
	}
	return nil
}

type Details struct {
	Patient          *Patient          `json:"patient"`
	DisplayID        string            `json:"display_id"`
	Age              int               `json:"age"`
	Conditions       []Condition       `json:"conditions"`
	Allergies        []Allergy         `json:"allergies"`
	Medications      []Medication      `json:"medications"`
	Surgeries        []Surgery         `json:"surgeries"`
	EmergencyContact *EmergencyContact `json:"emergency_contact,omitempty"`
}

func (s *Service) Get(doctorID, patientID uint) (*Details, error) {
	if err := s.Authorize(doctorID, patientID); err != nil {
		return nil, err
	}

	var p Patient
	if err := s.db.First(&p, patientID).Error; err != nil {
		return nil, fmt.Errorf("failed to load patient: %w", err)
	}

	details := &Details{
		Patient:   &p,
		DisplayID: FormatID(p.ID),
		Age:       ageFromDOB(p.DOB, time.Now()),
	}

	if err := s.db.Where("patient_id = ?", patientID).Find(&details.Conditions).Error; err != nil {
		return nil, fmt.Errorf("failed to load conditions: %w", err)
	}
	if err := s.db.Where("patient_id = ?", patientID).Find(&details.Allergies).Error; err != nil {
		return nil, fmt.Errorf("failed to load allergies: %w", err)
	}
	if err := s.db.Where("patient_id = ?", patientID).Find(&details.Medications).Error; err != nil {
		return nil, fmt.Errorf("failed to load medications: %w", err)
	}
	if err := s.db.Where("patient_id = ?", patientID).Find(&details.Surgeries).Error; err != nil {
		return nil, fmt.Errorf("failed to load surgeries: %w", err)
	}

	var ec EmergencyContact
	err := s.db.Where("patient_id = ?", patientID).First(&ec).Error
	if err == nil {
		details.EmergencyContact = &ec
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load emergency contact: %w", err)
	}

	return details, nil
}

func ageFromDOB(dob string, now time.Time) int {
	born, err := time.Parse("2006-01-02", dob)
	if err != nil {
		return 0
	}
	age := now.Year() - born.Year()
	if now.YearDay() < born.YearDay() {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Sex       string    `json:"sex"`
	DOB       string    `json:"dob"`
	Age       int       `json:"age"`
	CreatedAt time.Time `json:"created_at"`
}

// List returns the doctor's 50 most recently created patients with
// display-formatted ids and combined phone numbers.
func (s *Service) List(doctorID uint) ([]Summary, error) {
	var patients []Patient
	err := s.db.Where("doctor_id = ?", doctorID).
		Order("created_at DESC").
		Limit(50).
		Find(&patients).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}

	now := time.Now()
	summaries := make([]Summary, 0, len(patients))
	for _, p := range patients {
		phone := p.PhoneNumber
		if p.PhoneCountryCode != "" && phone != "" {
			phone = p.PhoneCountryCode + " " + phone
		}
		summaries = append(summaries, Summary{
			ID:        FormatID(p.ID),
			Name:      p.FirstName + " " + p.LastName,
			Email:     p.Email,
			Phone:     phone,
			Sex:       p.Sex,
			DOB:       p.DOB,
			Age:       ageFromDOB(p.DOB, now),
			CreatedAt: p.CreatedAt,
		})
	}
	return summaries, nil
}

type NameEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (s *Service) ListNames(doctorID uint) ([]NameEntry, error) {
	var patients []Patient
	err := s.db.Select("id", "first_name", "last_name").
		Where("doctor_id = ?", doctorID).
		Order("first_name ASC, last_name ASC").
		Find(&patients).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list patient names: %w", err)
	}

	entries := make([]NameEntry, 0, len(patients))
	for _, p := range patients {
		entries = append(entries, NameEntry{
			ID:   FormatID(p.ID),
			Name: p.FirstName + " " + p.LastName,
		})
	}
	return entries, nil
}

type UpdateInput struct {
	FirstName        *string `json:"first_name"`
	LastName         *string `json:"last_name"`
	Email            *string `json:"email"`
	Sex              *string `json:"sex"`
	DOB              *string `json:"dob"`
	AddressLine1     *string `json:"address_line1"`
	Nationality      *string `json:"nationality"`
	ZipCode          *string `json:"zip_code"`
	State            *string `json:"state"`
	PhoneCountryCode *string `json:"phone_country_code"`
	PhoneNumber      *string `json:"phone_number"`
	ReasonForVisit   *string `json:"reason_for_visit"`
}

func (s *Service) Update(doctorID, patientID uint, input UpdateInput) (*Patient, error) {
	if err := s.Authorize(doctorID, patientID); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	set := func(column string, value *string, required bool) error {
		if value == nil {
			return nil
		}
		v := strings.TrimSpace(*value)
		if required && v == "" {
			return fmt.Errorf("%s cannot be empty", column)
		}
		updates[column] = v
		return nil
	}

	for _, f := range []struct {
		column   string
		value    *string
		required bool
	}{
		{"first_name", input.FirstName, true},
		{"last_name", input.LastName, true},
		{"email", input.Email, true},
		{"sex", input.Sex, false},
		{"dob", input.DOB, false},
		{"address_line1", input.AddressLine1, false},
		{"nationality", input.Nationality, false},
		{"zip_code", input.ZipCode, false},
		{"state", input.State, false},
		{"phone_country_code", input.PhoneCountryCode, false},
		{"phone_number", input.PhoneNumber, false},
		{"reason_for_visit", input.ReasonForVisit, false},
	} {
		if err := set(f.column, f.value, f.required); err != nil {
			return nil, err
		}
	}

	if len(updates) > 0 {
		if err := s.db.Model(&Patient{}).Where("id = ?", patientID).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update patient: %w", err)
		}
	}

	var p Patient
	if err := s.db.First(&p, patientID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload patient: %w", err)
	}
	return &p, nil
}

type BillingInput struct {
	BillingType       string `json:"billing_type"`
	InsuranceProvider string `json:"insurance_provider"`
	InsuranceNumber   string `json:"insurance_number"`
	BillingAmount     string `json:"billing_amount"`
	AmountPaid        string `json:"amount_paid"`
	PaymentStatus     string `json:"payment_status"`
	BillingDate       string `json:"billing_date"`
	DueDate           string `json:"due_date"`
}

func parseMoney(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	raw = strings.ReplaceAll(raw, ",", "")
	raw = strings.TrimPrefix(raw, "$")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid amount: %s", raw)
	}
	return v, nil
}

func parseOptionalDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, fmt.Errorf("invalid date: %s (expected YYYY-MM-DD)", raw)
	}
	return &t, nil
}

// SaveBilling writes the billing columns and marks the intake complete.
func (s *Service) SaveBilling(doctorID, patientID uint, input BillingInput) error {
	if err := s.Authorize(doctorID, patientID); err != nil {
		return err
	}

	billingType := strings.TrimSpace(input.BillingType)
	if billingType == "" {
		return fmt.Errorf("billing type is required")
	}

	amount, err := parseMoney(input.BillingAmount)
	if err != nil {
		return err
	}
	paid, err := parseMoney(input.AmountPaid)
	if err != nil {
		return err
	}
	billingDate, err := parseOptionalDate(input.BillingDate)
	if err != nil {
		return err
	}
	dueDate, err := parseOptionalDate(input.DueDate)
	if err != nil {
		return err
	}

	updates := map[string]any{
		"billing_type":        billingType,
		"insurance_provider":  strings.TrimSpace(input.InsuranceProvider),
		"insurance_number":    strings.TrimSpace(input.InsuranceNumber),
		"billing_amount":      amount,
		"amount_paid":         paid,
		"payment_status":      strings.TrimSpace(input.PaymentStatus),
		"billing_date":        billingDate,
		"due_date":            dueDate,
		"form_status":         "complete",
		"last_step_completed": 4,
	}

	if err := s.db.Model(&Patient{}).Where("id = ?", patientID).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to save billing: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("billing saved", zap.Uint("patient_id", patientID))
	}
	return nil
}

// Delete removes the patient and every dependent row. Scan files and the
// patient's upload directory are removed best-effort; a failed file
// removal never blocks the database delete.
func (s *Service) Delete(doctorID, patientID uint) error {
	if err := s.Authorize(doctorID, patientID); err != nil {
		return err
	}

	var scans []Scan
	if err := s.db.Where("patient_id = ?", patientID).Find(&scans).Error; err != nil {
		return fmt.Errorf("failed to load scans for deletion: %w", err)
	}

	if s.fileStore != nil {
		for _, scan := range scans {
			if err := s.fileStore.RemoveFile(scan.FilePath); err != nil && s.logger != nil {
				s.logger.Warn("failed to remove scan file",
					zap.Error(err), zap.String("path", scan.FilePath))
			}
		}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{
			&Scan{},
			&EmergencyContact{},
			&Medication{},
			&Surgery{},
			&Allergy{},
			&Condition{},
			&VitalSigns{},
			&Prescription{},
			&ClinicalNote{},
		} {
			if err := tx.Where("patient_id = ?", patientID).Delete(model).Error; err != nil {
				return err
			}
		}
		if err := tx.Exec("DELETE FROM appointments WHERE patient_id = ?", patientID).Error; err != nil {
			return err
		}
		return tx.Delete(&Patient{}, patientID).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}

	if s.fileStore != nil {
		if err := s.fileStore.RemovePatientDir(patientID); err != nil && s.logger != nil {
			s.logger.Warn("failed to remove scan directory",
				zap.Error(err), zap.Uint("patient_id", patientID))
		}
	}

	if s.logger != nil {
		s.logger.Info("patient deleted",
			zap.Uint("patient_id", patientID),
			zap.Uint("doctor_id", doctorID))
	}
	return nil
}
