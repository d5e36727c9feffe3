package patient

import (
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
)

type VitalsInput struct {
	Systolic         *int     `json:"systolic"`
	Diastolic        *int     `json:"diastolic"`
	HeartRate        *int     `json:"heart_rate"`
	Temperature      *float64 `json:"temperature"`
	OxygenSaturation *int     `json:"oxygen_saturation"`
	RespiratoryRate  *int     `json:"respiratory_rate"`
	Weight           *float64 `json:"weight"`
	Height           *float64 `json:"height"`
	BMI              *float64 `json:"bmi"`
	Notes            string   `json:"notes"`
}

func checkIntRange(value *int, min, max int, label string) error {
	if value == nil {
		return nil
	}
	if *value < min || *value > max {
		return fmt.Errorf("%s must be between %d and %d", label, min, max)
	}
	return nil
}

// AddVitals appends a measurement row. At least one measurement must be
// present and all present values must sit in clinically plausible ranges.
func (s *Service) AddVitals(doctorID, patientID uint, input VitalsInput) (*VitalSigns, error) {
	if err := s.Authorize(doctorID, patientID); err != nil {
		return nil, err
	}

	if input.Systolic == nil && input.Diastolic == nil && input.HeartRate == nil &&
		input.Temperature == nil && input.OxygenSaturation == nil &&
		input.RespiratoryRate == nil && input.Weight == nil && input.Height == nil {
		return nil, fmt.Errorf("at least one measurement is required")
	}

	if err := checkIntRange(input.Systolic, 60, 200, "systolic pressure"); err != nil {
		return nil, err
	}
	if err := checkIntRange(input.Diastolic, 40, 140, "diastolic pressure"); err != nil {
		return nil, err
	}
	if err := checkIntRange(input.HeartRate, 40, 200, "heart rate"); err != nil {
		return nil, err
	}
	if input.Temperature != nil && (*input.Temperature < 35.0 || *input.Temperature > 42.0) {
		return nil, fmt.Errorf("temperature must be between 35.0 and 42.0")
	}
	if err := checkIntRange(input.OxygenSaturation, 70, 100, "oxygen saturation"); err != nil {
		return nil, err
	}
	if err := checkIntRange(input.RespiratoryRate, 8, 40, "respiratory rate"); err != nil {
		return nil, err
	}

	bmi := input.BMI
	if bmi == nil && input.Weight != nil && input.Height != nil && *input.Height > 0 {
		meters := *input.Height / 100
		v := math.Round(*input.Weight/(meters*meters)*10) / 10
		bmi = &v
	}

	row := &VitalSigns{
		PatientID:        patientID,
		Systolic:         input.Systolic,
		Diastolic:        input.Diastolic,
		HeartRate:        input.HeartRate,
		Temperature:      input.Temperature,
		OxygenSaturation: input.OxygenSaturation,
		RespiratoryRate:  input.RespiratoryRate,
		Weight:           input.Weight,
		Height:           input.Height,
		BMI:              bmi,
		Notes:            strings.TrimSpace(input.Notes),
		RecordedBy:       doctorID,
		RecordedAt:       time.Now(),
	}
	if err := s.db.Create(row).Error; err != nil {
		return nil, fmt.Errorf("failed to record vital signs: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("vital signs recorded", zap.Uint("patient_id", patientID))
	}
	return row, nil
}

type PrescriptionInput struct {
	MedicationName string `json:"medication_name"`
	Dosage         string `json:"dosage"`
	Frequency      string `json:"frequency"`
	Duration       string `json:"duration"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	Notes          string `json:"notes"`
}

func (s *Service) AddPrescription(doctorID, patientID uint, input PrescriptionInput) (*Prescription, error) {
	if err := s.Authorize(doctorID, patientID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.MedicationName)
	dosage := strings.TrimSpace(input.Dosage)
	frequency := strings.TrimSpace(input.Frequency)
	startDate := strings.TrimSpace(input.StartDate)

	if name == "" || dosage == "" || frequency == "" || startDate == "" {
		return nil, fmt.Errorf("medication name, dosage, frequency and start date are required")
	}

	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start date: %s (expected YYYY-MM-DD)", startDate)
	}

	endDate := strings.TrimSpace(input.EndDate)
	if endDate != "" {
		end, err := time.Parse("2006-01-02", endDate)
		if err != nil {
			return nil, fmt.Errorf("invalid end date: %s (expected YYYY-MM-DD)", endDate)
		}
		if end.Before(start) {
			return nil, fmt.Errorf("end date cannot be before start date")
		}
	}

	row := &Prescription{
		PatientID:      patientID,
		MedicationName: name,
		Dosage:         dosage,
		Frequency:      frequency,
		Duration:       strings.TrimSpace(input.Duration),
		StartDate:      startDate,
		EndDate:        endDate,
		Notes:          strings.TrimSpace(input.Notes),
		PrescribedBy:   doctorID,
		Status:         "active",
	}
	if err := s.db.Create(row).Error; err != nil {
		return nil, fmt.Errorf("failed to record prescription: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("prescription recorded", zap.Uint("patient_id", patientID))
	}
	return row, nil
}

var noteTypes = map[string]bool{
	"visit":       true,
	"observation": true,
	"diagnosis":   true,
	"treatment":   true,
	"other":       true,
}

type NoteInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Type    string `json:"type"`
}

func (s *Service) AddNote(doctorID, patientID uint, input NoteInput) (*ClinicalNote, error) {
	if err := s.Authorize(doctorID, patientID); err != nil {
		return nil, err
	}

	content := strings.TrimSpace(input.Content)
	if len(content) < 10 {
		return nil, fmt.Errorf("note content must be at least 10 characters")
	}

	noteType := strings.TrimSpace(strings.ToLower(input.Type))
	if noteType == "" {
		noteType = "visit"
	}
	if !noteTypes[noteType] {
		return nil, fmt.Errorf("invalid note type: %s", noteType)
	}

	row := &ClinicalNote{
		PatientID: patientID,
		Title:     strings.TrimSpace(input.Title),
		Content:   content,
		Type:      noteType,
		WrittenBy: doctorID,
		NoteDate:  time.Now(),
	}
	if err := s.db.Create(row).Error; err != nil {
		return nil, fmt.Errorf("failed to record clinical note: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("clinical note recorded", zap.Uint("patient_id", patientID))
	}
	return row, nil
}

const recordsLimit = 20

type VitalsRecord struct {
	VitalSigns
	BloodPressure string `json:"blood_pressure"`
	RecordedName  string `json:"recorded_by_name"`
}

type PrescriptionRecord struct {
	Prescription
	PrescribedName string `json:"prescribed_by_name"`
}

type NoteRecord struct {
	ClinicalNote
	WrittenName string `json:"written_by_name"`
}

type Records struct {
	Vitals        []VitalsRecord       `json:"vitals"`
	Prescriptions []PrescriptionRecord `json:"prescriptions"`
	Notes         []NoteRecord         `json:"notes"`
	Scans         []Scan               `json:"scans"`
}

// GetRecords returns the most recent clinical history, each collection
// newest first and capped, with the recording doctor's name resolved.
func (s *Service) GetRecords(doctorID, patientID uint) (*Records, error) {
	if err := s.Authorize(doctorID, patientID); err != nil {
		return nil, err
	}

	records := &Records{
		Vitals:        []VitalsRecord{},
		Prescriptions: []PrescriptionRecord{},
		Notes:         []NoteRecord{},
		Scans:         []Scan{},
	}

	var vitals []VitalSigns
	if err := s.db.Where("patient_id = ?", patientID).
		Order("recorded_at DESC").
		Limit(recordsLimit).
		Find(&vitals).Error; err != nil {
		return nil, fmt.Errorf("failed to load vital signs: %w", err)
	}

	names, err := s.doctorNames()
	if err != nil {
		return nil, err
	}

	for _, v := range vitals {
		rec := VitalsRecord{VitalSigns: v, RecordedName: names[v.RecordedBy]}
		if v.Systolic != nil && v.Diastolic != nil {
			rec.BloodPressure = fmt.Sprintf("%d/%d", *v.Systolic, *v.Diastolic)
		}
		records.Vitals = append(records.Vitals, rec)
	}

	var prescriptions []Prescription
	if err := s.db.Where("patient_id = ?", patientID).
		Order("created_at DESC").
		Limit(recordsLimit).
		Find(&prescriptions).Error; err != nil {
		return nil, fmt.Errorf("failed to load prescriptions: %w", err)
	}
	for _, p := range prescriptions {
		records.Prescriptions = append(records.Prescriptions, PrescriptionRecord{
			Prescription:   p,
			PrescribedName: names[p.PrescribedBy],
		})
	}

	var notes []ClinicalNote
	if err := s.db.Where("patient_id = ?", patientID).
		Order("note_date DESC").
		Limit(recordsLimit).
		Find(&notes).Error; err != nil {
		return nil, fmt.Errorf("failed to load clinical notes: %w", err)
	}
	for _, n := range notes {
		records.Notes = append(records.Notes, NoteRecord{
			ClinicalNote: n,
			WrittenName:  names[n.WrittenBy],
		})
	}

	if err := s.db.Where("patient_id = ?", patientID).
		Order("created_at DESC").
		Limit(recordsLimit).
		Find(&records.Scans).Error; err != nil {
		return nil, fmt.Errorf("failed to load scans: %w", err)
	}

	return records, nil
}

func (s *Service) doctorNames() (map[uint]string, error) {
	type row struct {
		ID        uint
		FirstName string
		LastName  string
	}
	var rows []row
	if err := s.db.Table("doctors").
		Select("id", "first_name", "last_name").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load doctor names: %w", err)
	}

	names := make(map[uint]string, len(rows))
	for _, r := range rows {
		names[r.ID] = "Dr. " + r.FirstName + " " + r.LastName
	}
	return names, nil
}
