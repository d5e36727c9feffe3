package patient

import (
	"time"

	"gorm.io/gorm"
)

type Patient struct {
	gorm.Model
	DoctorID          uint       `json:"doctor_id" gorm:"index;not null"`
	FirstName         string     `json:"first_name" gorm:"size:100;not null"`
	LastName          string     `json:"last_name" gorm:"size:100;not null"`
	Email             string     `json:"email" gorm:"size:255"`
	Sex               string     `json:"sex" gorm:"size:20"`
	DOB               string     `json:"dob" gorm:"size:10"`
	AddressLine1      string     `json:"address_line1" gorm:"size:255"`
	Nationality       string     `json:"nationality" gorm:"size:100"`
	ZipCode           string     `json:"zip_code" gorm:"size:20"`
	State             string     `json:"state" gorm:"size:100"`
	PhoneCountryCode  string     `json:"phone_country_code" gorm:"size:10"`
	PhoneNumber       string     `json:"phone_number" gorm:"size:30"`
	ReasonForVisit    string     `json:"reason_for_visit" gorm:"type:text"`
	FormStatus        string     `json:"form_status" gorm:"size:20;default:'draft'"`
	LastStepCompleted int        `json:"last_step_completed" gorm:"default:0"`
	NoKnownAllergies  bool       `json:"no_known_allergies" gorm:"default:false"`
	NoSurgeries       bool       `json:"no_surgeries" gorm:"default:false"`
	NoMedication      bool       `json:"no_medication" gorm:"default:false"`
	BillingType       string     `json:"billing_type" gorm:"size:30"`
	InsuranceProvider string     `json:"insurance_provider" gorm:"size:100"`
	InsuranceNumber   string     `json:"insurance_number" gorm:"size:100"`
	BillingAmount     float64    `json:"billing_amount"`
	AmountPaid        float64    `json:"amount_paid"`
	PaymentStatus     string     `json:"payment_status" gorm:"size:30"`
	BillingDate       *time.Time `json:"billing_date,omitempty"`
	DueDate           *time.Time `json:"due_date,omitempty"`
}

func (Patient) TableName() string {
	return "patients"
}

type Condition struct {
	gorm.Model
	PatientID uint   `json:"patient_id" gorm:"index;not null"`
	Code      string `json:"code" gorm:"size:50;not null"`
	Detail    string `json:"detail" gorm:"type:text"`
}

func (Condition) TableName() string {
	return "patient_conditions"
}

type Allergy struct {
	gorm.Model
	PatientID uint   `json:"patient_id" gorm:"index;not null"`
	Code      string `json:"code" gorm:"size:50;not null"`
	Detail    string `json:"detail" gorm:"type:text"`
}

func (Allergy) TableName() string {
	return "patient_allergies"
}

type Medication struct {
	gorm.Model
	PatientID uint   `json:"patient_id" gorm:"index;not null"`
	Name      string `json:"name" gorm:"size:200;not null"`
	Reason    string `json:"reason" gorm:"type:text"`
}

func (Medication) TableName() string {
	return "patient_medications"
}

type Surgery struct {
	gorm.Model
	PatientID uint   `json:"patient_id" gorm:"index;not null"`
	Detail    string `json:"detail" gorm:"type:text;not null"`
	Date      string `json:"date" gorm:"size:10"`
}

func (Surgery) TableName() string {
	return "patient_surgeries"
}

type EmergencyContact struct {
	gorm.Model
	PatientID        uint   `json:"patient_id" gorm:"index;not null"`
	FirstName        string `json:"first_name" gorm:"size:100;not null"`
	LastName         string `json:"last_name" gorm:"size:100"`
	Email            string `json:"email" gorm:"size:255;not null"`
	Relationship     string `json:"relationship" gorm:"size:50"`
	PhoneCountryCode string `json:"phone_country_code" gorm:"size:10"`
	PhoneNumber      string `json:"phone_number" gorm:"size:30"`
}

func (EmergencyContact) TableName() string {
	return "patient_emergency_contacts"
}

type Scan struct {
	gorm.Model
	PatientID   uint   `json:"patient_id" gorm:"index;not null"`
	ScanType    string `json:"scan_type" gorm:"size:50"`
	ScanName    string `json:"scan_name" gorm:"size:200"`
	FileName    string `json:"file_name" gorm:"size:255;not null"`
	FilePath    string `json:"file_path" gorm:"size:500;not null"`
	FileSize    int64  `json:"file_size"`
	MimeType    string `json:"mime_type" gorm:"size:100"`
	Description string `json:"description" gorm:"type:text"`
	ScanDate    string `json:"scan_date" gorm:"size:10"`
	UploadedBy  uint   `json:"uploaded_by"`
}

func (Scan) TableName() string {
	return "patient_scans"
}

// VitalSigns rows are append-only; corrections are new measurements.
type VitalSigns struct {
	gorm.Model
	PatientID        uint      `json:"patient_id" gorm:"index;not null"`
	Systolic         *int      `json:"systolic,omitempty"`
	Diastolic        *int      `json:"diastolic,omitempty"`
	HeartRate        *int      `json:"heart_rate,omitempty"`
	Temperature      *float64  `json:"temperature,omitempty"`
	OxygenSaturation *int      `json:"oxygen_saturation,omitempty"`
	RespiratoryRate  *int      `json:"respiratory_rate,omitempty"`
	Weight           *float64  `json:"weight,omitempty"`
	Height           *float64  `json:"height,omitempty"`
	BMI              *float64  `json:"bmi,omitempty"`
	Notes            string    `json:"notes" gorm:"type:text"`
	RecordedBy       uint      `json:"recorded_by"`
	RecordedAt       time.Time `json:"recorded_at"`
}

func (VitalSigns) TableName() string {
	return "patient_vital_signs"
}

type Prescription struct {
	gorm.Model
	PatientID      uint   `json:"patient_id" gorm:"index;not null"`
	MedicationName string `json:"medication_name" gorm:"size:200;not null"`
	Dosage         string `json:"dosage" gorm:"size:100;not null"`
	Frequency      string `json:"frequency" gorm:"size:100;not null"`
	Duration       string `json:"duration" gorm:"size:100"`
	StartDate      string `json:"start_date" gorm:"size:10;not null"`
	EndDate        string `json:"end_date" gorm:"size:10"`
	Notes          string `json:"notes" gorm:"type:text"`
	PrescribedBy   uint   `json:"prescribed_by"`
	Status         string `json:"status" gorm:"size:20;default:'active'"`
}

func (Prescription) TableName() string {
	return "patient_prescriptions"
}

type ClinicalNote struct {
	gorm.Model
	PatientID uint      `json:"patient_id" gorm:"index;not null"`
	Title     string    `json:"title" gorm:"size:200"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	Type      string    `json:"type" gorm:"size:20;default:'visit'"`
	WrittenBy uint      `json:"written_by"`
	NoteDate  time.Time `json:"note_date"`
}

func (ClinicalNote) TableName() string {
	return "patient_clinical_notes"
}
