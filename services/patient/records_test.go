package patient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triologic/medrec/services/account"
	"github.com/triologic/medrec/testutils"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func newRecordsService(t *testing.T) (*Service, uint) {
	t.Helper()
	db := testutils.SetupTestDB(t,
		&account.Doctor{},
		&Patient{}, &Condition{}, &Allergy{}, &Medication{}, &Surgery{},
		&EmergencyContact{}, &Scan{}, &VitalSigns{}, &Prescription{}, &ClinicalNote{})
	require.NoError(t, db.Create(&account.Doctor{
		FirstName: "Amira", LastName: "Hassan",
		Username: "amira", Email: "amira@example.com", PasswordHash: "x",
	}).Error)

	svc := NewService(testutils.GetTestConfig(), db, nil)
	p, err := svc.Create(1, validPersonal(), MedicalHistory{}, ContactInfo{})
	require.NoError(t, err)
	return svc, p.ID
}

func TestAddVitals(t *testing.T) {
	svc, patientID := newRecordsService(t)

	t.Run("requires at least one measurement", func(t *testing.T) {
		_, err := svc.AddVitals(1, patientID, VitalsInput{Notes: "no readings"})
		assert.ErrorContains(t, err, "at least one measurement")
	})

	t.Run("range checks", func(t *testing.T) {
		tests := []struct {
			name  string
			input VitalsInput
		}{
			{"systolic low", VitalsInput{Systolic: intPtr(50)}},
			{"systolic high", VitalsInput{Systolic: intPtr(220)}},
			{"diastolic high", VitalsInput{Diastolic: intPtr(150)}},
			{"heart rate low", VitalsInput{HeartRate: intPtr(30)}},
			{"temperature high", VitalsInput{Temperature: floatPtr(43.5)}},
			{"oxygen low", VitalsInput{OxygenSaturation: intPtr(60)}},
			{"respiratory high", VitalsInput{RespiratoryRate: intPtr(50)}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := svc.AddVitals(1, patientID, tt.input)
				assert.ErrorContains(t, err, "must be between")
			})
		}
	})

	t.Run("computes BMI from weight and height", func(t *testing.T) {
		row, err := svc.AddVitals(1, patientID, VitalsInput{
			Weight: floatPtr(82),
			Height: floatPtr(180),
		})
		require.NoError(t, err)
		require.NotNil(t, row.BMI)
		assert.InDelta(t, 25.3, *row.BMI, 0.001)
	})

	t.Run("an explicit BMI is kept as given", func(t *testing.T) {
		row, err := svc.AddVitals(1, patientID, VitalsInput{
			Weight: floatPtr(82),
			Height: floatPtr(180),
			BMI:    floatPtr(24.9),
		})
		require.NoError(t, err)
		require.NotNil(t, row.BMI)
		assert.Equal(t, 24.9, *row.BMI)
	})

	t.Run("ownership enforced first", func(t *testing.T) {
		_, err := svc.AddVitals(2, patientID, VitalsInput{HeartRate: intPtr(300)})
		assert.ErrorIs(t, err, ErrNotOwned)
	})
}

func TestAddPrescription(t *testing.T) {
	svc, patientID := newRecordsService(t)

	base := PrescriptionInput{
		MedicationName: "Amoxicillin",
		Dosage:         "500mg",
		Frequency:      "3x daily",
		StartDate:      "2026-08-01",
	}

	t.Run("records an active prescription", func(t *testing.T) {
		row, err := svc.AddPrescription(1, patientID, base)
		require.NoError(t, err)
		assert.Equal(t, "active", row.Status)
		assert.Equal(t, uint(1), row.PrescribedBy)
	})

	t.Run("missing core fields", func(t *testing.T) {
		input := base
		input.Dosage = ""
		_, err := svc.AddPrescription(1, patientID, input)
		assert.ErrorContains(t, err, "are required")
	})

	t.Run("date validation", func(t *testing.T) {
		input := base
		input.StartDate = "01-08-2026"
		_, err := svc.AddPrescription(1, patientID, input)
		assert.ErrorContains(t, err, "invalid start date")

		input = base
		input.EndDate = "2026-07-31"
		_, err = svc.AddPrescription(1, patientID, input)
		assert.ErrorContains(t, err, "end date cannot be before start date")

		input = base
		input.EndDate = "2026-08-01"
		_, err = svc.AddPrescription(1, patientID, input)
		assert.NoError(t, err, "end date equal to start date is allowed")
	})
}

func TestAddNote(t *testing.T) {
	svc, patientID := newRecordsService(t)

	t.Run("content must carry substance", func(t *testing.T) {
		_, err := svc.AddNote(1, patientID, NoteInput{Content: "   ok    "})
		assert.ErrorContains(t, err, "at least 10 characters")
	})

	t.Run("type defaults to visit", func(t *testing.T) {
		row, err := svc.AddNote(1, patientID, NoteInput{Content: "Patient presents with mild fever."})
		require.NoError(t, err)
		assert.Equal(t, "visit", row.Type)
	})

	t.Run("type is normalized and validated", func(t *testing.T) {
		row, err := svc.AddNote(1, patientID, NoteInput{Content: "Suspected hypertension.", Type: "Diagnosis"})
		require.NoError(t, err)
		assert.Equal(t, "diagnosis", row.Type)

		_, err = svc.AddNote(1, patientID, NoteInput{Content: "Some free text content.", Type: "rant"})
		assert.ErrorContains(t, err, "invalid note type")
	})
}

func TestGetRecords(t *testing.T) {
	svc, patientID := newRecordsService(t)

	_, err := svc.AddVitals(1, patientID, VitalsInput{
		Systolic:  intPtr(120),
		Diastolic: intPtr(80),
	})
	require.NoError(t, err)
	_, err = svc.AddVitals(1, patientID, VitalsInput{HeartRate: intPtr(66)})
	require.NoError(t, err)

	_, err = svc.AddPrescription(1, patientID, PrescriptionInput{
		MedicationName: "Amoxicillin", Dosage: "500mg", Frequency: "3x daily", StartDate: "2026-08-01",
	})
	require.NoError(t, err)

	_, err = svc.AddNote(1, patientID, NoteInput{Content: "Follow up in two weeks."})
	require.NoError(t, err)

	records, err := svc.GetRecords(1, patientID)
	require.NoError(t, err)

	require.Len(t, records.Vitals, 2)
	var withBP *VitalsRecord
	for i := range records.Vitals {
		if records.Vitals[i].BloodPressure != "" {
			withBP = &records.Vitals[i]
		}
	}
	require.NotNil(t, withBP)
	assert.Equal(t, "120/80", withBP.BloodPressure)
	assert.Equal(t, "Dr. Amira Hassan", withBP.RecordedName)

	require.Len(t, records.Prescriptions, 1)
	assert.Equal(t, "Dr. Amira Hassan", records.Prescriptions[0].PrescribedName)

	require.Len(t, records.Notes, 1)
	assert.Equal(t, "Dr. Amira Hassan", records.Notes[0].WrittenName)
	assert.NotNil(t, records.Scans)

	_, err = svc.GetRecords(2, patientID)
	assert.ErrorIs(t, err, ErrNotOwned)
}
