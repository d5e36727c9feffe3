package report

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triologic/medrec/services/patient"
	"github.com/triologic/medrec/testutils"
)

func TestSummarize(t *testing.T) {
	db := testutils.SetupTestDB(t,
		&patient.Patient{}, &patient.Condition{}, &patient.Allergy{},
		&patient.Medication{}, &patient.Surgery{}, &patient.EmergencyContact{},
		&patient.Scan{}, &patient.VitalSigns{}, &patient.Prescription{}, &patient.ClinicalNote{})

	patientSvc := patient.NewService(testutils.GetTestConfig(), db, nil)
	svc := NewService(db, nil)

	mk := func(doctorID uint, n int, sex string, history patient.MedicalHistory) {
		t.Helper()
		_, err := patientSvc.Create(doctorID, patient.PersonalInfo{
			FirstName: "Pat", LastName: fmt.Sprintf("Num%d", n),
			Email: fmt.Sprintf("p%d@example.com", n),
			Sex:   sex, DOB: "1990-01-01", AddressLine1: "1 Main St",
			Nationality: "German", ZipCode: "10115", State: "Berlin",
			PhoneNumber: "5550101",
		}, history, patient.ContactInfo{})
		require.NoError(t, err)
	}

	hypertension := patient.MedicalHistory{
		Conditions:  []patient.CodeDetail{{Code: "I10"}},
		Medications: []patient.MedicationEntry{{Name: "Lisinopril"}},
	}
	diabetes := patient.MedicalHistory{
		Conditions:  []patient.CodeDetail{{Code: "E11"}, {Code: "I10"}},
		Medications: []patient.MedicationEntry{{Name: "Metformin"}},
		Allergies:   []patient.CodeDetail{{Code: "Z88.0"}},
	}

	mk(1, 1, "male", hypertension)
	mk(1, 2, "female", diabetes)
	mk(1, 3, "female", patient.MedicalHistory{})
	// Another doctor's panel must never leak into the report.
	mk(2, 4, "male", hypertension)

	t.Run("totals and breakdowns are tenant scoped", func(t *testing.T) {
		summary, err := svc.Summarize(1)
		require.NoError(t, err)

		assert.Equal(t, 3, summary.Totals.Patients)
		assert.Equal(t, 3, summary.Totals.Conditions)
		assert.Equal(t, 2, summary.Totals.Medications)
		assert.Equal(t, 1, summary.Totals.Allergies)

		require.NotEmpty(t, summary.Conditions)
		assert.Equal(t, CountEntry{Label: "I10", Count: 2}, summary.Conditions[0])

		require.Len(t, summary.Demographics, 2)
		assert.Equal(t, CountEntry{Label: "female", Count: 2}, summary.Demographics[0])
	})

	t.Run("deleted patients fall out of every aggregate", func(t *testing.T) {
		var victim patient.Patient
		require.NoError(t, db.Where("doctor_id = ? AND sex = ?", uint(1), "male").First(&victim).Error)
		require.NoError(t, db.Exec("CREATE TABLE IF NOT EXISTS appointments (id INTEGER PRIMARY KEY, patient_id INTEGER)").Error)
		require.NoError(t, patientSvc.Delete(1, victim.ID))

		summary, err := svc.Summarize(1)
		require.NoError(t, err)
		assert.Equal(t, 2, summary.Totals.Patients)
		assert.Equal(t, 2, summary.Totals.Conditions)
		require.Len(t, summary.Demographics, 1)
		assert.Equal(t, "female", summary.Demographics[0].Label)
	})

	t.Run("empty panel", func(t *testing.T) {
		summary, err := svc.Summarize(99)
		require.NoError(t, err)
		assert.Zero(t, summary.Totals.Patients)
		assert.Empty(t, summary.Conditions)
		assert.Empty(t, summary.Demographics)
	})
}
