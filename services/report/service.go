package report

import (
	"fmt"

	"github.com/triologic/medrec/services/logging"
	"gorm.io/gorm"
)

type Service struct {
	db     *gorm.DB
	logger *logging.Service
}

func NewService(db *gorm.DB, logger *logging.Service) *Service {
	return &Service{db: db, logger: logger}
}

type CountEntry struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

type Totals struct {
	Patients    int `json:"patients"`
	Conditions  int `json:"conditions"`
	Medications int `json:"medications"`
	Allergies   int `json:"allergies"`
}

type Summary struct {
	Totals       Totals       `json:"totals"`
	Conditions   []CountEntry `json:"conditions"`
	Medications  []CountEntry `json:"medications"`
	Allergies    []CountEntry `json:"allergies"`
	Demographics []CountEntry `json:"demographics"`
}

// Summarize aggregates the doctor's panel: totals, condition breakdown,
// top medications and allergies, and sex demographics. Every query is
// scoped through the patients table so the report never crosses tenants.
func (s *Service) Summarize(doctorID uint) (*Summary, error) {
	summary := &Summary{
		Conditions:   []CountEntry{},
		Medications:  []CountEntry{},
		Allergies:    []CountEntry{},
		Demographics: []CountEntry{},
	}

	patientScope := s.db.Table("patients").
		Select("id").
		Where("doctor_id = ? AND deleted_at IS NULL", doctorID)

	var patientCount int64
	if err := s.db.Table("patients").
		Where("doctor_id = ? AND deleted_at IS NULL", doctorID).
		Count(&patientCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count patients: %w", err)
	}
	summary.Totals.Patients = int(patientCount)

	count := func(table string) (int, error) {
		var n int64
		err := s.db.Table(table).
			Where("patient_id IN (?) AND deleted_at IS NULL", patientScope).
			Count(&n).Error
		return int(n), err
	}

	var err error
	if summary.Totals.Conditions, err = count("patient_conditions"); err != nil {
		return nil, fmt.Errorf("failed to count conditions: %w", err)
	}
	if summary.Totals.Medications, err = count("patient_medications"); err != nil {
		return nil, fmt.Errorf("failed to count medications: %w", err)
	}
	if summary.Totals.Allergies, err = count("patient_allergies"); err != nil {
		return nil, fmt.Errorf("failed to count allergies: %w", err)
	}

	breakdown := func(table, column string, limit int) ([]CountEntry, error) {
		var entries []CountEntry
		q := s.db.Table(table).
			Select(column+" AS label, COUNT(*) AS count").
			Where("patient_id IN (?) AND deleted_at IS NULL", patientScope).
			Group(column).
			Order("count DESC, label ASC")
		if limit > 0 {
			q = q.Limit(limit)
		}
		if err := q.Find(&entries).Error; err != nil {
			return nil, err
		}
		return entries, nil
	}

	if summary.Conditions, err = breakdown("patient_conditions", "code", 0); err != nil {
		return nil, fmt.Errorf("failed to break down conditions: %w", err)
	}
	if summary.Medications, err = breakdown("patient_medications", "name", 10); err != nil {
		return nil, fmt.Errorf("failed to break down medications: %w", err)
	}
	if summary.Allergies, err = breakdown("patient_allergies", "code", 10); err != nil {
		return nil, fmt.Errorf("failed to break down allergies: %w", err)
	}

	var demographics []CountEntry
	if err := s.db.Table("patients").
		Select("sex AS label, COUNT(*) AS count").
		Where("doctor_id = ? AND deleted_at IS NULL", doctorID).
		Group("sex").
		Order("count DESC").
		Find(&demographics).Error; err != nil {
		return nil, fmt.Errorf("failed to load demographics: %w", err)
	}
	summary.Demographics = demographics

	return summary, nil
}
