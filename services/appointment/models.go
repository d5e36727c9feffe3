package appointment

import (
	"gorm.io/gorm"
)

type Appointment struct {
	gorm.Model
	DoctorID  uint   `json:"doctor_id" gorm:"index;not null"`
	PatientID uint   `json:"patient_id" gorm:"index;not null"`
	Date      string `json:"date" gorm:"size:10;not null"`
	Time      string `json:"time" gorm:"size:5;not null"`
	Duration  int    `json:"duration" gorm:"default:30"`
	Status    string `json:"status" gorm:"size:20;default:'scheduled'"`
	Type      string `json:"type" gorm:"size:30;default:'checkup'"`
	Reason    string `json:"reason" gorm:"type:text"`
	Notes     string `json:"notes" gorm:"type:text"`
}

func (Appointment) TableName() string {
	return "appointments"
}
