package task

import (
	"gorm.io/gorm"
)

type Task struct {
	gorm.Model
	DoctorID    uint   `json:"doctor_id" gorm:"index;not null"`
	Title       string `json:"title" gorm:"size:200;not null"`
	Description string `json:"description" gorm:"type:text"`
	Status      string `json:"status" gorm:"size:20;default:'pending'"`
	Priority    string `json:"priority" gorm:"size:10;default:'medium'"`
	DueDate     string `json:"due_date" gorm:"size:10"`
	UpdatedBy   uint   `json:"updated_by"`
}

func (Task) TableName() string {
	return "doctor_tasks"
}
