package task

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/triologic/medrec/services/logging"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrNotFound        = errors.New("task not found")
	ErrInvalidStatus   = errors.New("invalid task status")
	ErrInvalidPriority = errors.New("invalid task priority")
)

var validStatuses = map[string]bool{
	"pending":     true,
	"in_progress": true,
	"completed":   true,
	"cancelled":   true,
}

var validPriorities = map[string]bool{
	"low":    true,
	"medium": true,
	"high":   true,
}

type Service struct {
	db     *gorm.DB
	logger *logging.Service
}

func NewService(db *gorm.DB, logger *logging.Service) *Service {
	return &Service{db: db, logger: logger}
}

type SaveInput struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date"`
}

func (s *Service) Save(doctorID uint, input SaveInput) (*Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}

	status := strings.TrimSpace(input.Status)
	if status == "" {
		status = "pending"
	}
	if !validStatuses[status] {
		return nil, ErrInvalidStatus
	}

	priority := strings.TrimSpace(input.Priority)
	if priority == "" {
		priority = "medium"
	}
	if !validPriorities[priority] {
		return nil, ErrInvalidPriority
	}

	dueDate := strings.TrimSpace(input.DueDate)
	if dueDate != "" {
		if _, err := time.Parse("2006-01-02", dueDate); err != nil {
			return nil, fmt.Errorf("invalid due date: %s (expected YYYY-MM-DD)", dueDate)
		}
	}

	if input.ID > 0 {
		var existing Task
		err := s.db.Where("id = ? AND doctor_id = ?", input.ID, doctorID).First(&existing).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("failed to load task: %w", err)
		}

		updates := map[string]any{
			"title":       title,
			"description": strings.TrimSpace(input.Description),
			"status":      status,
			"priority":    priority,
			"due_date":    dueDate,
			"updated_by":  doctorID,
		}
		if err := s.db.Model(&existing).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update task: %w", err)
		}
		return &existing, nil
	}

	t := &Task{
		DoctorID:    doctorID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Status:      status,
		Priority:    priority,
		DueDate:     dueDate,
		UpdatedBy:   doctorID,
	}
	if err := s.db.Create(t).Error; err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("task created", zap.Uint("task_id", t.ID), zap.Uint("doctor_id", doctorID))
	}
	return t, nil
}

type ListResult struct {
	Tasks  []Task         `json:"tasks"`
	Counts map[string]int `json:"counts"`
}

// List orders open work first (pending, then in_progress), high priority
// before low, nearest due date first.
func (s *Service) List(doctorID uint, filter string) (*ListResult, error) {
	q := s.db.Model(&Task{}).Where("doctor_id = ?", doctorID)

	today := time.Now().Format("2006-01-02")
	switch filter {
	case "today":
		q = q.Where("due_date = ?", today)
	case "upcoming":
		q = q.Where("due_date > ?", today)
	case "", "all":
	default:
		return nil, fmt.Errorf("invalid filter: %s", filter)
	}

	var tasks []Task
	err := q.Order(`CASE status
			WHEN 'pending' THEN 0
			WHEN 'in_progress' THEN 1
			WHEN 'completed' THEN 2
			ELSE 3 END,
		CASE priority
			WHEN 'high' THEN 0
			WHEN 'medium' THEN 1
			ELSE 2 END,
		due_date ASC`).
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	result := &ListResult{
		Tasks:  tasks,
		Counts: map[string]int{"pending": 0, "in_progress": 0, "completed": 0, "cancelled": 0},
	}
	for _, t := range tasks {
		result.Counts[t.Status]++
	}
	return result, nil
}

// UpdateStatus changes a task's status; a miss on id+doctor reports not
// found rather than touching another doctor's task.
func (s *Service) UpdateStatus(doctorID, taskID uint, status string) error {
	status = strings.TrimSpace(status)
	if !validStatuses[status] {
		return ErrInvalidStatus
	}

	result := s.db.Model(&Task{}).
		Where("id = ? AND doctor_id = ?", taskID, doctorID).
		Updates(map[string]any{"status": status, "updated_by": doctorID})
	if result.Error != nil {
		return fmt.Errorf("failed to update task status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
