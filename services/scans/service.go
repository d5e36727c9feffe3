package scans

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/triologic/medrec/config"
	"github.com/triologic/medrec/services/logging"
	"github.com/triologic/medrec/services/patient"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var allowedMimeTypes = map[string]bool{
	"image/jpeg":        true,
	"image/jpg":         true,
	"image/png":         true,
	"image/gif":         true,
	"image/webp":        true,
	"application/pdf":   true,
	"application/dicom": true,
}

var allowedExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"gif":  true,
	"webp": true,
	"pdf":  true,
	"dcm":  true,
}

type Service struct {
	config     *config.Config
	db         *gorm.DB
	store      *Store
	patientSvc *patient.Service
	logger     *logging.Service
}

func NewService(cfg *config.Config, db *gorm.DB, store *Store, patientSvc *patient.Service, logger *logging.Service) *Service {
	return &Service{
		config:     cfg,
		db:         db,
		store:      store,
		patientSvc: patientSvc,
		logger:     logger,
	}
}

type UploadInput struct {
	FileName    string
	MimeType    string
	Size        int64
	ScanType    string
	ScanName    string
	Description string
	ScanDate    string
	Content     io.Reader
}

// ValidateFile applies the size cap and the type allow-lists. A file is
// accepted when either its MIME type or its extension is recognised.
func (s *Service) ValidateFile(fileName, mimeType string, size int64) error {
	if size > s.config.Uploads.MaxScanSize {
		return fmt.Errorf("file exceeds the maximum size of %d MB", s.config.Uploads.MaxScanSize/(1024*1024))
	}

	mime := strings.ToLower(strings.TrimSpace(mimeType))
	if allowedMimeTypes[mime] || strings.HasPrefix(mime, "image/") {
		return nil
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	if allowedExtensions[ext] {
		return nil
	}

	return fmt.Errorf("unsupported file type: %s", fileName)
}

// Upload stores the file and inserts the scan row. If the insert fails
// the stored file is removed so disk and database stay consistent.
func (s *Service) Upload(doctorID, patientID uint, input UploadInput) (*patient.Scan, error) {
	if err := s.patientSvc.Authorize(doctorID, patientID); err != nil {
		return nil, err
	}

	if err := s.ValidateFile(input.FileName, input.MimeType, input.Size); err != nil {
		return nil, err
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(input.FileName), "."))
	relPath, storedName, err := s.store.Save(patientID, ext, input.Content)
	if err != nil {
		return nil, err
	}

	scanName := strings.TrimSpace(input.ScanName)
	if scanName == "" {
		scanName = input.FileName
	}

	row := &patient.Scan{
		PatientID:   patientID,
		ScanType:    strings.TrimSpace(input.ScanType),
		ScanName:    scanName,
		FileName:    storedName,
		FilePath:    relPath,
		FileSize:    input.Size,
		MimeType:    input.MimeType,
		Description: strings.TrimSpace(input.Description),
		ScanDate:    strings.TrimSpace(input.ScanDate),
		UploadedBy:  doctorID,
	}
	if err := s.db.Create(row).Error; err != nil {
		_ = s.store.RemoveFile(relPath)
		return nil, fmt.Errorf("failed to record scan: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("scan uploaded",
			zap.Uint("patient_id", patientID),
			zap.String("file", storedName))
	}
	return row, nil
}

func (s *Service) List(doctorID, patientID uint) ([]patient.Scan, error) {
	if err := s.patientSvc.Authorize(doctorID, patientID); err != nil {
		return nil, err
	}

	var rows []patient.Scan
	if err := s.db.Where("patient_id = ?", patientID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	return rows, nil
}
