package intake

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/triologic/medrec/services/logging"
	"github.com/triologic/medrec/services/patient"
	"github.com/triologic/medrec/services/scans"
	"go.uber.org/zap"
)

var ErrIncompleteDraft = errors.New("patient information is incomplete")

type Service struct {
	store      *draftStore
	patientSvc *patient.Service
	scanSvc    *scans.Service
	logger     *logging.Service
}

func NewService(patientSvc *patient.Service, scanSvc *scans.Service, logger *logging.Service) *Service {
	return &Service{
		store:      newDraftStore(24 * time.Hour),
		patientSvc: patientSvc,
		scanSvc:    scanSvc,
		logger:     logger,
	}
}

func (s *Service) SetPersonal(token string, p patient.PersonalInfo) {
	s.store.setPersonal(token, p)
}

func (s *Service) SetHistory(token string, h patient.MedicalHistory) {
	s.store.setHistory(token, h)
}

func (s *Service) SetContact(token string, c patient.ContactInfo) {
	s.store.setContact(token, c)
}

func (s *Service) Draft(token string) Draft {
	return s.store.get(token)
}

// Stage validates the attachment up front so an oversized or unsupported
// file is rejected when added, not at submit time.
func (s *Service) Stage(token string, scan StagedScan) (int, error) {
	if err := s.scanSvc.ValidateFile(scan.FileName, scan.MimeType, scan.Size); err != nil {
		return 0, err
	}
	return s.store.stage(token, scan), nil
}

func (s *Service) RemoveStaged(token string, localID int) bool {
	return s.store.removeStaged(token, localID)
}

func (s *Service) ListStaged(token string) []StagedScan {
	return s.store.listStaged(token)
}

func (s *Service) Clear(token string) {
	s.store.clear(token)
}

func (s *Service) Prune() {
	s.store.prune()
}

// StartPruneWorker drops idle drafts on a fixed interval so abandoned
// wizards do not pin their staged scan bytes in memory.
func (s *Service) StartPruneWorker(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			s.Prune()
		}
	}()

	if s.logger != nil {
		s.logger.Info("started intake draft prune worker",
			zap.Duration("interval", interval))
	}
}

type UploadFailure struct {
	FileName string `json:"file_name"`
	Error    string `json:"error"`
}

type Result struct {
	PatientID    string          `json:"patient_id"`
	BillingSaved bool            `json:"billing_saved"`
	Uploaded     []string        `json:"uploaded"`
	Failed       []UploadFailure `json:"failed"`
}

// ProgressFunc reports per-file upload progress as "(k/total)".
type ProgressFunc func(k, total int, fileName string)

// Submit commits the staged intake. Patient creation is the point of no
// return: before it, any failure leaves the draft intact; after it,
// billing and scan failures are recorded in the result but the created
// patient stands and the draft is cleared.
func (s *Service) Submit(doctorID uint, token string, billing patient.BillingInput, progress ProgressFunc) (*Result, error) {
	draft := s.store.get(token)

	if draft.Personal == nil {
		return nil, ErrIncompleteDraft
	}
	if strings.TrimSpace(billing.BillingType) == "" {
		return nil, fmt.Errorf("billing type is required")
	}

	var history patient.MedicalHistory
	if draft.History != nil {
		history = *draft.History
	}
	var contact patient.ContactInfo
	if draft.Contact != nil {
		contact = *draft.Contact
	}

	p, err := s.patientSvc.Create(doctorID, *draft.Personal, history, contact)
	if err != nil {
		return nil, err
	}

	result := &Result{
		PatientID: patient.FormatID(p.ID),
		Uploaded:  []string{},
		Failed:    []UploadFailure{},
	}

	if err := s.patientSvc.SaveBilling(doctorID, p.ID, billing); err != nil {
		if s.logger != nil {
			s.logger.Warn("billing save failed during intake submit",
				zap.Error(err), zap.Uint("patient_id", p.ID))
		}
	} else {
		result.BillingSaved = true
	}

	staged := s.store.listStaged(token)
	total := len(staged)
	for i, scan := range staged {
		if progress != nil {
			progress(i+1, total, scan.FileName)
		}
		_, err := s.scanSvc.Upload(doctorID, p.ID, scans.UploadInput{
			FileName:    scan.FileName,
			MimeType:    scan.MimeType,
			Size:        scan.Size,
			ScanType:    scan.ScanType,
			ScanName:    scan.ScanName,
			Description: scan.Description,
			ScanDate:    scan.ScanDate,
			Content:     bytes.NewReader(scan.Content),
		})
		if err != nil {
			result.Failed = append(result.Failed, UploadFailure{
				FileName: scan.FileName,
				Error:    err.Error(),
			})
			continue
		}
		result.Uploaded = append(result.Uploaded, scan.FileName)
	}

	s.store.clear(token)

	if s.logger != nil {
		s.logger.Info("intake submitted",
			zap.Uint("doctor_id", doctorID),
			zap.String("patient_id", result.PatientID),
			zap.Int("scans_uploaded", len(result.Uploaded)),
			zap.Int("scans_failed", len(result.Failed)))
	}
	return result, nil
}
