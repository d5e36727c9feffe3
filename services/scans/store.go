package scans

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store writes scan files under the configured uploads directory using
// the layout uploads/scans/{patientID}/{uuid}.{ext}. Rows keep the path
// relative to the uploads root.
type Store struct {
	root string
}

func NewStore(root string) *Store {
	return &Store{root: root}
}

func (s *Store) patientDir(patientID uint) string {
	return filepath.Join("scans", fmt.Sprintf("%d", patientID))
}

// Save streams the file to disk and returns the relative path and the
// generated file name.
func (s *Store) Save(patientID uint, ext string, src io.Reader) (relPath, fileName string, err error) {
	dir := filepath.Join(s.root, s.patientDir(patientID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create scan directory: %w", err)
	}

	fileName = uuid.New().String()
	if ext != "" {
		fileName += "." + ext
	}
	relPath = filepath.Join(s.patientDir(patientID), fileName)

	dst, err := os.Create(filepath.Join(s.root, relPath))
	if err != nil {
		return "", "", fmt.Errorf("failed to create scan file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(filepath.Join(s.root, relPath))
		return "", "", fmt.Errorf("failed to write scan file: %w", err)
	}

	return relPath, fileName, nil
}

// RemoveFile deletes a stored file; a missing file is not an error.
func (s *Store) RemoveFile(relPath string) error {
	if relPath == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.root, relPath))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// RemovePatientDir removes the patient's scan directory when it is empty.
func (s *Store) RemovePatientDir(patientID uint) error {
	err := os.Remove(filepath.Join(s.root, s.patientDir(patientID)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
