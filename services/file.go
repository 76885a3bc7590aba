package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Uploader stores an attachment and returns where it lives.
type Uploader interface {
	Upload(ctx context.Context, file io.Reader, publicID, folder string) (*UploadedFile, error)
}

type UploadedFile struct {
	URL      string
	PublicID string
	Bytes    int
	Format   string
}

type FileUpload struct {
	Filename    string
	Content     io.Reader
	PatientID   uint
	DoctorID    uint
	FileType    string
	Description string
}

type FileResult struct {
	URL         string    `json:"url"`
	PublicID    string    `json:"publicId"`
	FileName    string    `json:"fileName"`
	FileType    string    `json:"fileType"`
	Description string    `json:"description"`
	Format      string    `json:"format,omitempty"`
	Bytes       int       `json:"bytes,omitempty"`
	PatientID   uint      `json:"patientId,omitempty"`
	DoctorID    uint      `json:"doctorId,omitempty"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// FileService uploads medical attachments. A nil uploader means storage is
// not configured.
type FileService struct {
	uploader Uploader
	profiles ProfileLookup
	folder   string
	now      func() time.Time
}

func NewFileService(uploader Uploader, profiles ProfileLookup, folder string, now func() time.Time) *FileService {
	if now == nil {
		now = time.Now
	}
	return &FileService{uploader: uploader, profiles: profiles, folder: folder, now: now}
}

func (s *FileService) Upload(ctx context.Context, in FileUpload) (*FileResult, error) {
	if s.uploader == nil {
		return nil, Unavailable("File storage is not configured")
	}
	if in.Content == nil || strings.TrimSpace(in.Filename) == "" {
		return nil, ValidationFailed(map[string]string{"file": "File is required"})
	}
	if in.PatientID != 0 {
		if err := requirePatient(ctx, s.profiles, in.PatientID); err != nil {
			return nil, err
		}
	}
	if in.DoctorID != 0 {
		if err := requireDoctor(ctx, s.profiles, in.DoctorID); err != nil {
			return nil, err
		}
	}

	fileType := strings.ToUpper(strings.TrimSpace(in.FileType))
	if fileType == "" {
		fileType = "OTHER"
	}

	folder := path.Join(s.folder, "misc")
	if in.PatientID != 0 {
		folder = path.Join(s.folder, "patients", fmt.Sprint(in.PatientID))
	}
	stem := strings.TrimSuffix(path.Base(in.Filename), path.Ext(in.Filename))
	publicID := fmt.Sprintf("%s-%s", sanitize(stem), uuid.NewString()[:8])

	up, err := s.uploader.Upload(ctx, in.Content, publicID, folder)
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", in.Filename, err)
	}
	return &FileResult{
		URL:         up.URL,
		PublicID:    up.PublicID,
		FileName:    path.Base(in.Filename),
		FileType:    fileType,
		Description: in.Description,
		Format:      up.Format,
		Bytes:       up.Bytes,
		PatientID:   in.PatientID,
		DoctorID:    in.DoctorID,
		UploadedAt:  s.now(),
	}, nil
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	if b.Len() == 0 {
		return "file"
	}
	return b.String()
}
