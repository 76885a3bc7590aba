package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/meinhoongagan/smart-clinic/models"
	"github.com/meinhoongagan/smart-clinic/repository"
)

type MedicalHistoryStore interface {
	AppendForPatient(ctx context.Context, patientID uint, rec models.MedicalRecord, now time.Time) (*models.MedicalHistory, error)
	AppendByID(ctx context.Context, id string, rec models.MedicalRecord, now time.Time) (*models.MedicalHistory, error)
	ByID(ctx context.Context, id string) (*models.MedicalHistory, error)
	ByPatient(ctx context.Context, patientID uint) (*models.MedicalHistory, error)
	RemoveRecord(ctx context.Context, id string, index int, now time.Time) (*models.MedicalHistory, error)
	Delete(ctx context.Context, id string) error
	All(ctx context.Context) ([]models.MedicalHistory, error)
}

type RecordParams struct {
	RecordType  string   `json:"recordType"`
	Description string   `json:"description"`
	DoctorNotes string   `json:"doctorNotes"`
	DoctorID    uint     `json:"doctorId"`
	Attachments []string `json:"attachments"`
}

type MedicalHistoryParams struct {
	PatientID uint          `json:"patientId" validate:"required"`
	Record    *RecordParams `json:"record" validate:"required"`
}

type MedicalHistoryService struct {
	store    MedicalHistoryStore
	profiles ProfileLookup
	now      func() time.Time
}

func NewMedicalHistoryService(store MedicalHistoryStore, profiles ProfileLookup, now func() time.Time) *MedicalHistoryService {
	if now == nil {
		now = time.Now
	}
	return &MedicalHistoryService{store: store, profiles: profiles, now: now}
}

// Add appends a record to the patient's history, creating the history on
// first use.
func (s *MedicalHistoryService) Add(ctx context.Context, p MedicalHistoryParams) (*models.MedicalHistory, error) {
	if err := Validate(&p); err != nil {
		return nil, err
	}
	if err := requirePatient(ctx, s.profiles, p.PatientID); err != nil {
		return nil, err
	}
	now := s.now()
	h, err := s.store.AppendForPatient(ctx, p.PatientID, s.record(p.Record, now), now)
	if err != nil {
		return nil, fmt.Errorf("append medical record: %w", err)
	}
	return h, nil
}

// AppendRecord adds a record to an existing history.
func (s *MedicalHistoryService) AppendRecord(ctx context.Context, id string, p MedicalHistoryParams) (*models.MedicalHistory, error) {
	if err := Validate(&p); err != nil {
		return nil, err
	}
	if err := requirePatient(ctx, s.profiles, p.PatientID); err != nil {
		return nil, err
	}
	now := s.now()
	h, err := s.store.AppendByID(ctx, id, s.record(p.Record, now), now)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NotFound("Medical history not found")
	}
	if err != nil {
		return nil, fmt.Errorf("append medical record: %w", err)
	}
	return h, nil
}

func (s *MedicalHistoryService) Get(ctx context.Context, id string) (*models.MedicalHistory, error) {
	h, err := s.store.ByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NotFound("Medical history not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load medical history: %w", err)
	}
	return h, nil
}

// ForPatient returns nil without error when the patient has no history yet.
func (s *MedicalHistoryService) ForPatient(ctx context.Context, patientID uint) (*models.MedicalHistory, error) {
	if err := requirePatient(ctx, s.profiles, patientID); err != nil {
		return nil, err
	}
	h, err := s.store.ByPatient(ctx, patientID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load medical history: %w", err)
	}
	return h, nil
}

func (s *MedicalHistoryService) Delete(ctx context.Context, id string) error {
	err := s.store.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return NotFound("Medical history not found")
	}
	if err != nil {
		return fmt.Errorf("delete medical history: %w", err)
	}
	return nil
}

// DeleteRecord removes the record at index. A missing history and a bad
// index are both not found.
func (s *MedicalHistoryService) DeleteRecord(ctx context.Context, id string, index int) (*models.MedicalHistory, error) {
	h, err := s.store.RemoveRecord(ctx, id, index, s.now())
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, NotFound("Medical history not found")
	case errors.Is(err, repository.ErrRecordIndex):
		return nil, NotFound("Invalid record index")
	case err != nil:
		return nil, fmt.Errorf("remove medical record: %w", err)
	}
	return h, nil
}

func (s *MedicalHistoryService) All(ctx context.Context) ([]models.MedicalHistory, error) {
	list, err := s.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list medical histories: %w", err)
	}
	return nonNil(list), nil
}

func (s *MedicalHistoryService) record(p *RecordParams, now time.Time) models.MedicalRecord {
	attachments := p.Attachments
	if attachments == nil {
		attachments = []string{}
	}
	return models.MedicalRecord{
		RecordType:  p.RecordType,
		Description: p.Description,
		DoctorNotes: p.DoctorNotes,
		DoctorID:    p.DoctorID,
		RecordDate:  now,
		Attachments: attachments,
	}
}
