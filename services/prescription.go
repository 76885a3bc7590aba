package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/meinhoongagan/smart-clinic/models"
	"github.com/meinhoongagan/smart-clinic/repository"
)

type PrescriptionStore interface {
	Create(ctx context.Context, p *models.Prescription) error
	ByID(ctx context.Context, id string) (*models.Prescription, error)
	Replace(ctx context.Context, p *models.Prescription) error
	Delete(ctx context.Context, id string) error
	ByPatient(ctx context.Context, patientID uint) ([]models.Prescription, error)
	ByDoctor(ctx context.Context, doctorID uint) ([]models.Prescription, error)
}

type PrescriptionParams struct {
	PatientID    uint              `json:"patientId" validate:"required"`
	DoctorID     uint              `json:"doctorId" validate:"required"`
	MedicineList []models.Medicine `json:"medicineList" validate:"required"`
	Notes        string            `json:"notes"`
}

// PrescriptionService keeps prescriptions in the document store and checks
// profile references against the relational store. The two stores are not
// updated atomically.
type PrescriptionService struct {
	store    PrescriptionStore
	profiles ProfileLookup
	now      func() time.Time
}

func NewPrescriptionService(store PrescriptionStore, profiles ProfileLookup, now func() time.Time) *PrescriptionService {
	if now == nil {
		now = time.Now
	}
	return &PrescriptionService{store: store, profiles: profiles, now: now}
}

func (s *PrescriptionService) Create(ctx context.Context, p PrescriptionParams) (*models.Prescription, error) {
	if err := s.check(ctx, &p); err != nil {
		return nil, err
	}
	rx := &models.Prescription{
		PatientID:    p.PatientID,
		DoctorID:     p.DoctorID,
		MedicineList: p.MedicineList,
		Notes:        p.Notes,
		CreatedAt:    s.now(),
	}
	if err := s.store.Create(ctx, rx); err != nil {
		return nil, fmt.Errorf("create prescription: %w", err)
	}
	return rx, nil
}

func (s *PrescriptionService) Get(ctx context.Context, id string) (*models.Prescription, error) {
	rx, err := s.store.ByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NotFound("Prescription not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load prescription: %w", err)
	}
	return rx, nil
}

// Update replaces the references, medicines and notes. CreatedAt is kept.
func (s *PrescriptionService) Update(ctx context.Context, id string, p PrescriptionParams) (*models.Prescription, error) {
	rx, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.check(ctx, &p); err != nil {
		return nil, err
	}
	rx.PatientID = p.PatientID
	rx.DoctorID = p.DoctorID
	rx.MedicineList = p.MedicineList
	rx.Notes = p.Notes
	if err := s.store.Replace(ctx, rx); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFound("Prescription not found")
		}
		return nil, fmt.Errorf("update prescription: %w", err)
	}
	return rx, nil
}

func (s *PrescriptionService) Delete(ctx context.Context, id string) error {
	err := s.store.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return NotFound("Prescription not found")
	}
	if err != nil {
		return fmt.Errorf("delete prescription: %w", err)
	}
	return nil
}

// ForPatient lists newest first.
func (s *PrescriptionService) ForPatient(ctx context.Context, patientID uint) ([]models.Prescription, error) {
	if err := requirePatient(ctx, s.profiles, patientID); err != nil {
		return nil, err
	}
	list, err := s.store.ByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("list prescriptions: %w", err)
	}
	return nonNil(list), nil
}

func (s *PrescriptionService) ForDoctor(ctx context.Context, doctorID uint) ([]models.Prescription, error) {
	if err := requireDoctor(ctx, s.profiles, doctorID); err != nil {
		return nil, err
	}
	list, err := s.store.ByDoctor(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("list prescriptions: %w", err)
	}
	return nonNil(list), nil
}

func (s *PrescriptionService) check(ctx context.Context, p *PrescriptionParams) error {
	if err := Validate(p); err != nil {
		return err
	}
	if err := requirePatient(ctx, s.profiles, p.PatientID); err != nil {
		return err
	}
	return requireDoctor(ctx, s.profiles, p.DoctorID)
}
