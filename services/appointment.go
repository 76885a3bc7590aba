package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/meinhoongagan/smart-clinic/models"
	"github.com/meinhoongagan/smart-clinic/repository"
	"github.com/rs/zerolog"
)

// ProfileLookup answers referential checks against the relational store.
type ProfileLookup interface {
	PatientExists(ctx context.Context, id uint) (bool, error)
	DoctorExists(ctx context.Context, id uint) (bool, error)
}

type AppointmentStore interface {
	ProfileLookup
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
	CreateAppointment(ctx context.Context, a *models.Appointment) error
	AppointmentByID(ctx context.Context, id uint) (*models.Appointment, error)
	SaveAppointment(ctx context.Context, a *models.Appointment) error
	AppointmentsByPatient(ctx context.Context, patientID uint) ([]models.Appointment, error)
	AppointmentsByDoctor(ctx context.Context, doctorID uint) ([]models.Appointment, error)
}

// EventPublisher delivers domain events. Publishing is best effort.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, any) error { return nil }

type AppointmentService struct {
	store  AppointmentStore
	events EventPublisher
	now    func() time.Time
	log    zerolog.Logger
}

func NewAppointmentService(store AppointmentStore, events EventPublisher, now func() time.Time, log zerolog.Logger) *AppointmentService {
	if events == nil {
		events = nopPublisher{}
	}
	if now == nil {
		now = time.Now
	}
	return &AppointmentService{store: store, events: events, now: now, log: log}
}

// Book creates a PENDING appointment. The referential checks and the insert
// share one transaction. Overlapping bookings are allowed.
func (s *AppointmentService) Book(ctx context.Context, patientID, doctorID uint, at time.Time) (*models.Appointment, error) {
	if !at.After(s.now()) {
		return nil, InvalidArgument("Appointment date must be in the future")
	}

	appt := &models.Appointment{
		Date:      at,
		Status:    models.StatusPending,
		PatientID: patientID,
		DoctorID:  doctorID,
	}
	err := s.store.Transaction(ctx, func(ctx context.Context) error {
		if err := requirePatient(ctx, s.store, patientID); err != nil {
			return err
		}
		if err := requireDoctor(ctx, s.store, doctorID); err != nil {
			return err
		}
		if err := s.store.CreateAppointment(ctx, appt); err != nil {
			return fmt.Errorf("create appointment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Uint("appointment_id", appt.ID).
		Uint("patient_id", patientID).
		Uint("doctor_id", doctorID).
		Time("date", at).
		Msg("appointment booked")
	s.publish(ctx, models.EventAppointmentBooked, appt)
	return appt, nil
}

// UpdateStatus sets any of the four statuses regardless of the current one.
func (s *AppointmentService) UpdateStatus(ctx context.Context, id uint, status string) (*models.Appointment, error) {
	var appt *models.Appointment
	err := s.store.Transaction(ctx, func(ctx context.Context) error {
		a, err := s.store.AppointmentByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return NotFound("Appointment not found")
		}
		if err != nil {
			return fmt.Errorf("load appointment: %w", err)
		}

		st, ok := models.ParseAppointmentStatus(status)
		if !ok {
			return InvalidArgument("Invalid appointment status: " + status)
		}
		a.Status = st
		if err := s.store.SaveAppointment(ctx, a); err != nil {
			return fmt.Errorf("save appointment: %w", err)
		}
		appt = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Uint("appointment_id", appt.ID).Str("status", string(appt.Status)).Msg("appointment status updated")
	s.publish(ctx, models.EventAppointmentStatusChanged, appt)
	return appt, nil
}

func (s *AppointmentService) ForPatient(ctx context.Context, patientID uint) ([]models.Appointment, error) {
	if err := requirePatient(ctx, s.store, patientID); err != nil {
		return nil, err
	}
	list, err := s.store.AppointmentsByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return nonNil(list), nil
}

func (s *AppointmentService) ForDoctor(ctx context.Context, doctorID uint) ([]models.Appointment, error) {
	if err := requireDoctor(ctx, s.store, doctorID); err != nil {
		return nil, err
	}
	list, err := s.store.AppointmentsByDoctor(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return nonNil(list), nil
}

func (s *AppointmentService) publish(ctx context.Context, event string, a *models.Appointment) {
	payload := models.AppointmentEvent{
		Event:         event,
		AppointmentID: a.ID,
		PatientID:     a.PatientID,
		DoctorID:      a.DoctorID,
		Status:        a.Status,
		Date:          a.Date,
		OccurredAt:    s.now(),
	}
	if err := s.events.Publish(ctx, event, payload); err != nil {
		s.log.Warn().Err(err).Str("event", event).Uint("appointment_id", a.ID).Msg("publish event failed")
	}
}

func requirePatient(ctx context.Context, lookup ProfileLookup, id uint) error {
	ok, err := lookup.PatientExists(ctx, id)
	if err != nil {
		return fmt.Errorf("check patient: %w", err)
	}
	if !ok {
		return NotFound("Patient not found")
	}
	return nil
}

func requireDoctor(ctx context.Context, lookup ProfileLookup, id uint) error {
	ok, err := lookup.DoctorExists(ctx, id)
	if err != nil {
		return fmt.Errorf("check doctor: %w", err)
	}
	if !ok {
		return NotFound("Doctor not found")
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
