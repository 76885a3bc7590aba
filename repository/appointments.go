package repository

import (
	"context"
	"time"

	"github.com/meinhoongagan/smart-clinic/models"
)

func (s *Store) CreateAppointment(ctx context.Context, a *models.Appointment) error {
	return translate(s.conn(ctx).Create(a).Error)
}

func (s *Store) AppointmentByID(ctx context.Context, id uint) (*models.Appointment, error) {
	var a models.Appointment
	if err := s.conn(ctx).First(&a, id).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (s *Store) SaveAppointment(ctx context.Context, a *models.Appointment) error {
	return translate(s.conn(ctx).Save(a).Error)
}

func (s *Store) AppointmentsByPatient(ctx context.Context, patientID uint) ([]models.Appointment, error) {
	var out []models.Appointment
	err := s.conn(ctx).Where("patient_id = ?", patientID).Order("date ASC").Find(&out).Error
	return out, translate(err)
}

func (s *Store) AppointmentsByDoctor(ctx context.Context, doctorID uint) ([]models.Appointment, error) {
	var out []models.Appointment
	err := s.conn(ctx).Where("doctor_id = ?", doctorID).Order("date ASC").Find(&out).Error
	return out, translate(err)
}

// ReminderTargets lists confirmed appointments starting in [from, to] joined
// with the patient and doctor identities.
func (s *Store) ReminderTargets(ctx context.Context, from, to time.Time) ([]models.ReminderTarget, error) {
	var out []models.ReminderTarget
	err := s.conn(ctx).
		Table("appointments AS a").
		Select(`a.id AS appointment_id, a.date, a.status,
			pu.name AS patient_name, pu.email AS patient_email,
			du.name AS doctor_name, d.specialization`).
		Joins("JOIN patients p ON p.id = a.patient_id").
		Joins("JOIN users pu ON pu.id = p.user_id").
		Joins("JOIN doctors d ON d.id = a.doctor_id").
		Joins("JOIN users du ON du.id = d.user_id").
		Where("a.status = ? AND a.date BETWEEN ? AND ?", models.StatusConfirmed, from, to).
		Order("a.date ASC").
		Scan(&out).Error
	return out, translate(err)
}
