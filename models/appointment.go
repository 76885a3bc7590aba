package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "PENDING"
	StatusConfirmed AppointmentStatus = "CONFIRMED"
	StatusCancelled AppointmentStatus = "CANCELLED"
	StatusCompleted AppointmentStatus = "COMPLETED"
)

// ParseAppointmentStatus accepts any letter case.
func ParseAppointmentStatus(s string) (AppointmentStatus, bool) {
	switch st := AppointmentStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return st, true
	}
	return "", false
}

// Appointment references its patient and doctor profiles by id. The
// associations exist for the foreign keys and are never loaded.
type Appointment struct {
	ID        uint              `json:"id" gorm:"primaryKey"`
	Date      time.Time         `json:"date" gorm:"not null;index"`
	Status    AppointmentStatus `json:"status" gorm:"type:varchar(16);not null"`
	PatientID uint              `json:"patientId" gorm:"not null;index"`
	DoctorID  uint              `json:"doctorId" gorm:"not null;index"`
	Patient   *Patient          `json:"-" gorm:"foreignKey:PatientID;constraint:OnDelete:RESTRICT"`
	Doctor    *Doctor           `json:"-" gorm:"foreignKey:DoctorID;constraint:OnDelete:RESTRICT"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.Status == "" {
		a.Status = StatusPending
	}
	return nil
}

// ReminderTarget is the joined view the reminder job mails from.
type ReminderTarget struct {
	AppointmentID  uint
	Date           time.Time
	Status         AppointmentStatus
	PatientName    string
	PatientEmail   string
	DoctorName     string
	Specialization string
}

// AppointmentEvent is published after booking and status changes.
type AppointmentEvent struct {
	Event         string            `json:"event"`
	AppointmentID uint              `json:"appointmentId"`
	PatientID     uint              `json:"patientId"`
	DoctorID      uint              `json:"doctorId"`
	Status        AppointmentStatus `json:"status"`
	Date          time.Time         `json:"date"`
	OccurredAt    time.Time         `json:"occurredAt"`
}

const (
	EventAppointmentBooked        = "appointment.booked"
	EventAppointmentStatusChanged = "appointment.status_changed"
)
