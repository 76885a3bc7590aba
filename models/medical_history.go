package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MedicalRecord struct {
	RecordType  string    `bson:"recordType" json:"recordType"`
	Description string    `bson:"description" json:"description"`
	DoctorNotes string    `bson:"doctorNotes" json:"doctorNotes"`
	DoctorID    uint      `bson:"doctorId" json:"doctorId"`
	RecordDate  time.Time `bson:"recordDate" json:"recordDate"`
	Attachments []string  `bson:"attachments" json:"attachments"`
}

// MedicalHistory holds one patient's records in append order.
type MedicalHistory struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PatientID uint               `bson:"patientId" json:"patientId"`
	Records   []MedicalRecord    `bson:"records" json:"records"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
