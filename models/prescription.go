package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Medicine struct {
	Name         string `bson:"name" json:"name"`
	Dosage       string `bson:"dosage" json:"dosage"`
	Frequency    string `bson:"frequency" json:"frequency"`
	Duration     int    `bson:"duration" json:"duration"` // days
	Instructions string `bson:"instructions" json:"instructions"`
}

type Prescription struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PatientID    uint               `bson:"patientId" json:"patientId"`
	DoctorID     uint               `bson:"doctorId" json:"doctorId"`
	MedicineList []Medicine         `bson:"medicineList" json:"medicineList"`
	Notes        string             `bson:"notes" json:"notes"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}
