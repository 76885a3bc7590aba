package models

import "time"

// Doctor is the doctor profile of a DOCTOR user.
type Doctor struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	UserID         uint      `json:"userId" gorm:"uniqueIndex;not null"`
	Specialization string    `json:"specialization" gorm:"size:100;not null"`
	User           *User     `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Patient is the patient profile of a PATIENT user.
type Patient struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"userId" gorm:"uniqueIndex;not null"`
	Age       int       `json:"age" gorm:"not null"`
	User      *User     `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
