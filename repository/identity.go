package repository

import (
	"context"

	"github.com/meinhoongagan/smart-clinic/models"
)

// EmailExists is an exact, case-sensitive match.
func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	return s.exists(ctx, &models.User{}, "email = ?", email)
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.conn(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Store) UserByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.conn(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// CreateUser returns ErrDuplicateKey when the email is taken.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	return translate(s.conn(ctx).Create(u).Error)
}

func (s *Store) CreateDoctor(ctx context.Context, d *models.Doctor) error {
	return translate(s.conn(ctx).Create(d).Error)
}

func (s *Store) CreatePatient(ctx context.Context, p *models.Patient) error {
	return translate(s.conn(ctx).Create(p).Error)
}

func (s *Store) DoctorByUserID(ctx context.Context, userID uint) (*models.Doctor, error) {
	var d models.Doctor
	if err := s.conn(ctx).Where("user_id = ?", userID).First(&d).Error; err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (s *Store) PatientByUserID(ctx context.Context, userID uint) (*models.Patient, error) {
	var p models.Patient
	if err := s.conn(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// DoctorExists locks the profile row when called inside Transaction, so it
// cannot be deleted before the transaction commits.
func (s *Store) DoctorExists(ctx context.Context, id uint) (bool, error) {
	return s.existsForShare(ctx, &models.Doctor{}, id)
}

// PatientExists locks like DoctorExists.
func (s *Store) PatientExists(ctx context.Context, id uint) (bool, error) {
	return s.existsForShare(ctx, &models.Patient{}, id)
}
