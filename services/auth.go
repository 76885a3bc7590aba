package services

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/meinhoongagan/smart-clinic/models"
	"github.com/meinhoongagan/smart-clinic/repository"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// IdentityStore is the credential store behind registration and login.
type IdentityStore interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
	EmailExists(ctx context.Context, email string) (bool, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id uint) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
	CreateDoctor(ctx context.Context, d *models.Doctor) error
	CreatePatient(ctx context.Context, p *models.Patient) error
	DoctorByUserID(ctx context.Context, userID uint) (*models.Doctor, error)
	PatientByUserID(ctx context.Context, userID uint) (*models.Patient, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// BcryptHasher uses bcrypt.DefaultCost when Cost is out of range.
type BcryptHasher struct{ Cost int }

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h BcryptHasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

type RegisterParams struct {
	Name           string `json:"name" validate:"required,min=2,max=100"`
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=6"`
	Role           string `json:"role" validate:"required,oneof=ADMIN DOCTOR PATIENT"`
	Specialization string `json:"specialization"`
	Age            *int   `json:"age" validate:"omitempty,min=0,max=150"`
}

type RegisterResult struct {
	UserID    uint        `json:"userId"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	Name      string      `json:"name"`
	DoctorID  uint        `json:"doctorId,omitempty"`
	PatientID uint        `json:"patientId,omitempty"`
}

type LoginParams struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResult struct {
	Token     string      `json:"token"`
	Type      string      `json:"type"`
	UserID    uint        `json:"userId"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	Name      string      `json:"name"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

type ProfileResult struct {
	UserID         uint        `json:"userId"`
	Email          string      `json:"email"`
	Role           models.Role `json:"role"`
	Name           string      `json:"name"`
	DoctorID       uint        `json:"doctorId,omitempty"`
	Specialization string      `json:"specialization,omitempty"`
	PatientID      uint        `json:"patientId,omitempty"`
	Age            *int        `json:"age,omitempty"`
}

var errInvalidCredentials = Unauthenticated("Invalid email or password")

type AuthService struct {
	store  IdentityStore
	tokens *TokenService
	hasher PasswordHasher
	log    zerolog.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(store IdentityStore, tokens *TokenService, hasher PasswordHasher, log zerolog.Logger) *AuthService {
	return &AuthService{store: store, tokens: tokens, hasher: hasher, log: log}
}

// Register creates the identity and its role profile in one transaction.
func (s *AuthService) Register(ctx context.Context, p RegisterParams) (*RegisterResult, error) {
	p.Role = strings.ToUpper(strings.TrimSpace(p.Role))
	if err := validateRegistration(&p); err != nil {
		return nil, err
	}

	// The unique index on users.email has the final say.
	exists, err := s.store.EmailExists(ctx, p.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, duplicateEmail(p.Email)
	}

	hash, err := s.hasher.Hash(p.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{Name: p.Name, Email: p.Email, Password: hash, Role: models.Role(p.Role)}
	res := &RegisterResult{}
	err = s.store.Transaction(ctx, func(ctx context.Context) error {
		if err := s.store.CreateUser(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicateKey) {
				return duplicateEmail(p.Email)
			}
			return fmt.Errorf("create user: %w", err)
		}
		switch user.Role {
		case models.RoleDoctor:
			d := &models.Doctor{UserID: user.ID, Specialization: strings.TrimSpace(p.Specialization)}
			if err := s.store.CreateDoctor(ctx, d); err != nil {
				return fmt.Errorf("create doctor profile: %w", err)
			}
			res.DoctorID = d.ID
		case models.RolePatient:
			pt := &models.Patient{UserID: user.ID, Age: *p.Age}
			if err := s.store.CreatePatient(ctx, pt); err != nil {
				return fmt.Errorf("create patient profile: %w", err)
			}
			res.PatientID = pt.ID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Uint("user_id", user.ID).Str("role", string(user.Role)).Msg("user registered")

	res.UserID = user.ID
	res.Email = user.Email
	res.Role = user.Role
	res.Name = user.Name
	return res, nil
}

// Login fails the same way for unknown emails and wrong passwords.
func (s *AuthService) Login(ctx context.Context, p LoginParams) (*LoginResult, error) {
	if err := Validate(&p); err != nil {
		return nil, err
	}

	user, err := s.store.UserByEmail(ctx, p.Email)
	if errors.Is(err, repository.ErrNotFound) {
		// Spend the same bcrypt work as a real comparison.
		_ = s.hasher.Compare(s.placeholderHash(), p.Password)
		s.log.Info().Msg("login rejected: unknown email")
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if err := s.hasher.Compare(user.Password, p.Password); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			s.log.Error().Err(err).Uint("user_id", user.ID).Msg("stored password hash unusable")
		}
		s.log.Info().Uint("user_id", user.ID).Msg("login rejected: password mismatch")
		return nil, errInvalidCredentials
	}

	token, exp, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		Token:     token,
		Type:      "Bearer",
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		Name:      user.Name,
		ExpiresAt: exp,
	}, nil
}

// Profile returns the caller's identity with its role profile.
func (s *AuthService) Profile(ctx context.Context, userID uint) (*ProfileResult, error) {
	user, err := s.store.UserByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NotFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	out := &ProfileResult{UserID: user.ID, Email: user.Email, Role: user.Role, Name: user.Name}
	switch user.Role {
	case models.RoleDoctor:
		d, err := s.store.DoctorByUserID(ctx, user.ID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("lookup doctor profile: %w", err)
		}
		if d != nil {
			out.DoctorID = d.ID
			out.Specialization = d.Specialization
		}
	case models.RolePatient:
		pt, err := s.store.PatientByUserID(ctx, user.ID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("lookup patient profile: %w", err)
		}
		if pt != nil {
			age := pt.Age
			out.PatientID = pt.ID
			out.Age = &age
		}
	}
	return out, nil
}

func (s *AuthService) placeholderHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("placeholder-password")
	})
	return s.dummyHash
}

func validateRegistration(p *RegisterParams) error {
	fields := map[string]string{}
	if err := Validate(p); err != nil {
		var verr *Error
		if !errors.As(err, &verr) {
			return err
		}
		maps.Copy(fields, verr.Fields)
	}

	switch models.Role(p.Role) {
	case models.RoleDoctor:
		if strings.TrimSpace(p.Specialization) == "" {
			fields["specialization"] = "Specialization is required for doctors"
		}
	case models.RolePatient:
		if _, bad := fields["age"]; !bad && p.Age == nil {
			fields["age"] = "Age is required for patients"
		}
	}

	if len(fields) > 0 {
		return ValidationFailed(fields)
	}
	return nil
}

func duplicateEmail(email string) *Error {
	return Conflict(fmt.Sprintf("User with email %s already exists", email))
}
