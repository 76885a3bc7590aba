// Package memstore provides in-memory stores for tests.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/meinhoongagan/smart-clinic/models"
	"github.com/meinhoongagan/smart-clinic/repository"
)

// Store mimics repository.Store. Transactions snapshot the tables and
// restore them when fn fails.
type Store struct {
	mu           sync.Mutex
	users        map[uint]models.User
	doctors      map[uint]models.Doctor
	patients     map[uint]models.Patient
	appointments map[uint]models.Appointment
	nextID       uint
	err          error
}

func New() *Store {
	return &Store{
		users:        map[uint]models.User{},
		doctors:      map[uint]models.Doctor{},
		patients:     map[uint]models.Patient{},
		appointments: map[uint]models.Appointment{},
	}
}

// FailWith makes every following call return err. Pass nil to reset.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

type snapshot struct {
	users        map[uint]models.User
	doctors      map[uint]models.Doctor
	patients     map[uint]models.Patient
	appointments map[uint]models.Appointment
}

func (s *Store) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	snap := snapshot{
		users:        clone(s.users),
		doctors:      clone(s.doctors),
		patients:     clone(s.patients),
		appointments: clone(s.appointments),
	}
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.users, s.doctors, s.patients, s.appointments = snap.users, snap.doctors, snap.patients, snap.appointments
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) id() uint {
	s.nextID++
	return s.nextID
}

func (s *Store) EmailExists(_ context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	for _, u := range s.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) UserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) UserByID(_ context.Context, id uint) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s *Store) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicateKey
		}
	}
	u.ID = s.id()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	s.users[u.ID] = *u
	return nil
}

func (s *Store) CreateDoctor(_ context.Context, d *models.Doctor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	d.ID = s.id()
	s.doctors[d.ID] = *d
	return nil
}

func (s *Store) CreatePatient(_ context.Context, p *models.Patient) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	p.ID = s.id()
	s.patients[p.ID] = *p
	return nil
}

func (s *Store) DoctorByUserID(_ context.Context, userID uint) (*models.Doctor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.doctors {
		if d.UserID == userID {
			return &d, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) PatientByUserID(_ context.Context, userID uint) (*models.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.patients {
		if p.UserID == userID {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) DoctorExists(_ context.Context, id uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	_, ok := s.doctors[id]
	return ok, nil
}

func (s *Store) PatientExists(_ context.Context, id uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	_, ok := s.patients[id]
	return ok, nil
}

func (s *Store) CreateAppointment(_ context.Context, a *models.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if _, ok := s.patients[a.PatientID]; !ok {
		return repository.ErrForeignKey
	}
	if _, ok := s.doctors[a.DoctorID]; !ok {
		return repository.ErrForeignKey
	}
	if a.Status == "" {
		a.Status = models.StatusPending
	}
	a.ID = s.id()
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	s.appointments[a.ID] = *a
	return nil
}

func (s *Store) AppointmentByID(_ context.Context, id uint) (*models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	a, ok := s.appointments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (s *Store) SaveAppointment(_ context.Context, a *models.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	a.UpdatedAt = time.Now()
	s.appointments[a.ID] = *a
	return nil
}

func (s *Store) AppointmentsByPatient(_ context.Context, patientID uint) ([]models.Appointment, error) {
	return s.filterAppointments(func(a models.Appointment) bool { return a.PatientID == patientID })
}

func (s *Store) AppointmentsByDoctor(_ context.Context, doctorID uint) ([]models.Appointment, error) {
	return s.filterAppointments(func(a models.Appointment) bool { return a.DoctorID == doctorID })
}

func (s *Store) ReminderTargets(_ context.Context, from, to time.Time) ([]models.ReminderTarget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var out []models.ReminderTarget
	for _, a := range s.sortedAppointments() {
		if a.Status != models.StatusConfirmed || a.Date.Before(from) || a.Date.After(to) {
			continue
		}
		p, d := s.patients[a.PatientID], s.doctors[a.DoctorID]
		pu, du := s.users[p.UserID], s.users[d.UserID]
		out = append(out, models.ReminderTarget{
			AppointmentID:  a.ID,
			Date:           a.Date,
			Status:         a.Status,
			PatientName:    pu.Name,
			PatientEmail:   pu.Email,
			DoctorName:     du.Name,
			Specialization: d.Specialization,
		})
	}
	return out, nil
}

func (s *Store) filterAppointments(keep func(models.Appointment) bool) ([]models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var out []models.Appointment
	for _, a := range s.sortedAppointments() {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Store) sortedAppointments() []models.Appointment {
	out := make([]models.Appointment, 0, len(s.appointments))
	for _, a := range s.appointments {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID < out[j].ID
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// Counts reports table sizes.
func (s *Store) Counts() (users, doctors, patients, appointments int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users), len(s.doctors), len(s.patients), len(s.appointments)
}

// Seed inserts a doctor and a patient with their identities and returns the
// profile ids.
func (s *Store) Seed(ctx context.Context) (doctorID, patientID uint) {
	du := &models.User{Name: "Dr. Seed", Email: "seed-doc@example.com", Role: models.RoleDoctor}
	pu := &models.User{Name: "Seed Patient", Email: "seed-pat@example.com", Role: models.RolePatient}
	_ = s.CreateUser(ctx, du)
	_ = s.CreateUser(ctx, pu)
	d := &models.Doctor{UserID: du.ID, Specialization: "General"}
	p := &models.Patient{UserID: pu.ID, Age: 40}
	_ = s.CreateDoctor(ctx, d)
	_ = s.CreatePatient(ctx, p)
	return d.ID, p.ID
}

func clone[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
