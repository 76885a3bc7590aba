package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/meinhoongagan/smart-clinic/models"
	"github.com/meinhoongagan/smart-clinic/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Prescriptions mimics repository.PrescriptionRepo.
type Prescriptions struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID]models.Prescription
}

func NewPrescriptions() *Prescriptions {
	return &Prescriptions{docs: map[primitive.ObjectID]models.Prescription{}}
}

func (r *Prescriptions) Create(_ context.Context, p *models.Prescription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	r.docs[p.ID] = *p
	return nil
}

func (r *Prescriptions) ByID(_ context.Context, id string) (*models.Prescription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	p, ok := r.docs[oid]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *Prescriptions) Replace(_ context.Context, p *models.Prescription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[p.ID]; !ok {
		return repository.ErrNotFound
	}
	r.docs[p.ID] = *p
	return nil
}

func (r *Prescriptions) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrNotFound
	}
	if _, ok := r.docs[oid]; !ok {
		return repository.ErrNotFound
	}
	delete(r.docs, oid)
	return nil
}

func (r *Prescriptions) ByPatient(_ context.Context, patientID uint) ([]models.Prescription, error) {
	return r.filter(func(p models.Prescription) bool { return p.PatientID == patientID }), nil
}

func (r *Prescriptions) ByDoctor(_ context.Context, doctorID uint) ([]models.Prescription, error) {
	return r.filter(func(p models.Prescription) bool { return p.DoctorID == doctorID }), nil
}

func (r *Prescriptions) filter(keep func(models.Prescription) bool) []models.Prescription {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Prescription
	for _, p := range r.docs {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// MedicalHistories mimics repository.MedicalHistoryRepo.
type MedicalHistories struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID]models.MedicalHistory
}

func NewMedicalHistories() *MedicalHistories {
	return &MedicalHistories{docs: map[primitive.ObjectID]models.MedicalHistory{}}
}

func (r *MedicalHistories) AppendForPatient(_ context.Context, patientID uint, rec models.MedicalRecord, now time.Time) (*models.MedicalHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, h := range r.docs {
		if h.PatientID == patientID {
			h.Records = append(copyRecords(h.Records), rec)
			h.UpdatedAt = now
			r.docs[id] = h
			return &h, nil
		}
	}
	h := models.MedicalHistory{
		ID:        primitive.NewObjectID(),
		PatientID: patientID,
		Records:   []models.MedicalRecord{rec},
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.docs[h.ID] = h
	return &h, nil
}

func (r *MedicalHistories) AppendByID(_ context.Context, id string, rec models.MedicalRecord, now time.Time) (*models.MedicalHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	h, ok := r.docs[oid]
	if !ok {
		return nil, repository.ErrNotFound
	}
	h.Records = append(copyRecords(h.Records), rec)
	h.UpdatedAt = now
	r.docs[oid] = h
	return &h, nil
}

func (r *MedicalHistories) ByID(_ context.Context, id string) (*models.MedicalHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	h, ok := r.docs[oid]
	if !ok {
		return nil, repository.ErrNotFound
	}
	h.Records = copyRecords(h.Records)
	return &h, nil
}

func (r *MedicalHistories) ByPatient(_ context.Context, patientID uint) (*models.MedicalHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, h := range r.docs {
		if h.PatientID == patientID {
			h.Records = copyRecords(h.Records)
			return &h, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *MedicalHistories) RemoveRecord(_ context.Context, id string, index int, now time.Time) (*models.MedicalHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	h, ok := r.docs[oid]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if index < 0 || index >= len(h.Records) {
		return nil, repository.ErrRecordIndex
	}
	recs := copyRecords(h.Records)
	h.Records = append(recs[:index], recs[index+1:]...)
	h.UpdatedAt = now
	r.docs[oid] = h
	h.Records = copyRecords(h.Records)
	return &h, nil
}

func (r *MedicalHistories) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrNotFound
	}
	if _, ok := r.docs[oid]; !ok {
		return repository.ErrNotFound
	}
	delete(r.docs, oid)
	return nil
}

func (r *MedicalHistories) All(_ context.Context) ([]models.MedicalHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.MedicalHistory, 0, len(r.docs))
	for _, h := range r.docs {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func copyRecords(in []models.MedicalRecord) []models.MedicalRecord {
	out := make([]models.MedicalRecord, len(in))
	copy(out, in)
	return out
}
