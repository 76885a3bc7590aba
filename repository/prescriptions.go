package repository

import (
	"context"
	"errors"

	"github.com/meinhoongagan/smart-clinic/docstore"
	"github.com/meinhoongagan/smart-clinic/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PrescriptionRepo struct{ coll *mongo.Collection }

func NewPrescriptionRepo(db *mongo.Database) *PrescriptionRepo {
	return &PrescriptionRepo{coll: db.Collection(docstore.PrescriptionsCollection)}
}

func (r *PrescriptionRepo) Create(ctx context.Context, p *models.Prescription) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, p)
	return err
}

// ByID treats malformed ids as unknown.
func (r *PrescriptionRepo) ByID(ctx context.Context, id string) (*models.Prescription, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var p models.Prescription
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&p); err != nil {
		return nil, translateMongo(err)
	}
	return &p, nil
}

func (r *PrescriptionRepo) Replace(ctx context.Context, p *models.Prescription) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PrescriptionRepo) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ByPatient returns newest first.
func (r *PrescriptionRepo) ByPatient(ctx context.Context, patientID uint) ([]models.Prescription, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.find(ctx, bson.M{"patientId": patientID}, opts)
}

func (r *PrescriptionRepo) ByDoctor(ctx context.Context, doctorID uint) ([]models.Prescription, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.find(ctx, bson.M{"doctorId": doctorID}, opts)
}

func (r *PrescriptionRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Prescription, error) {
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	out := []models.Prescription{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func translateMongo(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicateKey
	}
	return err
}
