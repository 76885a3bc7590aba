package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/meinhoongagan/smart-clinic/docstore"
	"github.com/meinhoongagan/smart-clinic/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrRecordIndex = errors.New("record index out of range")

type MedicalHistoryRepo struct{ coll *mongo.Collection }

func NewMedicalHistoryRepo(db *mongo.Database) *MedicalHistoryRepo {
	return &MedicalHistoryRepo{coll: db.Collection(docstore.MedicalHistoryCollection)}
}

// AppendForPatient pushes rec onto the patient's history, creating the
// history document on first use.
func (r *MedicalHistoryRepo) AppendForPatient(ctx context.Context, patientID uint, rec models.MedicalRecord, now time.Time) (*models.MedicalHistory, error) {
	update := bson.M{
		"$push":        bson.M{"records": rec},
		"$set":         bson.M{"updatedAt": now},
		"$setOnInsert": bson.M{"createdAt": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var h models.MedicalHistory
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"patientId": patientID}, update, opts).Decode(&h); err != nil {
		return nil, translateMongo(err)
	}
	return &h, nil
}

// AppendByID pushes rec onto an existing history.
func (r *MedicalHistoryRepo) AppendByID(ctx context.Context, id string, rec models.MedicalRecord, now time.Time) (*models.MedicalHistory, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	update := bson.M{
		"$push": bson.M{"records": rec},
		"$set":  bson.M{"updatedAt": now},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var h models.MedicalHistory
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&h); err != nil {
		return nil, translateMongo(err)
	}
	return &h, nil
}

func (r *MedicalHistoryRepo) ByID(ctx context.Context, id string) (*models.MedicalHistory, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var h models.MedicalHistory
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&h); err != nil {
		return nil, translateMongo(err)
	}
	return &h, nil
}

func (r *MedicalHistoryRepo) ByPatient(ctx context.Context, patientID uint) (*models.MedicalHistory, error) {
	var h models.MedicalHistory
	if err := r.coll.FindOne(ctx, bson.M{"patientId": patientID}).Decode(&h); err != nil {
		return nil, translateMongo(err)
	}
	return &h, nil
}

// RemoveRecord drops the record at index in a single update, so appends
// landing at the same time are kept. It returns ErrRecordIndex when the
// history exists but has no record at index.
func (r *MedicalHistoryRepo) RemoveRecord(ctx context.Context, id string, index int, now time.Time) (*models.MedicalHistory, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	if index < 0 {
		return nil, ErrRecordIndex
	}
	filter := bson.M{"_id": oid, fmt.Sprintf("records.%d", index): bson.M{"$exists": true}}
	update := mongo.Pipeline{{{Key: "$set", Value: bson.M{
		"records": bson.M{"$concatArrays": bson.A{
			bson.M{"$slice": bson.A{"$records", index}},
			bson.M{"$slice": bson.A{"$records", index + 1, bson.M{"$size": "$records"}}},
		}},
		"updatedAt": now,
	}}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var h models.MedicalHistory
	err = r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&h)
	if errors.Is(err, mongo.ErrNoDocuments) {
		n, cerr := r.coll.CountDocuments(ctx, bson.M{"_id": oid}, options.Count().SetLimit(1))
		if cerr != nil {
			return nil, cerr
		}
		if n == 0 {
			return nil, ErrNotFound
		}
		return nil, ErrRecordIndex
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *MedicalHistoryRepo) Delete(ctx context.Context, id string) error {
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

func (r *MedicalHistoryRepo) All(ctx context.Context) ([]models.MedicalHistory, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	out := []models.MedicalHistory{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
