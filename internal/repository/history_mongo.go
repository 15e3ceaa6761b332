package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mockmate/internal/model"
)

const (
	historyDocID  = "interviewHistory"
	progressDocID = "learningProgress"
)

type historyDoc struct {
	ID      string               `bson:"_id"`
	Records []model.AnswerRecord `bson:"records"`
}

type progressDoc struct {
	ID     string                            `bson:"_id"`
	Topics map[string]model.LearningProgress `bson:"topics"`
}

type mongoHistoryRepo struct {
	collection *mongo.Collection
}

// NewMongoHistoryRepo persists history in a Mongo collection. The whole list
// lives in a single document so saves stay atomic, matching the file backend.
func NewMongoHistoryRepo(db *mongo.Database) HistoryRepo {
	return &mongoHistoryRepo{
		collection: db.Collection("history"),
	}
}

func (r *mongoHistoryRepo) LoadHistory(ctx context.Context) ([]model.AnswerRecord, error) {
	var doc historyDoc
	err := r.collection.FindOne(ctx, bson.M{"_id": historyDocID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return []model.AnswerRecord{}, nil
	}
	if err != nil {
		return nil, err
	}
	if doc.Records == nil {
		doc.Records = []model.AnswerRecord{}
	}
	return doc.Records, nil
}

func (r *mongoHistoryRepo) SaveHistory(ctx context.Context, records []model.AnswerRecord) error {
	if records == nil {
		records = []model.AnswerRecord{}
	}
	_, err := r.collection.ReplaceOne(ctx,
		bson.M{"_id": historyDocID},
		historyDoc{ID: historyDocID, Records: records},
		options.Replace().SetUpsert(true))
	return err
}

func (r *mongoHistoryRepo) LoadProgress(ctx context.Context) (map[string]model.LearningProgress, error) {
	var doc progressDoc
	err := r.collection.FindOne(ctx, bson.M{"_id": progressDocID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return map[string]model.LearningProgress{}, nil
	}
	if err != nil {
		return nil, err
	}
	if doc.Topics == nil {
		doc.Topics = map[string]model.LearningProgress{}
	}
	return doc.Topics, nil
}

func (r *mongoHistoryRepo) SaveProgress(ctx context.Context, progress map[string]model.LearningProgress) error {
	if progress == nil {
		progress = map[string]model.LearningProgress{}
	}
	_, err := r.collection.ReplaceOne(ctx,
		bson.M{"_id": progressDocID},
		progressDoc{ID: progressDocID, Topics: progress},
		options.Replace().SetUpsert(true))
	return err
}
