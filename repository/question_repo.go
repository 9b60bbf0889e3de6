package repository

import (
	"context"

	"github.com/tieubaoca/docqa-be/types"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const QuestionLogCollection = "question_logs"

type QuestionRepo interface {
	CreateQuestionLog(ctx context.Context, log *types.QuestionLog) error
	// ListQuestionLogs returns the newest logs first. An empty databaseID lists every database.
	ListQuestionLogs(ctx context.Context, databaseID string, limit int64) ([]*types.QuestionLog, error)
}

type questionRepo struct {
	collection *mongo.Collection
}

func NewQuestionRepo(collection *mongo.Collection) QuestionRepo {
	return &questionRepo{
		collection: collection,
	}
}

func (r *questionRepo) CreateQuestionLog(ctx context.Context, log *types.QuestionLog) error {
	_, err := r.collection.InsertOne(ctx, log)
	return err
}

func (r *questionRepo) ListQuestionLogs(ctx context.Context, databaseID string, limit int64) ([]*types.QuestionLog, error) {
	filter := bson.M{}
	if databaseID != "" {
		filter["database_id"] = databaseID
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var logs []*types.QuestionLog
	for cursor.Next(ctx) {
		var log types.QuestionLog
		if err := cursor.Decode(&log); err != nil {
			return nil, err
		}
		logs = append(logs, &log)
	}
	return logs, cursor.Err()
}
