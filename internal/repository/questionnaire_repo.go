package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"campuswell/internal/model"
)

// QuestionnaireRepo handles MongoDB operations for questionnaire definitions
type QuestionnaireRepo interface {
	GetByKind(ctx context.Context, kind model.QuestionnaireKind) (*model.QuestionnaireDefinition, error)
	List(ctx context.Context) ([]*model.QuestionnaireDefinition, error)
	Upsert(ctx context.Context, def *model.QuestionnaireDefinition) error
}

type questionnaireRepo struct {
	collection *mongo.Collection
}

// NewQuestionnaireRepo creates a new questionnaire repository
func NewQuestionnaireRepo(db *mongo.Database) QuestionnaireRepo {
	return &questionnaireRepo{
		collection: db.Collection("questionnaires"),
	}
}

func (r *questionnaireRepo) GetByKind(ctx context.Context, kind model.QuestionnaireKind) (*model.QuestionnaireDefinition, error) {
	var def model.QuestionnaireDefinition
	err := r.collection.FindOne(ctx, bson.M{"kind": kind}).Decode(&def)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &def, nil
}

func (r *questionnaireRepo) List(ctx context.Context) ([]*model.QuestionnaireDefinition, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var defs []*model.QuestionnaireDefinition
	if err = cursor.All(ctx, &defs); err != nil {
		return nil, err
	}
	return defs, nil
}

func (r *questionnaireRepo) Upsert(ctx context.Context, def *model.QuestionnaireDefinition) error {
	if def.CreatedAt.IsZero() {
		def.CreatedAt = time.Now()
	}
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"kind": def.Kind},
		bson.M{"$set": bson.M{
			"kind":      def.Kind,
			"title":     def.Title,
			"questions": def.Questions,
			"createdAt": def.CreatedAt,
		}},
		options.Update().SetUpsert(true),
	)
	return err
}
