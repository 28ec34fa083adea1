package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"campuswell/internal/model"
)

// AcademicUpdate carries the fields an academic-records sync may change.
// Nil fields are left untouched.
type AcademicUpdate struct {
	AttendancePct *float64
	BacklogCount  *int
	GPA           *float64
	FeeStatus     model.FeeStatus
}

// StudentRepo handles MongoDB operations for the student roster
type StudentRepo interface {
	Get(ctx context.Context, subjectID string) (*model.Student, error)
	List(ctx context.Context) ([]*model.Student, error)
	ListByMentor(ctx context.Context, mentorID string) ([]*model.Student, error)
	Upsert(ctx context.Context, student *model.Student) error
	UpdateAcademic(ctx context.Context, subjectID string, update AcademicUpdate) error
	AssignMentor(ctx context.Context, subjectID, mentorID string) error
}

type studentRepo struct {
	collection *mongo.Collection
}

// NewStudentRepo creates a new student repository
func NewStudentRepo(db *mongo.Database) StudentRepo {
	return &studentRepo{
		collection: db.Collection("students"),
	}
}

func (r *studentRepo) Get(ctx context.Context, subjectID string) (*model.Student, error) {
	var student model.Student
	err := r.collection.FindOne(ctx, bson.M{"_id": subjectID}).Decode(&student)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) List(ctx context.Context) ([]*model.Student, error) {
	return r.find(ctx, bson.M{})
}

func (r *studentRepo) ListByMentor(ctx context.Context, mentorID string) ([]*model.Student, error) {
	return r.find(ctx, bson.M{"mentorId": mentorID})
}

func (r *studentRepo) find(ctx context.Context, filter bson.M) ([]*model.Student, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var students []*model.Student
	if err = cursor.All(ctx, &students); err != nil {
		return nil, err
	}
	return students, nil
}

func (r *studentRepo) Upsert(ctx context.Context, student *model.Student) error {
	student.UpdatedAt = time.Now()
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": student.SubjectID},
		bson.M{"$set": student},
		options.Update().SetUpsert(true),
	)
	return err
}

func (r *studentRepo) UpdateAcademic(ctx context.Context, subjectID string, update AcademicUpdate) error {
	set := bson.M{"updatedAt": time.Now()}
	if update.AttendancePct != nil {
		set["attendancePct"] = *update.AttendancePct
	}
	if update.BacklogCount != nil {
		set["backlogCount"] = *update.BacklogCount
	}
	if update.GPA != nil {
		set["gpa"] = *update.GPA
	}
	if update.FeeStatus != "" {
		set["feeStatus"] = update.FeeStatus
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": subjectID}, bson.M{"$set": set})
	return err
}

func (r *studentRepo) AssignMentor(ctx context.Context, subjectID, mentorID string) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": subjectID},
		bson.M{"$set": bson.M{"mentorId": mentorID, "updatedAt": time.Now()}},
	)
	return err
}
