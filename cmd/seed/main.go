package main

import (
	"campuswell/internal/model"
	"campuswell/internal/repository"
	"context"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

var frequencyOptions = []model.Option{
	{Value: 0, Label: "Not at all"},
	{Value: 1, Label: "Several days"},
	{Value: 2, Label: "More than half the days"},
	{Value: 3, Label: "Nearly every day"},
}

func questions(prompts []string) []model.Question {
	qs := make([]model.Question, 0, len(prompts))
	for i, p := range prompts {
		qs = append(qs, model.Question{
			ID:      i + 1,
			Prompt:  p,
			Options: frequencyOptions,
		})
	}
	return qs
}

func main() {
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}
	dbName := os.Getenv("MONGO_DATABASE")
	if dbName == "" {
		dbName = "campuswell"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database(dbName)
	questionnaires := repository.NewQuestionnaireRepo(db)
	students := repository.NewStudentRepo(db)
	users := repository.NewUserRepo(db)

	phq9 := &model.QuestionnaireDefinition{
		ID:    "phq9-v1",
		Kind:  model.KindPHQ9,
		Title: "PHQ-9 Depression Screening",
		Questions: questions([]string{
			"Little interest or pleasure in doing things",
			"Feeling down, depressed, or hopeless",
			"Trouble falling or staying asleep, or sleeping too much",
			"Feeling tired or having little energy",
			"Poor appetite or overeating",
			"Feeling bad about yourself or that you are a failure",
			"Trouble concentrating on things, such as reading or watching TV",
			"Moving or speaking so slowly that others could notice, or being fidgety or restless",
			"Thoughts that you would be better off dead or of hurting yourself",
		}),
	}

	gad7 := &model.QuestionnaireDefinition{
		ID:    "gad7-v1",
		Kind:  model.KindGAD7,
		Title: "GAD-7 Anxiety Screening",
		Questions: questions([]string{
			"Feeling nervous, anxious, or on edge",
			"Not being able to stop or control worrying",
			"Worrying too much about different things",
			"Trouble relaxing",
			"Being so restless that it is hard to sit still",
			"Becoming easily annoyed or irritable",
			"Feeling afraid, as if something awful might happen",
		}),
	}

	for _, def := range []*model.QuestionnaireDefinition{phq9, gad7} {
		if err := questionnaires.Upsert(ctx, def); err != nil {
			log.Fatalf("Failed to seed questionnaire %s: %v", def.Kind, err)
		}
		log.Printf("Seeded questionnaire %s (%d questions, max score %d)", def.Kind, len(def.Questions), def.MaxScore())
	}

	mentorID := seedUser(ctx, users, "mentor@campuswell.edu", "Maya", "Iyer", model.RoleMentor)
	seedUser(ctx, users, "admin@campuswell.edu", "Dev", "Okafor", model.RoleAdmin)

	demoStudents := []*model.Student{
		{SubjectID: seedUser(ctx, users, "arjun@campuswell.edu", "Arjun", "Mehta", model.RoleStudent),
			Name: "Arjun Mehta", MentorID: mentorID,
			AttendancePct: f(92), BacklogCount: i(0), GPA: f(3.4), FeeStatus: model.FeePaid},
		{SubjectID: seedUser(ctx, users, "sara@campuswell.edu", "Sara", "Lindqvist", model.RoleStudent),
			Name: "Sara Lindqvist", MentorID: mentorID,
			AttendancePct: f(71), BacklogCount: i(1), GPA: f(2.8), FeeStatus: model.FeePending},
		{SubjectID: seedUser(ctx, users, "tomas@campuswell.edu", "Tomas", "Villanueva", model.RoleStudent),
			Name: "Tomas Villanueva",
			AttendancePct: f(48), BacklogCount: i(3), GPA: f(2.1), FeeStatus: model.FeeOverdue},
	}

	for _, s := range demoStudents {
		if s.SubjectID == "" {
			continue
		}
		if err := students.Upsert(ctx, s); err != nil {
			log.Fatalf("Failed to seed student %s: %v", s.Name, err)
		}
		log.Printf("Seeded student %s (%s)", s.Name, s.SubjectID)
	}

	log.Println("Seed complete. Demo password for all accounts: campuswell123")
}

// seedUser creates an account if the email is unused and returns its ID either way
func seedUser(ctx context.Context, users repository.UserRepo, email, first, last string, role model.Role) string {
	existing, err := users.GetByEmail(ctx, email)
	if err != nil {
		log.Fatalf("Failed to look up %s: %v", email, err)
	}
	if existing != nil {
		log.Printf("User %s already exists, skipping", email)
		return existing.ID
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("campuswell123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		FirstName:    first,
		LastName:     last,
		Role:         role,
		PasswordHash: string(hash),
	}
	if err := users.Create(ctx, user); err != nil {
		log.Fatalf("Failed to seed user %s: %v", email, err)
	}
	log.Printf("Seeded %s user %s", role, email)
	return user.ID
}

func f(v float64) *float64 { return &v }
func i(v int) *int         { return &v }
