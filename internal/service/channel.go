package service

import (
	"context"
	"errors"
	"fmt"

	"campuswell/internal/model"
	"campuswell/internal/repository"
)

// Channel delivers one alert through a single medium. Implementations must
// respect the context deadline; the dispatcher records a timeout as a failed
// delivery.
type Channel interface {
	Deliver(ctx context.Context, record *model.AlertRecord) error
}

type smsChannel struct {
	notify *NotifyClient
}

// NewSMSChannel creates the SMS delivery channel
func NewSMSChannel(notify *NotifyClient) Channel {
	return &smsChannel{notify: notify}
}

func (c *smsChannel) Deliver(ctx context.Context, record *model.AlertRecord) error {
	msg := alertMessage(record)
	if err := c.notify.Send(ctx, "sms", record.SubjectID, record.AlertKey, msg); err != nil {
		return &model.DeliveryError{Channel: "sms", Cause: err}
	}
	return nil
}

type emailChannel struct {
	notify *NotifyClient
}

// NewEmailChannel creates the email delivery channel
func NewEmailChannel(notify *NotifyClient) Channel {
	return &emailChannel{notify: notify}
}

func (c *emailChannel) Deliver(ctx context.Context, record *model.AlertRecord) error {
	msg := alertMessage(record)
	if err := c.notify.Send(ctx, "email", record.SubjectID, record.AlertKey, msg); err != nil {
		return &model.DeliveryError{Channel: "email", Cause: err}
	}
	return nil
}

type mentorAssignChannel struct {
	students         repository.StudentRepo
	fallbackMentorID string
}

// NewMentorAssignChannel creates the mentor-assignment channel. Students with
// no mentor on the roster are assigned the fallback mentor.
func NewMentorAssignChannel(students repository.StudentRepo, fallbackMentorID string) Channel {
	return &mentorAssignChannel{students: students, fallbackMentorID: fallbackMentorID}
}

func (c *mentorAssignChannel) Deliver(ctx context.Context, record *model.AlertRecord) error {
	student, err := c.students.Get(ctx, record.SubjectID)
	if err != nil {
		return &model.DeliveryError{Channel: "mentor-assignment", Cause: err}
	}
	if student == nil {
		return &model.DeliveryError{Channel: "mentor-assignment", Cause: errors.New("subject not on roster")}
	}
	if student.MentorID != "" {
		// Already assigned; the alert still lands on the mentor's feed
		return nil
	}
	if c.fallbackMentorID == "" {
		return &model.DeliveryError{Channel: "mentor-assignment", Cause: errors.New("no mentor available for assignment")}
	}
	if err := c.students.AssignMentor(ctx, record.SubjectID, c.fallbackMentorID); err != nil {
		return &model.DeliveryError{Channel: "mentor-assignment", Cause: err}
	}
	return nil
}

func alertMessage(record *model.AlertRecord) string {
	return fmt.Sprintf("Wellness alert (%s) for student %s. Please follow up.", record.AlertType, record.SubjectID)
}
