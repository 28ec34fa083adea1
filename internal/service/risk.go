package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"campuswell/internal/config"
	"campuswell/internal/model"
	"campuswell/internal/repository"
	"campuswell/internal/store"
)

// RiskService folds a student's raw signals into a composite risk tier.
// Classification is rule-based and deterministic: the tier is the worst
// severity among triggered rules, never an average, so a single critical
// factor overrides otherwise-healthy signals.
type RiskService struct {
	cfg         *config.RiskConfig
	students    repository.StudentRepo
	wellness    store.WellnessStore
	assessments store.AssessmentStore
	risk        store.RiskStore
	broadcaster Broadcaster
}

// NewRiskService creates a new risk service
func NewRiskService(
	cfg *config.RiskConfig,
	students repository.StudentRepo,
	wellness store.WellnessStore,
	assessments store.AssessmentStore,
	risk store.RiskStore,
) *RiskService {
	return &RiskService{
		cfg:         cfg,
		students:    students,
		wellness:    wellness,
		assessments: assessments,
		risk:        risk,
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *RiskService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Classify evaluates the threshold rules against signals and returns a new
// profile. Unknown signals are skipped, never coerced to a worst case and
// never defaulted to low. Does not persist.
func (s *RiskService) Classify(signals *model.StudentSignals) *model.RiskProfile {
	t := s.cfg.Thresholds
	var factors []model.Factor

	add := func(signal, reason string, tier model.Tier) {
		factors = append(factors, model.Factor{Signal: signal, Reason: reason, Tier: tier})
	}

	if v := signals.AttendancePct; v != nil {
		switch {
		case *v < t.AttendanceCriticalBelow:
			add("attendance", fmt.Sprintf("attendance %.0f%% below hard floor %.0f%%", *v, t.AttendanceCriticalBelow), model.TierCritical)
		case *v < t.AttendanceHighBelow:
			add("attendance", fmt.Sprintf("attendance %.0f%% below %.0f%%", *v, t.AttendanceHighBelow), model.TierHigh)
		case *v < t.AttendanceModerateBelow:
			add("attendance", fmt.Sprintf("attendance %.0f%% below %.0f%%", *v, t.AttendanceModerateBelow), model.TierModerate)
		}
	}

	if v := signals.BacklogCount; v != nil {
		switch {
		case *v >= t.BacklogHighAt:
			add("backlogs", fmt.Sprintf("%d pending backlogs", *v), model.TierHigh)
		case *v >= t.BacklogModerateAt:
			add("backlogs", fmt.Sprintf("%d pending backlogs", *v), model.TierModerate)
		}
	}

	if v := signals.StressScore; v != nil {
		switch {
		case *v > t.StressCriticalAbove:
			add("stress", fmt.Sprintf("stress score %.1f above critical threshold %.1f", *v, t.StressCriticalAbove), model.TierCritical)
		case *v >= t.StressHighAt:
			add("stress", fmt.Sprintf("stress score %.1f above %.1f", *v, t.StressHighAt), model.TierHigh)
		}
	}

	// Questionnaire bands: top band of the instrument is critical, the band
	// just below it is high. Kinds are visited in sorted order so identical
	// signals always produce identical factor ordering.
	kinds := make([]model.QuestionnaireKind, 0, len(signals.SeverityBands))
	for kind := range signals.SeverityBands {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	for _, kind := range kinds {
		band := signals.SeverityBands[kind]
		rank := s.cfg.BandRank(kind, band)
		top := len(s.cfg.BandsFor(kind)) - 1
		if rank < 0 || top < 1 {
			continue
		}
		switch rank {
		case top:
			add("questionnaire", fmt.Sprintf("%s severity %q", kind, band), model.TierCritical)
		case top - 1:
			add("questionnaire", fmt.Sprintf("%s severity %q", kind, band), model.TierHigh)
		}
	}

	if v := signals.GPA; v != nil {
		switch {
		case *v < t.GPAHighBelow:
			add("gpa", fmt.Sprintf("GPA %.2f below %.2f", *v, t.GPAHighBelow), model.TierHigh)
		case *v < t.GPAModerateBelow:
			add("gpa", fmt.Sprintf("GPA %.2f below %.2f", *v, t.GPAModerateBelow), model.TierModerate)
		}
	}

	// Non-academic, non-wellness risk, folded into the same tier for alerting
	if signals.FeeStatus == model.FeeOverdue {
		add("fees", "fee payment overdue", model.TierModerate)
	}

	tier := model.TierLow
	for _, f := range factors {
		if f.Tier.Weight() > tier.Weight() {
			tier = f.Tier
		}
	}

	// When missing data kept the determination at or below moderate, the
	// profile says so instead of silently passing the student as fine.
	if tier.Weight() <= model.TierModerate.Weight() {
		if unknown := signals.UnknownSignals(); len(unknown) > 0 {
			add("data_completeness", "no observation for: "+strings.Join(unknown, ", "), model.TierLow)
		}
	}

	return &model.RiskProfile{
		SubjectID:           signals.SubjectID,
		Tier:                tier,
		ContributingFactors: factors,
		ComputedAt:          time.Now(),
	}
}

// GatherSignals assembles the latest known signal values for a subject from
// the roster, the mood survey history, and the assessment store.
func (s *RiskService) GatherSignals(ctx context.Context, subjectID string) (*model.StudentSignals, error) {
	signals := &model.StudentSignals{
		SubjectID:  subjectID,
		ObservedAt: time.Now(),
	}

	student, err := s.students.Get(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster entry: %w", err)
	}
	if student != nil {
		signals.AttendancePct = student.AttendancePct
		signals.BacklogCount = student.BacklogCount
		signals.GPA = student.GPA
		signals.FeeStatus = student.FeeStatus
	}

	survey, err := s.wellness.LatestSurvey(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest mood survey: %w", err)
	}
	if survey != nil {
		stress := survey.StressLevel
		signals.StressScore = &stress
	}

	for _, kind := range []model.QuestionnaireKind{model.KindPHQ9, model.KindGAD7} {
		latest, err := s.assessments.Latest(ctx, subjectID, kind)
		if err != nil {
			return nil, fmt.Errorf("failed to load latest %s assessment: %w", kind, err)
		}
		if latest != nil {
			if signals.SeverityBands == nil {
				signals.SeverityBands = make(map[model.QuestionnaireKind]string)
			}
			signals.SeverityBands[kind] = latest.SeverityBand
		}
	}

	return signals, nil
}

// Recompute reclassifies a subject from current signals and persists the new
// profile. Returns the previous profile (nil on first classification) and the
// new one so the caller can evaluate alerting.
func (s *RiskService) Recompute(ctx context.Context, subjectID string) (*model.RiskProfile, *model.RiskProfile, error) {
	signals, err := s.GatherSignals(ctx, subjectID)
	if err != nil {
		return nil, nil, err
	}

	previous, err := s.risk.Get(ctx, subjectID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load previous risk profile: %w", err)
	}

	profile := s.Classify(signals)
	if err := s.risk.Save(ctx, profile); err != nil {
		return nil, nil, fmt.Errorf("failed to persist risk profile: %w", err)
	}
	if previous == nil || previous.Tier != profile.Tier {
		s.announceTierChange(ctx, profile)
	}
	return previous, profile, nil
}

// announceTierChange pushes a tier change to the live feed. The event goes to
// the student's assigned mentor when the roster names one, otherwise to every
// connected mentor. Feed delivery is best-effort and never fails Recompute.
func (s *RiskService) announceTierChange(ctx context.Context, profile *model.RiskProfile) {
	if s.broadcaster == nil {
		return
	}
	student, err := s.students.Get(ctx, profile.SubjectID)
	if err != nil {
		log.Printf("Failed to resolve mentor for risk event %s: %v", profile.SubjectID, err)
	}
	if student != nil && student.MentorID != "" {
		s.broadcaster.BroadcastToMentor(student.MentorID, model.EventRiskChanged, profile)
		return
	}
	s.broadcaster.BroadcastToMentors(model.EventRiskChanged, profile)
}
