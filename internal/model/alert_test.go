package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlertKeyFor(t *testing.T) {
	assert.Equal(t, "s1:risk_high", AlertKeyFor("s1", AlertTypeRiskHigh, ""))
	assert.Equal(t, "s1:risk_critical:2026-09-01", AlertKeyFor("s1", AlertTypeRiskCritical, "2026-09-01"))
}

func TestTierOrdering(t *testing.T) {
	assert.Greater(t, TierCritical.Weight(), TierHigh.Weight())
	assert.Greater(t, TierHigh.Weight(), TierModerate.Weight())
	assert.Greater(t, TierModerate.Weight(), TierLow.Weight())

	assert.True(t, TierModerate.IsValid())
	assert.False(t, Tier("urgent").IsValid())
}

func TestChannelTypeValidity(t *testing.T) {
	assert.True(t, ChannelSMS.IsValid())
	assert.True(t, ChannelEmail.IsValid())
	assert.True(t, ChannelMentorAssign.IsValid())
	assert.False(t, ChannelType("fax").IsValid())
}

func TestUnknownSignals(t *testing.T) {
	attendance := 80.0
	stress := 5.0

	full := &StudentSignals{
		AttendancePct: &attendance,
		BacklogCount:  new(int),
		StressScore:   &stress,
		GPA:           &attendance,
		FeeStatus:     FeePaid,
		SeverityBands: map[QuestionnaireKind]string{KindPHQ9: "Mild"},
	}
	assert.Empty(t, full.UnknownSignals())

	partial := &StudentSignals{AttendancePct: &attendance}
	assert.Equal(t, []string{"backlogs", "stress", "gpa", "fees", "questionnaire"}, partial.UnknownSignals())
}
