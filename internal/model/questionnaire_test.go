package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptionValues(t *testing.T) {
	def := &QuestionnaireDefinition{
		Kind: KindPHQ9,
		Questions: []Question{
			{ID: 1, Options: []Option{{Value: 0}, {Value: 1}, {Value: 2}, {Value: 3}}},
			{ID: 2, Options: []Option{{Value: 0}, {Value: 1}}},
		},
	}

	assert.Equal(t, []int{0, 1, 2, 3}, def.OptionValues(1))
	assert.Equal(t, []int{0, 1}, def.OptionValues(2))
	assert.Nil(t, def.OptionValues(99))
}

func TestMaxScore(t *testing.T) {
	def := &QuestionnaireDefinition{
		Kind: KindGAD7,
		Questions: []Question{
			{ID: 1, Options: []Option{{Value: 0}, {Value: 3}}},
			{ID: 2, Options: []Option{{Value: 2}, {Value: 0}}},
		},
	}

	assert.Equal(t, 5, def.MaxScore())
	assert.Equal(t, 0, (&QuestionnaireDefinition{}).MaxScore())
}
