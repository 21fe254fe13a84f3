package convo

import (
	"testing"

	"weatherbot-api/internal/common"

	"github.com/stretchr/testify/assert"
)

func TestAdvanceOnboarding(t *testing.T) {
	tests := []struct {
		name      string
		stage     common.OnboardingStage
		firstName string
		input     string
		expected  OnboardingStep
	}{
		{
			name:  "first name answered",
			stage: common.StageAwaitingFirstName,
			input: "Alice",
			expected: OnboardingStep{
				Stage:     common.StageAwaitingLastName,
				FirstName: "Alice",
				Reply:     "Nice to meet you, Alice. What's your last name?",
			},
		},
		{
			name:  "first name blank answer repeats the question",
			stage: common.StageAwaitingFirstName,
			input: "   ",
			expected: OnboardingStep{
				Stage: common.StageAwaitingFirstName,
				Reply: "Hi! What's your first name?",
			},
		},
		{
			name:  "first name with surrounding whitespace is normalized",
			stage: common.StageAwaitingFirstName,
			input: "  Alice   Mae ",
			expected: OnboardingStep{
				Stage:     common.StageAwaitingLastName,
				FirstName: "Alice Mae",
				Reply:     "Nice to meet you, Alice Mae. What's your last name?",
			},
		},
		{
			name:      "last name answered",
			stage:     common.StageAwaitingLastName,
			firstName: "Alice",
			input:     "Smith",
			expected: OnboardingStep{
				Stage:    common.StageAwaitingLocation,
				LastName: "Smith",
				Reply:    "Thanks Alice! " + askLocationText,
			},
		},
		{
			name:      "last name blank answer repeats the question",
			stage:     common.StageAwaitingLastName,
			firstName: "Alice",
			input:     "",
			expected: OnboardingStep{
				Stage: common.StageAwaitingLastName,
				Reply: "Sorry Alice, what's your last name?",
			},
		},
		{
			name:  "location answer requests resolution",
			stage: common.StageAwaitingLocation,
			input: "Davis, CA",
			expected: OnboardingStep{
				Stage:         common.StageAwaitingLocation,
				NeedsLocation: true,
			},
		},
		{
			name:  "location blank answer repeats the question",
			stage: common.StageAwaitingLocation,
			input: " ",
			expected: OnboardingStep{
				Stage: common.StageAwaitingLocation,
				Reply: askLocationText,
			},
		},
		{
			name:  "complete stage is a no-op",
			stage: common.StageComplete,
			input: "Alice",
			expected: OnboardingStep{
				Stage: common.StageComplete,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			step := AdvanceOnboarding(tt.stage, tt.firstName, tt.input)
			assert.Equal(t, tt.expected, step)
		})
	}
}
