package convo

import (
	"fmt"

	"weatherbot-api/internal/common"
	"weatherbot-api/internal/geocode"
)

// OnboardingStep is the pure outcome of advancing the onboarding dialog one
// turn. The service layer applies the mutation and performs any I/O the step
// calls for; the transition itself touches nothing.
type OnboardingStep struct {
	Stage         common.OnboardingStage
	FirstName     string // store as first name when non-empty
	LastName      string // store as last name when non-empty
	NeedsLocation bool   // input must be resolved as a location
	Reply         string // reply text when no I/O is needed
}

// AdvanceOnboarding computes the next onboarding transition for a user at
// the given stage answering with input. Input has already been
// whitespace-normalized. Calling it at StageComplete is a no-op step: the
// onboarding answers are only consumed once.
func AdvanceOnboarding(stage common.OnboardingStage, firstName, input string) OnboardingStep {
	input = geocode.NormalizeText(input)

	switch stage {
	case common.StageAwaitingFirstName:
		if input == "" {
			return OnboardingStep{Stage: stage, Reply: "Hi! What's your first name?"}
		}
		return OnboardingStep{
			Stage:     common.StageAwaitingLastName,
			FirstName: input,
			Reply:     fmt.Sprintf("Nice to meet you, %s. What's your last name?", input),
		}

	case common.StageAwaitingLastName:
		if input == "" {
			return OnboardingStep{Stage: stage, Reply: fmt.Sprintf("Sorry %s, what's your last name?", firstName)}
		}
		return OnboardingStep{
			Stage:    common.StageAwaitingLocation,
			LastName: input,
			Reply:    fmt.Sprintf("Thanks %s! %s", firstName, askLocationText),
		}

	case common.StageAwaitingLocation:
		if input == "" {
			return OnboardingStep{Stage: stage, Reply: askLocationText}
		}
		return OnboardingStep{Stage: stage, NeedsLocation: true}

	default:
		return OnboardingStep{Stage: stage}
	}
}
