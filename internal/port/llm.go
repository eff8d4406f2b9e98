package port

import "context"

// Reviewer sends an assembled prompt to a language model.
type Reviewer interface {
	// Review returns the generated text. Failures are *domain.ReviewError.
	Review(ctx context.Context, prompt string) (string, error)

	// ModelName returns the name of the model.
	ModelName() string
}
