package classifier

import "context"

// Result of one sign classification. An empty Label means the model
// produced nothing usable.
type Result struct {
	Label      string
	Confidence float64
}

// Classifier turns a base64-encoded frame into a label+confidence
// pair. Implementations must be safe for concurrent use.
type Classifier interface {
	Classify(ctx context.Context, imageData string) (Result, error)
}
