package pipeline

import "fmt"

// FetchError wraps a failure of the pull request search.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch dependabot pull requests: %v", e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// PublishError wraps a failure to deliver the report.
type PublishError struct {
	Err error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("failed to publish report: %v", e.Err)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

// recovered turns a recovered panic value into an error.
func recovered(step string, v any) error {
	if err, ok := v.(error); ok {
		return fmt.Errorf("panic during %s: %w", step, err)
	}
	return fmt.Errorf("panic during %s: %v", step, v)
}
