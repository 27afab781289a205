package form

import "github.com/devops863/kaizen-sourcing/internal/models"

type EventKind int

const (
	// EventScrollTop asks the view to return to the top of the form.
	EventScrollTop EventKind = iota + 1
	EventSubmissionSucceeded
	EventSubmissionFailed
)

func (k EventKind) String() string {
	switch k {
	case EventScrollTop:
		return "scroll_top"
	case EventSubmissionSucceeded:
		return "submission_succeeded"
	case EventSubmissionFailed:
		return "submission_failed"
	default:
		return "unknown"
	}
}

const (
	SuccessTitle    = "Application Submitted"
	SuccessMessage  = "We've received your details and will be in touch shortly."
	FailureTitle    = "Error"
	FallbackFailure = "Failed to submit application. Please try again."
)

// Event is emitted by the machine to its subscribers. Application is set only
// on EventSubmissionSucceeded.
type Event struct {
	Kind        EventKind
	Step        int
	Title       string
	Message     string
	Application *models.Application
}
