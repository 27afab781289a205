package form

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/devops863/kaizen-sourcing/internal/common/validation"
	"github.com/devops863/kaizen-sourcing/internal/models"
)

// Submitter sends a fully validated payload to the submission API.
type Submitter interface {
	Submit(ctx context.Context, payload map[string]interface{}) (*models.Application, error)
}

// SubmitterFunc adapts a plain function to Submitter.
type SubmitterFunc func(ctx context.Context, payload map[string]interface{}) (*models.Application, error)

func (f SubmitterFunc) Submit(ctx context.Context, payload map[string]interface{}) (*models.Application, error) {
	return f(ctx, payload)
}

type Option func(*Machine)

// WithContract replaces the embedded application contract.
func WithContract(c *validation.Contract) Option {
	return func(m *Machine) { m.contract = c }
}

// Machine drives the six-step application form. It is safe for concurrent use;
// subscribers are called without the internal lock held.
type Machine struct {
	mu          sync.Mutex
	contract    *validation.Contract
	submitter   Submitter
	step        int
	values      map[string]interface{}
	errors      map[string]string
	submitted   bool
	submitting  bool
	result      *models.Application
	subscribers []func(Event)
}

func NewMachine(submitter Submitter, opts ...Option) *Machine {
	m := &Machine{
		contract:  validation.Application(),
		submitter: submitter,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.Initialize()
	return m
}

// Subscribe registers fn for every future event.
func (m *Machine) Subscribe(fn func(Event)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers = append(m.subscribers, fn)
}

// Initialize resets the form to step 1 with empty values. It is the only way
// out of the submitted state.
func (m *Machine) Initialize() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.step = FirstStep
	m.values = m.emptyValues()
	m.errors = map[string]string{}
	m.submitted = false
	m.result = nil
}

func (m *Machine) emptyValues() map[string]interface{} {
	values := make(map[string]interface{})
	for _, f := range allFields() {
		values[f.Name] = f.Empty()
	}
	if def, ok := m.contract.Default("agencyCompany"); ok {
		values["agencyCompany"] = def
	} else {
		values["agencyCompany"] = models.DefaultAgencyCompany
	}
	return values
}

// Advance validates the current step and moves forward one step when it
// passes. The step never goes past the last one.
func (m *Machine) Advance() error {
	m.mu.Lock()
	if err := m.editable(); err != nil {
		m.mu.Unlock()
		return err
	}

	step := StepFor(m.step)
	fieldErrs := step.Validate(m.contract, m.values)
	for _, f := range step.Fields() {
		delete(m.errors, f.Name)
	}
	for field, msg := range fieldErrs {
		m.errors[field] = msg
	}
	if len(fieldErrs) == 0 && m.step < LastStep {
		m.step++
	}
	ev := Event{Kind: EventScrollTop, Step: m.step}
	m.mu.Unlock()

	m.emit(ev)
	if len(fieldErrs) > 0 {
		return &ClientValidationError{Fields: fieldErrs}
	}
	return nil
}

// editable reports why the form cannot change right now. Callers hold mu.
func (m *Machine) editable() error {
	switch {
	case m.submitted:
		return ErrSubmitted
	case m.submitting:
		return ErrSubmissionInFlight
	}
	return nil
}

// Retreat moves back one step without validating.
func (m *Machine) Retreat() error {
	m.mu.Lock()
	if err := m.editable(); err != nil {
		m.mu.Unlock()
		return err
	}
	if m.step > FirstStep {
		m.step--
	}
	ev := Event{Kind: EventScrollTop, Step: m.step}
	m.mu.Unlock()

	m.emit(ev)
	return nil
}

// Set stores value for field and clears the field's error.
func (m *Machine) Set(field string, value interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.editable(); err != nil {
		return err
	}
	if !m.contract.Declares(field) {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	m.values[field] = value
	delete(m.errors, field)
	return nil
}

func (m *Machine) Value(field string) interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[field]
}

// Values returns a copy of every field value.
func (m *Machine) Values() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyValues(m.values)
}

// Errors returns a copy of the current field -> message map.
func (m *Machine) Errors() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.errors))
	for k, v := range m.errors {
		out[k] = v
	}
	return out
}

func (m *Machine) Step() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.step
}

func (m *Machine) CurrentStep() Step {
	return StepFor(m.Step())
}

func (m *Machine) Submitted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.submitted
}

// Submitting reports whether a submission is outstanding.
func (m *Machine) Submitting() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.submitting
}

// Result is the persisted record after a successful submit.
func (m *Machine) Result() *models.Application {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.result
}

// Submit validates every field and makes a single call to the Submitter. On
// failure the values are kept so the applicant can correct and resubmit.
func (m *Machine) Submit(ctx context.Context) (*models.Application, error) {
	m.mu.Lock()
	switch {
	case m.submitted:
		m.mu.Unlock()
		return nil, ErrSubmitted
	case m.submitting:
		m.mu.Unlock()
		return nil, ErrSubmissionInFlight
	case m.step != LastStep:
		m.mu.Unlock()
		return nil, ErrNotOnFinalStep
	}

	payload := copyValues(m.values)
	result := m.contract.Validate(payload)
	if !result.Valid {
		fieldErrs := result.FieldErrors()
		for field, msg := range fieldErrs {
			m.errors[field] = msg
		}
		m.mu.Unlock()
		return nil, &ClientValidationError{Fields: fieldErrs}
	}

	m.submitting = true
	m.mu.Unlock()

	app, err := m.submitter.Submit(ctx, payload)

	m.mu.Lock()
	m.submitting = false
	if err != nil {
		var serverErr *ServerValidationError
		if errors.As(err, &serverErr) {
			for field, msg := range serverErr.Fields {
				m.errors[field] = msg
			}
		}
		ev := Event{Kind: EventSubmissionFailed, Step: m.step, Title: FailureTitle, Message: failureMessage(err)}
		m.mu.Unlock()

		m.emit(ev)
		return nil, err
	}

	m.submitted = true
	m.result = app
	m.errors = map[string]string{}
	step := m.step
	m.mu.Unlock()

	m.emit(Event{Kind: EventSubmissionSucceeded, Step: step, Title: SuccessTitle, Message: SuccessMessage, Application: app})
	m.emit(Event{Kind: EventScrollTop, Step: step})
	return app, nil
}

func (m *Machine) emit(ev Event) {
	m.mu.Lock()
	subs := make([]func(Event), len(m.subscribers))
	copy(subs, m.subscribers)
	m.mu.Unlock()

	for _, fn := range subs {
		fn(ev)
	}
}

func copyValues(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		if list, ok := v.([]string); ok {
			v = append([]string{}, list...)
		}
		out[k] = v
	}
	return out
}

func displayValue(f FieldDescriptor, v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "-"
	case bool:
		if val {
			return "Yes"
		}
		return "No"
	case []string:
		if len(val) == 0 {
			return "None"
		}
		return strings.Join(val, ", ")
	case string:
		if val == "" {
			return "-"
		}
		return f.OptionLabel(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
