package auth

import (
	"context"
	"github.com/myrjola/spasession/internal/errors"
	"sync"
)

// ErrSubmitInProgress is returned when a form is submitted while its previous submission is still running.
var ErrSubmitInProgress = errors.NewSentinel("login already in progress")

// FormState is the lifecycle of a LoginForm.
type FormState int

const (
	FormIdle FormState = iota
	FormSubmitting
	FormAuthenticated
	FormFailed
)

func (s FormState) String() string {
	switch s {
	case FormIdle:
		return "idle"
	case FormSubmitting:
		return "submitting"
	case FormAuthenticated:
		return "authenticated"
	case FormFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// LoginForm tracks a single login form: idle, submitting, then authenticated or failed. A failed or
// authenticated form may be submitted again.
type LoginForm struct {
	service *Service

	mu     sync.Mutex
	state  FormState
	result Result
}

func NewLoginForm(service *Service) *LoginForm {
	return &LoginForm{
		service: service,
		mu:      sync.Mutex{},
		state:   FormIdle,
		result:  Result{},
	}
}

// Submit runs a login. It returns ErrSubmitInProgress without contacting the server if the form is submitting.
func (f *LoginForm) Submit(ctx context.Context, creds Credentials) (Result, error) {
	f.mu.Lock()
	if f.state == FormSubmitting {
		f.mu.Unlock()
		return Result{}, ErrSubmitInProgress
	}
	f.state = FormSubmitting
	f.result = Result{}
	f.mu.Unlock()

	result := f.service.Login(ctx, creds)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.result = result
	if result.Authenticated() {
		f.state = FormAuthenticated
	} else {
		f.state = FormFailed
	}
	return result, nil
}

func (f *LoginForm) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Message is the feedback of the last finished submission, empty while idle or submitting.
func (f *LoginForm) Message() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result.Message
}

// Result returns the last finished submission.
func (f *LoginForm) Result() Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result
}
