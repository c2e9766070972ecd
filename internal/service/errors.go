package service

// InvalidInputError marks failures the client can correct: malformed or
// forbidden field values, weak passwords, bad uploads. Handlers map it to a
// 400 response with the reason in the body.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return e.Reason
}

func invalidInput(err error) error {
	return &InvalidInputError{Reason: err.Error()}
}
