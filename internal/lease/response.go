package lease

import (
	"errors"

	"slavemarket/internal/model"
)

// Response holds either a contract or a non-empty list of errors, never both.
type Response struct {
	Contract *model.LeaseContract
	Errors   []*Error
}

// OK reports whether the lease succeeded.
func (r *Response) OK() bool {
	return r.Contract != nil && len(r.Errors) == 0
}

// Messages returns the formatted errors in the order they were raised.
func (r *Response) Messages() []string {
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, Format(e))
	}
	return msgs
}

// Err joins all errors into one, or returns nil on success.
func (r *Response) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}
	return errors.Join(errs...)
}

// HasKind reports whether any error of kind k was raised.
func (r *Response) HasKind(k Kind) bool {
	for _, e := range r.Errors {
		if e.Kind == k {
			return true
		}
	}
	return false
}

func (r *Response) addError(e *Error) {
	r.Errors = append(r.Errors, e)
}
