package stationclient

import "fmt"

// FetchError reports a failed collection load. StatusCode is zero when the
// request never got a response.
type FetchError struct {
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch stations: status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch stations: %v", e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

type CreateError struct {
	StatusCode int
	Err        error
}

func (e *CreateError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("create station: status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("create station: %v", e.Err)
}

func (e *CreateError) Unwrap() error { return e.Err }

type UpdateError struct {
	ID         string
	StatusCode int
	Err        error
}

func (e *UpdateError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("update station %q: status %d: %v", e.ID, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("update station %q: %v", e.ID, e.Err)
}

func (e *UpdateError) Unwrap() error { return e.Err }
