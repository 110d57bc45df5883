package famalloc

import (
	"errors"
	"fmt"
)

var (
	// ErrConflict is returned by Reserve when the target bit no longer holds
	// the expected value because another caller transitioned it first.
	ErrConflict = errors.New("bit no longer holds the expected value")

	// ErrOutOfRange is returned for bit indices at or beyond Len.
	ErrOutOfRange = errors.New("bit index out of range")

	// ErrClosed is returned by operations on a bitmap after Teardown.
	ErrClosed = errors.New("bitmap has been torn down")

	// ErrRegistration matches every *RegistrationError via errors.Is.
	ErrRegistration = errors.New("unable to register atomic region")

	errNilProvider = errors.New("nil atomics provider")
)

// RegistrationError indicates that the backing buffer could not be made
// eligible for atomic access. The bitmap it was meant for is unusable.
//
// The provider's error can be accessed via errors.Unwrap.
type RegistrationError struct {
	Bytes int
	Fd    int
	cause error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("unable to register atomic region (%d bytes, fd %d): %v", e.Bytes, e.Fd, e.cause)
}

func (e *RegistrationError) Unwrap() error { return e.cause }

// Is reports whether target is ErrRegistration.
func (e *RegistrationError) Is(target error) bool { return target == ErrRegistration }
