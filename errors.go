package glpipe

import (
	"errors"
	"fmt"
)

// Error kinds shared by every glpipe package. Callers match them with
// errors.Is; the concrete error may carry more detail (see SurfaceError
// and IOError).
var (
	// ErrNotAvailable is returned when the transport device is missing or
	// cannot be opened, or when the endpoint handshake fails.
	ErrNotAvailable = errors.New("glpipe: transport not available")

	// ErrNoEndpoint is returned when negotiation exhausted every endpoint.
	ErrNoEndpoint = errors.New("glpipe: no OpenGL ES endpoint available")

	// ErrNotStarted is returned by operations that need an active session.
	ErrNotStarted = errors.New("glpipe: renderer not started")

	// ErrAlreadyStarted is returned by Start on a session that is starting
	// or active.
	ErrAlreadyStarted = errors.New("glpipe: renderer already started")

	// ErrSessionDestroyed is returned by Start on a destroyed session.
	// A destroyed session is never restarted; create a new one.
	ErrSessionDestroyed = errors.New("glpipe: session destroyed")

	// ErrInvalidWindow is returned for a nil window or a null handle.
	ErrInvalidWindow = errors.New("glpipe: invalid native window")

	// ErrConfigurationFailed matches a SurfaceError from a geometry call.
	ErrConfigurationFailed = errors.New("glpipe: surface configuration failed")

	// ErrLockFailed matches a SurfaceError from a buffer lock.
	ErrLockFailed = errors.New("glpipe: surface lock failed")

	// ErrPresentFailed matches a SurfaceError from unlock-and-post.
	ErrPresentFailed = errors.New("glpipe: surface present failed")

	// ErrIO matches any IOError on an open channel.
	ErrIO = errors.New("glpipe: channel i/o error")
)

// SurfaceOp identifies the host surface call that failed.
type SurfaceOp uint8

const (
	// SurfaceConfigure is ANativeWindow_setBuffersGeometry or equivalent.
	SurfaceConfigure SurfaceOp = iota
	// SurfaceLock is ANativeWindow_lock or equivalent.
	SurfaceLock
	// SurfacePresent is ANativeWindow_unlockAndPost or equivalent.
	SurfacePresent
)

// String returns the name of the operation.
func (op SurfaceOp) String() string {
	switch op {
	case SurfaceConfigure:
		return "configure"
	case SurfaceLock:
		return "lock"
	case SurfacePresent:
		return "present"
	default:
		return "unknown"
	}
}

// SurfaceError reports a non-zero status from the host surface API.
type SurfaceError struct {
	Op   SurfaceOp
	Code int
}

func (e *SurfaceError) Error() string {
	return fmt.Sprintf("glpipe: surface %s failed: status %d", e.Op, e.Code)
}

// Is matches the sentinel for the failed operation, so that
// errors.Is(err, ErrLockFailed) holds for a failed lock.
func (e *SurfaceError) Is(target error) bool {
	switch target {
	case ErrConfigurationFailed:
		return e.Op == SurfaceConfigure
	case ErrLockFailed:
		return e.Op == SurfaceLock
	case ErrPresentFailed:
		return e.Op == SurfacePresent
	}
	return false
}

// IOError reports a read, write or flush failure on an open channel.
type IOError struct {
	// Op is "write", "read" or "flush".
	Op string
	// Endpoint is the endpoint the channel is bound to.
	Endpoint string
	Err      error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("glpipe: %s on %s: %v", e.Op, e.Endpoint, e.Err)
}

// Unwrap returns the underlying I/O error.
func (e *IOError) Unwrap() error { return e.Err }

// Is reports whether target is ErrIO.
func (e *IOError) Is(target error) bool { return target == ErrIO }
