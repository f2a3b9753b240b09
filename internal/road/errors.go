package road

import "errors"

var (
	// ErrInvalidConfig reports a road parameter outside its allowed range.
	ErrInvalidConfig = errors.New("invalid road config")
	// ErrCapacityExceeded reports that random placement gave up before
	// reaching the target car count.
	ErrCapacityExceeded = errors.New("road capacity exceeded")
)
