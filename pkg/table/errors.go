package table

// errors.go collects every sentinel error Table can return. Construction
// errors are returned (never panicked) from New; operation-time errors are
// returned from Set/Cache. All are checked with errors.Is, per the teacher's
// convention in pkg/config.go.

import "errors"

var (
	// ErrKeySizeRange is returned when keySize falls outside [4,64] or is
	// not a multiple of 4.
	ErrKeySizeRange = errors.New("keySize out of range or not a multiple of 4")

	// ErrValueSizeRange is returned when valueSize falls outside
	// [0,1048576].
	ErrValueSizeRange = errors.New("valueSize out of range")

	// ErrElementsMinRange is returned when elementsMin is not a positive
	// integer.
	ErrElementsMinRange = errors.New("elementsMin out of range")

	// ErrElementsMaxRange is returned when elementsMax is not a positive
	// integer, or is smaller than elementsMin.
	ErrElementsMaxRange = errors.New("elementsMax out of range")

	// ErrCapacityExceeded is returned when a configuration or a growth
	// attempt would exceed BufferMax or BucketsMax.
	ErrCapacityExceeded = errors.New("maximum capacity exceeded")

	// ErrModeConflict is returned when set and cache are both called on the
	// same Table after one has locked its mode.
	ErrModeConflict = errors.New("cache() and set() methods are mutually exclusive")

	// ErrSetExhausted is returned when a set could not be absorbed even
	// after two resize attempts.
	ErrSetExhausted = errors.New("set() failed despite multiple resize attempts")
)
