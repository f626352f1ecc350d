package typed

// marshal.go converts comparable, fixed-width K/V values to and from the
// byte buffers pkg/table requires, the same zero-copy trick the teacher
// centralises in internal/unsafehelpers: treat the value's own memory as a
// []byte view of size unsafe.Sizeof(v). This only works for K/V that are
// themselves fixed-width (numeric types, fixed arrays, structs without
// pointers/slices/strings) — exactly the "fixed-size keys/values only"
// contract pkg/typed documents.

import (
	"unsafe"

	"github.com/kvtab/buckettable/internal/unsafehelpers"
)

func sizeOf[T any]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// viewBytes returns a zero-copy []byte view of v's own memory. The returned
// slice is only valid for the duration of the call that produced it; pass it
// straight into a pkg/table operation, which copies out of it immediately.
func viewBytes[T any](v *T) []byte {
	return unsafehelpers.ByteSliceFrom(unsafe.Pointer(v), unsafe.Sizeof(*v))
}

// fromBytes reinterprets a byte buffer of len(unsafe.Sizeof(T)) as a T,
// copying it out so the result does not alias the buffer.
func fromBytes[T any](b []byte) T {
	var out T
	copy(viewBytes(&out), b)
	return out
}
