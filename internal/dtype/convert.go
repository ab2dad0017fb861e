package dtype

// Conversion from raw pixel bytes to Go values.
//
// Convert dispatches on the pixel kind and fills a destination slice of any
// numeric type element by element. When the destination element type is
// exactly the pixel's Go type and the bytes are in host order, the data is
// copied directly into the slice's backing array.

import (
	"fmt"
	"math"
	"reflect"
	"unsafe"

	icsbinary "github.com/robert-malhotra/go-ics/internal/binary"
)

// Convert converts n pixels of raw data to Go values. dest must be a
// pointer to a slice; it is grown when shorter than n.
func Convert(f Format, data []byte, n int, dest any) error {
	if err := f.Validate(); err != nil {
		return err
	}
	destVal := reflect.ValueOf(dest)
	if destVal.Kind() != reflect.Pointer || destVal.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("dest must be a pointer to a slice, got %T", dest)
	}
	slice := destVal.Elem()

	size := f.ElementSize()
	if needed := n * size; needed > len(data) {
		return fmt.Errorf("not enough data: need %d bytes, have %d", needed, len(data))
	}
	if slice.Len() < n {
		slice.Set(reflect.MakeSlice(slice.Type(), n, n))
	}
	if n == 0 {
		return nil
	}

	if canDirectCopy(f, slice.Type().Elem()) {
		directCopy(data, n*size, slice)
		return nil
	}

	set, err := setter(f, slice.Type().Elem())
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		set(slice.Index(i), data[i*size:(i+1)*size])
	}
	return nil
}

// ConvertToSlice converts n pixels of raw data to a newly allocated slice.
func ConvertToSlice[T Number](f Format, data []byte, n int) ([]T, error) {
	result := make([]T, n)
	if err := Convert(f, data, n, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// setter returns a function storing one raw pixel into a value of type
// elem.
func setter(f Format, elem reflect.Type) (func(reflect.Value, []byte), error) {
	order := f.Order
	switch f.Kind {
	case Unsigned, Signed:
		var read func([]byte) (int64, uint64)
		switch f.Bits {
		case 8:
			read = func(b []byte) (int64, uint64) { return int64(int8(b[0])), uint64(b[0]) }
		case 16:
			read = func(b []byte) (int64, uint64) { v := order.Uint16(b); return int64(int16(v)), uint64(v) }
		case 32:
			read = func(b []byte) (int64, uint64) { v := order.Uint32(b); return int64(int32(v)), uint64(v) }
		default:
			read = func(b []byte) (int64, uint64) { v := order.Uint64(b); return int64(v), v }
		}
		signed := f.Kind == Signed
		switch elem.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return func(v reflect.Value, b []byte) {
				s, u := read(b)
				if !signed {
					s = int64(u)
				}
				v.SetInt(s)
			}, nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			return func(v reflect.Value, b []byte) {
				s, u := read(b)
				if signed {
					u = uint64(s)
				}
				v.SetUint(u)
			}, nil
		case reflect.Float32, reflect.Float64:
			return func(v reflect.Value, b []byte) {
				s, u := read(b)
				if signed {
					v.SetFloat(float64(s))
				} else {
					v.SetFloat(float64(u))
				}
			}, nil
		case reflect.Complex64, reflect.Complex128:
			return func(v reflect.Value, b []byte) {
				s, u := read(b)
				if signed {
					v.SetComplex(complex(float64(s), 0))
				} else {
					v.SetComplex(complex(float64(u), 0))
				}
			}, nil
		}

	case Float:
		read := func(b []byte) float64 { return math.Float64frombits(order.Uint64(b)) }
		if f.Bits == 32 {
			read = func(b []byte) float64 { return float64(math.Float32frombits(order.Uint32(b))) }
		}
		switch elem.Kind() {
		case reflect.Float32, reflect.Float64:
			return func(v reflect.Value, b []byte) { v.SetFloat(read(b)) }, nil
		case reflect.Complex64, reflect.Complex128:
			return func(v reflect.Value, b []byte) { v.SetComplex(complex(read(b), 0)) }, nil
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return func(v reflect.Value, b []byte) { v.SetInt(int64(read(b))) }, nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			return func(v reflect.Value, b []byte) { v.SetUint(uint64(read(b))) }, nil
		}

	case Complex:
		half := f.ComponentSize()
		read := func(b []byte) float64 { return math.Float64frombits(order.Uint64(b)) }
		if half == 4 {
			read = func(b []byte) float64 { return float64(math.Float32frombits(order.Uint32(b))) }
		}
		switch elem.Kind() {
		case reflect.Complex64, reflect.Complex128:
			return func(v reflect.Value, b []byte) {
				v.SetComplex(complex(read(b[:half]), read(b[half:])))
			}, nil
		}
	}
	return nil, fmt.Errorf("cannot convert %s pixels to %v", f, elem)
}

// canDirectCopy checks if the pixel bytes can be copied verbatim into a
// slice of elemType.
func canDirectCopy(f Format, elemType reflect.Type) bool {
	if f.ComponentSize() > 1 && !icsbinary.SameOrder(f.Order, icsbinary.NativeOrder()) {
		return false
	}
	t, err := GoType(f)
	return err == nil && t == elemType
}

// directCopy copies n bytes into the backing array of dest.
func directCopy(data []byte, n int, dest reflect.Value) {
	copy(unsafe.Slice((*byte)(dest.UnsafePointer()), n), data[:n])
}
