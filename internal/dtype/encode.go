package dtype

import (
	"fmt"
	"math"
	"reflect"
	"unsafe"
)

// Encode converts Go values to raw pixel bytes in f's byte order.
// The src parameter should be a slice or array of a numeric type; a
// scalar is encoded as a single pixel.
func Encode(f Format, src any) ([]byte, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	srcVal := reflect.ValueOf(src)
	if srcVal.Kind() == reflect.Pointer {
		srcVal = srcVal.Elem()
	}

	switch srcVal.Kind() {
	case reflect.Slice, reflect.Array:
	default:
		sliceVal := reflect.MakeSlice(reflect.SliceOf(srcVal.Type()), 1, 1)
		sliceVal.Index(0).Set(srcVal)
		srcVal = sliceVal
	}

	n := srcVal.Len()
	size := f.ElementSize()
	data := make([]byte, n*size)
	if n == 0 {
		return data, nil
	}

	if srcVal.Kind() == reflect.Slice && canDirectCopy(f, srcVal.Type().Elem()) {
		copy(data, unsafe.Slice((*byte)(srcVal.UnsafePointer()), n*size))
		return data, nil
	}

	put, err := putter(f, srcVal.Type().Elem())
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		put(data[i*size:(i+1)*size], srcVal.Index(i))
	}
	return data, nil
}

// EncodeSlice is the typed form of Encode.
func EncodeSlice[T Number](f Format, src []T) ([]byte, error) {
	return Encode(f, src)
}

// putter returns a function storing a value of type elem as one raw pixel.
func putter(f Format, elem reflect.Type) (func([]byte, reflect.Value), error) {
	order := f.Order

	switch f.Kind {
	case Unsigned, Signed:
		var write func([]byte, uint64)
		switch f.Bits {
		case 8:
			write = func(b []byte, v uint64) { b[0] = byte(v) }
		case 16:
			write = func(b []byte, v uint64) { order.PutUint16(b, uint16(v)) }
		case 32:
			write = func(b []byte, v uint64) { order.PutUint32(b, uint32(v)) }
		default:
			write = func(b []byte, v uint64) { order.PutUint64(b, v) }
		}
		switch elem.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return func(b []byte, v reflect.Value) { write(b, uint64(v.Int())) }, nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			return func(b []byte, v reflect.Value) { write(b, v.Uint()) }, nil
		case reflect.Float32, reflect.Float64:
			if f.Kind == Signed {
				return func(b []byte, v reflect.Value) { write(b, uint64(int64(v.Float()))) }, nil
			}
			return func(b []byte, v reflect.Value) { write(b, uint64(v.Float())) }, nil
		}

	case Float:
		write := func(b []byte, x float64) { order.PutUint64(b, math.Float64bits(x)) }
		if f.Bits == 32 {
			write = func(b []byte, x float64) { order.PutUint32(b, math.Float32bits(float32(x))) }
		}
		switch elem.Kind() {
		case reflect.Float32, reflect.Float64:
			return func(b []byte, v reflect.Value) { write(b, v.Float()) }, nil
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return func(b []byte, v reflect.Value) { write(b, float64(v.Int())) }, nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			return func(b []byte, v reflect.Value) { write(b, float64(v.Uint())) }, nil
		}

	case Complex:
		half := f.ComponentSize()
		write := func(b []byte, x float64) { order.PutUint64(b, math.Float64bits(x)) }
		if half == 4 {
			write = func(b []byte, x float64) { order.PutUint32(b, math.Float32bits(float32(x))) }
		}
		switch elem.Kind() {
		case reflect.Complex64, reflect.Complex128:
			return func(b []byte, v reflect.Value) {
				c := v.Complex()
				write(b[:half], real(c))
				write(b[half:], imag(c))
			}, nil
		case reflect.Float32, reflect.Float64:
			return func(b []byte, v reflect.Value) {
				write(b[:half], v.Float())
				write(b[half:], 0)
			}, nil
		}
	}
	return nil, fmt.Errorf("cannot encode %v as %s pixels", elem, f)
}
