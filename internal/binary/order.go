package binary

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/sys/cpu"
)

// NativeOrder returns the byte order of the host.
func NativeOrder() binary.ByteOrder {
	if cpu.IsBigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// IsBigEndian reports whether order stores the most significant byte first.
// It works for any binary.ByteOrder, including binary.NativeEndian.
func IsBigEndian(order binary.ByteOrder) bool {
	return order.Uint16([]byte{0x00, 0x01}) == 1
}

// SameOrder reports whether a and b lay out integers identically.
func SameOrder(a, b binary.ByteOrder) bool {
	return IsBigEndian(a) == IsBigEndian(b)
}

// OrderName returns "little-endian" or "big-endian".
func OrderName(order binary.ByteOrder) string {
	if IsBigEndian(order) {
		return "big-endian"
	}
	return "little-endian"
}

// Swap reverses the bytes of every size-byte element of data in place.
// len(data) must be a multiple of size; trailing bytes are left untouched.
func Swap(data []byte, size int) {
	switch size {
	case 0, 1:
		return
	case 2:
		for i := 0; i+1 < len(data); i += 2 {
			data[i], data[i+1] = data[i+1], data[i]
		}
	case 4:
		for i := 0; i+3 < len(data); i += 4 {
			data[i], data[i+1], data[i+2], data[i+3] = data[i+3], data[i+2], data[i+1], data[i]
		}
	case 8:
		for i := 0; i+7 < len(data); i += 8 {
			e := data[i : i+8 : i+8]
			e[0], e[1], e[2], e[3], e[4], e[5], e[6], e[7] = e[7], e[6], e[5], e[4], e[3], e[2], e[1], e[0]
		}
	default:
		for i := 0; i+size <= len(data); i += size {
			e := data[i : i+size]
			for l, r := 0, size-1; l < r; l, r = l+1, r-1 {
				e[l], e[r] = e[r], e[l]
			}
		}
	}
}

// OrderList returns the ICS byte_order list describing size-byte values
// stored in order. Position i holds the significance rank (1 = least
// significant) of the i-th stored byte.
func OrderList(order binary.ByteOrder, size int) []int {
	list := make([]int, size)
	big := IsBigEndian(order)
	for i := range list {
		if big {
			list[i] = size - i
		} else {
			list[i] = i + 1
		}
	}
	return list
}

// ParseOrderList converts an ICS byte_order list to a byte order. Only pure
// little- or big-endian permutations are accepted.
func ParseOrderList(list []int) (binary.ByteOrder, error) {
	n := len(list)
	if n == 0 {
		return nil, fmt.Errorf("empty byte order list")
	}
	little, big := true, true
	for i, v := range list {
		if v != i+1 {
			little = false
		}
		if v != n-i {
			big = false
		}
	}
	switch {
	case little:
		// covers single byte values as well
		return binary.LittleEndian, nil
	case big:
		return binary.BigEndian, nil
	default:
		return nil, fmt.Errorf("mixed byte order %v", list)
	}
}
