package tensor

import "fmt"

// DataType identifies the element type of a RawTensor at runtime.
type DataType int

// Supported element types.
const (
	Float32 DataType = iota
	Float64
	Int64
	Uint8
)

// Size returns the size of one element in bytes.
func (d DataType) Size() int {
	switch d {
	case Float32:
		return 4
	case Float64:
		return 8
	case Int64:
		return 8
	case Uint8:
		return 1
	default:
		panic(fmt.Sprintf("unknown data type %d", d))
	}
}

// String returns the data type name.
func (d DataType) String() string {
	switch d {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Int64:
		return "int64"
	case Uint8:
		return "uint8"
	default:
		return "unknown"
	}
}

// DType is the compile-time constraint matching the supported element types.
type DType interface {
	~float32 | ~float64 | ~int64 | ~uint8
}

// TypeOf returns the DataType for a Go value of a supported element type.
func TypeOf[T DType]() DataType {
	var v T
	switch any(v).(type) {
	case float32:
		return Float32
	case float64:
		return Float64
	case int64:
		return Int64
	case uint8:
		return Uint8
	default:
		panic(fmt.Sprintf("unsupported element type %T", v))
	}
}
