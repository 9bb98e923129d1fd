package compare

import (
	"cmp"
	"fmt"
	"reflect"
)

// Func is a three-way comparator over two records.
type Func[T any] func(a, b *T) int

// Probe compares an immediate value against a record key.
// The value is the left operand.
type Probe[T any] func(rec *T) int

// Int is the set of Go integer types an index key may be stored as.
type Int interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Ordered returns a comparator over a scalar field.
func Ordered[T any, K cmp.Ordered](field func(*T) K) Func[T] {
	return func(a, b *T) int {
		return cmp.Compare(field(a), field(b))
	}
}

// ByRef compares strings held by reference. A nil reference orders first.
func ByRef[T any](field func(*T) *string) Func[T] {
	return func(a, b *T) int {
		return compareRef(field(a), field(b))
	}
}

func compareRef(x, y *string) int {
	switch {
	case x == nil && y == nil:
		return 0
	case x == nil:
		return -1
	case y == nil:
		return 1
	}
	return cmp.Compare(*x, *y)
}

// Reverse negates c.
func Reverse[T any](c Func[T]) Func[T] {
	return func(a, b *T) int { return c(b, a) }
}

// KindOf returns the Kind matching the stored integer type K.
func KindOf[K Int]() Kind {
	var zero K
	switch reflect.TypeOf(zero).Kind() {
	case reflect.Int8:
		return Int8
	case reflect.Int16:
		return Int16
	case reflect.Int32:
		return Int32
	case reflect.Int64:
		return Int64
	case reflect.Uint8:
		return Uint8
	case reflect.Uint16:
		return Uint16
	case reflect.Uint32:
		return Uint32
	case reflect.Uint64:
		return Uint64
	default:
		return Size
	}
}

// signedOf reports whether K is a signed integer type.
func signedOf[K Int]() bool {
	var zero K
	return zero-1 < zero
}

// scalar is an immediate integer widened to 64 bits with its signedness.
type scalar struct {
	neg bool   // s holds the value
	s   int64  // valid when neg
	u   uint64 // valid when !neg
}

// widen converts any Go integer immediate into a scalar.
func widen(v any) (scalar, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := rv.Int()
		if n < 0 {
			return scalar{neg: true, s: n}, nil
		}
		return scalar{u: uint64(n)}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return scalar{u: rv.Uint()}, nil
	default:
		return scalar{}, fmt.Errorf("compare: %T is not an integer", v)
	}
}

// compareScalar orders an immediate against a stored key of type K without
// truncating either side.
func compareScalar[K Int](v scalar, key K) int {
	if signedOf[K]() {
		k := int64(key)
		switch {
		case v.neg:
			return cmp.Compare(v.s, k)
		case k < 0:
			return 1
		default:
			return cmp.Compare(v.u, uint64(k))
		}
	}
	if v.neg {
		return -1
	}
	return cmp.Compare(v.u, uint64(key))
}

// PromoteInteger builds a constant probe for an integer key. The immediate
// may be of any Go integer type; it is promoted to the key's domain.
func PromoteInteger[T any, K Int](field func(*T) K, v any) (Probe[T], error) {
	s, err := widen(v)
	if err != nil {
		return nil, err
	}
	return func(rec *T) int {
		return compareScalar(s, field(rec))
	}, nil
}

// PromoteString builds a constant probe for an inline string key.
func PromoteString[T any](field func(*T) string, v any) (Probe[T], error) {
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("compare: %T is not a string", v)
	}
	return func(rec *T) int {
		return cmp.Compare(s, field(rec))
	}, nil
}

// PromoteStringRef builds a constant probe for a by-reference string key.
// Both string and *string immediates are accepted.
func PromoteStringRef[T any](field func(*T) *string, v any) (Probe[T], error) {
	var ref *string
	switch s := v.(type) {
	case string:
		ref = &s
	case *string:
		ref = s
	default:
		return nil, fmt.Errorf("compare: %T is not a string", v)
	}
	return func(rec *T) int {
		return compareRef(ref, field(rec))
	}, nil
}

// ReverseProbe negates p.
func ReverseProbe[T any](p Probe[T]) Probe[T] {
	return func(rec *T) int { return -p(rec) }
}
