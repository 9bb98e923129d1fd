// Package compare implements the comparator set used by index keys.
//
// Every comparator follows the same three-way contract: negative when the
// first operand orders before the second, zero when equal, positive otherwise.
package compare

import "strings"

// Kind describes the stored representation of an index key.
type Kind uint16

const (
	Int8 Kind = 1 << iota
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	// Size is a machine-word integer (int, uint, uintptr).
	Size
	// String is a string stored inline in the record.
	String
	// StringRef is a string held by reference; default cleanup releases it.
	StringRef
	// Identity orders records by their stable record identity.
	Identity
	// Custom uses a caller-supplied comparator.
	Custom
)

const (
	// Signed groups the signed fixed-width kinds.
	Signed = Int8 | Int16 | Int32 | Int64
	// Unsigned groups the unsigned fixed-width kinds.
	Unsigned = Uint8 | Uint16 | Uint32 | Uint64
	// Integer groups every integer kind.
	Integer = Signed | Unsigned | Size
	// Text groups the string kinds.
	Text = String | StringRef
)

var kindNames = []struct {
	k    Kind
	name string
}{
	{Int8, "int8"}, {Int16, "int16"}, {Int32, "int32"}, {Int64, "int64"},
	{Uint8, "uint8"}, {Uint16, "uint16"}, {Uint32, "uint32"}, {Uint64, "uint64"},
	{Size, "size"}, {String, "string"}, {StringRef, "stringref"},
	{Identity, "identity"}, {Custom, "custom"},
}

// Has reports whether every bit of f is set in k.
func (k Kind) Has(f Kind) bool { return f != 0 && k&f == f }

// Any reports whether k shares a bit with f.
func (k Kind) Any(f Kind) bool { return k&f != 0 }

// Valid reports whether exactly one representation bit is set.
func (k Kind) Valid() bool {
	return k != 0 && k&(k-1) == 0 && k <= Custom
}

func (k Kind) String() string {
	if k == 0 {
		return "none"
	}
	var parts []string
	for _, kn := range kindNames {
		if k&kn.k != 0 {
			parts = append(parts, kn.name)
		}
	}
	if len(parts) == 0 {
		return "unknown"
	}
	return strings.Join(parts, "|")
}
