package mindex

import (
	"cmp"

	"github.com/hupe1980/mindex/internal/compare"
)

// KeyKind describes how an index key is stored and compared.
type KeyKind = compare.Kind

// Key kinds.
const (
	KindInt8      = compare.Int8
	KindInt16     = compare.Int16
	KindInt32     = compare.Int32
	KindInt64     = compare.Int64
	KindUint8     = compare.Uint8
	KindUint16    = compare.Uint16
	KindUint32    = compare.Uint32
	KindUint64    = compare.Uint64
	KindSize      = compare.Size
	KindString    = compare.String
	KindStringRef = compare.StringRef
	KindIdentity  = compare.Identity
	KindCustom    = compare.Custom
)

// Integer is the set of Go integer types usable as an IntKey.
type Integer = compare.Int

// Key selects the comparator of an index. Build one with IntKey, SizeKey,
// StringKey, StringRefKey, IdentityKey or CustomKey.
type Key[T any] struct {
	kind    KeyKind
	cmp     compare.Func[T]
	probe   func(v any) (compare.Probe[T], error)
	release func(*T)
}

// Kind returns the key kind.
func (k Key[T]) Kind() KeyKind { return k.kind }

// IsZero reports whether the key was left unset.
func (k Key[T]) IsZero() bool { return k.cmp == nil }

// IntKey orders records by a fixed-width integer field. GetConst accepts an
// immediate of any integer type and promotes it to K's domain.
func IntKey[T any, K Integer](field func(*T) K) Key[T] {
	return Key[T]{
		kind: compare.KindOf[K](),
		cmp:  compare.Ordered(field),
		probe: func(v any) (compare.Probe[T], error) {
			return compare.PromoteInteger(field, v)
		},
	}
}

// SizeKey orders records by a machine-word integer field.
func SizeKey[T any, K ~int | ~uint | ~uintptr](field func(*T) K) Key[T] {
	k := IntKey(field)
	k.kind = KindSize
	return k
}

// StringKey orders records lexicographically by an inline string field.
func StringKey[T any](field func(*T) string) Key[T] {
	return Key[T]{
		kind: KindString,
		cmp:  compare.Ordered(field),
		probe: func(v any) (compare.Probe[T], error) {
			return compare.PromoteString(field, v)
		},
	}
}

// StringRefKey orders records by a string held by reference. Default cleanup
// drops the reference so the buffer can be collected.
func StringRefKey[T any](field func(*T) **string) Key[T] {
	get := func(rec *T) *string { return *field(rec) }
	return Key[T]{
		kind: KindStringRef,
		cmp:  compare.ByRef(get),
		probe: func(v any) (compare.Probe[T], error) {
			return compare.PromoteStringRef(get, v)
		},
		release: func(rec *T) { *field(rec) = nil },
	}
}

// IdentityKey orders records by their stable record identity (see
// Hooks.ID). It stands in for ordering by address.
func IdentityKey[T any, R Record[T]]() Key[T] {
	hooks := hooksOf[T, R]()
	id := func(rec *T) uint64 { return hooks(rec).id }
	k := IntKey(id)
	k.kind = KindIdentity
	return k
}

// CustomKey orders records with a caller-supplied three-way comparator.
// Constant lookups are unavailable unless WithConst is applied.
func CustomKey[T any](fn func(a, b *T) int) Key[T] {
	var c compare.Func[T]
	if fn != nil {
		c = fn
	}
	return Key[T]{kind: KindCustom, cmp: c}
}

// WithConst enables GetConst and DeleteConst on a custom key. fn compares
// the immediate value against a record.
func (k Key[T]) WithConst(fn func(v any, rec *T) int) Key[T] {
	k.probe = func(v any) (compare.Probe[T], error) {
		return func(rec *T) int { return fn(v, rec) }, nil
	}
	return k
}

// Ordered is a convenience three-way comparison for custom keys.
func Ordered[K cmp.Ordered](a, b K) int { return cmp.Compare(a, b) }
