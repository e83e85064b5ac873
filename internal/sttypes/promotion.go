package sttypes

// integerRank and realRank implement the IEC 61131-3 "widen to the wider
// operand" promotion rule (§4.7): within a family (integer or real), the
// type with the larger rank wins; mixing an integer with a real promotes
// to the real.
var integerRank = map[TypeId]int{
	Sint: 1, Usint: 1, Byte: 1,
	Int: 2, Uint: 2, Word: 2,
	Dint: 3, Udint: 3, Dword: 3,
	Lint: 4, Ulint: 4, Lword: 4,
}

var realRank = map[TypeId]int{
	Real: 1, Lreal: 2,
}

// IsInteger reports whether id is one of the builtin signed/unsigned
// integer or bit-string types.
func IsInteger(id TypeId) bool {
	_, ok := integerRank[id]
	return ok
}

// IsReal reports whether id is REAL or LREAL.
func IsReal(id TypeId) bool {
	_, ok := realRank[id]
	return ok
}

// IsNumeric reports whether id is an integer or real builtin.
func IsNumeric(id TypeId) bool {
	return IsInteger(id) || IsReal(id)
}

// IsBitString reports whether id is BYTE/WORD/DWORD/LWORD (ANY_BIT).
func IsBitString(id TypeId) bool {
	switch id {
	case Byte, Word, Dword, Lword:
		return true
	default:
		return false
	}
}

// Promote returns the result type of a binary arithmetic operation
// between a and b, and whether the combination is legal at all (§4.7):
// same-family operands widen to the larger rank; integer-vs-real widens
// to the real; anything outside {integer, real} x {integer, real} is
// rejected (the caller emits a diagnostic).
func Promote(a, b TypeId) (TypeId, bool) {
	if a == b {
		if IsNumeric(a) {
			return a, true
		}
		return a, false
	}
	aReal, bReal := IsReal(a), IsReal(b)
	aInt, bInt := IsInteger(a), IsInteger(b)
	switch {
	case aReal && bReal:
		return widerReal(a, b), true
	case aInt && bInt:
		return widerInt(a, b), true
	case aReal && bInt:
		return a, true
	case bReal && aInt:
		return b, true
	default:
		return a, false
	}
}

func widerInt(a, b TypeId) TypeId {
	if integerRank[a] >= integerRank[b] {
		return a
	}
	return b
}

func widerReal(a, b TypeId) TypeId {
	if realRank[a] >= realRank[b] {
		return a
	}
	return b
}

// IsImplicitlyConvertible reports whether a value of type from may be
// assigned to a variable of type to without an explicit conversion
// function, per the subset of IEC widening rules this service enforces:
// identical types, or a narrower numeric type assigned to a wider one of
// the same family. Anything else assignable only via an explicit
// conversion (including real<-int or a narrowing assignment) reports
// false so the caller can emit W005/E203.
func IsImplicitlyConvertible(from, to TypeId) bool {
	if from == to {
		return true
	}
	if IsInteger(from) && IsInteger(to) {
		return integerRank[to] >= integerRank[from]
	}
	if IsReal(from) && IsReal(to) {
		return realRank[to] >= realRank[from]
	}
	if IsInteger(from) && IsReal(to) {
		return true
	}
	return false
}
