package sttypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPromoteSameFamily(t *testing.T) {
	got, ok := Promote(Int, Dint)
	assert.True(t, ok)
	assert.Equal(t, Dint, got)
}

func TestPromoteIntAndReal(t *testing.T) {
	got, ok := Promote(Int, Real)
	assert.True(t, ok)
	assert.Equal(t, Real, got)

	got, ok = Promote(Lreal, Dint)
	assert.True(t, ok)
	assert.Equal(t, Lreal, got)
}

func TestPromoteRejectsNonNumeric(t *testing.T) {
	_, ok := Promote(Bool, Int)
	assert.False(t, ok)
}

func TestImplicitConversion(t *testing.T) {
	assert.True(t, IsImplicitlyConvertible(Int, Dint))
	assert.False(t, IsImplicitlyConvertible(Dint, Int))
	assert.True(t, IsImplicitlyConvertible(Int, Real))
	assert.False(t, IsImplicitlyConvertible(Real, Int))
}

func TestInternerAliasChain(t *testing.T) {
	i := NewTypeInterner()
	a := i.Intern(Type{Tag: TagAlias, AliasOf: Int})
	b := i.Intern(Type{Tag: TagAlias, AliasOf: a})
	assert.Equal(t, Int, i.ResolveAlias(b))
}

func TestBuiltinLookup(t *testing.T) {
	id, ok := LookupBuiltin("INT")
	assert.True(t, ok)
	assert.Equal(t, Int, id)

	name, ok := BuiltinName(Bool)
	assert.True(t, ok)
	assert.Equal(t, "BOOL", name)
}
