package resolver

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/aretw0/statescript/pkg/ports"
	"github.com/aretw0/statescript/pkg/variant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type fakeEntity struct {
	tags  map[string]bool
	attrs map[string]float64
}

func (e *fakeEntity) HasTag(tag string) bool { return e.tags[tag] }

func (e *fakeEntity) Attribute(set, name string) (float64, bool) {
	v, ok := e.attrs[set+"."+name]
	return v, ok
}

type fakeContext struct {
	entity ports.Entity
	vars   map[string]variant.Variant
}

func (c *fakeContext) Entity() ports.Entity { return c.entity }

func (c *fakeContext) Variable(name string) (variant.Variant, bool) {
	v, ok := c.vars[name]
	return v, ok
}

func newContext(health float64) (*fakeContext, *fakeEntity) {
	ent := &fakeEntity{
		tags:  map[string]bool{"Stunned": true},
		attrs: map[string]float64{"Vitals.Health": health},
	}
	return &fakeContext{entity: ent, vars: map[string]variant.Variant{}}, ent
}

func TestEvaluate_HealthBelowThreshold(t *testing.T) {
	cond := Compare(Attr("Vitals", "Health"), LessThan, NewConstant(variant.Int32(50)))

	ctx, ent := newContext(30)
	got, err := Bool(cond, ctx)
	require.NoError(t, err)
	assert.True(t, got)

	// No caching: a changed attribute is observed by the next evaluation.
	ent.attrs["Vitals.Health"] = 80
	got, err = Bool(cond, ctx)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestEvaluate_UnboundYieldsDefault(t *testing.T) {
	ctx, _ := newContext(0)

	tests := []struct {
		name string
		r    Resolver
		kind variant.Kind
	}{
		{"cleared variable name", Var(""), variant.KindFloat32},
		{"missing variable", Var("deleted"), variant.KindInt16},
		{"nil binding", nil, variant.KindVector3},
		{"missing attribute", Attr("Vitals", "Mana"), variant.KindFloat64},
		{"invalid constant", &Constant{}, variant.KindBool},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Evaluate(tt.r, ctx, tt.kind)
			require.NoError(t, err)
			assert.True(t, variant.Default(tt.kind).Equal(v), "got %s", v)
		})
	}
}

func TestEvaluate_Conversion(t *testing.T) {
	ctx, _ := newContext(42.9)
	ctx.vars["speed"] = variant.Float32(2.5)

	v, err := Evaluate(Attr("Vitals", "Health"), ctx, variant.KindInt32)
	require.NoError(t, err)
	assert.Equal(t, int32(42), v.Native())

	v, err = Evaluate(Var("speed"), ctx, variant.Invalid)
	require.NoError(t, err)
	assert.Equal(t, variant.KindFloat32, v.Kind())

	// Scalar into a vector cannot convert and falls back to the default.
	v, err = Evaluate(Var("speed"), ctx, variant.KindVector2)
	require.NoError(t, err)
	assert.Equal(t, variant.Vector2{}, v.Native())

	v, err = Evaluate(Tag("Stunned"), ctx, variant.Invalid)
	require.NoError(t, err)
	assert.Equal(t, true, v.Native())

	v, err = Evaluate(Tag("Flying"), &fakeContext{}, variant.KindBool)
	require.NoError(t, err)
	assert.Equal(t, false, v.Native())
}

func TestEvaluate_Comparison(t *testing.T) {
	one := NewConstant(variant.Int32(1))
	two := NewConstant(variant.Float64(2))
	vec := NewConstant(variant.FromVector3(variant.Vector3{X: 1, Y: 2, Z: 3}))

	tests := []struct {
		name string
		r    Resolver
		want bool
	}{
		{"mixed widths", Compare(one, LessThan, two), true},
		{"equal across kinds", Compare(NewConstant(variant.UInt8(5)), Equal, NewConstant(variant.Int64(5))), true},
		{"greater or equal", Compare(two, GreaterThanOrEqual, two), true},
		{"not equal", Compare(one, NotEqual, two), true},
		{"unresolved side is zero", Compare(Var("missing"), Equal, NewConstant(variant.Int32(0))), true},
		{"nested comparison", Compare(Compare(one, LessThan, two), Equal, NewConstant(variant.Bool(true))), true},
		{"vectors equal", Compare(vec, Equal, NewConstant(variant.FromVector3(variant.Vector3{X: 1, Y: 2, Z: 3}))), true},
		{"vectors have no order", Compare(vec, LessThan, vec), false},
		{"vector against scalar", Compare(vec, NotEqual, one), true},
		{"vector never equals scalar", Compare(vec, Equal, one), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Bool(tt.r, &fakeContext{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCycles(t *testing.T) {
	loop := &Comparison{Op: Equal, Right: NewConstant(variant.Int32(1))}
	loop.Left = loop

	_, err := Evaluate(loop, &fakeContext{}, variant.KindBool)
	assert.ErrorIs(t, err, ErrCycle)

	assert.ErrorIs(t, Validate(loop), ErrCycle)

	_, err = ToSpec(loop)
	assert.ErrorIs(t, err, ErrCycle)

	// Sharing a subtree is not a cycle.
	shared := Compare(Var("a"), Equal, Var("b"))
	assert.NoError(t, Validate(Compare(shared, Equal, shared)))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(nil))
	assert.NoError(t, Validate(Compare(Attr("Vitals", "Health"), LessThan, NewConstant(variant.Int32(50)))))
	assert.ErrorIs(t, Validate(Compare(Var("a"), Operator(42), Var("b"))), ErrUnknownOperator)
	assert.ErrorIs(t, Validate(&Constant{}), variant.ErrUnknownKind)
}

func TestVariables(t *testing.T) {
	r := Compare(Compare(Var("a"), Equal, Var("b")), NotEqual, Var("a"))
	assert.Equal(t, []string{"a", "b"}, Variables(r))
}

func TestIsCompatible(t *testing.T) {
	vars := KindMap{"hp": variant.KindFloat32}
	all := []Resolver{
		nil,
		NewConstant(variant.Int8(1)),
		Var("hp"),
		Var(""),
		Attr("Vitals", "Health"),
		Tag("Stunned"),
		Compare(Var("hp"), LessThan, NewConstant(variant.Float32(1))),
	}
	for _, r := range all {
		assert.True(t, IsCompatible(r, variant.VariantType, vars), "wildcard must accept %s", Describe(r))
	}

	boolType := reflect.TypeOf(false)
	floatType := reflect.TypeOf(float32(0))

	assert.True(t, IsCompatible(NewConstant(variant.Bool(true)), floatType, vars))
	assert.True(t, IsCompatible(Var("hp"), floatType, vars))
	assert.False(t, IsCompatible(Var("hp"), reflect.TypeOf(int32(0)), vars))
	assert.False(t, IsCompatible(Var("gone"), floatType, vars))
	assert.True(t, IsCompatible(Attr("Vitals", "Health"), floatType, vars))
	assert.False(t, IsCompatible(Attr("Vitals", "Health"), boolType, vars))
	assert.True(t, IsCompatible(Tag("Stunned"), boolType, vars))
	assert.False(t, IsCompatible(Tag("Stunned"), floatType, vars))
	assert.True(t, IsCompatible(Compare(nil, Equal, nil), boolType, vars))
	assert.False(t, IsCompatible(nil, boolType, vars))
}

func TestCompatible(t *testing.T) {
	assert.Equal(t, []Type{TypeConstant, TypeVariable, TypeAttribute}, Compatible(variant.VariantType, true))
	assert.Equal(t, []Type{TypeConstant, TypeVariable, TypeTag, TypeComparison}, Compatible(reflect.TypeOf(false), false))
	assert.Equal(t, []Type{TypeConstant, TypeVariable, TypeAttribute}, Compatible(reflect.TypeOf(float64(0)), false))
}

func TestParseOperator(t *testing.T) {
	for _, in := range []string{"<=", "le", "LessThanOrEqual", " ≤ "} {
		op, err := ParseOperator(in)
		require.NoError(t, err, in)
		assert.Equal(t, LessThanOrEqual, op)
	}
	_, err := ParseOperator("<>")
	assert.ErrorIs(t, err, ErrUnknownOperator)
}

func TestSpec_JSON(t *testing.T) {
	original := Compare(Attr("Vitals", "Health"), LessThan, NewConstant(variant.UInt64(1<<63+1)))

	spec, err := ToSpec(original)
	require.NoError(t, err)
	data, err := json.Marshal(spec)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "comparison",
		"op": "<",
		"left": {"type": "attribute", "set": "Vitals", "attribute": "Health"},
		"right": {"type": "constant", "kind": "uint64", "value": 9223372036854775809}
	}`, string(data))

	var decoded Spec
	require.NoError(t, json.Unmarshal(data, &decoded))
	back, err := decoded.Resolver()
	require.NoError(t, err)
	assert.Equal(t, original, back)
}

func TestSpec_YAML(t *testing.T) {
	doc := `
type: comparison
op: eq
left:
  type: constant
  kind: vector3
  value: {x: 1, y: 2, z: 3}
right:
  type: variable
  name: target
`
	var spec Spec
	require.NoError(t, yaml.Unmarshal([]byte(doc), &spec))
	r, err := spec.Resolver()
	require.NoError(t, err)

	cmp, ok := r.(*Comparison)
	require.True(t, ok)
	assert.Equal(t, Equal, cmp.Op)
	assert.Equal(t, Var("target"), cmp.Right)
	assert.Equal(t, variant.Vector3{X: 1, Y: 2, Z: 3}, cmp.Left.(*Constant).Value.Native())

	out, err := ToSpec(NewConstant(variant.Char('x')))
	require.NoError(t, err)
	data, err := yaml.Marshal(out)
	require.NoError(t, err)
	var again Spec
	require.NoError(t, yaml.Unmarshal(data, &again))
	r, err = again.Resolver()
	require.NoError(t, err)
	assert.Equal(t, 'x', r.(*Constant).Value.Native())
}

func TestSpec_Errors(t *testing.T) {
	_, err := (&Spec{Type: "lambda"}).Resolver()
	assert.ErrorIs(t, err, ErrUnknownResolver)

	_, err = (&Spec{Type: TypeComparison, Op: "~"}).Resolver()
	assert.ErrorIs(t, err, ErrUnknownOperator)

	_, err = (&Spec{Type: TypeConstant, Kind: "matrix", Value: 1}).Resolver()
	assert.ErrorIs(t, err, variant.ErrUnknownKind)

	r, err := (*Spec)(nil).Resolver()
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestDescribe(t *testing.T) {
	r := Compare(Attr("Vitals", "Health"), LessThan, NewConstant(variant.Int32(50)))
	assert.Equal(t, "(Vitals.Health < 50)", Describe(r))
	assert.Equal(t, "$<unbound>", Describe(Var("")))
	assert.Equal(t, "#Stunned", Describe(Tag("Stunned")))
}
