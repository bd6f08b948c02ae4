package variant

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Size is the number of payload bytes carried by every Variant.
const Size = 16

// Variant is a compact tagged value: a Kind plus a fixed 16 byte payload.
// The zero Variant has kind Invalid.
//
// Composite kinds store their float32 components little-endian at offsets
// 0, 4, 8 and 12. Scalars live at offset 0.
type Variant struct {
	kind Kind
	data [Size]byte
}

// Bool wraps b.
func Bool(b bool) Variant {
	v := Variant{kind: KindBool}
	if b {
		v.data[0] = 1
	}
	return v
}

// Char wraps r.
func Char(r rune) Variant { return fromUint32(KindChar, uint32(r)) }

func Int8(i int8) Variant     { return fromUint64(KindInt8, uint64(uint8(i))) }
func UInt8(u uint8) Variant   { return fromUint64(KindUInt8, uint64(u)) }
func Int16(i int16) Variant   { return fromUint64(KindInt16, uint64(uint16(i))) }
func UInt16(u uint16) Variant { return fromUint64(KindUInt16, uint64(u)) }
func Int32(i int32) Variant   { return fromUint64(KindInt32, uint64(uint32(i))) }
func UInt32(u uint32) Variant { return fromUint64(KindUInt32, uint64(u)) }
func Int64(i int64) Variant   { return fromUint64(KindInt64, uint64(i)) }
func UInt64(u uint64) Variant { return fromUint64(KindUInt64, u) }

func Float32(f float32) Variant { return fromUint32(KindFloat32, math.Float32bits(f)) }
func Float64(f float64) Variant { return fromUint64(KindFloat64, math.Float64bits(f)) }

func FromVector2(c Vector2) Variant       { return composite(KindVector2, c) }
func FromVector3(c Vector3) Variant       { return composite(KindVector3, c) }
func FromVector4(c Vector4) Variant       { return composite(KindVector4, c) }
func FromPlane(c Plane) Variant           { return composite(KindPlane, c) }
func FromQuaternion(c Quaternion) Variant { return composite(KindQuaternion, c) }

func fromUint32(k Kind, u uint32) Variant {
	v := Variant{kind: k}
	binary.LittleEndian.PutUint32(v.data[:4], u)
	return v
}

func fromUint64(k Kind, u uint64) Variant {
	v := Variant{kind: k}
	binary.LittleEndian.PutUint64(v.data[:8], u)
	return v
}

func composite(k Kind, c any) Variant {
	v := Variant{kind: k}
	comps, n := components(c)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint32(v.data[i*4:], math.Float32bits(comps[i]))
	}
	return v
}

// Default returns the zero value of kind k. Quaternions default to the
// all-zero quaternion, matching a zeroed payload.
func Default(k Kind) Variant {
	if !k.Valid() {
		return Variant{}
	}
	return Variant{kind: k}
}

// Kind returns the tag of v.
func (v Variant) Kind() Kind { return v.kind }

// IsValid reports whether v carries a supported kind.
func (v Variant) IsValid() bool { return v.kind.Valid() }

// Bytes returns a copy of the raw payload.
func (v Variant) Bytes() [Size]byte { return v.data }

// Equal reports whether a and b have the same kind and payload.
func (v Variant) Equal(o Variant) bool {
	return v.kind == o.kind && v.data == o.data
}

func (v Variant) u32(off int) uint32 { return binary.LittleEndian.Uint32(v.data[off:]) }
func (v Variant) u64() uint64        { return binary.LittleEndian.Uint64(v.data[:8]) }
func (v Variant) f32(off int) float32 {
	return math.Float32frombits(v.u32(off))
}

func (v Variant) comps() [4]float32 {
	return [4]float32{v.f32(0), v.f32(4), v.f32(8), v.f32(12)}
}

// Native returns the payload as its Go native type (see NativeType).
// An invalid Variant yields nil.
func (v Variant) Native() any {
	switch v.kind {
	case KindBool:
		return v.data[0] != 0
	case KindChar:
		return rune(v.u32(0))
	case KindInt8:
		return int8(v.data[0])
	case KindUInt8:
		return v.data[0]
	case KindInt16:
		return int16(binary.LittleEndian.Uint16(v.data[:2]))
	case KindUInt16:
		return binary.LittleEndian.Uint16(v.data[:2])
	case KindInt32:
		return int32(v.u32(0))
	case KindUInt32:
		return v.u32(0)
	case KindInt64:
		return int64(v.u64())
	case KindUInt64:
		return v.u64()
	case KindFloat32:
		return v.f32(0)
	case KindFloat64:
		return math.Float64frombits(v.u64())
	case KindVector2, KindVector3, KindVector4, KindPlane, KindQuaternion:
		return fromComponents(v.kind, v.comps())
	}
	return nil
}

func (v Variant) String() string {
	if !v.IsValid() {
		return "<invalid>"
	}
	if v.kind == KindChar {
		return fmt.Sprintf("%s(%q)", v.kind, rune(v.u32(0)))
	}
	return fmt.Sprintf("%s(%v)", v.kind, v.Native())
}

// AsBool reports the truthiness of v: non-zero numbers and true are true.
func (v Variant) AsBool() bool {
	switch {
	case v.kind == KindBool:
		return v.data[0] != 0
	case v.kind == KindChar || v.kind.IsNumeric():
		f, _ := v.AsFloat64()
		return f != 0
	}
	return false
}

// AsInt64 converts a scalar v to int64. Floats truncate toward zero.
func (v Variant) AsInt64() (int64, bool) {
	switch {
	case v.kind == KindBool:
		if v.data[0] != 0 {
			return 1, true
		}
		return 0, true
	case v.kind == KindChar:
		return int64(v.u32(0)), true
	case v.kind.IsUnsigned():
		u, _ := v.AsUint64()
		return int64(u), true
	case v.kind.IsInteger():
		switch v.kind {
		case KindInt8:
			return int64(int8(v.data[0])), true
		case KindInt16:
			return int64(int16(binary.LittleEndian.Uint16(v.data[:2]))), true
		case KindInt32:
			return int64(int32(v.u32(0))), true
		}
		return int64(v.u64()), true
	case v.kind.IsFloat():
		f, _ := v.AsFloat64()
		return int64(f), true
	}
	return 0, false
}

// AsUint64 converts a scalar v to uint64.
func (v Variant) AsUint64() (uint64, bool) {
	switch v.kind {
	case KindUInt8:
		return uint64(v.data[0]), true
	case KindUInt16:
		return uint64(binary.LittleEndian.Uint16(v.data[:2])), true
	case KindUInt32:
		return uint64(v.u32(0)), true
	case KindUInt64:
		return v.u64(), true
	}
	i, ok := v.AsInt64()
	return uint64(i), ok
}

// AsFloat64 converts a scalar v to float64.
func (v Variant) AsFloat64() (float64, bool) {
	switch {
	case v.kind == KindFloat32:
		return float64(v.f32(0)), true
	case v.kind == KindFloat64:
		return math.Float64frombits(v.u64()), true
	case v.kind.IsUnsigned():
		u, _ := v.AsUint64()
		return float64(u), true
	case v.kind == KindBool || v.kind == KindChar || v.kind.IsInteger():
		i, _ := v.AsInt64()
		return float64(i), true
	}
	return 0, false
}

// AsVector2 returns the first two components of a composite v.
func (v Variant) AsVector2() (Vector2, bool) {
	if !v.kind.IsComposite() {
		return Vector2{}, false
	}
	c := v.comps()
	return Vector2{c[0], c[1]}, true
}

// AsVector3 returns the first three components of a composite v.
func (v Variant) AsVector3() (Vector3, bool) {
	if !v.kind.IsComposite() {
		return Vector3{}, false
	}
	c := v.comps()
	return Vector3{c[0], c[1], c[2]}, true
}

// AsVector4 returns the four components of a composite v.
func (v Variant) AsVector4() (Vector4, bool) {
	if !v.kind.IsComposite() {
		return Vector4{}, false
	}
	c := v.comps()
	return Vector4{c[0], c[1], c[2], c[3]}, true
}

// AsPlane reinterprets a composite v as a plane.
func (v Variant) AsPlane() (Plane, bool) {
	if !v.kind.IsComposite() {
		return Plane{}, false
	}
	c := v.comps()
	return Plane{Normal: Vector3{c[0], c[1], c[2]}, D: c[3]}, true
}

// AsQuaternion reinterprets a composite v as a quaternion.
func (v Variant) AsQuaternion() (Quaternion, bool) {
	if !v.kind.IsComposite() {
		return Quaternion{}, false
	}
	c := v.comps()
	return Quaternion{c[0], c[1], c[2], c[3]}, true
}
