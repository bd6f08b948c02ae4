package variant

// Vector2 is a two component float vector.
type Vector2 struct {
	X float32 `json:"x" yaml:"x" mapstructure:"x"`
	Y float32 `json:"y" yaml:"y" mapstructure:"y"`
}

// Vector3 is a three component float vector.
type Vector3 struct {
	X float32 `json:"x" yaml:"x" mapstructure:"x"`
	Y float32 `json:"y" yaml:"y" mapstructure:"y"`
	Z float32 `json:"z" yaml:"z" mapstructure:"z"`
}

// Vector4 is a four component float vector.
type Vector4 struct {
	X float32 `json:"x" yaml:"x" mapstructure:"x"`
	Y float32 `json:"y" yaml:"y" mapstructure:"y"`
	Z float32 `json:"z" yaml:"z" mapstructure:"z"`
	W float32 `json:"w" yaml:"w" mapstructure:"w"`
}

// Plane is a normal plus the distance from the origin along it.
type Plane struct {
	Normal Vector3 `json:"normal" yaml:"normal" mapstructure:"normal"`
	D      float32 `json:"d" yaml:"d" mapstructure:"d"`
}

// Quaternion is a rotation in x, y, z, w order.
type Quaternion struct {
	X float32 `json:"x" yaml:"x" mapstructure:"x"`
	Y float32 `json:"y" yaml:"y" mapstructure:"y"`
	Z float32 `json:"z" yaml:"z" mapstructure:"z"`
	W float32 `json:"w" yaml:"w" mapstructure:"w"`
}

// IdentityQuaternion is the no-rotation quaternion.
var IdentityQuaternion = Quaternion{W: 1}

// components flattens a composite value into up to four floats.
// Planes flatten as normal x, y, z then d.
func components(v any) ([4]float32, int) {
	switch c := v.(type) {
	case Vector2:
		return [4]float32{c.X, c.Y}, 2
	case Vector3:
		return [4]float32{c.X, c.Y, c.Z}, 3
	case Vector4:
		return [4]float32{c.X, c.Y, c.Z, c.W}, 4
	case Plane:
		return [4]float32{c.Normal.X, c.Normal.Y, c.Normal.Z, c.D}, 4
	case Quaternion:
		return [4]float32{c.X, c.Y, c.Z, c.W}, 4
	}
	return [4]float32{}, 0
}

// fromComponents rebuilds a composite of kind k. Missing components are zero.
func fromComponents(k Kind, c [4]float32) any {
	switch k {
	case KindVector2:
		return Vector2{c[0], c[1]}
	case KindVector3:
		return Vector3{c[0], c[1], c[2]}
	case KindVector4:
		return Vector4{c[0], c[1], c[2], c[3]}
	case KindPlane:
		return Plane{Normal: Vector3{c[0], c[1], c[2]}, D: c[3]}
	case KindQuaternion:
		return Quaternion{c[0], c[1], c[2], c[3]}
	}
	return nil
}
