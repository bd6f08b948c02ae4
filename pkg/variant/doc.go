/*
Package variant implements the compact tagged value shared by resolvers,
graph variables and node properties.

A Variant is a Kind plus a fixed 16 byte payload, large enough for a
quaternion of four float32 components. The package maps every kind to its Go
native type and back, synthesizes defaults, converts between kinds and reads
loosely typed values decoded from JSON or YAML.

# Native types

	bool        KindBool
	rune        KindChar (shares int32 with KindInt32)
	int8..int64, uint8..uint64
	float32, float64
	Vector2, Vector3, Vector4, Plane, Quaternion

The Variant type itself is the wildcard: IsCompatible(VariantType, k) holds
for every kind k.
*/
package variant
