// Package core holds the small scene primitives the demo draws: transforms,
// entities, meshes, materials, lights and the fly camera.
package core

import "github.com/go-gl/mathgl/mgl32"

// Transform places an object in world space. Rotation holds Euler angles in
// radians, XYZ order.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Vec3
	Scale    mgl32.Vec3
}

func IdentityTransform() Transform {
	return Transform{Scale: mgl32.Vec3{1, 1, 1}}
}

// World returns T * R * S.
func (t Transform) World() mgl32.Mat4 {
	tr := mgl32.Translate3D(t.Position[0], t.Position[1], t.Position[2])
	rot := mgl32.AnglesToQuat(t.Rotation[0], t.Rotation[1], t.Rotation[2], mgl32.XYZ).Mat4()
	sc := mgl32.Scale3D(t.Scale[0], t.Scale[1], t.Scale[2])
	return tr.Mul4(rot).Mul4(sc)
}
