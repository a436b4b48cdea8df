package core

import "github.com/go-gl/mathgl/mgl32"

// MaxLights is the number of directional lights the mesh shader reads.
const MaxLights = 2

type DirectionalLight struct {
	Ambient   mgl32.Vec4 `toml:"ambient"`
	Diffuse   mgl32.Vec4 `toml:"diffuse"`
	Direction mgl32.Vec3 `toml:"direction"`
}

// gpuLight matches DirectionalLight in mesh.wgsl (48 bytes, vec3 padded).
type gpuLight struct {
	Ambient   mgl32.Vec4
	Diffuse   mgl32.Vec4
	Direction mgl32.Vec3
	_         float32
}

func (l DirectionalLight) gpu() gpuLight {
	dir := l.Direction
	if dir.Len() > 0 {
		dir = dir.Normalize()
	}
	return gpuLight{Ambient: l.Ambient, Diffuse: l.Diffuse, Direction: dir}
}
