package core

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Entity is a drawable: one mesh, one material and a transform.
type Entity struct {
	ID        uuid.UUID
	Name      string
	Mesh      *Mesh
	Material  *Material
	Transform Transform

	world mgl32.Mat4
	dirty bool
}

func NewEntity(name string, mesh *Mesh, mat *Material) *Entity {
	return &Entity{
		ID:        uuid.New(),
		Name:      name,
		Mesh:      mesh,
		Material:  mat,
		Transform: IdentityTransform(),
		world:     mgl32.Ident4(),
		dirty:     true,
	}
}

// Touch marks the cached world matrix stale after Transform was edited.
func (e *Entity) Touch() { e.dirty = true }

// FinalizeMatrix recomputes the cached world matrix if the transform changed.
func (e *Entity) FinalizeMatrix() {
	if !e.dirty {
		return
	}
	e.world = e.Transform.World()
	e.dirty = false
}

// World returns the matrix computed by the last FinalizeMatrix.
func (e *Entity) World() mgl32.Mat4 { return e.world }
