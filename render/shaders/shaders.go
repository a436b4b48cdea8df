// Package shaders embeds the WGSL sources. Each file holds both stages:
// vs_main and fs_main.
package shaders

import (
	_ "embed"
)

//go:embed mesh.wgsl
var MeshWGSL string

//go:embed particle.wgsl
var ParticleWGSL string

const (
	VertexEntry   = "vs_main"
	FragmentEntry = "fs_main"
)
