package mesh

import "github.com/voxelsplace/voxmesh/vox"

// Face is a single visible unit face of a voxel.
type Face struct {
	X, Y, Z int
	Dir     Direction
	Color   uint8
}

// Visible reports whether the voxel at (x, y, z) is solid and its neighbor
// along dir is empty or outside the volume.
func Visible(vol *vox.Volume, x, y, z int, dir Direction) bool {
	if !vol.Solid(x, y, z) {
		return false
	}
	n := dir.Normal()
	return !vol.Solid(x+n[0], y+n[1], z+n[2])
}

// VisibleFaces returns every visible unit face, grouped by direction in
// emission order and by voxel order within a direction.
func VisibleFaces(vol *vox.Volume) []Face {
	var faces []Face
	for _, dir := range Directions {
		vol.Each(func(x, y, z int, c uint8) {
			if Visible(vol, x, y, z, dir) {
				faces = append(faces, Face{X: x, Y: y, Z: z, Dir: dir, Color: c})
			}
		})
	}
	return faces
}
