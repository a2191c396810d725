package mesh

// Direction is the outward facing of a voxel face.
type Direction uint8

const (
	XPos Direction = iota
	XNeg
	YPos
	YNeg
	ZPos
	ZNeg
)

// Directions lists all six directions in emission order.
var Directions = [6]Direction{XPos, XNeg, YPos, YNeg, ZPos, ZNeg}

// dirSpec describes how a direction's slices are laid out.
// axis is the direction's axis; u and v are the slice's column and row axes.
// a and b give the fixed corner order: v2 = v1 + a, v4 = v1 + b, with a x b
// pointing along the negative axis.
type dirSpec struct {
	name  string
	axis  int
	sign  int
	u, v  int
	a, b  int
	order [2][3]int
}

var (
	// Triangle orders over the quad's corners v1..v4 (indices 0..3).
	negativeOrder = [2][3]int{{0, 1, 2}, {0, 2, 3}}
	positiveOrder = [2][3]int{{2, 1, 0}, {3, 2, 0}}
)

var directions = [6]dirSpec{
	XPos: {"+X", 0, 1, 2, 1, 2, 1, positiveOrder},
	XNeg: {"-X", 0, -1, 2, 1, 2, 1, negativeOrder},
	YPos: {"+Y", 1, 1, 0, 2, 0, 2, positiveOrder},
	YNeg: {"-Y", 1, -1, 0, 2, 0, 2, negativeOrder},
	ZPos: {"+Z", 2, 1, 0, 1, 1, 0, positiveOrder},
	ZNeg: {"-Z", 2, -1, 0, 1, 1, 0, negativeOrder},
}

func (d Direction) String() string {
	if int(d) >= len(directions) {
		return "invalid"
	}
	return directions[d].name
}

// Axis returns 0, 1 or 2 for X, Y or Z.
func (d Direction) Axis() int { return directions[d].axis }

// Positive reports whether d points along increasing coordinates.
func (d Direction) Positive() bool { return directions[d].sign > 0 }

// Normal returns the unit outward normal.
func (d Direction) Normal() [3]int {
	var n [3]int
	n[directions[d].axis] = directions[d].sign
	return n
}

// Triangulation returns the two triangles of a quad facing d, as indices
// into the quad's four corners.
func (d Direction) Triangulation() [2][3]int { return directions[d].order }
