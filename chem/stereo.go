package chem

import "sort"

// AssignStereochemistryFrom3D derives tetrahedral parities from the
// conformer geometry and then cleans them: parity is only kept on
// centers whose substituents are all distinguishable under canonical
// ranking. Mutates the molecule in place; a molecule without a
// conformer is left untouched.
func AssignStereochemistryFrom3D(m *Molecule) {
	if !m.HasConformer() {
		clearStereo(m)
		return
	}
	ranks := CanonicalRanks(m)
	for i, a := range m.Atoms {
		a.Parity = ParityNone
		a.StereoRef = nil
		if a.IsHydrogen() {
			continue
		}
		nbrs := m.Neighbors(i)
		h := m.ImplicitHCount(i)
		if len(nbrs)+h != 4 || h > 1 {
			continue
		}
		if !substituentsDistinct(m, ranks, i, nbrs, h) {
			continue
		}

		// Reference order: neighbors ascending by index, implicit
		// hydrogen last.
		ref := append([]int(nil), nbrs...)
		sort.Ints(ref)
		pts := make([]Point3, 0, 4)
		for _, j := range ref {
			pts = append(pts, m.Coords[j])
		}
		if h == 1 {
			ref = append(ref, -1)
			pts = append(pts, pseudoHydrogen(m, i, nbrs))
		}

		a.StereoRef = ref
		a.Parity = parityFromPoints(pts)
	}
}

func clearStereo(m *Molecule) {
	for _, a := range m.Atoms {
		a.Parity = ParityNone
		a.StereoRef = nil
	}
}

// substituentsDistinct reports whether the four substituents (implicit
// hydrogen counting as one) occupy four different canonical classes.
func substituentsDistinct(m *Molecule, ranks []int, i int, nbrs []int, h int) bool {
	seen := map[int]bool{}
	for _, j := range nbrs {
		r := ranks[j]
		if seen[r] {
			return false
		}
		seen[r] = true
	}
	if h == 1 {
		// The implicit hydrogen is distinct from any heavy neighbor;
		// an explicit hydrogen neighbor would collide with it.
		for _, j := range nbrs {
			if m.Atoms[j].IsHydrogen() {
				return false
			}
		}
	}
	return true
}

// pseudoHydrogen places the missing hydrogen opposite the mean of the
// three heavy-neighbor directions.
func pseudoHydrogen(m *Molecule, center int, nbrs []int) Point3 {
	c := m.Coords[center]
	var sum Point3
	for _, j := range nbrs {
		d := m.Coords[j].sub(c)
		n := d.dist(Point3{})
		if n == 0 {
			continue
		}
		sum = Point3{sum.X + d.X/n, sum.Y + d.Y/n, sum.Z + d.Z/n}
	}
	return Point3{c.X - sum.X, c.Y - sum.Y, c.Z - sum.Z}
}

// parityFromPoints maps the signed volume of the four reference
// positions to SMILES parity: looking from the first point, the
// remaining three appear counterclockwise exactly when the triple
// product (p2-p1)x(p3-p1).(p4-p1) is negative.
func parityFromPoints(p []Point3) Parity {
	v := dot(cross(p[1].sub(p[0]), p[2].sub(p[0])), p[3].sub(p[0]))
	if v < 0 {
		return ParityCCW
	}
	if v > 0 {
		return ParityCW
	}
	return ParityNone
}
