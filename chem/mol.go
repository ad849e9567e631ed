// Package chem implements the in-process molecule model used by the
// docking pipeline: SMILES parsing and canonical serialization, MDL MOL
// and PDB file handling, and the structural checks and transformations
// the preparation steps rely on. Geometry generation and force-field
// work stay with the external tools.
package chem

import (
	"math"

	"godock/dockerr"
)

// Point3 is one atom position of a conformer.
type Point3 struct {
	X, Y, Z float64
}

func (p Point3) sub(q Point3) Point3 { return Point3{p.X - q.X, p.Y - q.Y, p.Z - q.Z} }

func (p Point3) dist(q Point3) float64 {
	d := p.sub(q)
	return math.Sqrt(d.X*d.X + d.Y*d.Y + d.Z*d.Z)
}

func cross(a, b Point3) Point3 {
	return Point3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

func dot(a, b Point3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

// Bond is an edge in the molecular graph. Order is 1..3; aromatic
// bonds carry Order 1 with the Aromatic flag set.
type Bond struct {
	From, To int
	Order    int
	Aromatic bool
}

func (b *Bond) other(i int) int {
	if b.From == i {
		return b.To
	}
	return b.From
}

// Molecule owns atoms, bonds and at most one conformer.
type Molecule struct {
	Atoms  []*Atom
	Bonds  []*Bond
	Coords []Point3 // len == len(Atoms) when a conformer is present

	adj [][]int // atom index -> bond indices
}

// NewMolecule returns an empty molecule.
func NewMolecule() *Molecule { return &Molecule{} }

// NumAtoms returns the number of graph atoms, explicit hydrogens included.
func (m *Molecule) NumAtoms() int { return len(m.Atoms) }

// NumHeavyAtoms returns the number of non-hydrogen atoms.
func (m *Molecule) NumHeavyAtoms() int {
	n := 0
	for _, a := range m.Atoms {
		if !a.IsHydrogen() {
			n++
		}
	}
	return n
}

// HasConformer reports whether a 3D coordinate set is attached.
func (m *Molecule) HasConformer() bool { return len(m.Coords) == len(m.Atoms) && len(m.Coords) > 0 }

// AddAtom appends an atom and returns its index.
func (m *Molecule) AddAtom(a *Atom) int {
	m.Atoms = append(m.Atoms, a)
	m.adj = append(m.adj, nil)
	return len(m.Atoms) - 1
}

// AddBond appends a bond between existing atoms.
func (m *Molecule) AddBond(from, to, order int, aromatic bool) *Bond {
	b := &Bond{From: from, To: to, Order: order, Aromatic: aromatic}
	m.Bonds = append(m.Bonds, b)
	bi := len(m.Bonds) - 1
	m.adj[from] = append(m.adj[from], bi)
	m.adj[to] = append(m.adj[to], bi)
	return b
}

// Neighbors returns the atom indices bonded to atom i.
func (m *Molecule) Neighbors(i int) []int {
	out := make([]int, 0, len(m.adj[i]))
	for _, bi := range m.adj[i] {
		out = append(out, m.Bonds[bi].other(i))
	}
	return out
}

// BondBetween returns the bond connecting i and j, or nil.
func (m *Molecule) BondBetween(i, j int) *Bond {
	for _, bi := range m.adj[i] {
		if m.Bonds[bi].other(i) == j {
			return m.Bonds[bi]
		}
	}
	return nil
}

// Copy returns a deep copy.
func (m *Molecule) Copy() *Molecule {
	c := NewMolecule()
	for _, a := range m.Atoms {
		c.AddAtom(a.copyAtom())
	}
	for _, b := range m.Bonds {
		c.AddBond(b.From, b.To, b.Order, b.Aromatic)
	}
	if m.HasConformer() {
		c.Coords = append([]Point3(nil), m.Coords...)
	}
	return c
}

// bondOrderSum is the valence consumed by bonds at atom i. Aromatic
// membership consumes one extra unit for the delocalized system.
func (m *Molecule) bondOrderSum(i int) int {
	sum := 0
	aromatic := false
	for _, bi := range m.adj[i] {
		b := m.Bonds[bi]
		if b.Aromatic {
			sum++
			aromatic = true
		} else {
			sum += b.Order
		}
	}
	if aromatic {
		sum++
	}
	return sum
}

// ImplicitHCount returns the number of implicit hydrogens on atom i.
func (m *Molecule) ImplicitHCount(i int) int {
	a := m.Atoms[i]
	if a.NumExplicitHs >= 0 {
		return a.NumExplicitHs
	}
	v := defaultValence(a.Symbol, a.Charge)
	if v < 0 {
		return 0
	}
	h := v - m.bondOrderSum(i)
	if h < 0 {
		return 0
	}
	return h
}

// TotalHCount returns implicit plus graph hydrogens over the whole molecule.
func (m *Molecule) TotalHCount() int {
	n := 0
	for i, a := range m.Atoms {
		if a.IsHydrogen() {
			n++
			continue
		}
		n += m.ImplicitHCount(i)
	}
	return n
}

// fragments returns the connected components as atom index sets.
func (m *Molecule) fragments() [][]int {
	seen := make([]bool, len(m.Atoms))
	var frags [][]int
	for start := range m.Atoms {
		if seen[start] {
			continue
		}
		var frag []int
		queue := []int{start}
		seen[start] = true
		for len(queue) > 0 {
			i := queue[0]
			queue = queue[1:]
			frag = append(frag, i)
			for _, j := range m.Neighbors(i) {
				if !seen[j] {
					seen[j] = true
					queue = append(queue, j)
				}
			}
		}
		frags = append(frags, frag)
	}
	return frags
}

// NumFragments returns the number of connected components.
func (m *Molecule) NumFragments() int { return len(m.fragments()) }

// CheckMol enforces the two preparation invariants: no explicit
// hydrogen atoms remain in the graph, and the molecule is a single
// connected fragment.
func CheckMol(m *Molecule) error {
	for _, a := range m.Atoms {
		if a.IsHydrogen() {
			return dockerr.Parse("cannot process molecule: hydrogen atoms could not be removed")
		}
	}
	if n := m.NumFragments(); n != 1 {
		return dockerr.Parse("incorrect number of molecular fragments (%d)", n)
	}
	return nil
}

// AddHs returns a copy with every implicit hydrogen promoted to a
// graph atom. Any conformer is dropped; hydrogen coordinates are the
// embedding step's job.
func AddHs(m *Molecule) *Molecule {
	c := m.Copy()
	c.Coords = nil
	heavy := c.NumAtoms()
	for i := 0; i < heavy; i++ {
		n := c.ImplicitHCount(i)
		c.Atoms[i].NumExplicitHs = 0
		for k := 0; k < n; k++ {
			h := c.AddAtom(NewAtom("H"))
			c.Atoms[h].NumExplicitHs = 0
			c.AddBond(i, h, 1, false)
		}
	}
	return c
}

// RemoveHs returns a copy with plain hydrogen atoms (charge 0, no
// isotope label, single bond to one heavy atom) folded back into
// implicit counts. Conformer coordinates of the remaining atoms are
// kept. Tetrahedral parities survive: heavy stereo neighbors are
// remapped and a removed hydrogen keeps its slot as the implicit-H
// marker.
func RemoveHs(m *Molecule) *Molecule {
	drop := make([]bool, len(m.Atoms))
	for i, a := range m.Atoms {
		if !a.IsHydrogen() || a.Charge != 0 || a.Isotope != 0 {
			continue
		}
		nbrs := m.Neighbors(i)
		if len(nbrs) != 1 {
			continue
		}
		if m.Atoms[nbrs[0]].IsHydrogen() {
			continue
		}
		if b := m.BondBetween(i, nbrs[0]); b != nil && b.Order == 1 && !b.Aromatic {
			drop[i] = true
		}
	}

	remap := make([]int, len(m.Atoms))
	c := NewMolecule()
	for i, a := range m.Atoms {
		if drop[i] {
			remap[i] = -1
			continue
		}
		na := a.copyAtom()
		na.NumExplicitHs = -1
		remap[i] = c.AddAtom(na)
	}
	for i, a := range m.Atoms {
		if drop[i] || a.Parity == ParityNone {
			continue
		}
		na := c.Atoms[remap[i]]
		ref := make([]int, 0, len(a.StereoRef))
		hSlots := 0
		for _, j := range a.StereoRef {
			if j == -1 || drop[j] {
				hSlots++
				ref = append(ref, -1)
				continue
			}
			ref = append(ref, remap[j])
		}
		if len(ref) == 0 || hSlots > 1 {
			na.Parity = ParityNone
			na.StereoRef = nil
			continue
		}
		na.StereoRef = ref
	}
	for _, b := range m.Bonds {
		f, t := remap[b.From], remap[b.To]
		if f < 0 || t < 0 {
			continue
		}
		c.AddBond(f, t, b.Order, b.Aromatic)
	}
	if m.HasConformer() {
		for i := range m.Atoms {
			if remap[i] >= 0 {
				c.Coords = append(c.Coords, m.Coords[i])
			}
		}
	}
	return c
}
