package chem

import (
	"sort"

	"godock/dockerr"
)

// AssignBondOrders reconstructs bond orders, aromatic flags and formal
// charges on a bond-order-naive molecule (typically a docked pose read
// back from PDB) by matching it atom-for-atom against a reference
// template with the same heavy-atom composition and connectivity.
// The subject's geometry is kept; everything electronic comes from the
// reference. Fails when no consistent atom mapping exists.
func AssignBondOrders(subject, ref *Molecule) (*Molecule, error) {
	if subject.NumAtoms() != ref.NumAtoms() {
		return nil, dockerr.Integrity(
			"could not assign bond orders: atom count mismatch (%d vs %d)",
			subject.NumAtoms(), ref.NumAtoms())
	}
	mapping := matchGraphs(subject, ref)
	if mapping == nil {
		return nil, dockerr.Integrity("could not assign bond orders: no consistent atom mapping")
	}

	out := NewMolecule()
	for i, a := range subject.Atoms {
		r := ref.Atoms[mapping[i]]
		na := NewAtom(a.Symbol)
		na.Charge = r.Charge
		na.Isotope = r.Isotope
		na.Aromatic = r.Aromatic
		out.AddAtom(na)
	}
	if subject.HasConformer() {
		out.Coords = append([]Point3(nil), subject.Coords...)
	}
	for _, b := range subject.Bonds {
		rb := ref.BondBetween(mapping[b.From], mapping[b.To])
		if rb == nil {
			return nil, dockerr.Integrity("could not assign bond orders: bond %d-%d not in template",
				b.From, b.To)
		}
		out.AddBond(b.From, b.To, rb.Order, rb.Aromatic)
	}
	if len(subject.Bonds) != len(ref.Bonds) {
		return nil, dockerr.Integrity("could not assign bond orders: bond count mismatch (%d vs %d)",
			len(subject.Bonds), len(ref.Bonds))
	}
	return out, nil
}

// matchGraphs searches for a bijection subject->ref preserving element
// and adjacency. Candidate atoms are tried rarest-element-first to
// keep the backtracking shallow.
func matchGraphs(subject, ref *Molecule) []int {
	n := subject.NumAtoms()

	// Element compositions must agree up front.
	count := func(m *Molecule) map[string]int {
		c := map[string]int{}
		for _, a := range m.Atoms {
			c[a.Symbol]++
		}
		return c
	}
	sc, rc := count(subject), count(ref)
	if len(sc) != len(rc) {
		return nil
	}
	for k, v := range sc {
		if rc[k] != v {
			return nil
		}
	}

	// Order subject atoms so that constrained ones are placed first.
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(x, y int) bool {
		ax, ay := order[x], order[y]
		if sc[subject.Atoms[ax].Symbol] != sc[subject.Atoms[ay].Symbol] {
			return sc[subject.Atoms[ax].Symbol] < sc[subject.Atoms[ay].Symbol]
		}
		if len(subject.adj[ax]) != len(subject.adj[ay]) {
			return len(subject.adj[ax]) > len(subject.adj[ay])
		}
		return ax < ay
	})

	mapping := make([]int, n)
	used := make([]bool, n)
	for i := range mapping {
		mapping[i] = -1
	}

	var place func(k int) bool
	place = func(k int) bool {
		if k == n {
			return true
		}
		s := order[k]
		for r := 0; r < n; r++ {
			if used[r] || ref.Atoms[r].Symbol != subject.Atoms[s].Symbol {
				continue
			}
			if len(ref.adj[r]) != len(subject.adj[s]) {
				continue
			}
			ok := true
			for _, nb := range subject.Neighbors(s) {
				if mapping[nb] >= 0 && ref.BondBetween(r, mapping[nb]) == nil {
					ok = false
					break
				}
			}
			if !ok {
				continue
			}
			mapping[s] = r
			used[r] = true
			if place(k + 1) {
				return true
			}
			mapping[s] = -1
			used[r] = false
		}
		return false
	}
	if !place(0) {
		return nil
	}
	return mapping
}
