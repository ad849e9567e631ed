package chem

import "godock/dockerr"

// checkAromaticRings verifies every aromatic bond system admits a
// kekulized form: the atoms that still need a double bond must pair up
// along aromatic bonds, and a simple aromatic ring must carry 4n+2 pi
// electrons. Systems that fail are not molecules this pipeline can
// process.
func checkAromaticRings(m *Molecule) error {
	for _, members := range aromaticSystems(m) {
		needs := make(map[int]bool, len(members))
		for _, i := range members {
			needs[i] = piDemand(m, i) > 0
		}
		if !pairPiAtoms(m, members, needs) {
			return dockerr.Parse(
				"could not parse SMILES string: cannot kekulize aromatic ring containing atom %d",
				members[0])
		}
		if isSimpleCycle(m, members) {
			n := 0
			for _, i := range members {
				n += piElectrons(m, i, needs[i])
			}
			if n%4 != 2 {
				return dockerr.Parse(
					"could not parse SMILES string: cannot kekulize aromatic ring containing atom %d (%d pi electrons)",
					members[0], n)
			}
		}
	}
	return nil
}

// aromaticSystems returns the connected components of the aromatic
// bond subgraph.
func aromaticSystems(m *Molecule) [][]int {
	comp := make([]int, m.NumAtoms())
	for i := range comp {
		comp[i] = -1
	}
	var systems [][]int
	for start := range m.Atoms {
		if comp[start] >= 0 || countAromaticBonds(m, start) == 0 {
			continue
		}
		id := len(systems)
		comp[start] = id
		var members []int
		queue := []int{start}
		for len(queue) > 0 {
			i := queue[0]
			queue = queue[1:]
			members = append(members, i)
			for _, bi := range m.adj[i] {
				b := m.Bonds[bi]
				if !b.Aromatic {
					continue
				}
				if j := b.other(i); comp[j] < 0 {
					comp[j] = id
					queue = append(queue, j)
				}
			}
		}
		systems = append(systems, members)
	}
	return systems
}

func countAromaticBonds(m *Molecule, i int) int {
	n := 0
	for _, bi := range m.adj[i] {
		if m.Bonds[bi].Aromatic {
			n++
		}
	}
	return n
}

// sigmaSum is the valence consumed at atom i with every aromatic bond
// counted as a plain single bond.
func sigmaSum(m *Molecule, i int) int {
	sum := 0
	for _, bi := range m.adj[i] {
		b := m.Bonds[bi]
		if b.Aromatic {
			sum++
		} else {
			sum += b.Order
		}
	}
	return sum
}

// piDemand is the free valence left for a ring double bond once sigma
// bonds and hydrogens are paid for. Benzene carbons and pyridine-type
// nitrogens demand one; pyrrole-type nitrogens, furan oxygens and
// carbons with an exocyclic double bond demand none.
func piDemand(m *Molecule, i int) int {
	a := m.Atoms[i]
	v := defaultValence(a.Symbol, a.Charge)
	if v < 0 {
		return 0
	}
	d := v - sigmaSum(m, i) - m.ImplicitHCount(i)
	if d < 0 {
		return 0
	}
	return d
}

// piElectrons is the atom's contribution to the ring electron count: 1
// when it holds one bond of a kekulized pair, 0 when its pi system
// points out of the ring or the atom is an electron-poor cation, 2 for
// a lone-pair donor.
func piElectrons(m *Molecule, i int, needy bool) int {
	if needy {
		return 1
	}
	for _, bi := range m.adj[i] {
		b := m.Bonds[bi]
		if !b.Aromatic && b.Order > 1 {
			return 0
		}
	}
	if m.Atoms[i].Charge > 0 {
		return 0
	}
	return 2
}

// isSimpleCycle reports whether the system is one plain ring: every
// member touches exactly two aromatic bonds.
func isSimpleCycle(m *Molecule, members []int) bool {
	for _, i := range members {
		if countAromaticBonds(m, i) != 2 {
			return false
		}
	}
	return true
}

// pairPiAtoms searches for a perfect matching of the atoms that demand
// a double bond, using aromatic bonds only. Ligand-scale ring systems
// keep the backtracking tiny.
func pairPiAtoms(m *Molecule, members []int, needs map[int]bool) bool {
	matched := map[int]bool{}
	var place func() bool
	place = func() bool {
		u := -1
		for _, i := range members {
			if needs[i] && !matched[i] {
				u = i
				break
			}
		}
		if u < 0 {
			return true
		}
		for _, bi := range m.adj[u] {
			b := m.Bonds[bi]
			if !b.Aromatic {
				continue
			}
			v := b.other(u)
			if !needs[v] || matched[v] {
				continue
			}
			matched[u], matched[v] = true, true
			if place() {
				return true
			}
			delete(matched, u)
			delete(matched, v)
		}
		return false
	}
	return place()
}
