package chem

// Uncharge neutralizes formal charges where a proton can simply be
// added or removed: protonated amines lose a hydrogen, deprotonated
// acids gain one. Charges that cannot be neutralized are preserved:
// quaternary nitrogens keep their charge, and one counter-anion is
// kept per such fixed cation so the species stays balanced.
func Uncharge(m *Molecule) *Molecule {
	c := m.Copy()

	// Cations that cannot give up a proton are fixed charges.
	fixedPositive := 0
	for i, a := range c.Atoms {
		if a.Charge > 0 && c.ImplicitHCount(i) == 0 && !hasExplicitH(c, i) {
			fixedPositive += a.Charge
		}
	}

	// Neutralize anions one charge unit at a time, sparing enough
	// units to balance the fixed cations.
	spare := fixedPositive
	for i, a := range c.Atoms {
		units := -a.Charge
		for u := 0; u < units; u++ {
			if spare > 0 {
				spare--
				continue
			}
			a.Charge++
			bumpHCount(c, i, +1)
		}
	}

	// Neutralize cations that carry a removable proton.
	for i, a := range c.Atoms {
		for a.Charge > 0 && c.ImplicitHCount(i) > 0 {
			a.Charge--
			bumpHCount(c, i, -1)
		}
	}
	return c
}

func hasExplicitH(m *Molecule, i int) bool {
	for _, j := range m.Neighbors(i) {
		if m.Atoms[j].IsHydrogen() {
			return true
		}
	}
	return false
}

// bumpHCount adjusts the hydrogen count of an atom whose charge just
// changed. Atoms with derived counts need no bookkeeping: the valence
// model follows the charge.
func bumpHCount(m *Molecule, i int, delta int) {
	a := m.Atoms[i]
	if a.NumExplicitHs < 0 {
		return
	}
	a.NumExplicitHs += delta
	if a.NumExplicitHs < 0 {
		a.NumExplicitHs = 0
	}
}
