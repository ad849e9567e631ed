package chem

import (
	"os"
	"strconv"
	"strings"

	"godock/dockerr"
)

// Bond-perception tolerances from DOI:10.1186/1758-2946-3-33.
const (
	tooClose = 0.63
	bondTol  = 0.45
)

// ReadPDBFile reads a ligand-scale PDB file: ATOM/HETATM records with
// the element taken from columns 77-78 (falling back to the atom
// name), coordinates from the fixed coordinate columns, and bonds
// perceived from interatomic distances against covalent radii. Bond
// orders are unknown at this stage; AssignBondOrders restores them
// from a template.
func ReadPDBFile(path string) (*Molecule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, dockerr.Wrap(dockerr.KindParse, err, "cannot read PDB file %s", path)
	}
	m, err := ParsePDB(string(data))
	if err != nil {
		return nil, dockerr.Wrap(dockerr.KindParse, err, "cannot read PDB file %s", path)
	}
	return m, nil
}

// ParsePDB parses raw PDB text into a molecule with one conformer.
func ParsePDB(raw string) (*Molecule, error) {
	m := NewMolecule()
	for _, line := range strings.Split(raw, "\n") {
		if !strings.HasPrefix(line, "ATOM") && !strings.HasPrefix(line, "HETATM") {
			continue
		}
		if len(line) < 54 {
			return nil, dockerr.Parse("truncated atom record: %q", line)
		}
		x, errx := strconv.ParseFloat(strings.TrimSpace(line[30:38]), 64)
		y, erry := strconv.ParseFloat(strings.TrimSpace(line[38:46]), 64)
		z, errz := strconv.ParseFloat(strings.TrimSpace(line[46:54]), 64)
		if errx != nil || erry != nil || errz != nil {
			return nil, dockerr.Parse("bad coordinates in atom record: %q", line)
		}
		sym := ""
		if len(line) >= 78 {
			sym = normalizeElement(strings.TrimSpace(line[76:78]))
		}
		if sym == "" {
			sym = elementFromAtomName(strings.TrimSpace(line[12:16]))
		}
		if AtomicNumber(sym) == 0 {
			return nil, dockerr.Parse("unknown element in atom record: %q", line)
		}
		m.AddAtom(NewAtom(sym))
		m.Coords = append(m.Coords, Point3{x, y, z})
	}
	if m.NumAtoms() == 0 {
		return nil, dockerr.Parse("no atom records found")
	}
	perceiveBonds(m)
	return m, nil
}

func normalizeElement(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToUpper(s)
	if len(s) == 2 {
		s = s[:1] + strings.ToLower(s[1:])
	}
	if AtomicNumber(s) == 0 {
		return ""
	}
	return s
}

// elementFromAtomName falls back to the atom-name column: two-letter
// elements first, then the first alphabetic character.
func elementFromAtomName(name string) string {
	name = strings.TrimLeft(name, "0123456789")
	if len(name) >= 2 {
		if sym := normalizeElement(name[:2]); sym != "" && (sym == "Cl" || sym == "Br" || sym == "Si" || sym == "Se") {
			return sym
		}
	}
	if len(name) >= 1 {
		return normalizeElement(name[:1])
	}
	return ""
}

// perceiveBonds connects atom pairs whose distance is within the sum
// of covalent radii plus tolerance (and not unphysically close).
func perceiveBonds(m *Molecule) {
	for i := 0; i < m.NumAtoms(); i++ {
		ri := CovalentRadius(m.Atoms[i].Symbol)
		for j := i + 1; j < m.NumAtoms(); j++ {
			rj := CovalentRadius(m.Atoms[j].Symbol)
			d := m.Coords[i].dist(m.Coords[j])
			if d < tooClose || d > ri+rj+bondTol {
				continue
			}
			if m.Atoms[i].IsHydrogen() && m.Atoms[j].IsHydrogen() {
				continue
			}
			m.AddBond(i, j, 1, false)
		}
	}
}
