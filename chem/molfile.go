package chem

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"godock/dockerr"
)

// ReadMolFile reads a single MDL MOL V2000 block from a file.
// Explicit hydrogens stay graph atoms; charges come from M  CHG lines.
func ReadMolFile(path string) (*Molecule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, dockerr.Wrap(dockerr.KindParse, err, "cannot read MOL file %s", path)
	}
	mol, err := ParseMolBlock(string(data))
	if err != nil {
		return nil, dockerr.Wrap(dockerr.KindParse, err, "cannot parse MOL file %s", path)
	}
	return mol, nil
}

// ParseMolBlock parses MOL V2000 text.
func ParseMolBlock(block string) (*Molecule, error) {
	lines := strings.Split(strings.ReplaceAll(block, "\r\n", "\n"), "\n")
	if len(lines) < 4 {
		return nil, dockerr.Parse("MOL block has too few lines")
	}
	counts := lines[3]
	if len(counts) < 6 {
		return nil, dockerr.Parse("malformed counts line")
	}
	numAtoms, err := strconv.Atoi(strings.TrimSpace(counts[0:3]))
	if err != nil {
		return nil, dockerr.Parse("malformed atom count %q", counts[0:3])
	}
	numBonds, err := strconv.Atoi(strings.TrimSpace(counts[3:6]))
	if err != nil {
		return nil, dockerr.Parse("malformed bond count %q", counts[3:6])
	}
	if len(lines) < 4+numAtoms+numBonds {
		return nil, dockerr.Parse("MOL block truncated: %d atoms, %d bonds declared", numAtoms, numBonds)
	}

	m := NewMolecule()
	for i := 0; i < numAtoms; i++ {
		l := lines[4+i]
		if len(l) < 34 {
			return nil, dockerr.Parse("atom line %d too short", i+1)
		}
		x, _ := strconv.ParseFloat(strings.TrimSpace(l[0:10]), 64)
		y, _ := strconv.ParseFloat(strings.TrimSpace(l[10:20]), 64)
		z, _ := strconv.ParseFloat(strings.TrimSpace(l[20:30]), 64)
		sym := strings.TrimSpace(l[31:34])
		if AtomicNumber(sym) == 0 {
			return nil, dockerr.Parse("unknown element %q on atom line %d", sym, i+1)
		}
		m.AddAtom(NewAtom(sym))
		m.Coords = append(m.Coords, Point3{x, y, z})
	}
	for i := 0; i < numBonds; i++ {
		l := lines[4+numAtoms+i]
		if len(l) < 9 {
			return nil, dockerr.Parse("bond line %d too short", i+1)
		}
		from, _ := strconv.Atoi(strings.TrimSpace(l[0:3]))
		to, _ := strconv.Atoi(strings.TrimSpace(l[3:6]))
		order, _ := strconv.Atoi(strings.TrimSpace(l[6:9]))
		if from < 1 || from > numAtoms || to < 1 || to > numAtoms {
			return nil, dockerr.Parse("bond line %d references atom out of range", i+1)
		}
		aromatic := order == 4
		if aromatic {
			order = 1
		}
		if order < 1 || order > 3 {
			return nil, dockerr.Parse("unsupported bond type on line %d", i+1)
		}
		m.AddBond(from-1, to-1, order, aromatic)
	}
	// Property block: charges reset to M  CHG values when present.
	for _, l := range lines[4+numAtoms+numBonds:] {
		if strings.HasPrefix(l, "M  CHG") {
			fields := strings.Fields(l)
			if len(fields) < 3 {
				continue
			}
			n, _ := strconv.Atoi(fields[2])
			for k := 0; k < n && 4+2*k < len(fields); k++ {
				idx, _ := strconv.Atoi(fields[3+2*k])
				chg, _ := strconv.Atoi(fields[4+2*k])
				if idx >= 1 && idx <= numAtoms {
					m.Atoms[idx-1].Charge = chg
				}
			}
		}
		if strings.HasPrefix(l, "M  END") {
			break
		}
	}
	if m.NumAtoms() == 0 {
		return nil, dockerr.Parse("MOL block contains no atoms")
	}
	return m, nil
}

// WriteMolFile writes the molecule as MDL MOL V2000. A conformer is
// required: the format exists to carry coordinates to the converter.
func WriteMolFile(m *Molecule, path string) error {
	block, err := MolBlock(m)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(block), 0644); err != nil {
		return dockerr.Wrap(dockerr.KindTool, err, "cannot write MOL file %s", path)
	}
	return nil
}

// MolBlock serializes to MOL V2000 text.
func MolBlock(m *Molecule) (string, error) {
	if !m.HasConformer() {
		return "", dockerr.Parse("conversion to MDL MOL format requires a conformer")
	}
	var sb strings.Builder
	sb.WriteString("\n  godock\n\n")
	fmt.Fprintf(&sb, "%3d%3d  0  0  0  0  0  0  0  0999 V2000\n", m.NumAtoms(), len(m.Bonds))
	for i, a := range m.Atoms {
		p := m.Coords[i]
		fmt.Fprintf(&sb, "%10.4f%10.4f%10.4f %-3s 0  0  0  0  0  0  0  0  0  0  0  0\n",
			p.X, p.Y, p.Z, a.Symbol)
	}
	for _, b := range m.Bonds {
		order := b.Order
		if b.Aromatic {
			order = 4
		}
		fmt.Fprintf(&sb, "%3d%3d%3d  0\n", b.From+1, b.To+1, order)
	}
	var charged []int
	for i, a := range m.Atoms {
		if a.Charge != 0 {
			charged = append(charged, i)
		}
	}
	// M  CHG carries at most 8 entries per line.
	for len(charged) > 0 {
		n := len(charged)
		if n > 8 {
			n = 8
		}
		fmt.Fprintf(&sb, "M  CHG%3d", n)
		for _, i := range charged[:n] {
			fmt.Fprintf(&sb, " %3d %3d", i+1, m.Atoms[i].Charge)
		}
		sb.WriteString("\n")
		charged = charged[n:]
	}
	sb.WriteString("M  END\n")
	return sb.String(), nil
}
