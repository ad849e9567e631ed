package chem

import (
	"strings"

	"godock/dockerr"
)

// ParseSMILES parses and sanitizes a SMILES string. Supported grammar:
// the organic subset, bracket atoms with isotope / chirality / hydrogen
// count / charge, branches, ring closures (including %nn), aromatic
// lowercase atoms and dot-separated fragments. Directional bonds ('/',
// '\') are read but treated as single bonds; tetrahedral chirality is
// preserved.
func ParseSMILES(s string) (*Molecule, error) {
	p := &smilesParser{in: s, mol: NewMolecule(), rings: map[int]*ringOpen{}}
	if err := p.run(); err != nil {
		return nil, err
	}
	if err := p.finish(); err != nil {
		return nil, err
	}
	return p.mol, nil
}

// Canonicalize normalizes a SMILES string to the canonical form
// produced by CanonicalSMILES, honoring tetrahedral stereochemistry.
func Canonicalize(smiles string) (string, error) {
	mol, err := ParseSMILES(smiles)
	if err != nil {
		return "", dockerr.Wrap(dockerr.KindParse, err, "cannot canonicalize SMILES")
	}
	return CanonicalSMILES(mol), nil
}

type ringOpen struct {
	atom  int
	order int // 0 = unspecified
}

// ring-closure placeholder in stereo order lists; resolved on match.
func ringPlaceholder(num int) int { return -2 - num }

type smilesParser struct {
	in   string
	pos  int
	mol  *Molecule

	prev      int // index of the previous atom, -1 at a fragment start
	stack     []int
	bondOrder int // pending explicit bond order, 0 = none
	bondArom  bool

	rings map[int]*ringOpen

	// nbrOrder mirrors, for every atom, the neighbor order in which
	// bonds appear in the input text; chirality is defined against it.
	nbrOrder [][]int
}

func (p *smilesParser) fail(format string, args ...interface{}) error {
	return dockerr.Parse("could not parse SMILES string: "+format, args...)
}

func (p *smilesParser) peek() byte {
	if p.pos >= len(p.in) {
		return 0
	}
	return p.in[p.pos]
}

func (p *smilesParser) run() error {
	if strings.TrimSpace(p.in) == "" {
		return p.fail("empty input")
	}
	p.prev = -1
	for p.pos < len(p.in) {
		c := p.in[p.pos]
		switch {
		case c == ' ' || c == '\t':
			// SMILES ends at whitespace; anything after is a comment/name.
			p.pos = len(p.in)
		case c == '(':
			if p.prev < 0 {
				return p.fail("branch before any atom at position %d", p.pos)
			}
			p.stack = append(p.stack, p.prev)
			p.pos++
		case c == ')':
			if len(p.stack) == 0 {
				return p.fail("unmatched ')' at position %d", p.pos)
			}
			p.prev = p.stack[len(p.stack)-1]
			p.stack = p.stack[:len(p.stack)-1]
			p.pos++
		case c == '.':
			if p.bondOrder != 0 {
				return p.fail("bond before '.' at position %d", p.pos)
			}
			p.prev = -1
			p.pos++
		case c == '-':
			p.bondOrder = 1
			p.pos++
		case c == '=':
			p.bondOrder = 2
			p.pos++
		case c == '#':
			p.bondOrder = 3
			p.pos++
		case c == ':':
			p.bondOrder = 1
			p.bondArom = true
			p.pos++
		case c == '/' || c == '\\':
			// Directional single bond; cis/trans designation is dropped.
			p.bondOrder = 1
			p.pos++
		case c >= '0' && c <= '9':
			if err := p.ringBond(int(c - '0')); err != nil {
				return err
			}
			p.pos++
		case c == '%':
			if p.pos+2 >= len(p.in) || !isDigit(p.in[p.pos+1]) || !isDigit(p.in[p.pos+2]) {
				return p.fail("bad %%nn ring closure at position %d", p.pos)
			}
			n := int(p.in[p.pos+1]-'0')*10 + int(p.in[p.pos+2]-'0')
			if err := p.ringBond(n); err != nil {
				return err
			}
			p.pos += 3
		case c == '[':
			if err := p.bracketAtom(); err != nil {
				return err
			}
		default:
			if err := p.organicAtom(); err != nil {
				return err
			}
		}
	}
	return nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// addAtom links a freshly parsed atom into the graph and returns its index.
func (p *smilesParser) addAtom(a *Atom) int {
	i := p.mol.AddAtom(a)
	p.nbrOrder = append(p.nbrOrder, nil)
	if p.prev >= 0 {
		order := p.bondOrder
		aromatic := p.bondArom
		if order == 0 {
			if p.mol.Atoms[p.prev].Aromatic && a.Aromatic {
				order, aromatic = 1, true
			} else {
				order = 1
			}
		}
		p.mol.AddBond(p.prev, i, order, aromatic)
		p.nbrOrder[p.prev] = append(p.nbrOrder[p.prev], i)
		p.nbrOrder[i] = append(p.nbrOrder[i], p.prev)
	}
	p.bondOrder = 0
	p.bondArom = false
	p.prev = i
	return i
}

func (p *smilesParser) ringBond(num int) error {
	if p.prev < 0 {
		return p.fail("ring closure %d before any atom", num)
	}
	open, ok := p.rings[num]
	if !ok {
		p.rings[num] = &ringOpen{atom: p.prev, order: p.bondOrder}
		p.nbrOrder[p.prev] = append(p.nbrOrder[p.prev], ringPlaceholder(num))
		p.bondOrder = 0
		p.bondArom = false
		return nil
	}
	delete(p.rings, num)
	if open.atom == p.prev {
		return p.fail("ring closure %d bonds an atom to itself", num)
	}
	order := open.order
	if order == 0 {
		order = p.bondOrder
	}
	aromatic := false
	if order == 0 {
		if p.mol.Atoms[open.atom].Aromatic && p.mol.Atoms[p.prev].Aromatic {
			order, aromatic = 1, true
		} else {
			order = 1
		}
	}
	p.mol.AddBond(open.atom, p.prev, order, aromatic)
	// The opening atom reserved its neighbor slot at the digit; the
	// closing atom takes its slot here.
	for k, v := range p.nbrOrder[open.atom] {
		if v == ringPlaceholder(num) {
			p.nbrOrder[open.atom][k] = p.prev
			break
		}
	}
	p.nbrOrder[p.prev] = append(p.nbrOrder[p.prev], open.atom)
	p.bondOrder = 0
	p.bondArom = false
	return nil
}

func (p *smilesParser) organicAtom() error {
	c := p.in[p.pos]
	// Two-letter elements of the organic subset.
	if c == 'C' && p.pos+1 < len(p.in) && p.in[p.pos+1] == 'l' {
		p.pos += 2
		p.addAtom(NewAtom("Cl"))
		return nil
	}
	if c == 'B' && p.pos+1 < len(p.in) && p.in[p.pos+1] == 'r' {
		p.pos += 2
		p.addAtom(NewAtom("Br"))
		return nil
	}
	if sym, ok := aromaticSymbols[string(c)]; ok {
		a := NewAtom(sym)
		a.Aromatic = true
		p.pos++
		p.addAtom(a)
		return nil
	}
	sym := string(c)
	if !organicSubset[sym] {
		return p.fail("unexpected character %q at position %d", string(c), p.pos)
	}
	p.pos++
	p.addAtom(NewAtom(sym))
	return nil
}

func (p *smilesParser) bracketAtom() error {
	start := p.pos
	p.pos++ // consume '['

	// Isotope.
	isotope := 0
	for p.pos < len(p.in) && isDigit(p.in[p.pos]) {
		isotope = isotope*10 + int(p.in[p.pos]-'0')
		p.pos++
	}

	// Element symbol, aromatic or not.
	if p.pos >= len(p.in) {
		return p.fail("unterminated bracket atom at position %d", start)
	}
	var sym string
	aromatic := false
	c := p.in[p.pos]
	switch {
	case c >= 'A' && c <= 'Z':
		sym = string(c)
		p.pos++
		if p.pos < len(p.in) && p.in[p.pos] >= 'a' && p.in[p.pos] <= 'z' {
			two := sym + string(p.in[p.pos])
			if _, ok := elements[two]; ok {
				sym = two
				p.pos++
			}
		}
	case c >= 'a' && c <= 'z':
		if p.pos+1 < len(p.in) {
			if s, ok := aromaticSymbols[string(p.in[p.pos:p.pos+2])]; ok {
				sym, aromatic = s, true
				p.pos += 2
			}
		}
		if sym == "" {
			s, ok := aromaticSymbols[string(c)]
			if !ok {
				return p.fail("unknown aromatic atom %q at position %d", string(c), p.pos)
			}
			sym, aromatic = s, true
			p.pos++
		}
	default:
		return p.fail("expected element symbol at position %d", p.pos)
	}
	if AtomicNumber(sym) == 0 {
		return p.fail("unknown element %q at position %d", sym, start)
	}

	// Chirality.
	parity := ParityNone
	if p.pos < len(p.in) && p.in[p.pos] == '@' {
		p.pos++
		if p.pos < len(p.in) && p.in[p.pos] == '@' {
			parity = ParityCW
			p.pos++
		} else {
			parity = ParityCCW
		}
	}

	// Hydrogen count.
	hcount := 0
	if p.pos < len(p.in) && p.in[p.pos] == 'H' {
		p.pos++
		hcount = 1
		if p.pos < len(p.in) && isDigit(p.in[p.pos]) {
			hcount = int(p.in[p.pos] - '0')
			p.pos++
		}
	}

	// Charge.
	charge := 0
	if p.pos < len(p.in) && (p.in[p.pos] == '+' || p.in[p.pos] == '-') {
		sign := 1
		if p.in[p.pos] == '-' {
			sign = -1
		}
		p.pos++
		n := 1
		if p.pos < len(p.in) && isDigit(p.in[p.pos]) {
			n = int(p.in[p.pos] - '0')
			p.pos++
		} else {
			for p.pos < len(p.in) && (p.in[p.pos] == '+' || p.in[p.pos] == '-') {
				if (sign > 0) != (p.in[p.pos] == '+') {
					return p.fail("mixed charge signs at position %d", p.pos)
				}
				n++
				p.pos++
			}
		}
		charge = sign * n
	}

	if p.pos >= len(p.in) || p.in[p.pos] != ']' {
		return p.fail("unterminated bracket atom at position %d", start)
	}
	p.pos++

	a := NewAtom(sym)
	a.Aromatic = aromatic
	a.Isotope = isotope
	a.Charge = charge
	a.NumExplicitHs = hcount
	a.Parity = parity
	i := p.addAtom(a)
	if parity != ParityNone && hcount == 1 {
		// The implicit hydrogen takes the neighbor slot right where it
		// is written, i.e. immediately after the preceding atom.
		p.nbrOrder[i] = append(p.nbrOrder[i], -1)
	}
	return nil
}

// finish validates the parsed graph and pins down stereo references.
func (p *smilesParser) finish() error {
	if len(p.stack) != 0 {
		return p.fail("unclosed branch")
	}
	for num := range p.rings {
		return p.fail("unclosed ring bond %d", num)
	}
	m := p.mol
	if m.NumAtoms() == 0 {
		return p.fail("no atoms")
	}
	for i, a := range m.Atoms {
		if a.Aromatic {
			n := 0
			for _, bi := range m.adj[i] {
				if m.Bonds[bi].Aromatic {
					n++
				}
			}
			if n < 2 {
				return p.fail("aromatic atom %d is not in an aromatic ring", i)
			}
		}
		if a.NumExplicitHs < 0 && defaultValence(a.Symbol, a.Charge) >= 0 {
			if m.bondOrderSum(i) > defaultValence(a.Symbol, a.Charge) && !organicHypervalent(a.Symbol) {
				return p.fail("valence of atom %d (%s) exceeded", i, a.Symbol)
			}
		}
		if a.Parity != ParityNone {
			ref := p.nbrOrder[i]
			if len(ref) < 3 || len(ref) > 4 {
				// Not a tetrahedral environment we can keep; drop it.
				a.Parity = ParityNone
				continue
			}
			a.StereoRef = append([]int(nil), ref...)
		}
	}
	return checkAromaticRings(m)
}

// organicHypervalent lists elements where valences above the default
// are routine (sulfones, phosphates) and not a parse error.
func organicHypervalent(sym string) bool {
	return sym == "S" || sym == "P" || sym == "Se"
}
