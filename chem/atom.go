package chem

// Element data for the subset of the periodic table that shows up in
// drug-like ligands. Covalent radii and bond tolerances follow
// DOI:10.1186/1758-2946-3-33.

type element struct {
	number  int
	valence int     // default bonding valence of the neutral atom
	radius  float64 // single-bond covalent radius, Angstrom
}

var elements = map[string]element{
	"H":  {1, 1, 0.31},
	"B":  {5, 3, 0.84},
	"C":  {6, 4, 0.76},
	"N":  {7, 3, 0.71},
	"O":  {8, 2, 0.66},
	"F":  {9, 1, 0.57},
	"Si": {14, 4, 1.11},
	"P":  {15, 3, 1.07},
	"S":  {16, 2, 1.05},
	"Cl": {17, 1, 1.02},
	"Se": {34, 2, 1.20},
	"Br": {35, 1, 1.20},
	"I":  {53, 1, 1.39},
}

// organicSubset lists elements that may appear without brackets in
// SMILES; their hydrogen counts are derived from valence.
var organicSubset = map[string]bool{
	"B": true, "C": true, "N": true, "O": true, "P": true, "S": true,
	"F": true, "Cl": true, "Br": true, "I": true,
}

// aromaticSymbols maps lowercase SMILES aromatic atoms to elements.
var aromaticSymbols = map[string]string{
	"b": "B", "c": "C", "n": "N", "o": "O", "p": "P", "s": "S", "se": "Se",
}

// AtomicNumber returns the atomic number for a symbol, or 0 when the
// element is not known to this package.
func AtomicNumber(symbol string) int {
	return elements[symbol].number
}

// CovalentRadius returns the single-bond covalent radius in Angstrom,
// or 0 when unknown.
func CovalentRadius(symbol string) float64 {
	return elements[symbol].radius
}

// defaultValence returns the bonding valence of an atom after charge
// adjustment, or -1 when no valence model applies.
func defaultValence(symbol string, charge int) int {
	el, ok := elements[symbol]
	if !ok {
		return -1
	}
	v := el.valence
	switch symbol {
	case "C", "Si":
		if charge > 0 {
			v -= charge
		} else {
			v += charge
		}
	case "B":
		v -= charge
	default:
		// N, P, O, S, Se, halogens, H: protonation shifts valence with charge.
		v += charge
	}
	if v < 0 {
		v = 0
	}
	return v
}

// Parity encodes tetrahedral chirality relative to an ordered neighbor
// list (Atom.StereoRef).
type Parity int

const (
	ParityNone Parity = iota
	// ParityCCW is SMILES '@': looking from the first reference
	// neighbor, the remaining three appear counterclockwise.
	ParityCCW
	// ParityCW is SMILES '@@'.
	ParityCW
)

func (p Parity) invert() Parity {
	switch p {
	case ParityCCW:
		return ParityCW
	case ParityCW:
		return ParityCCW
	}
	return ParityNone
}

// Atom is a node in the molecular graph.
type Atom struct {
	Symbol    string
	AtomicNum int
	Charge    int
	Isotope   int
	Aromatic  bool

	// NumExplicitHs is a hydrogen count fixed by the input (bracket
	// atom or file record); -1 means derive from valence.
	NumExplicitHs int

	Parity Parity
	// StereoRef holds neighbor atom indices in the order that defines
	// Parity; the value -1 marks the position of an implicit hydrogen.
	StereoRef []int
}

// NewAtom builds an atom with hydrogen count derived from valence.
func NewAtom(symbol string) *Atom {
	return &Atom{
		Symbol:        symbol,
		AtomicNum:     AtomicNumber(symbol),
		NumExplicitHs: -1,
	}
}

// IsHydrogen reports whether the atom is a hydrogen graph atom.
func (a *Atom) IsHydrogen() bool { return a.AtomicNum == 1 }

func (a *Atom) copyAtom() *Atom {
	c := *a
	if a.StereoRef != nil {
		c.StereoRef = append([]int(nil), a.StereoRef...)
	}
	return &c
}
