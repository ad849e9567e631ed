package chem

import (
	"fmt"
	"sort"
	"strings"
)

// CanonicalRanks assigns each atom a rank that is stable across input
// orderings: an initial invariant (degree, element, charge, hydrogen
// count, aromaticity, isotope) iteratively refined with sorted neighbor
// ranks until the partition stops splitting.
func CanonicalRanks(m *Molecule) []int {
	n := m.NumAtoms()
	ranks := make([]int, n)
	keys := make([]string, n)
	for i, a := range m.Atoms {
		keys[i] = fmt.Sprintf("%02d|%03d|%+d|%d|%t|%03d",
			len(m.adj[i]), a.AtomicNum, a.Charge, m.ImplicitHCount(i), a.Aromatic, a.Isotope)
	}
	ranks = ranksFromKeys(keys)

	for iter := 0; iter < n; iter++ {
		next := make([]string, n)
		for i := range m.Atoms {
			nbr := make([]int, 0, len(m.adj[i]))
			for _, bi := range m.adj[i] {
				b := m.Bonds[bi]
				o := b.Order
				if b.Aromatic {
					o = 4
				}
				nbr = append(nbr, o*10000+ranks[b.other(i)])
			}
			sort.Ints(nbr)
			next[i] = fmt.Sprintf("%05d|%v", ranks[i], nbr)
		}
		nr := ranksFromKeys(next)
		if countClasses(nr) == countClasses(ranks) {
			break
		}
		ranks = nr
	}
	return ranks
}

func ranksFromKeys(keys []string) []int {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	pos := map[string]int{}
	for i, k := range sorted {
		if _, ok := pos[k]; !ok {
			pos[k] = i
		}
	}
	out := make([]int, len(keys))
	for i, k := range keys {
		out[i] = pos[k]
	}
	return out
}

func countClasses(ranks []int) int {
	seen := map[int]bool{}
	for _, r := range ranks {
		seen[r] = true
	}
	return len(seen)
}

// CanonicalSMILES serializes the molecule deterministically, honoring
// tetrahedral stereochemistry. Fragments are serialized independently
// and joined with '.' in sorted order.
func CanonicalSMILES(m *Molecule) string {
	ranks := CanonicalRanks(m)
	var frags []string
	for _, frag := range m.fragments() {
		w := &canonWriter{m: m, ranks: ranks}
		frags = append(frags, w.writeFragment(frag))
	}
	sort.Strings(frags)
	return strings.Join(frags, ".")
}

type ringToken struct {
	digit int
	bond  string // bond symbol emitted at the opening occurrence
}

type canonWriter struct {
	m     *Molecule
	ranks []int

	visited   []bool
	usedBond  []bool
	children  map[int][]int // tree edges discovered in pass one
	parent    map[int]int
	ringTok   map[int][]ringToken
	ringPeer  map[int][]int // atom -> closure partner atoms, digit order
	nextDigit int
}

func (w *canonWriter) writeFragment(frag []int) string {
	w.visited = make([]bool, w.m.NumAtoms())
	w.usedBond = make([]bool, len(w.m.Bonds))
	w.children = map[int][]int{}
	w.parent = map[int]int{}
	w.ringTok = map[int][]ringToken{}
	w.ringPeer = map[int][]int{}
	w.nextDigit = 1

	start := frag[0]
	for _, i := range frag {
		if w.ranks[i] < w.ranks[start] {
			start = i
		}
	}
	w.parent[start] = -1
	w.walk(start)

	var sb strings.Builder
	w.emit(&sb, start)
	return sb.String()
}

// walk runs the ordering pass: it fixes the DFS tree and assigns ring
// closure digits, so that emit can write tokens in one sweep.
func (w *canonWriter) walk(i int) {
	w.visited[i] = true
	nbrs := w.orderedNeighbors(i)
	for _, bi := range nbrs {
		b := w.m.Bonds[bi]
		if w.usedBond[bi] {
			continue
		}
		j := b.other(i)
		if w.visited[j] {
			// Ring closure; digit appears on both endpoints.
			w.usedBond[bi] = true
			d := w.nextDigit
			w.nextDigit++
			sym := bondSymbol(b, w.m.Atoms[b.From], w.m.Atoms[b.To])
			w.ringTok[j] = append(w.ringTok[j], ringToken{digit: d, bond: sym})
			w.ringTok[i] = append(w.ringTok[i], ringToken{digit: d})
			w.ringPeer[j] = append(w.ringPeer[j], i)
			w.ringPeer[i] = append(w.ringPeer[i], j)
			continue
		}
		w.usedBond[bi] = true
		w.parent[j] = i
		w.children[i] = append(w.children[i], j)
		w.walk(j)
	}
}

// orderedNeighbors returns bond indices at atom i sorted by the
// canonical rank of the far atom.
func (w *canonWriter) orderedNeighbors(i int) []int {
	bis := append([]int(nil), w.m.adj[i]...)
	sort.Slice(bis, func(x, y int) bool {
		rx := w.ranks[w.m.Bonds[bis[x]].other(i)]
		ry := w.ranks[w.m.Bonds[bis[y]].other(i)]
		if rx != ry {
			return rx < ry
		}
		return w.m.Bonds[bis[x]].other(i) < w.m.Bonds[bis[y]].other(i)
	})
	return bis
}

func (w *canonWriter) emit(sb *strings.Builder, i int) {
	sb.WriteString(w.atomToken(i))
	for _, rt := range w.ringTok[i] {
		sb.WriteString(rt.bond)
		if rt.digit > 9 {
			fmt.Fprintf(sb, "%%%02d", rt.digit)
		} else {
			fmt.Fprintf(sb, "%d", rt.digit)
		}
	}
	kids := w.children[i]
	for k, j := range kids {
		b := w.m.BondBetween(i, j)
		sym := bondSymbol(b, w.m.Atoms[i], w.m.Atoms[j])
		if k < len(kids)-1 {
			sb.WriteString("(")
			sb.WriteString(sym)
			w.emit(sb, j)
			sb.WriteString(")")
		} else {
			sb.WriteString(sym)
			w.emit(sb, j)
		}
	}
}

func bondSymbol(b *Bond, from, to *Atom) string {
	if b.Aromatic {
		return ""
	}
	switch b.Order {
	case 2:
		return "="
	case 3:
		return "#"
	}
	// A plain single bond between two aromatic atoms (biphenyl link or
	// a kekulized ring fusion) must be written explicitly.
	if from.Aromatic && to.Aromatic {
		return "-"
	}
	return ""
}

func (w *canonWriter) atomToken(i int) string {
	m := w.m
	a := m.Atoms[i]
	h := m.ImplicitHCount(i)

	parity := w.outputParity(i, h)

	needBracket := a.Charge != 0 || a.Isotope != 0 || parity != ParityNone ||
		a.IsHydrogen() || !organicSubset[a.Symbol]
	if !needBracket {
		// Bare atoms must regenerate the same hydrogen count on re-parse.
		bare := defaultValence(a.Symbol, 0) - m.bondOrderSum(i)
		if bare < 0 {
			bare = 0
		}
		if bare != h {
			needBracket = true
		}
	}

	sym := a.Symbol
	if a.Aromatic {
		sym = strings.ToLower(sym)
	}
	if !needBracket {
		return sym
	}

	var sb strings.Builder
	sb.WriteString("[")
	if a.Isotope != 0 {
		fmt.Fprintf(&sb, "%d", a.Isotope)
	}
	sb.WriteString(sym)
	switch parity {
	case ParityCCW:
		sb.WriteString("@")
	case ParityCW:
		sb.WriteString("@@")
	}
	if h == 1 {
		sb.WriteString("H")
	} else if h > 1 {
		fmt.Fprintf(&sb, "H%d", h)
	}
	if a.Charge != 0 {
		sign := "+"
		n := a.Charge
		if n < 0 {
			sign = "-"
			n = -n
		}
		sb.WriteString(sign)
		if n > 1 {
			fmt.Fprintf(&sb, "%d", n)
		}
	}
	sb.WriteString("]")
	return sb.String()
}

// outputParity translates the stored parity (relative to
// Atom.StereoRef) into the parity relative to the neighbor order a
// parser will reconstruct from the emitted text: preceding atom,
// bracket hydrogen, ring closure partners in digit order, then
// children in emitted order.
func (w *canonWriter) outputParity(i, hcount int) Parity {
	a := w.m.Atoms[i]
	if a.Parity == ParityNone || len(a.StereoRef) == 0 {
		return ParityNone
	}
	var out []int
	if p := w.parent[i]; p >= 0 {
		out = append(out, p)
	}
	if hcount == 1 {
		out = append(out, -1)
	}
	out = append(out, w.ringPeer[i]...)
	out = append(out, w.children[i]...)

	if !sameMembers(out, a.StereoRef) {
		return ParityNone
	}
	if permutationEven(a.StereoRef, out) {
		return a.Parity
	}
	return a.Parity.invert()
}

func sameMembers(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]int(nil), a...)
	bs := append([]int(nil), b...)
	sort.Ints(as)
	sort.Ints(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

// permutationEven reports whether b is an even permutation of a.
// Both slices must hold the same distinct members.
func permutationEven(a, b []int) bool {
	pos := map[int]int{}
	for i, v := range a {
		pos[v] = i
	}
	perm := make([]int, len(b))
	for i, v := range b {
		perm[i] = pos[v]
	}
	swaps := 0
	for i := 0; i < len(perm); i++ {
		for perm[i] != i {
			j := perm[i]
			perm[i], perm[j] = perm[j], perm[i]
			swaps++
		}
	}
	return swaps%2 == 0
}
