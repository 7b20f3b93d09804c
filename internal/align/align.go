package align

// Kind classifies a single alignment operation.
type Kind string

const (
	// Correct marks a reference token reproduced exactly in the hypothesis.
	Correct Kind = "correct"

	// Substitution marks a reference token replaced by a different
	// hypothesis token.
	Substitution Kind = "substitution"

	// Insertion marks a hypothesis token with no reference counterpart.
	Insertion Kind = "insertion"

	// Deletion marks a reference token missing from the hypothesis.
	Deletion Kind = "deletion"
)

// IsValid reports whether k is a recognised operation kind.
func (k Kind) IsValid() bool {
	switch k {
	case Correct, Substitution, Insertion, Deletion:
		return true
	}
	return false
}

// Operation is one edit in the optimal transform from reference to
// hypothesis.
//
// Invariants: [Correct] and [Substitution] carry both tokens; [Insertion]
// carries only the hypothesis token; [Deletion] carries only the reference
// token. Indices are zero-based positions into the aligned sequences and are
// -1 on the side an operation does not touch.
type Operation struct {
	Kind            Kind   `json:"kind"`
	Reference       string `json:"reference,omitempty"`
	Hypothesis      string `json:"hypothesis,omitempty"`
	ReferenceIndex  int    `json:"reference_index"`
	HypothesisIndex int    `json:"hypothesis_index"`
}

// Result is a complete alignment between a reference and a hypothesis token
// sequence. Operations are ordered left to right in reference order;
// filtering the reference-side tokens of Correct/Substitution/Deletion
// operations reconstructs the reference exactly, and likewise the
// hypothesis-side tokens of Correct/Substitution/Insertion reconstruct the
// hypothesis.
//
// A Result is computed fresh on every call and never mutated afterwards.
type Result struct {
	Operations    []Operation `json:"operations"`
	Matches       int         `json:"matches"`
	Substitutions int         `json:"substitutions"`
	Insertions    int         `json:"insertions"`
	Deletions     int         `json:"deletions"`
}

// Errors reports the total edit count (substitutions + insertions +
// deletions), which equals the Levenshtein distance between the two
// sequences.
func (r Result) Errors() int {
	return r.Substitutions + r.Insertions + r.Deletions
}

// Align computes an optimal alignment between reference and hypothesis using
// the classic Levenshtein dynamic program: unit cost for substitution,
// insertion, and deletion, zero cost for an exact token match.
//
// The backtrace applies a fixed tie-break order among equal-cost paths:
// diagonal match first, then substitution, then deletion, then insertion.
// That order is a contract — the diff output consumed by the review UI is
// byte-identical only as long as it holds — so it must not be changed.
//
// The full (m+1)×(n+1) table is kept so the operation list can be
// reconstructed for alignment display; time and space are both O(m·n).
// Callers that only need the distance should use [Distance], which runs in
// O(min(m,n)) space. Callers are expected to bound input size — this
// function applies no limit of its own.
func Align(reference, hypothesis []string) Result {
	m, n := len(reference), len(hypothesis)

	d := make([][]int, m+1)
	for i := range d {
		d[i] = make([]int, n+1)
		d[i][0] = i
	}
	for j := 0; j <= n; j++ {
		d[0][j] = j
	}

	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if reference[i-1] == hypothesis[j-1] {
				d[i][j] = d[i-1][j-1]
				continue
			}
			d[i][j] = 1 + min(d[i-1][j-1], d[i-1][j], d[i][j-1])
		}
	}

	// Backtrace from (m, n) to (0, 0). Operations come out right to left and
	// are reversed at the end so the result reads in reference order.
	ops := make([]Operation, 0, max(m, n))
	res := Result{}

	i, j := m, n
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && reference[i-1] == hypothesis[j-1] && d[i][j] == d[i-1][j-1]:
			ops = append(ops, Operation{
				Kind:            Correct,
				Reference:       reference[i-1],
				Hypothesis:      hypothesis[j-1],
				ReferenceIndex:  i - 1,
				HypothesisIndex: j - 1,
			})
			res.Matches++
			i--
			j--

		case i > 0 && j > 0 && d[i][j] == d[i-1][j-1]+1:
			ops = append(ops, Operation{
				Kind:            Substitution,
				Reference:       reference[i-1],
				Hypothesis:      hypothesis[j-1],
				ReferenceIndex:  i - 1,
				HypothesisIndex: j - 1,
			})
			res.Substitutions++
			i--
			j--

		case i > 0 && d[i][j] == d[i-1][j]+1:
			ops = append(ops, Operation{
				Kind:            Deletion,
				Reference:       reference[i-1],
				ReferenceIndex:  i - 1,
				HypothesisIndex: -1,
			})
			res.Deletions++
			i--

		default:
			ops = append(ops, Operation{
				Kind:            Insertion,
				Hypothesis:      hypothesis[j-1],
				ReferenceIndex:  -1,
				HypothesisIndex: j - 1,
			})
			res.Insertions++
			j--
		}
	}

	// Reverse into left-to-right order.
	for a, b := 0, len(ops)-1; a < b; a, b = a+1, b-1 {
		ops[a], ops[b] = ops[b], ops[a]
	}
	res.Operations = ops
	return res
}

// Distance returns the Levenshtein distance between the two token sequences
// without reconstructing the operation list. It keeps only two table rows,
// so memory is O(min over the hypothesis length) — suitable for
// character-granularity scoring of full documents where [Align]'s full table
// would be too large.
//
// Distance(r, h) always equals Align(r, h).Errors().
func Distance(reference, hypothesis []string) int {
	m, n := len(reference), len(hypothesis)
	if m == 0 {
		return n
	}
	if n == 0 {
		return m
	}

	prev := make([]int, n+1)
	cur := make([]int, n+1)
	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		cur[0] = i
		for j := 1; j <= n; j++ {
			cost := 1
			if reference[i-1] == hypothesis[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j-1]+cost, prev[j]+1, cur[j-1]+1)
		}
		prev, cur = cur, prev
	}
	return prev[n]
}
