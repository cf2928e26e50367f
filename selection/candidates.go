package selection

import "fmt"

// CandidateEndpoint is one side of a proposed alignment
type CandidateEndpoint struct {
	ClosestVertexID VertexID `json:"closestVertexId"`
	Valid           bool     `json:"valid"`
}

// CandidatePair is a proposed alignment between two places in the map.
// Pairs are produced by the upstream matcher and never modified here.
type CandidatePair struct {
	CandidateA CandidateEndpoint `json:"candidateA"`
	CandidateB CandidateEndpoint `json:"candidateB"`
}

// NewCandidatePair builds a pair with both endpoints marked valid
func NewCandidatePair(a, b VertexID) CandidatePair {
	return CandidatePair{
		CandidateA: CandidateEndpoint{ClosestVertexID: a, Valid: true},
		CandidateB: CandidateEndpoint{ClosestVertexID: b, Valid: true},
	}
}

// IsValid returns true if both endpoints are flagged valid and both
// reference vertices that exist in m
func (p CandidatePair) IsValid(m Map) bool {
	if !p.CandidateA.Valid || !p.CandidateB.Valid {
		return false
	}
	return m.HasVertex(p.CandidateA.ClosestVertexID) && m.HasVertex(p.CandidateB.ClosestVertexID)
}

// Swapped returns the pair with the roles of A and B exchanged
func (p CandidatePair) Swapped() CandidatePair {
	return CandidatePair{CandidateA: p.CandidateB, CandidateB: p.CandidateA}
}

func (p CandidatePair) String() string {
	return fmt.Sprintf("AlignmentCandidatePair{A: %s (valid=%t), B: %s (valid=%t)}",
		p.CandidateA.ClosestVertexID, p.CandidateA.Valid,
		p.CandidateB.ClosestVertexID, p.CandidateB.Valid)
}

// CandidatePairs is an ordered list of candidates. Earlier entries have
// higher priority when a strategy has to choose between them.
type CandidatePairs []CandidatePair

// Len returns the number of candidates
func (c CandidatePairs) Len() int {
	return len(c)
}

// RemoveAt deletes the candidate at index i, keeping the order of the rest
func (c *CandidatePairs) RemoveAt(i int) {
	s := *c
	copy(s[i:], s[i+1:])
	s[len(s)-1] = CandidatePair{}
	*c = s[:len(s)-1]
}

// Retain calls keep once for every candidate, in order, with the
// candidate's index in the sequence as it was when Retain started.
// Candidates for which keep returns false are dropped; the survivors keep
// their relative order. keep observes the original elements, so removal
// decisions never shift the indices it sees.
func (c *CandidatePairs) Retain(keep func(i int, pair CandidatePair) bool) int {
	s := *c
	n := 0
	for i, pair := range s {
		if keep(i, pair) {
			s[n] = pair
			n++
		}
	}
	for i := n; i < len(s); i++ {
		s[i] = CandidatePair{}
	}
	*c = s[:n]
	return len(s) - n
}

// Clone returns an independent copy of the candidate list
func (c CandidatePairs) Clone() CandidatePairs {
	if c == nil {
		return nil
	}
	out := make(CandidatePairs, len(c))
	copy(out, c)
	return out
}
