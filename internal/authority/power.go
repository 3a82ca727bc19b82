package authority

import "math"

// IterationParams controls the power-iteration solver.
type IterationParams struct {
	// Damping is the probability of following an out-link rather than
	// jumping to a uniformly random document. The damped iteration is
	// guaranteed to converge on any graph, which the undamped dominant
	// eigenvector is not; this implementation always applies it.
	Damping float64
	// MaxIterations caps the solver; hitting the cap is a solver failure.
	MaxIterations int
	// Tolerance is the L1 convergence threshold between iterations.
	Tolerance float64
}

// DefaultIterationParams returns the standard damping factor and a cap
// sized for graphs well beyond the typical document universe.
func DefaultIterationParams() IterationParams {
	return IterationParams{
		Damping:       0.85,
		MaxIterations: 100,
		Tolerance:     1e-9,
	}
}

// powerIterate computes the steady-state importance vector of the graph.
// Dangling nodes (no out-links) redistribute their mass uniformly. The
// returned vector is L1-normalized; entries are clamped at 0 to absorb
// floating-point noise. Returns false if the iteration fails to converge
// within the cap.
func powerIterate(g *Graph, params IterationParams) ([]float64, bool) {
	n := g.NumNodes()
	if n == 0 {
		return nil, false
	}

	rank := make([]float64, n)
	next := make([]float64, n)
	uniform := 1.0 / float64(n)
	for i := range rank {
		rank[i] = uniform
	}

	for iter := 0; iter < params.MaxIterations; iter++ {
		base := (1 - params.Damping) * uniform
		var danglingMass float64
		for i := range next {
			next[i] = base
		}
		for i, targets := range g.outLinks {
			if len(targets) == 0 {
				danglingMass += rank[i]
				continue
			}
			share := params.Damping * rank[i] / float64(len(targets))
			for _, t := range targets {
				next[t] += share
			}
		}
		if danglingMass > 0 {
			spread := params.Damping * danglingMass * uniform
			for i := range next {
				next[i] += spread
			}
		}

		var delta float64
		for i := range next {
			delta += math.Abs(next[i] - rank[i])
		}
		rank, next = next, rank
		if delta < params.Tolerance {
			normalize(rank)
			return rank, true
		}
	}
	return nil, false
}

// normalize clamps tiny negative noise to 0 and rescales so the vector
// sums to 1.
func normalize(v []float64) {
	var sum float64
	for i, x := range v {
		if x < 0 {
			v[i] = 0
			continue
		}
		sum += x
	}
	if sum == 0 {
		return
	}
	for i := range v {
		v[i] /= sum
	}
}
