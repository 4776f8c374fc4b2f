package rank

// linearModel is a hinge-loss linear classifier fit by deterministic
// full-batch subgradient descent. The per-epoch gradient sums over every
// sample before the weights move, so the fitted model is invariant to the
// order the samples arrive in; reranking an already-ranked batch must give
// the same order back. Margins only need to induce a stable ordering, so the
// training budget is small.
type linearModel struct {
	w []float64
	b float64
}

const (
	trainEpochs = 50
	lambda      = 0.01
)

// fitLinear trains on x with binary labels y, weighting classes inversely to
// their frequency so a lopsided pseudo-labeling does not collapse the margin.
func fitLinear(x [][]float64, y []bool) *linearModel {
	n := len(x)
	if n == 0 || len(x[0]) == 0 {
		return nil
	}
	dim := len(x[0])

	var pos int
	for _, label := range y {
		if label {
			pos++
		}
	}
	neg := n - pos
	if pos == 0 || neg == 0 {
		return nil
	}
	posWeight := float64(n) / (2 * float64(pos))
	negWeight := float64(n) / (2 * float64(neg))

	m := &linearModel{w: make([]float64, dim)}
	grad := make([]float64, dim)
	for epoch := 1; epoch <= trainEpochs; epoch++ {
		eta := 1 / (lambda * float64(epoch))

		for j := range grad {
			grad[j] = 0
		}
		var gradB float64
		for i := 0; i < n; i++ {
			target := -1.0
			weight := negWeight
			if y[i] {
				target = 1.0
				weight = posWeight
			}

			// Only samples inside the margin contribute to the hinge term.
			if target*(dot(m.w, x[i])+m.b) < 1 {
				step := weight * target
				for j := range grad {
					grad[j] += step * x[i][j]
				}
				gradB += step
			}
		}

		scale := 1 - eta*lambda
		if scale < 0 {
			scale = 0
		}
		for j := range m.w {
			m.w[j] = m.w[j]*scale + eta*grad[j]/float64(n)
		}
		m.b += eta * gradB / float64(n)
	}
	return m
}

// decision returns the signed distance of each row from the boundary.
func (m *linearModel) decision(x [][]float64) []float64 {
	out := make([]float64, len(x))
	for i, row := range x {
		out[i] = dot(m.w, row) + m.b
	}
	return out
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
