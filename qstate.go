package qgate

import (
	"math"
	"math/cmplx"
	"math/rand/v2"
	"sort"
)

/*
QuantumState is a dense state vector over a fixed number of qubits. Basis
index bit q holds the value of qubit q.
*/
type QuantumState struct {
	Vector []complex128
	qubits int
}

// NewQuantumState returns |0...0> over the given number of qubits.
func NewQuantumState(qubits int) *QuantumState {
	vector := make([]complex128, 1<<qubits)
	vector[0] = 1
	return &QuantumState{Vector: vector, qubits: qubits}
}

// Qubits is the width of the state.
func (qs *QuantumState) Qubits() int { return qs.qubits }

// ApplyHadamard maps |0> to |+> and |1> to |-> on qubit q.
func (qs *QuantumState) ApplyHadamard(q int) {
	h := complex(1/math.Sqrt2, 0)
	qs.pairs(q, func(alpha, beta complex128) (complex128, complex128) {
		return h * (alpha + beta), h * (alpha - beta)
	})
}

// ApplyRX rotates qubit q about the X axis by theta.
func (qs *QuantumState) ApplyRX(q int, theta float64) {
	c := complex(math.Cos(theta/2), 0)
	s := complex(0, -math.Sin(theta/2))
	qs.pairs(q, func(alpha, beta complex128) (complex128, complex128) {
		return c*alpha + s*beta, s*alpha + c*beta
	})
}

// ApplyRZ rotates qubit q about the Z axis by theta.
func (qs *QuantumState) ApplyRZ(q int, theta float64) {
	neg := cmplx.Exp(complex(0, -theta/2))
	pos := cmplx.Exp(complex(0, theta/2))
	qs.pairs(q, func(alpha, beta complex128) (complex128, complex128) {
		return neg * alpha, pos * beta
	})
}

// ApplyCZ flips the phase of every basis state where both qubits are 1.
func (qs *QuantumState) ApplyCZ(a, b int) {
	mask := 1<<a | 1<<b
	for i := range qs.Vector {
		if i&mask == mask {
			qs.Vector[i] = -qs.Vector[i]
		}
	}
}

// pairs applies a 2x2 update to every (|..0..>, |..1..>) amplitude pair of q.
func (qs *QuantumState) pairs(q int, update func(alpha, beta complex128) (complex128, complex128)) {
	bit := 1 << q
	for i := range qs.Vector {
		if i&bit != 0 {
			continue
		}
		j := i | bit
		qs.Vector[i], qs.Vector[j] = update(qs.Vector[i], qs.Vector[j])
	}
}

/*
Distribution returns the probability of each readout value, where a readout
value is the register built by copying measured qubit measure[slot] into
character slot. Unmeasured slots read "0".
*/
func (qs *QuantumState) Distribution(width int, measure map[int]int) map[string]float64 {
	dist := make(map[string]float64)
	total := 0.0

	for i, amplitude := range qs.Vector {
		prob := cmplx.Abs(amplitude)
		prob *= prob
		if prob == 0 {
			continue
		}

		readout := make([]byte, width)
		for slot := range readout {
			readout[slot] = '0'
			if q, ok := measure[slot]; ok && i&(1<<q) != 0 {
				readout[slot] = '1'
			}
		}

		dist[string(readout)] += prob
		total += prob
	}

	for k := range dist {
		dist[k] /= total
	}

	return dist
}

/*
sampler draws outcomes from a discrete distribution by inverting its
cumulative probabilities.
*/
type sampler struct {
	outcomes   []Outcome
	cumulative []float64
}

func newSampler(dist map[string]float64) *sampler {
	keys := make([]string, 0, len(dist))
	for k := range dist {
		keys = append(keys, k)
	}
	// Sorted so a fixed seed always walks the same cumulative table.
	sort.Strings(keys)

	s := &sampler{}
	acc := 0.0
	for _, k := range keys {
		acc += dist[k]
		s.outcomes = append(s.outcomes, Outcome(k))
		s.cumulative = append(s.cumulative, acc)
	}

	return s
}

func (s *sampler) draw(rng *rand.Rand) Outcome {
	r := rng.Float64() * s.cumulative[len(s.cumulative)-1]
	i := sort.SearchFloat64s(s.cumulative, r)
	if i >= len(s.outcomes) {
		i = len(s.outcomes) - 1
	}

	return s.outcomes[i]
}
