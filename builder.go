package qgate

import "strconv"

const readoutRegister = "ro"

// ParamName is the symbolic name of the i-th circuit parameter.
func ParamName(i int) string {
	return "theta[" + strconv.Itoa(i) + "]"
}

func paramNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = ParamName(i)
	}

	return names
}

/*
builder accumulates instructions for a fixed-width program with a single-bit
readout register.
*/
type builder struct {
	prog Program
}

func newBuilder(qubits int) *builder {
	b := &builder{prog: Program{qubits: qubits, register: readoutRegister, width: 1}}
	b.emit(Instruction{Op: OpDeclare, Register: readoutRegister, Width: 1})
	return b
}

func (b *builder) emit(in Instruction) {
	b.prog.instructions = append(b.prog.instructions, in)
}

func (b *builder) rx(angle Angle, q int) { b.emit(Instruction{Op: OpRX, Angle: angle, Qubits: []int{q}}) }
func (b *builder) rz(angle Angle, q int) { b.emit(Instruction{Op: OpRZ, Angle: angle, Qubits: []int{q}}) }
func (b *builder) h(q int)               { b.emit(Instruction{Op: OpH, Qubits: []int{q}}) }
func (b *builder) cz(a, c int)           { b.emit(Instruction{Op: OpCZ, Qubits: []int{a, c}}) }

// measureFirst reads qubit 0 into ro[0]; only one bit is ever read out.
func (b *builder) measureFirst() Program {
	b.emit(Instruction{Op: OpMeasure, Qubits: []int{0}, Register: readoutRegister, Slot: 0})
	return b.prog
}

/*
BuildQAOA builds a layered QAOA-style circuit. Every layer applies an RX
rotation on all qubits with the layer's first parameter, then a linear chain
of CZ, RZ, CZ blocks between neighbouring qubits with the layer's second
parameter. Only qubit 0 is measured.

It returns the program and its 2*layers parameter names in binding order.
*/
func BuildQAOA(layers, qubits int) (Program, []string, error) {
	if layers <= 0 {
		return Program{}, nil, newError(ErrConfig, "layers must be positive, got %d", layers)
	}

	if qubits <= 1 {
		return Program{}, nil, newError(ErrConfig, "entangling layers need at least 2 qubits, got %d", qubits)
	}

	params := paramNames(2 * layers)
	b := newBuilder(qubits)

	for layer := 0; layer < layers; layer++ {
		beta := Symbol(params[2*layer])
		gamma := Symbol(params[2*layer+1])

		for q := 0; q < qubits; q++ {
			b.rx(beta, q)
		}

		for q := 0; q < qubits-1; q++ {
			b.cz(q, q+1)
			b.rz(gamma, q+1)
			b.cz(q, q+1)
		}
	}

	return b.measureFirst(), params, nil
}

/*
BuildSampler builds the sampler head circuit: a Hadamard on every qubit, a CZ
chain, then one RX per qubit driven by that qubit's parameter.
*/
func BuildSampler(qubits int) (Program, []string, error) {
	if qubits <= 1 {
		return Program{}, nil, newError(ErrConfig, "sampler needs at least 2 qubits, got %d", qubits)
	}

	params := paramNames(qubits)
	b := newBuilder(qubits)

	for q := 0; q < qubits; q++ {
		b.h(q)
	}

	for q := 0; q < qubits-1; q++ {
		b.cz(q, q+1)
	}

	for q, name := range params {
		b.rx(Symbol(name), q)
	}

	return b.measureFirst(), params, nil
}

// BuildAnsatz builds a product ansatz with one RX rotation per qubit.
func BuildAnsatz(qubits int) (Program, []string, error) {
	if qubits <= 0 {
		return Program{}, nil, newError(ErrConfig, "ansatz needs at least 1 qubit, got %d", qubits)
	}

	params := paramNames(qubits)
	b := newBuilder(qubits)

	for q, name := range params {
		b.rx(Symbol(name), q)
	}

	return b.measureFirst(), params, nil
}
