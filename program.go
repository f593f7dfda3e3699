package qgate

import (
	"strconv"
	"strings"
)

// Op identifies the kind of a program instruction.
type Op int

const (
	OpDeclare Op = iota
	OpRX
	OpRZ
	OpH
	OpCZ
	OpMeasure
)

func (op Op) String() string {
	switch op {
	case OpDeclare:
		return "DECLARE"
	case OpRX:
		return "RX"
	case OpRZ:
		return "RZ"
	case OpH:
		return "H"
	case OpCZ:
		return "CZ"
	case OpMeasure:
		return "MEASURE"
	default:
		return "UNKNOWN"
	}
}

/*
Angle is a rotation operand. It is either a literal value or a reference to
a symbolic parameter that gets resolved against Bindings at execution time.
*/
type Angle struct {
	Param string
	Value float64
}

// Symbol returns an angle that refers to the named parameter.
func Symbol(name string) Angle { return Angle{Param: name} }

// Literal returns a fixed angle.
func Literal(value float64) Angle { return Angle{Value: value} }

// IsSymbolic reports whether the angle still needs a binding.
func (a Angle) IsSymbolic() bool { return a.Param != "" }

// Resolve returns the numeric angle, looking symbolic ones up in bindings.
func (a Angle) Resolve(bindings Bindings) (float64, error) {
	if !a.IsSymbolic() {
		return a.Value, nil
	}

	value, ok := bindings[a.Param]
	if !ok {
		return 0, newError(ErrConfig, "unbound parameter %s", a.Param)
	}

	return value, nil
}

func (a Angle) String() string {
	if a.IsSymbolic() {
		return a.Param
	}

	return strconv.FormatFloat(a.Value, 'g', -1, 64)
}

/*
Instruction is a single program line. Which operands are meaningful depends
on Op: rotations use Angle and Qubits[0], CZ uses Qubits[0] and Qubits[1],
Measure uses Qubits[0], Register and Slot, Declare uses Register and Width.
*/
type Instruction struct {
	Op       Op
	Qubits   []int
	Angle    Angle
	Register string
	Slot     int
	Width    int
}

func (in Instruction) String() string {
	switch in.Op {
	case OpDeclare:
		return "DECLARE " + in.Register + " BIT[" + strconv.Itoa(in.Width) + "]"
	case OpRX, OpRZ:
		return in.Op.String() + "(" + in.Angle.String() + ") " + strconv.Itoa(in.Qubits[0])
	case OpH:
		return "H " + strconv.Itoa(in.Qubits[0])
	case OpCZ:
		return "CZ " + strconv.Itoa(in.Qubits[0]) + " " + strconv.Itoa(in.Qubits[1])
	case OpMeasure:
		return "MEASURE " + strconv.Itoa(in.Qubits[0]) + " " + in.Register + "[" + strconv.Itoa(in.Slot) + "]"
	default:
		return in.Op.String()
	}
}

/*
Program is an immutable, ordered list of instructions together with the
number of qubits it addresses and the readout register it declares.
*/
type Program struct {
	instructions []Instruction
	qubits       int
	register     string
	width        int
}

// Instructions returns a copy of the instruction list.
func (p Program) Instructions() []Instruction {
	out := make([]Instruction, len(p.instructions))
	for i, in := range p.instructions {
		in.Qubits = append([]int(nil), in.Qubits...)
		out[i] = in
	}

	return out
}

// Qubits is the number of qubits the program was built for.
func (p Program) Qubits() int { return p.qubits }

// Register is the name of the declared readout register.
func (p Program) Register() string { return p.register }

// RegisterWidth is the declared number of readout bits.
func (p Program) RegisterWidth() int { return p.width }

// Len is the number of instruction lines.
func (p Program) Len() int { return len(p.instructions) }

// Measurements returns the measure instructions in program order.
func (p Program) Measurements() []Instruction {
	var out []Instruction
	for _, in := range p.instructions {
		if in.Op == OpMeasure {
			out = append(out, in)
		}
	}

	return out
}

// String renders the program as Quil text, one instruction per line.
func (p Program) String() string {
	lines := make([]string, len(p.instructions))
	for i, in := range p.instructions {
		lines[i] = in.String()
	}

	return strings.Join(lines, "\n")
}

/*
Validate checks the structural invariants every executor relies on: qubit
indices inside the program width, measurements landing inside the declared
register, and CZ acting on two distinct qubits.
*/
func (p Program) Validate() error {
	if p.qubits <= 0 {
		return newError(ErrConfig, "program addresses no qubits")
	}

	declared := false
	for _, in := range p.instructions {
		for _, q := range in.Qubits {
			if q < 0 || q >= p.qubits {
				return newError(ErrConfig, "qubit %d outside program width %d", q, p.qubits)
			}
		}

		switch in.Op {
		case OpDeclare:
			declared = true
		case OpCZ:
			if in.Qubits[0] == in.Qubits[1] {
				return newError(ErrConfig, "CZ on a single qubit %d", in.Qubits[0])
			}
		case OpMeasure:
			if !declared || in.Register != p.register {
				return newError(ErrConfig, "measure into undeclared register %s", in.Register)
			}
			if in.Slot < 0 || in.Slot >= p.width {
				return newError(ErrConfig, "register slot %d outside declared width %d", in.Slot, p.width)
			}
		}
	}

	return nil
}

// Parameters returns the distinct symbolic parameter names in first-use order.
func (p Program) Parameters() []string {
	seen := make(map[string]bool)
	var out []string
	for _, in := range p.instructions {
		if in.Angle.IsSymbolic() && !seen[in.Angle.Param] {
			seen[in.Angle.Param] = true
			out = append(out, in.Angle.Param)
		}
	}

	return out
}

/*
ParseProgram reads Quil text as produced by Program.String. Text carries no
explicit width, so the qubit count is one more than the highest index it
references.
*/
func ParseProgram(text string) (Program, error) {
	var (
		prog    Program
		highest = -1
	)

	for n, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		in, err := parseInstruction(line)
		if err != nil {
			return Program{}, newError(ErrParse, "line %d: %v", n+1, err)
		}

		if in.Op == OpDeclare {
			if prog.register != "" {
				return Program{}, newError(ErrConfig, "line %d: register %s declared twice", n+1, in.Register)
			}
			prog.register = in.Register
			prog.width = in.Width
		}

		for _, q := range in.Qubits {
			highest = max(highest, q)
		}

		prog.instructions = append(prog.instructions, in)
	}

	prog.qubits = highest + 1

	if err := prog.Validate(); err != nil {
		return Program{}, err
	}

	return prog, nil
}

type lineError string

func (e lineError) Error() string { return string(e) }

func parseInstruction(line string) (Instruction, error) {
	fields := strings.Fields(line)
	head := fields[0]
	args := fields[1:]

	switch {
	case head == "DECLARE":
		return parseDeclare(args)
	case head == "MEASURE":
		return parseMeasure(args)
	case head == "H":
		qubits, err := parseQubits(args, 1)
		return Instruction{Op: OpH, Qubits: qubits}, err
	case head == "CZ":
		qubits, err := parseQubits(args, 2)
		return Instruction{Op: OpCZ, Qubits: qubits}, err
	case strings.HasPrefix(head, "RX("), strings.HasPrefix(head, "RZ("):
		op := OpRX
		if head[1] == 'Z' {
			op = OpRZ
		}

		if !strings.HasSuffix(head, ")") {
			return Instruction{}, lineError("unterminated angle in " + head)
		}

		angle, err := parseAngle(head[3 : len(head)-1])
		if err != nil {
			return Instruction{}, err
		}

		qubits, err := parseQubits(args, 1)
		return Instruction{Op: op, Qubits: qubits, Angle: angle}, err
	default:
		return Instruction{}, lineError("unrecognised gate " + head)
	}
}

func parseDeclare(args []string) (Instruction, error) {
	if len(args) != 2 || !strings.HasPrefix(args[1], "BIT[") || !strings.HasSuffix(args[1], "]") {
		return Instruction{}, lineError("malformed DECLARE")
	}

	width, err := strconv.Atoi(args[1][4 : len(args[1])-1])
	if err != nil || width <= 0 {
		return Instruction{}, lineError("bad register width " + args[1])
	}

	return Instruction{Op: OpDeclare, Register: args[0], Width: width}, nil
}

func parseMeasure(args []string) (Instruction, error) {
	if len(args) != 2 {
		return Instruction{}, lineError("malformed MEASURE")
	}

	qubits, err := parseQubits(args[:1], 1)
	if err != nil {
		return Instruction{}, err
	}

	target := args[1]
	open := strings.IndexByte(target, '[')
	if open <= 0 || !strings.HasSuffix(target, "]") {
		return Instruction{}, lineError("bad measure target " + target)
	}

	slot, err := strconv.Atoi(target[open+1 : len(target)-1])
	if err != nil {
		return Instruction{}, lineError("bad register slot " + target)
	}

	return Instruction{Op: OpMeasure, Qubits: qubits, Register: target[:open], Slot: slot}, nil
}

func parseQubits(args []string, want int) ([]int, error) {
	if len(args) != want {
		return nil, lineError("expected " + strconv.Itoa(want) + " qubit operands")
	}

	qubits := make([]int, want)
	for i, arg := range args {
		q, err := strconv.Atoi(arg)
		if err != nil || q < 0 {
			return nil, lineError("bad qubit index " + arg)
		}
		qubits[i] = q
	}

	return qubits, nil
}

func parseAngle(text string) (Angle, error) {
	if text == "" {
		return Angle{}, lineError("empty angle")
	}

	if value, err := strconv.ParseFloat(text, 64); err == nil {
		return Literal(value), nil
	}

	return Symbol(text), nil
}
