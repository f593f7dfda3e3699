package qgate

import (
	"errors"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestBuildQAOA(t *testing.T) {
	Convey("Given one layer on two qubits", t, func() {
		prog, params, err := BuildQAOA(1, 2)
		So(err, ShouldBeNil)

		Convey("It has seven lines in order", func() {
			So(prog.Len(), ShouldEqual, 7)
			So(prog.String(), ShouldEqual, strings.Join([]string{
				"DECLARE ro BIT[1]",
				"RX(theta[0]) 0",
				"RX(theta[0]) 1",
				"CZ 0 1",
				"RZ(theta[1]) 1",
				"CZ 0 1",
				"MEASURE 0 ro[0]",
			}, "\n"))
		})

		Convey("It carries its width and parameter names", func() {
			So(prog.Qubits(), ShouldEqual, 2)
			So(params, ShouldResemble, []string{"theta[0]", "theta[1]"})
			So(prog.Parameters(), ShouldResemble, params)
			So(prog.Validate(), ShouldBeNil)
		})

		Convey("Building twice gives the same program", func() {
			again, _, err := BuildQAOA(1, 2)
			So(err, ShouldBeNil)
			So(again.String(), ShouldEqual, prog.String())
		})
	})

	Convey("Given three layers on four qubits", t, func() {
		prog, params, err := BuildQAOA(3, 4)
		So(err, ShouldBeNil)

		So(params, ShouldHaveLength, 6)
		// declare + measure + per layer (4 RX + 3 blocks of 3)
		So(prog.Len(), ShouldEqual, 2+3*(4+9))
		So(prog.Measurements(), ShouldHaveLength, 1)
	})

	Convey("Degenerate shapes are config errors", t, func() {
		_, _, err := BuildQAOA(0, 2)
		So(errors.Is(err, ErrConfig), ShouldBeTrue)

		_, _, err = BuildQAOA(1, 1)
		So(errors.Is(err, ErrConfig), ShouldBeTrue)
	})
}

func TestBuildSampler(t *testing.T) {
	Convey("Given a three qubit sampler", t, func() {
		prog, params, err := BuildSampler(3)
		So(err, ShouldBeNil)

		So(params, ShouldResemble, []string{"theta[0]", "theta[1]", "theta[2]"})
		So(prog.String(), ShouldEqual, strings.Join([]string{
			"DECLARE ro BIT[1]",
			"H 0", "H 1", "H 2",
			"CZ 0 1", "CZ 1 2",
			"RX(theta[0]) 0", "RX(theta[1]) 1", "RX(theta[2]) 2",
			"MEASURE 0 ro[0]",
		}, "\n"))
	})

	Convey("A single qubit sampler is rejected", t, func() {
		_, _, err := BuildSampler(1)
		So(errors.Is(err, ErrConfig), ShouldBeTrue)
	})
}

func TestBuildAnsatz(t *testing.T) {
	Convey("Given a one qubit ansatz", t, func() {
		prog, params, err := BuildAnsatz(1)
		So(err, ShouldBeNil)

		So(params, ShouldResemble, []string{"theta[0]"})
		So(prog.String(), ShouldEqual, "DECLARE ro BIT[1]\nRX(theta[0]) 0\nMEASURE 0 ro[0]")
	})

	Convey("Zero qubits is rejected", t, func() {
		_, _, err := BuildAnsatz(0)
		So(errors.Is(err, ErrConfig), ShouldBeTrue)
	})
}
