package assembly

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/topoforge/topoforge/pkg/chem"
	"github.com/topoforge/topoforge/pkg/errors"
	"github.com/topoforge/topoforge/pkg/geom"
	"github.com/topoforge/topoforge/pkg/topology"
)

func testLogger() *log.Logger {
	logger := log.New(io.Discard)
	logger.SetLevel(log.FatalLevel)
	return logger
}

func TestAssembleTriAxis(t *testing.T) {
	net := triAxisNet(t)
	a := NewAssembler(testLogger())

	fw, err := a.Assemble(context.Background(), net, rodAssignment(net, 2))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	if fw.FragmentCount() != 3 {
		t.Fatalf("FragmentCount = %d, want 3", fw.FragmentCount())
	}
	if fw.AtomCount() != 9 {
		t.Errorf("AtomCount = %d, want 9", fw.AtomCount())
	}
	// Each slot contributes 4 along its own axis.
	if !vecCloseTo(fw.ScaleSeed(), geom.Vec3{4, 4, 4}, 1e-9) {
		t.Errorf("ScaleSeed = %v, want (4,4,4)", fw.ScaleSeed())
	}
	// Every slot's aligned unit carries typing even though the template
	// had none.
	for _, frag := range fw.Fragments() {
		if frag.Unit.Typing == nil {
			t.Errorf("slot %d unit has no typing", frag.SlotIndex)
		}
	}
}

func TestAssembleMissingSlotAssignment(t *testing.T) {
	net := triAxisNet(t)
	assignment := rodAssignment(net, 2)
	delete(assignment, 1)

	a := NewAssembler(testLogger())
	_, err := a.Assemble(context.Background(), net, assignment)
	if !errors.Is(err, errors.ErrCodeShapeMismatch) {
		t.Errorf("error = %v, want SHAPE_MISMATCH", err)
	}
}

func TestAssembleShapeMismatch(t *testing.T) {
	net := triAxisNet(t)
	assignment := rodAssignment(net, 2)
	assignment[0] = &chem.BuildingUnit{
		Name:  "tri",
		Shape: chem.ShapeTriangular,
		Atoms: rodUnit("rod", 2).Atoms,
	}

	a := NewAssembler(testLogger())
	_, err := a.Assemble(context.Background(), net, assignment)
	if !errors.Is(err, errors.ErrCodeShapeMismatch) {
		t.Errorf("error = %v, want SHAPE_MISMATCH", err)
	}
}

func TestAssembleUnknownSlotInAssignment(t *testing.T) {
	net := triAxisNet(t)
	assignment := rodAssignment(net, 2)
	assignment[99] = rodUnit("rod", 2)

	a := NewAssembler(testLogger())
	_, err := a.Assemble(context.Background(), net, assignment)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestAssembleAllOrNothing(t *testing.T) {
	// One degenerate slot poisons the whole run: no partial framework.
	net := topology.New("broken", [3]geom.Vec3{{10, 0, 0}, {0, 10, 0}, {0, 0, 10}})
	if err := net.AddSlot(linearSlot(0, geom.Vec3{5, 0, 0}, geom.Vec3{1, 0, 0}, 0)); err != nil {
		t.Fatal(err)
	}
	degenerate := topology.Slot{
		Index: 1,
		Shape: topology.ShapeLinear,
		Fragment: topology.Fragment{
			Points: []geom.Vec3{{0, 5, 0}, {0, 5, 0}},
			Tags:   []int{2, 3},
		},
	}
	if err := net.AddSlot(degenerate); err != nil {
		t.Fatal(err)
	}

	a := NewAssembler(testLogger())
	fw, err := a.Assemble(context.Background(), net, rodAssignment(net, 2))
	if !errors.Is(err, errors.ErrCodeDegenerateGeometry) {
		t.Errorf("error = %v, want DEGENERATE_GEOMETRY", err)
	}
	if fw != nil {
		t.Error("got a partial framework alongside the error")
	}
}

func TestAssembleCanceledContext(t *testing.T) {
	net := triAxisNet(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := NewAssembler(testLogger())
	if _, err := a.Assemble(ctx, net, rodAssignment(net, 2)); err == nil {
		t.Error("Assemble succeeded on a canceled context")
	}
}

func TestAssembleDegenerateCell(t *testing.T) {
	net := topology.New("flat", [3]geom.Vec3{{10, 0, 0}, {0, 10, 0}, {0, 0, 0}})
	if err := net.AddSlot(linearSlot(0, geom.Vec3{5, 0, 0}, geom.Vec3{1, 0, 0}, 0)); err != nil {
		t.Fatal(err)
	}

	a := NewAssembler(testLogger())
	_, err := a.Assemble(context.Background(), net, rodAssignment(net, 2))
	if !errors.Is(err, errors.ErrCodeDegenerateGeometry) {
		t.Errorf("error = %v, want DEGENERATE_GEOMETRY", err)
	}
}
