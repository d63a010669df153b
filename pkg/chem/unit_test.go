package chem

import (
	"reflect"
	"testing"

	"github.com/topoforge/topoforge/pkg/geom"
)

func testUnit() *BuildingUnit {
	return &BuildingUnit{
		Name:  "rod",
		Shape: ShapeLinear,
		Atoms: []Atom{
			{Symbol: "C", Position: geom.Vec3{0, 0, 0}},
			{Symbol: Dummy, Position: geom.Vec3{1, 0, 0}},
			{Symbol: Dummy, Position: geom.Vec3{-1, 0, 0}},
		},
	}
}

func TestAtomIsDummy(t *testing.T) {
	if (Atom{Symbol: "C"}).IsDummy() {
		t.Error("carbon reported as dummy")
	}
	if !(Atom{Symbol: Dummy}).IsDummy() {
		t.Error("placeholder not reported as dummy")
	}
}

func TestCopyIsDeep(t *testing.T) {
	orig := testUnit()
	orig.Typing = &Typing{
		Bonds: []Bond{{A: 0, B: 1, Order: 1}},
		Types: []string{"C2", Dummy, Dummy},
	}

	cp := orig.Copy()
	cp.Atoms[0].Position = geom.Vec3{9, 9, 9}
	cp.Atoms[1].Tag = 7
	cp.Typing.Bonds[0].Order = 2
	cp.Typing.Types[0] = "mutated"

	if orig.Atoms[0].Position != (geom.Vec3{0, 0, 0}) {
		t.Error("copy shares atom storage with original")
	}
	if orig.Atoms[1].Tag != 0 {
		t.Error("copy shares tag storage with original")
	}
	if orig.Typing.Bonds[0].Order != 1 {
		t.Error("copy shares bond storage with original")
	}
	if orig.Typing.Types[0] != "C2" {
		t.Error("copy shares type storage with original")
	}
}

func TestCopyWithoutTyping(t *testing.T) {
	cp := testUnit().Copy()
	if cp.Typing != nil {
		t.Error("copy invented typing for a unit without any")
	}
}

func TestDummies(t *testing.T) {
	u := testUnit()
	if got := u.Dummies(); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Errorf("Dummies() = %v, want [1 2]", got)
	}
	if got := u.ConnectionCount(); got != 2 {
		t.Errorf("ConnectionCount() = %d, want 2", got)
	}
}

func TestSetPositions(t *testing.T) {
	u := testUnit()
	pts := []geom.Vec3{{1, 1, 1}, {2, 2, 2}, {3, 3, 3}}
	if err := u.SetPositions(pts); err != nil {
		t.Fatalf("SetPositions: %v", err)
	}
	if u.Atoms[2].Position != (geom.Vec3{3, 3, 3}) {
		t.Errorf("position not applied: %v", u.Atoms[2].Position)
	}

	if err := u.SetPositions(pts[:1]); err == nil {
		t.Error("short slice accepted")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*BuildingUnit)
		wantErr bool
	}{
		{name: "valid", mutate: func(*BuildingUnit) {}},
		{name: "no name", mutate: func(u *BuildingUnit) { u.Name = "" }, wantErr: true},
		{name: "no shape", mutate: func(u *BuildingUnit) { u.Shape = "" }, wantErr: true},
		{name: "no atoms", mutate: func(u *BuildingUnit) { u.Atoms = nil }, wantErr: true},
		{
			name: "no connection points",
			mutate: func(u *BuildingUnit) {
				u.Atoms = []Atom{{Symbol: "C"}}
			},
			wantErr: true,
		},
		{
			name: "typing length mismatch",
			mutate: func(u *BuildingUnit) {
				u.Typing = &Typing{Types: []string{"C2"}}
			},
			wantErr: true,
		},
		{
			name: "typing covers atoms",
			mutate: func(u *BuildingUnit) {
				u.Typing = &Typing{Types: []string{"C2", Dummy, Dummy}}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := testUnit()
			tt.mutate(u)
			err := u.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
