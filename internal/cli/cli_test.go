package cli

import (
	"io"
	"reflect"
	"testing"

	"github.com/topoforge/topoforge/pkg/errors"
	"github.com/topoforge/topoforge/pkg/pipeline"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	want := []string{"assemble", "topologies", "units", "cache", "serve", "completion"}
	for _, name := range want {
		found := false
		for _, cmd := range root.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestTopologiesCommandUnitFilter(t *testing.T) {
	c := New(io.Discard, LogInfo)

	cmd := c.topologiesCommand()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--unit", "zinc_octahedral", "--unit", "benzene_linear"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("topologies --unit: %v", err)
	}

	cmd = c.topologiesCommand()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--unit", "unobtainium"})
	if err := cmd.Execute(); !errors.Is(err, errors.ErrCodeUnitNotFound) {
		t.Errorf("unknown unit: error = %v, want UNIT_NOT_FOUND", err)
	}
}

func TestParseUnits(t *testing.T) {
	tests := []struct {
		name    string
		entries []string
		want    []pipeline.UnitChoice
		wantErr bool
	}{
		{
			name:    "name only",
			entries: []string{"benzene_linear"},
			want:    []pipeline.UnitChoice{{Name: "benzene_linear"}},
		},
		{
			name:    "name with weight",
			entries: []string{"benzene_linear:2.5"},
			want:    []pipeline.UnitChoice{{Name: "benzene_linear", Weight: 2.5}},
		},
		{
			name:    "mixed",
			entries: []string{"zinc_octahedral", "benzene_linear:0.5"},
			want: []pipeline.UnitChoice{
				{Name: "zinc_octahedral"},
				{Name: "benzene_linear", Weight: 0.5},
			},
		},
		{
			name:    "bad weight",
			entries: []string{"benzene_linear:heavy"},
			wantErr: true,
		},
		{
			name:    "empty",
			entries: nil,
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseUnits(tt.entries)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseUnits() error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseUnits() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty defaults to json", input: "", want: []string{pipeline.FormatJSON}},
		{name: "single", input: "xyz", want: []string{"xyz"}},
		{name: "comma separated", input: "json,xyz", want: []string{"json", "xyz"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFormats(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
