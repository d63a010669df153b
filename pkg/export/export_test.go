package export

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"math/rand/v2"
	"strconv"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/topoforge/topoforge/pkg/assembly"
	"github.com/topoforge/topoforge/pkg/errors"
	"github.com/topoforge/topoforge/pkg/topology"
)

func buildFramework(t *testing.T) *assembly.Framework {
	t.Helper()

	net, err := topology.Lookup("pcu")
	if err != nil {
		t.Fatal(err)
	}
	m := assembly.NewMatcher(nil)
	selection, err := m.Select(net, []assembly.Candidate{
		{Name: "zinc_octahedral"},
		{Name: "benzene_linear"},
	}, rand.New(rand.NewPCG(42, 0)))
	if err != nil {
		t.Fatalf("Select: %v", err)
	}

	logger := log.New(io.Discard)
	a := assembly.NewAssembler(logger)
	fw, err := a.Assemble(context.Background(), net, selection)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if err := assembly.Refine(context.Background(), fw, assembly.RefineOptions{}, logger); err != nil {
		t.Fatalf("Refine: %v", err)
	}
	return fw
}

func TestDocumentRoundTrip(t *testing.T) {
	fw := buildFramework(t)

	data, err := Marshal(fw)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	doc, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	rebuilt, err := doc.Framework()
	if err != nil {
		t.Fatalf("Framework: %v", err)
	}

	if rebuilt.ID != fw.ID {
		t.Errorf("ID = %q, want %q", rebuilt.ID, fw.ID)
	}
	if rebuilt.Topology.Name != fw.Topology.Name {
		t.Errorf("Topology = %q, want %q", rebuilt.Topology.Name, fw.Topology.Name)
	}
	if rebuilt.FragmentCount() != fw.FragmentCount() {
		t.Fatalf("FragmentCount = %d, want %d", rebuilt.FragmentCount(), fw.FragmentCount())
	}
	if rebuilt.Scale != fw.Scale {
		t.Errorf("Scale = %v, want %v", rebuilt.Scale, fw.Scale)
	}
	if rebuilt.RefineStats != fw.RefineStats {
		t.Errorf("RefineStats = %+v, want %+v", rebuilt.RefineStats, fw.RefineStats)
	}

	want := fw.Atoms()
	got := rebuilt.Atoms()
	if len(got) != len(want) {
		t.Fatalf("atom count = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("atom %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestDocumentUnknownTopology(t *testing.T) {
	doc := Document{Topology: "nonexistent"}
	if _, err := doc.Framework(); !errors.Is(err, errors.ErrCodeTopologyNotFound) {
		t.Errorf("error = %v, want TOPOLOGY_NOT_FOUND", err)
	}
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	if _, err := Unmarshal([]byte("{not json")); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestWriteXYZ(t *testing.T) {
	fw := buildFramework(t)

	var buf bytes.Buffer
	if err := WriteXYZ(&buf, fw); err != nil {
		t.Fatalf("WriteXYZ: %v", err)
	}

	scanner := bufio.NewScanner(&buf)
	if !scanner.Scan() {
		t.Fatal("empty output")
	}
	count, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		t.Fatalf("first line is not a count: %q", scanner.Text())
	}
	if count != fw.AtomCount() {
		t.Errorf("count line = %d, want %d", count, fw.AtomCount())
	}

	if !scanner.Scan() {
		t.Fatal("missing comment line")
	}
	if !strings.Contains(scanner.Text(), "pcu") || !strings.Contains(scanner.Text(), "cell=") {
		t.Errorf("comment line missing topology or cell: %q", scanner.Text())
	}

	lines := 0
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 4 {
			t.Fatalf("atom line has %d fields: %q", len(fields), scanner.Text())
		}
		lines++
	}
	if lines != count {
		t.Errorf("%d atom lines for count %d", lines, count)
	}
}
