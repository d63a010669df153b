package assembly

import (
	"github.com/topoforge/topoforge/pkg/chem"
	"github.com/topoforge/topoforge/pkg/geom"
	"github.com/topoforge/topoforge/pkg/topology"
)

// transferTags stamps the slot fragment's connection tags onto the
// aligned unit's dummy atoms by nearest neighbor. The unit and fragment
// must already share a frame (both centered, unit rotated, fragment
// scaled). Non-dummy atoms keep a zero tag.
//
// Cardinalities match by the time this runs, but the pairing is
// deliberately greedy rather than a strict bijection: after a good
// Procrustes fit each dummy sits close to exactly one fragment point, so
// an independent nearest lookup per dummy recovers the correspondence
// without an assignment solve.
func transferTags(u *chem.BuildingUnit, frag topology.Fragment) {
	for _, idx := range u.Dummies() {
		n, _ := geom.Nearest(frag.Points, u.Atoms[idx].Position)
		if n < 0 {
			continue
		}
		u.Atoms[idx].Tag = frag.Tags[n]
	}
}
