package assembly

import (
	"github.com/topoforge/topoforge/pkg/chem"
	"github.com/topoforge/topoforge/pkg/errors"
	"github.com/topoforge/topoforge/pkg/geom"
	"github.com/topoforge/topoforge/pkg/topology"
)

// originEps is the threshold below which a fragment centroid is treated
// as sitting on the topology's global origin, where no radial scaling
// direction exists and the isotropic fallback applies.
const originEps = 1e-6

// Align superimposes a building unit onto a topology slot and returns the
// per-slot result together with the slot's anisotropic scale estimate.
//
// Both inputs are copied; neither the slot's fragment nor the unit
// template is mutated. The returned unit is centered on the origin,
// rotated into the slot frame by the orthogonal Procrustes solution over
// its connection points, and tagged with the slot's connection indices.
//
// The scale estimate is 2 × mean(unit connection radius / fragment point
// radius) along the normalized fragment-centroid direction. The fragment,
// not the unit, is the side that gets stretched before rotation fitting:
// the topology frame is the generic, per-slot editable geometry, while
// the unit is a fixed rigid template.
func Align(slot topology.Slot, unit *chem.BuildingUnit) (*AlignedFragment, error) {
	u := unit.Copy()
	frag := slot.Fragment.Clone()

	// Center both point sets, keeping the fragment's pre-translation
	// centroid: it encodes the slot position and the radial direction
	// scaling should favor.
	fragCentroid, err := geom.Centroid(frag.Points)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDegenerateGeometry, err, "slot %d fragment", slot.Index)
	}
	geom.Translate(frag.Points, fragCentroid.Scale(-1))

	positions := u.Positions()
	unitCentroid, err := geom.Centroid(positions)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidUnit, err, "unit %q", u.Name)
	}
	geom.Translate(positions, unitCentroid.Scale(-1))
	if err := u.SetPositions(positions); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "recenter unit %q", u.Name)
	}

	// The unit's connection-point subset carries the correspondence.
	dummies := u.Dummies()
	if len(dummies) == 0 {
		return nil, errors.New(errors.ErrCodeShapeMismatch,
			"unit %q has no connection points", u.Name)
	}
	if len(dummies) != len(frag.Points) {
		return nil, errors.New(errors.ErrCodeShapeMismatch,
			"unit %q has %d connection points but slot %d expects %d",
			u.Name, len(dummies), slot.Index, len(frag.Points))
	}
	connection := make([]geom.Vec3, len(dummies))
	for i, idx := range dummies {
		connection[i] = u.Atoms[idx].Position
	}

	scale, err := scaleEstimate(slot.Index, connection, frag.Points, fragCentroid)
	if err != nil {
		return nil, err
	}

	// Stretch the fragment to the unit's size class, then fit the
	// rotation over the equal-cardinality correspondence.
	geom.ScaleEach(frag.Points, scale)
	rot, err := geom.Rotation(connection, frag.Points)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "slot %d rotation fit", slot.Index)
	}

	// Rotate every atom, not just the connection points, preserving the
	// unit's internal rigidity.
	rotated := u.Positions()
	rot.ApplyAll(rotated)
	if err := u.SetPositions(rotated); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "rotate unit %q", u.Name)
	}

	// Tagging is the final permitted mutation of the aligned unit.
	transferTags(u, frag)

	return &AlignedFragment{
		SlotIndex: slot.Index,
		Unit:      u,
		Centroid:  fragCentroid,
		Offsets:   slot.Fragment.Clone().Centered(),
		Scale:     scale,
	}, nil
}

// scaleEstimate computes the slot's 3-component anisotropic scale vector:
// an isotropic magnitude from the size ratio of the two point sets, times
// the slot's radial direction.
func scaleEstimate(slotIndex int, connection, fragPoints []geom.Vec3, fragCentroid geom.Vec3) (geom.Vec3, error) {
	unitSizes := geom.Norms(connection)
	fragSizes := geom.Norms(fragPoints)

	var ratioSum float64
	for i := range unitSizes {
		if fragSizes[i] < originEps {
			// A fragment point on its own centroid has no radius; the
			// size ratio is undefined and must fail rather than divide
			// by zero.
			return geom.Vec3{}, errors.New(errors.ErrCodeDegenerateGeometry,
				"slot %d fragment point %d coincides with the fragment centroid", slotIndex, i)
		}
		ratioSum += unitSizes[i] / fragSizes[i]
	}
	magnitude := 2 * ratioSum / float64(len(unitSizes))

	direction, ok := fragCentroid.Normalize(originEps)
	if !ok {
		// Slot at the global origin (a central node): no radial
		// direction exists, scale isotropically.
		direction = geom.IsotropicDirection()
	}
	return direction.Scale(magnitude), nil
}
