package selection

import (
	"fmt"
	"io"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Candidate feature status values
const (
	StatusKept    = "kept"
	StatusRemoved = "removed"
)

// FeatureCollection exports the candidates as GeoJSON line strings from the
// A vertex to the B vertex in the XY plane. Heights are kept as properties.
func (r *CandidateRenderer) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, seg := range r.segments() {
		f := geojson.NewFeature(orb.LineString{
			{seg.a.X, seg.a.Y},
			{seg.b.X, seg.b.Y},
		})
		status := StatusRemoved
		if seg.kept {
			status = StatusKept
		}
		f.Properties["status"] = status
		f.Properties["candidateA"] = string(seg.pair.CandidateA.ClosestVertexID)
		f.Properties["candidateB"] = string(seg.pair.CandidateB.ClosestVertexID)
		f.Properties["zA"] = seg.a.Z
		f.Properties["zB"] = seg.b.Z
		f.Properties["length"] = seg.a.Distance(seg.b)
		fc.Append(f)
	}
	return fc
}

// RenderToGeoJSON writes FeatureCollection as JSON
func (r *CandidateRenderer) RenderToGeoJSON(w io.Writer) error {
	data, err := r.FeatureCollection().MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshaling geojson: %w", err)
	}
	_, err = w.Write(data)
	return err
}
