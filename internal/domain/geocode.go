package domain

import (
	"context"
	"log/slog"
)

// BackfillResult counts the outcome of a coordinate backfill run.
type BackfillResult struct {
	Attempted int
	Resolved  int
	Failed    int
}

// BackfillCoordinates forward-geocodes hotspots whose sampling rows carried no
// usable coordinates. A nil geocoder is a no-op. Failures leave the hotspot
// without coordinates (reported as 0,0) and never abort the run.
func BackfillCoordinates(ctx context.Context, c *Census, geocoder Geocoder, logger *slog.Logger) BackfillResult {
	var res BackfillResult
	if geocoder == nil {
		return res
	}

	for _, h := range c.OrderedHotspots() {
		if h.Coords != nil || h.Name == "" {
			continue
		}
		if ctx.Err() != nil {
			return res
		}
		res.Attempted++

		result, err := geocoder.ForwardGeocode(ctx, h.Name, h.StateCode)
		if err != nil {
			logger.Warn("forward geocoding failed",
				"hotspot_id", h.ID,
				"hotspot", h.Name,
				"state", h.StateCode,
				"error", err,
			)
			res.Failed++
			continue
		}
		if result.Lat == 0 && result.Lon == 0 {
			logger.Debug("no geocoding match", "hotspot_id", h.ID, "hotspot", h.Name)
			continue
		}
		h.Coords = &Geo{Lat: result.Lat, Lon: result.Lon}
		res.Resolved++
	}
	return res
}
