// Package domain models geotagged hazard detections for the Alberta hazard map.
//
// # Data Sources
//
// Wildfire detections originate from the NASA FIRMS (Fire Information for
// Resource Management System) country API, which serves near-real-time VIIRS
// satellite detections as CSV, one row per fire pixel. The service pulls the
// Canada feed on a schedule and keeps only rows inside the Alberta bounding
// box. Abandoned-well records come from the Alberta Energy Regulator dataset;
// their bulk import is external glue, but they share the detection shape so
// one store and one clustering path serve both.
//
// # FIRMS CSV Conventions
//
// Coordinates:
//
//	"latitude" and "longitude" are decimal degrees as strings, e.g.
//	"53.9169" / "-116.6275".
//
// Acquisition time:
//
//	"acq_date" is YYYY-MM-DD and "acq_time" is HHMM in 24-hour UTC,
//	e.g. "2025-05-14" + "0942". Combined into a single UTC timestamp.
//
// Fire size:
//
//	FIRMS reports per-pixel scan and track dimensions, not a measured fire
//	area. A VIIRS pixel is roughly 375m x 375m, about 0.14 hectares, so the
//	size estimate is 0.14 * scan * track. This is an approximation of the
//	detected hot spot footprint, not a measurement of the fire.
//
// Confidence:
//
//	"confidence" is the VIIRS detection confidence class (low/nominal/high).
//	Carried through as an attribute, not interpreted.
//
// # ID Generation
//
// Detection IDs follow the upstream scheme
//
//	FIRMS-<acq_date>-<lat prefix>-<lon prefix>
//
// where the prefixes are the raw latitude and longitude strings truncated to
// 6 and 7 characters. Re-ingesting the same feed row always yields the same
// ID, which is what makes upserts idempotent. The truncation means two
// genuinely distinct detections on the same day within roughly a kilometre of
// each other can collide and merge into one record; the upstream precision
// choice is preserved here rather than second-guessed. See [FireID].
package domain
