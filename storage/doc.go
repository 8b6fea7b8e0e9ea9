// Package storage persists pipeline results to the filesystem so finished
// runs can be listed, reloaded and replayed later.
//
// Layout, under the store's base directory:
//
//	pipeline_<id>/result.json   full record of one run
//	pipeline_index.json         summary row per run, for listing
//
// Store implements pipeline.ResultStore, so it plugs straight into
// pipeline.Options.Store; every finished run is then saved automatically.
// Saving writes the full record first and the index entry second, both via
// temp-file-and-rename, so readers never see partial JSON. The index is a
// projection of the records: after a crash between the two writes, Load
// still finds the record while List lags one Save behind.
//
// Load returns ErrNotFound for unknown ids. Delete removes the whole run
// directory, collected task files included, and reports whether anything
// existed.
package storage
