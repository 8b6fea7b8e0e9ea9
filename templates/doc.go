// Package templates provides reusable named pipeline configurations.
//
// Register builders in a Library, or define pipelines in YAML and load them
// with LoadFile:
//
//	pipelines:
//	  nightly:
//	    description: nightly text report
//	    tasks:
//	      - task_id: ingest
//	      - task_id: report
//	        inputs:
//	          heading: $title
//
// Get returns a fresh config per call. Build applies per-task and
// pipeline-wide overrides to a fresh copy, so one template serves many
// variants:
//
//	cfg, err := lib.Build("nightly", &templates.Overrides{
//		Tasks: map[string]templates.TaskOverride{
//			"report": {Settings: map[string]interface{}{"format": "markdown"}},
//		},
//	})
package templates
