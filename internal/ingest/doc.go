// Package ingest loads dataset description files and writes them into an
// MzLite store.
//
// A dataset file is YAML, JSON or CUE (chosen by extension) with the same
// snake_case field names in every format. Unknown fields are rejected.
// Parameter values carry their kind explicitly:
//
//	spectra:
//	  - id: scan=1
//	    run: run1
//	    params:
//	      cv:
//	        - accession: MS:1000511
//	          value: {type: Int32, value: 2}
//	    peaks:
//	      compression: Zstd
//	      mz: [100.1, 200.2]
//	      intensity: [10, 20]
//
// Spectra and chromatograms without an ID get one from the IDGenerator.
package ingest
