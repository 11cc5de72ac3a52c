// Package metrics records pipeline timings and outcomes.
//
// Components receive a Recorder and call it unconditionally. NoopRecorder is
// the default; PrometheusRecorder is used when metrics.textfile is set in the
// configuration, and its registry is written once at the end of the run in
// the node-exporter textfile format:
//
//	reg := prometheus.NewRegistry()
//	rec := metrics.NewPrometheusRecorder(reg)
//	// ... run the pipeline with rec ...
//	err := metrics.WriteTextfile(path, reg)
package metrics
