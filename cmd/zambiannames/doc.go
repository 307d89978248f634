// Command zambiannames scrapes the A to Z listings of Zambian names into one
// Markdown checklist.
//
// Flow:
//   - Partitions: one page per letter, built from scrape.url_template.
//   - Fetching: every letter gets its own goroutine, but only scrape.concurrency
//     (default 5) hold a fetch slot at once. Each slot opens an isolated browser
//     session (headless Chrome via chromedp, or a plain colly fetch with
//     browser.engine=static).
//   - Failures stay per letter: navigation errors and panics become error
//     outcomes, a selector that never appears becomes a timeout and leaves
//     error_page_<LETTER>.png in artifacts.dir (or the GCS bucket).
//   - Output: letters with names become "## ..." sections of "- [ ] name" items.
//     When the target exists the document is written next to it with a
//     _YYYYMMDD-HHMMSS suffix. A run that finds nothing writes nothing.
//
// Configuration comes from --config (YAML) and ZAMBIANNAMES_* environment
// variables, e.g. ZAMBIANNAMES_SCRAPE_CONCURRENCY=3 or
// ZAMBIANNAMES_BROWSER_ENGINE=static. Set metrics.textfile to dump the run's
// Prometheus metrics for a node_exporter textfile collector.
//
// Usage:
//
//	zambiannames [--config config.yaml] [output-file]
package main
