// Package config assembles the anchor configuration from its layers.
//
// Precedence, lowest first:
//
//  1. Default values
//  2. A YAML or JSON file (path, http(s) URL or cm://namespace/name)
//  3. ANCHOR_* environment variables
//  4. Command-line flags (applied by pkg/cli)
//
// Example file:
//
//	root: /srv/theme-radar
//	algorithm: sha256
//	concurrency: 8
//	identifier:
//	  kind: daily
//	layout:
//	  logsDir: logs
//	  diagnosticsDir: assets/diagnostic
//	  diagnosticPatterns:
//	    - "{id}/**"
//	    - "{id}_*"
//
// Nothing is inferred from the working directory beyond resolving a
// relative root once at startup.
package config
