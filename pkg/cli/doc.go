// Package cli implements the gkesync command-line interface.
//
// # Overview
//
// gkesync keeps a Go data file of GKE releases in step with the published
// release notes. It is built to run unattended (CI job or Kubernetes CronJob)
// and signals through its exit code whether the data file changed.
//
// # Commands
//
// sync - Run the full pipeline:
//
//	gkesync sync [--dry-run] [--report PATH|-|cm://ns/name] [--format yaml|json|table] [--metrics-file PATH]
//
// Reads the checkpoint from the data file, fetches the release notes, extracts
// the stable-channel content of every newer release, asks the model backend
// for structured entries and splices them at the top of the collection.
//
// checkpoint - Print the newest release recorded in the data file:
//
//	gkesync checkpoint [--artifact PATH]
//
// Prints the identifier, or "none" when nothing is recorded yet.
//
// sections - List the releases a sync would submit:
//
//	gkesync sections [--output PATH] [--format yaml|json|table]
//
// Never contacts the model backend and needs no credential.
//
// # Global Flags
//
//	--config, -c     Config file (.yaml, .yml, .toml)
//	--log-level, -l  Log level: debug, info, warn, error (default: info)
//
// # Configuration Precedence
//
// Built-in defaults, then the config file, then the environment, then flags.
//
// # Environment Variables
//
//	OPENAI_API_KEY   Model backend credential (required by sync)
//	OPENAI_MODEL     Model name (default: gpt-o3)
//	OPENAI_BASE_URL  Model backend base URL
//	LOG_LEVEL        Logging verbosity
//	GKESYNC_CONFIG   Config file path
//
// # Exit Codes
//
//	0   Success, nothing to write
//	2   Fatal error (configuration, fetch, structure, model output)
//	10  Data file modified, or would be under --dry-run
package cli
