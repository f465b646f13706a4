// Package config provides centralized configuration for the data
// preparation pipeline: where the raw tables live, where the cleaned
// tables go, how logging behaves and whether runs are recorded.
//
// # Configuration Sources
//
// Configuration is layered from three sources, later sources winning:
//
//	1. Built-in defaults (Default)
//	2. A YAML config file, either given explicitly or found at one of
//	   the usual locations (config.yaml, configs/config.yaml)
//	3. CREDITPREP_* environment variables
//
// # Environment Variables
//
// All environment variables follow the CREDITPREP_<SECTION>_<FIELD>
// pattern:
//
//	CREDITPREP_DATA_DIR=/srv/credit/raw
//	CREDITPREP_OUTPUT_DIR=/srv/credit/processed
//	CREDITPREP_LOGGING_LEVEL=debug
//	CREDITPREP_RUN_STORE_ENABLED=false
//
// # Path Resolution
//
// Relative paths are anchored at the executable directory, never the
// working directory, so scheduled runs resolve the same layout no matter
// where they are launched from. Absolute paths are taken as given.
package config
