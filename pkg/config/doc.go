// Package config provides configuration management for the rdl toolchain.
//
// Configuration is read from a YAML file, completed with defaults, and
// overridden by environment variables before it is validated.
//
// # Configuration Loading
//
//	cfg, err := config.LoadConfig("rdl.yaml")
//	cfg, err := config.LoadConfigWithEnvOverrides("rdl.yaml")
//
// LoadConfigWithEnvOverrides also accepts an empty path, in which case the
// defaults returned by NewDefault are used as the base.
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention RDL_SECTION_FIELD:
//
//   - RDL_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - RDL_HISTORY_SQLITE_PATH overrides history.sqlite.path
//   - RDL_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// Git credentials may reference the environment directly, for example
// token: "${GITHUB_TOKEN}".
//
// # Singleton Pattern
//
//	if err := config.Initialize("rdl.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//	cfg := config.GetConfig()
//
// # Example Configuration
//
//	parser:
//	  max_depth: 64
//
//	schemas:
//	  stock: "schemas/stock.schema"
//
//	documents:
//	  bindings:
//	    - pattern: "quotes/*.rdl"
//	      schema: "stock"
//
//	history:
//	  backend: "sqlite"
//	  sqlite:
//	    path: "data/history.db"
//	  retention:
//	    days: 14
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "console"
package config
