// Package file loads prsync configuration from a TOML file, overlaid with
// environment variables and an optional .env file.
//
// Keys use dot notation for tables, e.g.
//
//	[sync]
//	load_type = "incremental"
//	repos = ["octo/cat", "octo/dog"]
//	period = "1d"
//
//	[database]
//	driver = "sqlite"
//	dsn = "prsync.db"
package file
