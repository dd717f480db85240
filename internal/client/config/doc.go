// Package config loads runtime configuration for the mediahub CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. MEDIAHUB_API_URL for the backend base URL.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   backend base URL
//	-t int      request timeout (seconds)
//	-d string   local database path
//	-k string   storage secret
//	-l string   log level
//	-p int      page size
//	-r float    requests per second
//	-b int      request burst
//
// # JSON schema
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "request_timeout": "30s",
//	  "database_path": "mediahub.db",
//	  "storage_secret": "",
//	  "log_level": "warn",
//	  "page_size": 10,
//	  "max_upload_size": 10485760,
//	  "rate_limit": 0,
//	  "rate_burst": 1,
//	  "storage": {
//	    "bucket": "media",
//	    "region": "us-east-1",
//	    "endpoint": "http://127.0.0.1:9000",
//	    "access_key": "admin",
//	    "secret_key": "secretpassword",
//	    "prefix": "backup"
//	  }
//	}
package config
