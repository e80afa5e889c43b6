// Package config defines the argus configuration model and loading.
//
// Configuration is read from a YAML file, filled with defaults, then
// optionally overridden by ARGUS_* environment variables, and finally
// validated. Environment variables always win over file values.
package config
