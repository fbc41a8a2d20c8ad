// Package startup handles application configuration and startup logging.
//
// Configuration is read from environment variables (with a .env file
// auto-loaded when present), validated, and resolved into absolute
// paths. The package also provides the structured startup/shutdown log
// output and mux route walking used by main.
package startup
