// Package server holds the configuration of the report HTTP server.
package server
