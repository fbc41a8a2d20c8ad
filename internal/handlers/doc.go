// Package handlers implements the HTTP boundary of the gallery viewer.
//
// Handlers translate requests into calls on the gallery service and map
// its error taxonomy onto HTTP status codes: invalid filenames become
// 403, missing files 404, extension mismatches 400, and scan or
// thumbnail failures 500. Error bodies carry an error/message JSON pair.
package handlers
