// Package backend is the client for the Frame ingestion API: uploading a
// source video to storage, requesting frame processing, issuing API keys, and
// reading processed videos back.
//
// Every non-2xx response becomes an *APIError whose message is the response
// detail (a string, or the joined msg fields of a validation error list) or
// "HTTP <status>" when no detail is present. APIError matches
// services.ErrBackend for 5xx responses and services.ErrTransport otherwise.
package backend
