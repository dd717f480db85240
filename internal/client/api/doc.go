// Package api describes the media backend's HTTP surface from the client's
// point of view.
//
// # Overview
//
// The package provides:
//  1. Request building (Build) that turns a logical intent (path, method,
//     bearer token, optional body) into an immutable RequestDescriptor.
//  2. Response normalisation (Normalize) that wraps whatever the transport
//     returned into a uniform Envelope, unwrapping the backend's
//     {statusCode, response, message} convention.
//  3. Endpoint path templates and the identifiers the query cache uses to
//     group entries (EndpointMediaList, EndpointMediaItem).
//  4. Multipart payloads for file uploads (Multipart, FilePart).
//
// Nothing here performs I/O. Transports live in package client.
package api
