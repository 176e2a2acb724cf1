// Package api exposes the explorer over HTTP.
//
// Routes live under /api and mirror the browser client's calls: upload a
// recording, diarize it, extract voiceprints for individual segments, then
// project or recluster the collected entries. The session a request acts on
// is carried in a signed token, set as the sid cookie on upload and also
// accepted in the X-Session-Token header.
package api
