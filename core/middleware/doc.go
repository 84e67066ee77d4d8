// Package middleware groups the Fiber middleware mounted by the start command.
//
//   - auth rejects /api requests whose X-API-Key header does not match
//     server.api_key. An empty key leaves the API open.
//   - rayid tags each request with an id (reusing an incoming X-Ray-ID), stores it
//     in the "ray_id" local for logger.WithRayID and echoes it in the response.
//
// rayid is mounted first so that auth failures are logged with their ray id.
package middleware
