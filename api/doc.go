// Package api exposes the game service over a JSON REST API built on gorilla/mux.
//
// Endpoints:
//
// Sessions:
//   - POST   /api/sessions              create a session {"config_id": "classic"}
//   - GET    /api/sessions              list (sort=created|accessed, order, limit)
//   - GET    /api/sessions/{id}         session info with current state
//   - DELETE /api/sessions/{id}         delete and stop its clock
//
// Lifecycle:
//   - POST /api/sessions/{id}/start     Idle to Countdown
//   - POST /api/sessions/{id}/restart   new round from any phase
//
// Gameplay (Playing only, 409 otherwise):
//   - POST /api/sessions/{id}/select       {"row": 0, "col": 1}
//   - POST /api/sessions/{id}/select-path  {"cells": [{"row":0,"col":0},...], "submit": true}
//   - POST /api/sessions/{id}/backspace
//   - POST /api/sessions/{id}/clear
//   - POST /api/sessions/{id}/submit
//
// Inspection:
//   - GET /api/sessions/{id}/state
//   - GET /api/sessions/{id}/history   page, limit, order
//   - GET /api/sessions/{id}/hints     max_len
//
// Configuration and results:
//   - GET  /api/configs, GET /api/configs/{name}, POST /api/configs
//   - GET  /api/leaderboard?limit=N
//   - GET  /api/health
//
// WebSocket:
//   - GET /ws?session={id}   live state and event stream, see package websocket
//
// Errors are returned as {"error": "..."} with 400 for bad input, 404 for
// unknown sessions or configs, 409 for calls made in the wrong phase and 500
// otherwise.
package api
