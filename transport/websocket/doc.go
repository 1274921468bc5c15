// Package websocket streams live session updates to browser and bot clients.
//
// A central Hub owns every connection. Clients subscribe to one session with
// GET /ws?session=ID; the first frame is the current state, followed by one
// JSON frame per update:
//
//	{"session_id":"ab12","type":"state","game_state":{...}}
//	{"session_id":"ab12","type":"event","event":{"type":"match","word":"CPU",...}}
//
// State frames arrive on every clock tick and after every gameplay call;
// event frames carry engine events in the order they happened. Inbound frames
// are ignored; clients act through the REST API.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//	svc := service.NewGameService(sessions, configs, service.WithPublisher(hub))
//
// Clients whose send buffer fills up are disconnected rather than allowed to
// stall other subscribers.
package websocket
