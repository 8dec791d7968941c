package websocket

import (
	"companion-counselling-be/internal/entity"

	"github.com/gofiber/websocket/v2"
)

// ServeWs registers the connection and blocks until the peer goes away.
func ServeWs(hub *Hub, c *websocket.Conn, recipient entity.Recipient) {
	client := NewClient(hub, c, recipient)
	hub.Register(client)

	go client.writePump()
	client.readPump()
}
