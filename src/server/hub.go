package server

import (
	"encoding/json"
	"net/http"
	"time"

	"crypto-compare/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// handleWebsockets is the main Hub loop
func (s *DashboardServer) handleWebsockets() {
	for {
		select {
		case <-s.quit:
			for client := range s.clients {
				delete(s.clients, client)
				close(client.send)
			}
			s.updateConnections()
			return

		case client := <-s.register:
			s.clients[client] = struct{}{}
			s.updateConnections()
			// Send the current view on connect
			client.send <- s.Controller.InitialMessage()

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.send)
				s.updateConnections()
			}

		case d := <-s.direct:
			if _, ok := s.clients[d.client]; ok {
				select {
				case d.client.send <- d.message:
				default:
				}
			}

		case message := <-s.broadcast:
			s.lastUpdate.Store(message.Timestamp)

			// Broadcast to all clients
			for client := range s.clients {
				select {
				case client.send <- message:
				default:
					// Client too slow, disconnect to prevent Hub blocking
					delete(s.clients, client)
					close(client.send)
				}
			}
			s.updateConnections()
		}
	}
}

func (s *DashboardServer) updateConnections() {
	n := len(s.clients)
	s.connections.Store(int64(n))
	s.Metrics.SetWSClients(n)
}

// directMessage is a reply to a single client
type directMessage struct {
	client  *Client
	message models.MViewMessage
}

// -----------------------------------------------------------------------------
// View Publisher Implementation
// -----------------------------------------------------------------------------

// Broadcast queues a message for every connected client. A full queue drops
// the message; the next one carries the complete view anyway.
func (s *DashboardServer) Broadcast(message models.MViewMessage) {
	select {
	case s.broadcast <- message:
	default:
		s.Logger.Warning("Broadcast queue full, dropping %s message", message.Type)
	}
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:  s,
		conn: conn,
		// Buffered channel to prevent blocking the Hub loop
		send: make(chan models.MViewMessage, 64),
	}

	select {
	case s.register <- client:
	case <-s.quit:
		conn.Close()
		return
	}

	// Start goroutines for reading/writing
	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

// HandleClientMessage dispatches one command frame. Frames that are not a
// command close the connection.
func (s *DashboardServer) HandleClientMessage(client *Client, message []byte) {
	var cmd models.MCommand
	if err := json.Unmarshal(message, &cmd); err != nil || cmd.Type == "" {
		s.Logger.Info("Failed to parse client command, disconnecting client")
		client.conn.Close()
		return
	}

	err := s.Controller.Dispatch(s.ctx, cmd)
	if err == nil {
		// The new view reaches the client through the broadcast
		return
	}

	_, notice := commandError(err)
	reply := models.MViewMessage{
		Type:      models.MessageNotice,
		View:      s.Controller.View(),
		Notice:    notice,
		Timestamp: time.Now().Unix(),
	}

	// The hub owns client.send, so the reply goes through it
	select {
	case s.direct <- directMessage{client: client, message: reply}:
	case <-s.quit:
	}
}
