package websockets

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait = 10 * time.Second

	pongWait = 60 * time.Second

	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 64 * 1024

	followTimeout = 5 * time.Second
)

type MessageType string

const (
	TypeReservationNew    MessageType = "reservation.new"
	TypeReservationUpdate MessageType = "reservation.update"
	TypeReservationDelete MessageType = "reservation.delete"
	TypeSubscribe         MessageType = "restaurant.subscribe"
	TypeSubscribed        MessageType = "restaurant.subscribed"
	TypeError             MessageType = "error"
	TypePing              MessageType = "ping"
	TypePong              MessageType = "pong"
)

type ClientType string

const (
	ClientTypeAdmin ClientType = "admin"
	ClientTypeUser  ClientType = "user"
)

// Valid reports whether t is a known client type
func (t ClientType) Valid() bool {
	return t == ClientTypeAdmin || t == ClientTypeUser
}

type Message struct {
	Type         MessageType     `json:"type"`
	Data         json.RawMessage `json:"data,omitempty"`
	RestaurantID string          `json:"restaurant_id,omitempty"`
}

type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	userID string

	clientType ClientType
}

func NewClient(hub *Hub, conn *websocket.Conn, userID string, clientType ClientType) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, 256),
		userID:     userID,
		clientType: clientType,
	}
}

func (c *Client) log() *logrus.Entry {
	return logrus.WithFields(logrus.Fields{
		"user_id":     c.userID,
		"client_type": c.clientType,
	})
}

// reply queues a message for this client only
func (c *Client) reply(msg Message) {
	encoded, err := json.Marshal(msg)
	if err != nil {
		c.log().WithError(err).Error("Failed to encode reply")
		return
	}

	select {
	case c.send <- encoded:
	default:
		c.log().Warn("Dropping reply, send buffer full")
	}
}

func (c *Client) replyError(text string) {
	data, _ := json.Marshal(map[string]string{"error": text})
	c.reply(Message{Type: TypeError, Data: data})
}

func (c *Client) follow(restaurantID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), followTimeout)
	defer cancel()

	return c.hub.Follow(ctx, c, restaurantID)
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log().WithError(err).Warn("WebSocket closed unexpectedly")
			}
			break
		}

		var wsMessage Message
		if err := json.Unmarshal(message, &wsMessage); err != nil {
			c.replyError("message must be a JSON object")
			continue
		}

		switch wsMessage.Type {
		case TypeSubscribe:
			if _, err := uuid.Parse(wsMessage.RestaurantID); err != nil {
				c.replyError("restaurant_id must be a valid UUID")
				continue
			}
			if err := c.follow(wsMessage.RestaurantID); err != nil {
				if errors.Is(err, ErrFollowDenied) {
					c.replyError(err.Error())
				} else {
					c.log().WithError(err).Error("Failed to subscribe")
					c.replyError("could not subscribe")
				}
				continue
			}
			c.reply(Message{Type: TypeSubscribed, RestaurantID: wsMessage.RestaurantID})

		case TypePing:
			c.reply(Message{Type: TypePong})

		default:
			c.replyError("unsupported message type: " + string(wsMessage.Type))
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWs registers a connection with the hub and starts its pumps. A
// non-empty restaurantID subscribes the client straight away; callers check
// it with CanFollow first.
func ServeWs(hub *Hub, conn *websocket.Conn, userID string, clientType ClientType, restaurantID string) {
	client := NewClient(hub, conn, userID, clientType)

	client.hub.register <- client
	if restaurantID != "" {
		hub.subscribe(client, restaurantID)
	}

	go client.writePump()
	go client.readPump()
}
