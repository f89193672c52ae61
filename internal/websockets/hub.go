package websockets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrFollowDenied is returned when a client may not follow a restaurant
var ErrFollowDenied = errors.New("not allowed to follow this restaurant")

// FollowPolicy decides whether a user who is not an administrator manages a
// restaurant and may follow its reservation feed
type FollowPolicy interface {
	ManagesRestaurant(ctx context.Context, userID, restaurantID uuid.UUID) (bool, error)
}

// Hub tracks connected clients and the restaurant channels they follow
type Hub struct {
	clients map[*Client]bool

	policy FollowPolicy

	register chan *Client

	unregister chan *Client

	restaurantChannels map[string]map[*Client]bool

	mu sync.Mutex
}

// NewHub creates a hub. Without a policy only admin clients may follow
// restaurants.
func NewHub(policy FollowPolicy) *Hub {
	return &Hub{
		policy:             policy,
		register:           make(chan *Client),
		unregister:         make(chan *Client),
		clients:            make(map[*Client]bool),
		restaurantChannels: make(map[string]map[*Client]bool),
	}
}

// CanFollow checks whether a client of clientType owned by userID may follow
// restaurantID. Admin clients follow any restaurant, other users only the
// restaurants they manage.
func (h *Hub) CanFollow(ctx context.Context, userID string, clientType ClientType, restaurantID string) error {
	if clientType == ClientTypeAdmin {
		return nil
	}
	if h.policy == nil {
		return ErrFollowDenied
	}

	uid, err := uuid.Parse(userID)
	if err != nil {
		return ErrFollowDenied
	}
	rid, err := uuid.Parse(restaurantID)
	if err != nil {
		return ErrFollowDenied
	}

	manages, err := h.policy.ManagesRestaurant(ctx, uid, rid)
	if err != nil {
		return fmt.Errorf("failed to check restaurant access: %w", err)
	}
	if !manages {
		return ErrFollowDenied
	}
	return nil
}

// Follow subscribes client to restaurantID once CanFollow allows it
func (h *Hub) Follow(ctx context.Context, client *Client, restaurantID string) error {
	if err := h.CanFollow(ctx, client.userID, client.clientType, restaurantID); err != nil {
		return err
	}

	h.subscribe(client, restaurantID)
	return nil
}

// subscribe adds client to the channel of a restaurant
func (h *Hub) subscribe(client *Client, restaurantID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.restaurantChannels[restaurantID]; !ok {
		h.restaurantChannels[restaurantID] = make(map[*Client]bool)
	}
	h.restaurantChannels[restaurantID][client] = true
}

// BroadcastToRestaurant sends message to every subscriber of a restaurant.
// Subscribers whose buffers are full are dropped.
func (h *Hub) BroadcastToRestaurant(restaurantID string, message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.restaurantChannels[restaurantID]
	if !ok {
		return
	}

	for client := range clients {
		select {
		case client.send <- message:
		default:
			h.drop(client)
		}
	}
}

// Publish encodes payload as a message of msgType on a restaurant channel
func (h *Hub) Publish(restaurantID uuid.UUID, msgType MessageType, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", msgType, err)
	}

	message, err := json.Marshal(Message{
		Type:         msgType,
		Data:         data,
		RestaurantID: restaurantID.String(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode %s message: %w", msgType, err)
	}

	h.BroadcastToRestaurant(restaurantID.String(), message)
	return nil
}

// Subscribers returns how many clients follow a restaurant
func (h *Hub) Subscribers(restaurantID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.restaurantChannels[restaurantID])
}

// drop closes a client's queue and forgets it. Callers hold h.mu.
func (h *Hub) drop(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)

	for id, clients := range h.restaurantChannels {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.restaurantChannels, id)
		}
	}
}

// Run processes registrations until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			h.drop(client)
			h.mu.Unlock()
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				h.drop(client)
			}
			h.mu.Unlock()
			logrus.Info("WebSocket hub stopped")
			return
		}
	}
}
