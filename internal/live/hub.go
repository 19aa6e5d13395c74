package live

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/RichardBrown384/riscos-artworks-viewer/internal/engine"
)

// SceneLoader returns the current shaded scene of a document and its
// revision.
type SceneLoader func(documentID string) (*engine.Scene, int32, error)

type Room struct {
	documentID string
	clients    map[string]*Client // viewerID -> client
}

func NewRoom(documentID string) *Room {
	return &Room{
		documentID: documentID,
		clients:    make(map[string]*Client),
	}
}

// Hub fans rendered scenes out to everyone viewing a document.
type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]*Room // documentID -> room
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once
	loader     SceneLoader
}

// NewHub creates a hub. When loader is non-nil, new viewers are sent the
// document's current scene right after the welcome message.
func NewHub(loader SceneLoader) *Hub {
	return &Hub{
		rooms:      make(map[string]*Room),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		loader:     loader,
	}
}

// Run processes joins and leaves until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-h.done:
			h.closeAll()
			return
		}
	}
}

// Stop disconnects every viewer and ends Run.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.closeSend()
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish sends a new scene for documentID to all of its viewers.
func (h *Hub) Publish(documentID string, revision int32, scene *engine.Scene) {
	msg, err := sceneMessage(documentID, revision, scene)
	if err != nil {
		slog.Error("marshal scene", "document", documentID, "error", err)
		return
	}
	n := h.broadcastToRoom(documentID, msg, "")
	slog.Debug("scene published", "document", documentID, "revision", revision, "viewers", n)
}

// ViewerCount reports how many viewers are connected to documentID.
func (h *Hub) ViewerCount(documentID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if room, ok := h.rooms[documentID]; ok {
		return len(room.clients)
	}
	return 0
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.DocumentID]
	if !ok {
		room = NewRoom(client.DocumentID)
		h.rooms[client.DocumentID] = room
	}
	room.clients[client.ViewerID] = client
	viewers := len(room.clients)
	h.mu.Unlock()

	welcome, _ := json.Marshal(WelcomePayload{ViewerID: client.ViewerID, Viewers: viewers})
	client.Send(&Message{
		Type:       TypeWelcome,
		DocumentID: client.DocumentID,
		ViewerID:   client.ViewerID,
		Payload:    welcome,
	})
	h.sendScene(client)

	h.broadcastViewers(client.DocumentID, viewers, client.ViewerID)

	slog.Info("viewer joined", "user", client.UserID, "document", client.DocumentID, "viewers", viewers)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.DocumentID]
	if !ok || room.clients[client.ViewerID] != client {
		h.mu.Unlock()
		return
	}

	delete(room.clients, client.ViewerID)
	client.closeSend()
	viewers := len(room.clients)

	if viewers == 0 {
		delete(h.rooms, client.DocumentID)
	}
	h.mu.Unlock()

	h.broadcastViewers(client.DocumentID, viewers, "")

	slog.Info("viewer left", "user", client.UserID, "document", client.DocumentID, "viewers", viewers)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, room := range h.rooms {
		for _, c := range room.clients {
			c.closeSend()
		}
		delete(h.rooms, id)
	}
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	switch msg.Type {
	case TypeSceneRequest:
		h.sendScene(sender)
	default:
		slog.Warn("unknown message type", "type", msg.Type, "viewer", sender.ViewerID)
		sender.sendError("unknown message type " + msg.Type)
	}
}

func (h *Hub) sendScene(client *Client) {
	if h.loader == nil {
		return
	}
	scene, revision, err := h.loader(client.DocumentID)
	if err != nil {
		slog.Error("load scene", "document", client.DocumentID, "error", err)
		client.sendError("could not load document")
		return
	}
	msg, err := sceneMessage(client.DocumentID, revision, scene)
	if err != nil {
		slog.Error("marshal scene", "document", client.DocumentID, "error", err)
		return
	}
	client.Send(msg)
}

func (h *Hub) broadcastViewers(documentID string, viewers int, excludeViewerID string) {
	payload, _ := json.Marshal(ViewersPayload{Viewers: viewers})
	h.broadcastToRoom(documentID, &Message{
		Type:       TypeViewersChanged,
		DocumentID: documentID,
		Payload:    payload,
	}, excludeViewerID)
}

func (h *Hub) broadcastToRoom(documentID string, msg *Message, excludeViewerID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	room, ok := h.rooms[documentID]
	if !ok {
		return 0
	}

	n := 0
	for id, c := range room.clients {
		if id != excludeViewerID {
			c.Send(msg)
			n++
		}
	}
	return n
}

func sceneMessage(documentID string, revision int32, scene *engine.Scene) (*Message, error) {
	payload, err := json.Marshal(scene)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:       TypeSceneUpdate,
		DocumentID: documentID,
		Revision:   revision,
		Payload:    payload,
	}, nil
}
