// Package bridge connects the host to the browser tab that renders the game.
// It answers the overlay's token requests and forwards SDK calls to the tab.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/ahmetkoprulu/rtrp/arcade/common/utils"
	"github.com/ahmetkoprulu/rtrp/arcade/internal/expense"
	"github.com/ahmetkoprulu/rtrp/arcade/internal/metrics"
	"github.com/ahmetkoprulu/rtrp/arcade/models"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var (
	ErrNoClient   = errors.New("no browser connected")
	ErrClientGone = errors.New("browser disconnected")
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// UserTokenFunc returns the persisted end-user token, "" when absent.
type UserTokenFunc func() string

// Hub tracks connected tabs. Requests go to the most recently connected one.
type Hub struct {
	clients    map[string]*Client
	latest     *Client
	seq        uint64
	register   chan *Client
	unregister chan *Client
	stopped    chan struct{}
	mu         sync.RWMutex

	pending map[string]chan *Reply
	pmu     sync.Mutex

	userToken UserTokenFunc
}

var (
	_ expense.Overlay = (*Hub)(nil)
	_ expense.SDK     = (*Hub)(nil)
)

func NewHub(userToken UserTokenFunc) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stopped:    make(chan struct{}),
		pending:    make(map[string]chan *Reply),
		userToken:  userToken,
	}
}

// Run owns client registration until ctx is done. It must run exactly once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, client := range h.clients {
				client.close()
				delete(h.clients, id)
				metrics.BridgeDisconnected()
			}
			h.latest = nil
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.seq++
			client.seq = h.seq
			h.clients[client.ID] = client
			h.latest = client
			h.mu.Unlock()
			metrics.BridgeConnected()
			utils.Logger.Info("Bridge client connected", zap.String("client_id", client.ID))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				client.close()
				if h.latest == client {
					h.latest = h.newestClient()
				}
				metrics.BridgeDisconnected()
			}
			h.mu.Unlock()
			utils.Logger.Info("Bridge client disconnected", zap.String("client_id", client.ID))
		}
	}
}

// newestClient returns the remaining tab that connected last. Callers hold mu.
func (h *Hub) newestClient() *Client {
	var newest *Client
	for _, other := range h.clients {
		if newest == nil || other.seq > newest.seq {
			newest = other
		}
	}
	return newest
}

func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		utils.Logger.Error("Failed to upgrade connection", zap.Error(err))
		return
	}

	client := &Client{
		ID:   uuid.New().String(),
		Conn: conn,
		hub:  h,
		send: make(chan []byte, 64),
		done: make(chan struct{}),
	}

	select {
	case h.register <- client:
	case <-h.stopped:
		conn.Close()
		return
	}

	go client.readPump()
	go client.writePump()
}

func (h *Hub) active() *Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.latest
}

// call sends a request to the active tab and waits for its reply, the tab
// going away, or ctx.
func (h *Hub) call(ctx context.Context, messageType MessageType, payload interface{}) (*Reply, error) {
	client := h.active()
	if client == nil {
		return nil, fmt.Errorf("%w: %w", expense.ErrSDKNotLoaded, ErrNoClient)
	}

	request := Request{Type: messageType, RequestID: uuid.New().String(), Payload: payload}
	data, err := json.Marshal(request)
	if err != nil {
		return nil, err
	}

	replies := make(chan *Reply, 1)
	h.pmu.Lock()
	h.pending[request.RequestID] = replies
	h.pmu.Unlock()
	defer func() {
		h.pmu.Lock()
		delete(h.pending, request.RequestID)
		h.pmu.Unlock()
	}()

	if err := client.enqueue(data); err != nil {
		return nil, err
	}

	select {
	case reply := <-replies:
		if reply.Error != "" {
			return reply, fmt.Errorf("%s failed: %s", messageType, reply.Error)
		}
		return reply, nil
	case <-client.done:
		return nil, ErrClientGone
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (h *Hub) deliver(reply *Reply) bool {
	h.pmu.Lock()
	replies, ok := h.pending[reply.RequestID]
	h.pmu.Unlock()
	if !ok {
		return false
	}

	select {
	case replies <- reply:
	default:
	}
	return true
}

func (h *Hub) tokenMessage() UserTokenMessage {
	message := UserTokenMessage{Type: MessageTypeUserToken}
	if h.userToken != nil {
		if token := h.userToken(); token != "" {
			message.UserToken = &token
		}
	}
	return message
}

func (h *Hub) Loaded(ctx context.Context) (bool, error) {
	reply, err := h.call(ctx, MessageTypeSDKStatus, nil)
	if err != nil {
		return false, err
	}
	return reply.Loaded, nil
}

func (h *Hub) Load(ctx context.Context, scriptURL string) error {
	_, err := h.call(ctx, MessageTypeSDKLoad, sdkLoadPayload{Src: scriptURL})
	return err
}

func (h *Hub) Init(ctx context.Context, options expense.InitOptions) error {
	_, err := h.call(ctx, MessageTypeInit, options)
	return err
}

func (h *Hub) Open(ctx context.Context, approvalLink string) (models.FeeStatus, error) {
	reply, err := h.call(ctx, MessageTypeOpenOverlay, openOverlayPayload{URL: approvalLink})
	if err != nil {
		return "", err
	}
	return reply.Status, nil
}

func (h *Hub) RequestExpense(ctx context.Context, request models.FeeRequest) (*models.FeeResult, error) {
	reply, err := h.call(ctx, MessageTypeRequestExpense, request)
	if err != nil {
		return nil, err
	}
	return &models.FeeResult{Status: reply.Status, IntentID: reply.IntentID}, nil
}
