package chat

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"online-chat/internal/auth"
	"online-chat/internal/config"
	"online-chat/internal/presence"
	"online-chat/internal/room"
	"online-chat/internal/security"
	"online-chat/internal/user"
	wsocket "online-chat/internal/websocket"
)

// eventHandler processes one decoded client event for a connection
type eventHandler func(conn *wsocket.Conn, username string, data json.RawMessage)

// Handler binds HTTP routes and WebSocket events to the auth service,
// presence registry and room router. It carries no chat logic of its
// own beyond dispatch.
type Handler struct {
	upgrader    websocket.Upgrader
	hub         *wsocket.Hub
	router      *room.Router
	registry    *presence.Registry
	authService *auth.Service
	users       user.Repository
	config      *config.ServerConfig
	rateLimiter *config.RateLimiter
	validator   *security.InputValidator
	metrics     *config.ServerMetrics
	dispatch    map[string]eventHandler
}

// NewHandler creates the chat gateway and wires the hub's disconnect
// callback to presence cleanup.
func NewHandler(hub *wsocket.Hub, router *room.Router, registry *presence.Registry,
	authService *auth.Service, users user.Repository, cfg *config.ServerConfig,
	metrics *config.ServerMetrics) *Handler {

	h := &Handler{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // อนุญาตทุก origin (สำหรับการพัฒนา)
			},
		},
		hub:         hub,
		router:      router,
		registry:    registry,
		authService: authService,
		users:       users,
		config:      cfg,
		rateLimiter: config.NewRateLimiter(cfg),
		validator:   security.NewInputValidator(cfg),
		metrics:     metrics,
	}

	// Dispatch table: ชื่อ event -> handler พร้อม payload แบบ typed
	h.dispatch = map[string]eventHandler{
		"join":            h.handleJoin,
		"join_room_event": h.handleJoin, // legacy alias
		"create_room":     h.handleCreateRoom,
		"room_message":    h.handleRoomMessage,
		"message":         h.handleRoomMessage, // legacy alias
		"private_message": h.handlePrivateMessage,
		"typing":          h.handleTyping("typing"),
		"stop_typing":     h.handleTyping("stop_typing"),
	}

	hub.SetDisconnectHandler(h.onDisconnect)

	return h
}

// RegisterRoutes mounts all HTTP endpoints
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /register", h.handleRegister)
	mux.HandleFunc("POST /login", h.handleLogin)
	mux.HandleFunc("GET /users", h.handleUsers)
	mux.HandleFunc("GET /online", h.handleOnline)
	mux.HandleFunc("GET /rooms", h.handleRooms)
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("GET /stats", h.handleStats)
	mux.HandleFunc("GET /ws", h.handleWebSocket)
}

// ------------------ HTTP ------------------

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	username, err := h.validator.ValidateUsername(req.Username)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Password == "" {
		writeError(w, http.StatusBadRequest, "password cannot be empty")
		return
	}

	u, err := h.authService.Register(r.Context(), username, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateUsername) {
			writeError(w, http.StatusConflict, "User already exists")
			return
		}
		log.Printf("❌ Register failed for %s: %v", username, err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"id":       u.ID,
		"username": u.Username,
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid username or password")
			return
		}
		log.Printf("❌ Login failed for %s: %v", req.Username, err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *Handler) handleUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		log.Printf("❌ List users failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.Username)
	}
	writeJSON(w, http.StatusOK, map[string][]string{"users": names})
}

func (h *Handler) handleOnline(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"online": h.registry.Usernames()})
}

func (h *Handler) handleRooms(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"rooms": h.router.Rooms()})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"connections": h.hub.Count(),
		"uptime":      time.Since(h.metrics.Snapshot().StartTime).String(),
	})
}

func (h *Handler) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.metrics.Snapshot())
}

// ------------------ WebSocket ------------------

// handleWebSocket verifies the session token, upgrades the connection
// and registers presence before starting the pumps.
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	username, err := h.authService.CurrentUsername(token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid session")
		return
	}

	socket, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("❌ Failed to upgrade connection: %v", err)
		return
	}

	conn := wsocket.NewConn(socket, h.config.SendBuffer)
	if !h.hub.Add(conn) {
		socket.WriteMessage(websocket.TextMessage, []byte(`{"event":"error","data":{"msg":"server full"}}`))
		socket.Close()
		return
	}

	// Session username คือตัวตนของ connection นี้ ตลอดอายุการเชื่อมต่อ
	h.registry.Register(username, conn.ID())
	h.metrics.IncrementUsers()
	log.Printf("🔗 New WebSocket connection: %s as %s (ID: %s)", socket.RemoteAddr(), username, conn.ID())

	go h.writePump(conn)
	go h.readPump(conn, username)
}

// onDisconnect clears presence state after the hub removed a connection
func (h *Handler) onDisconnect(connID string) {
	h.rateLimiter.Forget(connID)
	if username, ok := h.registry.UnregisterConn(connID); ok {
		h.metrics.DecrementUsers()
		log.Printf("👋 %s went offline (ID: %s)", username, connID)
	}
}

// readPump reads client events until the connection drops
func (h *Handler) readPump(conn *wsocket.Conn, username string) {
	socket := conn.Socket()
	defer func() {
		h.hub.Remove(conn.ID())
		log.Printf("🔌 Connection closed: %s (ID: %s)", username, conn.ID())
	}()

	socket.SetReadLimit(int64(h.config.MaxMessageLength) * 4)
	socket.SetReadDeadline(time.Now().Add(h.config.PongTimeout))
	socket.SetPongHandler(func(string) error {
		socket.SetReadDeadline(time.Now().Add(h.config.PongTimeout))
		return nil
	})

	for {
		_, raw, err := socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("❌ WebSocket error from %s: %v", username, err)
			}
			return
		}
		h.dispatchEvent(conn, username, raw)
	}
}

// writePump drains the outbox and keeps the connection alive with pings
func (h *Handler) writePump(conn *wsocket.Conn) {
	socket := conn.Socket()
	ticker := time.NewTicker(h.config.HeartbeatInterval)
	defer func() {
		ticker.Stop()
		socket.Close()
	}()

	for {
		select {
		case payload, ok := <-conn.Outbox():
			socket.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			if !ok {
				socket.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := socket.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			socket.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			if err := socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// dispatchEvent decodes the envelope and routes it through the dispatch
// table. Failures never go back to the client; they are logged and the
// event is dropped.
func (h *Handler) dispatchEvent(conn *wsocket.Conn, username string, raw []byte) {
	var envelope ClientEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		log.Printf("⚠️ Malformed event from %s: %v", username, err)
		return
	}

	handler, known := h.dispatch[envelope.Event]
	if !known {
		log.Printf("⚠️ Unknown event '%s' from %s", envelope.Event, username)
		return
	}

	handler(conn, username, envelope.Data)
}

// ------------------ Event handlers ------------------

func (h *Handler) handleJoin(conn *wsocket.Conn, username string, data json.RawMessage) {
	var evt JoinEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		log.Printf("⚠️ Malformed join from %s: %v", username, err)
		return
	}

	roomName, err := h.validator.ValidateRoomName(evt.Room)
	if err != nil {
		log.Printf("⚠️ Rejected join from %s: %v", username, err)
		return
	}

	if evt.Username != "" && evt.Username != username {
		log.Printf("⚠️ Join username %q ignored, session is %q", evt.Username, username)
	}

	h.router.Join(username, roomName, conn.ID())
}

func (h *Handler) handleCreateRoom(conn *wsocket.Conn, username string, data json.RawMessage) {
	var evt CreateRoomEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		log.Printf("⚠️ Malformed create_room from %s: %v", username, err)
		return
	}

	roomName, err := h.validator.ValidateRoomName(evt.Room)
	if err != nil {
		log.Printf("⚠️ Rejected create_room from %s: %v", username, err)
		return
	}

	h.router.CreateRoom(roomName)
}

func (h *Handler) handleRoomMessage(conn *wsocket.Conn, username string, data json.RawMessage) {
	if !h.rateLimiter.Allow(conn.ID()) {
		log.Printf("⚠️ Rate limit exceeded for %s, dropping message", username)
		return
	}

	var evt RoomMessageEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		log.Printf("⚠️ Malformed room_message from %s: %v", username, err)
		return
	}

	msg, err := h.validator.ValidateMessage(evt.Msg)
	if err != nil {
		log.Printf("⚠️ Rejected room_message from %s: %v", username, err)
		return
	}
	roomName, err := h.validator.ValidateRoomName(evt.Room)
	if err != nil {
		log.Printf("⚠️ Rejected room_message from %s: %v", username, err)
		return
	}

	h.router.BroadcastRoomMessage(username, msg, roomName)
}

func (h *Handler) handlePrivateMessage(conn *wsocket.Conn, username string, data json.RawMessage) {
	if !h.rateLimiter.Allow(conn.ID()) {
		log.Printf("⚠️ Rate limit exceeded for %s, dropping message", username)
		return
	}

	var evt PrivateMessageEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		log.Printf("⚠️ Malformed private_message from %s: %v", username, err)
		return
	}

	msg, err := h.validator.ValidateMessage(evt.Msg)
	if err != nil {
		log.Printf("⚠️ Rejected private_message from %s: %v", username, err)
		return
	}

	h.router.SendPrivate(conn.ID(), username, evt.To, msg)
}

func (h *Handler) handleTyping(event string) eventHandler {
	return func(conn *wsocket.Conn, username string, data json.RawMessage) {
		var evt TypingEvent
		if err := json.Unmarshal(data, &evt); err != nil {
			log.Printf("⚠️ Malformed %s from %s: %v", event, username, err)
			return
		}

		roomName, err := h.validator.ValidateRoomName(evt.Room)
		if err != nil {
			log.Printf("⚠️ Rejected %s from %s: %v", event, username, err)
			return
		}

		h.router.NotifyTyping(event, roomName, username, conn.ID())
	}
}
