// Пакет events — рассылка событий фоновых задач клиентам по websocket.
//
// Hub принимает websocket-подключения (gorilla/websocket) и рассылает
// каждое опубликованное событие всем подключённым клиентам в конверте
// {"event": "...", "data": ...}. У каждого клиента своя очередь отправки
// и пишущая горутина: Publish не ждёт сеть. Клиенты с переполненной
// очередью или ошибкой записи за writeTimeout отключаются.
package events

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Имена событий фоновых задач.
const (
	EventWorkerResult = "worker:result"
	EventWorkerError  = "worker:error"
)

const (
	defaultWriteTimeout = 5 * time.Second
	defaultSendBuffer   = 16
	pongWait            = 60 * time.Second
	pingPeriod          = pongWait * 9 / 10
	maxMessageSize      = 4096
)

// Prometheus-метрики websocket.
var (
	clientsConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ps_websocket_clients",
		Help: "Количество подключённых websocket-клиентов.",
	})
	eventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ps_events_published_total",
		Help: "Количество опубликованных событий (по имени события).",
	}, []string{"event"})
	sendErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ps_websocket_send_errors_total",
		Help: "Количество неудачных отправок событий клиентам.",
	})
)

// Publisher — получатель событий фоновых задач.
type Publisher interface {
	Publish(event string, payload any)
}

// Envelope — формат сообщения, отправляемого клиенту.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// client — одно websocket-подключение.
// gorilla/websocket допускает только одного писателя, запись сериализуется writeMu.
type client struct {
	id        string
	conn      *websocket.Conn
	send      chan []byte
	writeMu   sync.Mutex
	done      chan struct{}
	closeOnce sync.Once
}

// Hub — реестр websocket-клиентов и рассылка событий.
type Hub struct {
	upgrader     websocket.Upgrader
	writeTimeout time.Duration
	sendBuffer   int

	mu      sync.RWMutex
	clients map[*client]struct{}

	logger *slog.Logger
}

// NewHub создаёт хаб. Подключения принимаются с любого origin
// (origin ограничивает CORS-политика сервиса).
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(_ *http.Request) bool { return true },
		},
		writeTimeout: defaultWriteTimeout,
		sendBuffer:   defaultSendBuffer,
		clients:      make(map[*client]struct{}),
		logger:       logger.With(slog.String("component", "event_hub")),
	}
}

// ServeHTTP выполняет upgrade до websocket и обслуживает клиента
// до разрыва соединения. Входящие сообщения клиента игнорируются.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade уже записал ответ с ошибкой
		h.logger.Warn("Ошибка upgrade websocket",
			slog.String("remote_addr", r.RemoteAddr),
			slog.String("error", err.Error()),
		)
		return
	}

	c := h.newClient(conn)
	count := h.add(c)
	h.logger.Info("Клиент подключён",
		slog.String("client_id", c.id),
		slog.String("remote_addr", r.RemoteAddr),
		slog.Int("clients", count),
	)

	go h.writeLoop(c)
	h.readLoop(c)
}

func (h *Hub) newClient(conn *websocket.Conn) *client {
	return &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, h.sendBuffer),
		done: make(chan struct{}),
	}
}

// Publish ставит событие в очередь отправки каждого клиента и не блокируется.
// Клиент, не успевающий разбирать свою очередь, отключается.
func (h *Hub) Publish(event string, payload any) {
	data, err := json.Marshal(Envelope{Event: event, Data: payload})
	if err != nil {
		h.logger.Error("Ошибка сериализации события",
			slog.String("event", event),
			slog.String("error", err.Error()),
		)
		return
	}
	eventsPublished.WithLabelValues(event).Inc()

	for _, c := range h.snapshot() {
		select {
		case c.send <- data:
		default:
			sendErrors.Inc()
			h.logger.Warn("Очередь отправки клиента переполнена, клиент отключается",
				slog.String("client_id", c.id),
				slog.String("event", event),
				slog.Int("buffer", cap(c.send)),
			)
			h.remove(c)
		}
	}
}

// Clients возвращает количество подключённых клиентов.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close отключает всех клиентов (graceful shutdown).
func (h *Hub) Close() {
	for _, c := range h.snapshot() {
		msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown")
		_ = h.write(c, websocket.CloseMessage, msg)
		h.remove(c)
	}
}

// readLoop читает (и отбрасывает) сообщения клиента, обслуживая pong.
// Возвращается при ошибке чтения — клиент удаляется.
func (h *Hub) readLoop(c *client) {
	defer h.remove(c)

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writeLoop отправляет события из очереди клиента и периодический ping
// до отключения клиента.
func (h *Hub) writeLoop(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			if err := h.write(c, websocket.TextMessage, data); err != nil {
				sendErrors.Inc()
				h.logger.Warn("Ошибка отправки события, клиент отключается",
					slog.String("client_id", c.id),
					slog.String("error", err.Error()),
				)
				h.remove(c)
				return
			}
		case <-ticker.C:
			if err := h.write(c, websocket.PingMessage, nil); err != nil {
				h.remove(c)
				return
			}
		}
	}
}

// write отправляет сообщение с дедлайном записи.
func (h *Hub) write(c *client, messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}

func (h *Hub) add(c *client) int {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	clientsConnected.Set(float64(count))
	return count
}

// remove удаляет клиента и закрывает соединение (идемпотентно).
func (h *Hub) remove(c *client) {
	c.closeOnce.Do(func() {
		close(c.done)

		h.mu.Lock()
		delete(h.clients, c)
		count := len(h.clients)
		h.mu.Unlock()

		clientsConnected.Set(float64(count))
		_ = c.conn.Close()

		h.logger.Info("Клиент отключён",
			slog.String("client_id", c.id),
			slog.Int("clients", count),
		)
	})
}

// snapshot — копия списка клиентов для рассылки без удержания блокировки.
func (h *Hub) snapshot() []*client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	list := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		list = append(list, c)
	}
	return list
}
