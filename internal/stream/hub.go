package stream

import (
	"context"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/san-kum/particlefx/internal/config"
	"github.com/san-kum/particlefx/internal/sim"
)

const (
	DefaultFrameInterval = time.Second / 60
	maxTotalConns        = 256
)

// command is a client request executed by the hub goroutine. Exactly one
// of trigger, clear or text is set.
type command struct {
	reply   *Client
	trigger *TriggerMsg
	clear   bool
	text    []byte
}

// Stats is the hub's view of the last broadcast tick.
type Stats struct {
	Tick      int                `json:"tick"`
	Time      float64            `json:"time"`
	Particles int                `json:"particles"`
	Clients   int                `json:"clients"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Hub owns an engine and all connected clients. The engine is only ever
// touched from Run.
type Hub struct {
	eng      *sim.Engine
	cfg      *config.Config
	interval time.Duration
	logger   *log.Logger

	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	commands   chan command
	done       chan struct{}

	conns atomic.Int32

	mu    sync.RWMutex
	stats Stats
}

type HubOption func(*Hub)

func WithFrameInterval(d time.Duration) HubOption {
	return func(h *Hub) {
		if d > 0 {
			h.interval = d
		}
	}
}

func WithLogger(l *log.Logger) HubOption {
	return func(h *Hub) {
		if l != nil {
			h.logger = l
		}
	}
}

// NewHub wraps eng. cfg supplies the default interaction flags and, when
// its Interval is positive, an automatic burst of cfg.Effect.
func NewHub(eng *sim.Engine, cfg *config.Config, opts ...HubOption) *Hub {
	h := &Hub{
		eng:        eng,
		cfg:        cfg,
		interval:   DefaultFrameInterval,
		logger:     log.New(io.Discard, "", 0),
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		commands:   make(chan command, 256),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run steps the engine once per frame interval and broadcasts each frame
// until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) error {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	defer close(h.done)
	defer h.closeAll()

	last := time.Now()
	sinceBurst := 0.0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case c := <-h.register:
			h.clients[c] = true
			h.logger.Printf("client %s connected (%d total)", c.remoteAddr, len(h.clients))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.conns.Add(-1)
				h.logger.Printf("client %s disconnected", c.remoteAddr)
			}

		case cmd := <-h.commands:
			h.apply(cmd)

		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			if h.cfg.Interval > 0 {
				sinceBurst += dt
				if sinceBurst >= h.cfg.Interval {
					sinceBurst = 0
					h.eng.Trigger(h.cfg.Effect, h.cfg.Intensity, h.cfg.Flags)
				}
			}
			h.tick(dt)
		}
	}
}

func (h *Hub) apply(cmd command) {
	switch {
	case cmd.text != nil:
		if _, ok := h.clients[cmd.reply]; ok {
			cmd.reply.queue(websocket.TextMessage, cmd.text)
		}
	case cmd.clear:
		h.eng.Clear()
		h.logger.Printf("cleared")
	case cmd.trigger != nil:
		t, err := cmd.trigger.resolve(h.cfg.Flags)
		if err != nil {
			if _, ok := h.clients[cmd.reply]; ok {
				cmd.reply.queue(websocket.TextMessage, encodeError(err.Error()))
			}
			return
		}
		origin := h.eng.Bounds().Center()
		if t.origin != nil {
			origin = *t.origin
		}
		n := h.eng.TriggerAt(t.effect, t.intensity, origin, t.flags)
		h.logger.Printf("trigger %s x%.2f: %d particles", t.effect, t.intensity, n)
	}
}

// submit hands cmd to Run, giving up once the hub has stopped.
func (h *Hub) submit(cmd command) {
	select {
	case h.commands <- cmd:
	case <-h.done:
	}
}

// Register adds a client; it fails once the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	// With room in the buffer both cases below are ready, so check first.
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Trigger queues an effect as if a client had sent it.
func (h *Hub) Trigger(msg TriggerMsg) {
	h.submit(command{trigger: &msg})
}

func (h *Hub) tick(dt float64) {
	snap := h.eng.Advance(dt)
	frame := Frame{Tick: h.eng.Ticks(), Time: h.eng.Time(), Sprites: snap}

	h.mu.Lock()
	h.stats = Stats{
		Tick:      frame.Tick,
		Time:      frame.Time,
		Particles: len(snap),
		Clients:   len(h.clients),
		Metrics:   h.eng.Metrics(),
	}
	h.mu.Unlock()

	if len(h.clients) == 0 {
		return
	}
	data, err := msgpack.Marshal(&frame)
	if err != nil {
		h.logger.Printf("encode frame: %v", err)
		return
	}
	for c := range h.clients {
		c.queue(websocket.BinaryMessage, data)
	}
}

func (h *Hub) closeAll() {
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

// Stats returns a copy of the last tick's summary. Safe from any goroutine.
func (h *Hub) Stats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s := h.stats
	if s.Metrics != nil {
		m := make(map[string]float64, len(s.Metrics))
		for k, v := range s.Metrics {
			m[k] = v
		}
		s.Metrics = m
	}
	return s
}

// ClientCount reports how many clients the last tick saw.
func (h *Hub) ClientCount() int {
	return h.Stats().Clients
}
