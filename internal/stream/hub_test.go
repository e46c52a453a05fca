package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/san-kum/particlefx/internal/config"
	"github.com/san-kum/particlefx/internal/emitter"
)

func send(conn *websocket.Conn, t string, d any) {
	raw, err := json.Marshal(map[string]any{"t": t, "d": d})
	Expect(err).NotTo(HaveOccurred())
	Expect(conn.WriteMessage(websocket.TextMessage, raw)).To(Succeed())
}

// readUntil reads messages until a binary frame satisfies ok.
func readUntil(conn *websocket.Conn, ok func(Frame) bool) Frame {
	deadline := time.Now().Add(3 * time.Second)
	for {
		conn.SetReadDeadline(deadline)
		kind, raw, err := conn.ReadMessage()
		Expect(err).NotTo(HaveOccurred())
		if kind != websocket.BinaryMessage {
			continue
		}
		var f Frame
		Expect(msgpack.Unmarshal(raw, &f)).To(Succeed())
		if ok(f) {
			return f
		}
	}
}

func readText(conn *websocket.Conn) Envelope {
	deadline := time.Now().Add(3 * time.Second)
	for {
		conn.SetReadDeadline(deadline)
		kind, raw, err := conn.ReadMessage()
		Expect(err).NotTo(HaveOccurred())
		if kind != websocket.TextMessage {
			continue
		}
		var env Envelope
		Expect(json.Unmarshal(raw, &env)).To(Succeed())
		return env
	}
}

var _ = Describe("Hub", func() {
	var (
		hub    *Hub
		srv    *httptest.Server
		conn   *websocket.Conn
		cancel context.CancelFunc
	)

	BeforeEach(func() {
		cfg := config.DefaultConfig()
		cfg.Seed = 9
		cfg.Interval = 0
		eng, err := cfg.NewEngine()
		Expect(err).NotTo(HaveOccurred())

		hub = NewHub(eng, cfg, WithFrameInterval(5*time.Millisecond))
		var ctx context.Context
		ctx, cancel = context.WithCancel(context.Background())
		go hub.Run(ctx)

		srv = httptest.NewServer(Routes(hub))
		url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
		conn, _, err = websocket.DefaultDialer.Dial(url, nil)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		conn.Close()
		srv.Close()
		cancel()
	})

	It("streams msgpack frames with advancing ticks", func() {
		first := readUntil(conn, func(Frame) bool { return true })
		next := readUntil(conn, func(f Frame) bool { return f.Tick > first.Tick })
		Expect(next.Time).To(BeNumerically(">=", first.Time))
		Expect(next.Sprites).To(BeEmpty())
	})

	It("spawns a burst on trigger", func() {
		send(conn, MsgTrigger, map[string]any{"effect": "success", "intensity": 1})
		f := readUntil(conn, func(f Frame) bool { return len(f.Sprites) > 0 })
		Expect(f.Sprites).To(HaveLen(35))
		ids := map[uint64]bool{}
		for _, s := range f.Sprites {
			ids[s.ID] = true
		}
		Expect(ids).To(HaveLen(35))
	})

	It("honours intensity and origin", func() {
		send(conn, MsgTrigger, map[string]any{
			"effect": "click", "intensity": 2, "origin": []float64{1, 1, 0},
			"collisions": false, "magnetism": false,
		})
		f := readUntil(conn, func(f Frame) bool { return len(f.Sprites) > 0 })
		Expect(f.Sprites).To(HaveLen(40))
		for _, s := range f.Sprites {
			Expect(s.Position[0]).To(BeNumerically(">", 0.5))
		}
	})

	It("keeps an overlapping burst centred on its origin", func() {
		send(conn, MsgTrigger, map[string]any{"effect": "click", "intensity": 2, "origin": []float64{1, 1, 0}})
		f := readUntil(conn, func(f Frame) bool { return len(f.Sprites) > 0 })
		Expect(f.Sprites).To(HaveLen(40))
		Expect(f.Sprites.Centroid()[0]).To(BeNumerically("~", 1, 0.25))
	})

	It("clears the scene", func() {
		send(conn, MsgTrigger, map[string]any{"effect": "hover"})
		readUntil(conn, func(f Frame) bool { return len(f.Sprites) == 12 })
		send(conn, MsgClear, nil)
		readUntil(conn, func(f Frame) bool { return len(f.Sprites) == 0 })
	})

	It("reports unknown effects", func() {
		send(conn, MsgTrigger, map[string]any{"effect": "explode"})
		env := readText(conn)
		Expect(env.T).To(Equal(MsgError))
	})

	It("reports malformed messages", func() {
		Expect(conn.WriteMessage(websocket.TextMessage, []byte("{"))).To(Succeed())
		Expect(readText(conn).T).To(Equal(MsgError))
	})

	It("serves stats", func() {
		hub.Trigger(TriggerMsg{Effect: emitter.Error.String()})
		Eventually(func() int { return hub.Stats().Particles }, 2*time.Second).Should(Equal(15))

		resp, err := http.Get(srv.URL + "/stats")
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()
		var s Stats
		Expect(json.NewDecoder(resp.Body).Decode(&s)).To(Succeed())
		Expect(s.Tick).To(BeNumerically(">", 0))
		Expect(s.Clients).To(Equal(1))
		Expect(hub.ClientCount()).To(Equal(1))
	})
})

var _ = Describe("Hub shutdown", func() {
	It("refuses clients once Run has returned", func() {
		cfg := config.DefaultConfig()
		eng, err := cfg.NewEngine()
		Expect(err).NotTo(HaveOccurred())
		hub := NewHub(eng, cfg)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		Expect(hub.Run(ctx)).To(MatchError(context.Canceled))

		for i := 0; i < 100; i++ {
			Expect(hub.Register(NewClient(hub, nil, "test"))).To(BeFalse())
		}
		Expect(hub.register).To(BeEmpty())
	})
})

var _ = Describe("TriggerMsg", func() {
	It("fills defaults", func() {
		t, err := TriggerMsg{Effect: "Toggle"}.resolve(emitter.AllInteractions)
		Expect(err).NotTo(HaveOccurred())
		Expect(t.effect).To(Equal(emitter.Toggle))
		Expect(t.intensity).To(Equal(1.0))
		Expect(t.flags).To(Equal(emitter.AllInteractions))
		Expect(t.origin).To(BeNil())
	})

	It("overrides flags", func() {
		off := false
		t, err := TriggerMsg{Effect: "hover", Magnetism: &off}.resolve(emitter.AllInteractions)
		Expect(err).NotTo(HaveOccurred())
		Expect(t.flags.Collisions).To(BeTrue())
		Expect(t.flags.Magnetism).To(BeFalse())
	})

	It("rejects missing payloads", func() {
		_, err := decodeTrigger(nil)
		Expect(err).To(HaveOccurred())
	})
})
