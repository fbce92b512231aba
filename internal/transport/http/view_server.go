// Package httpserver presents the editor page to a browser and carries the
// bridge traffic between the host and the page over one WebSocket.
package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/tliron/commonlog"

	"go-monaco-bridge/internal/bridge"
	"go-monaco-bridge/internal/contracts"
	"go-monaco-bridge/internal/dispatch"
)

var log = commonlog.GetLogger("monaco.http")

var (
	// ErrNotConnected is returned for round trips while no page is connected,
	// and to calls pending on a connection that went away.
	ErrNotConnected = errors.New("httpserver: no view connected")
	// ErrStopped is returned once the server has been stopped.
	ErrStopped = errors.New("httpserver: server stopped")
)

// ScriptError is a failure thrown by the page while handling an invoke or
// run.
type ScriptError struct {
	Message string
}

func (e *ScriptError) Error() string {
	return "view script: " + e.Message
}

type reply struct {
	value string
	err   error
}

type outbound struct {
	id  string
	msg any
}

type inbound struct {
	conn *websocket.Conn
	raw  []byte
}

var _ bridge.Presenter = (*ViewServer)(nil)

// ViewServer serves the editor page and implements bridge.Presenter for it.
type ViewServer struct {
	addr  string
	shell string

	mu       sync.Mutex
	started  bool
	stopped  bool
	server   *http.Server
	listener net.Listener
	events   bridge.ViewEvents
	targets  map[string]bridge.CallTarget
	pending  map[string]chan reply

	connected atomic.Bool
	ctx       context.Context
	cancel    context.CancelFunc

	browserInbound chan inbound
	outbound       chan outbound
	register       chan *websocket.Conn
	unregister     chan *websocket.Conn
	viewEvents     chan func()
	stopLoop       chan struct{}

	// calls applies page calls in arrival order.
	calls *dispatch.Dispatcher

	upgrader websocket.Upgrader
}

// NewViewServer creates a server bound to addr that serves shell as the
// editor page.
func NewViewServer(addr string, shell string) *ViewServer {
	ctx, cancel := context.WithCancel(context.Background())
	return &ViewServer{
		addr:    addr,
		shell:   shell,
		targets: make(map[string]bridge.CallTarget),
		pending: make(map[string]chan reply),
		ctx:     ctx,
		cancel:  cancel,

		browserInbound: make(chan inbound, 64),
		outbound:       make(chan outbound, 32),
		register:       make(chan *websocket.Conn),
		unregister:     make(chan *websocket.Conn),
		viewEvents:     make(chan func(), 16),
		stopLoop:       make(chan struct{}),
		calls:          dispatch.New(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// URL returns the browser URL of the editor page.
func (m *ViewServer) URL() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.urlLocked()
}

func (m *ViewServer) urlLocked() string {
	if m.listener != nil {
		return "http://" + m.listener.Addr().String()
	}
	return "http://" + m.addr
}

// Connected reports whether a page is attached.
func (m *ViewServer) Connected() bool {
	return m.connected.Load()
}

// Start listens and serves the page. Starting twice is a no-op.
func (m *ViewServer) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return ErrStopped
	}
	if m.started {
		return nil
	}

	ln, err := net.Listen("tcp", m.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", m.addr, err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", m.handleIndex)
	mux.HandleFunc("/ws", m.handleWS)

	m.server = &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	m.listener = ln
	m.started = true

	go m.runLoop()
	go m.eventLoop()
	go func(srv *http.Server) {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("serve: %s", err)
		}
	}(m.server)

	log.Infof("serving editor at %s", m.urlLocked())
	return nil
}

// Stop shuts the server down and fails every pending call. A stopped server
// cannot be restarted.
func (m *ViewServer) Stop() error {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return nil
	}
	m.stopped = true
	server := m.server
	started := m.started
	m.server = nil
	m.started = false
	m.mu.Unlock()

	m.cancel()
	m.calls.Stop()
	if !started || server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := server.Shutdown(ctx)

	close(m.stopLoop)
	return err
}

// Navigate points the page at uri, starting the server if needed. With no
// page connected the server waits for the browser to open URL.
func (m *ViewServer) Navigate(uri string) error {
	if err := m.Start(); err != nil {
		return err
	}
	if !m.connected.Load() {
		log.Infof("waiting for a browser at %s", m.URL())
		return nil
	}
	m.post(outbound{msg: contracts.NavigateMessage{Type: contracts.MessageTypeNavigate, URI: uri}})
	return nil
}

// InvokeScript calls method in the page and waits for its result.
func (m *ViewServer) InvokeScript(ctx context.Context, method string, args []json.RawMessage) (string, error) {
	if args == nil {
		args = []json.RawMessage{}
	}
	return m.roundTrip(ctx, func(id string) any {
		return contracts.InvokeMessage{Type: contracts.MessageTypeInvoke, ID: id, Method: method, Args: args}
	})
}

// RunScript evaluates script in the page and waits for its result.
func (m *ViewServer) RunScript(ctx context.Context, script string) (string, error) {
	return m.roundTrip(ctx, func(id string) any {
		return contracts.RunMessage{Type: contracts.MessageTypeRun, ID: id, Script: script}
	})
}

// AddWebAllowedObject exposes target to the page under name.
func (m *ViewServer) AddWebAllowedObject(name string, target bridge.CallTarget) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.targets[name] = target
}

// SetViewEvents replaces the navigation handlers.
func (m *ViewServer) SetViewEvents(events bridge.ViewEvents) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = events
}

func (m *ViewServer) viewEventHandlers() bridge.ViewEvents {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events
}

func (m *ViewServer) target(name string) (bridge.CallTarget, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.targets[name]
	return t, ok
}

func (m *ViewServer) roundTrip(ctx context.Context, build func(id string) any) (string, error) {
	if !m.connected.Load() {
		return "", ErrNotConnected
	}

	id := uuid.NewString()
	ch := make(chan reply, 1)
	m.mu.Lock()
	m.pending[id] = ch
	m.mu.Unlock()
	defer m.forget(id)

	select {
	case m.outbound <- outbound{id: id, msg: build(id)}:
	case <-ctx.Done():
		return "", ctx.Err()
	case <-m.stopLoop:
		return "", ErrStopped
	}

	select {
	case r := <-ch:
		return r.value, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	case <-m.stopLoop:
		return "", ErrStopped
	}
}

func (m *ViewServer) forget(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pending, id)
}

func (m *ViewServer) resolve(id string, r reply) {
	m.mu.Lock()
	ch, ok := m.pending[id]
	delete(m.pending, id)
	m.mu.Unlock()

	if ok {
		ch <- r
	}
}

func (m *ViewServer) failPending(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, ch := range m.pending {
		ch <- reply{err: err}
		delete(m.pending, id)
	}
}

func (m *ViewServer) post(out outbound) bool {
	select {
	case m.outbound <- out:
		return true
	case <-m.stopLoop:
		return false
	}
}

func (m *ViewServer) emit(fn func()) {
	select {
	case m.viewEvents <- fn:
	case <-m.stopLoop:
	}
}

// handleIndex serves the editor page.
func (m *ViewServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	uri := m.URL() + r.URL.RequestURI()
	m.emit(func() {
		if fn := m.viewEventHandlers().NavigationStarting; fn != nil {
			fn(uri)
		}
	})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(m.shell))
}

// handleWS upgrades the connection and forwards page messages to the loop.
func (m *ViewServer) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debugf("upgrade: %s", err)
		return
	}

	select {
	case m.register <- conn:
	case <-m.stopLoop:
		_ = conn.Close()
		return
	}
	defer func() {
		select {
		case m.unregister <- conn:
		case <-m.stopLoop:
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		select {
		case m.browserInbound <- inbound{conn: conn, raw: msg}:
		case <-m.stopLoop:
			return
		}
	}
}

// runLoop serializes connection changes and websocket writes on a single
// goroutine.
func (m *ViewServer) runLoop() {
	var conn *websocket.Conn

	drop := func(err error) {
		if conn != nil {
			_ = conn.Close()
			conn = nil
		}
		m.connected.Store(false)
		m.failPending(err)
	}

	for {
		select {
		case out := <-m.outbound:
			if conn == nil {
				if out.id != "" {
					m.resolve(out.id, reply{err: ErrNotConnected})
				}
				continue
			}
			if !writeJSON(conn, out.msg) {
				conn = nil
				drop(ErrNotConnected)
			}

		case c := <-m.register:
			if conn != nil {
				log.Debugf("replacing view connection")
				drop(ErrNotConnected)
			}
			conn = c
			m.connected.Store(true)

		case c := <-m.unregister:
			if conn == c {
				drop(ErrNotConnected)
			}

		case in := <-m.browserInbound:
			if in.conn != conn {
				continue
			}
			m.route(in.raw)

		case <-m.stopLoop:
			drop(ErrStopped)
			return
		}
	}
}

// eventLoop runs view event handlers one at a time, off the run loop, so a
// handler may itself call into the page.
func (m *ViewServer) eventLoop() {
	for {
		select {
		case fn := <-m.viewEvents:
			runEvent(fn)
		case <-m.stopLoop:
			return
		}
	}
}

func runEvent(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("view event handler panicked: %v", r)
		}
	}()
	fn()
}

func (m *ViewServer) route(raw []byte) {
	var envelope contracts.IncomingMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		log.Debugf("malformed view message: %s", err)
		return
	}

	switch envelope.Type {
	case contracts.MessageTypeResult:
		var msg contracts.ResultMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return
		}
		r := reply{value: msg.Value}
		if msg.Error != "" {
			r = reply{err: &ScriptError{Message: msg.Error}}
		}
		m.resolve(msg.ID, r)

	case contracts.MessageTypeCall:
		var msg contracts.CallMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return
		}
		if msg.Op == contracts.OpCallEvent {
			go m.handleCall(msg)
			break
		}
		m.calls.Post(func() { m.handleCall(msg) })

	case contracts.MessageTypeDOMContentLoaded:
		m.emit(func() {
			if fn := m.viewEventHandlers().DOMContentLoaded; fn != nil {
				fn()
			}
		})

	case contracts.MessageTypeNavigationCompleted:
		var msg contracts.NavigationCompletedMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return
		}
		m.emit(func() {
			if fn := m.viewEventHandlers().NavigationCompleted; fn != nil {
				fn(msg.OK)
			}
		})

	case contracts.MessageTypeNewWindow:
		var msg contracts.NewWindowMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return
		}
		m.emit(func() {
			if fn := m.viewEventHandlers().NewWindowRequested; fn != nil {
				fn(msg.URI)
			}
		})

	default:
		log.Debugf("unknown view message type %q", envelope.Type)
	}
}

// handleCall answers one call from the page. Property and action calls run
// one at a time in arrival order. Events run concurrently so a slow provider
// does not hold up the page's writes.
func (m *ViewServer) handleCall(msg contracts.CallMessage) {
	res := contracts.CallResultMessage{Type: contracts.MessageTypeCallResult, ID: msg.ID}
	if t, ok := m.target(msg.Target); ok {
		res.Found, res.Value = callTarget(m.ctx, t, msg)
	} else {
		log.Debugf("call to unknown object %q", msg.Target)
	}
	m.post(outbound{msg: res})
}

func callTarget(ctx context.Context, t bridge.CallTarget, msg contracts.CallMessage) (bool, any) {
	switch msg.Op {
	case contracts.OpCallAction:
		found := t.CallAction(msg.Name)
		return found, found

	case contracts.OpCallActionWithParameters:
		found := t.CallActionWithParameters(msg.Name, msg.Args)
		return found, found

	case contracts.OpCallEvent:
		v, ok := t.CallEvent(ctx, msg.Name, msg.Args)
		if !ok {
			return false, nil
		}
		return true, v

	case contracts.OpGetValue:
		v := t.GetValue(ctx, msg.Name)
		return v != nil, v

	case contracts.OpGetJSONValue:
		return true, t.GetJSONValue(ctx, msg.Name)

	case contracts.OpGetChildValue:
		v := t.GetChildValue(ctx, msg.Name, msg.Child)
		return v != nil, v

	case contracts.OpSetValue:
		var v any
		if len(msg.Value) > 0 {
			if err := json.Unmarshal(msg.Value, &v); err != nil {
				log.Debugf("setValue %s: %s", msg.Name, err)
				return false, nil
			}
		}
		t.SetValue(ctx, msg.Name, v)
		return true, nil

	case contracts.OpSetValueTyped:
		var s string
		if err := json.Unmarshal(msg.Value, &s); err != nil {
			log.Debugf("setValueTyped %s: %s", msg.Name, err)
			return false, nil
		}
		t.SetValueTyped(ctx, msg.Name, s, msg.TypeName)
		return true, nil

	default:
		log.Debugf("unknown call op %q", msg.Op)
		return false, nil
	}
}

// writeJSON writes a JSON message and reports whether the connection is usable.
func writeJSON(conn *websocket.Conn, v any) bool {
	if err := conn.WriteJSON(v); err != nil {
		_ = conn.Close()
		return false
	}
	return true
}
