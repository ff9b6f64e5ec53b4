package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// camillaClient is the subset of the CamillaDSP websocket API the mixer uses.
// This allows for mocking in tests.
type camillaClient interface {
	GetVolume() (float64, error)
	SetVolume(targetDB float64) (float64, error)
	GetMute() (bool, error)
	SetMute(mute bool) error
	Close() error
}

// CamillaDSPClient manages WebSocket communication with CamillaDSP
type CamillaDSPClient struct {
	mu          sync.Mutex
	conn        *websocket.Conn
	url         string
	logger      *slog.Logger
	readTimeout time.Duration
}

// NewCamillaDSPClient creates a client and establishes the initial connection.
func NewCamillaDSPClient(wsURL string, logger *slog.Logger, readTimeoutMS int) (*CamillaDSPClient, error) {
	if _, err := url.Parse(wsURL); err != nil {
		return nil, fmt.Errorf("invalid websocket URL: %w", err)
	}

	client := &CamillaDSPClient{
		url:         wsURL,
		logger:      logger,
		readTimeout: time.Duration(readTimeoutMS) * time.Millisecond,
	}

	if err := client.connect(); err != nil {
		return nil, err
	}
	logger.Info("connected to CamillaDSP", "url", wsURL)
	return client, nil
}

// connect establishes a WebSocket connection to CamillaDSP
func (c *CamillaDSPClient) connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}

	d := websocket.Dialer{
		HandshakeTimeout: 2 * time.Second,
	}

	conn, _, err := d.Dial(c.url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.url, err)
	}

	c.conn = conn
	return nil
}

// ensureConnected reconnects once if an earlier call broke the connection.
// There is no retry loop: a failed key press is simply dropped.
func (c *CamillaDSPClient) ensureConnected() error {
	c.mu.Lock()
	if c.conn != nil {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	c.logger.Warn("CamillaDSP connection lost; reconnecting")
	return c.connect()
}

// sendAndRead sends a message and waits for a response
func (c *CamillaDSPClient) sendAndRead(v any) ([]byte, error) {
	if err := c.ensureConnected(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil, fmt.Errorf("no websocket connection")
	}

	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal command: %w", err)
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		c.conn = nil // Mark connection as broken
		return nil, err
	}

	c.conn.SetReadDeadline(time.Now().Add(c.readTimeout))
	defer func() {
		if c.conn != nil {
			c.conn.SetReadDeadline(time.Time{})
		}
	}()

	_, message, err := c.conn.ReadMessage()
	if err != nil {
		c.conn = nil // Mark connection as broken
		return nil, err
	}

	return message, nil
}

// Close closes the WebSocket connection
func (c *CamillaDSPClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	return nil
}

// camillaReply is the common shape of CamillaDSP replies:
// {"<Command>": {"result": "Ok", "value": ...}}
type camillaReply[T any] struct {
	Result string `json:"result"`
	Value  T      `json:"value"`
}

func decodeCamillaReply[T any](command string, response []byte) (camillaReply[T], error) {
	var resp map[string]camillaReply[T]
	if err := json.Unmarshal(response, &resp); err != nil {
		return camillaReply[T]{}, fmt.Errorf("parse %s response: %w", command, err)
	}
	r, ok := resp[command]
	if !ok {
		return camillaReply[T]{}, fmt.Errorf("parse %s response: missing %q key", command, command)
	}
	if r.Result != "Ok" {
		return r, fmt.Errorf("%s: result %q", command, r.Result)
	}
	return r, nil
}

// GetVolume queries CamillaDSP for the current main volume in dB.
func (c *CamillaDSPClient) GetVolume() (float64, error) {
	response, err := c.sendAndRead("GetVolume")
	if err != nil {
		return 0, fmt.Errorf("get volume: %w", err)
	}
	r, err := decodeCamillaReply[float64]("GetVolume", response)
	if err != nil {
		return 0, err
	}
	c.logger.Debug("GetVolume", "volume_db", r.Value)
	return r.Value, nil
}

// SetVolume sets the main volume and returns the requested value.
func (c *CamillaDSPClient) SetVolume(targetDB float64) (float64, error) {
	response, err := c.sendAndRead(map[string]any{"SetVolume": targetDB})
	if err != nil {
		return 0, fmt.Errorf("set volume: %w", err)
	}
	if _, err := decodeCamillaReply[json.RawMessage]("SetVolume", response); err != nil {
		return 0, err
	}
	c.logger.Debug("SetVolume", "target_db", targetDB)
	return targetDB, nil
}

// GetMute queries CamillaDSP for the current mute state.
func (c *CamillaDSPClient) GetMute() (bool, error) {
	response, err := c.sendAndRead("GetMute")
	if err != nil {
		return false, fmt.Errorf("get mute: %w", err)
	}
	r, err := decodeCamillaReply[bool]("GetMute", response)
	if err != nil {
		return false, err
	}
	c.logger.Debug("GetMute", "mute", r.Value)
	return r.Value, nil
}

// SetMute sets the mute state in CamillaDSP.
func (c *CamillaDSPClient) SetMute(mute bool) error {
	response, err := c.sendAndRead(map[string]any{"SetMute": mute})
	if err != nil {
		return fmt.Errorf("set mute: %w", err)
	}
	if _, err := decodeCamillaReply[json.RawMessage]("SetMute", response); err != nil {
		return err
	}
	c.logger.Debug("SetMute", "mute", mute)
	return nil
}

// CamillaMixer exposes CamillaDSP's main fader as a Mixer.
//
// Percentages map linearly onto [MinDB, MaxDB]. CamillaDSP has a single
// fader, so the sink index is always 0 and ignored.
type CamillaMixer struct {
	client camillaClient
	minDB  float64
	maxDB  float64
}

// NewCamillaMixer wraps a CamillaDSP client.
func NewCamillaMixer(client camillaClient, minDB, maxDB float64) *CamillaMixer {
	return &CamillaMixer{client: client, minDB: minDB, maxDB: maxDB}
}

func (m *CamillaMixer) Close() error { return m.client.Close() }

func (m *CamillaMixer) DefaultSink() (Sink, error) {
	db, err := m.client.GetVolume()
	if err != nil {
		return Sink{}, fmt.Errorf("%w: %w", ErrMixerUnavailable, err)
	}
	muted, err := m.client.GetMute()
	if err != nil {
		return Sink{}, fmt.Errorf("%w: %w", ErrMixerUnavailable, err)
	}
	return Sink{
		Index:  0,
		Name:   "camilladsp",
		Mute:   muted,
		Volume: m.dbToPercent(db),
	}, nil
}

func (m *CamillaMixer) SetMute(_ uint32, mute bool) error {
	if err := m.client.SetMute(mute); err != nil {
		return fmt.Errorf("%w: %w", ErrMixerUnavailable, err)
	}
	return nil
}

func (m *CamillaMixer) IncreaseVolume(_ uint32, percent float64) error {
	return m.adjust(percent)
}

func (m *CamillaMixer) DecreaseVolume(_ uint32, percent float64) error {
	return m.adjust(-percent)
}

func (m *CamillaMixer) adjust(delta float64) error {
	db, err := m.client.GetVolume()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMixerUnavailable, err)
	}
	target := m.percentToDB(stepPercent(m.dbToPercent(db), delta))
	if _, err := m.client.SetVolume(target); err != nil {
		return fmt.Errorf("%w: %w", ErrMixerUnavailable, err)
	}
	return nil
}

func (m *CamillaMixer) dbToPercent(db float64) float64 {
	span := m.maxDB - m.minDB
	if span <= 0 {
		return 100
	}
	return stepPercent((db-m.minDB)/span*100, 0)
}

func (m *CamillaMixer) percentToDB(pct float64) float64 {
	return m.minDB + (m.maxDB-m.minDB)*pct/100
}
