package rpc

import (
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"sync"
)

// Client speaks the newline-delimited JSON protocol to a rank RPC server.
// A single connection carries one request at a time; Call serialises
// concurrent callers.
type Client struct {
	conn    net.Conn
	encoder *json.Encoder
	decoder *json.Decoder

	mu     sync.Mutex
	lastID int64
}

// Dial connects to a rank RPC server.
func Dial(addr string) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", addr, err)
	}
	return &Client{
		conn:    conn,
		encoder: json.NewEncoder(conn),
		decoder: json.NewDecoder(conn),
	}, nil
}

// Call invokes method with params and decodes the server's data payload
// into result. A nil result discards the payload.
func (c *Client) Call(method string, params any, result any) error {
	raw, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("marshaling params: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastID++

	req := Request{
		Method: method,
		ID:     strconv.FormatInt(c.lastID, 10),
		Params: raw,
	}
	if err := c.encoder.Encode(req); err != nil {
		return fmt.Errorf("sending request: %w", err)
	}

	var resp Response
	if err := c.decoder.Decode(&resp); err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.Error != "" {
		return fmt.Errorf("rpc error: %s", resp.Error)
	}
	if result == nil {
		return nil
	}

	data, err := json.Marshal(resp.Data)
	if err != nil {
		return fmt.Errorf("marshaling response data: %w", err)
	}
	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("unmarshaling into result: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
