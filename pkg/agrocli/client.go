package agrocli

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/agroslabs/agros/common"
)

type Client struct {
	mu   *sync.RWMutex
	d    *Dispatcher
	conn net.Conn
}

// NewClient connects to the local daemon, starting one first when none
// is running yet.
func NewClient() (*Client, error) {
	if err := ensureDaemonFunc(); err != nil {
		return nil, err
	}
	conn, err := dial()
	if err != nil {
		return nil, fmt.Errorf("error connecting to daemon: %s", err.Error())
	}
	return newClient(conn), nil
}

// NewClientWithURI connects to the daemon at the given URI without
// trying to start one. Supported schemes are unix://, tcp:// and, on
// Windows, pipe://.
func NewClientWithURI(rawURI string) (*Client, error) {
	uri, err := ParseDaemonURI(rawURI)
	if err != nil {
		return nil, err
	}
	conn, err := dialURI(uri)
	if err != nil {
		return nil, err
	}
	return newClient(conn), nil
}

func newClient(conn net.Conn) *Client {
	return &Client{
		conn: conn,
		mu:   &sync.RWMutex{},
		d: &Dispatcher{
			Handlers: make(map[common.UpdateType][]Handler),
		},
	}
}

// AddHandler registers h for pushed updates of the given type.
// Handlers run in registration order from the Listen loop.
func (c *Client) AddHandler(utype common.UpdateType, h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.d.Handlers[utype] = append(c.d.Handlers[utype], h)
}

// RemoveHandler drops every handler registered for the given type.
// Call it from outside the Listen loop only; handlers that want to
// stop the loop return ErrDisconnect instead.
func (c *Client) RemoveHandler(utype common.UpdateType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.d.Handlers, utype)
}

// Listen reads pushed updates until the connection drops or a handler
// returns ErrDisconnect.
func (c *Client) Listen() (err error) {
	defer c.conn.Close()
	for {
		c.mu.RLock()
		var buf []byte
		buf, err = read(c.conn)
		if err != nil {
			c.mu.RUnlock()
			err = fmt.Errorf("error reading: %s", err.Error())
			return
		}
		err = c.d.process(buf)
		if err != nil {
			c.mu.RUnlock()
			if err == ErrDisconnect {
				err = nil
				break
			}
			err = fmt.Errorf("error processing: %s", err.Error())
			return
		}
		c.mu.RUnlock()
	}
	return
}

// Disconnect closes the daemon connection.
func (c *Client) Disconnect() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c *Client) invoke(method common.UpdateType, message any) (json.RawMessage, error) {
	// block the updates listener while invoking a method to retrieve
	// the reply here instead
	c.mu.Lock()
	defer c.mu.Unlock()
	buf, err := json.Marshal(&Request{
		Method:  method,
		Message: message,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke %s: %s", method, err.Error())
	}
	err = write(c.conn, buf)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke %s: %s", method, err.Error())
	}
	buf, err = read(c.conn)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke %s: %s", method, err.Error())
	}
	var res Response
	err = json.Unmarshal(buf, &res)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %s", method, err.Error())
	}
	if !res.Ok {
		return nil, errors.New(res.Error)
	}
	if res.Update == nil {
		return nil, fmt.Errorf("malformed reply to %s", method)
	}
	return res.Update.Message, nil
}
