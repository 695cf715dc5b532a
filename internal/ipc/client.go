package ipc

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/matjam/glpaper/internal/types"
	"resty.dev/v3"
)

type Client struct {
	rc *resty.Client
}

// NewClient talks to the daemon listening on the unix socket at path.
func NewClient(path string) *Client {
	client := resty.NewWithClient(&http.Client{
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, "unix", path)
			},
		},
	})

	client.SetBaseURL("http://glpaper")
	client.SetHeader("Content-Type", "application/json")
	client.SetHeader("Accept", "application/json")
	client.SetHeader("User-Agent", "glpaper")

	return &Client{rc: client}
}

// SendCommand posts cmd to /command.
func (c *Client) SendCommand(cmd types.Command) (*Response, error) {
	result := Response{}

	response, err := c.rc.R().SetBody(cmd).SetResult(&result).Post("/command")
	if err != nil {
		return nil, err
	}

	if response.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("error sending command: %s", response.Status())
	}

	return &result, nil
}

func (c *Client) post(path string) error {
	response, err := c.rc.R().Post(path)
	if err != nil {
		return err
	}
	if response.StatusCode() != http.StatusOK {
		return fmt.Errorf("error sending %s: %s", path, response.Status())
	}
	return nil
}

func (c *Client) SendNext() error {
	return c.post("/next")
}

func (c *Client) SendReload() error {
	return c.post("/reload")
}

func (c *Client) SendStop() error {
	return c.post("/stop")
}

// SendStatus fetches /status.
func (c *Client) SendStatus() (*StatusResponse, error) {
	result := StatusResponse{}

	response, err := c.rc.R().SetResult(&result).Get("/status")
	if err != nil {
		return nil, fmt.Errorf("error pinging socket: %w", err)
	}
	if response.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("error pinging socket: %s", response.Status())
	}

	return &result, nil
}

// Running reports whether a daemon answers on the socket.
func (c *Client) Running() bool {
	_, err := c.SendStatus()
	return err == nil
}
