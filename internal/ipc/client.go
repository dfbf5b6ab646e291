package ipc

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"resty.dev/v3"

	"github.com/kitsunet/livepaper/internal/engine"
)

func newClient() *resty.Client {
	path := SocketPath()
	client := resty.NewWithClient(&http.Client{
		Transport: &http.Transport{
			DialContext: func(_ context.Context, _, _ string) (net.Conn, error) {
				return net.Dial("unix", path)
			},
		},
	})
	client.SetBaseURL("http://livepaper")
	client.SetHeader("Content-Type", "application/json")
	client.SetHeader("Accept", "application/json")
	client.SetHeader("User-Agent", "livepaper")
	return client
}

// SendStatus queries a running daemon. An error usually just means no
// daemon is up.
func SendStatus() (*engine.StatusReport, error) {
	report := engine.StatusReport{}
	res, err := newClient().R().SetResult(&report).Get("/status")
	if err != nil {
		return nil, err
	}
	if res.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("status query failed: %s", res.Status())
	}
	return &report, nil
}

// SendSet tells a running daemon to remap one output.
func SendSet(monitor, video string) error {
	return post("/set", SetRequest{Monitor: monitor, Video: video})
}

// SendUnset tells a running daemon to drop one output mapping.
func SendUnset(monitor string) error {
	return post("/unset", UnsetRequest{Monitor: monitor})
}

// SendReload tells a running daemon to re-read the mapping file.
func SendReload() error {
	return post("/reload", nil)
}

// SendStop shuts a running daemon down.
func SendStop() error {
	return post("/stop", nil)
}

func post(route string, body any) error {
	req := newClient().R()
	if body != nil {
		req.SetBody(body)
	}
	res, err := req.Post(route)
	if err != nil {
		return err
	}
	if res.StatusCode() != http.StatusOK {
		return fmt.Errorf("command %s failed: %s", route, res.Status())
	}
	return nil
}
