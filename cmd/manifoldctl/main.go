// Command manifoldctl is a thin Cobra CLI client for manifoldd's Façade,
// exercising a subset of the public operations (nine subcommands) over the
// daemon's Unix domain socket. Its HTTP-over-unix-socket transport is grounded on the
// custom DialContext dial shape used throughout
// client/doublezerod/internal/manager/http_test.go.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func main() {
	var sockFile string

	rootCmd := &cobra.Command{
		Use:   "manifoldctl",
		Short: "CLI client for the manifold package-management daemon",
	}
	rootCmd.PersistentFlags().StringVar(&sockFile, "sock-file", "/tmp/manifold.sock", "path to manifoldd's unix socket")

	rootCmd.AddCommand(
		newStatusCmd(&sockFile),
		newRefreshCmd(&sockFile),
		newUpgradeCmd(&sockFile),
		newUpgradeAllCmd(&sockFile),
		newPinCmd(&sockFile),
		newUnpinCmd(&sockFile),
		newSearchCmd(&sockFile),
		newCancelCmd(&sockFile),
		newSafeModeCmd(&sockFile),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// client is a minimal HTTP client dialing manifoldd's unix socket,
// mirroring client/doublezerod/internal/manager/http_test.go's
// DialContext-over-unix shape.
type client struct {
	http     *http.Client
	sockFile string
}

func newClient(sockFile string) *client {
	return &client{
		sockFile: sockFile,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
					var d net.Dialer
					return d.DialContext(ctx, "unix", sockFile)
				},
			},
		},
	}
}

func (c *client) get(ctx context.Context, path string, query map[string]string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://manifold"+path, nil)
	if err != nil {
		return err
	}
	q := req.URL.Query()
	for k, v := range query {
		q.Set(k, v)
	}
	req.URL.RawQuery = q.Encode()
	return c.do(req, out)
}

func (c *client) post(ctx context.Context, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "http://manifold"+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("dial manifoldd: %w", err)
	}
	defer resp.Body.Close()
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
