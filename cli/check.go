package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/cobra"

	"github.com/Mukhsinh/manajemenresiko-sub007/routes"
)

var (
	checkBaseURL string
	checkMarker  string
	checkTimeout time.Duration
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Smoke-check a running server",
	Long: `Request /health and every front-end page route of a running server,
asserting status codes and that pages contain the HTML marker. An unknown
path must answer 404.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := &http.Client{Timeout: checkTimeout}
		return runCheck(cmd.Context(), client, checkBaseURL, checkMarker, cmd.OutOrStdout())
	},
}

func init() {
	checkCmd.Flags().StringVar(&checkBaseURL, "base-url", "http://localhost:8080", "Server base URL")
	checkCmd.Flags().StringVar(&checkMarker, "marker", "<html", "Text every page must contain")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 10*time.Second, "Per-request timeout")
}

type probe struct {
	path   string
	status int
	marker string
}

func probes(marker string) []probe {
	out := []probe{{path: routes.PathHealth, status: http.StatusOK, marker: `"status"`}}
	for _, p := range routes.Pages {
		out = append(out, probe{path: p, status: http.StatusOK, marker: marker})
	}
	return append(out, probe{path: "/halaman-yang-tidak-ada", status: http.StatusNotFound})
}

// runCheck prints one line per probe and fails if any probe failed.
func runCheck(ctx context.Context, client *http.Client, baseURL, marker string, out io.Writer) error {
	baseURL = strings.TrimRight(baseURL, "/")
	failed := 0
	for _, p := range probes(marker) {
		if err := p.run(ctx, client, baseURL); err != nil {
			failed++
			fmt.Fprintf(out, "FAIL %-32s %v\n", p.path, err)
			continue
		}
		fmt.Fprintf(out, "ok   %s\n", p.path)
	}
	if failed > 0 {
		return goerr.New("smoke check failed", goerr.V("failed", failed), goerr.V("baseURL", baseURL))
	}
	return nil
}

func (p probe) run(ctx context.Context, client *http.Client, baseURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+p.path, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode != p.status {
		return fmt.Errorf("status %d, want %d", resp.StatusCode, p.status)
	}
	if p.marker != "" && !strings.Contains(strings.ToLower(string(body)), strings.ToLower(p.marker)) {
		return fmt.Errorf("body does not contain %q", p.marker)
	}
	return nil
}
