package diagnostics

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/nix-installer/nix-installer-core/internal/logging"
)

// DefaultTimeout is the hard per-call timeout from spec §4.7 ("short, e.g.
// several seconds").
const DefaultTimeout = 5 * time.Second

// Sender POSTs diagnostic Events to a configured endpoint. It is used the
// way the pack's infra-tool manifests (opentofu, kaisenlinux-terraform) use
// retryablehttp: for its well-behaved http.Client construction and leveled
// logging hook, not for retries: RetryMax is forced to 0 so a failed POST
// is never retried, matching the "strict best-effort, single attempt"
// contract in spec §4.7.
type Sender struct {
	endpoint string
	client   *retryablehttp.Client
	timeout  time.Duration
}

// NewSender constructs a Sender. An empty endpoint disables all reporting
// (spec §6 "--diagnostic-endpoint" / §8 property 6 "no-telemetry opt-out").
func NewSender(endpoint string, timeout time.Duration, log *logging.Logger) *Sender {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	client := retryablehttp.NewClient()
	client.RetryMax = 0
	client.HTTPClient.Timeout = timeout
	client.Logger = leveledLogger{log: log}

	return &Sender{endpoint: endpoint, client: client, timeout: timeout}
}

// Send POSTs ev as JSON. Any network error, timeout, or non-2xx response is
// swallowed: diagnostics must never affect the install result (spec §4.7).
func (s *Sender) Send(ctx context.Context, ev Event) {
	if s == nil || s.endpoint == "" {
		return
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return
	}

	reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := retryablehttp.NewRequestWithContext(reqCtx, http.MethodPost, s.endpoint, bytes.NewReader(data))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
}

// leveledLogger adapts *logging.Logger to retryablehttp.LeveledLogger.
type leveledLogger struct{ log *logging.Logger }

func (l leveledLogger) Error(msg string, keysAndValues ...interface{}) { l.log.Warn(msg) }
func (l leveledLogger) Info(msg string, keysAndValues ...interface{})  {}
func (l leveledLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (l leveledLogger) Warn(msg string, keysAndValues ...interface{})  {}
