// Package notify sends reconciliation results to shoutrrr services.
package notify

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/containrrr/shoutrrr"
	"github.com/containrrr/shoutrrr/pkg/types"

	"gitlab.bluewillows.net/root/sambadns/pkg/reconcile"
)

// DefaultTitle is added to service URLs that do not set a title.
const DefaultTitle = "sambadns"

// Sender delivers one message to every configured service and returns
// one error slot per service.
type Sender interface {
	Send(message string, params *types.Params) []error
}

// Notifier reports changed and failed reconciliations.
type Notifier struct {
	sender   Sender
	services []string
	title    string
	logger   *slog.Logger
}

// Option is a functional option for configuring the Notifier.
type Option func(*Notifier)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Notifier) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// WithTitle overrides DefaultTitle.
func WithTitle(title string) Option {
	return func(n *Notifier) {
		n.title = title
	}
}

// WithSender replaces the shoutrrr router.
func WithSender(sender Sender) Option {
	return func(n *Notifier) {
		n.sender = sender
	}
}

// New creates a Notifier for the given shoutrrr URLs. With no URLs the
// Notifier is disabled and Notify does nothing.
func New(urls []string, opts ...Option) (*Notifier, error) {
	n := &Notifier{
		title:  DefaultTitle,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}

	if n.sender == nil && len(urls) > 0 {
		addresses := make([]string, len(urls))
		for i, u := range urls {
			address, err := withDefaultTitle(u, n.title)
			if err != nil {
				return nil, fmt.Errorf("notify url %d: %w", i, err)
			}
			addresses[i] = address
		}

		sender, err := shoutrrr.CreateSender(addresses...)
		if err != nil {
			return nil, fmt.Errorf("creating shoutrrr sender: %w", err)
		}
		n.sender = sender
	}

	n.services = make([]string, len(urls))
	for i, u := range urls {
		n.services[i] = strings.SplitN(u, ":", 2)[0]
	}

	return n, nil
}

// Enabled reports whether any service is configured.
func (n *Notifier) Enabled() bool {
	return n != nil && n.sender != nil
}

// Notify sends a message for changed or failed results. Unchanged results
// are not sent. Delivery errors are logged.
func (n *Notifier) Notify(req reconcile.Request, resp reconcile.Response) {
	if !n.Enabled() {
		return
	}

	verdict := resp.Verdict()
	if verdict == reconcile.VerdictUnchanged {
		return
	}

	params := types.Params{"title": n.title}
	errs := n.sender.Send(Message(req, resp), &params)
	for i, err := range errs {
		if err == nil {
			continue
		}
		service := "unknown"
		if i < len(n.services) {
			service = n.services[i]
		}
		n.logger.Error("notification failed",
			slog.String("service", service),
			slog.String("error", err.Error()),
		)
	}
}

// Message renders the notification text for one result.
func Message(req reconcile.Request, resp reconcile.Response) string {
	var target string
	switch req.Function {
	case reconcile.FunctionRecord:
		target = fmt.Sprintf("record %s.%s %s %s", req.Name, req.Zone, req.Type, req.Data)
	default:
		target = fmt.Sprintf("zone %s", req.Zone)
	}

	msg := fmt.Sprintf("%s %s on %s: %s", target, req.State, req.Server, resp.Verdict())
	if resp.Failed && resp.Msg != "" {
		msg += ": " + strings.TrimSpace(resp.Msg)
	}
	return msg
}

func withDefaultTitle(address, title string) (string, error) {
	u, err := url.Parse(address)
	if err != nil {
		return "", err
	}

	values := u.Query()
	if values.Has("title") {
		return address, nil
	}
	values.Set("title", title)
	u.RawQuery = values.Encode()
	return u.String(), nil
}
