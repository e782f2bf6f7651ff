// Package dotproject implements service.Submitter against a dotProject
// installation by driving its HTML forms over HTTP.
package dotproject

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/net/html"
	"golang.org/x/net/publicsuffix"

	"dpclient/internal/service"
)

const (
	// DefaultTimeout is the per-request timeout when none is configured.
	DefaultTimeout = 30 * time.Second

	// entryPoint is the script every dotProject page goes through.
	entryPoint = "index.php"

	// dateLayout is the format of the hidden task_log_date field.
	dateLayout = "20060102"

	// maxBody caps how much of a response is read.
	maxBody = 4 << 20
)

var (
	// ErrAuthRejected means the server answered the login with the login form again.
	ErrAuthRejected = errors.New("dotproject: login rejected")

	// ErrSessionExpired means a logged-in request was bounced to the login form.
	ErrSessionExpired = errors.New("dotproject: session expired")
)

// Client implements service.Submitter for one dotProject server.
type Client struct {
	base   *url.URL
	http   *http.Client
	logger *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTransport replaces the HTTP transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.http.Transport = rt
	}
}

// New creates a client for the dotProject installation at server, e.g.
// "https://pm.example.com/dotproject".
func New(server string, opts ...Option) (*Client, error) {
	base, err := parseServer(server)
	if err != nil {
		return nil, err
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	c := &Client{
		base:   base,
		http:   &http.Client{Jar: jar, Timeout: DefaultTimeout},
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewFactory returns a service.Factory building Clients with opts.
func NewFactory(opts ...Option) service.Factory {
	return func(ctx context.Context, server string) (service.Submitter, error) {
		return New(server, opts...)
	}
}

func parseServer(server string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(server))
	if err != nil {
		return nil, fmt.Errorf("invalid server URL %q: %w", server, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server URL %q: scheme must be http or https", server)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid server URL %q: missing host", server)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + entryPoint
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

// Login implements service.Submitter.
func (c *Client) Login(ctx context.Context, user, password string) error {
	form := url.Values{
		"login":    {"login"},
		"username": {user},
		"password": {password},
		"lostpass": {"0"},
		"redirect": {""},
	}

	body, err := c.post(ctx, nil, form)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if hasLoginForm(body) {
		return ErrAuthRejected
	}
	c.logger.Debug("logged in", "server", c.base.Host, "user", user)
	return nil
}

// LogTask implements service.Submitter.
func (c *Client) LogTask(ctx context.Context, taskID string, date time.Time, hours float64, description string) error {
	query := url.Values{
		"m":       {"tasks"},
		"a":       {"view"},
		"task_id": {taskID},
	}
	form := url.Values{
		"dosql":                {"do_updatetask"},
		"task_log_id":          {"0"},
		"task_log_task":        {taskID},
		"task_log_date":        {date.Format(dateLayout)},
		"task_log_hours":       {strconv.FormatFloat(hours, 'f', -1, 64)},
		"task_log_name":        {summary(description)},
		"task_log_description": {description},
	}

	body, err := c.post(ctx, query, form)
	if err != nil {
		return fmt.Errorf("log task %s: %w", taskID, err)
	}
	if hasLoginForm(body) {
		return ErrSessionExpired
	}
	c.logger.Debug("task log submitted", "task_id", taskID, "hours", hours)
	return nil
}

func (c *Client) post(ctx context.Context, query, form url.Values) ([]byte, error) {
	u := *c.base
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	c.logger.Debug("POST", "url", u.String())
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return body, nil
}

// summary is the first line of description, used as the log entry title.
func summary(description string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(description), "\n")
	return strings.TrimSpace(line)
}

// hasLoginForm reports whether page contains the dotProject login form,
// recognised by its username input.
func hasLoginForm(page []byte) bool {
	doc, err := html.Parse(strings.NewReader(string(page)))
	if err != nil {
		return false
	}
	return findInput(doc, "username")
}

func findInput(n *html.Node, name string) bool {
	if n.Type == html.ElementNode && n.Data == "input" {
		for _, a := range n.Attr {
			if a.Key == "name" && a.Val == name {
				return true
			}
		}
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if findInput(child, name) {
			return true
		}
	}
	return false
}
