// Package portal drives institution web portals at the HTTP level. A Session
// plays the role a browser session plays for the bots: it owns cookies and
// navigation state, fills and submits forms, uploads documents, and keeps an
// audit trail of page snapshots. Each bot adapter exclusively owns one
// Session for its lifetime and must Close it on every exit path.
package portal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"ufunda-bots/internal/common/config"
	"ufunda-bots/internal/common/errors"
	"ufunda-bots/internal/common/logger"
)

type Session struct {
	client      *resty.Client
	maxRetries  int
	snapshotDir string
	logger      logger.Logger

	doc       *goquery.Document
	pageURL   string
	snapshots []string
	closed    bool
}

// NewSession builds a session for one portal. The base URL, timeout, retry
// budget, and snapshot directory come from the bot's config block.
func NewSession(cfg config.BotConfig, log logger.Logger) *Session {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(config.GetDuration(cfg.Timeout)).
		SetHeader("User-Agent", "ufunda-bots/1.0")

	return &Session{
		client:      client,
		maxRetries:  cfg.MaxRetries,
		snapshotDir: cfg.SnapshotDir,
		logger:      log,
	}
}

// Navigate performs a GET and parses the resulting page.
func (s *Session) Navigate(ctx context.Context, path string) (*goquery.Document, error) {
	resp, err := s.client.R().SetContext(ctx).Get(path)
	if err != nil {
		return nil, errors.NewNavigationFailedError(path, err)
	}
	if resp.IsError() {
		return nil, errors.NewNavigationFailedError(path, fmt.Errorf("status %d", resp.StatusCode()))
	}
	return s.setPage(path, resp.String())
}

// SubmitForm posts form fields and parses the resulting page.
func (s *Session) SubmitForm(ctx context.Context, path string, fields map[string]string) (*goquery.Document, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetFormData(fields).
		Post(path)
	if err != nil {
		return nil, errors.NewNavigationFailedError(path, err)
	}
	if resp.IsError() {
		return nil, errors.NewNavigationFailedError(path, fmt.Errorf("status %d", resp.StatusCode()))
	}
	return s.setPage(path, resp.String())
}

// RetrySubmit retries SubmitForm with exponential backoff. Portals drop form
// posts under load; a bounded retry is the adapter-level mitigation, the
// dispatch core never retries.
func (s *Session) RetrySubmit(ctx context.Context, path string, fields map[string]string) (*goquery.Document, error) {
	attempts := s.maxRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<(attempt-1)) * time.Second
			select {
			case <-ctx.Done():
				return nil, errors.NewPortalTimeoutError(path)
			case <-time.After(backoff):
			}
		}

		doc, err := s.SubmitForm(ctx, path, fields)
		if err == nil {
			return doc, nil
		}
		lastErr = err
		s.logger.Warn("form submit attempt failed", map[string]interface{}{
			"path":    path,
			"attempt": attempt + 1,
			"error":   err.Error(),
		})
	}
	return nil, lastErr
}

// UploadFile posts one document as multipart form data.
func (s *Session) UploadFile(ctx context.Context, path, fieldName, filePath string, extra map[string]string) (*goquery.Document, error) {
	if _, err := os.Stat(filePath); err != nil {
		return nil, errors.NewUploadFailedError(filepath.Base(filePath), err)
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetFile(fieldName, filePath).
		SetFormData(extra).
		Post(path)
	if err != nil {
		return nil, errors.NewUploadFailedError(filepath.Base(filePath), err)
	}
	if resp.IsError() {
		return nil, errors.NewUploadFailedError(filepath.Base(filePath), fmt.Errorf("status %d", resp.StatusCode()))
	}
	return s.setPage(path, resp.String())
}

// Page returns the last parsed page, or nil before the first navigation.
func (s *Session) Page() *goquery.Document {
	return s.doc
}

// Text returns the trimmed text of the first node matching the selector.
func (s *Session) Text(selector string) string {
	if s.doc == nil {
		return ""
	}
	return strings.TrimSpace(s.doc.Find(selector).First().Text())
}

// Exists reports whether the current page has a node matching the selector.
func (s *Session) Exists(selector string) bool {
	return s.doc != nil && s.doc.Find(selector).Length() > 0
}

// RequireText returns the text of the first matching node or an
// ELEMENT_NOT_FOUND error.
func (s *Session) RequireText(selector string) (string, error) {
	if !s.Exists(selector) {
		return "", errors.NewElementNotFoundError(selector)
	}
	return s.Text(selector), nil
}

// HiddenFields extracts the hidden input values of the first form matching
// the selector, for carrying server-side tokens across posts.
func (s *Session) HiddenFields(formSelector string) map[string]string {
	out := map[string]string{}
	if s.doc == nil {
		return out
	}
	s.doc.Find(formSelector).First().Find("input[type=hidden]").Each(func(_ int, sel *goquery.Selection) {
		name, ok := sel.Attr("name")
		if !ok {
			return
		}
		val, _ := sel.Attr("value")
		out[name] = val
	})
	return out
}

// Snapshot writes the current page HTML to the snapshot dir and records the
// path in the session's audit trail. Failures are logged, never fatal.
func (s *Session) Snapshot(name string) string {
	if s.doc == nil {
		return ""
	}
	html, err := s.doc.Html()
	if err != nil {
		s.logger.Warn("snapshot failed", map[string]interface{}{"name": name, "error": err.Error()})
		return ""
	}

	if err := os.MkdirAll(s.snapshotDir, 0o755); err != nil {
		s.logger.Warn("snapshot dir failed", map[string]interface{}{"dir": s.snapshotDir, "error": err.Error()})
		return ""
	}

	path := filepath.Join(s.snapshotDir, fmt.Sprintf("%d_%s.html", time.Now().Unix(), name))
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		s.logger.Warn("snapshot failed", map[string]interface{}{"name": name, "error": err.Error()})
		return ""
	}
	s.snapshots = append(s.snapshots, path)
	return path
}

// Snapshots returns the snapshot paths recorded so far.
func (s *Session) Snapshots() []string {
	return s.snapshots
}

// Close releases the session. Safe to call more than once.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.doc = nil
}

func (s *Session) setPage(url, body string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, errors.NewNavigationFailedError(url, err)
	}
	s.doc = doc
	s.pageURL = url
	return doc, nil
}
