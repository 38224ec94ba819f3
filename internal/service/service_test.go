package service

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ecosnap/ecosnap/internal/vision"
)

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(ctx context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

var codePattern = regexp.MustCompile(`code is: ([0-9a-f]{6})`)

// lastCode returns the code from the most recent mail.
func (m *fakeMailer) lastCode(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent, "no mail sent")
	match := codePattern.FindStringSubmatch(m.sent[len(m.sent)-1].Body)
	require.Len(t, match, 2, "mail has no code")
	return match[1]
}

type fakeHost struct {
	url   string
	err   error
	calls int
}

func (h *fakeHost) Upload(ctx context.Context, data []byte, mimeType string) (string, error) {
	h.calls++
	return h.url, h.err
}

type fakeClassifier struct {
	answer string
	err    error
	got    []vision.Request
}

func (c *fakeClassifier) Classify(ctx context.Context, req vision.Request) (string, error) {
	c.got = append(c.got, req)
	return c.answer, c.err
}

var errBoom = errors.New("boom")
