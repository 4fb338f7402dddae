package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/aretw0/onboarding/pkg/domain"
)

// TextHandler implements IOHandler over a line-oriented reader and writer.
type TextHandler struct {
	Reader   *bufio.Reader
	Writer   io.Writer
	Renderer ContentRenderer

	out        *termenv.Output
	readSecret func() (string, error)

	requests  chan bool
	results   chan inputResult
	startOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer configures the content renderer.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// WithSecretReader replaces how hidden input is read.
func WithSecretReader(fn func() (string, error)) TextHandlerOption {
	return func(h *TextHandler) {
		h.readSecret = fn
	}
}

// NewTextHandler creates a handler for standard text IO.
// Colors are only emitted when w is a terminal.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Reader: bufio.NewReader(r),
		Writer: w,
		out:    termenv.NewOutput(w),
	}
	h.readSecret = resolveSecretReader(r, h)

	for _, opt := range opts {
		opt(h)
	}
	return h
}

// resolveSecretReader reads without echo when r is a terminal and falls back
// to a plain line otherwise (pipes, tests).
func resolveSecretReader(r io.Reader, h *TextHandler) func() (string, error) {
	if f, ok := r.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return func() (string, error) {
			b, err := term.ReadPassword(int(f.Fd()))
			fmt.Fprintln(h.Writer)
			return string(b), err
		}
	}
	return h.readLine
}

func (h *TextHandler) readLine() (string, error) {
	text, err := h.Reader.ReadString('\n')
	if err == io.EOF && text != "" {
		err = nil
	}
	return text, err
}

// initPump starts the reader goroutine. It only reads when asked so that a
// plain read never races with a hidden one on the same descriptor.
func (h *TextHandler) initPump() {
	h.startOnce.Do(func() {
		h.requests = make(chan bool)
		h.results = make(chan inputResult, 1)
		go h.pump()
	})
}

func (h *TextHandler) pump() {
	for secret := range h.requests {
		var res inputResult
		if secret {
			res.text, res.err = h.readSecret()
		} else {
			res.text, res.err = h.readLine()
		}
		h.results <- res
	}
}

func (h *TextHandler) ShowStep(ctx context.Context, view domain.View) error {
	md := fmt.Sprintf("## %s\n\n*Step %d of %d*", view.Title, view.Step, view.TotalSteps)
	if view.Title == "" {
		md = fmt.Sprintf("## Step %d of %d", view.Step, view.TotalSteps)
	}
	fmt.Fprintln(h.Writer, strings.TrimSpace(h.render(md)))
	return nil
}

func (h *TextHandler) ShowErrors(ctx context.Context, errs []FieldMessage) error {
	for _, e := range errs {
		line := fmt.Sprintf("✗ %s: %s", e.Label, e.Message)
		fmt.Fprintln(h.Writer, h.out.String(line).Foreground(h.out.Color("#f87171")))
	}
	return nil
}

func (h *TextHandler) Prompt(ctx context.Context, label, current string, secret bool) (string, error) {
	h.initPump()

	switch {
	case current != "" && !secret:
		fmt.Fprintf(h.Writer, "%s [%s]: ", label, current)
	default:
		fmt.Fprintf(h.Writer, "%s: ", label)
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case h.requests <- secret:
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-h.results:
		if res.err != nil {
			return "", res.err
		}
		return strings.TrimRight(res.text, "\r\n"), nil
	}
}

func (h *TextHandler) SystemOutput(ctx context.Context, msg string) error {
	fmt.Fprintln(h.Writer, h.out.String(msg).Faint())
	return nil
}

func (h *TextHandler) render(md string) string {
	if h.Renderer == nil {
		return md
	}
	rendered, err := h.Renderer(md)
	if err != nil {
		return md
	}
	return rendered
}
