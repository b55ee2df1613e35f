package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abhisek/chessdrill/internal/store"
)

// recorder appends every request to the event log.
type recorder struct {
	inner    Provider
	provider string
	events   store.EventRepo
	logger   *slog.Logger
}

// WithLogging records each Generate call as an LLM request event. provider
// is the vendor name stored with the event. A failed append is logged and
// never fails the request.
func WithLogging(p Provider, provider string, events store.EventRepo, logger *slog.Logger) Provider {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &recorder{inner: p, provider: provider, events: events, logger: logger}
}

func (r *recorder) ModelID() string { return r.inner.ModelID() }

func (r *recorder) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := r.inner.Generate(ctx, req)
	ev := requestEvent(r.provider, r.inner.ModelID(), PurposeFrom(ctx), req, resp, err)
	ev.LatencyMs = time.Since(start).Milliseconds()

	r.logger.Debug("llm request",
		"provider", ev.Provider,
		"model", ev.Model,
		"purpose", ev.Purpose,
		"latency_ms", ev.LatencyMs,
		"success", ev.Success)

	if appendErr := r.events.AppendLLMRequest(ctx, ev); appendErr != nil {
		r.logger.Warn("record llm request", "error", appendErr)
	}
	return resp, err
}

func requestEvent(provider, model string, purpose Purpose, req Request, resp *Response, err error) store.LLMRequestEventData {
	ev := store.LLMRequestEventData{
		Provider:    provider,
		Model:       model,
		Purpose:     string(purpose),
		Success:     err == nil,
		RequestBody: transcript(req),
	}
	if resp != nil {
		if resp.Model != "" {
			ev.Model = resp.Model
		}
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
		ev.ResponseBody = string(resp.Content)
	}
	if err != nil {
		ev.ErrorMessage = err.Error()
		var e *Error
		if errors.As(err, &e) {
			ev.ErrorKind = e.Kind.String()
			if len(e.Content) > 0 {
				ev.ResponseBody = string(e.Content)
			}
		}
	}
	return ev
}

// transcript renders a request the way `chessdrill llm view` shows it.
func transcript(req Request) string {
	var b strings.Builder
	if req.System != "" {
		fmt.Fprintf(&b, "[system]\n%s\n\n", req.System)
	}
	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
	}
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n%s\n", req.Schema.Name, def)
		}
	}
	return b.String()
}
