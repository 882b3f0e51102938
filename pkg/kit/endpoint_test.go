package kit

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func tag(name string, order *[]string) Middleware {
	return func(next Endpoint) Endpoint {
		return func(ctx context.Context, req any) (any, error) {
			*order = append(*order, name)
			return next(ctx, req)
		}
	}
}

func TestChain_Order(t *testing.T) {
	var order []string
	ep := Chain(tag("a", &order), tag("b", &order), tag("c", &order))(func(context.Context, any) (any, error) {
		order = append(order, "endpoint")
		return "ok", nil
	})
	resp, err := ep(context.Background(), nil)
	if err != nil || resp != "ok" {
		t.Fatalf("resp = %v, %v", resp, err)
	}
	if got := strings.Join(order, ","); got != "a,b,c,endpoint" {
		t.Errorf("order = %s", got)
	}
}

func TestRecover(t *testing.T) {
	ep := Recover()(func(context.Context, any) (any, error) {
		panic("boom")
	})
	resp, err := ep(context.Background(), nil)
	if resp != nil || err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("resp = %v, err = %v", resp, err)
	}
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := WithRequestID(WithTransport(context.Background(), "mcp"), "req-1")

	ok := Logging(logger, "lookup")(func(context.Context, any) (any, error) { return 1, nil })
	ok(ctx, nil)
	out := buf.String()
	for _, want := range []string{"endpoint served", "endpoint=lookup", "transport=mcp", "request_id=req-1"} {
		if !strings.Contains(out, want) {
			t.Errorf("log %q missing %q", out, want)
		}
	}

	buf.Reset()
	failing := Logging(logger, "lookup")(func(context.Context, any) (any, error) { return nil, errors.New("nope") })
	if _, err := failing(ctx, nil); err == nil {
		t.Fatal("error swallowed")
	}
	if out := buf.String(); !strings.Contains(out, "level=WARN") || !strings.Contains(out, "error=nope") {
		t.Errorf("failure log = %q", out)
	}
}

func TestContextDefaults(t *testing.T) {
	ctx := context.Background()
	if GetTransport(ctx) != "http" {
		t.Errorf("default transport = %q", GetTransport(ctx))
	}
	if GetRequestID(ctx) != "" {
		t.Errorf("default request id = %q", GetRequestID(ctx))
	}
	a := GetRequestID(WithRequestID(ctx, ""))
	b := GetRequestID(WithRequestID(ctx, ""))
	if a == "" || a == b {
		t.Errorf("generated ids %q, %q", a, b)
	}
}
