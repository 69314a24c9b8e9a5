package trace

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func TestStartSpan_Disabled(t *testing.T) {
	if err := Init(false, "marko-test"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if Enabled() {
		t.Fatal("tracing should be off")
	}

	ctx, span := StartSpan(context.Background(), "noop", attribute.String("k", "v"))
	defer span.End()

	if span.SpanContext().IsValid() {
		t.Error("expected a no-op span when tracing is disabled")
	}
	if ctx == nil {
		t.Error("expected a context back")
	}
	if err := Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown without a provider: %v", err)
	}
}
