package ctxutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestWithActor_And_ActorFromCtx(t *testing.T) {
	t.Parallel()

	actor := Actor{ID: uuid.New(), Name: "operator"}
	ctx := WithActor(context.Background(), actor)

	got, ok := ActorFromCtx(ctx)
	if !ok {
		t.Fatal("expected ok=true for valid actor")
	}
	if got != actor {
		t.Fatalf("expected %+v, got %+v", actor, got)
	}
}

func TestActorFromCtx_EmptyContext(t *testing.T) {
	t.Parallel()

	if _, ok := ActorFromCtx(context.Background()); ok {
		t.Fatal("expected ok=false for empty context")
	}
}

func TestActorFromCtx_NilID(t *testing.T) {
	t.Parallel()

	ctx := WithActor(context.Background(), Actor{Name: "anonymous"})

	if _, ok := ActorFromCtx(ctx); ok {
		t.Fatal("expected ok=false for nil actor id")
	}
}

func TestWithRequestID_And_RequestIDFromCtx(t *testing.T) {
	t.Parallel()

	ctx := WithRequestID(context.Background(), "req-123")

	if got := RequestIDFromCtx(ctx); got != "req-123" {
		t.Fatalf("expected req-123, got %s", got)
	}
}

func TestRequestIDFromCtx_EmptyContext(t *testing.T) {
	t.Parallel()

	if got := RequestIDFromCtx(context.Background()); got != "" {
		t.Fatalf("expected empty string, got %s", got)
	}
}
