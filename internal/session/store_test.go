package session

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/Takita08/Marko-Docu-Ai/internal/model"
	"github.com/Takita08/Marko-Docu-Ai/internal/viewstate"
)

type nopAdapter struct{}

func (nopAdapter) AnalyzeDocument(context.Context, string, []byte, string) (*model.DocumentAnalysis, error) {
	return &model.DocumentAnalysis{Summary: "ok"}, nil
}

func (nopAdapter) PredictMarket(context.Context, string) (*model.StockPrediction, error) {
	return &model.StockPrediction{Symbol: "X"}, nil
}

func TestStore_CreateGetDelete(t *testing.T) {
	store, err := NewStore(nopAdapter{}, 10, zap.NewNop())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	id, ctrl := store.Create(viewstate.ModeStock)
	if id == "" {
		t.Fatal("expected a session id")
	}
	if got := ctrl.State().Mode; got != viewstate.ModeStock {
		t.Errorf("mode = %q, want stock", got)
	}

	got, err := store.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != ctrl {
		t.Error("Get returned a different controller")
	}

	if err := store.Delete(id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(id); err != ErrNotFound {
		t.Errorf("Get after delete: err = %v, want ErrNotFound", err)
	}
	if err := store.Delete(id); err != ErrNotFound {
		t.Errorf("second Delete: err = %v, want ErrNotFound", err)
	}
}

func TestStore_DefaultMode(t *testing.T) {
	store, _ := NewStore(nopAdapter{}, 10, zap.NewNop())
	_, ctrl := store.Create("")
	if got := ctrl.State().Mode; got != viewstate.ModeDoc {
		t.Errorf("mode = %q, want doc", got)
	}
}

func TestStore_EvictsOldest(t *testing.T) {
	store, _ := NewStore(nopAdapter{}, 2, zap.NewNop())

	first, _ := store.Create(viewstate.ModeDoc)
	second, _ := store.Create(viewstate.ModeDoc)

	// Touch the first so the second becomes the oldest.
	if _, err := store.Get(first); err != nil {
		t.Fatalf("Get first: %v", err)
	}
	store.Create(viewstate.ModeDoc)

	if store.Len() != 2 {
		t.Errorf("Len = %d, want 2", store.Len())
	}
	if _, err := store.Get(second); err != ErrNotFound {
		t.Errorf("expected %s to be evicted", second)
	}
	if _, err := store.Get(first); err != nil {
		t.Errorf("recently used session was evicted")
	}
}

func TestNewStore_RejectsNonPositiveSize(t *testing.T) {
	if _, err := NewStore(nopAdapter{}, 0, zap.NewNop()); err == nil {
		t.Error("expected an error for size 0")
	}
}
