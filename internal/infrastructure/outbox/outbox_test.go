package outbox

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	domoutbox "github.com/kiwilliwik22/DigimonMasterOnline/internal/domain/outbox"
	"go.uber.org/zap"
)

type testEvent struct{ name string }

func (e testEvent) EventName() string { return e.name }

func TestBusDeliversToSubscriber(t *testing.T) {
	bus := NewBus(zap.NewNop())
	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	var handled atomic.Int32
	done := make(chan struct{})
	bus.Subscribe("shop.sale", func(_ context.Context, _ domoutbox.Event) error {
		if handled.Add(1) == 1 {
			close(done)
		}
		return nil
	})

	if err := bus.Publish(context.Background(), testEvent{name: "shop.sale"}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler never ran")
	}
}

func TestBusPublishAfterStop(t *testing.T) {
	bus := NewBus(zap.NewNop())
	bus.Start(context.Background())
	bus.Stop(context.Background())

	err := bus.Publish(context.Background(), testEvent{name: "shop.sale"})
	if !errors.Is(err, ErrBusClosed) {
		t.Fatalf("expected ErrBusClosed, got %v", err)
	}
}

func TestBusStopDuringConcurrentPublish(t *testing.T) {
	bus := NewBus(zap.NewNop())
	bus.Start(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if err := bus.Publish(context.Background(), testEvent{name: "shop.sale"}); err != nil {
					if !errors.Is(err, ErrBusClosed) {
						t.Errorf("unexpected publish error: %v", err)
					}
					return
				}
			}
		}()
	}

	bus.Stop(context.Background())
	wg.Wait()
}
