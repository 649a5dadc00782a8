package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/kiwilliwik22/DigimonMasterOnline/internal/domain/character"
	"github.com/kiwilliwik22/DigimonMasterOnline/internal/protocol"
)

type recordingProcessor struct {
	ptype    protocol.Type
	payloads [][]byte
	err      error
}

func (p *recordingProcessor) Type() protocol.Type { return p.ptype }

func (p *recordingProcessor) Process(_ context.Context, _ *Session, payload []byte) error {
	p.payloads = append(p.payloads, payload)
	return p.err
}

func testSession() *Session {
	return NewSession(nil, character.NewTamer(1, "tester"))
}

func TestDispatchRoutesByType(t *testing.T) {
	open := &recordingProcessor{ptype: protocol.TypeConsignedShopOpen}
	purchase := &recordingProcessor{ptype: protocol.TypeConsignedShopPurchase}
	d, err := NewDispatcher(open, purchase)
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}

	frame := protocol.NewWriter(protocol.TypeConsignedShopPurchase).
		WriteInt32(30001).
		Bytes()
	d.Dispatch(context.Background(), testSession(), frame)

	if len(open.payloads) != 0 {
		t.Fatalf("open processor must not run, got %d calls", len(open.payloads))
	}
	if len(purchase.payloads) != 1 {
		t.Fatalf("expected one purchase call, got %d", len(purchase.payloads))
	}
	r := protocol.NewReader(purchase.payloads[0])
	if got := r.Int32(); got != 30001 {
		t.Fatalf("payload must exclude the type prefix, got leading %d", got)
	}
}

func TestDispatchUnknownTypeDropped(t *testing.T) {
	open := &recordingProcessor{ptype: protocol.TypeConsignedShopOpen}
	d, err := NewDispatcher(open)
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}

	d.Dispatch(context.Background(), testSession(), protocol.NewWriter(9999).Bytes())
	d.Dispatch(context.Background(), testSession(), []byte{0x01})

	if len(open.payloads) != 0 {
		t.Fatalf("no processor should have run, got %d calls", len(open.payloads))
	}
}

func TestDispatchProcessorErrorDoesNotPanic(t *testing.T) {
	failing := &recordingProcessor{ptype: protocol.TypeConsignedShopOpen, err: errors.New("boom")}
	d, err := NewDispatcher(failing)
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}

	d.Dispatch(context.Background(), testSession(), protocol.NewWriter(protocol.TypeConsignedShopOpen).Bytes())

	if len(failing.payloads) != 1 {
		t.Fatalf("processor should have run once, got %d", len(failing.payloads))
	}
}

func TestNewDispatcherRejectsDuplicateType(t *testing.T) {
	a := &recordingProcessor{ptype: protocol.TypeConsignedShopOpen}
	b := &recordingProcessor{ptype: protocol.TypeConsignedShopOpen}
	if _, err := NewDispatcher(a, b); err == nil {
		t.Fatal("expected duplicate registration error")
	}
}
