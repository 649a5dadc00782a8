package shop

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kiwilliwik22/DigimonMasterOnline/internal/domain/character"
	"github.com/kiwilliwik22/DigimonMasterOnline/internal/domain/item"
	"github.com/kiwilliwik22/DigimonMasterOnline/internal/domain/outbox"
	domshop "github.com/kiwilliwik22/DigimonMasterOnline/internal/domain/shop"
	"github.com/kiwilliwik22/DigimonMasterOnline/internal/pkg/logging"
	"github.com/kiwilliwik22/DigimonMasterOnline/internal/protocol"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var ErrMalformedRequest = errors.New("shop: malformed purchase request")

// PurchaseInput is the decoded purchase request as submitted by a buyer.
type PurchaseInput struct {
	ShopHandle int32
	Slot       int32
	ItemID     int32
	Amount     int32
	UnitPrice  int64
}

// PurchaseService executes a buyer's purchase against a consigned shop.
//
// All stock mutation for one handle runs inside the registry's per-handle
// lock, so two buyers can never both observe sufficient stock and jointly
// overdraw it. Within one purchase the ordering is fixed: the currency
// debit is committed before the inventory credit, the stock reduction
// happens only after the buyer-side credit succeeded, and any shortfall
// is reconciled against what was charged before the lock is released.
type PurchaseService struct {
	registry   *Registry
	characters character.Store
	catalog    Catalog
	broadcast  Broadcaster
	publisher  outbox.Publisher
	metrics    *Metrics
}

func NewPurchaseService(
	registry *Registry,
	characters character.Store,
	catalog Catalog,
	broadcast Broadcaster,
	publisher outbox.Publisher,
	metrics *Metrics,
) *PurchaseService {
	return &PurchaseService{
		registry:   registry,
		characters: characters,
		catalog:    catalog,
		broadcast:  broadcast,
		publisher:  publisher,
		metrics:    metrics,
	}
}

// Execute runs the purchase flow for the buyer session. Rejections that
// reach the buyer as a packet (stale shop, business rule violations)
// return the matching sentinel error for the caller's log line; no state
// is mutated on any rejection path.
func (s *PurchaseService) Execute(ctx context.Context, buyer Client, in PurchaseInput) (err error) {
	logger := logging.FromContext(ctx).With(
		zap.String("flow", flowPurchase),
		zap.Int64("buyer_id", buyer.TamerID()),
		zap.Int32("shop_handle", in.ShopHandle),
		zap.Int32("item_id", in.ItemID),
		zap.Int32("amount", in.Amount),
	)

	ctx, span := tracer.Start(ctx, "ShopPurchase")
	span.SetAttributes(
		attribute.Int("shop.handle", int(in.ShopHandle)),
		attribute.Int("shop.item_id", int(in.ItemID)),
		attribute.Int("shop.amount", int(in.Amount)),
	)
	start := time.Now()
	outcome := "success"
	defer func() {
		if err != nil {
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, "purchase failed")
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
		s.metrics.observe(flowPurchase, outcome, time.Since(start).Seconds())
	}()

	if in.Amount <= 0 || in.UnitPrice < 0 {
		return ErrMalformedRequest
	}
	if in.UnitPrice > 0 && int64(in.Amount) > item.MaxBits/in.UnitPrice {
		return ErrMalformedRequest
	}

	// Critical section: held until the post-transaction state, including
	// a possible deletion, is committed and broadcast.
	release := s.registry.WithHandleLock(in.ShopHandle)
	defer release()

	shop, ok := s.registry.Lookup(in.ShopHandle)
	if !ok {
		// Stale client-side listing; tell it to drop the shop.
		_ = buyer.Send(protocol.UnloadConsignedShop(in.ShopHandle))
		logger.Info("purchase_stale_shop_handle")
		return nil
	}

	if buyer.TamerID() == shop.OwnerID {
		_ = buyer.Send(protocol.SystemMessage("You cannot buy from your own shop."))
		return domshop.ErrSelfPurchase
	}

	seller, err := s.characters.FindByID(ctx, shop.OwnerID)
	if errors.Is(err, character.ErrNotFound) {
		if derr := s.registry.Delete(ctx, in.ShopHandle); derr != nil {
			logger.Error("purchase_orphan_shop_delete_failed", zap.Error(derr))
		}
		_ = buyer.Send(protocol.UnloadConsignedShop(in.ShopHandle))
		logger.Warn("purchase_shop_owner_missing", zap.Int64("owner_id", shop.OwnerID))
		return nil
	} else if err != nil {
		return fmt.Errorf("purchase: resolve seller: %w", err)
	}

	listed, ok := shop.Stock.PriceOf(in.ItemID)
	if !ok {
		_ = buyer.Send(protocol.SystemMessage("That item is no longer for sale."))
		return domshop.ErrOutOfStock
	}
	if listed != in.UnitPrice {
		_ = buyer.Send(protocol.SystemMessage("The listing has changed, reopen the shop window."))
		return domshop.ErrPriceMismatch
	}
	info, ok := s.catalog.Info(in.ItemID)
	if !ok {
		return fmt.Errorf("purchase: no item definition for %d", in.ItemID)
	}

	tamer := buyer.Tamer()
	total := listed * int64(in.Amount)

	if err := tamer.Inventory.RemoveBits(total); err != nil {
		if errors.Is(err, item.ErrInsufficientBits) {
			_ = buyer.Send(protocol.SystemMessage("Not enough bits."))
		}
		return fmt.Errorf("purchase: debit %d bits: %w", total, err)
	}
	// Debit committed durably before the credit is attempted, so a crash
	// mid-transaction never grants free items.
	if err := s.characters.SaveContainer(ctx, tamer.ID, character.ContainerInventory, tamer.Inventory); err != nil {
		tamer.Inventory.AddBits(total)
		return fmt.Errorf("purchase: persist debit: %w", err)
	}

	tamer.Inventory.AddItems([]*item.Item{{ItemID: in.ItemID, Amount: in.Amount, Info: info}})
	if err := s.characters.SaveContainer(ctx, tamer.ID, character.ContainerInventory, tamer.Inventory); err != nil {
		logger.Error("purchase_persist_credit_failed", zap.Error(err))
	}
	_ = buyer.Send(protocol.LoadInventory(tamer.Inventory))

	// First-fit reduction over the stacks at the validated price; stacks
	// of the same item at another price are separate listings and stay
	// untouched. Under the handle lock the only way this comes up short
	// is a request exceeding that listing's stock.
	before := shop.Stock.CountAtPrice(in.ItemID, listed)
	fully := shop.Stock.RemoveOrReduceItemAtPrice(in.ItemID, listed, in.Amount)
	delivered := before - shop.Stock.CountAtPrice(in.ItemID, listed)

	if !fully {
		s.reconcileShortfall(ctx, buyer, tamer, in, listed, delivered, logger)
	}

	if err := s.registry.Persist(ctx, shop); err != nil {
		logger.Error("purchase_persist_shop_failed", zap.Error(err))
	}
	s.broadcast.BroadcastToViewersAndSelf(ctx, buyer.TamerID(), protocol.ConsignedShopItemsView(shop, seller.Name))

	if shop.Empty() {
		if err := s.registry.Delete(ctx, in.ShopHandle); err != nil {
			logger.Error("purchase_delete_empty_shop_failed", zap.Error(err))
		}
		s.broadcast.BroadcastToViewersAndSelf(ctx, buyer.TamerID(), protocol.UnloadConsignedShop(in.ShopHandle))
		logger.Info("consigned_shop_depleted")
	}

	if delivered > 0 {
		proceeds := listed * int64(delivered)
		evt := domshop.NewSaleEvent(in.ShopHandle, shop.OwnerID, tamer.ID, in.ItemID, info.Name, delivered, proceeds)
		if perr := s.publisher.Publish(ctx, evt); perr != nil {
			logger.Warn("purchase_sale_event_publish_failed", zap.Error(perr))
		}
		_ = buyer.Send(protocol.SystemMessage(fmt.Sprintf("Successfully bought %s x%d.", info.Name, delivered)))
	}

	logger.Info("purchase_completed",
		zap.Int32("delivered", delivered),
		zap.Int64("charged", listed*int64(delivered)),
	)
	span.SetAttributes(attribute.Int("shop.delivered", int(delivered)))
	return nil
}

// reconcileShortfall gives back the undelivered portion: the bits charged
// for it and the excess items already credited. Without this an
// under-stocked purchase would leave the buyer paid-up for units the shop
// never held, creating items and destroying bits on opposite sides.
func (s *PurchaseService) reconcileShortfall(
	ctx context.Context,
	buyer Client,
	tamer *character.Tamer,
	in PurchaseInput,
	listed int64,
	delivered int32,
	logger *zap.Logger,
) {
	shortfall := in.Amount - delivered
	refund := listed * int64(shortfall)

	tamer.Inventory.RemoveOrReduceItem(in.ItemID, shortfall)
	tamer.Inventory.AddBits(refund)

	if err := s.characters.SaveContainer(ctx, tamer.ID, character.ContainerInventory, tamer.Inventory); err != nil {
		logger.Error("purchase_persist_reconciliation_failed", zap.Error(err))
	}
	_ = buyer.Send(protocol.LoadInventory(tamer.Inventory))
	_ = buyer.Send(protocol.SystemMessage(fmt.Sprintf("Only %d were in stock; %d bits refunded.", delivered, refund)))

	logger.Warn("purchase_partial_fulfillment",
		zap.Int32("requested", in.Amount),
		zap.Int32("delivered", delivered),
		zap.Int64("refunded_bits", refund),
	)
}
