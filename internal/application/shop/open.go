package shop

import (
	"context"
	"fmt"
	"time"

	"github.com/kiwilliwik22/DigimonMasterOnline/internal/domain/character"
	"github.com/kiwilliwik22/DigimonMasterOnline/internal/domain/item"
	domshop "github.com/kiwilliwik22/DigimonMasterOnline/internal/domain/shop"
	"github.com/kiwilliwik22/DigimonMasterOnline/internal/pkg/logging"
	"github.com/kiwilliwik22/DigimonMasterOnline/internal/protocol"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("application/shop")

const (
	flowOpenShop = "shop.open"
	flowPurchase = "shop.purchase"
)

// OpenShopInput is the decoded open-shop request.
type OpenShopInput struct {
	X       int32
	Y       int32
	Name    string
	Entries []SellEntry
}

// SellEntry is one line of the sell list.
type SellEntry struct {
	ItemID int32
	Amount int32
	Price  int64
}

// OpenShopService validates and executes open-shop requests: it moves
// the listed items out of the seller's bag into a new shop's stock,
// creates the shop durably, announces it, and tears down the seller's
// personal shop mode.
type OpenShopService struct {
	registry   *Registry
	characters character.Store
	catalog    Catalog
	broadcast  Broadcaster
	metrics    *Metrics
}

func NewOpenShopService(
	registry *Registry,
	characters character.Store,
	catalog Catalog,
	broadcast Broadcaster,
	metrics *Metrics,
) *OpenShopService {
	return &OpenShopService{
		registry:   registry,
		characters: characters,
		catalog:    catalog,
		broadcast:  broadcast,
		metrics:    metrics,
	}
}

// Execute runs the open-shop flow for the seller session. Line items
// that cannot be consigned are skipped with a message to the seller; the
// rest of the listing proceeds.
func (s *OpenShopService) Execute(ctx context.Context, seller Client, in OpenShopInput) (err error) {
	logger := logging.FromContext(ctx).With(
		zap.String("flow", flowOpenShop),
		zap.Int64("tamer_id", seller.TamerID()),
	)

	ctx, span := tracer.Start(ctx, "ShopOpen")
	span.SetAttributes(
		attribute.Int64("shop.owner_id", seller.TamerID()),
		attribute.Int("shop.listed_items", len(in.Entries)),
	)
	start := time.Now()
	outcome := "success"
	defer func() {
		if err != nil {
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, "open failed")
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
		s.metrics.observe(flowOpenShop, outcome, time.Since(start).Seconds())
	}()

	tamer := seller.Tamer()
	valid := s.filterSellable(tamer, seller, in.Entries)
	if len(valid) == 0 {
		_ = seller.Send(protocol.SystemMessage("No sellable items in the listing."))
		return fmt.Errorf("open shop: %w", domshop.ErrOutOfStock)
	}

	newShop := domshop.New(seller.TamerID(), in.Name, in.X, in.Y, tamer.MapID, tamer.Channel)

	// Transfer is add-then-remove: the held-amount check above guarantees
	// the removal takes exactly what the stock gained.
	newShop.Stock.AddItems(valid)
	tamer.Inventory.RemoveOrReduceItems(valid)

	if err := s.characters.SaveContainer(ctx, tamer.ID, character.ContainerInventory, tamer.Inventory); err != nil {
		s.restoreListing(tamer, valid)
		return fmt.Errorf("open shop: persist inventory: %w", err)
	}

	if err := s.registry.Create(ctx, newShop); err != nil {
		s.restoreListing(tamer, valid)
		if perr := s.characters.SaveContainer(ctx, tamer.ID, character.ContainerInventory, tamer.Inventory); perr != nil {
			logger.Error("open_shop_restore_persist_failed", zap.Error(perr))
		}
		_ = seller.Send(protocol.SystemMessage("Could not open the consigned shop."))
		return err
	}

	logger.Info("consigned_shop_opened",
		zap.Int32("handle", newShop.Handle),
		zap.Int32("general_handler", newShop.GeneralHandler),
		zap.Int32("map_id", newShop.MapID),
		zap.Int("stacks", len(valid)),
	)
	span.SetAttributes(attribute.Int("shop.handle", int(newShop.Handle)))

	s.broadcast.BroadcastToViewersAndSelf(ctx, tamer.ID, protocol.LoadConsignedShop(newShop))
	_ = seller.Send(protocol.SystemMessage("Consigned shop opened."))

	// The personal single-seat shop mode is mutually exclusive with a
	// consigned shop; tear it down and restore the previous condition.
	closedShopItemID := tamer.ShopItemID
	tamer.UpdateShopItemID(0)
	_ = seller.Send(protocol.PersonalShopClose(closedShopItemID))
	tamer.RestorePreviousCondition()
	s.broadcast.BroadcastToViewersAndSelf(ctx, tamer.ID, protocol.SyncCondition(tamer.GeneralHandler, int32(tamer.CurrentCondition)))

	return nil
}

// filterSellable resolves each entry against the catalog and the seller's
// held stock, skipping bad line items with a message instead of aborting
// the whole listing.
func (s *OpenShopService) filterSellable(tamer *character.Tamer, seller Client, entries []SellEntry) []*item.Item {
	reserved := make(map[int32]int32)
	valid := make([]*item.Item, 0, len(entries))

	for _, entry := range entries {
		if entry.Amount <= 0 || entry.Price < 0 {
			_ = seller.Send(protocol.SystemMessage(fmt.Sprintf("Item %d cannot be consigned.", entry.ItemID)))
			continue
		}
		info, ok := s.catalog.Info(entry.ItemID)
		if !ok || !info.Sellable() {
			_ = seller.Send(protocol.SystemMessage(fmt.Sprintf("Item %d cannot be consigned.", entry.ItemID)))
			continue
		}
		held := tamer.Inventory.CountOf(entry.ItemID) - reserved[entry.ItemID]
		if held < entry.Amount {
			_ = seller.Send(protocol.SystemMessage(fmt.Sprintf("Not enough of item %d to consign.", entry.ItemID)))
			continue
		}
		reserved[entry.ItemID] += entry.Amount

		valid = append(valid, &item.Item{
			ItemID:    entry.ItemID,
			Amount:    entry.Amount,
			UnitPrice: entry.Price,
			Info:      info,
		})
	}
	return valid
}

// restoreListing moves an already-transferred listing back into the
// seller's bag after a later step failed. Listing prices are dropped so
// the stacks merge back with the seller's plain stock.
func (s *OpenShopService) restoreListing(tamer *character.Tamer, listing []*item.Item) {
	returned := make([]*item.Item, 0, len(listing))
	for _, it := range listing {
		back := it.Clone()
		back.UnitPrice = 0
		returned = append(returned, back)
	}
	tamer.Inventory.AddItems(returned)
}
