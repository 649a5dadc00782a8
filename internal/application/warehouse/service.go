package warehouse

import (
	"context"
	"fmt"

	"github.com/kiwilliwik22/DigimonMasterOnline/internal/domain/character"
	"github.com/kiwilliwik22/DigimonMasterOnline/internal/domain/outbox"
	"github.com/kiwilliwik22/DigimonMasterOnline/internal/domain/shop"
	"github.com/kiwilliwik22/DigimonMasterOnline/internal/pkg/logging"
	"github.com/kiwilliwik22/DigimonMasterOnline/internal/protocol"
	"go.uber.org/zap"
)

// Notifier reaches a seller's live session when one exists.
type Notifier interface {
	SendToTamer(tamerID int64, pkt []byte) bool
}

// Service settles the seller side of a consigned sale: proceeds go to
// the seller's warehouse (the seller may be offline) and a notice is
// delivered when a session is connected.
type Service struct {
	characters character.Store
	notifier   Notifier
}

func NewService(characters character.Store, notifier Notifier) *Service {
	return &Service{
		characters: characters,
		notifier:   notifier,
	}
}

// Register subscribes the service to sale events on the bus.
func (s *Service) Register(sub outbox.Subscriber) {
	sub.Subscribe(shop.SaleEvent{}.EventName(), s.handleSale)
}

func (s *Service) handleSale(ctx context.Context, e outbox.Event) error {
	evt, ok := e.(shop.SaleEvent)
	if !ok {
		return nil
	}
	return s.SettleSale(ctx, evt)
}

// SettleSale credits the sale proceeds to the seller's warehouse and
// persists it, then notifies the seller if online.
func (s *Service) SettleSale(ctx context.Context, evt shop.SaleEvent) error {
	logger := logging.FromContext(ctx).With(
		zap.String("component", "warehouse"),
		zap.Int64("seller_id", evt.SellerID),
		zap.Int32("shop_handle", evt.ShopHandle),
	)

	seller, err := s.characters.FindByID(ctx, evt.SellerID)
	if err != nil {
		return fmt.Errorf("warehouse: resolve seller %d: %w", evt.SellerID, err)
	}

	seller.Warehouse.AddBits(evt.Proceeds)
	if err := s.characters.SaveContainer(ctx, seller.ID, character.ContainerWarehouse, seller.Warehouse); err != nil {
		return fmt.Errorf("warehouse: persist proceeds: %w", err)
	}

	logger.Info("sale_proceeds_settled",
		zap.Int32("item_id", evt.ItemID),
		zap.Int32("amount", evt.Amount),
		zap.Int64("proceeds", evt.Proceeds),
	)

	notice := protocol.SystemMessage(fmt.Sprintf("You have sold %s x%d in your consigned shop!", evt.ItemName, evt.Amount))
	if delivered := s.notifier.SendToTamer(evt.SellerID, notice); !delivered {
		logger.Debug("seller_offline_notice_skipped")
	}
	return nil
}
