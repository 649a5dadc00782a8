package gateway

import (
	"context"
	"fmt"

	appshop "github.com/kiwilliwik22/DigimonMasterOnline/internal/application/shop"
	"github.com/kiwilliwik22/DigimonMasterOnline/internal/protocol"
)

// OpenShopProcessor binds the consigned-shop-open packet to the shop
// lifecycle controller.
type OpenShopProcessor struct {
	service *appshop.OpenShopService
}

func NewOpenShopProcessor(service *appshop.OpenShopService) *OpenShopProcessor {
	return &OpenShopProcessor{service: service}
}

func (p *OpenShopProcessor) Type() protocol.Type {
	return protocol.TypeConsignedShopOpen
}

func (p *OpenShopProcessor) Process(ctx context.Context, sess *Session, payload []byte) error {
	req, err := protocol.ParseOpenShop(payload)
	if err != nil {
		return fmt.Errorf("open shop: %w", err)
	}

	entries := make([]appshop.SellEntry, 0, len(req.Entries))
	for _, e := range req.Entries {
		entries = append(entries, appshop.SellEntry{ItemID: e.ItemID, Amount: e.Amount, Price: e.Price})
	}

	return p.service.Execute(ctx, sess, appshop.OpenShopInput{
		X:       req.X,
		Y:       req.Y,
		Name:    req.Name,
		Entries: entries,
	})
}

// PurchaseProcessor binds the consigned-shop-purchase packet to the
// purchase transaction coordinator.
type PurchaseProcessor struct {
	service *appshop.PurchaseService
}

func NewPurchaseProcessor(service *appshop.PurchaseService) *PurchaseProcessor {
	return &PurchaseProcessor{service: service}
}

func (p *PurchaseProcessor) Type() protocol.Type {
	return protocol.TypeConsignedShopPurchase
}

func (p *PurchaseProcessor) Process(ctx context.Context, sess *Session, payload []byte) error {
	req, err := protocol.ParsePurchaseItem(payload)
	if err != nil {
		return fmt.Errorf("purchase: %w", err)
	}

	return p.service.Execute(ctx, sess, appshop.PurchaseInput{
		ShopHandle: req.ShopHandle,
		Slot:       req.Slot,
		ItemID:     req.ItemID,
		Amount:     req.Amount,
		UnitPrice:  req.UnitPrice,
	})
}
