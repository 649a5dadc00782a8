package postgres

import (
	"context"
	"database/sql"

	"github.com/kiwilliwik22/DigimonMasterOnline/internal/domain/item"
	domain "github.com/kiwilliwik22/DigimonMasterOnline/internal/domain/shop"
)

// ShopStore is the durable shop persistence gateway over Postgres.
// Handles come from a sequence, so a deleted handle is never reused.
//
// Schema:
//
//	create sequence consigned_shop_general_handler_seq start 80000;
//	create table consigned_shops (
//	    handle          bigserial primary key,
//	    general_handler bigint not null,
//	    owner_id        bigint not null,
//	    name            text not null,
//	    x               int not null,
//	    y               int not null,
//	    map_id          int not null,
//	    channel         int not null,
//	    created_at      timestamptz not null default now()
//	);
//	create table consigned_shop_items (
//	    shop_handle bigint not null references consigned_shops(handle) on delete cascade,
//	    slot        int not null,
//	    item_id     int not null,
//	    amount      int not null,
//	    unit_price  bigint not null,
//	    primary key (shop_handle, slot)
//	);
type ShopStore struct {
	db *sql.DB
}

func NewShopStore(db *sql.DB) *ShopStore {
	return &ShopStore{db: db}
}

func (s *ShopStore) Create(ctx context.Context, shop *domain.ConsignedShop) (domain.Identity, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Identity{}, err
	}
	defer tx.Rollback()

	var identity domain.Identity
	err = tx.QueryRowContext(ctx, `
        insert into consigned_shops (general_handler, owner_id, name, x, y, map_id, channel, created_at)
        values (nextval('consigned_shop_general_handler_seq'), $1, $2, $3, $4, $5, $6, $7)
        returning handle, general_handler
    `, shop.OwnerID, shop.Name, shop.X, shop.Y, shop.MapID, shop.Channel, shop.CreatedAt).
		Scan(&identity.Handle, &identity.GeneralHandler)
	if err != nil {
		return domain.Identity{}, err
	}

	if err := insertShopItems(ctx, tx, identity.Handle, shop.Stock.Items()); err != nil {
		return domain.Identity{}, err
	}

	if err := tx.Commit(); err != nil {
		return domain.Identity{}, err
	}
	return identity, nil
}

func (s *ShopStore) Update(ctx context.Context, shop *domain.ConsignedShop) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
        update consigned_shops
        set name = $2, x = $3, y = $4, map_id = $5, channel = $6
        where handle = $1
    `, shop.Handle, shop.Name, shop.X, shop.Y, shop.MapID, shop.Channel)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `delete from consigned_shop_items where shop_handle = $1`, shop.Handle); err != nil {
		return err
	}
	if err := insertShopItems(ctx, tx, shop.Handle, shop.Stock.Items()); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *ShopStore) Delete(ctx context.Context, handle int32) error {
	// Idempotent: deleting an absent handle affects zero rows.
	_, err := s.db.ExecContext(ctx, `delete from consigned_shops where handle = $1`, handle)
	return err
}

func (s *ShopStore) List(ctx context.Context) ([]*domain.ConsignedShop, error) {
	rows, err := s.db.QueryContext(ctx, `
        select handle, general_handler, owner_id, name, x, y, map_id, channel, created_at
        from consigned_shops
        order by handle
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byHandle := make(map[int32]*domain.ConsignedShop)
	var out []*domain.ConsignedShop
	for rows.Next() {
		shop := &domain.ConsignedShop{Stock: item.NewInventory(0)}
		if err := rows.Scan(
			&shop.Handle,
			&shop.GeneralHandler,
			&shop.OwnerID,
			&shop.Name,
			&shop.X,
			&shop.Y,
			&shop.MapID,
			&shop.Channel,
			&shop.CreatedAt,
		); err != nil {
			return nil, err
		}
		byHandle[shop.Handle] = shop
		out = append(out, shop)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	itemRows, err := s.db.QueryContext(ctx, `
        select shop_handle, item_id, amount, unit_price
        from consigned_shop_items
        order by shop_handle, slot
    `)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var handle int32
		var stack item.Item
		if err := itemRows.Scan(&handle, &stack.ItemID, &stack.Amount, &stack.UnitPrice); err != nil {
			return nil, err
		}
		if shop, ok := byHandle[handle]; ok {
			shop.Stock.LoadStacks([]*item.Item{&stack})
		}
	}
	return out, itemRows.Err()
}

func insertShopItems(ctx context.Context, tx *sql.Tx, handle int32, stacks []*item.Item) error {
	if len(stacks) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
        insert into consigned_shop_items (shop_handle, slot, item_id, amount, unit_price)
        values ($1, $2, $3, $4, $5)
    `)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for slot, stack := range stacks {
		if _, err := stmt.ExecContext(ctx, handle, slot, stack.ItemID, stack.Amount, stack.UnitPrice); err != nil {
			return err
		}
	}
	return nil
}
