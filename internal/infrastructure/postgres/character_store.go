package postgres

import (
	"context"
	"database/sql"
	"errors"

	domain "github.com/kiwilliwik22/DigimonMasterOnline/internal/domain/character"
	"github.com/kiwilliwik22/DigimonMasterOnline/internal/domain/item"
)

// CharacterStore is the durable character persistence gateway over
// Postgres.
//
// Schema:
//
//	create table characters (
//	    id              bigint primary key,
//	    name            text not null,
//	    general_handler bigint not null,
//	    map_id          int not null,
//	    channel         int not null,
//	    x               int not null,
//	    y               int not null
//	);
//	create table containers (
//	    owner_id bigint not null references characters(id) on delete cascade,
//	    kind     text not null,
//	    bits     bigint not null default 0,
//	    primary key (owner_id, kind)
//	);
//	create table container_items (
//	    owner_id   bigint not null,
//	    kind       text not null,
//	    slot       int not null,
//	    item_id    int not null,
//	    amount     int not null,
//	    unit_price bigint not null default 0,
//	    primary key (owner_id, kind, slot)
//	);
type CharacterStore struct {
	db *sql.DB
}

func NewCharacterStore(db *sql.DB) *CharacterStore {
	return &CharacterStore{db: db}
}

func (s *CharacterStore) FindByID(ctx context.Context, id int64) (*domain.Tamer, error) {
	tamer := &domain.Tamer{}
	err := s.db.QueryRowContext(ctx, `
        select id, name, general_handler, map_id, channel, x, y
        from characters
        where id = $1
    `, id).Scan(&tamer.ID, &tamer.Name, &tamer.GeneralHandler, &tamer.MapID, &tamer.Channel, &tamer.X, &tamer.Y)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	tamer.Inventory, err = s.loadContainer(ctx, id, domain.ContainerInventory)
	if err != nil {
		return nil, err
	}
	tamer.Warehouse, err = s.loadContainer(ctx, id, domain.ContainerWarehouse)
	if err != nil {
		return nil, err
	}
	return tamer, nil
}

func (s *CharacterStore) SaveContainer(ctx context.Context, tamerID int64, kind domain.ContainerKind, inv *item.Inventory) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
        insert into containers (owner_id, kind, bits)
        values ($1, $2, $3)
        on conflict (owner_id, kind) do update set bits = excluded.bits
    `, tamerID, string(kind), inv.Bits()); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
        delete from container_items where owner_id = $1 and kind = $2
    `, tamerID, string(kind)); err != nil {
		return err
	}

	stacks := inv.Items()
	if len(stacks) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
            insert into container_items (owner_id, kind, slot, item_id, amount, unit_price)
            values ($1, $2, $3, $4, $5, $6)
        `)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for slot, stack := range stacks {
			if _, err := stmt.ExecContext(ctx, tamerID, string(kind), slot, stack.ItemID, stack.Amount, stack.UnitPrice); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

func (s *CharacterStore) loadContainer(ctx context.Context, ownerID int64, kind domain.ContainerKind) (*item.Inventory, error) {
	var bits int64
	err := s.db.QueryRowContext(ctx, `
        select bits from containers where owner_id = $1 and kind = $2
    `, ownerID, string(kind)).Scan(&bits)
	if errors.Is(err, sql.ErrNoRows) {
		return item.NewInventory(0), nil
	}
	if err != nil {
		return nil, err
	}

	inv := item.NewInventory(bits)
	rows, err := s.db.QueryContext(ctx, `
        select item_id, amount, unit_price
        from container_items
        where owner_id = $1 and kind = $2
        order by slot
    `, ownerID, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var stack item.Item
		if err := rows.Scan(&stack.ItemID, &stack.Amount, &stack.UnitPrice); err != nil {
			return nil, err
		}
		inv.LoadStacks([]*item.Item{&stack})
	}
	return inv, rows.Err()
}
