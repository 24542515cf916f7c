package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tiendazen/payment-service/internal/domain"
)

const orderColumns = `commerce_order_id, gateway_token, total_amount, status, owner_id, created_at, updated_at`

type OrderRepository struct {
	db *DB
}

func NewOrderRepository(db *DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create persists the order and its line items in a single
// transaction. Orders are never deleted, only transitioned.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	m := toDBModel(order)
	_, err = tx.Exec(ctx, `
		INSERT INTO orders (commerce_order_id, gateway_token, total_amount, status, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		m.CommerceOrderID,
		m.GatewayToken,
		m.TotalAmount,
		m.Status,
		m.OwnerID,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return domain.NewDuplicateOrderError(order.CommerceOrderID)
		}
		return fmt.Errorf("failed to create order: %w", err)
	}

	if err := r.insertItems(ctx, tx, order.CommerceOrderID, order.LineItems); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *OrderRepository) insertItems(ctx context.Context, q Executor, commerceOrderID string, items []domain.LineItem) error {
	for i, item := range items {
		_, err := q.Exec(ctx, `
			INSERT INTO order_items (commerce_order_id, position, product_id, name, unit_price, quantity)
			VALUES ($1, $2, $3, $4, $5, $6)
		`,
			commerceOrderID,
			i,
			item.ProductID,
			item.Name,
			item.UnitPrice,
			item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}
	return nil
}

func (r *OrderRepository) FindByCommerceOrderID(ctx context.Context, commerceOrderID string) (*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE commerce_order_id = $1`, orderColumns)
	row := r.db.Pool.QueryRow(ctx, query, commerceOrderID)
	return r.scanOrder(ctx, row, commerceOrderID)
}

func (r *OrderRepository) FindByToken(ctx context.Context, token string) (*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE gateway_token = $1`, orderColumns)

	var m OrderModel
	err := r.db.Pool.QueryRow(ctx, query, token).Scan(
		&m.CommerceOrderID, &m.GatewayToken, &m.TotalAmount, &m.Status, &m.OwnerID, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewOrderNotFoundByTokenError(token)
		}
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}

	items, err := r.loadItems(ctx, r.db.Pool, m.CommerceOrderID)
	if err != nil {
		return nil, err
	}
	return toDomainModel(m, items), nil
}

// SetGatewayToken records the gateway's token for the order once the
// payment session exists.
func (r *OrderRepository) SetGatewayToken(ctx context.Context, commerceOrderID, token string) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE orders SET gateway_token = $2, updated_at = now()
		WHERE commerce_order_id = $1
	`, commerceOrderID, token)
	if err != nil {
		return fmt.Errorf("failed to set gateway token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewOrderNotFoundError(commerceOrderID)
	}
	return nil
}

// Transition applies a terminal status with a per-row conditional
// update: only a pending order is mutated, so concurrent writers on
// the same order serialize in the database. A repeat of the same
// terminal status is an idempotent no-op; a conflicting terminal
// status is rejected.
func (r *OrderRepository) Transition(ctx context.Context, commerceOrderID string, target domain.OrderStatus) (*domain.Order, error) {
	query := fmt.Sprintf(`
		UPDATE orders SET status = $2, updated_at = now()
		WHERE commerce_order_id = $1 AND status = 'pending'
		RETURNING %s
	`, orderColumns)

	row := r.db.Pool.QueryRow(ctx, query, commerceOrderID, string(target))
	order, err := r.scanOrder(ctx, row, commerceOrderID)
	if err == nil {
		return order, nil
	}
	if !domain.IsErrorCode(err, domain.ErrCodeOrderNotFound) {
		return nil, err
	}

	// No pending row was updated. Re-read to tell apart a missing
	// order, the idempotent repeat and a genuine conflict.
	current, findErr := r.FindByCommerceOrderID(ctx, commerceOrderID)
	if findErr != nil {
		return nil, findErr
	}
	if current.Status == target {
		return current, nil
	}
	return nil, domain.NewStatusConflictError(commerceOrderID, current.Status, target)
}

func (r *OrderRepository) scanOrder(ctx context.Context, row pgx.Row, commerceOrderID string) (*domain.Order, error) {
	var m OrderModel
	err := row.Scan(
		&m.CommerceOrderID, &m.GatewayToken, &m.TotalAmount, &m.Status, &m.OwnerID, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewOrderNotFoundError(commerceOrderID)
		}
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}

	items, err := r.loadItems(ctx, r.db.Pool, m.CommerceOrderID)
	if err != nil {
		return nil, err
	}
	return toDomainModel(m, items), nil
}

func (r *OrderRepository) loadItems(ctx context.Context, q Executor, commerceOrderID string) ([]OrderItemModel, error) {
	rows, err := q.Query(ctx, `
		SELECT commerce_order_id, position, product_id, name, unit_price, quantity
		FROM order_items
		WHERE commerce_order_id = $1
		ORDER BY position ASC
	`, commerceOrderID)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (OrderItemModel, error) {
		var m OrderItemModel
		err := row.Scan(&m.CommerceOrderID, &m.Position, &m.ProductID, &m.Name, &m.UnitPrice, &m.Quantity)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan order items: %w", err)
	}
	return items, nil
}
