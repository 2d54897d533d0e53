package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

type productCatalog struct {
	db *sql.DB
}

// NewProductCatalog создаёт PostgreSQL-реализацию ProductCatalog.
func NewProductCatalog(store *Store) domain.ProductCatalog {
	return &productCatalog{db: store.DB()}
}

func (c *productCatalog) FindAllByID(ctx context.Context, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}

	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := c.db.QueryContext(opCtx, `
		SELECT id, sku, price_minor, quantity, created_at, updated_at
		FROM products
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0, len(ids))
	for rows.Next() {
		var product domain.Product
		if err := rows.Scan(
			&product.ID, &product.SKU, &product.PriceMinor,
			&product.Quantity, &product.CreatedAt, &product.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, nil
}

// ReserveStock атомарно списывает остатки по всему батчу.
// Каждое списание условное: UPDATE проходит только при достаточном
// остатке, иначе вся транзакция откатывается. Недостаток остатка у
// существующего товара трактуется как конкурентный конфликт, потому что
// достаточность уже была проверена по снимку каталога. Батч применяется
// в порядке возрастания идентификаторов: одинаковый порядок блокировок
// у всех конкурентных батчей исключает взаимный deadlock.
func (c *productCatalog) ReserveStock(ctx context.Context, decrements []domain.StockDecrement) error {
	if len(decrements) == 0 {
		return nil
	}
	for _, d := range decrements {
		if errs := d.Validate(); len(errs) != 0 {
			return errors.Join(errs...)
		}
	}
	decrements = orderedDecrements(decrements)

	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	tx, err := c.db.BeginTx(opCtx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, d := range decrements {
		var res sql.Result
		res, err = tx.ExecContext(opCtx, `
			UPDATE products
			SET quantity = quantity - $2,
			    updated_at = NOW()
			WHERE id = $1
			  AND quantity >= $2
		`, d.ProductID, d.Qty)
		if err != nil {
			// Прерванная deadlock'ом транзакция — проигрыш гонки,
			// вызывающему её можно повторить.
			if isDeadlock(err) {
				err = fmt.Errorf("product %s: %w", d.ProductID, domain.ErrStockConflict)
				return err
			}
			return fmt.Errorf("decrement stock for %s: %w", d.ProductID, err)
		}

		var affected int64
		affected, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			var exists bool
			exists, err = c.productExistsTx(opCtx, tx, d.ProductID)
			if err != nil {
				return err
			}
			if !exists {
				err = fmt.Errorf("product %s: %w", d.ProductID, domain.ErrProductNotFound)
				return err
			}
			err = fmt.Errorf("product %s: %w", d.ProductID, domain.ErrStockConflict)
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		if isDeadlock(err) {
			return fmt.Errorf("commit reserve stock: %w", domain.ErrStockConflict)
		}
		return fmt.Errorf("commit reserve stock: %w", err)
	}

	return nil
}

// orderedDecrements возвращает копию батча, отсортированную по товару.
// Исходный срез не модифицируется.
func orderedDecrements(decrements []domain.StockDecrement) []domain.StockDecrement {
	sorted := append([]domain.StockDecrement(nil), decrements...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ProductID < sorted[j].ProductID })
	return sorted
}

func isDeadlock(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40P01"
	}
	return false
}

// ReleaseStock возвращает ранее списанные остатки.
func (c *productCatalog) ReleaseStock(ctx context.Context, increments []domain.StockDecrement) error {
	if len(increments) == 0 {
		return nil
	}

	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	tx, err := c.db.BeginTx(opCtx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, inc := range increments {
		var res sql.Result
		res, err = tx.ExecContext(opCtx, `
			UPDATE products
			SET quantity = quantity + $2,
			    updated_at = NOW()
			WHERE id = $1
		`, inc.ProductID, inc.Qty)
		if err != nil {
			return fmt.Errorf("increment stock for %s: %w", inc.ProductID, err)
		}

		var affected int64
		affected, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			err = fmt.Errorf("product %s: %w", inc.ProductID, domain.ErrProductNotFound)
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit release stock: %w", err)
	}

	return nil
}

// Insert добавляет товар; используется сидированием и тестами.
func (c *productCatalog) Insert(ctx context.Context, product domain.Product) error {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := c.db.ExecContext(opCtx, `
		INSERT INTO products (id, sku, price_minor, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			sku = EXCLUDED.sku,
			price_minor = EXCLUDED.price_minor,
			quantity = EXCLUDED.quantity,
			updated_at = EXCLUDED.updated_at
	`, product.ID, product.SKU, product.PriceMinor, product.Quantity, product.CreatedAt, product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

func (c *productCatalog) productExistsTx(ctx context.Context, tx *sql.Tx, productID string) (bool, error) {
	var id string
	err := tx.QueryRowContext(ctx, `SELECT id FROM products WHERE id = $1`, productID).Scan(&id)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return false, fmt.Errorf("check product exists: %w", err)
}

var _ domain.ProductCatalog = (*productCatalog)(nil)
