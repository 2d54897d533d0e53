package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

type customerRepository struct {
	db *sql.DB
}

// NewCustomerRepository создаёт PostgreSQL-реализацию CustomerLookup.
func NewCustomerRepository(store *Store) domain.CustomerLookup {
	return &customerRepository{db: store.DB()}
}

func (r *customerRepository) FindByID(ctx context.Context, id string) (domain.Customer, error) {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var customer domain.Customer
	err := r.db.QueryRowContext(opCtx, `
		SELECT id, name, email, created_at
		FROM customers
		WHERE id = $1
	`, id).Scan(&customer.ID, &customer.Name, &customer.Email, &customer.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Customer{}, domain.ErrCustomerNotFound
		}
		return domain.Customer{}, fmt.Errorf("select customer: %w", err)
	}

	return customer, nil
}

// Insert добавляет покупателя; используется сидированием и тестами.
func (r *customerRepository) Insert(ctx context.Context, customer domain.Customer) error {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(opCtx, `
		INSERT INTO customers (id, name, email, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email
	`, customer.ID, customer.Name, customer.Email, customer.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}

	return nil
}

var _ domain.CustomerLookup = (*customerRepository)(nil)
