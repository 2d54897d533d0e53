package domain

import "time"

// Customer — клиент, оформляющий заказ. Ядро оформления только читает его
// и никогда не изменяет.
type Customer struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
}
