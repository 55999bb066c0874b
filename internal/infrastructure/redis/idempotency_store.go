// Package redis implementa el almacén de claves de idempotencia sobre Redis.
package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/Ensamble-api/internal/application/assembly"
)

const (
	idempotencyKeyPrefix = "idem:assembly:"
	defaultTTL           = 24 * time.Hour
)

var _ assembly.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore reserva claves con SET NX y TTL.
type IdempotencyStore struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewIdempotencyStore construye el almacén. ttl <= 0 usa 24h.
func NewIdempotencyStore(client *goredis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

// Reserve retorna true si la clave no existía y quedó reservada.
func (s *IdempotencyStore) Reserve(ctx context.Context, key string) (bool, error) {
	return s.client.SetNX(ctx, idempotencyKeyPrefix+key, 1, s.ttl).Result()
}

// Release libera la clave (p. ej. cuando la creación falló y el cliente puede reintentar).
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, idempotencyKeyPrefix+key).Err()
}

// NewClient crea el cliente y verifica la conexión.
func NewClient(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
