package container

import (
	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-storefront/config"
	"github.com/oksasatya/go-ddd-storefront/internal/application"
	"github.com/oksasatya/go-ddd-storefront/pkg/helpers"
)

// Container holds the infrastructure built once in main. Router modules take
// what they need from it; nothing here is global.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger
	PGPool *pgxpool.Pool
	Redis  *redis.Client
	JWT    *helpers.JWTManager

	// Optional clients. Nil when the matching setting is empty.
	GCS       *storage.Client
	ES        *elasticsearch.Client
	RabbitPub *helpers.RabbitPublisher

	// Adapters chosen from the clients above.
	Notifier application.Notifier
	Payments application.PaymentGateway
	Invoices application.InvoiceStore
	Indexer  application.OrderIndexer
}

// Close releases the clients the container owns.
func (c *Container) Close() {
	if c.RabbitPub != nil {
		c.RabbitPub.Close()
	}
	if c.GCS != nil {
		_ = c.GCS.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.PGPool != nil {
		c.PGPool.Close()
	}
}
