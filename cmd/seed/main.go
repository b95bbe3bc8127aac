package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-ddd-storefront/config"
	pginfra "github.com/oksasatya/go-ddd-storefront/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ddd-storefront/pkg/helpers"
)

type demoProduct struct {
	id, title, description, price, imageURL string
}

// Fixed ids keep the seed idempotent.
var catalog = []demoProduct{
	{"6f1c1c52-3b57-4d0e-9a53-0d7f2f6f0a01", "A Book", "A hardcover notebook, 200 pages.", "12.99", "https://picsum.photos/seed/book/400"},
	{"6f1c1c52-3b57-4d0e-9a53-0d7f2f6f0a02", "Coffee Mug", "Stoneware, 350ml.", "8.50", "https://picsum.photos/seed/mug/400"},
	{"6f1c1c52-3b57-4d0e-9a53-0d7f2f6f0a03", "Desk Lamp", "LED, warm white.", "34.00", "https://picsum.photos/seed/lamp/400"},
	{"6f1c1c52-3b57-4d0e-9a53-0d7f2f6f0a04", "Sticker Pack", "Ten vinyl stickers.", "3.00", "https://picsum.photos/seed/stickers/400"},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	email := "demo@storefront.test"
	password := "demo12345"
	hash, err := helpers.HashPassword(password, cfg.BcryptCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var userID string
	err = pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash)
		VALUES ($1, $2)
		ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash, updated_at = now()
		RETURNING id::text
	`, email, hash).Scan(&userID)
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s password=%s\n", userID, email, password)

	for _, p := range catalog {
		if _, err := pool.Exec(ctx, `
			INSERT INTO products (id, title, description, price, image_url, user_id)
			VALUES ($1, $2, $3, $4::numeric, $5, $6)
			ON CONFLICT (id) DO UPDATE SET
				title = EXCLUDED.title,
				description = EXCLUDED.description,
				price = EXCLUDED.price,
				image_url = EXCLUDED.image_url,
				updated_at = now()
		`, p.id, p.title, p.description, p.price, p.imageURL, userID); err != nil {
			log.Fatalf("failed to seed product %q: %v", p.title, err)
		}
	}
	fmt.Printf("seeded %d products\n", len(catalog))
}
