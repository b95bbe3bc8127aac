package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/go-ddd-storefront/internal/domain/entity"
)

// OrderIndexer mirrors finalized orders into a search index for order history
// lookups. Postgres stays the source of truth.
type OrderIndexer struct {
	client *es.Client
	index  string
}

func NewOrderIndexer(client *es.Client, index string) *OrderIndexer {
	return &OrderIndexer{client: client, index: index}
}

type orderLineDoc struct {
	ProductID string `json:"product_id"`
	Title     string `json:"title"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
}

type orderDoc struct {
	ID         string         `json:"id"`
	UserID     string         `json:"user_id"`
	Email      string         `json:"email"`
	PaymentRef string         `json:"payment_ref"`
	Total      string         `json:"total"`
	Lines      []orderLineDoc `json:"lines"`
	CreatedAt  string         `json:"created_at"`
}

func toDoc(o *entity.Order) orderDoc {
	lines := make([]orderLineDoc, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, orderLineDoc{ProductID: l.ProductID, Title: l.Title, Price: l.Price.StringFixed(2), Quantity: l.Quantity})
	}
	return orderDoc{
		ID:         o.ID,
		UserID:     o.UserID,
		Email:      o.Email,
		PaymentRef: o.PaymentRef,
		Total:      o.Total().StringFixed(2),
		Lines:      lines,
		CreatedAt:  o.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func (x *OrderIndexer) IndexOrder(ctx context.Context, o *entity.Order) error {
	if x == nil || x.client == nil || x.index == "" {
		return nil
	}
	b, err := json.Marshal(toDoc(o))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.index, DocumentID: o.ID, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, x.client)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index order %s: %s", o.ID, res.Status())
	}
	return nil
}
