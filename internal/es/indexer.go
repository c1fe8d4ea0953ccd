package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/mdemidov/product_api/internal/models"
)

// Indexer mirrors product writes into the search index. A zero Indexer is a
// no-op, so the API works without Elasticsearch.
type Indexer struct {
	Client *elasticsearch.Client
	Index  string
}

func (ix *Indexer) Enabled() bool {
	return ix != nil && ix.Client != nil
}

func (ix *Indexer) IndexProduct(ctx context.Context, p *models.Product) error {
	if !ix.Enabled() {
		return nil
	}

	doc := map[string]any{
		"id":          p.ID,
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price,
		"stock":       p.Stock,
		"category":    p.Category,
		"user_id":     p.UserID,
		"created_at":  p.CreatedAt,
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(doc); err != nil {
		return err
	}

	res, err := ix.Client.Index(
		ix.Index,
		&buf,
		ix.Client.Index.WithDocumentID(strconv.FormatUint(uint64(p.ID), 10)),
		ix.Client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index product: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index product: %s", res.Status())
	}
	return nil
}

func (ix *Indexer) DeleteProduct(ctx context.Context, id uint) error {
	if !ix.Enabled() {
		return nil
	}

	res, err := ix.Client.Delete(
		ix.Index,
		strconv.FormatUint(uint64(id), 10),
		ix.Client.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("delete product from index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete product from index: %s", res.Status())
	}
	return nil
}
