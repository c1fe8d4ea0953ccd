package service

import (
	"context"
	"strconv"
	"time"

	"github.com/mdemidov/product_api/internal/authz"
	"github.com/mdemidov/product_api/internal/es"
	"github.com/mdemidov/product_api/internal/logging"
	"github.com/mdemidov/product_api/internal/models"
	"github.com/mdemidov/product_api/internal/mykafka"
	"github.com/mdemidov/product_api/internal/repo"
	"github.com/mdemidov/product_api/internal/transport"
)

// ProductService takes the acting user explicitly on every operation; nothing
// is read from ambient request state.
type ProductService struct {
	Repo     *repo.GormRepo
	Producer *mykafka.Producer
	Indexer  *es.Indexer
}

// List needs no permission beyond authentication.
func (s *ProductService) List(ctx context.Context, actor *models.User, category string, offset, limit int) (int64, []models.Product, error) {
	return s.Repo.ListProducts(ctx, category, offset, limit)
}

func (s *ProductService) Get(ctx context.Context, actor *models.User, id uint) (*models.Product, error) {
	return s.Repo.FindProduct(ctx, id)
}

func (s *ProductService) Create(ctx context.Context, actor *models.User, req transport.CreateProductRequest) (*models.Product, error) {
	if !authz.Allows(actor, authz.CreateProducts) {
		return nil, ErrForbidden
	}
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price.Round(2),
		Stock:       *req.Stock,
		Category:    req.Category,
		UserID:      actor.ID,
	}
	if err := s.Repo.CreateProduct(ctx, product); err != nil {
		return nil, err
	}
	product.User = actor

	s.publish(ctx, map[string]any{
		"type":       "product_created",
		"product_id": product.ID,
		"name":       product.Name,
		"user_id":    actor.ID,
	})
	s.index(ctx, product)

	return product, nil
}

// Update applies only the supplied fields. Existence is resolved before the
// permission check: a missing id is 404 for everyone.
func (s *ProductService) Update(ctx context.Context, actor *models.User, id uint, req transport.UpdateProductRequest) (*models.Product, error) {
	product, err := s.Repo.FindProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.Allows(actor, authz.UpdateProducts) {
		return nil, ErrForbidden
	}
	if err := validateUpdate(req); err != nil {
		return nil, err
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = req.Description
	}
	if req.Price != nil {
		product.Price = req.Price.Round(2)
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.Category != nil {
		product.Category = req.Category
	}

	if err := s.Repo.SaveProduct(ctx, product); err != nil {
		return nil, err
	}

	s.publish(ctx, map[string]any{
		"type":       "product_updated",
		"product_id": product.ID,
		"name":       product.Name,
		"user_id":    actor.ID,
	})
	s.index(ctx, product)

	return product, nil
}

func (s *ProductService) Delete(ctx context.Context, actor *models.User, id uint) error {
	if _, err := s.Repo.FindProduct(ctx, id); err != nil {
		return err
	}
	if !authz.Allows(actor, authz.DeleteProducts) {
		return ErrForbidden
	}

	if err := s.Repo.SoftDeleteProduct(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, map[string]any{
		"type":       "product_deleted",
		"product_id": id,
		"user_id":    actor.ID,
	})
	s.deindex(ctx, id)

	return nil
}

func validateCreate(req transport.CreateProductRequest) error {
	var fe fieldErrors
	switch {
	case req.Name == "":
		fe.add("name", "Product name is required")
	case len(req.Name) > 255:
		fe.add("name", "The name field must not be greater than 255 characters.")
	}
	switch {
	case req.Price == nil:
		fe.add("price", "The price field is required.")
	case req.Price.IsNegative():
		fe.add("price", "Price cannot be negative")
	}
	switch {
	case req.Stock == nil:
		fe.add("stock", "The stock field is required.")
	case *req.Stock < 0:
		fe.add("stock", "Stock cannot be negative")
	}
	return fe.err()
}

func validateUpdate(req transport.UpdateProductRequest) error {
	var fe fieldErrors
	if req.Name != nil {
		switch {
		case *req.Name == "":
			fe.add("name", "Product name is required")
		case len(*req.Name) > 255:
			fe.add("name", "The name field must not be greater than 255 characters.")
		}
	}
	if req.Price != nil && req.Price.IsNegative() {
		fe.add("price", "Price cannot be negative")
	}
	if req.Stock != nil && *req.Stock < 0 {
		fe.add("stock", "Stock cannot be negative")
	}
	return fe.err()
}

func (s *ProductService) publish(ctx context.Context, event map[string]any) {
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	key := ""
	if v, ok := event["product_id"].(uint); ok {
		key = strconv.FormatUint(uint64(v), 10)
	}
	if err := s.Producer.PublishEvent(pubCtx, mykafka.TopicProductEvents, key, event); err != nil {
		logging.FromContext(ctx).Error("kafka publish failed", "topic", mykafka.TopicProductEvents, "error", err)
	}
}

func (s *ProductService) index(ctx context.Context, p *models.Product) {
	if err := s.Indexer.IndexProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Error("es index failed", "product_id", p.ID, "error", err)
	}
}

func (s *ProductService) deindex(ctx context.Context, id uint) {
	if err := s.Indexer.DeleteProduct(ctx, id); err != nil {
		logging.FromContext(ctx).Error("es deindex failed", "product_id", id, "error", err)
	}
}
