package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tillpos/internal/dto"
	"tillpos/internal/fault"
	"tillpos/internal/model"
	"tillpos/internal/repository"
)

type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	Reactivate(ctx context.Context, id uuid.UUID) error
	// PriceByBarcode serves the price-check lookup against active products.
	PriceByBarcode(ctx context.Context, barcode string) (*dto.PriceResponse, error)
	// AdjustStock applies a manual signed stock delta with an audit movement.
	AdjustStock(ctx context.Context, id uuid.UUID, req dto.AdjustStockRequest) (*dto.ProductResponse, error)
}

type productService struct {
	products repository.ProductRepository
	stock    StockService
}

func NewProductService(products repository.ProductRepository, stock StockService) ProductService {
	return &productService{products: products, stock: stock}
}

func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	product := &model.Product{
		Barcode:     req.Barcode,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Active:      true,
	}
	if err := s.products.Create(ctx, product); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fault.New(fault.Conflict, "barcode already registered")
		}
		return nil, fault.Wrap(fault.Storage, "create product", err)
	}
	resp := productToResponse(product)
	return &resp, nil
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fault.New(fault.NotFound, "product not found")
		}
		return nil, fault.Wrap(fault.Storage, "find product", err)
	}
	resp := productToResponse(product)
	return &resp, nil
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	products, total, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, fault.Wrap(fault.Storage, "list products", err)
	}
	data := make([]dto.ProductResponse, len(products))
	for i := range products {
		data[i] = productToResponse(&products[i])
	}
	return &dto.ProductListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, fault.New(fault.NotFound, "product not found")
	}
	if req.Name != "" {
		product.Name = req.Name
	}
	if req.Description != nil {
		product.Description = req.Description
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if err := s.products.Update(ctx, product); err != nil {
		return nil, fault.Wrap(fault.Storage, "update product", err)
	}
	resp := productToResponse(product)
	return &resp, nil
}

func (s *productService) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.products.SoftDelete(ctx, id)
}

func (s *productService) Reactivate(ctx context.Context, id uuid.UUID) error {
	return s.products.Reactivate(ctx, id)
}

func (s *productService) PriceByBarcode(ctx context.Context, barcode string) (*dto.PriceResponse, error) {
	product, err := s.products.FindByBarcode(ctx, barcode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fault.New(fault.NotFound, "product not found")
		}
		return nil, fault.Wrap(fault.Storage, "find product", err)
	}
	return &dto.PriceResponse{Barcode: product.Barcode, Name: product.Name, Price: product.Price}, nil
}

func (s *productService) AdjustStock(ctx context.Context, id uuid.UUID, req dto.AdjustStockRequest) (*dto.ProductResponse, error) {
	product, err := s.stock.Adjust(ctx, id, req.Delta, req.Reason)
	if err != nil {
		return nil, err
	}
	resp := productToResponse(product)
	return &resp, nil
}

func productToResponse(p *model.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:          p.ID.String(),
		Barcode:     p.Barcode,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		Active:      p.Active,
	}
}
