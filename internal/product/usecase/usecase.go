package usecase

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/product"
	"github.com/fekuna/omnipos-storefront-service/internal/product/dto"
	"github.com/fekuna/omnipos-storefront-service/pkg/cache"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/fekuna/omnipos-storefront-service/pkg/search"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	indexName     = "products"
	listCacheTTL  = 5 * time.Minute
	listKeyPrefix = "products:list:"
)

const indexMapping = `{
	"mappings": {
		"properties": {
			"supplier_name": { "type": "keyword" },
			"category_id": { "type": "long" },
			"name": { "type": "text" },
			"description": { "type": "text" },
			"created_at": { "type": "date" }
		}
	}
}`

type listResult struct {
	Products []model.Product
	Count    int
}

type productUseCase struct {
	repo    product.Repository
	ranking product.Ranking
	cache   *cache.RedisClient
	es      *search.Client
	group   singleflight.Group
	logger  logger.ZapLogger
}

// NewProductUseCase wires the product usecase. cache and es may be nil.
func NewProductUseCase(repo product.Repository, ranking product.Ranking, cache *cache.RedisClient, es *search.Client, log logger.ZapLogger) product.UseCase {
	return &productUseCase{
		repo:    repo,
		ranking: ranking,
		cache:   cache,
		es:      es,
		logger:  log,
	}
}

func (uc *productUseCase) CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error) {
	name := strings.TrimSpace(input.Name)
	if input.SupplierName == "" || name == "" {
		return nil, fmt.Errorf("%w: supplier and name are required", model.ErrInvalidInput)
	}

	var categoryID *int64
	if input.CategoryID != 0 {
		id := input.CategoryID
		categoryID = &id
	}

	now := time.Now()
	p := &model.Product{
		BaseModel:    model.BaseModel{CreatedAt: now, UpdatedAt: now},
		SupplierName: input.SupplierName,
		CategoryID:   categoryID,
		Name:         name,
		Description:  strings.TrimSpace(input.Description),
	}

	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	uc.invalidateListCache(ctx)
	go uc.syncToElastic(context.Background(), p)

	uc.logger.Info("product created",
		zap.Int64("product_id", p.ID),
		zap.String("supplier", p.SupplierName),
	)
	return p, nil
}

func (uc *productUseCase) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	return uc.repo.FindByID(ctx, id)
}

func (uc *productUseCase) GetProducts(ctx context.Context, ids []int64) (map[int64]model.Product, error) {
	products, err := uc.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID, nil
}

func (uc *productUseCase) ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error) {
	cacheKey, err := uc.generateCacheKey(filters)
	if err == nil && uc.cache != nil {
		if val, err := uc.cache.Client.Get(ctx, cacheKey).Result(); err == nil {
			var result listResult
			if err := json.Unmarshal([]byte(val), &result); err == nil {
				return result.Products, result.Count, nil
			}
		}
	}

	if filters.SearchQuery != "" && uc.es != nil {
		products, total, err := uc.searchElastic(ctx, filters)
		if err == nil {
			return products, total, nil
		}
		uc.logger.Error("ES search failed, falling back to DB", zap.Error(err))
	}

	// Concurrent misses for the same listing share one query.
	v, err, _ := uc.group.Do(cacheKey, func() (interface{}, error) {
		products, count, err := uc.repo.FindAll(ctx, filters)
		if err != nil {
			return nil, err
		}
		res := listResult{Products: products, Count: count}

		if cacheKey != "" && uc.cache != nil {
			if data, err := json.Marshal(res); err == nil {
				uc.cache.Client.Set(ctx, cacheKey, data, listCacheTTL)
			}
		}
		return res, nil
	})
	if err != nil {
		return nil, 0, err
	}

	res := v.(listResult)
	return res.Products, res.Count, nil
}

func (uc *productUseCase) searchElastic(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error) {
	must := []map[string]interface{}{
		{
			"multi_match": map[string]interface{}{
				"query":     filters.SearchQuery,
				"fields":    []string{"name^3", "description"},
				"fuzziness": "AUTO",
			},
		},
	}
	if filters.CategoryID != 0 {
		must = append(must, map[string]interface{}{
			"term": map[string]interface{}{"category_id": filters.CategoryID},
		})
	}
	if filters.SupplierName != "" {
		must = append(must, map[string]interface{}{
			"term": map[string]interface{}{"supplier_name": filters.SupplierName},
		})
	}

	q := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{"must": must},
		},
	}
	if filters.PageSize > 0 {
		page := filters.Page
		if page < 1 {
			page = 1
		}
		q["from"] = (page - 1) * filters.PageSize
		q["size"] = filters.PageSize
	}

	res, err := uc.es.Search(ctx, indexName, q)
	if err != nil {
		return nil, 0, err
	}

	products := make([]model.Product, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		var p model.Product
		if err := json.Unmarshal(hit.Source, &p); err == nil {
			products = append(products, p)
		}
	}
	return products, res.Hits.Total.Value, nil
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error) {
	p, err := uc.repo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, model.ErrNotFound
	}
	if p.SupplierName != input.SupplierName {
		return nil, model.ErrForbidden
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", model.ErrInvalidInput)
	}

	p.Name = name
	p.Description = strings.TrimSpace(input.Description)
	p.UpdatedAt = time.Now()

	if err := uc.repo.UpdateDetails(ctx, p); err != nil {
		return nil, err
	}

	uc.invalidateListCache(ctx)
	go uc.syncToElastic(context.Background(), p)

	return p, nil
}

// TopSellers returns up to n products by units sold, newest products when
// nothing has sold yet.
func (uc *productUseCase) TopSellers(ctx context.Context, n int) ([]model.Product, error) {
	ids, err := uc.ranking.Top(ctx, n)
	if err != nil {
		uc.logger.Warn("bestseller ranking unavailable", zap.Error(err))
		ids = nil
	}

	if len(ids) > 0 {
		byID, err := uc.GetProducts(ctx, ids)
		if err != nil {
			return nil, err
		}
		ranked := make([]model.Product, 0, len(ids))
		for _, id := range ids {
			if p, ok := byID[id]; ok {
				ranked = append(ranked, p)
			}
		}
		if len(ranked) > 0 {
			return ranked, nil
		}
	}

	products, _, err := uc.repo.FindAll(ctx, &dto.ProductFilters{Page: 1, PageSize: n})
	return products, err
}

func (uc *productUseCase) RecordSales(ctx context.Context, sold map[int64]int) error {
	for productID, qty := range sold {
		if err := uc.ranking.IncrBy(ctx, productID, qty); err != nil {
			return fmt.Errorf("rank product %d: %w", productID, err)
		}
	}
	return nil
}

func (uc *productUseCase) syncToElastic(ctx context.Context, p *model.Product) {
	if uc.es == nil {
		return
	}
	if err := uc.es.CreateIndex(ctx, indexName, indexMapping); err != nil {
		uc.logger.Warn("failed to ensure product index", zap.Error(err))
	}
	if err := uc.es.Index(ctx, indexName, strconv.FormatInt(p.ID, 10), p); err != nil {
		uc.logger.Error("failed to index product", zap.Int64("product_id", p.ID), zap.Error(err))
	}
}

func (uc *productUseCase) generateCacheKey(filters *dto.ProductFilters) (string, error) {
	data, err := json.Marshal(filters)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%x", listKeyPrefix, md5.Sum(data)), nil
}

func (uc *productUseCase) invalidateListCache(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	keys, err := uc.cache.Client.Keys(ctx, listKeyPrefix+"*").Result()
	if err != nil {
		uc.logger.Warn("failed to list cached product pages", zap.Error(err))
		return
	}
	if len(keys) > 0 {
		uc.cache.Client.Del(ctx, keys...)
	}
}
