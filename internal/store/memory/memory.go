package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"parfumpos/internal/domain"
)

// Store is the in-memory mock backend: same contract as postgres, seeded
// catalog, no persistence. A process restart loses everything but the seeds.
type Store struct {
	mu         sync.RWMutex
	categories map[int64]domain.Category
	perfumes   map[int64]domain.Perfume
	variants   map[int64]domain.Variant
	sales      map[int64]domain.Sale
	returns    map[int64]domain.Return
	returnsBy  map[int64]int64 // sale id -> return id
	purchases  map[int64]domain.Purchase

	nextSaleID     int64
	nextSaleItemID int64
	nextReturnID   int64
	nextPurchaseID int64
}

func NewSeeded() *Store {
	now := time.Now().UTC()

	categories := []domain.Category{
		{ID: 1, Name: "Floral", Slug: "floral", Description: "Notes florales et poudrées", IsActive: true, CreatedAt: now, UpdatedAt: now},
		{ID: 2, Name: "Boisé", Slug: "boise", Description: "Bois de santal, cèdre, vétiver", IsActive: true, CreatedAt: now, UpdatedAt: now},
		{ID: 3, Name: "Oriental", Slug: "oriental", Description: "Ambre, oud et épices", IsActive: true, CreatedAt: now, UpdatedAt: now},
		{ID: 4, Name: "Frais", Slug: "frais", Description: "Agrumes et notes aquatiques", IsActive: true, CreatedAt: now, UpdatedAt: now},
	}

	perfumes := []domain.Perfume{
		{ID: 1, Name: "Jardin de Roses", Slug: "jardin-de-roses", Description: "Rose de Damas et pivoine", Gender: domain.GenderWomen, IsActive: true, CategoryID: 1, CreatedAt: now, UpdatedAt: now},
		{ID: 2, Name: "Santal Royal", Slug: "santal-royal", Description: "Santal crémeux et cuir", Gender: domain.GenderMen, IsActive: true, CategoryID: 2, CreatedAt: now, UpdatedAt: now},
		{ID: 3, Name: "Nuit d'Ambre", Slug: "nuit-d-ambre", Description: "Ambre gris et vanille noire", Gender: domain.GenderUnisex, IsActive: true, CategoryID: 3, CreatedAt: now, UpdatedAt: now},
		{ID: 4, Name: "Brise d'Agadir", Slug: "brise-d-agadir", Description: "Bergamote, néroli et sel marin", Gender: domain.GenderUnisex, IsActive: true, CategoryID: 4, CreatedAt: now, UpdatedAt: now},
	}

	variants := []domain.Variant{
		{ID: 1, PerfumeID: 1, SizeML: 30, SKU: "JDR-30", Barcode: "6111000000011", PriceMAD: domain.MustMoney("149.99"), StockQty: 24, LowStockThreshold: 5, IsActive: true},
		{ID: 2, PerfumeID: 1, SizeML: 50, SKU: "JDR-50", Barcode: "6111000000012", PriceMAD: domain.MustMoney("219.00"), StockQty: 16, LowStockThreshold: 5, IsActive: true},
		{ID: 3, PerfumeID: 1, SizeML: 100, SKU: "JDR-100", Barcode: "6111000000013", PriceMAD: domain.MustMoney("349.00"), StockQty: 8, LowStockThreshold: 3, IsActive: true},
		{ID: 4, PerfumeID: 2, SizeML: 50, SKU: "STR-50", Barcode: "6111000000021", PriceMAD: domain.MustMoney("289.50"), StockQty: 12, LowStockThreshold: 4, IsActive: true},
		{ID: 5, PerfumeID: 2, SizeML: 100, SKU: "STR-100", Barcode: "6111000000022", PriceMAD: domain.MustMoney("449.00"), StockQty: 6, LowStockThreshold: 3, IsActive: true},
		{ID: 6, PerfumeID: 3, SizeML: 30, SKU: "NDA-30", Barcode: "6111000000031", PriceMAD: domain.MustMoney("199.00"), StockQty: 20, LowStockThreshold: 5, IsActive: true},
		{ID: 7, PerfumeID: 3, SizeML: 100, SKU: "NDA-100", Barcode: "6111000000032", PriceMAD: domain.MustMoney("429.99"), StockQty: 4, LowStockThreshold: 5, IsActive: true},
		{ID: 8, PerfumeID: 4, SizeML: 50, SKU: "BDA-50", Barcode: "6111000000041", PriceMAD: domain.MustMoney("179.00"), StockQty: 30, LowStockThreshold: 8, IsActive: true},
		{ID: 9, PerfumeID: 4, SizeML: 100, SKU: "BDA-100", Barcode: "6111000000042", PriceMAD: domain.MustMoney("269.00"), StockQty: 0, LowStockThreshold: 5, IsActive: true},
	}

	categoryMap := make(map[int64]domain.Category, len(categories))
	for _, c := range categories {
		categoryMap[c.ID] = c
	}
	perfumeMap := make(map[int64]domain.Perfume, len(perfumes))
	for _, p := range perfumes {
		perfumeMap[p.ID] = p
	}
	variantMap := make(map[int64]domain.Variant, len(variants))
	for _, v := range variants {
		v.CreatedAt = now
		v.SetStock(v.StockQty, now)
		variantMap[v.ID] = v
	}

	return &Store{
		categories: categoryMap,
		perfumes:   perfumeMap,
		variants:   variantMap,
		sales:      make(map[int64]domain.Sale),
		returns:    make(map[int64]domain.Return),
		returnsBy:  make(map[int64]int64),
		purchases:  make(map[int64]domain.Purchase),
	}
}

func (s *Store) ListCategories(_ context.Context) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Category, 0, len(s.categories))
	for _, c := range s.categories {
		if c.IsActive {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) ListPerfumes(_ context.Context, filter domain.PerfumeFilter) ([]domain.Perfume, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]domain.Perfume, 0, len(s.perfumes))
	for _, p := range s.perfumes {
		if !p.IsActive {
			continue
		}
		if filter.CategoryID != 0 && p.CategoryID != filter.CategoryID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		out = append(out, s.resolvePerfume(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) FindPerfume(_ context.Context, id int64) (*domain.Perfume, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.perfumes[id]
	if !ok {
		return nil, domain.NewNotFound("perfume", id)
	}
	resolved := s.resolvePerfume(p)
	return &resolved, nil
}

func (s *Store) ListVariants(_ context.Context, filter domain.VariantFilter) ([]domain.Variant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]domain.Variant, 0, len(s.variants))
	for _, v := range s.variants {
		if !v.IsActive {
			continue
		}
		if filter.PerfumeID != 0 && v.PerfumeID != filter.PerfumeID {
			continue
		}
		if filter.Barcode != "" && v.Barcode != filter.Barcode {
			continue
		}
		if filter.InStockOnly && !v.IsInStock {
			continue
		}
		if search != "" {
			perfume := s.perfumes[v.PerfumeID]
			if !strings.Contains(strings.ToLower(perfume.Name), search) &&
				!strings.Contains(strings.ToLower(v.SKU), search) &&
				!strings.Contains(strings.ToLower(v.Barcode), search) {
				continue
			}
		}
		out = append(out, s.resolveVariant(v))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) FindVariant(_ context.Context, id int64) (*domain.Variant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.variants[id]
	if !ok {
		return nil, domain.NewNotFound("variant", id)
	}
	resolved := s.resolveVariant(v)
	return &resolved, nil
}

func (s *Store) WriteVariantStock(_ context.Context, id int64, qty int) (*domain.Variant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.variants[id]
	if !ok {
		return nil, domain.NewNotFound("variant", id)
	}
	if qty < 0 {
		return nil, fmt.Errorf("%w: stock quantity cannot be negative", domain.ErrInvalidRequest)
	}
	v.SetStock(qty, time.Now().UTC())
	s.variants[id] = v
	resolved := s.resolveVariant(v)
	return &resolved, nil
}

func (s *Store) FindSale(_ context.Context, id int64) (*domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sale, ok := s.sales[id]
	if !ok {
		return nil, domain.NewNotFound("sale", id)
	}
	copied := cloneSale(sale)
	return &copied, nil
}

func (s *Store) ListSales(_ context.Context, filter domain.DateRange) ([]domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Sale, 0, len(s.sales))
	for _, sale := range s.sales {
		if filter.Contains(sale.CreatedAt) {
			out = append(out, cloneSale(sale))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *Store) AppendSale(_ context.Context, sale domain.Sale) (*domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSaleID++
	sale.ID = s.nextSaleID
	for i := range sale.Items {
		s.nextSaleItemID++
		sale.Items[i].ID = s.nextSaleItemID
		sale.Items[i].SaleID = sale.ID
	}
	s.sales[sale.ID] = cloneSale(sale)
	copied := cloneSale(sale)
	return &copied, nil
}

func (s *Store) FindReturn(_ context.Context, id int64) (*domain.Return, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ret, ok := s.returns[id]
	if !ok {
		return nil, domain.NewNotFound("return", id)
	}
	copied := cloneReturn(ret)
	return &copied, nil
}

func (s *Store) ListReturns(_ context.Context, filter domain.DateRange) ([]domain.Return, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Return, 0, len(s.returns))
	for _, ret := range s.returns {
		if filter.Contains(ret.CreatedAt) {
			out = append(out, cloneReturn(ret))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *Store) FindReturnsForSale(_ context.Context, saleID int64) ([]domain.Return, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	retID, ok := s.returnsBy[saleID]
	if !ok {
		return nil, nil
	}
	return []domain.Return{cloneReturn(s.returns[retID])}, nil
}

func (s *Store) AppendReturn(_ context.Context, ret domain.Return) (*domain.Return, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Check-and-insert under one lock: the double-return guard.
	if _, exists := s.returnsBy[ret.SaleID]; exists {
		return nil, domain.ErrAlreadyReturned
	}

	s.nextReturnID++
	ret.ID = s.nextReturnID
	for i := range ret.ReturnItems {
		ret.ReturnItems[i].ID = int64(i + 1)
	}
	s.returns[ret.ID] = cloneReturn(ret)
	s.returnsBy[ret.SaleID] = ret.ID
	copied := cloneReturn(ret)
	return &copied, nil
}

func (s *Store) FindPurchase(_ context.Context, id int64) (*domain.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.purchases[id]
	if !ok {
		return nil, domain.NewNotFound("purchase", id)
	}
	copied := clonePurchase(p)
	return &copied, nil
}

func (s *Store) ListPurchases(_ context.Context, filter domain.DateRange) ([]domain.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Purchase, 0, len(s.purchases))
	for _, p := range s.purchases {
		if filter.Contains(p.CreatedAt) {
			out = append(out, clonePurchase(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *Store) AppendPurchase(_ context.Context, purchase domain.Purchase) (*domain.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextPurchaseID++
	purchase.ID = s.nextPurchaseID
	s.purchases[purchase.ID] = clonePurchase(purchase)
	copied := clonePurchase(purchase)
	return &copied, nil
}

// resolveVariant attaches the owning perfume (and its category) to a copy.
// Callers hold at least the read lock.
func (s *Store) resolveVariant(v domain.Variant) domain.Variant {
	if p, ok := s.perfumes[v.PerfumeID]; ok {
		if c, ok := s.categories[p.CategoryID]; ok {
			p.CategoryDetail = &c
		}
		v.PerfumeDetail = &p
	}
	return v
}

func (s *Store) resolvePerfume(p domain.Perfume) domain.Perfume {
	if c, ok := s.categories[p.CategoryID]; ok {
		p.CategoryDetail = &c
	}
	variants := make([]domain.Variant, 0, 4)
	for _, v := range s.variants {
		if v.PerfumeID == p.ID && v.IsActive {
			variants = append(variants, v)
		}
	}
	sort.Slice(variants, func(i, j int) bool { return variants[i].ID < variants[j].ID })
	p.Variants = variants
	return p
}

func cloneSale(sale domain.Sale) domain.Sale {
	items := make([]domain.SaleItem, len(sale.Items))
	copy(items, sale.Items)
	sale.Items = items
	return sale
}

func cloneReturn(ret domain.Return) domain.Return {
	returnItems := make([]domain.ReturnItem, len(ret.ReturnItems))
	copy(returnItems, ret.ReturnItems)
	ret.ReturnItems = returnItems
	if ret.ExchangeItems != nil {
		exchangeItems := make([]domain.ExchangeItem, len(ret.ExchangeItems))
		copy(exchangeItems, ret.ExchangeItems)
		ret.ExchangeItems = exchangeItems
	}
	return ret
}

func clonePurchase(p domain.Purchase) domain.Purchase {
	items := make([]domain.PurchaseItem, len(p.Items))
	copy(items, p.Items)
	p.Items = items
	return p
}
