package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"parfumpos/internal/domain"
	"parfumpos/internal/store"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, slug, description, is_active, created_at, updated_at
		FROM categories
		WHERE is_active = true
		ORDER BY id
	`)
	if err != nil {
		return nil, store.WrapPersistence("list categories", err)
	}
	defer rows.Close()

	out := make([]domain.Category, 0, 16)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, store.WrapPersistence("list categories", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, store.WrapPersistence("list categories", err)
	}
	return out, nil
}

func (s *Store) ListPerfumes(ctx context.Context, filter domain.PerfumeFilter) ([]domain.Perfume, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.name, p.slug, p.description, p.gender, p.is_active, p.category_id,
		       p.created_at, p.updated_at
		FROM perfumes p
		WHERE p.is_active = true
		  AND ($1 = 0 OR p.category_id = $1)
		  AND ($2 = '' OR p.name ILIKE '%' || $2 || '%')
		ORDER BY p.id
	`, filter.CategoryID, filter.Search)
	if err != nil {
		return nil, store.WrapPersistence("list perfumes", err)
	}
	defer rows.Close()

	out := make([]domain.Perfume, 0, 32)
	for rows.Next() {
		var p domain.Perfume
		if err := rows.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.Gender, &p.IsActive, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, store.WrapPersistence("list perfumes", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, store.WrapPersistence("list perfumes", err)
	}

	for i := range out {
		variants, err := s.variantsForPerfume(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Variants = variants
	}
	return out, nil
}

func (s *Store) FindPerfume(ctx context.Context, id int64) (*domain.Perfume, error) {
	var p domain.Perfume
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, slug, description, gender, is_active, category_id, created_at, updated_at
		FROM perfumes
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.Gender, &p.IsActive, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFound("perfume", id)
	}
	if err != nil {
		return nil, store.WrapPersistence("find perfume", err)
	}

	variants, err := s.variantsForPerfume(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Variants = variants
	return &p, nil
}

const variantColumns = `
	v.id, v.perfume_id, v.size_ml, v.sku, v.barcode, v.price_mad, v.compare_at_price,
	v.stock_qty, v.low_stock_threshold, v.is_active, v.created_at, v.updated_at`

func scanVariant(scanner interface{ Scan(...any) error }) (domain.Variant, error) {
	var v domain.Variant
	var compareAt sql.NullString
	err := scanner.Scan(&v.ID, &v.PerfumeID, &v.SizeML, &v.SKU, &v.Barcode, &v.PriceMAD, &compareAt,
		&v.StockQty, &v.LowStockThreshold, &v.IsActive, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return domain.Variant{}, err
	}
	if compareAt.Valid {
		m, err := domain.MoneyFromString(compareAt.String)
		if err != nil {
			return domain.Variant{}, err
		}
		v.CompareAtPrice = &m
	}
	// Flags are derived, never read from a column.
	v.SetStock(v.StockQty, v.UpdatedAt)
	return v, nil
}

func (s *Store) variantsForPerfume(ctx context.Context, perfumeID int64) ([]domain.Variant, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+variantColumns+`
		FROM perfume_variants v
		WHERE v.perfume_id = $1 AND v.is_active = true
		ORDER BY v.size_ml
	`, perfumeID)
	if err != nil {
		return nil, store.WrapPersistence("list variants", err)
	}
	defer rows.Close()

	out := make([]domain.Variant, 0, 4)
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, store.WrapPersistence("list variants", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, store.WrapPersistence("list variants", err)
	}
	return out, nil
}

func (s *Store) ListVariants(ctx context.Context, filter domain.VariantFilter) ([]domain.Variant, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+variantColumns+`
		FROM perfume_variants v
		JOIN perfumes p ON p.id = v.perfume_id
		WHERE v.is_active = true
		  AND ($1 = 0 OR v.perfume_id = $1)
		  AND ($2 = '' OR v.barcode = $2)
		  AND ($3 = '' OR p.name ILIKE '%' || $3 || '%' OR v.sku ILIKE '%' || $3 || '%' OR v.barcode ILIKE '%' || $3 || '%')
		  AND (NOT $4 OR v.stock_qty > 0)
		ORDER BY v.id
	`, filter.PerfumeID, filter.Barcode, filter.Search, filter.InStockOnly)
	if err != nil {
		return nil, store.WrapPersistence("list variants", err)
	}
	defer rows.Close()

	out := make([]domain.Variant, 0, 64)
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, store.WrapPersistence("list variants", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, store.WrapPersistence("list variants", err)
	}

	for i := range out {
		if err := s.attachPerfumeDetail(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) FindVariant(ctx context.Context, id int64) (*domain.Variant, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+variantColumns+`
		FROM perfume_variants v
		WHERE v.id = $1
	`, id)
	v, err := scanVariant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFound("variant", id)
	}
	if err != nil {
		return nil, store.WrapPersistence("find variant", err)
	}
	if err := s.attachPerfumeDetail(ctx, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *Store) attachPerfumeDetail(ctx context.Context, v *domain.Variant) error {
	var p domain.Perfume
	var c domain.Category
	err := s.db.QueryRowContext(ctx, `
		SELECT p.id, p.name, p.slug, p.description, p.gender, p.is_active, p.category_id,
		       p.created_at, p.updated_at,
		       c.id, c.name, c.slug, c.description, c.is_active, c.created_at, c.updated_at
		FROM perfumes p
		JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1
	`, v.PerfumeID).Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.Gender, &p.IsActive, &p.CategoryID,
		&p.CreatedAt, &p.UpdatedAt,
		&c.ID, &c.Name, &c.Slug, &c.Description, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return store.WrapPersistence("find variant", err)
	}
	p.CategoryDetail = &c
	v.PerfumeDetail = &p
	return nil
}

// WriteVariantStock persists the quantity and recomputes the derived flags in
// the same statement, conditional on the quantity staying non-negative.
func (s *Store) WriteVariantStock(ctx context.Context, id int64, qty int) (*domain.Variant, error) {
	if qty < 0 {
		return nil, errors.Join(domain.ErrInvalidRequest, errors.New("stock quantity cannot be negative"))
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE perfume_variants
		SET stock_qty = $2,
		    is_in_stock = $2 > 0,
		    is_low_stock = ($2 > 0 AND $2 <= low_stock_threshold),
		    updated_at = now()
		WHERE id = $1
	`, id, qty)
	if err != nil {
		return nil, store.WrapPersistence("write variant stock", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, store.WrapPersistence("write variant stock", err)
	}
	if affected == 0 {
		return nil, domain.NewNotFound("variant", id)
	}
	return s.FindVariant(ctx, id)
}

func (s *Store) FindSale(ctx context.Context, id int64) (*domain.Sale, error) {
	var sale domain.Sale
	err := s.db.QueryRowContext(ctx, `
		SELECT id, total_amount, payment_method, cashier_name, created_at, updated_at
		FROM sales
		WHERE id = $1
	`, id).Scan(&sale.ID, &sale.TotalAmount, &sale.PaymentMethod, &sale.CashierName, &sale.CreatedAt, &sale.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFound("sale", id)
	}
	if err != nil {
		return nil, store.WrapPersistence("find sale", err)
	}

	items, err := s.saleItems(ctx, sale.ID)
	if err != nil {
		return nil, err
	}
	sale.Items = items
	return &sale, nil
}

func (s *Store) saleItems(ctx context.Context, saleID int64) ([]domain.SaleItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sale_id, variant_id, quantity, unit_price, subtotal
		FROM sale_items
		WHERE sale_id = $1
		ORDER BY id
	`, saleID)
	if err != nil {
		return nil, store.WrapPersistence("find sale", err)
	}
	defer rows.Close()

	items := make([]domain.SaleItem, 0, 8)
	for rows.Next() {
		var item domain.SaleItem
		if err := rows.Scan(&item.ID, &item.SaleID, &item.VariantID, &item.Quantity, &item.UnitPrice, &item.Subtotal); err != nil {
			return nil, store.WrapPersistence("find sale", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, store.WrapPersistence("find sale", err)
	}

	for i := range items {
		variant, err := s.FindVariant(ctx, items[i].VariantID)
		if err == nil {
			items[i].VariantDetail = variant
		}
	}
	return items, nil
}

func (s *Store) ListSales(ctx context.Context, filter domain.DateRange) ([]domain.Sale, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, total_amount, payment_method, cashier_name, created_at, updated_at
		FROM sales
		WHERE ($1::timestamptz IS NULL OR created_at >= $1)
		  AND ($2::timestamptz IS NULL OR created_at <= $2)
		ORDER BY id DESC
	`, nullTime(filter.From), nullTime(filter.To))
	if err != nil {
		return nil, store.WrapPersistence("list sales", err)
	}
	defer rows.Close()

	out := make([]domain.Sale, 0, 64)
	for rows.Next() {
		var sale domain.Sale
		if err := rows.Scan(&sale.ID, &sale.TotalAmount, &sale.PaymentMethod, &sale.CashierName, &sale.CreatedAt, &sale.UpdatedAt); err != nil {
			return nil, store.WrapPersistence("list sales", err)
		}
		out = append(out, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, store.WrapPersistence("list sales", err)
	}

	for i := range out {
		items, err := s.saleItems(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}

func (s *Store) AppendSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, store.WrapPersistence("append sale", err)
	}
	defer func() { _ = tx.Rollback() }()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO sales (total_amount, payment_method, cashier_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING id
	`, sale.TotalAmount, sale.PaymentMethod, sale.CashierName, sale.CreatedAt).Scan(&sale.ID)
	if err != nil {
		return nil, store.WrapPersistence("append sale", err)
	}

	for i := range sale.Items {
		item := &sale.Items[i]
		item.SaleID = sale.ID
		err = tx.QueryRowContext(ctx, `
			INSERT INTO sale_items (sale_id, variant_id, quantity, unit_price, subtotal)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, item.SaleID, item.VariantID, item.Quantity, item.UnitPrice, item.Subtotal).Scan(&item.ID)
		if err != nil {
			return nil, store.WrapPersistence("append sale", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, store.WrapPersistence("append sale", err)
	}
	return &sale, nil
}

func (s *Store) FindReturn(ctx context.Context, id int64) (*domain.Return, error) {
	ret, err := s.scanReturnRow(s.db.QueryRowContext(ctx, `
		SELECT id, sale_id, return_total, exchange_total, difference, operation_type,
		       reason, payment_method, cashier_name, notes, created_at, updated_at
		FROM returns
		WHERE id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFound("return", id)
	}
	if err != nil {
		return nil, store.WrapPersistence("find return", err)
	}
	if err := s.loadReturnItems(ctx, ret); err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *Store) scanReturnRow(row *sql.Row) (*domain.Return, error) {
	var ret domain.Return
	err := row.Scan(&ret.ID, &ret.SaleID, &ret.ReturnTotal, &ret.ExchangeTotal, &ret.Difference,
		&ret.OperationType, &ret.Reason, &ret.PaymentMethod, &ret.CashierName, &ret.Notes,
		&ret.CreatedAt, &ret.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &ret, nil
}

func (s *Store) loadReturnItems(ctx context.Context, ret *domain.Return) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sale_item_id, quantity, unit_price, subtotal
		FROM return_items
		WHERE return_id = $1
		ORDER BY id
	`, ret.ID)
	if err != nil {
		return store.WrapPersistence("find return", err)
	}
	defer rows.Close()
	for rows.Next() {
		var item domain.ReturnItem
		if err := rows.Scan(&item.ID, &item.SaleItemID, &item.Quantity, &item.UnitPrice, &item.Subtotal); err != nil {
			return store.WrapPersistence("find return", err)
		}
		ret.ReturnItems = append(ret.ReturnItems, item)
	}
	if err := rows.Err(); err != nil {
		return store.WrapPersistence("find return", err)
	}

	exRows, err := s.db.QueryContext(ctx, `
		SELECT variant_id, quantity, unit_price, subtotal
		FROM exchange_items
		WHERE return_id = $1
		ORDER BY id
	`, ret.ID)
	if err != nil {
		return store.WrapPersistence("find return", err)
	}
	defer exRows.Close()
	for exRows.Next() {
		var item domain.ExchangeItem
		if err := exRows.Scan(&item.VariantID, &item.Quantity, &item.UnitPrice, &item.Subtotal); err != nil {
			return store.WrapPersistence("find return", err)
		}
		ret.ExchangeItems = append(ret.ExchangeItems, item)
	}
	return exRows.Err()
}

func (s *Store) ListReturns(ctx context.Context, filter domain.DateRange) ([]domain.Return, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sale_id, return_total, exchange_total, difference, operation_type,
		       reason, payment_method, cashier_name, notes, created_at, updated_at
		FROM returns
		WHERE ($1::timestamptz IS NULL OR created_at >= $1)
		  AND ($2::timestamptz IS NULL OR created_at <= $2)
		ORDER BY id DESC
	`, nullTime(filter.From), nullTime(filter.To))
	if err != nil {
		return nil, store.WrapPersistence("list returns", err)
	}
	defer rows.Close()

	out := make([]domain.Return, 0, 32)
	for rows.Next() {
		var ret domain.Return
		if err := rows.Scan(&ret.ID, &ret.SaleID, &ret.ReturnTotal, &ret.ExchangeTotal, &ret.Difference,
			&ret.OperationType, &ret.Reason, &ret.PaymentMethod, &ret.CashierName, &ret.Notes,
			&ret.CreatedAt, &ret.UpdatedAt); err != nil {
			return nil, store.WrapPersistence("list returns", err)
		}
		out = append(out, ret)
	}
	if err := rows.Err(); err != nil {
		return nil, store.WrapPersistence("list returns", err)
	}

	for i := range out {
		if err := s.loadReturnItems(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) FindReturnsForSale(ctx context.Context, saleID int64) ([]domain.Return, error) {
	ret, err := s.scanReturnRow(s.db.QueryRowContext(ctx, `
		SELECT id, sale_id, return_total, exchange_total, difference, operation_type,
		       reason, payment_method, cashier_name, notes, created_at, updated_at
		FROM returns
		WHERE sale_id = $1
	`, saleID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, store.WrapPersistence("find returns for sale", err)
	}
	if err := s.loadReturnItems(ctx, ret); err != nil {
		return nil, err
	}
	return []domain.Return{*ret}, nil
}

// AppendReturn relies on the unique constraint on returns.sale_id to make the
// one-return-per-sale guard race-free across terminals.
func (s *Store) AppendReturn(ctx context.Context, ret domain.Return) (*domain.Return, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, store.WrapPersistence("append return", err)
	}
	defer func() { _ = tx.Rollback() }()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO returns (sale_id, return_total, exchange_total, difference, operation_type,
		                     reason, payment_method, cashier_name, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		RETURNING id
	`, ret.SaleID, ret.ReturnTotal, ret.ExchangeTotal, ret.Difference, ret.OperationType,
		ret.Reason, ret.PaymentMethod, ret.CashierName, ret.Notes, ret.CreatedAt).Scan(&ret.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAlreadyReturned
		}
		return nil, store.WrapPersistence("append return", err)
	}

	for i := range ret.ReturnItems {
		item := &ret.ReturnItems[i]
		err = tx.QueryRowContext(ctx, `
			INSERT INTO return_items (return_id, sale_item_id, quantity, unit_price, subtotal)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, ret.ID, item.SaleItemID, item.Quantity, item.UnitPrice, item.Subtotal).Scan(&item.ID)
		if err != nil {
			return nil, store.WrapPersistence("append return", err)
		}
	}
	for _, item := range ret.ExchangeItems {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO exchange_items (return_id, variant_id, quantity, unit_price, subtotal)
			VALUES ($1, $2, $3, $4, $5)
		`, ret.ID, item.VariantID, item.Quantity, item.UnitPrice, item.Subtotal)
		if err != nil {
			return nil, store.WrapPersistence("append return", err)
		}
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAlreadyReturned
		}
		return nil, store.WrapPersistence("append return", err)
	}
	return &ret, nil
}

func (s *Store) FindPurchase(ctx context.Context, id int64) (*domain.Purchase, error) {
	var p domain.Purchase
	err := s.db.QueryRowContext(ctx, `
		SELECT id, supplier_name, total_amount, notes, created_at, updated_at
		FROM purchases
		WHERE id = $1
	`, id).Scan(&p.ID, &p.SupplierName, &p.TotalAmount, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFound("purchase", id)
	}
	if err != nil {
		return nil, store.WrapPersistence("find purchase", err)
	}
	if err := s.loadPurchaseItems(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) loadPurchaseItems(ctx context.Context, p *domain.Purchase) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT variant_id, quantity, unit_price, subtotal
		FROM purchase_items
		WHERE purchase_id = $1
		ORDER BY id
	`, p.ID)
	if err != nil {
		return store.WrapPersistence("find purchase", err)
	}
	defer rows.Close()
	for rows.Next() {
		var item domain.PurchaseItem
		if err := rows.Scan(&item.VariantID, &item.Quantity, &item.UnitPrice, &item.Subtotal); err != nil {
			return store.WrapPersistence("find purchase", err)
		}
		p.Items = append(p.Items, item)
	}
	return rows.Err()
}

func (s *Store) ListPurchases(ctx context.Context, filter domain.DateRange) ([]domain.Purchase, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, supplier_name, total_amount, notes, created_at, updated_at
		FROM purchases
		WHERE ($1::timestamptz IS NULL OR created_at >= $1)
		  AND ($2::timestamptz IS NULL OR created_at <= $2)
		ORDER BY id DESC
	`, nullTime(filter.From), nullTime(filter.To))
	if err != nil {
		return nil, store.WrapPersistence("list purchases", err)
	}
	defer rows.Close()

	out := make([]domain.Purchase, 0, 32)
	for rows.Next() {
		var p domain.Purchase
		if err := rows.Scan(&p.ID, &p.SupplierName, &p.TotalAmount, &p.Notes, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, store.WrapPersistence("list purchases", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, store.WrapPersistence("list purchases", err)
	}

	for i := range out {
		if err := s.loadPurchaseItems(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) AppendPurchase(ctx context.Context, purchase domain.Purchase) (*domain.Purchase, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, store.WrapPersistence("append purchase", err)
	}
	defer func() { _ = tx.Rollback() }()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO purchases (supplier_name, total_amount, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING id
	`, purchase.SupplierName, purchase.TotalAmount, purchase.Notes, purchase.CreatedAt).Scan(&purchase.ID)
	if err != nil {
		return nil, store.WrapPersistence("append purchase", err)
	}

	for _, item := range purchase.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO purchase_items (purchase_id, variant_id, quantity, unit_price, subtotal)
			VALUES ($1, $2, $3, $4, $5)
		`, purchase.ID, item.VariantID, item.Quantity, item.UnitPrice, item.Subtotal)
		if err != nil {
			return nil, store.WrapPersistence("append purchase", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, store.WrapPersistence("append purchase", err)
	}
	return &purchase, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
