// Package postgres implements the catalog read side on PostgreSQL. LoadProduct
// assembles the full association graph in one pass; if any association read
// fails the whole load fails, so synthesis never sees a partial snapshot.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/softmaker-io/spree-searchkick/internal/domain"
	"github.com/softmaker-io/spree-searchkick/pkg/database"
	apperrors "github.com/softmaker-io/spree-searchkick/pkg/errors"
)

// CatalogRepository implements repository.CatalogRepository using PostgreSQL.
type CatalogRepository struct {
	pool database.DBTX
}

// NewCatalogRepository creates a new PostgreSQL-backed catalog repository.
func NewCatalogRepository(pool database.DBTX) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// LoadProduct returns the product and every association document synthesis
// reads. Association queries order by stable keys so repeated loads of an
// unchanged product yield identical graphs.
func (r *CatalogRepository) LoadProduct(ctx context.Context, id string) (*domain.ProductGraph, error) {
	graph := &domain.ProductGraph{}

	if err := r.loadProduct(ctx, id, &graph.Product); err != nil {
		return nil, err
	}

	for _, load := range []struct {
		name string
		fn   func(context.Context, string, *domain.ProductGraph) error
	}{
		{"variants", r.loadVariants},
		{"option types", r.loadOptionTypes},
		{"option values", r.loadOptionValues},
		{"properties", r.loadProperties},
		{"taxons", r.loadTaxonLineage},
		{"translations", r.loadTranslations},
		{"conversions", r.loadConversions},
		{"stock", r.loadStock},
	} {
		if err := load.fn(ctx, id, graph); err != nil {
			return nil, apperrors.DataUnavailable(fmt.Errorf("load %s for product %s: %w", load.name, id, err))
		}
	}

	graph.Product.InStock = graph.TotalOnHand > 0
	return graph, nil
}

// ListProductIDs returns the ids of all live products in stable order.
func (r *CatalogRepository) ListProductIDs(ctx context.Context) ([]string, error) {
	query := `
		SELECT id
		FROM products
		WHERE deleted_at IS NULL
		ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.DataUnavailable(fmt.Errorf("list product ids: %w", err))
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, apperrors.DataUnavailable(fmt.Errorf("scan product id: %w", err))
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.DataUnavailable(fmt.Errorf("iterate product ids: %w", err))
	}
	return ids, nil
}

func (r *CatalogRepository) loadProduct(ctx context.Context, id string, p *domain.Product) error {
	query := `
		SELECT id, slug, available, price, currency, created_at, updated_at
		FROM products
		WHERE id = $1 AND deleted_at IS NULL`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Slug, &p.Available, &p.Price, &p.Currency, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NotFound("product", id)
	}
	if err != nil {
		return apperrors.DataUnavailable(fmt.Errorf("load product %s: %w", id, err))
	}
	return nil
}

func (r *CatalogRepository) loadVariants(ctx context.Context, id string, g *domain.ProductGraph) error {
	query := `
		SELECT id, sku, is_master
		FROM variants
		WHERE product_id = $1 AND deleted_at IS NULL
		ORDER BY is_master DESC, id`

	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var v domain.Variant
		if err := rows.Scan(&v.ID, &v.SKU, &v.IsMaster); err != nil {
			return err
		}
		g.Variants = append(g.Variants, v)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	return r.loadVariantOptionValues(ctx, id, g)
}

func (r *CatalogRepository) loadVariantOptionValues(ctx context.Context, id string, g *domain.ProductGraph) error {
	query := `
		SELECT vov.variant_id, vov.option_value_id
		FROM variant_option_values vov
		JOIN variants v ON v.id = vov.variant_id
		WHERE v.product_id = $1 AND v.deleted_at IS NULL
		ORDER BY vov.variant_id, vov.option_value_id`

	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return err
	}
	defer rows.Close()

	byVariant := make(map[string][]string)
	for rows.Next() {
		var variantID, optionValueID string
		if err := rows.Scan(&variantID, &optionValueID); err != nil {
			return err
		}
		byVariant[variantID] = append(byVariant[variantID], optionValueID)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range g.Variants {
		g.Variants[i].OptionValueIDs = byVariant[g.Variants[i].ID]
	}
	return nil
}

func (r *CatalogRepository) loadOptionTypes(ctx context.Context, id string, g *domain.ProductGraph) error {
	query := `
		SELECT ot.id, ot.name, ot.filterable
		FROM option_types ot
		JOIN product_option_types pot ON pot.option_type_id = ot.id
		WHERE pot.product_id = $1
		ORDER BY pot.position, ot.id`

	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var ot domain.OptionType
		if err := rows.Scan(&ot.ID, &ot.Name, &ot.Filterable); err != nil {
			return err
		}
		g.OptionTypes = append(g.OptionTypes, ot)
	}
	return rows.Err()
}

func (r *CatalogRepository) loadOptionValues(ctx context.Context, id string, g *domain.ProductGraph) error {
	query := `
		SELECT DISTINCT ov.id, ov.option_type_id, ov.name
		FROM option_values ov
		JOIN variant_option_values vov ON vov.option_value_id = ov.id
		JOIN variants v ON v.id = vov.variant_id
		WHERE v.product_id = $1 AND v.deleted_at IS NULL
		ORDER BY ov.id`

	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var ov domain.OptionValue
		if err := rows.Scan(&ov.ID, &ov.OptionTypeID, &ov.Name); err != nil {
			return err
		}
		g.OptionValues = append(g.OptionValues, ov)
	}
	return rows.Err()
}

func (r *CatalogRepository) loadProperties(ctx context.Context, id string, g *domain.ProductGraph) error {
	query := `
		SELECT p.id, p.name, p.filterable, pp.value
		FROM product_properties pp
		JOIN properties p ON p.id = pp.property_id
		WHERE pp.product_id = $1
		ORDER BY pp.position, p.id`

	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			prop  domain.Property
			value *string
		)
		if err := rows.Scan(&prop.ID, &prop.Name, &prop.Filterable, &value); err != nil {
			return err
		}
		g.Properties = append(g.Properties, prop)
		if value != nil {
			g.PropertyValues = append(g.PropertyValues, domain.PropertyValue{
				PropertyID: prop.ID,
				Value:      *value,
			})
		}
	}
	return rows.Err()
}

// loadTaxonLineage walks each taxon membership up to the root with a
// recursive CTE. The result concatenates self-plus-ancestors per membership;
// synthesis deduplicates shared ancestors.
func (r *CatalogRepository) loadTaxonLineage(ctx context.Context, id string, g *domain.ProductGraph) error {
	query := `
		WITH RECURSIVE lineage AS (
			SELECT t.id, t.name, t.parent_id, pt.position AS membership, 0 AS depth
			FROM taxons t
			JOIN products_taxons pt ON pt.taxon_id = t.id
			WHERE pt.product_id = $1
			UNION ALL
			SELECT t.id, t.name, t.parent_id, l.membership, l.depth + 1
			FROM taxons t
			JOIN lineage l ON t.id = l.parent_id
		)
		SELECT id, name
		FROM lineage
		ORDER BY membership, depth DESC`

	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var t domain.Taxon
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return err
		}
		g.TaxonLineage = append(g.TaxonLineage, t)
	}
	return rows.Err()
}

func (r *CatalogRepository) loadTranslations(ctx context.Context, id string, g *domain.ProductGraph) error {
	query := `
		SELECT locale, name, COALESCE(description, ''), COALESCE(short_description, '')
		FROM product_translations
		WHERE product_id = $1
		ORDER BY locale`

	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var tr domain.Translation
		if err := rows.Scan(&tr.Locale, &tr.Name, &tr.Description, &tr.ShortDescription); err != nil {
			return err
		}
		g.Translations = append(g.Translations, tr)
	}
	return rows.Err()
}

// loadConversions counts completed orders containing the product, the
// popularity signal relevance sorting feeds on.
func (r *CatalogRepository) loadConversions(ctx context.Context, id string, g *domain.ProductGraph) error {
	query := `
		SELECT COUNT(DISTINCT o.id)
		FROM orders o
		JOIN line_items li ON li.order_id = o.id
		JOIN variants v ON v.id = li.variant_id
		WHERE v.product_id = $1 AND o.completed_at IS NOT NULL`

	return r.pool.QueryRow(ctx, query, id).Scan(&g.Conversions)
}

func (r *CatalogRepository) loadStock(ctx context.Context, id string, g *domain.ProductGraph) error {
	query := `
		SELECT COALESCE(SUM(si.count_on_hand), 0)
		FROM stock_items si
		JOIN variants v ON v.id = si.variant_id
		WHERE v.product_id = $1 AND v.deleted_at IS NULL`

	return r.pool.QueryRow(ctx, query, id).Scan(&g.TotalOnHand)
}
