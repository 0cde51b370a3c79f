// Package identifier translates marketplace identifiers into canonical
// catalog products by exact string equality only.
package identifier

import (
	"context"
	"errors"
	"fmt"

	"packslip/internal/domain"
	"packslip/internal/port"
)

// Resolver looks identifiers up in the alias table, then the product table.
type Resolver struct {
	catalog port.CatalogRepository
}

// NewResolver creates a Resolver over the given catalog store.
func NewResolver(catalog port.CatalogRepository) *Resolver {
	return &Resolver{catalog: catalog}
}

// Resolve returns Resolved only when the identifier is stored verbatim as a
// platform alias, a canonical SKU or a barcode. The identifier is never
// trimmed, case folded or otherwise normalized. Store failures are returned
// as errors and never reported as Unresolved.
func (r *Resolver) Resolve(ctx context.Context, identifier string, platform domain.Platform) (domain.Resolution, error) {
	if identifier == "" {
		return domain.Unresolved(), nil
	}

	alias, err := r.catalog.FindAlias(ctx, platform, identifier)
	switch {
	case err == nil:
		return domain.Resolved(alias.ProductSKU, alias.ProductID, domain.MatchSourceAlias), nil
	case !isNotFound(err):
		return domain.Resolution{}, fmt.Errorf("identifier.Resolve alias: %w", err)
	}

	product, err := r.catalog.GetProductBySKU(ctx, identifier)
	switch {
	case err == nil:
		return domain.Resolved(product.SKU, product.ID, domain.MatchSourceSKU), nil
	case !isNotFound(err):
		return domain.Resolution{}, fmt.Errorf("identifier.Resolve sku: %w", err)
	}

	product, err = r.catalog.GetProductByBarcode(ctx, identifier)
	switch {
	case err == nil:
		return domain.Resolved(product.SKU, product.ID, domain.MatchSourceBarcode), nil
	case !isNotFound(err):
		return domain.Resolution{}, fmt.Errorf("identifier.Resolve barcode: %w", err)
	}

	return domain.Unresolved(), nil
}

// ResolveAll resolves identifiers in order, memoizing repeats within the call.
func (r *Resolver) ResolveAll(ctx context.Context, identifiers []string, platform domain.Platform) ([]domain.Resolution, error) {
	out := make([]domain.Resolution, len(identifiers))
	seen := make(map[string]domain.Resolution)
	for i, id := range identifiers {
		if res, ok := seen[id]; ok {
			out[i] = res
			continue
		}
		res, err := r.Resolve(ctx, id, platform)
		if err != nil {
			return nil, err
		}
		seen[id] = res
		out[i] = res
	}
	return out, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrProductNotFound)
}
