// Package picklist derives the quantity-aggregated pick list from the
// active order queue.
package picklist

import (
	"sort"

	"packslip/internal/domain"
)

// UnresolvedPrefix starts the bucket key of an unresolved entry. Each
// unresolved entry gets its own bucket.
const UnresolvedPrefix = "unresolved:"

// BucketKey returns the aggregation key of an entry.
func BucketKey(e *domain.OrderQueueEntry) string {
	if e.CanonicalSKU == nil {
		return UnresolvedPrefix + e.ID.String()
	}
	return string(e.Platform) + "/" + *e.CanonicalSKU
}

type bucket struct {
	agg  domain.PickListAggregate
	seen map[string]bool
}

// Aggregate groups pending and listed entries by platform and canonical SKU.
// An order contributes its quantity to a bucket once, however many of its
// rows land there. Output is sorted by platform then bucket key.
func Aggregate(entries []domain.OrderQueueEntry) []domain.PickListAggregate {
	buckets := make(map[string]*bucket)
	var order []string

	for i := range entries {
		e := &entries[i]
		if !e.WorkflowStatus.IsActive() {
			continue
		}
		key := BucketKey(e)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{
				agg: domain.PickListAggregate{
					BucketKey:            key,
					CanonicalSKU:         e.CanonicalSKU,
					DisplaySKU:           e.DisplaySKU,
					Description:          e.Description,
					Platform:             e.Platform,
					ContributingOrderIDs: []string{},
				},
				seen: make(map[string]bool),
			}
			buckets[key] = b
			order = append(order, key)
		}
		if b.seen[e.OrderID] {
			continue
		}
		b.seen[e.OrderID] = true
		b.agg.TotalQuantity += e.Quantity
		b.agg.ContributingOrderIDs = append(b.agg.ContributingOrderIDs, e.OrderID)
		if b.agg.Description == "" {
			b.agg.Description = e.Description
		}
	}

	out := make([]domain.PickListAggregate, 0, len(order))
	for _, key := range order {
		out = append(out, buckets[key].agg)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Platform != out[j].Platform {
			return out[i].Platform < out[j].Platform
		}
		return out[i].BucketKey < out[j].BucketKey
	})
	return out
}
