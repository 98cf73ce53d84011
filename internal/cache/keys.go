package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix    = "user:%d"
	ListingKeyPrefix = "listing:%d"
	CategoriesKey    = "categories:all"
	SEOMetricsPrefix = "seo:%s"
)

const (
	UserTTL       = 5 * time.Minute
	ListingTTL    = 10 * time.Minute
	CategoriesTTL = 30 * time.Minute
	SEOMetricsTTL = 12 * time.Hour
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func ListingKey(listingID uint) string {
	return fmt.Sprintf(ListingKeyPrefix, listingID)
}

func SEOMetricsKey(domain string) string {
	return fmt.Sprintf(SEOMetricsPrefix, domain)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateListing(ctx context.Context, listingID uint) {
	Invalidate(ctx, ListingKey(listingID))
}

func InvalidateCategories(ctx context.Context) {
	Invalidate(ctx, CategoriesKey)
}
