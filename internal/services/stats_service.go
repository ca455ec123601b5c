package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"splitinvoice/internal/core"
	"splitinvoice/internal/storage"
)

// RestaurantStats aggregates saved bills for one restaurant.
type RestaurantStats struct {
	Restaurant string     `json:"restaurant"`
	Visits     int        `json:"visits"`
	Total      core.Money `json:"total"`
}

// Stats summarizes the saved bill history.
type Stats struct {
	BillCount   int               `json:"billCount"`
	GrandTotal  core.Money        `json:"grandTotal"`
	AverageBill core.Money        `json:"averageBill"`
	Restaurants []RestaurantStats `json:"restaurants"`
}

// Period bounds a stats query. Zero From or To leaves that side open.
type Period struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the period. To is inclusive
// so a period of one calendar day covers that day's bills.
func (p Period) Contains(t time.Time) bool {
	if !p.From.IsZero() && t.Before(p.From) {
		return false
	}
	if !p.To.IsZero() && t.After(p.To) {
		return false
	}
	return true
}

// StatsService computes aggregates over the saved bill history.
type StatsService struct {
	bills storage.BillStore
}

func NewStatsService(bills storage.BillStore) *StatsService {
	return &StatsService{bills: bills}
}

// Compute aggregates saved bills inside the period. Restaurants are
// ordered by spend, highest first; bills with an empty restaurant name
// are counted in the totals but left out of the per-restaurant breakdown.
func (s *StatsService) Compute(ctx context.Context, period Period) (Stats, error) {
	bills, err := s.bills.ListBills(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("list bills: %w", err)
	}

	var stats Stats
	byRestaurant := make(map[string]*RestaurantStats)

	for _, b := range bills {
		if !period.Contains(b.Date) {
			continue
		}
		stats.BillCount++
		stats.GrandTotal.Cents += b.TotalAmount.Cents

		if b.Restaurant == "" {
			continue
		}
		rs, ok := byRestaurant[b.Restaurant]
		if !ok {
			rs = &RestaurantStats{Restaurant: b.Restaurant}
			byRestaurant[b.Restaurant] = rs
		}
		rs.Visits++
		rs.Total.Cents += b.TotalAmount.Cents
	}

	if stats.BillCount > 0 {
		stats.AverageBill = core.Money{Cents: stats.GrandTotal.Cents / int64(stats.BillCount)}
	}

	stats.Restaurants = make([]RestaurantStats, 0, len(byRestaurant))
	for _, rs := range byRestaurant {
		stats.Restaurants = append(stats.Restaurants, *rs)
	}
	sort.Slice(stats.Restaurants, func(i, j int) bool {
		if stats.Restaurants[i].Total.Cents != stats.Restaurants[j].Total.Cents {
			return stats.Restaurants[i].Total.Cents > stats.Restaurants[j].Total.Cents
		}
		return stats.Restaurants[i].Restaurant < stats.Restaurants[j].Restaurant
	})

	return stats, nil
}
