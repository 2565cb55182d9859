package seeder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"parttime-match/internal/domain/profile"
	"parttime-match/internal/repository"
)

type demoPost struct {
	Key      string
	Title    string
	Category string
	Location *profile.Coordinates
	Wage     float64
	Days     []time.Weekday
	Skills   []string
}

var demoPosts = []demoPost{
	{
		Key:      "weekend-barista",
		Title:    "Weekend barista",
		Category: "cafe",
		Location: &profile.Coordinates{Latitude: 13.7460, Longitude: 100.5340},
		Wage:     65,
		Days:     []time.Weekday{time.Saturday, time.Sunday},
		Skills:   []string{"barista"},
	},
	{
		Key:      "kitchen-helper",
		Title:    "Kitchen helper",
		Category: "restaurant",
		Location: &profile.Coordinates{Latitude: 13.7300, Longitude: 100.5200},
		Wage:     50,
		Days:     []time.Weekday{time.Monday, time.Friday},
		Skills:   []string{"dishwashing", "cooking"},
	},
	{
		Key:      "flyer-distribution",
		Title:    "Flyer distribution",
		Category: "promotion",
		Wage:     0,
		Days:     []time.Weekday{time.Saturday},
	},
}

// ListingsSeeder creates one demo shop owned by the demo owner, plus its posts.
type ListingsSeeder struct{}

func (ListingsSeeder) Name() string { return "listings" }

func (ListingsSeeder) Run(ctx context.Context, t Target) error {
	if t.DB != nil {
		if err := EnsureSeededTables(ctx, t.DB, "shops", "posts"); err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	owner := seedID(demoOwnerEmail)
	shop := profile.Shop{ID: seedID("shop:siam"), OwnerID: owner, Name: "Siam Corner Cafe", CreatedAt: now}
	if err := t.Shops.CreateShop(ctx, shop); err != nil && !errors.Is(err, repository.ErrAlreadyExists) {
		return fmt.Errorf("shop: %w", err)
	}

	for _, dp := range demoPosts {
		p := profile.Post{
			ID:             seedID("post:" + dp.Key),
			ShopID:         shop.ID,
			OwnerID:        owner,
			Title:          dp.Title,
			Category:       dp.Category,
			Location:       dp.Location,
			Wage:           dp.Wage,
			RequiredDays:   profile.NewWeekdaySet(dp.Days...),
			RequiredSkills: profile.NormalizeSkills(dp.Skills),
			Headcount:      1,
			IsOpen:         true,
			UpdatedAt:      now,
		}
		if dp.Skills == nil {
			p.RequiredSkills = []string{}
		}
		if err := t.Posts.CreatePost(ctx, p); err != nil && !errors.Is(err, repository.ErrAlreadyExists) {
			return fmt.Errorf("post %s: %w", dp.Key, err)
		}
	}
	return nil
}
