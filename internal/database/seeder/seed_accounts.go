package seeder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"parttime-match/internal/domain/match"
	"parttime-match/internal/domain/profile"
	"parttime-match/internal/domain/user"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// seedNamespace keeps seeded ids stable across runs.
var seedNamespace = uuid.MustParse("6f1c2a52-8d3e-4d0b-9a57-3f2f0e0c9b11")

func seedID(name string) uuid.UUID {
	return uuid.NewSHA1(seedNamespace, []byte(name))
}

type demoSeeker struct {
	Email      string
	Location   *profile.Coordinates
	Days       []time.Weekday
	Skills     []string
	MinWage    *float64
	Experience string
}

func wage(v float64) *float64 { return &v }

var demoSeekers = []demoSeeker{
	{
		Email:      "nok@example.com",
		Location:   &profile.Coordinates{Latitude: 13.7563, Longitude: 100.5018},
		Days:       []time.Weekday{time.Saturday, time.Sunday},
		Skills:     []string{"barista", "cashier"},
		MinWage:    wage(60),
		Experience: "two years at a cafe",
	},
	{
		Email:      "ploy@example.com",
		Location:   &profile.Coordinates{Latitude: 13.7367, Longitude: 100.5232},
		Days:       []time.Weekday{time.Monday, time.Wednesday, time.Friday},
		Skills:     []string{"cooking", "dishwashing"},
		MinWage:    wage(55),
		Experience: "kitchen helper",
	},
	{
		Email:    "arm@example.com",
		Location: &profile.Coordinates{Latitude: 13.8199, Longitude: 100.5584},
		Days:     []time.Weekday{time.Saturday},
	},
}

const demoOwnerEmail = "owner@example.com"

// AccountsSeeder creates the demo shop owner and seekers with their profiles.
type AccountsSeeder struct{}

func (AccountsSeeder) Name() string { return "accounts" }

func (AccountsSeeder) Run(ctx context.Context, t Target) error {
	if t.DB != nil {
		if err := EnsureSeededTables(ctx, t.DB, "users", "seekers"); err != nil {
			return err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := ensureUser(ctx, t, demoOwnerEmail, match.RoleOwner, string(hash)); err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, ds := range demoSeekers {
		if err := ensureUser(ctx, t, ds.Email, match.RoleSeeker, string(hash)); err != nil {
			return err
		}
		s := profile.Seeker{
			ID:            seedID(ds.Email),
			Location:      ds.Location,
			AvailableDays: profile.NewWeekdaySet(ds.Days...),
			Skills:        profile.NormalizeSkills(ds.Skills),
			MinWage:       ds.MinWage,
			Experience:    ds.Experience,
			UpdatedAt:     now,
		}
		if err := t.Seekers.UpsertSeeker(ctx, s); err != nil {
			return fmt.Errorf("seeker %s: %w", ds.Email, err)
		}
	}
	return nil
}

func ensureUser(ctx context.Context, t Target, email string, role match.Role, hash string) error {
	u := user.User{ID: seedID(email), Email: email, PasswordHash: hash, Role: role}
	err := t.Users.CreateUser(ctx, u)
	if err == nil || errors.Is(err, user.ErrEmailTaken) {
		return nil
	}
	return fmt.Errorf("user %s: %w", email, err)
}

// SeekerIDs lists the ids of the seeded seekers.
func SeekerIDs() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(demoSeekers))
	for _, ds := range demoSeekers {
		out = append(out, seedID(ds.Email))
	}
	return out
}
