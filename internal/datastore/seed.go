package datastore

import (
	"context"
	"time"

	"campuspulse/internal/interfaces"
	"campuspulse/internal/models"
)

func intPtr(n int) *int { return &n }

func strPtr(s string) *string { return &s }

// SeedDemo loads the demo catalog (events, prizes, users) used by fresh dev
// installs. Works against any store implementation.
func SeedDemo(ctx context.Context, users interfaces.UserStore, events interfaces.EventStore, prizes interfaces.PrizeStore) error {
	existing, err := events.ListEvents(ctx, models.EVENT_CATEGORY_ALL, 1, 0)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	now := time.Now()
	for _, event := range []*models.Event{
		{
			Title:       "LMU Basketball Game vs USC",
			Category:    models.EVENT_CATEGORY_SPORTS,
			StartTime:   now.Add(72 * time.Hour),
			Location:    "Gersten Pavilion",
			Image:       "https://via.placeholder.com/300x200/8C1515/FFFFFF?text=LMU+Basketball",
			Description: "Cheer on the Lions as they take on USC!",
			MaxCapacity: 100,
		},
		{
			Title:       "Spring Concert in the Sunken Garden",
			Category:    models.EVENT_CATEGORY_MUSIC,
			StartTime:   now.Add(120 * time.Hour),
			Location:    "Sunken Garden",
			Image:       "https://via.placeholder.com/300x200/8C1515/FFFFFF?text=Spring+Concert",
			Description: "Live music under the stars!",
			MaxCapacity: 150,
		},
		{
			Title:       "Study Night at the Library",
			Category:    models.EVENT_CATEGORY_ACADEMIC,
			StartTime:   now.Add(48 * time.Hour),
			Location:    "William H. Hannon Library",
			Image:       "https://via.placeholder.com/300x200/8C1515/FFFFFF?text=Study+Night",
			Description: "Group study session with snacks provided!",
			MaxCapacity: 50,
		},
	} {
		if err := events.CreateEvent(ctx, event); err != nil {
			return err
		}
	}

	for _, prize := range []*models.Prize{
		{
			Name:        "LMU Hoodie",
			PointsCost:  500,
			Image:       "https://via.placeholder.com/200x200/8C1515/FFFFFF?text=Hoodie",
			Description: "Comfortable LMU branded hoodie",
			Stock:       intPtr(25),
		},
		{
			Name:        "Campus Dining Credit",
			PointsCost:  300,
			Image:       "https://via.placeholder.com/200x200/8C1515/FFFFFF?text=Dining",
			Description: "$25 credit for campus dining",
		},
		{
			Name:        "Bookstore Gift Card",
			PointsCost:  750,
			Image:       "https://via.placeholder.com/200x200/8C1515/FFFFFF?text=Books",
			Description: "$50 gift card for the LMU bookstore",
			Stock:       intPtr(10),
		},
	} {
		if err := prizes.CreatePrize(ctx, prize); err != nil {
			return err
		}
	}

	for _, user := range []*models.User{
		{
			ID:           "alex.johnson",
			Name:         "Alex Johnson",
			Email:        "alex.johnson@lmu.edu",
			Organization: "Alpha Sigma Nu",
			Dorm:         "Del Rey North",
			Avatar:       strPtr("https://via.placeholder.com/100x100/8C1515/FFFFFF?text=AJ"),
		},
		{
			ID:           "sarah.chen",
			Name:         "Sarah Chen",
			Email:        "sarah.chen@lmu.edu",
			Organization: "Music Society",
			Dorm:         "Doheny Hall",
			Avatar:       strPtr("https://via.placeholder.com/100x100/8C1515/FFFFFF?text=SC"),
		},
	} {
		if err := users.UpsertUser(ctx, user); err != nil {
			return err
		}
	}

	return nil
}
