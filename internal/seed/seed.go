// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"eventrate/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumEvents   int
	ShouldClean bool
}

// DefaultPassword is the password every seeded user gets, for manual testing.
const DefaultPassword = "password123"

var (
	categories = []string{
		"music", "food", "sports", "culture", "nightlife", "market",
		"festival", "workshop", "conference", "community",
	}

	cities = []string{
		"Paris", "Lyon", "Marseille", "Toulouse", "Bordeaux", "Lille",
		"Nantes", "Strasbourg", "Montpellier", "Rennes", "Nice", "Grenoble",
	}

	eventTitleTemplates = []string{
		"Festival de %s",
		"Concert %s",
		"Marché de %s",
		"Soirée %s",
		"Atelier %s",
		"Tournoi de %s",
		"Brocante de %s",
		"Exposition %s",
	}

	eventSubjects = []string{
		"Jazz", "Rock", "Noël", "Printemps", "Quartier", "Street Food",
		"Photographie", "Pétanque", "Vinyles", "Céramique", "Électro", "Cinéma",
	}

	quickTagPool = []string{
		"fun", "crowded", "great-music", "family-friendly", "expensive",
		"good-food", "long-queues", "well-organized", "outdoor", "intimate",
	}

	weatherPool = []string{"sunny", "cloudy", "rainy", "windy", "hot", "mild"}

	criteriaNames = []string{"ambiance", "organization", "value", "sound", "venue"}
)

// Seed populates the database with test data
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("🌱 Starting database seeding with %d users and %d events...", opts.NumUsers, opts.NumEvents)

	gofakeit.Seed(time.Now().UnixNano())
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("⚠️  Warning: Could not clear all existing data, but continuing anyway...")
		}
	}

	users, err := createUsers(db, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("✓ %d test users created", len(users))

	events, err := createEvents(db, r, users, opts.NumEvents)
	if err != nil {
		return fmt.Errorf("failed to create events: %w", err)
	}
	log.Printf("✓ %d events created", len(events))

	registrations, err := createRegistrations(db, r, users, events)
	if err != nil {
		return fmt.Errorf("failed to create registrations: %w", err)
	}
	log.Printf("✓ %d registrations created", registrations)

	ratings, err := createRatings(db, r, users, events)
	if err != nil {
		return fmt.Errorf("failed to create ratings: %w", err)
	}
	log.Printf("✓ %d ratings created", ratings)

	if err := recomputeAggregates(db, events); err != nil {
		return fmt.Errorf("failed to recompute aggregates: %w", err)
	}

	log.Println("🌱 Seeding complete")
	return nil
}

func clearData(db *gorm.DB) error {
	// Children before parents
	tables := []string{"ratings", "event_registrations", "password_reset_tokens", "events", "users"}
	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	return nil
}

func createUsers(db *gorm.DB, count int) ([]models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, count)
	for i := 0; i < count; i++ {
		first := gofakeit.FirstName()
		last := gofakeit.LastName()
		username := fmt.Sprintf("%s%s%d", strings.ToLower(first), strings.ToLower(last), i)

		users = append(users, models.User{
			Username:     username,
			Email:        fmt.Sprintf("%s@example.com", username),
			Password:     string(hashed),
			RecoveryCode: fmt.Sprintf("RC-SEED%02d-SEED%02d", i%100, i%100),
			FirstName:    first,
			LastName:     last,
			AvatarURL:    fmt.Sprintf("https://i.pravatar.cc/150?u=%s", username),
			Bio:          gofakeit.Sentence(8),
		})
	}

	if err := db.Create(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func createEvents(db *gorm.DB, r *rand.Rand, users []models.User, count int) ([]models.Event, error) {
	if len(users) == 0 {
		return nil, fmt.Errorf("no users to own events")
	}

	events := make([]models.Event, 0, count)
	for i := 0; i < count; i++ {
		creator := users[r.Intn(len(users))]
		title := fmt.Sprintf(
			eventTitleTemplates[r.Intn(len(eventTitleTemplates))],
			eventSubjects[r.Intn(len(eventSubjects))],
		)

		// Spread events a few weeks around now
		start := time.Now().Add(time.Duration(r.Intn(60)-20) * 24 * time.Hour)
		end := start.Add(time.Duration(2+r.Intn(8)) * time.Hour)

		isFree := r.Intn(3) == 0
		amount := 0.0
		if !isFree {
			amount = float64(5 + r.Intn(50))
		}

		tags, _ := json.Marshal(pick(r, quickTagPool, 1+r.Intn(3)))

		events = append(events, models.Event{
			Title:           title,
			Description:     gofakeit.Paragraph(1, 3, 8, "\n"),
			Category:        categories[r.Intn(len(categories))],
			CreatorID:       creator.ID,
			LocationAddress: gofakeit.Street(),
			LocationCity:    cities[r.Intn(len(cities))],
			DateStart:       start,
			DateEnd:         &end,
			Capacity:        50 * (1 + r.Intn(10)),
			PriceAmount:     amount,
			PriceCurrency:   "EUR",
			PriceIsFree:     isFree,
			Tags:            tags,
			Status:          models.EventStatusActive,
		})
	}

	if err := db.Create(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func createRegistrations(db *gorm.DB, r *rand.Rand, users []models.User, events []models.Event) (int, error) {
	created := 0
	for i := range events {
		event := &events[i]
		attendees := r.Intn(len(users)/2 + 1)
		seen := map[uint]bool{}
		for j := 0; j < attendees; j++ {
			user := users[r.Intn(len(users))]
			if user.ID == event.CreatorID || seen[user.ID] {
				continue
			}
			seen[user.ID] = true

			registration := models.EventRegistration{
				EventID: event.ID,
				UserID:  user.ID,
				Status:  "confirmed",
			}
			if err := db.Create(&registration).Error; err != nil {
				return created, err
			}
			created++
		}
		if err := db.Model(&models.Event{}).Where("id = ?", event.ID).
			UpdateColumn("current_attendees", len(seen)).Error; err != nil {
			return created, err
		}
	}
	return created, nil
}

func createRatings(db *gorm.DB, r *rand.Rand, users []models.User, events []models.Event) (int, error) {
	created := 0
	for i := range events {
		event := &events[i]
		raters := r.Intn(len(users)/3 + 1)
		seen := map[uint]bool{}
		for j := 0; j < raters; j++ {
			user := users[r.Intn(len(users))]
			if seen[user.ID] {
				continue
			}
			seen[user.ID] = true

			arrival := fmt.Sprintf("%02d:%02d", 17+r.Intn(5), r.Intn(60))
			crowd := 1 + r.Intn(5)
			tags, _ := json.Marshal(pick(r, quickTagPool, 1+r.Intn(4)))

			criteria := map[string]interface{}{}
			for _, name := range pick(r, criteriaNames, 2+r.Intn(3)) {
				criteria[name] = 1 + r.Intn(5)
			}

			rating := models.Rating{
				EventID:           event.ID,
				UserID:            user.ID,
				OverallRating:     float64(10+r.Intn(41)) / 10, // 1.0 - 5.0
				ArrivalTime:       &arrival,
				StillPresent:      r.Intn(4) == 0,
				QuickTags:         tags,
				DetailedCriteria:  criteria,
				CrowdLevel:        &crowd,
				WeatherConditions: weatherPool[r.Intn(len(weatherPool))],
				Comment:           gofakeit.Sentence(12),
				Metadata: map[string]interface{}{
					"isRegistered":     false,
					"submissionSource": "seed",
					"version":          "2.0",
				},
				Status: models.RatingStatusActive,
			}
			if !rating.StillPresent {
				departure := fmt.Sprintf("%02d:%02d", 20+r.Intn(4), r.Intn(60))
				rating.DepartureTime = &departure
			}

			if err := db.Create(&rating).Error; err != nil {
				return created, err
			}
			created++
		}
	}
	return created, nil
}

func recomputeAggregates(db *gorm.DB, events []models.Event) error {
	for i := range events {
		err := db.Exec(`
			UPDATE events SET
				rating_average = COALESCE((SELECT AVG(overall_rating) FROM ratings WHERE event_id = events.id AND status = ?), 0),
				rating_count = (SELECT COUNT(*) FROM ratings WHERE event_id = events.id AND status = ?)
			WHERE id = ?`,
			models.RatingStatusActive, models.RatingStatusActive, events[i].ID).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func pick(r *rand.Rand, pool []string, n int) []string {
	if n > len(pool) {
		n = len(pool)
	}
	shuffled := append([]string(nil), pool...)
	r.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:n]
}
