package seed

import (
	"fmt"
	"log"

	"postmarket/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configures the seeder.
type Options struct {
	NumUsers       int
	NumListings    int
	NumMessages    int
	NumReports     int
	CategoriesFile string
	ShouldClean    bool
}

// Seed populates the database with demo data: an admin account, category
// presets, users, listings, conversations and a few open reports.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Seeding database: %d users, %d listings, %d messages", opts.NumUsers, opts.NumListings, opts.NumMessages)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway")
		}
	}

	presets, err := LoadCategoryPresets(opts.CategoriesFile)
	if err != nil {
		return err
	}
	categories := make([]models.Category, 0, len(presets))
	for _, preset := range presets {
		category := preset.toModel()
		if err := db.Where("slug = ?", category.Slug).FirstOrCreate(&category).Error; err != nil {
			return fmt.Errorf("seeding category %q: %w", category.Name, err)
		}
		categories = append(categories, category)
	}

	if err := ensureAdmin(db); err != nil {
		return err
	}

	factory := NewFactory(db)

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := factory.CreateUser()
		if err != nil {
			return fmt.Errorf("seeding user: %w", err)
		}
		users = append(users, user)
	}
	if len(users) < 2 {
		return fmt.Errorf("need at least 2 users to seed listings and messages")
	}

	listings := make([]*models.Listing, 0, opts.NumListings)
	for i := 0; i < opts.NumListings; i++ {
		owner := users[factory.rnd.Intn(len(users))]
		category := &categories[factory.rnd.Intn(len(categories))]
		listing, err := factory.CreateListing(owner, category)
		if err != nil {
			return fmt.Errorf("seeding listing: %w", err)
		}
		listings = append(listings, listing)
	}

	for i := 0; i < opts.NumMessages; i++ {
		sender := users[factory.rnd.Intn(len(users))]
		receiver := users[factory.rnd.Intn(len(users))]
		if sender.ID == receiver.ID {
			continue
		}
		if _, err := factory.CreateMessage(sender, receiver); err != nil {
			return fmt.Errorf("seeding message: %w", err)
		}
	}

	for i := 0; i < opts.NumReports && len(listings) > 0; i++ {
		reporter := users[factory.rnd.Intn(len(users))]
		listing := listings[factory.rnd.Intn(len(listings))]
		if listing.UserID == reporter.ID {
			continue
		}
		if _, err := factory.CreateReport(reporter, listing); err != nil {
			return fmt.Errorf("seeding report: %w", err)
		}
	}

	log.Println("Seeding complete")
	return nil
}

// ensureAdmin creates the default admin account when it does not exist.
func ensureAdmin(db *gorm.DB) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte("admin-password-123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := models.User{
		Username: "admin",
		Email:    "admin@postmarket.local",
		Password: string(hashed),
		Role:     models.RoleAdmin,
		Status:   models.StatusActive,
	}
	return db.Where("email = ?", admin.Email).FirstOrCreate(&admin).Error
}

func clearData(db *gorm.DB) error {
	return db.Exec("TRUNCATE TABLE message_replies, messages, reports, listings, categories, users CASCADE").Error
}
