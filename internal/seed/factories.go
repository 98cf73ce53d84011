// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"postmarket/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db  *gorm.DB
	rnd *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:  db,
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// pastTime spreads created_at over the last maxDays days.
func (f *Factory) pastTime(maxDays int) time.Time {
	daysBack := f.rnd.Intn(maxDays)
	hoursBack := f.rnd.Intn(24)
	return time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)
}

// CreateUser constructs and persists a sample user. All seeded accounts
// share the password "password123".
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &models.User{
		Username:  gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:     gofakeit.Email(),
		Phone:     gofakeit.Phone(),
		Password:  string(hashed),
		Role:      models.RoleUser,
		Status:    models.StatusActive,
		CreatedAt: f.pastTime(180),
	}
	for _, override := range overrides {
		override(user)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateListing constructs and persists a sample listing for a user.
func (f *Factory) CreateListing(user *models.User, category *models.Category, overrides ...func(*models.Listing)) (*models.Listing, error) {
	domain := fmt.Sprintf("%s.%s", gofakeit.Word(), gofakeit.DomainName())
	now := f.pastTime(90)
	listing := &models.Listing{
		UserID:            user.ID,
		CategoryID:        category.ID,
		Domain:            domain,
		Title:             gofakeit.Sentence(4),
		Description:       gofakeit.Paragraph(1, 3, 8, "\n"),
		PriceCents:        int64(gofakeit.Number(50, 1500)) * 100,
		Status:            models.ListingActive,
		DomainAuthority:   gofakeit.Number(5, 90),
		MonthlyTraffic:    int64(gofakeit.Number(1000, 2000000)),
		Backlinks:         int64(gofakeit.Number(10, 50000)),
		MetricsUpdatedAt:  &now,
		VerificationToken: uuid.NewString(),
		Verified:          f.rnd.Intn(3) > 0,
		CreatedAt:         now,
	}
	for _, override := range overrides {
		override(listing)
	}
	if err := f.db.Create(listing).Error; err != nil {
		return nil, err
	}
	return listing, nil
}

// CreateMessage constructs and persists a sample message between two users.
func (f *Factory) CreateMessage(sender, receiver *models.User, overrides ...func(*models.Message)) (*models.Message, error) {
	statuses := []models.MessageStatus{models.MessageUnread, models.MessageRead, models.MessageReplied}
	message := &models.Message{
		SenderID:   sender.ID,
		ReceiverID: receiver.ID,
		Subject:    gofakeit.Sentence(3),
		Content:    gofakeit.Paragraph(1, 2, 6, "\n"),
		Status:     statuses[f.rnd.Intn(len(statuses))],
		CreatedAt:  f.pastTime(30),
	}
	for _, override := range overrides {
		override(message)
	}
	if err := f.db.Create(message).Error; err != nil {
		return nil, err
	}
	if message.Status == models.MessageReplied {
		reply := &models.MessageReply{
			MessageID: message.ID,
			AuthorID:  receiver.ID,
			Content:   gofakeit.Sentence(8),
		}
		if err := f.db.Create(reply).Error; err != nil {
			return nil, err
		}
	}
	return message, nil
}

// CreateReport constructs and persists a sample abuse report.
func (f *Factory) CreateReport(reporter *models.User, listing *models.Listing) (*models.Report, error) {
	reasons := []string{
		"Listing metrics look inflated",
		"Site is unrelated to its category",
		"Suspected link farm",
		"Price bait and switch in messages",
	}
	report := &models.Report{
		ReporterID: reporter.ID,
		ListingID:  &listing.ID,
		Reason:     reasons[f.rnd.Intn(len(reasons))],
		Status:     models.ReportOpen,
		CreatedAt:  f.pastTime(14),
	}
	if err := f.db.Create(report).Error; err != nil {
		return nil, err
	}
	return report, nil
}
