package main

import (
	"database/sql"
	"errors"
	"os"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/fixitnow/maintenance-backend/internal/config"
	"github.com/fixitnow/maintenance-backend/internal/database"
	"github.com/fixitnow/maintenance-backend/internal/models"
)

type seedAccount struct {
	Name       string
	Email      string
	Password   string
	Role       models.Role
	Department string
	Phone      string
	Categories []string
}

// Default accounts for a fresh installation. Passwords are placeholders
// and must be rotated before the system faces real users.
var seedAccounts = []seedAccount{
	{
		Name:     "System Administrator",
		Email:    "admin@fixitnow.local",
		Password: "ChangeMe!Admin1",
		Role:     models.RoleAdmin,
	},
	{
		Name:       "Ravi Fernando",
		Email:      "ravi.fernando@fixitnow.local",
		Password:   "ChangeMe!Staff1",
		Role:       models.RoleMaintenance,
		Department: "Electrical",
		Phone:      "+94771234001",
		Categories: []string{"electrical", "wifi"},
	},
	{
		Name:       "Nimal Perera",
		Email:      "nimal.perera@fixitnow.local",
		Password:   "ChangeMe!Staff2",
		Role:       models.RoleMaintenance,
		Department: "Plumbing",
		Phone:      "+94771234002",
		Categories: []string{"plumbing", "heating"},
	},
	{
		Name:       "Sunil Silva",
		Email:      "sunil.silva@fixitnow.local",
		Password:   "ChangeMe!Staff3",
		Role:       models.RoleMaintenance,
		Department: "Facilities",
		Phone:      "+94771234003",
		Categories: []string{"furniture", "cleaning", "other"},
	},
}

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	userRepo := database.NewUserRepository(db)
	staffRepo := database.NewStaffRepository(db)

	created := 0
	for _, account := range seedAccounts {
		_, err := userRepo.GetByEmail(account.Email)
		if err == nil {
			logger.WithField("email", account.Email).Info("Account already exists, skipping")
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			logger.Fatalf("Failed to check existing account %s: %v", account.Email, err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(account.Password), cfg.Security.BcryptCost)
		if err != nil {
			logger.Fatalf("Failed to hash password for %s: %v", account.Email, err)
		}

		user := &models.User{
			Name:         account.Name,
			Email:        account.Email,
			PasswordHash: string(hash),
			Role:         account.Role,
			Department:   models.NewNullString(account.Department),
			Phone:        models.NewNullString(account.Phone),
			Categories:   pq.StringArray(account.Categories),
			Active:       true,
		}

		if account.Role == models.RoleMaintenance {
			err = staffRepo.Create(user)
		} else {
			err = userRepo.Create(user)
		}
		if err != nil {
			logger.Fatalf("Failed to create account %s: %v", account.Email, err)
		}

		logger.WithFields(logrus.Fields{
			"email": account.Email,
			"role":  account.Role,
		}).Info("Seeded account")
		created++
	}

	// Verification pass: every seeded maintenance account must be
	// resolvable through the staff directory.
	for _, account := range seedAccounts {
		if account.Role != models.RoleMaintenance {
			continue
		}
		for _, category := range account.Categories {
			staff, err := staffRepo.FindActiveByCategory(models.Category(category))
			if err != nil {
				logger.Fatalf("Verification query failed for category %s: %v", category, err)
			}
			found := false
			for _, s := range staff {
				if s.Email == account.Email {
					found = true
					break
				}
			}
			if !found {
				logger.Fatalf("Seeded staff %s not resolvable for category %s", account.Email, category)
			}
		}
	}

	logger.WithField("created", created).Info("Seed complete")
}
