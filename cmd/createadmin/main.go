package main // createadmin provisions an admin account from the command line

import (
	"context"
	"errors"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/leemaz/marketplace-api/internal/config"
	"github.com/leemaz/marketplace-api/internal/database"
	"github.com/leemaz/marketplace-api/internal/model"
	"github.com/leemaz/marketplace-api/internal/repository"
	"github.com/leemaz/marketplace-api/internal/utils"
)

// Admin accounts cannot be registered through the API, so operators run
// this once per admin:
//
//	createadmin -email admin@example.com -password secret123 -name "Site Admin"
//
// The account is created verified and active with a zero balance.
func main() {
	email := flag.String("email", "", "admin email address")
	password := flag.String("password", "", "admin password (min 8 characters)")
	name := flag.String("name", "Admin", "display name")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("both -email and -password are required")
	}
	if err := utils.ValidatePassword(*password); err != nil {
		log.Fatalf("invalid password: %v", err)
	}

	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close() }()

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	hash, err := utils.HashPassword(*password, cfg.BcryptCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	users := repository.NewUserRepo(db)
	admin := &model.User{
		Email:        *email,
		PasswordHash: hash,
		FullName:     *name,
		Role:         model.RoleAdmin,
		Language:     "en",
		IsVerified:   true,
	}
	if err := users.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			log.Fatalf("an account with email %s already exists", admin.Email)
		}
		log.Fatalf("create admin: %v", err)
	}

	log.Printf("admin account created: id=%d email=%s", admin.ID, admin.Email)
}
