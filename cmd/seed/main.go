package main

import (
	"log"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"flashfix/internal/config"
	"flashfix/internal/database"
	"flashfix/internal/domain"
)

// Seed migrates the schema and loads demo accounts and a starter catalog.
// Safe to re-run: existing rows are left alone.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Service{},
		&domain.Order{},
		&domain.OrderLog{},
		&domain.Payment{},
		&domain.Review{},
	); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	seedUsers(db)
	seedServices(db)

	log.Println("seed complete")
}

func seedUsers(db *gorm.DB) {
	users := []struct {
		name  string
		phone string
		role  domain.UserRole
	}{
		{"Admin", "13800000001", domain.RoleAdmin},
		{"Finance", "13800000002", domain.RoleFinance},
		{"Service Desk", "13800000003", domain.RoleService},
		{"Tech Wang", "13800000011", domain.RoleTechnician},
		{"Tech Li", "13800000012", domain.RoleTechnician},
		{"Customer Zhang", "13800000021", domain.RoleUser},
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("bcrypt: %v", err)
	}

	for _, u := range users {
		var cnt int64
		db.Model(&domain.User{}).Where("phone = ?", u.phone).Count(&cnt)
		if cnt > 0 {
			continue
		}

		if err := db.Create(&domain.User{
			Name:         u.name,
			Phone:        u.phone,
			PasswordHash: string(hash),
			Role:         u.role,
		}).Error; err != nil {
			log.Fatalf("seed user %s: %v", u.phone, err)
		}
		log.Printf("created %s (%s)", u.name, u.role)
	}
}

func seedServices(db *gorm.DB) {
	minutes := func(m int) *int { return &m }

	services := []domain.Service{
		{Name: "Screen Replacement", Description: "Replace cracked or dead displays", Category: "phone", BasePrice: 299, EstimatedDuration: minutes(60), IsActive: true},
		{Name: "Battery Replacement", Description: "Restore battery life with an OEM cell", Category: "phone", BasePrice: 149, EstimatedDuration: minutes(40), IsActive: true},
		{Name: "Water Damage Repair", Description: "Ultrasonic cleaning and board-level diagnosis", Category: "phone", BasePrice: 399, EstimatedDuration: minutes(120), IsActive: true},
		{Name: "Laptop Keyboard Replacement", Description: "Replace worn or liquid-damaged keyboards", Category: "laptop", BasePrice: 259, EstimatedDuration: minutes(90), IsActive: true},
		{Name: "SSD Upgrade", Description: "Install and clone to a larger SSD", Category: "laptop", BasePrice: 199, EstimatedDuration: minutes(60), IsActive: true},
		{Name: "Tablet Charging Port Repair", Description: "Replace damaged USB-C or Lightning ports", Category: "tablet", BasePrice: 189, EstimatedDuration: minutes(50), IsActive: true},
	}

	for _, s := range services {
		var cnt int64
		db.Model(&domain.Service{}).Where("name = ?", s.Name).Count(&cnt)
		if cnt > 0 {
			continue
		}

		if err := db.Create(&s).Error; err != nil {
			log.Fatalf("seed service %s: %v", s.Name, err)
		}
		log.Printf("created service %s", s.Name)
	}
}
