package main

import (
	"log"
	"os"

	"riftscan/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var db *gorm.DB

func initDB() {
	var err error
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN is not set. This project requires a Postgres DSN in DB_DSN.")
	}
	db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect postgres database:", err)
	}
	// Permission errors during migration are logged and ignored.
	shouldMigrate := envBool("DB_AUTO_MIGRATE", true)
	if shouldMigrate {
		// roles first so the users FK can be applied
		if err := db.AutoMigrate(&models.Role{}); err != nil {
			log.Printf("migration warning (roles): %v", err)
		}
	}
	seedRoles()

	if shouldMigrate {
		for name, m := range map[string]any{
			"users":          &models.User{},
			"profiles":       &models.Profile{},
			"scans":          &models.Scan{},
			"refresh_tokens": &models.RefreshToken{},
		} {
			if err := db.AutoMigrate(m); err != nil {
				log.Printf("migration warning (%s): %v", name, err)
			}
		}
		if err := ensureScanHistoryIndex(); err != nil {
			log.Printf("warning: ensuring scans history index failed: %v", err)
		}
	}
	seedDB()
}

// ensureScanHistoryIndex backs the per-user newest-first history queries.
func ensureScanHistoryIndex() error {
	return db.Exec(`CREATE INDEX IF NOT EXISTS idx_scans_user_created ON scans(user_id, created_at DESC)`).Error
}

func seedRoles() {
	for _, r := range models.DefaultRoles {
		var cnt int64
		db.Model(&models.Role{}).Where("name = ?", r.Name).Count(&cnt)
		if cnt == 0 {
			db.Create(&r)
		}
	}
}

func seedDB() {
	seedRoles()

	var count int64
	db.Model(&models.User{}).Where("username = ?", "admin").Count(&count)
	if count == 0 {
		var role models.Role
		if err := db.Where("name = ?", models.RoleAdministrator).First(&role).Error; err != nil {
			log.Printf("failed to find administrator role: %v", err)
		}
		rid := role.ID
		admin := models.User{Username: "admin", RoleID: &rid}
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
		admin.HashedPassword = hashedPassword
		db.Create(&admin)
		log.Println("Seeded admin user: username=admin, password=admin123")
	}
	var admin models.User
	if err := db.Where("username = ?", "admin").First(&admin).Error; err != nil {
		log.Printf("failed to find admin user after seeding: %v", err)
		return
	}
	var pcount int64
	db.Model(&models.Profile{}).Where("user_id = ?", admin.ID).Count(&pcount)
	if pcount == 0 {
		profile := models.Profile{UserID: admin.ID, Name: "Administrator", Email: "admin@example.com"}
		if err := db.Create(&profile).Error; err != nil {
			log.Printf("failed to create profile for admin: %v", err)
		} else {
			log.Println("Seeded admin profile for user id:", admin.ID)
		}
	}
	ensureUploadBase()
}

func ensureUploadBase() {
	base := uploadBaseDir()
	if err := os.MkdirAll(base, 0755); err != nil {
		log.Printf("failed to create upload base dir %s: %v", base, err)
	}
}
