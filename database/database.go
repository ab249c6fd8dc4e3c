package database

import (
	"log"

	"rental-app/config"
	"rental-app/internal/domain/amenities"
	"rental-app/internal/domain/comments"
	"rental-app/internal/domain/destinations"
	"rental-app/internal/domain/favorites"
	"rental-app/internal/domain/listings"
	"rental-app/internal/domain/listingtypes"
	"rental-app/internal/domain/users"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var DB *gorm.DB

func InitDB() {
	dsn := config.DB_URL
	if dsn == "" {
		log.Fatal("DB_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	DB = db

	if err := Migrate(DB); err != nil {
		log.Fatal("AutoMigrate error:", err)
	}

	if err := SeedRoles(DB); err != nil {
		log.Fatal("Role seed error:", err)
	}

	log.Println("Connected and migrated successfully")
}

// Migrate sets up the schema. Shared with tests, which run it against sqlite.
func Migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&listings.Listing{}, "Amenities", &listings.ListingAmenity{}); err != nil {
		return err
	}

	return db.AutoMigrate(
		&users.Role{},
		&users.User{},

		&listingtypes.ListingType{},
		&amenities.Amenity{},
		&destinations.Destination{},

		&listings.Listing{},
		&listings.ListingImage{},
		&listings.ListingAmenity{},

		&comments.Comment{},
		&comments.CommentLike{},
		&favorites.Favorite{},
	)
}

func SeedRoles(db *gorm.DB) error {
	seed := []users.Role{
		{Code: users.RoleUser, Name: "User"},
		{Code: users.RoleLandlord, Name: "Landlord"},
		{Code: users.RoleAdmin, Name: "Administrator"},
	}
	for _, role := range seed {
		var r users.Role
		if err := db.Where(users.Role{Code: role.Code}).
			Attrs(users.Role{Name: role.Name}).
			FirstOrCreate(&r).Error; err != nil {
			return err
		}
	}
	return nil
}

// ForUpdate adds a SELECT ... FOR UPDATE clause on dialects that support it.
// sqlite (used by the test suites) has no row locks; its writes are serialized
// by the database itself.
func ForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
