package initializers

import (
	"log"

	"github.com/Kariqs/myfood-api/models"
	"gorm.io/gorm"
)

func SyncDatabase() {
	if err := Migrate(DB); err != nil {
		log.Fatal("Database sync failed: ", err)
	}
	log.Println("Database synced successfully.")
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.MenuItem{},
		&models.PaymentIntent{},
		&models.Order{},
		&models.OrderItem{},
	)
}
