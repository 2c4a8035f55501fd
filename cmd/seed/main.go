package main // seeds the locker inventory

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/locker-reservation/internal/config"
	"github.com/iliyamo/locker-reservation/internal/database"
	"github.com/iliyamo/locker-reservation/internal/model"
	"github.com/iliyamo/locker-reservation/internal/repository"
)

// fixtures is the initial locker inventory: four lockers per floor,
// numbered by building and floor.  Seeding is idempotent; lockers that
// already exist are left untouched.
var fixtures = []model.Locker{
	{LockerNumber: "101", Location: "Building A - Floor 1", Status: model.LockerAvailable},
	{LockerNumber: "102", Location: "Building A - Floor 1", Status: model.LockerAvailable},
	{LockerNumber: "103", Location: "Building A - Floor 1", Status: model.LockerAvailable},
	{LockerNumber: "104", Location: "Building A - Floor 1", Status: model.LockerAvailable},
	{LockerNumber: "201", Location: "Building A - Floor 2", Status: model.LockerAvailable},
	{LockerNumber: "202", Location: "Building A - Floor 2", Status: model.LockerAvailable},
	{LockerNumber: "203", Location: "Building A - Floor 2", Status: model.LockerAvailable},
	{LockerNumber: "204", Location: "Building A - Floor 2", Status: model.LockerAvailable},
	{LockerNumber: "301", Location: "Building B - Floor 1", Status: model.LockerAvailable},
	{LockerNumber: "302", Location: "Building B - Floor 1", Status: model.LockerAvailable},
	{LockerNumber: "303", Location: "Building B - Floor 1", Status: model.LockerAvailable},
	{LockerNumber: "304", Location: "Building B - Floor 1", Status: model.LockerAvailable},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("schema: %v", err)
	}

	lockers := repository.NewLockerRepo(db)
	created, skipped := 0, 0
	for _, fixture := range fixtures {
		l := fixture
		switch err := lockers.Create(ctx, &l); {
		case err == nil:
			created++
			log.Printf("created locker %s at %s", l.LockerNumber, l.Location)
		case errors.Is(err, repository.ErrLockerExists):
			skipped++
			log.Printf("locker %s already exists", l.LockerNumber)
		default:
			log.Fatalf("create locker %s: %v", l.LockerNumber, err)
		}
	}
	log.Printf("seed complete: %d created, %d already present", created, skipped)
}
