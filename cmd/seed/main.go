package main

import (
	"context"
	"database/sql"
	"os"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"

	"hotel_business/internal/adapters/observability"
	"hotel_business/internal/domain"
	"hotel_business/internal/shared"
	mysqlrepo "hotel_business/internal/storage/mysql"
)

// Seeds the catalog (categories, items, equipment, rooms, services) and,
// when SEED_ADMIN_PASSWORD is set, a bootstrap admin account.
func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)
	log.Info().Int("workers", cfg.Workers).Msg("seed starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)

	// Items and categories first: rooms and equipment reference them, so
	// this part stays sequential.
	itemIDs := map[string]int64{}
	for _, sc := range shared.SeedCategories {
		for _, name := range sc.Items {
			if _, ok := itemIDs[name]; ok {
				continue
			}
			item := domain.Item{Name: name}
			if err := repo.CreateItem(ctx, &item); err != nil {
				log.Fatal().Str("item", name).Err(err).Msg("seed item failed")
			}
			itemIDs[name] = item.ID
		}
	}

	categoryIDs := make([]int64, len(shared.SeedCategories))
	for i, sc := range shared.SeedCategories {
		cat := domain.Category{Name: sc.Name, Price: sc.Price, Description: sc.Description}
		if err := repo.CreateCategory(ctx, &cat); err != nil {
			log.Fatal().Str("category", sc.Name).Err(err).Msg("seed category failed")
		}
		categoryIDs[i] = cat.ID
		for _, name := range sc.Items {
			eq := domain.Equipment{CategoryID: cat.ID, ItemID: itemIDs[name]}
			if err := repo.CreateEquipment(ctx, eq); err != nil {
				log.Fatal().Str("category", sc.Name).Str("item", name).Err(err).Msg("seed equipment failed")
			}
		}
	}

	// Rooms and services are independent rows; fan them out.
	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup

	for _, sr := range shared.SeedRooms {
		sr := sr
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)
			room := domain.Room{
				Floor:      sr.Floor,
				RoomCount:  sr.RoomCount,
				BedCount:   sr.BedCount,
				CategoryID: categoryIDs[sr.Category],
				Available:  sr.Available,
			}
			if err := repo.CreateRoom(ctx, &room); err != nil {
				log.Warn().Int("floor", sr.Floor).Err(err).Msg("seed room failed")
				return
			}
			log.Info().Int64("id", room.ID).Msg("room seeded")
		}()
	}

	for _, ss := range shared.SeedServices {
		ss := ss
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)
			svc := domain.Service{Name: ss.Name, Price: ss.Price, Description: ss.Description, Active: ss.Active}
			if err := repo.CreateService(ctx, &svc); err != nil {
				log.Warn().Str("service", ss.Name).Err(err).Msg("seed service failed")
				return
			}
			log.Info().Int64("id", svc.ID).Str("name", svc.Name).Msg("service seeded")
		}()
	}

	wg.Wait()

	if pw := os.Getenv("SEED_ADMIN_PASSWORD"); pw != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
		if err != nil {
			log.Fatal().Err(err).Msg("hash admin password failed")
		}
		admin := domain.Account{
			Username:     "admin",
			Email:        "admin@localhost",
			PasswordHash: string(hash),
			Role:         domain.RoleAdmin,
		}
		if err := repo.CreateAccount(ctx, &admin); err != nil {
			log.Warn().Err(err).Msg("seed admin failed (already present?)")
		} else {
			log.Info().Int64("id", admin.ID).Msg("admin account seeded")
		}
	}

	log.Info().Msg("seed completed")
}
