package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"StockBook/api"
	"StockBook/api/auth"
	"StockBook/internal/appmanager"
)

func dbParams() (user, pass, host, port, name string) {
	return os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_HOST"), os.Getenv("DB_PORT"), os.Getenv("DB_NAME")
}

// openAuthDB opens the database/sql connection the auth service checks
// credentials against.
func openAuthDB() (*sql.DB, error) {
	user, pass, host, port, name := dbParams()
	return sql.Open("postgres", fmt.Sprintf(
		"user=%s password=%s host=%s port=%s dbname=%s sslmode=disable",
		user, pass, host, port, name,
	))
}

// openPool builds the pgx pool shared by every domain service handler.
func openPool() (*pgxpool.Pool, error) {
	user, pass, host, port, name := dbParams()
	return pgxpool.New(context.Background(), fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		user, pass, host, port, name,
	))
}

func main() {
	// DB settings come from the environment; a .env file covers local runs.
	_ = godotenv.Load("../.env")

	db, err := openAuthDB()
	if err != nil {
		log.Fatal("auth DB connection failed:", err)
	}
	appmanager.SetDB(db)

	pool, err := openPool()
	if err != nil {
		log.Fatal("pgx pool creation failed:", err)
	}
	appmanager.SetPgxPool(pool)

	manager := appmanager.NewAppManager()

	servicesCfg, err := appmanager.LoadServiceSequence("../services.yaml")
	if err != nil {
		log.Fatal("service sequence load failed:", err)
	}
	manager.AutoRegisterServices(servicesCfg)

	if err := manager.StartAll(); err != nil {
		log.Fatal("service startup failed:", err)
	}

	// The gateway fronts auth for every service; it cannot run without one.
	authSvc, ok := manager.GetServiceByName("auth").(*auth.AuthService)
	if !ok {
		log.Fatal("auth service missing from the service sequence")
	}
	api.SetAuthService(authSvc)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	if err := manager.StopAll(); err != nil {
		log.Fatal("service shutdown failed:", err)
	}
	pool.Close()
}
