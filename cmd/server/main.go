package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/matchday/ticket-office/internal/config"
	"github.com/matchday/ticket-office/internal/database"
	"github.com/matchday/ticket-office/internal/handler"
	appmw "github.com/matchday/ticket-office/internal/middleware"
	"github.com/matchday/ticket-office/internal/queue"
	"github.com/matchday/ticket-office/internal/repository"
	"github.com/matchday/ticket-office/internal/router"
	"github.com/matchday/ticket-office/internal/simulation"
	"github.com/matchday/ticket-office/internal/sportsdb"
	"github.com/matchday/ticket-office/internal/ticketing"
)

func main() {
	// .env is optional; real deployments set the variables directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(database.Config{
		User:            cfg.DBUser,
		Pass:            cfg.DBPass,
		Host:            cfg.DBHost,
		Port:            cfg.DBPort,
		Name:            cfg.DBName,
		MaxOpenConns:    cfg.DBMaxConns,
		ConnMaxLifetime: cfg.DBConnTTL,
	})
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Repositories and the store adapter the engines run against.
	users := repository.NewUserRepo(db)
	matches := repository.NewMatchRepo(db)
	tickets := repository.NewTicketRepo(db)
	stands := repository.NewStandRepo(db)
	simulations := repository.NewSimulationRepo(db)
	store := repository.NewStore(db)

	issuer := ticketing.NewIssuer(store, nil, nil)
	capacity := ticketing.NewCapacityIndex(store)
	rosters := sportsdb.NewClientWithConfig(sportsdb.Config{
		BaseURL: cfg.RosterBaseURL,
		Timeout: cfg.RosterTimeout,
	})
	orchestrator := simulation.NewOrchestrator(store, rosters, nil, cfg.RosterTimeout)

	authHandler := handler.NewAuthHandler(cfg, users)
	ticketHandler := handler.NewTicketHandler(matches, tickets, stands, issuer, capacity)
	simHandler := handler.NewSimulationHandler(matches, simulations, orchestrator)

	// Redis is optional; without it the cache and rate limiter pass through.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, cache and rate limiting disabled")
	}
	cache := appmw.NewRedisCache(config.LoadCacheConfig(), rdb)

	e := echo.New()
	e.Use(appmw.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterPublic(e, ticketHandler, simHandler, cache)
	router.RegisterCustomer(e, ticketHandler, cfg.JWTSecret)
	router.RegisterAdmin(e, ticketHandler, simHandler, cfg.JWTSecret)

	// Mirror broker events into logs/ in the background.
	go func() {
		if err := queue.StartConsumers(); err != nil {
			log.Printf("queue consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
