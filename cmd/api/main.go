// Gymbro API
//
// REST API for AI-generated weekly workout routines.
//
//	@title			Gymbro API
//	@version		1.0
//	@description	Generate personalized weekly workout routines from a fitness profile, track exercise completion and adapt future weeks to adherence.
//
//	@BasePath	/v1
//
//	@tag.name			users
//	@tag.description	User management endpoints
//
//	@tag.name			profile
//	@tag.description	Fitness profile endpoints
//
//	@tag.name			routines
//	@tag.description	Routine generation and history endpoints
//
//	@tag.name			diet
//	@tag.description	Meal plan generation endpoints
//
//	@tag.name			completions
//	@tag.description	Exercise completion and adherence endpoints
//
//	@tag.name			notes
//	@tag.description	Training notes endpoints
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gymbro/gymbro-api/internal/api"
	"github.com/gymbro/gymbro-api/internal/api/handler"
	"github.com/gymbro/gymbro-api/internal/cache"
	"github.com/gymbro/gymbro-api/internal/config"
	"github.com/gymbro/gymbro-api/internal/domain"
	"github.com/gymbro/gymbro-api/internal/langfuse"
	"github.com/gymbro/gymbro-api/internal/llm"
	"github.com/gymbro/gymbro-api/internal/ratelimit"
	"github.com/gymbro/gymbro-api/internal/repository"
	"github.com/gymbro/gymbro-api/internal/seed"
	"github.com/gymbro/gymbro-api/internal/service"
	"github.com/gymbro/gymbro-api/internal/telemetry"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Connect to database
	db, err := config.NewDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database schema
	if err := db.AutoMigrate(&domain.User{}, &domain.Profile{}, &domain.Routine{}, &domain.ExerciseCompletion{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed")

	if cfg.Seed {
		log.Println("Seeding database with sample data (SEED=true)...")
		if err := seed.Run(db); err != nil {
			log.Fatalf("Failed to seed database: %v", err)
		}
	}

	// Redis is optional; a nil client degrades rate limiting and caching
	// to no-ops.
	rdb := config.NewRedis(cfg)
	limiter := ratelimit.New(rdb)
	responseCache := cache.New(rdb)

	// Tracing exports to Langfuse when configured, noop otherwise.
	shutdownTracer, err := telemetry.InitTracer(context.Background(), cfg, "gymbro-api")
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(ctx); err != nil {
			log.Printf("Tracer shutdown failed: %v", err)
		}
	}()

	tracer := langfuse.NewClient(langfuse.Config{
		BaseURL:     cfg.LangfuseBaseURL,
		PublicKey:   cfg.LangfusePublicKey,
		SecretKey:   cfg.LangfuseSecretKey,
		Environment: cfg.LangfuseEnv,
	})

	// A Langfuse-managed prompt overrides the built-in trainer prompt when
	// configured, so prompt iteration doesn't require a deploy.
	var systemPrompt string
	if cfg.LangfusePromptName != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		prompt, err := langfuse.LoadPrompt(ctx, langfuse.PromptLoaderConfig{
			BaseURL:    cfg.LangfuseBaseURL,
			PublicKey:  cfg.LangfusePublicKey,
			SecretKey:  cfg.LangfuseSecretKey,
			PromptName: cfg.LangfusePromptName,
			SavePath:   "prompts/" + cfg.LangfusePromptName + ".txt",
		})
		cancel()
		if err != nil {
			log.Printf("Warning: failed to load managed prompt %q, using built-in: %v", cfg.LangfusePromptName, err)
		} else {
			systemPrompt = prompt
		}
	}

	// AI provider registry; caller-supplied keys override the server keys.
	generator := llm.NewRegistry(llm.Options{
		OpenAIKey:           cfg.OpenAIAPIKey,
		OpenAIModel:         cfg.OpenAIModel,
		OpenAIFallbackModel: cfg.OpenAIFallbackModel,
		AnthropicKey:        cfg.AnthropicAPIKey,
		AnthropicModel:      cfg.AnthropicModel,
		Timeout:             time.Duration(cfg.ProviderTimeoutSeconds) * time.Second,
		MaxAttempts:         cfg.ProviderRetryAttempts,
	})
	if cfg.OpenAIAPIKey == "" && cfg.AnthropicAPIKey == "" {
		log.Println("Warning: no provider API keys configured, callers must supply their own")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	routineRepo := repository.NewRoutineRepository(db)
	completionRepo := repository.NewCompletionRepository(db)

	// Initialize services
	userService := service.NewUserService(userRepo)
	profileService := service.NewProfileService(userRepo, profileRepo)
	historyService := service.NewHistoryService(routineRepo, completionRepo)
	routineService := service.NewRoutineService(
		userRepo, profileRepo, routineRepo, historyService,
		generator, limiter, responseCache, tracer,
		service.RoutineOptions{
			GenerateScopes: []ratelimit.Scope{
				{Name: "minute", Limit: cfg.RoutinePerMinute, Window: time.Minute},
				{Name: "hour", Limit: cfg.RoutinePerHour, Window: time.Hour},
			},
			CacheTTL:     time.Duration(cfg.RoutineCacheTTLSeconds) * time.Second,
			SystemPrompt: systemPrompt,
		},
	)
	dietService := service.NewDietService(
		userRepo, profileRepo, routineRepo,
		generator, limiter, responseCache, tracer,
		service.DietOptions{
			GenerateScopes: []ratelimit.Scope{
				{Name: "minute", Limit: cfg.DietPerMinute, Window: time.Minute},
				{Name: "hour", Limit: cfg.DietPerHour, Window: time.Hour},
			},
			CacheTTL: time.Duration(cfg.DietCacheTTLSeconds) * time.Second,
		},
	)
	completionService := service.NewCompletionService(
		routineRepo, completionRepo, historyService, responseCache,
		time.Duration(cfg.AdherenceCacheTTLSeconds)*time.Second,
	)
	notesService := service.NewNotesService(userRepo, generator, limiter, []ratelimit.Scope{
		{Name: "minute", Limit: cfg.NotesPerMinute, Window: time.Minute},
		{Name: "hour", Limit: cfg.NotesPerHour, Window: time.Hour},
	})

	// Initialize handlers
	userHandler := handler.NewUserHandler(userService)
	profileHandler := handler.NewProfileHandler(profileService)
	routineHandler := handler.NewRoutineHandler(routineService)
	dietHandler := handler.NewDietHandler(dietService)
	completionHandler := handler.NewCompletionHandler(completionService)
	notesHandler := handler.NewNotesHandler(notesService)

	// Setup router
	router := api.NewRouter(userHandler, profileHandler, routineHandler, dietHandler, completionHandler, notesHandler)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router.Setup(),
	}

	go func() {
		log.Printf("Starting server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Shut down on SIGINT/SIGTERM, letting in-flight generations finish.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
