// File: fieldbot/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fieldbot/config"
	"fieldbot/cron"
	"fieldbot/database"
	customerRepoPkg "fieldbot/database/repository/customer"
	jobRepoPkg "fieldbot/database/repository/job"
	scheduleRepoPkg "fieldbot/database/repository/schedule"
	technicianRepoPkg "fieldbot/database/repository/technician"
	"fieldbot/handlers"
	"fieldbot/middleware"
	"fieldbot/routes"
	"fieldbot/services/interaction"
	"fieldbot/services/notification"
	"fieldbot/services/scheduling"
	"fieldbot/services/workflow"
	"fieldbot/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()

	location, err := time.LoadLocation(config.AppConfig.Timezone)
	if err != nil {
		logger.Sugar().Fatalf("main: invalid timezone %q: %v", config.AppConfig.Timezone, err)
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	technicianRepo := technicianRepoPkg.NewMongoTechnicianRepo()
	scheduleRepo := scheduleRepoPkg.NewMongoScheduleRepo()
	jobRepo := jobRepoPkg.NewMongoJobRepo()
	customerRepo := customerRepoPkg.NewMongoCustomerRepo()

	if err := jobRepo.EnsureIndexes(context.Background()); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure job indexes: %v", err)
	}

	// services.
	schedulingService := &scheduling.DefaultSchedulingService{
		Technicians:        technicianRepo,
		Schedules:          scheduleRepo,
		Jobs:               jobRepo,
		SlotDuration:       config.AppConfig.SlotDurationMinutes,
		DefaultJobDuration: config.AppConfig.DefaultJobDuration,
		Location:           location,
	}

	// Pending-interaction state: Redis behind multiple instances, process
	// memory otherwise.
	var interactionStore interaction.Store
	var redisClients []*redis.Client
	if config.AppConfig.UseRedisInteractions {
		client := utils.GetInteractionCacheClient()
		redisClients = append(redisClients, client)
		interactionStore = interaction.NewRedisStore(client, utils.PendingInteractionTTL)
	} else {
		memStore := interaction.NewMemoryStore(utils.PendingInteractionTTL, logger)
		memStore.StartSweeper(utils.InteractionSweepInterval)
		defer memStore.Stop()
		interactionStore = memStore
	}

	messageSender := notification.NewLogSender(logger)
	reminderService := cron.NewReminderService(location)
	defer reminderService.Close()
	cron.InitReminderWorker(messageSender)

	buttonRouter := interaction.NewButtonRouter(interactionStore, jobRepo, logger)
	buttonRouter.Reminders = reminderService

	// Workflows. Registration order is the priority order: booking first so
	// booking-capable messages are not swallowed by the catch-all.
	workflowRouter := workflow.NewRouter(logger)
	workflowRouter.Register(&workflow.BookingWorkflow{
		Scheduling:   schedulingService,
		Customers:    customerRepo,
		Jobs:         jobRepo,
		Interactions: interactionStore,
		Reminders:    reminderService,
		Services:     []string{"plomería", "electricidad", "climatización"},
		Logger:       logger,
	})
	workflowRouter.Register(&workflow.FAQWorkflow{
		Answers: map[string]string{
			"horario":   "Atendemos de lunes a sábado. Escríbenos el día que te interesa y te decimos los horarios disponibles.",
			"precios":   "El costo depende del servicio. La visita de diagnóstico se cotiza al agendar.",
			"cobertura": "Cubrimos toda la zona metropolitana. Compártenos tu dirección para confirmar.",
		},
	})
	workflowRouter.Register(&workflow.GeneralInquiryWorkflow{})

	engine := workflow.NewEngine(logger)

	// handlers.
	messageHandler := handlers.NewMessageHandler(workflowRouter, engine)
	buttonHandler := handlers.NewButtonHandler(buttonRouter)
	schedulingHandler := handlers.NewSchedulingHandler(schedulingService)

	routes.RegisterRoutes(router, messageHandler, buttonHandler, schedulingHandler)
	utils.StartHealthMonitor(redisClients, database.MongoClient)

	srv := &http.Server{
		Addr:    ":" + config.AppConfig.AppPort,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", zap.String("port", config.AppConfig.AppPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
}
