// Package main is the entry point for PancyCommunityBot.
// It initializes all systems and starts the Discord bot.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PancyStudios/PancyCommunityBot/internal/commands"
	"github.com/PancyStudios/PancyCommunityBot/internal/commands/utils"
	"github.com/PancyStudios/PancyCommunityBot/internal/events"
	"github.com/PancyStudios/PancyCommunityBot/pkg/boost"
	"github.com/PancyStudios/PancyCommunityBot/pkg/cache"
	"github.com/PancyStudios/PancyCommunityBot/pkg/config"
	"github.com/PancyStudios/PancyCommunityBot/pkg/database"
	"github.com/PancyStudios/PancyCommunityBot/pkg/discord"
	"github.com/PancyStudios/PancyCommunityBot/pkg/errors"
	"github.com/PancyStudios/PancyCommunityBot/pkg/giveaway"
	"github.com/PancyStudios/PancyCommunityBot/pkg/leveling"
	"github.com/PancyStudios/PancyCommunityBot/pkg/logger"
	"github.com/PancyStudios/PancyCommunityBot/pkg/mqtt"
	"github.com/PancyStudios/PancyCommunityBot/pkg/notify"
	"github.com/PancyStudios/PancyCommunityBot/pkg/web"
	"github.com/bwmarrin/discordgo"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.Init(cfg.ErrorWebhook, cfg.LogsWebhook)
	defer log.Close()
	log.SetDebug(!cfg.IsProd())

	logger.System("Iniciando PancyCommunityBot "+config.Version+"...", "Main")
	logger.Info(fmt.Sprintf("Directorio de trabajo: %s", getCurrentDir()), "Main")

	// Initialize error handler
	var discordClient *discord.ExtendedClient
	errors.Init(cfg.ErrorWebhook, func() {
		if discordClient != nil {
			_ = discordClient.Stop()
		}
	})

	// Initialize database. A failed first connection keeps retrying in the background.
	db, err := database.Init(cfg.MongoDBURL, cfg.DBName)
	if err != nil {
		logger.Error(fmt.Sprintf("Error connecting to database: %v", err), "Main")
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		if err := db.EnsureIndexes(ctx); err != nil {
			logger.Warn(fmt.Sprintf("Error creando índices: %v", err), "Main")
		}
		cancel()
	}
	database.InitGlobalDataManagers(db)

	levelRepo := database.NewLevelRepository(db)
	statsRepo := database.NewStatsRepository(db)
	configs := database.NewGuildConfigService()

	// Initialize MQTT
	mqttClientID := "pancycommunity"
	if !cfg.IsProd() {
		mqttClientID = "pancycommunity_canary"
	}
	mqttClient := mqtt.Init(
		cfg.MQTTHost,
		cfg.MQTTPort,
		cfg.MQTTUser,
		cfg.MQTTPassword,
		mqttClientID,
		cfg.Tuning.MQTTTopicPrefix,
	)

	hub := web.NewHub()
	notifier := notify.Multi{mqttClient, hub}

	// Domain services
	engine := leveling.NewEngine(levelRepo, nil)
	boards := leveling.NewLeaderboards(levelRepo)
	giveaways := giveaway.NewService(database.NewGiveawayRepository(db), configs, engine, notifier)

	var redisClient *cache.Client
	var previews giveaway.PreviewStore = giveaway.NewMemoryPreviewStore(cfg.Tuning.Giveaway.PreviewTTL)
	if cfg.UsesRedis() {
		redisClient, err = cache.Open(context.Background(), cfg.Tuning.Redis.Addr, cfg.Tuning.Redis.Password, cfg.Tuning.Redis.DB)
		if err != nil {
			logger.Warn(fmt.Sprintf("Redis no disponible, usando memoria para las vistas previas: %v", err), "Main")
		} else {
			previews = giveaway.NewRedisPreviewStore(redisClient, cfg.Tuning.Giveaway.PreviewTTL)
		}
	}

	// Initialize Discord client
	discordClient, err = discord.Init(cfg.BotToken)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error creating Discord client: %v", err), "Main")
		os.Exit(1)
	}
	discordClient.Usage = statsRepo
	platform := discord.NewPlatform(discordClient.Session)

	registerMQTTHandlers(mqttClient, statsRepo, giveaways, discordClient)

	status := []utils.Component{
		{Name: "Base de datos", Check: db.GetStatus},
		{Name: "MQTT", Check: func() (string, bool) { return connState(mqttClient.IsConnected()), mqttClient.IsConnected() }},
	}
	if redisClient != nil {
		status = append(status, utils.Component{Name: "Redis", Check: func() (string, bool) {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			ok := redisClient.Ping(ctx) == nil
			return connState(ok), ok
		}})
	}

	// Register commands
	announcer := commands.RegisterAll(discordClient, &commands.Services{
		Levels:       engine,
		Leaderboards: boards,
		Giveaways:    giveaways,
		Previews:     previews,
		Configs:      configs,
		Moderation:   database.NewModerationRepository(db),
		Usage:        statsRepo,
		Status:       status,
		Notifier:     notifier,
	})

	// Register events
	events.RegisterAll(discordClient, &events.Handlers{
		Levels:        engine,
		Configs:       configs,
		Roles:         platform,
		Boosts:        boost.NewTracker(database.NewBoostRepository(db), configs, platform, notifier),
		Notifier:      notifier,
		GuildsWebhook: cfg.GuildsWebhook,
	})

	// Initialize web server
	webServer, err := web.Init(web.Options{
		WebhookURL:        cfg.LogsWebServerHook,
		AllowedHosts:      cfg.Tuning.Dashboard.AllowedHosts,
		CORSOrigins:       cfg.Tuning.Dashboard.CORSOrigins,
		RequestsPerMinute: cfg.Tuning.Dashboard.RequestsPerMinute,
	})
	if err != nil {
		logger.Critical(fmt.Sprintf("Error creating web server: %v", err), "Main")
		os.Exit(1)
	}
	web.SetupAPIRoutes(webServer, &web.API{
		Store:       web.NewDatabaseStore(db),
		Leaderboard: boards,
		Bot:         discordClient,
		Hub:         hub,
	})
	webServer.StartAsync(cfg.Port)

	// The expiry worker needs the gateway to edit giveaway messages
	worker := giveaway.NewExpiryWorker(giveaways, announcer, cfg.Tuning.Giveaway.CheckInterval)
	discordClient.OnReady(func(s *discordgo.Session) {
		worker.Start()
	})

	// Start the bot
	if err := discordClient.Start(); err != nil {
		logger.Critical(fmt.Sprintf("Error starting Discord client: %v", err), "Main")
		os.Exit(1)
	}

	logger.Success("PancyCommunityBot iniciado correctamente!", "Main")

	// Wait for interrupt signal
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	logger.System("Apagando PancyCommunityBot...", "Main")

	worker.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := webServer.Shutdown(ctx); err != nil {
		logger.Warn(fmt.Sprintf("Error deteniendo el servidor web: %v", err), "Main")
	}
	hub.Close()

	if err := discordClient.Stop(); err != nil {
		logger.Warn(fmt.Sprintf("Error cerrando la sesión de Discord: %v", err), "Main")
	}
	mqttClient.Destroy()
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if err := db.Disconnect(); err != nil {
		logger.Warn(fmt.Sprintf("Error desconectando la base de datos: %v", err), "Main")
	}
}

// registerMQTTHandlers serves the request topics used by external services
func registerMQTTHandlers(mc *mqtt.MqttCommunicator, stats *database.StatsRepository, giveaways *giveaway.Service, bot *discord.ExtendedClient) {
	mc.On("stats", func(payload map[string]interface{}) (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return stats.BotStats(ctx, bot.GuildCount())
	})

	mc.On("giveaways/active", func(payload map[string]interface{}) (interface{}, error) {
		guildID, _ := payload["guildId"].(string)
		if guildID == "" {
			return nil, fmt.Errorf("guildId requerido")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return giveaways.List(ctx, guildID, true, 25)
	})
}

func connState(ok bool) string {
	if ok {
		return "connected"
	}
	return "disconnected"
}

// getCurrentDir returns the current working directory
func getCurrentDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return "unknown"
	}
	return dir
}
