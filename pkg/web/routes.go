package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/PancyStudios/PancyCommunityBot/pkg/database"
	"github.com/PancyStudios/PancyCommunityBot/pkg/leveling"
	"github.com/PancyStudios/PancyCommunityBot/pkg/models"
	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/gin-gonic/gin"
)

const requestTimeout = 5 * time.Second

// Store answers the dashboard queries
type Store interface {
	Status() (string, bool)
	BotStats(ctx context.Context, guilds int) (*models.BotStats, error)
	GuildStats(ctx context.Context, guildID string) (*models.GuildStats, error)
	ModerationLogs(ctx context.Context, guildID string, limit int) ([]models.ModerationLog, error)
	Giveaways(ctx context.Context, guildID string, activeOnly bool, limit int) ([]models.Giveaway, error)
	TopCommands(ctx context.Context, limit int) ([]models.CommandUsage, error)
}

// Leaderboard answers ranking queries
type Leaderboard interface {
	Levels(ctx context.Context, guildID string, period leveling.Period, limit int) ([]models.UserLevel, error)
	Messages(ctx context.Context, guildID string, period leveling.Period, limit int) ([]models.MessageCount, error)
}

// Bot exposes the gateway state
type Bot interface {
	IsReady() bool
	GuildCount() int
	Latency() time.Duration
	BotUser() *discordgo.User
}

// API holds the route dependencies
type API struct {
	Store       Store
	Leaderboard Leaderboard
	Bot         Bot
	Hub         *Hub
	StartedAt   time.Time
}

// SetupAPIRoutes registers the dashboard routes
func SetupAPIRoutes(s *Server, a *API) {
	if a.StartedAt.IsZero() {
		a.StartedAt = time.Now()
	}

	s.GET("/health", a.health)
	if a.Hub != nil {
		s.GET("/ws/events", a.Hub.ServeWS)
	}

	api := s.Group("/api")
	{
		api.GET("/health", a.health)
		api.GET("/status", a.status)
		api.GET("/bot", a.botInfo)
		api.GET("/stats", a.stats)

		guild := api.Group("/guilds/:id", requireSnowflake("id"))
		guild.GET("", a.guild)
		guild.GET("/moderation-logs", a.moderationLogs)
		guild.GET("/leaderboard", a.leaderboard)
		guild.GET("/giveaways", a.giveaways)
	}
}

func validSnowflake(id string) bool {
	_, err := snowflake.Parse(id)
	return err == nil
}

func requireSnowflake(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !validSnowflake(c.Param(param)) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "ID de servidor inválido"})
			return
		}
		c.Next()
	}
}

// queryLimit reads ?limit= clamped to [1, max]
func queryLimit(c *gin.Context, def, max int) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil || n < 1 {
		return def
	}
	return min(n, max)
}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

func storageError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "No encontrado"})
	case errors.Is(err, database.ErrStorageUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Base de datos no disponible"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno del servidor"})
	}
}

func (a *API) botReady() bool {
	return a.Bot != nil && a.Bot.IsReady()
}

func (a *API) guildCount() int {
	if a.Bot == nil {
		return 0
	}
	return a.Bot.GuildCount()
}

// health returns a simple health check response
func (a *API) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"message":   "PancyCommunityBot is running",
		"uptime":    time.Since(a.StartedAt).Round(time.Second).String(),
		"timestamp": time.Now().UTC(),
	})
}

// status returns the bot and database status
func (a *API) status(c *gin.Context) {
	dbStatus, dbOnline := a.Store.Status()

	resp := gin.H{
		"status": "ok",
		"database": gin.H{
			"status":   dbStatus,
			"isOnline": dbOnline,
		},
		"bot": gin.H{
			"isOnline": a.botReady(),
		},
	}
	if a.Hub != nil {
		resp["websocketClients"] = a.Hub.Clients()
	}
	c.JSON(http.StatusOK, resp)
}

// botInfo returns information about the bot user
func (a *API) botInfo(c *gin.Context) {
	if !a.botReady() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Bot Offline",
			"message": "El bot no está disponible en este momento.",
		})
		return
	}

	user := a.Bot.BotUser()
	resp := gin.H{
		"guilds":    a.Bot.GuildCount(),
		"isReady":   true,
		"latencyMs": a.Bot.Latency().Milliseconds(),
	}
	if user != nil {
		resp["id"] = user.ID
		resp["username"] = user.Username
		resp["avatar"] = user.Avatar
	}
	c.JSON(http.StatusOK, resp)
}

func (a *API) stats(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	stats, err := a.Store.BotStats(ctx, a.guildCount())
	if err != nil {
		storageError(c, err)
		return
	}
	top, err := a.Store.TopCommands(ctx, 10)
	if err != nil {
		storageError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats, "topCommands": top})
}

func (a *API) guild(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	stats, err := a.Store.GuildStats(ctx, c.Param("id"))
	if err != nil {
		storageError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (a *API) moderationLogs(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	logs, err := a.Store.ModerationLogs(ctx, c.Param("id"), queryLimit(c, 50, 100))
	if err != nil {
		storageError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

func (a *API) leaderboard(c *gin.Context) {
	period, err := leveling.ParsePeriod(c.Query("period"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Periodo inválido"})
		return
	}
	limit := queryLimit(c, 10, leveling.MaxLeaderboardSize)

	ctx, cancel := requestContext(c)
	defer cancel()

	guildID := c.Param("id")
	switch c.DefaultQuery("type", "levels") {
	case "levels", "niveles":
		entries, err := a.Leaderboard.Levels(ctx, guildID, period, limit)
		if err != nil {
			storageError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"type": "levels", "period": period, "entries": entries})
	case "messages", "mensajes":
		entries, err := a.Leaderboard.Messages(ctx, guildID, period, limit)
		if err != nil {
			storageError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"type": "messages", "period": period, "entries": entries})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tipo de ranking inválido"})
	}
}

func (a *API) giveaways(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	activeOnly := c.Query("active") == "true"
	list, err := a.Store.Giveaways(ctx, c.Param("id"), activeOnly, queryLimit(c, 25, 100))
	if err != nil {
		storageError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"giveaways": list})
}
