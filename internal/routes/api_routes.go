package routes

import (
	"infinite-experiment/clanledger/internal/api"
	"infinite-experiment/clanledger/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// RegisterAPIRoutes registers all API v1 routes and handlers
func RegisterAPIRoutes(r chi.Router, deps *api.Dependencies, handlers *api.Handlers, opts RouterOptions) {
	rps, burst := opts.RequestsPerSecond, opts.Burst
	if rps <= 0 {
		rps = 20
	}
	if burst <= 0 {
		burst = 40
	}
	limiter := middleware.NewIPRateLimiter(rps, burst, opts.TrustedIPs)

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(middleware.InFlightMiddleware(deps.Metrics, "/api/v1"))
		v1.Use(limiter.Middleware)
		v1.Use(middleware.AuthMiddleware(deps.Repo.Keys, deps.Services.Tokens)) // global: all routes must be authenticated

		// Member routes
		v1.Post("/activity/message", handlers.ProcessMessage())
		v1.Post("/activity/queue", handlers.EnqueueMessage())

		v1.Get("/users/{userID}/points", handlers.GetUserPoints())
		v1.Get("/users/{userID}/stats", handlers.GetUserStats())
		v1.Get("/users/{userID}/clan", handlers.GetUserClan())
		v1.Get("/users/{userID}/log", handlers.GetUserLog())
		v1.Get("/users/{userID}/achievements", handlers.GetUserAchievements())

		v1.Get("/clans/{name}", handlers.GetClan())
		v1.Get("/clans/{name}/top", handlers.TopClanMembers())
		v1.Get("/clans/{name}/members", handlers.ClanMembers())

		v1.Get("/leaderboard/clans", handlers.ClanLeaderboard())
		v1.Get("/leaderboard/users", handlers.UserLeaderboard())
		v1.Get("/leaderboard/weekly", handlers.WeeklyComparison())

		v1.Get("/challenges/today", handlers.GetChallenge())
		v1.Get("/shop", handlers.ListShop())
		v1.Post("/shop/purchase", handlers.Purchase())
		v1.Get("/config/whitelist", handlers.ListWhitelist())

		// Whitelisted-role group
		v1.Group(func(whitelisted chi.Router) {
			whitelisted.Use(middleware.IsWhitelistedMiddleware(deps.Services.Config))
			whitelisted.Post("/clans/{name}/members", handlers.AssignMember())
		})

		// Admin-only group
		v1.Group(func(admin chi.Router) {
			admin.Use(middleware.IsAdminMiddleware())

			admin.Post("/clans", handlers.CreateClan())
			admin.Post("/clans/sync", handlers.SyncClans())
			admin.Put("/clans/{name}/cap", handlers.SetClanCap())

			admin.Post("/points/add", handlers.AddPoints())
			admin.Post("/points/remove", handlers.RemovePoints())

			admin.Put("/config/bonus-role", handlers.SetBonusRole())
			admin.Post("/config/whitelist", handlers.AddWhitelistRole())
			admin.Delete("/config/whitelist/{role}", handlers.RemoveWhitelistRole())
			admin.Put("/config/channels/{channelID}", handlers.SetChannelMultiplier())
			admin.Post("/events", handlers.CreateSeasonalEvent())

			admin.Put("/challenges/today", handlers.SetChallenge())
			admin.Post("/challenges/today/claim", handlers.ClaimChallenge())
			admin.Post("/shop/items", handlers.AddShopItem())
		})
	})
}
