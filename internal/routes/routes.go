package routes

import (
	"github.com/AnshRaj112/pinboard-backend/internal/handlers"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes(r *chi.Mux) {
	// Auth routes
	r.Post("/api/auth/signup", handlers.Signup)
	r.Post("/api/auth/signin", handlers.Signin)
	r.Get("/api/auth/me", handlers.GetMe)
	r.Post("/api/auth/signout", handlers.Signout)

	// Post board routes
	r.Post("/api/posts", handlers.CreatePost)
	r.Get("/api/posts", handlers.GetPosts)
	r.Get("/api/posts/one", handlers.GetPostByID)
	r.Put("/api/posts", handlers.UpdatePost)
	r.Post("/api/posts/report", handlers.ReportPost)

	// File upload routes
	r.Post("/api/upload", handlers.UploadFile)

	// Chat routes (MongoDB history + Redis Pub/Sub invalidation)
	r.Post("/api/chat/resolve", handlers.ResolveChat)
	r.Post("/api/chat/send", handlers.SendChatMessage)
	r.Get("/api/chat/threads", handlers.GetThreads)
	r.Get("/api/chat/history", handlers.LoadChatHistory)
	r.Post("/api/chat/read", handlers.MarkThreadRead)
	r.Put("/api/chat/message", handlers.EditChatMessage)

	// User routes
	r.Post("/api/users/block", handlers.BlockUser)
	r.Put("/api/users/nickname", handlers.SetNickname)

	// Notification and rating routes
	r.Get("/api/notifications", handlers.GetNotifications)
	r.Post("/api/notifications/read", handlers.MarkNotificationRead)
	r.Post("/api/ratings", handlers.SubmitRating)
	r.Get("/api/ratings", handlers.GetRatings)

	// Admin auth routes (signup removed - admin accounts must be created directly in database)
	r.Post("/api/admin/signin", handlers.AdminSignin)
	r.Post("/api/admin/signout", handlers.AdminSignout)

	// Admin moderation routes
	r.Get("/api/admin/violations", handlers.GetViolations)
	r.Put("/api/admin/suspend", handlers.SuspendUser)
	r.Put("/api/admin/unsuspend", handlers.UnsuspendUser)
	r.Get("/api/admin/audit", handlers.GetAuditLog)
	r.Get("/api/admin/blocked-ips", handlers.GetBlockedIPs)
	r.Put("/api/admin/unblock-ip", handlers.UnblockIP)
	r.Post("/api/admin/sweep-orphans", handlers.SweepOrphans)

	// WebSocket endpoint for live views (threads, messages, posts, notifications, ratings)
	r.Get("/ws/chat", handlers.ChatWebSocket)
}
