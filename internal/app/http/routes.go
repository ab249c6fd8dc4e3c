package routes

import (
	"rental-app/database"
	adminapi "rental-app/internal/api/admin"
	amenitiesapi "rental-app/internal/api/amenities"
	authapi "rental-app/internal/api/auth"
	commentsapi "rental-app/internal/api/comments"
	destinationsapi "rental-app/internal/api/destinations"
	favoritesapi "rental-app/internal/api/favorites"
	listingsapi "rental-app/internal/api/listings"
	listingtypesapi "rental-app/internal/api/listingtypes"
	rolesapi "rental-app/internal/api/roles"
	usersapi "rental-app/internal/api/users"
	"rental-app/internal/app/http/middleware"
	"rental-app/internal/domain/users"
	"rental-app/internal/infra/cache"
	"rental-app/internal/infra/storage"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, store storage.ImageStore) {
	cacheStore := cache.NewRedisStore(cache.Client)

	listingSvc := listingsapi.NewService(database.DB, store, cacheStore)
	listingsapi.Init(listingSvc)
	adminapi.Init(listingSvc)
	commentsapi.Init(commentsapi.NewService(database.DB, cacheStore))
	amenitiesapi.Init(amenitiesapi.NewService(database.DB, cacheStore))
	listingtypesapi.Init(listingtypesapi.NewService(database.DB, cacheStore))
	destinationsapi.Init(destinationsapi.NewService(database.DB))
	rolesapi.Init(rolesapi.NewService(database.DB, cacheStore))

	r.Use(middleware.ErrorResponder())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	public := r.Group("/")
	public.Use(middleware.SanitizeAndCleanInputMiddleware())

	public.POST("/register", authapi.Register)
	public.POST("/login", authapi.Login)
	public.POST("/refresh", authapi.Refresh)

	public.GET("/auth/google", authapi.GoogleStart)
	public.GET("/auth/google/callback", authapi.GoogleCallback)

	public.GET("/listings", listingsapi.SearchListings)
	public.GET("/listings/:id", listingsapi.GetListingByID)
	public.GET("/listings/:id/comments", commentsapi.ListForListing)
	public.GET("/amenities", amenitiesapi.List)
	public.GET("/amenities/:id", amenitiesapi.GetByID)
	public.GET("/listing-types", listingtypesapi.List)

	// Authenticated
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware(), middleware.SanitizeAndCleanInputMiddleware())

	auth.GET("/me", usersapi.Me)
	auth.PUT("/me", usersapi.UpdateMe)
	auth.POST("/me/become-landlord", usersapi.BecomeLandlord)
	auth.POST("/change-password", authapi.ChangePassword)

	auth.POST("/listings/:id/comments", commentsapi.Create)
	auth.PUT("/comments/:id", commentsapi.Update)
	auth.DELETE("/comments/:id", commentsapi.Delete)
	auth.POST("/comments/:id/like", commentsapi.ToggleLike)

	auth.POST("/listings/:id/favorite", favoritesapi.Toggle)
	auth.GET("/favorites", favoritesapi.ListMine)

	// Landlords manage their own listings
	landlord := auth.Group("/")
	landlord.Use(middleware.RequireRole(users.RoleLandlord, users.RoleAdmin))

	landlord.GET("/my-listings", listingsapi.GetMyListings)
	landlord.POST("/listings", listingsapi.CreateListing)
	landlord.POST("/drafts", listingsapi.CreateDraftListing)
	landlord.PUT("/listings/:id", listingsapi.UpdateListing)
	landlord.POST("/listings/:id/submit", listingsapi.SubmitDraftListing)
	landlord.POST("/listings/:id/edit-draft", listingsapi.CreateEditDraft)
	landlord.POST("/listings/:id/hide", listingsapi.HideListing)
	landlord.POST("/listings/:id/show", listingsapi.ShowListing)
	landlord.POST("/listings/:id/renew", listingsapi.RenewListing)
	landlord.DELETE("/listings/:id", listingsapi.SoftDeleteListing)

	// Admin routes
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRole(users.RoleAdmin))

	admin.GET("/listings", adminapi.GetModerationQueue)
	admin.GET("/stats", adminapi.GetListingStats)
	admin.GET("/listings/:id", adminapi.GetListingDetail)
	admin.POST("/listings/:id/approve", adminapi.ApproveListing)
	admin.POST("/listings/:id/reject", adminapi.RejectListing)
	admin.POST("/listings/:id/approve-edit", adminapi.ApproveEditDraft)
	admin.POST("/listings/:id/reject-edit", adminapi.RejectEditDraft)
	admin.DELETE("/listings/:id", adminapi.HardDeleteListing)

	admin.POST("/amenities", amenitiesapi.Create)
	admin.PUT("/amenities/:id", amenitiesapi.Update)
	admin.DELETE("/amenities/:id", amenitiesapi.Delete)

	admin.POST("/listing-types", listingtypesapi.Create)
	admin.PUT("/listing-types/:id", listingtypesapi.Update)
	admin.DELETE("/listing-types/:id", listingtypesapi.Delete)

	admin.GET("/destinations", destinationsapi.List)
	admin.GET("/destinations/:id", destinationsapi.GetByID)
	admin.POST("/destinations", destinationsapi.Create)
	admin.PUT("/destinations/:id", destinationsapi.Update)
	admin.DELETE("/destinations/:id", destinationsapi.Delete)
	admin.GET("/stats/destinations", destinationsapi.Stats)

	admin.GET("/roles", rolesapi.List)
	admin.GET("/roles/:id", rolesapi.GetByID)
	admin.POST("/roles", rolesapi.Create)
	admin.PUT("/roles/:id", rolesapi.Update)
	admin.DELETE("/roles/:id", rolesapi.Delete)
}
