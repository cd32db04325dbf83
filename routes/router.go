// Package routes wires the HTTP surface of the API.
package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/freelance-platform/marketplace-api/config"
	"github.com/freelance-platform/marketplace-api/controllers"
	"github.com/freelance-platform/marketplace-api/middleware"
	"github.com/freelance-platform/marketplace-api/services"
	"github.com/freelance-platform/marketplace-api/store"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Dependencies are the services the router is built from
type Dependencies struct {
	Config     *config.Config
	Store      store.Store
	Auth       *services.AuthService
	Users      *services.UserService
	Orders     *services.OrderService
	Archives   *services.ArchiveService
	Messages   *services.MessageService
	Categories *services.CategoryService

	// Authenticate replaces the token middleware when set
	Authenticate gin.HandlerFunc
}

// NewDependencies builds every service on top of st
func NewDependencies(cfg *config.Config, st store.Store, images services.ImageService, notifier services.Notifier, logger *slog.Logger) *Dependencies {
	return &Dependencies{
		Config:     cfg,
		Store:      st,
		Auth:       services.NewAuthService(st, cfg),
		Users:      services.NewUserService(st, images, logger),
		Orders:     services.NewOrderService(st, logger),
		Archives:   services.NewArchiveService(st),
		Messages:   services.NewMessageService(st, notifier, logger),
		Categories: services.NewCategoryService(st),
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func recovery(c *gin.Context, recovered any) {
	slog.Error("panic recovered", "method", c.Request.Method, "path", c.Request.URL.Path, "panic", recovered)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"message": services.ErrInternal.Message,
		"code":    services.ErrInternal.Code,
	})
}

// Setup creates the gin engine with every route under /api
func Setup(deps *Dependencies) (*gin.Engine, error) {
	auth := deps.Authenticate
	if auth == nil {
		var err error
		auth, err = middleware.EnsureValidToken(deps.Config)
		if err != nil {
			return nil, fmt.Errorf("failed to set up auth middleware: %w", err)
		}
	}
	admin := middleware.RequireAdmin()

	router := gin.New()
	router.Use(gin.Logger(), gin.CustomRecovery(recovery), cors.New(corsConfig(deps.Config.CORSAllowedOrigins)))

	health := controllers.NewHealthController(deps.Store)
	authc := controllers.NewAuthController(deps.Auth)
	users := controllers.NewUserController(deps.Users)
	orders := controllers.NewOrderController(deps.Orders)
	responses := controllers.NewOrderResponseController(deps.Orders, deps.Users)
	messages := controllers.NewMessageController(deps.Messages)
	categories := controllers.NewCategoryController(deps.Categories)
	archived := controllers.NewArchivedOrderController(deps.Orders, deps.Archives)
	uploads := controllers.NewUploadController(deps.Config.UploadDir)

	api := router.Group("/api")
	{
		api.GET("/health", health.HealthCheck)
		api.GET("/database/status", health.DatabaseStatus)
		api.GET("/uploads/:filename", uploads.GetUploadedImage)

		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", authc.Register)
			authRoutes.POST("/login", authc.Login)
		}

		api.GET("/categories", categories.ListCategories)
		api.GET("/categories/:id", categories.GetCategory)

		protected := api.Group("", auth)
		{
			userRoutes := protected.Group("/users")
			{
				userRoutes.GET("", admin, users.ListUsers)
				userRoutes.GET("/profile", users.GetProfile)
				userRoutes.PUT("/profile", users.UpdateProfile)
				userRoutes.POST("/profile/avatar", users.UploadAvatar)
				userRoutes.GET("/role/:role", users.ListUsersByRole)
				userRoutes.GET("/:id", admin, users.GetUser)
				userRoutes.PUT("/:id", admin, users.UpdateUserRole)
				userRoutes.DELETE("/:id", admin, users.DeleteUser)
			}

			orderRoutes := protected.Group("/orders")
			{
				orderRoutes.GET("", orders.ListOrders)
				orderRoutes.POST("", orders.CreateOrder)
				orderRoutes.GET("/all", admin, orders.ListAllOrders)
				orderRoutes.GET("/customer/:customerId", orders.ListCustomerOrders)
				orderRoutes.GET("/:id", orders.GetOrder)
				orderRoutes.PUT("/:id", admin, orders.UpdateOrder)
				orderRoutes.DELETE("/:id", admin, orders.DeleteOrder)
				orderRoutes.PUT("/:id/complete", orders.CompleteOrder)
				orderRoutes.PUT("/:id/cancel", admin, orders.CancelOrder)
			}

			responseRoutes := protected.Group("/order-responses")
			{
				responseRoutes.POST("", responses.CreateResponse)
				responseRoutes.GET("/order/:orderId", responses.ListOrderResponses)
				responseRoutes.GET("/freelancer", responses.ListFreelancerResponses)
				responseRoutes.PUT("/:id/status", responses.UpdateResponseStatus)
				responseRoutes.DELETE("/:id", responses.DeleteResponse)
			}

			messageRoutes := protected.Group("/messages")
			{
				messageRoutes.GET("", admin, messages.ListMessages)
				messageRoutes.POST("", messages.SendMessage)
				messageRoutes.GET("/order/:orderId", messages.GetOrderMessages)
				messageRoutes.GET("/order/:orderId/chat/:participantId", messages.GetConversation)
				messageRoutes.GET("/chats/:orderId", messages.GetThreads)
				messageRoutes.GET("/:id", admin, messages.GetMessage)
				messageRoutes.PUT("/:id", messages.UpdateMessage)
				messageRoutes.DELETE("/:id", admin, messages.DeleteMessage)
			}

			categoryRoutes := protected.Group("/categories", admin)
			{
				categoryRoutes.POST("", categories.CreateCategory)
				categoryRoutes.PUT("/:id", categories.UpdateCategory)
				categoryRoutes.DELETE("/:id", categories.DeleteCategory)
			}

			archiveRoutes := protected.Group("/archived-orders")
			{
				archiveRoutes.GET("", admin, archived.ListArchivedOrders)
				archiveRoutes.POST("", archived.ArchiveOrder)
				archiveRoutes.GET("/user", archived.ListUserArchivedOrders)
				archiveRoutes.GET("/:id", archived.GetArchivedOrder)
				archiveRoutes.PUT("/:id/review", archived.UpdateReview)
			}
		}
	}

	return router, nil
}
