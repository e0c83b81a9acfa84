package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/handyhub-dev/handyhub-api/config"
	"github.com/handyhub-dev/handyhub-api/controllers"
	"github.com/handyhub-dev/handyhub-api/middleware"
	"github.com/handyhub-dev/handyhub-api/models"
	"github.com/handyhub-dev/handyhub-api/services"
	"github.com/handyhub-dev/handyhub-api/store"
)

func main() {
	log.Println("Starting HandyHub API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	dynamo, err := store.NewDynamo(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to DynamoDB: %v", err)
	}
	store.Set(dynamo)
	log.Println("Document store connection established")

	if cfg.AWSS3Bucket != "" {
		s3Service, err := services.InitS3Service()
		if err != nil {
			log.Fatalf("Failed to initialize S3 service: %v", err)
		}
		services.InitMediaService(s3Service)
	} else {
		log.Println("AWS_S3_BUCKET not set, file uploads disabled")
	}

	if err := bootstrapAdmin(ctx, cfg); err != nil {
		log.Fatalf("Failed to bootstrap admin account: %v", err)
	}

	router := setupRouter(cfg)

	addr := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupRouter(cfg *config.Config) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/api/health", healthCheck)

	authn := middleware.EnsureValidToken(cfg)
	resolve := middleware.ResolveUser(cfg)

	api := router.Group("/api")
	{
		// Registration runs before a profile document exists
		auth := api.Group("/auth", authn)
		{
			auth.POST("/register", controllers.RegisterUser)
			auth.POST("/register/technician", controllers.RegisterTechnician)
		}

		user := api.Group("/user", authn, resolve)
		{
			user.GET("/profile", controllers.GetProfile)
			user.PUT("/profile", controllers.UpdateProfile)
		}

		technician := api.Group("/technician")
		{
			technician.POST("/apply", authn, resolve, controllers.ApplyTechnician)
			technician.PUT("/availability", authn, resolve, controllers.UpdateAvailability)
			technician.GET("/profile", authn, resolve, controllers.GetTechnicianProfile)
			technician.GET("/cities", controllers.GetTechnicianCities)         // public
			technician.GET("/categories", controllers.GetTechnicianCategories) // public
			technician.GET("/:id", controllers.GetTechnicianByID)              // public
		}

		admin := api.Group("/admin", authn, resolve, middleware.RequireAdmin())
		{
			admin.GET("/users", controllers.GetAllUsers)
			admin.GET("/pending-technicians", controllers.GetPendingTechnicians)
			admin.POST("/verify", controllers.VerifyTechnician)
			admin.GET("/stats", controllers.GetDashboardStats)
		}

		jobs := api.Group("/jobs", authn, resolve)
		{
			jobs.POST("", controllers.CreateJob)
			jobs.GET("", controllers.GetJobs)
			jobs.GET("/:id", controllers.GetJobByID)
			jobs.PATCH("/:id/status", controllers.UpdateJobStatus)
		}

		rating := api.Group("/rating")
		{
			rating.POST("", authn, resolve, middleware.RequireCustomer(), controllers.AddRating)
			rating.GET("/:technicianId", controllers.GetTechnicianReviews) // public
			rating.PUT("/:id", authn, resolve, controllers.UpdateRating)
			rating.DELETE("/:id", authn, resolve, controllers.DeleteRating)
		}

		api.GET("/search", controllers.SearchTechnicians) // public
		api.GET("/home", controllers.GetHomeData)         // public

		chat := api.Group("/chat", authn, resolve)
		{
			chat.POST("", controllers.InitiateChat)
			chat.GET("", controllers.GetUserChats)
			chat.POST("/:chatId/messages", controllers.SendMessage)
			chat.GET("/:chatId/messages", controllers.GetMessages)
		}

		api.POST("/upload", authn, controllers.UploadFile)
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "HandyHub API is running"})
}

// bootstrapAdmin ensures the configured admin email has a user document with
// the admin role. The identity itself lives with the identity provider; only
// the profile document is created here.
func bootstrapAdmin(ctx context.Context, cfg *config.Config) error {
	if cfg.AdminEmail == "" {
		log.Println("ADMIN_EMAIL not set, skipping admin bootstrap")
		return nil
	}

	users := store.Get().Users()
	all, err := users.ListAll(ctx)
	if err != nil {
		return err
	}
	for _, u := range all {
		if u.Email == cfg.AdminEmail {
			if u.IsAdmin() {
				return nil
			}
			u.Role = models.RoleAdmin
			u.Roles = append(u.Roles, models.RoleAdmin)
			return users.Update(ctx, &u)
		}
	}

	admin := &models.User{
		ID:               uuid.NewString(),
		Email:            cfg.AdminEmail,
		Name:             cfg.AdminName,
		Role:             models.RoleAdmin,
		Roles:            []string{models.RoleAdmin},
		TechnicianStatus: models.TechnicianStatusNone,
		CreatedAt:        time.Now().UTC(),
	}
	if err := users.Create(ctx, admin); err != nil && !errors.Is(err, store.ErrAlreadyExists) {
		return err
	}
	log.Printf("Admin profile created for %s", cfg.AdminEmail)
	return nil
}
