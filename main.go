package main

import (
	"context"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"kulinara/auth"
	"kulinara/catalog"
	"kulinara/common"
	"kulinara/database"
	"kulinara/recipes"
	"kulinara/storage"
	"kulinara/users"
)

func main() {
	_ = godotenv.Load()

	common.InitLogger()
	defer common.CloseLogger()
	log := common.Log()

	db := common.ConnectDb()
	if db == nil {
		log.Fatal("Failed to connect to database")
	}

	if err := database.RunMigrations(db); err != nil {
		log.Fatal("Failed to run migrations: " + err.Error())
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET environment variable not set")
	}

	router := gin.Default()

	imageStorage, serveMedia := buildImageStorage()
	if serveMedia {
		router.Static("/media", mediaRoot())
	}

	authModule := auth.NewAuthModule(db, []byte(secret))
	authModule.RegisterRoutes(router)

	userModule := users.NewUserModule(db, authModule)
	userModule.RegisterRoutes(router)

	catalogModule := catalog.NewCatalogModule(db)
	catalogModule.RegisterRoutes(router)

	recipeModule := recipes.NewRecipeModule(db, authModule, imageStorage)
	recipeModule.RegisterRoutes(router)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Info("Starting server on port " + port + "...")
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start server: " + err.Error())
	}
}

// buildImageStorage picks the MinIO backend when MINIO_ENDPOINT is set and
// falls back to local disk under the media root. The second return value
// reports whether the router must serve /media itself.
func buildImageStorage() (storage.ImageStorage, bool) {
	log := common.Log()

	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		return storage.NewLocalStorage(mediaRoot(), "/media"), true
	}

	minioStorage, err := storage.NewMinioStorage(storage.MinioConfig{
		Endpoint:  endpoint,
		AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		SecretKey: os.Getenv("MINIO_SECRET_KEY"),
		Bucket:    os.Getenv("MINIO_BUCKET"),
		UseSSL:    os.Getenv("MINIO_USE_SSL") == "true",
	})
	if err != nil {
		log.Fatal("Failed to configure minio storage: " + err.Error())
	}
	if err := minioStorage.EnsureBucket(context.Background()); err != nil {
		log.Fatal("Failed to ensure minio bucket: " + err.Error())
	}
	return minioStorage, false
}

func mediaRoot() string {
	root := os.Getenv("MEDIA_ROOT")
	if root == "" {
		root = "./media"
	}
	return root
}
