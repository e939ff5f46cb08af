// main.go
package main

import (
	"context"
	"go-shop/controllers"
	"go-shop/routes"
	"go-shop/services"
	"go-shop/store"
	"go-shop/utils"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func main() {
	cfg := utils.LoadConfig()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// Set the JWT secret key
	utils.JwtKey = []byte(cfg.JWTSecret)

	// Connect to MongoDB
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal("connecting to mongo", zap.Error(err))
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error("disconnecting from mongo", zap.Error(err))
		}
	}()
	db := client.Database(cfg.Database)

	if err := store.EnsureIndexes(ctx, db); err != nil {
		logger.Fatal("ensuring indexes", zap.Error(err))
	}

	// Stores
	cartStore := store.NewMongoCartStore(db)
	orderStore := store.NewMongoOrderStore(client, db)
	userStore := store.NewMongoUserStore(db)
	catalog := store.NewMongoCatalog(db)

	// Services
	cartService := services.NewCartService(cartStore, catalog, logger)
	orderService := services.NewOrderService(orderStore, cartStore, userStore, catalog, logger)
	emailService := utils.NewEmailService(cfg)

	// Controllers
	userController := controllers.NewUserController(db, emailService, logger)
	productController := controllers.NewProductController(db, logger)
	cartController := controllers.NewCartController(cartService, userStore, logger)
	orderController := controllers.NewOrderController(orderService, userStore, emailService, logger)
	paymentController := controllers.NewPaymentController(db, userStore, logger)

	// Router
	router := mux.NewRouter()
	routes.RegisterRoutes(router, userController, productController, cartController, orderController, paymentController)

	logger.Info("server starting", zap.String("port", cfg.Port))
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
