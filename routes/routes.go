// routes/routes.go
package routes

import (
	"go-shop/controllers"
	"go-shop/middleware"

	"github.com/gorilla/mux"
)

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(
	router *mux.Router,
	userController *controllers.UserController,
	productController *controllers.ProductController,
	cartController *controllers.CartController,
	orderController *controllers.OrderController,
	paymentController *controllers.PaymentController,
) {
	// Public routes
	router.HandleFunc("/register", userController.Register).Methods("POST")
	router.HandleFunc("/login", userController.Login).Methods("POST")
	router.HandleFunc("/verify", userController.VerifyEmail).Methods("GET")

	// Product routes
	router.HandleFunc("/products", productController.ListProducts).Methods("GET")
	router.HandleFunc("/products/{id}", productController.GetProductByID).Methods("GET")

	// Admin routes
	admin := router.PathPrefix("/products").Subrouter()
	admin.Use(middleware.AuthMiddleware)
	admin.Use(middleware.AdminMiddleware)
	admin.HandleFunc("", productController.CreateProduct).Methods("POST")
	admin.HandleFunc("/{id}", productController.UpdateProduct).Methods("PUT")
	admin.HandleFunc("/{id}", productController.DeleteProduct).Methods("DELETE")

	// Protected routes
	protected := router.PathPrefix("/").Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.HandleFunc("/profile", userController.GetProfile).Methods("GET")
	protected.HandleFunc("/profile", userController.UpdateProfile).Methods("POST")

	// Cart routes
	protected.HandleFunc("/cart", cartController.GetCart).Methods("GET")
	protected.HandleFunc("/cart", cartController.AddToCart).Methods("POST")
	protected.HandleFunc("/cart", cartController.RemoveFromCart).Methods("DELETE")

	// Order routes
	protected.HandleFunc("/orders", orderController.ListOrders).Methods("GET")
	protected.HandleFunc("/orders", orderController.CreateOrder).Methods("POST")
	protected.HandleFunc("/order/{id}", orderController.GetOrder).Methods("GET")
	protected.HandleFunc("/order/{id}", orderController.UpdateOrder).Methods("POST")

	// Payment routes
	protected.HandleFunc("/payment", paymentController.AddCard).Methods("POST")
}
