// controllers/order.go
package controllers

import (
	"context"
	"encoding/json"
	"go-shop/services"
	"go-shop/utils"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// OrderController handles order-related requests
type OrderController struct {
	Service      *services.OrderService
	Identity     services.Identity
	EmailService *utils.EmailService
	Log          *zap.Logger
}

// NewOrderController creates a new OrderController
func NewOrderController(service *services.OrderService, identity services.Identity, emailService *utils.EmailService, log *zap.Logger) *OrderController {
	return &OrderController{Service: service, Identity: identity, EmailService: emailService, Log: log}
}

// CreateOrder checks the user's current cart out into a new order. The
// cart stays as it is; the order binds to it and totals track it live.
func (oc *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := oc.Identity.ResolveActor(ctx, claims.Email)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	orderID, err := oc.Service.Create(ctx, userID)
	if err != nil {
		writeServiceError(w, oc.Log, err)
		return
	}

	go func(email, id string) {
		if err := oc.EmailService.SendOrderConfirmationEmail(email, id); err != nil {
			oc.Log.Warn("failed to send order confirmation", zap.String("email", email), zap.Error(err))
		}
	}(claims.Email, orderID.Hex())

	writeJSON(w, http.StatusCreated, map[string]string{"orderId": orderID.Hex()})
}

// ListOrders retrieves the user's orders with recomputed totals
func (oc *OrderController) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := currentActor(ctx, r, oc.Identity)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	views, err := oc.Service.List(ctx, userID)
	if err != nil {
		writeServiceError(w, oc.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// GetOrder retrieves one order. The reported total is recomputed from the
// bound cart's live contents, never read from the stored advisory field.
func (oc *OrderController) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := orderIDFromPath(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := currentActor(ctx, r, oc.Identity)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	view, err := oc.Service.Get(ctx, userID, orderID)
	if err != nil {
		writeServiceError(w, oc.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// UpdateOrder applies a sparse patch of checkout details to an order
func (oc *OrderController) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := orderIDFromPath(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	var patch services.OrderPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid input")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := currentActor(ctx, r, oc.Identity)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := oc.Service.UpdateFields(ctx, userID, orderID, patch); err != nil {
		writeServiceError(w, oc.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "order updated"})
}

func orderIDFromPath(r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	return id, err == nil
}
