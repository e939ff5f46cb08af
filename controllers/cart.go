package controllers

import (
	"context"
	"encoding/json"
	"go-shop/services"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CartController handles cart-related requests
type CartController struct {
	Service  *services.CartService
	Identity services.Identity
	Log      *zap.Logger
}

// NewCartController creates a new CartController
func NewCartController(service *services.CartService, identity services.Identity, log *zap.Logger) *CartController {
	return &CartController{Service: service, Identity: identity, Log: log}
}

// cartItemRequest is the body of cart mutations: a product id and a count.
type cartItemRequest struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

func (req cartItemRequest) productID() (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(req.ID)
	return id, err == nil
}

// AddToCart adds a product to the user's cart
func (cc *CartController) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid input")
		return
	}
	productID, ok := req.productID()
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	userID, err := currentActor(ctx, r, cc.Identity)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	lines, err := cc.Service.AddToCart(ctx, userID, productID, req.Count)
	if err != nil {
		writeServiceError(w, cc.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, lines)
}

// RemoveFromCart removes a quantity of a product from the user's cart
func (cc *CartController) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid input")
		return
	}
	productID, ok := req.productID()
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	userID, err := currentActor(ctx, r, cc.Identity)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := cc.Service.RemoveFromCart(ctx, userID, productID, req.Count); err != nil {
		writeServiceError(w, cc.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetCart retrieves the user's cart joined to current catalog facts
func (cc *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	userID, err := currentActor(ctx, r, cc.Identity)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	lines, err := cc.Service.GetCart(ctx, userID)
	if err != nil {
		writeServiceError(w, cc.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, lines)
}
