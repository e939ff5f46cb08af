package controllers

import (
	"context"
	"encoding/json"
	"go-shop/models"
	"go-shop/services"
	"net/http"
	"time"
	"unicode"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// PaymentController stores payment cards. No gateway is involved; the
// card record is profile data attached to the authenticated user.
type PaymentController struct {
	Collection *mongo.Collection
	Identity   services.Identity
	Log        *zap.Logger
}

// NewPaymentController creates a new PaymentController
func NewPaymentController(db *mongo.Database, identity services.Identity, log *zap.Logger) *PaymentController {
	return &PaymentController{Collection: db.Collection("payment_cards"), Identity: identity, Log: log}
}

// AddCard validates and stores a payment card for the authenticated user
func (pc *PaymentController) AddCard(w http.ResponseWriter, r *http.Request) {
	var card models.PaymentCard
	if err := json.NewDecoder(r.Body).Decode(&card); err != nil {
		writeError(w, http.StatusBadRequest, "invalid input")
		return
	}
	if msg, ok := validateCard(card); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	userID, err := currentActor(ctx, r, pc.Identity)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	card.Owner = userID

	if _, err := pc.Collection.InsertOne(ctx, card); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			writeError(w, http.StatusConflict, "card number already registered")
			return
		}
		writeError(w, http.StatusInternalServerError, "error storing card")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "card stored"})
}

func validateCard(card models.PaymentCard) (string, bool) {
	switch {
	case card.Number == "" || len(card.Number) > 8 || !digitsOnly(card.Number):
		return "card number must be up to 8 digits", false
	case card.Name == "":
		return "cardholder name is required", false
	case len(card.Month) != 2 || !digitsOnly(card.Month):
		return "month must be 2 digits", false
	case len(card.Year) != 4 || !digitsOnly(card.Year):
		return "year must be 4 digits", false
	case len(card.Code) != 3 || !digitsOnly(card.Code):
		return "code must be 3 digits", false
	}
	return "", true
}

func digitsOnly(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
