package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"go-shop/middleware"
	"go-shop/services"
	"go-shop/utils"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a stable JSON error body so clients can branch on the
// error kind, not just the message.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps the service error taxonomy onto status codes.
// Each kind keeps a distinct, stable status so clients can tell "nothing
// to remove" apart from "too much requested".
func writeServiceError(w http.ResponseWriter, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrNoCart):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrIntegrity):
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		log.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// currentActor resolves the authenticated user behind the request. Cart
// and order operations always run against the resolved actor; a cart or
// order id is never accepted as a substitute for identity.
func currentActor(ctx context.Context, r *http.Request, identity services.Identity) (primitive.ObjectID, error) {
	claims, ok := r.Context().Value(middleware.UserContextKey).(*utils.Claims)
	if !ok {
		return primitive.NilObjectID, errors.New("no authenticated user in context")
	}
	return identity.ResolveActor(ctx, claims.Email)
}

// claimsFrom returns the JWT claims attached by the auth middleware.
func claimsFrom(r *http.Request) (*utils.Claims, bool) {
	claims, ok := r.Context().Value(middleware.UserContextKey).(*utils.Claims)
	return claims, ok
}
