package controllers

import (
	"context"
	"encoding/json"
	"go-shop/models"
	"go-shop/utils"
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserController handles user-related requests
type UserController struct {
	Collection   *mongo.Collection
	EmailService *utils.EmailService
	Log          *zap.Logger
}

// NewUserController creates a new UserController with EmailService
func NewUserController(db *mongo.Database, emailService *utils.EmailService, log *zap.Logger) *UserController {
	return &UserController{
		Collection:   db.Collection("users"),
		EmailService: emailService,
		Log:          log,
	}
}

// Register handles user registration
func (uc *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var user models.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		writeError(w, http.StatusBadRequest, "invalid input")
		return
	}
	if user.Email == "" || user.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	// Check if user already exists
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	count, err := uc.Collection.CountDocuments(ctx, bson.M{"email": user.Email})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	if count > 0 {
		writeError(w, http.StatusBadRequest, "user already exists")
		return
	}

	// Hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "error hashing password")
		return
	}
	user.Password = string(hashedPassword)
	user.Role = "user"
	user.IsVerified = false

	// Generate verification token
	verificationToken, err := utils.GenerateJWT(user.Email, user.Role)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "error generating verification token")
		return
	}
	user.VerificationToken = verificationToken

	if _, err := uc.Collection.InsertOne(ctx, user); err != nil {
		writeError(w, http.StatusInternalServerError, "error creating user")
		return
	}

	if err := uc.EmailService.SendVerificationEmail(user.Email, verificationToken); err != nil {
		uc.Log.Warn("failed to send verification email", zap.String("email", user.Email), zap.Error(err))
	}

	writeJSON(w, http.StatusCreated,
		map[string]string{"message": "User registered successfully. Please check your email to verify your account."})
}

// VerifyEmail handles email verification
func (uc *UserController) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusBadRequest, "verification token missing")
		return
	}

	claims := &utils.Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return utils.JwtKey, nil
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid token")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var user models.User
	err = uc.Collection.FindOne(ctx, bson.M{"verification_token": token}).Decode(&user)
	if err != nil {
		writeError(w, http.StatusBadRequest, "user not found or already verified")
		return
	}

	_, err = uc.Collection.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{
		"$set": bson.M{
			"is_verified":        true,
			"verification_token": "",
		},
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "error updating user verification status")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Email verified successfully. You can now log in."})
}

// Login handles user authentication
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid input")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var user models.User
	err := uc.Collection.FindOne(ctx, bson.M{"email": creds.Email}).Decode(&user)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "user not found")
		return
	}

	if !user.IsVerified {
		writeError(w, http.StatusUnauthorized, "email not verified")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(creds.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid password")
		return
	}

	token, err := utils.GenerateJWT(user.Email, user.Role)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "error generating token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// GetProfile retrieves the authenticated user's profile
func (uc *UserController) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "could not parse user from context")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var user models.User
	err := uc.Collection.FindOne(ctx, bson.M{"email": claims.Email}).Decode(&user)
	if err != nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	user.Password = ""
	user.VerificationToken = ""
	writeJSON(w, http.StatusOK, user)
}

// UpdateProfile applies a sparse update to the authenticated user's
// profile fields. Absent fields keep their values.
func (uc *UserController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "could not parse user from context")
		return
	}

	var patch struct {
		FullName *string         `json:"fullName"`
		Phone    *string         `json:"phone"`
		Address  *models.Address `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid input")
		return
	}

	set := bson.M{}
	if patch.FullName != nil {
		set["full_name"] = *patch.FullName
	}
	if patch.Phone != nil {
		set["phone"] = *patch.Phone
	}
	if patch.Address != nil {
		set["address"] = *patch.Address
	}
	if len(set) == 0 {
		writeJSON(w, http.StatusOK, map[string]string{"message": "nothing to update"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := uc.Collection.UpdateOne(ctx, bson.M{"email": claims.Email}, bson.M{"$set": set})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "error updating profile")
		return
	}
	if res.MatchedCount == 0 {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "profile updated"})
}
