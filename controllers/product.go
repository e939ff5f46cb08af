package controllers

import (
	"context"
	"encoding/json"
	"go-shop/models"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ProductController handles product-related requests
type ProductController struct {
	Collection *mongo.Collection
	Log        *zap.Logger
}

// NewProductController creates a new ProductController
func NewProductController(db *mongo.Database, log *zap.Logger) *ProductController {
	return &ProductController{Collection: db.Collection("products"), Log: log}
}

// sortFields maps API sort names onto document fields.
var sortFields = map[string]string{
	"price": "price",
	"date":  "created_at",
	"title": "title",
}

// ListProducts retrieves catalog products, translating filter and sort
// query parameters of the form
//
//	/products?filter[name]=x&filter[minPrice]=100&filter[maxPrice]=1000&filter[freeDelivery]=true&sort=price&sortType=dec
//
// into a mongo query. Unavailable products are excluded unless
// filter[available]=false asks for everything.
func (pc *ProductController) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := bson.M{"available": true}
	if q.Get("filter[available]") == "false" {
		delete(filter, "available")
	}
	if name := q.Get("filter[name]"); name != "" {
		filter["title"] = bson.M{"$regex": name, "$options": "i"}
	}

	price := bson.M{}
	if v := q.Get("filter[minPrice]"); v != "" {
		if min, err := strconv.ParseFloat(v, 64); err == nil {
			price["$gte"] = min
		}
	}
	if v := q.Get("filter[maxPrice]"); v != "" {
		if max, err := strconv.ParseFloat(v, 64); err == nil {
			price["$lte"] = max
		}
	}
	if len(price) > 0 {
		filter["price"] = price
	}
	if q.Get("filter[freeDelivery]") == "true" {
		filter["free_delivery"] = true
	}

	findOpts := options.Find()
	if field, ok := sortFields[q.Get("sort")]; ok {
		direction := -1 // "dec" is the catalog default
		if q.Get("sortType") == "inc" {
			direction = 1
		}
		findOpts.SetSort(bson.D{{Key: field, Value: direction}})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cursor, err := pc.Collection.Find(ctx, filter, findOpts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "error fetching products")
		return
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		writeError(w, http.StatusInternalServerError, "error reading products")
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// GetProductByID retrieves a single product by ID
func (pc *ProductController) GetProductByID(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)
	id, err := primitive.ObjectIDFromHex(params["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	var product models.Product
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = pc.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// CreateProduct handles adding a new product (Admin only)
func (pc *ProductController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		writeError(w, http.StatusBadRequest, "invalid input")
		return
	}
	product.CreatedAt = time.Now().UTC()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result, err := pc.Collection.InsertOne(ctx, product)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "error creating product")
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// UpdateProduct handles updating a product (Admin only)
func (pc *ProductController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)
	id, err := primitive.ObjectIDFromHex(params["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	var product models.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		writeError(w, http.StatusBadRequest, "invalid input")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := pc.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": product})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "error updating product")
		return
	}
	if result.MatchedCount == 0 {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// DeleteProduct handles deleting a product (Admin only)
func (pc *ProductController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)
	id, err := primitive.ObjectIDFromHex(params["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := pc.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "error deleting product")
		return
	}
	writeJSON(w, http.StatusOK, result)
}
