package storage

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/quoc48/receipt-parser/configs"
	"github.com/quoc48/receipt-parser/internal/category"
	"github.com/quoc48/receipt-parser/internal/common"
	"github.com/quoc48/receipt-parser/internal/parser"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var mongoClient *mongo.Client
var mongoDB *mongo.Database

// IsEnabled reports whether persistence is configured. An empty
// MONGO_URI runs the service stateless.
func IsEnabled() bool {
	return configs.MONGO_URI != ""
}

// InitMongoDB initializes the MongoDB connection
func InitMongoDB() error {
	if !IsEnabled() {
		log.Println("⚪ MONGO_URI not set, running without persistence")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(configs.MONGO_URI)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err = client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	mongoClient = client
	mongoDB = client.Database(configs.MONGO_DB_NAME)

	log.Println("✅ Connected to MongoDB successfully!")
	return nil
}

// CloseMongoDB closes the MongoDB connection
func CloseMongoDB() {
	if mongoClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		mongoClient.Disconnect(ctx)
		log.Println("MongoDB connection closed")
	}
}

// CategoryRecord maps a Vietnamese category name to its stable UUID in
// the expense tracker. The UUID is what downstream sheets and budgets
// key on, so it must survive renames of the display name.
type CategoryRecord struct {
	GuidFixed string `bson:"guidfixed" json:"guidfixed"`
	Name      string `bson:"name" json:"name"`
	Icon      string `bson:"icon,omitempty" json:"icon,omitempty"`
	IsDelete  bool   `bson:"isdelete" json:"isdelete"`
}

// GetCategories retrieves all non-deleted category records
func GetCategories() ([]CategoryRecord, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	collection := mongoDB.Collection("categories")
	cursor, err := collection.Find(ctx, bson.M{"isdelete": false})
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer cursor.Close(ctx)

	var results []CategoryRecord
	if err = cursor.All(ctx, &results); err != nil {
		return nil, err
	}

	return results, nil
}

// EnsureCategories inserts records for any known category label missing
// from the collection. Called once at startup so a fresh database serves
// the full catalog immediately.
func EnsureCategories() error {
	existing, err := GetCategories()
	if err != nil {
		return err
	}

	known := make(map[string]bool, len(existing))
	for _, c := range existing {
		known[c.Name] = true
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	collection := mongoDB.Collection("categories")
	inserted := 0
	for _, label := range category.All() {
		if known[string(label)] {
			continue
		}
		record := CategoryRecord{
			GuidFixed: uuid.New().String(),
			Name:      string(label),
			IsDelete:  false,
		}
		if _, err := collection.InsertOne(ctx, record); err != nil {
			return fmt.Errorf("failed to seed category %q: %w", label, err)
		}
		inserted++
	}

	if inserted > 0 {
		log.Printf("✅ Seeded %d missing categories", inserted)
		InvalidateCategoryCache()
	}
	return nil
}

// ParseHistoryEntry is one persisted parse run. Item details stay out of
// the record; only aggregates needed for usage review are kept.
type ParseHistoryEntry struct {
	GuidFixed    string    `bson:"guidfixed" json:"guidfixed"`
	RequestID    string    `bson:"request_id" json:"request_id"`
	Method       string    `bson:"method" json:"method"`
	ReceiptType  string    `bson:"receipt_type" json:"receipt_type"`
	ModelOutcome string    `bson:"model_outcome" json:"model_outcome"`
	ItemCount    int       `bson:"item_count" json:"item_count"`
	TotalAmount  float64   `bson:"total_amount" json:"total_amount"`
	Confidence   float64   `bson:"confidence" json:"confidence"`
	WarningCount int       `bson:"warning_count" json:"warning_count"`
	DurationMs   int64     `bson:"duration_ms" json:"duration_ms"`
	CostVND      float64   `bson:"cost_vnd" json:"cost_vnd"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}

// SaveParseResult records a completed parse. Best effort: a storage
// failure must never fail the parse request itself, so errors are
// logged on the request context and swallowed.
func SaveParseResult(result *parser.ParseResult, reqCtx *common.RequestContext) {
	if !IsEnabled() || mongoDB == nil {
		return
	}

	reqCtx.StartStep("save_history")
	defer reqCtx.EndStep("success", nil, nil)

	entry := ParseHistoryEntry{
		GuidFixed:    uuid.New().String(),
		RequestID:    reqCtx.RequestID,
		Method:       string(result.Method),
		ReceiptType:  string(result.ReceiptType),
		ModelOutcome: string(result.ModelOutcome),
		ItemCount:    len(result.Items),
		TotalAmount:  parser.Total(result.Items),
		Confidence:   result.Confidence,
		WarningCount: len(result.Warnings),
		DurationMs:   result.Duration.Milliseconds(),
		CostVND:      reqCtx.TotalTokens.CostVND,
		CreatedAt:    time.Now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	collection := mongoDB.Collection("parse_history")
	if _, err := collection.InsertOne(ctx, entry); err != nil {
		reqCtx.LogWarning("Không lưu được lịch sử phân tích: %v", err)
		return
	}

	reqCtx.LogInfo("💾 Đã lưu lịch sử phân tích: %s", entry.GuidFixed)
}
