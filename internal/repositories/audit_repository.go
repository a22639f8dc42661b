package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/gorm"

	"storefront/internal/models"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

// AuditFilter narrows an audit listing. Zero values match everything.
type AuditFilter struct {
	Resource   string
	ResourceID uint64
	ActorID    uint64
	Action     string
	Limit      int
}

func (f AuditFilter) limit() int {
	switch {
	case f.Limit <= 0:
		return defaultAuditLimit
	case f.Limit > maxAuditLimit:
		return maxAuditLimit
	default:
		return f.Limit
	}
}

// AuditRepository stores the admin audit trail, newest entries first.
type AuditRepository interface {
	Record(ctx context.Context, entry *models.AuditEntry) error
	List(ctx context.Context, filter AuditFilter) ([]models.AuditEntry, error)
}

// GORMAuditRepository keeps the audit trail in the relational database.
type GORMAuditRepository struct {
	db *gorm.DB
}

// NewGORMAuditRepository creates a new instance of GORMAuditRepository.
func NewGORMAuditRepository(db *gorm.DB) *GORMAuditRepository {
	return &GORMAuditRepository{db: db}
}

func (r *GORMAuditRepository) Record(ctx context.Context, entry *models.AuditEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}
	return nil
}

func (r *GORMAuditRepository) List(ctx context.Context, filter AuditFilter) ([]models.AuditEntry, error) {
	q := r.db.WithContext(ctx).Model(&models.AuditEntry{})
	if filter.Resource != "" {
		q = q.Where("resource = ?", filter.Resource)
	}
	if filter.ResourceID != 0 {
		q = q.Where("resource_id = ?", filter.ResourceID)
	}
	if filter.ActorID != 0 {
		q = q.Where("actor_id = ?", filter.ActorID)
	}
	if filter.Action != "" {
		q = q.Where("action = ?", filter.Action)
	}

	entries := make([]models.AuditEntry, 0)
	if err := q.Order("created_at DESC").Limit(filter.limit()).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	return entries, nil
}

// MongoAuditRepository keeps the audit trail in a MongoDB collection.
type MongoAuditRepository struct {
	collection *mongo.Collection
}

// NewMongoAuditRepository creates a new instance of MongoAuditRepository.
func NewMongoAuditRepository(collection *mongo.Collection) *MongoAuditRepository {
	return &MongoAuditRepository{
		collection: collection,
	}
}

// EnsureIndexes creates the indexes used by List.
func (r *MongoAuditRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "resource", Value: 1}, {Key: "resource_id", Value: 1}}},
		{Keys: bson.D{{Key: "actor_id", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create audit indexes: %w", err)
	}
	return nil
}

func (r *MongoAuditRepository) Record(ctx context.Context, entry *models.AuditEntry) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}
	return nil
}

func (r *MongoAuditRepository) List(ctx context.Context, filter AuditFilter) ([]models.AuditEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	query := bson.M{}
	if filter.Resource != "" {
		query["resource"] = filter.Resource
	}
	if filter.ResourceID != 0 {
		query["resource_id"] = filter.ResourceID
	}
	if filter.ActorID != 0 {
		query["actor_id"] = filter.ActorID
	}
	if filter.Action != "" {
		query["action"] = filter.Action
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(filter.limit()))

	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer cursor.Close(ctx)

	entries := make([]models.AuditEntry, 0)
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode audit entries: %w", err)
	}
	return entries, nil
}
