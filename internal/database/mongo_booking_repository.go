package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/smarttransit/bus-booking/internal/config"
	"github.com/smarttransit/bus-booking/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ticketIndexName names the unique index backing ErrDuplicateTicket
const ticketIndexName = "ticketNumber_unique"

// MongoBookingRepository stores bookings as documents in a MongoDB collection
type MongoBookingRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *logrus.Logger
}

// NewMongoBookingRepository connects to MongoDB and ensures the ticket index exists
func NewMongoBookingRepository(ctx context.Context, cfg config.DatabaseConfig, logger *logrus.Logger) (*MongoBookingRepository, error) {
	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("mongo URI is required")
	}

	clientOpts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetMaxPoolSize(uint64(cfg.MaxConnections))

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	repo := newMongoBookingRepository(client.Database(cfg.MongoDatabase).Collection(cfg.MongoCollection), logger)

	if err := repo.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"database":   cfg.MongoDatabase,
		"collection": cfg.MongoCollection,
	}).Info("Connected to MongoDB")

	return repo, nil
}

func newMongoBookingRepository(collection *mongo.Collection, logger *logrus.Logger) *MongoBookingRepository {
	return &MongoBookingRepository{
		client:     collection.Database().Client(),
		collection: collection,
		logger:     logger,
	}
}

func (r *MongoBookingRepository) ensureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "ticketNumber", Value: 1}},
		Options: options.Index().SetUnique(true).SetName(ticketIndexName),
	})
	if err != nil {
		return fmt.Errorf("failed to create ticket number index: %w", err)
	}
	return nil
}

// Create inserts a booking document
func (r *MongoBookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	if booking == nil {
		return fmt.Errorf("booking cannot be nil")
	}

	if _, err := r.collection.InsertOne(ctx, booking); err != nil {
		return translateMongoError("failed to create booking", err)
	}
	return nil
}

// CreateMany inserts a batch with an ordered insert. The batch stops at the
// first failing document; documents before it stay stored and are reported
// through *PartialInsertError.
func (r *MongoBookingRepository) CreateMany(ctx context.Context, bookings []*models.Booking) error {
	if len(bookings) == 0 {
		return nil
	}

	docs := make([]interface{}, len(bookings))
	for i, b := range bookings {
		docs[i] = b
	}

	_, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	if err == nil {
		return nil
	}

	var bulkErr mongo.BulkWriteException
	if !errors.As(err, &bulkErr) || len(bulkErr.WriteErrors) == 0 {
		return translateMongoError("failed to insert booking batch", err)
	}

	first := bulkErr.WriteErrors[0]
	failed := translateMongoError(
		fmt.Sprintf("failed to insert booking batch at document %d", first.Index),
		mongo.WriteException{WriteErrors: mongo.WriteErrors{first.WriteError}},
	)
	if first.Index == 0 {
		return failed
	}

	r.logger.WithFields(logrus.Fields{
		"inserted": first.Index,
		"total":    len(bookings),
	}).Warn("Booking batch partially stored")
	return &PartialInsertError{Inserted: first.Index, Err: failed}
}

// GetAll returns every booking document in natural order
func (r *MongoBookingRepository) GetAll(ctx context.Context) ([]*models.Booking, error) {
	cursor, err := r.collection.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to get bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []*models.Booking{}
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

// GetByTicketNumber finds a booking by ticket number
func (r *MongoBookingRepository) GetByTicketNumber(ctx context.Context, ticketNumber string) (*models.Booking, error) {
	var booking models.Booking
	err := r.collection.FindOne(ctx, bson.D{{Key: "ticketNumber", Value: ticketNumber}}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get booking by ticket number: %w", err)
	}
	return &booking, nil
}

// Ping checks the primary is reachable
func (r *MongoBookingRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, nil)
}

// Close disconnects the client
func (r *MongoBookingRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

// translateMongoError maps duplicates on the ticket index to ErrDuplicateTicket.
// Other duplicate keys, such as _id, stay plain errors.
func translateMongoError(msg string, err error) error {
	if mongo.IsDuplicateKeyError(err) && strings.Contains(err.Error(), ticketIndexName) {
		return fmt.Errorf("%s: %w", msg, ErrDuplicateTicket)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
