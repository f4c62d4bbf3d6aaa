package database

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/smarttransit/bus-booking/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const (
	duplicateKeyCode = 11000
	ticketDupMessage = `E11000 duplicate key error collection: bus.bookings index: ticketNumber_unique dup key: { ticketNumber: "TICKET-100002" }`
	idDupMessage     = `E11000 duplicate key error collection: bus.bookings index: _id_ dup key: { _id: "b-1" }`
)

func newMockMongoRepository(mt *mtest.T) (*MongoBookingRepository, *test.Hook) {
	logger, hook := test.NewNullLogger()
	return newMongoBookingRepository(mt.Coll, logger), hook
}

func namespace(mt *mtest.T) string {
	return mt.Coll.Database().Name() + "." + mt.Coll.Name()
}

func TestMongoBookingRepository_Create(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("stored", func(mt *mtest.T) {
		repo, _ := newMockMongoRepository(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		assert.NoError(mt, repo.Create(context.Background(), sampleBooking("TICKET-100001")))
	})

	mt.Run("duplicate ticket number", func(mt *mtest.T) {
		repo, _ := newMockMongoRepository(mt)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: duplicateKeyCode, Message: ticketDupMessage,
		}))

		err := repo.Create(context.Background(), sampleBooking("TICKET-100002"))
		assert.ErrorIs(mt, err, ErrDuplicateTicket)
	})

	mt.Run("duplicate id is not a ticket conflict", func(mt *mtest.T) {
		repo, _ := newMockMongoRepository(mt)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: duplicateKeyCode, Message: idDupMessage,
		}))

		err := repo.Create(context.Background(), sampleBooking("TICKET-100003"))
		require.Error(mt, err)
		assert.NotErrorIs(mt, err, ErrDuplicateTicket)
	})
}

func TestMongoBookingRepository_CreateMany(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	batch := func() []*models.Booking {
		return []*models.Booking{
			sampleBooking("TICKET-100001"),
			sampleBooking("TICKET-100002"),
			sampleBooking("TICKET-100003"),
		}
	}

	mt.Run("stored", func(mt *mtest.T) {
		repo, _ := newMockMongoRepository(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 3}))

		assert.NoError(mt, repo.CreateMany(context.Background(), batch()))
	})

	mt.Run("prefix stored before duplicate", func(mt *mtest.T) {
		repo, hook := newMockMongoRepository(mt)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 1, Code: duplicateKeyCode, Message: ticketDupMessage,
		}))

		err := repo.CreateMany(context.Background(), batch())
		require.Error(mt, err)
		assert.ErrorIs(mt, err, ErrDuplicateTicket)

		var partial *PartialInsertError
		require.True(mt, errors.As(err, &partial))
		assert.Equal(mt, 1, partial.Inserted)

		entry := hook.LastEntry()
		require.NotNil(mt, entry)
		assert.Equal(mt, logrus.WarnLevel, entry.Level)
		assert.Equal(mt, 1, entry.Data["inserted"])
		assert.Equal(mt, 3, entry.Data["total"])
	})

	mt.Run("first document fails", func(mt *mtest.T) {
		repo, _ := newMockMongoRepository(mt)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: duplicateKeyCode, Message: ticketDupMessage,
		}))

		err := repo.CreateMany(context.Background(), batch())
		assert.ErrorIs(mt, err, ErrDuplicateTicket)

		var partial *PartialInsertError
		assert.False(mt, errors.As(err, &partial))
	})

	mt.Run("command error", func(mt *mtest.T) {
		repo, _ := newMockMongoRepository(mt)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code: 13, Name: "Unauthorized", Message: "not authorized",
		}))

		err := repo.CreateMany(context.Background(), batch())
		require.Error(mt, err)
		assert.NotErrorIs(mt, err, ErrDuplicateTicket)
	})
}

func TestMongoBookingRepository_GetByTicketNumber(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		repo, _ := newMockMongoRepository(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "b-1"},
			{Key: "seats", Value: 2},
			{Key: "departure", Value: "City A"},
			{Key: "arrival", Value: "City B"},
			{Key: "ticketNumber", Value: "TICKET-100001"},
			{Key: "paymentId", Value: "pay_1"},
		}))

		got, err := repo.GetByTicketNumber(context.Background(), "TICKET-100001")
		require.NoError(mt, err)
		assert.Equal(mt, "b-1", got.ID)
		assert.Equal(mt, 2, got.Seats)
		assert.Equal(mt, "pay_1", got.PaymentID)
	})

	mt.Run("not found", func(mt *mtest.T) {
		repo, _ := newMockMongoRepository(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch))

		_, err := repo.GetByTicketNumber(context.Background(), "TICKET-999999")
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}

func TestMongoBookingRepository_GetAll(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("documents in order", func(mt *mtest.T) {
		repo, _ := newMockMongoRepository(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "b-1"}, {Key: "ticketNumber", Value: "TICKET-100001"}},
			bson.D{{Key: "_id", Value: "b-2"}, {Key: "ticketNumber", Value: "TICKET-100002"}},
		))

		all, err := repo.GetAll(context.Background())
		require.NoError(mt, err)
		require.Len(mt, all, 2)
		assert.Equal(mt, "TICKET-100001", all[0].TicketNumber)
		assert.Equal(mt, "TICKET-100002", all[1].TicketNumber)
	})

	mt.Run("empty collection", func(mt *mtest.T) {
		repo, _ := newMockMongoRepository(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch))

		all, err := repo.GetAll(context.Background())
		require.NoError(mt, err)
		assert.NotNil(mt, all)
		assert.Empty(mt, all)
	})
}
