package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labelflow/internal/domain"
	"labelflow/internal/errors"
	"labelflow/internal/testutil"
)

// Unit Tests

func TestNewMySQLOrderRepository(t *testing.T) {
	db := &sql.DB{}
	repo := NewMySQLOrderRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

func TestMarshalJSON_NilSliceUsesEmpty(t *testing.T) {
	var files []domain.Attachment

	s, err := marshalJSON(files, "[]")
	require.NoError(t, err)
	assert.Equal(t, "[]", s)

	s, err = marshalJSON([]domain.Attachment{{Name: "a", URL: "u"}}, "[]")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"a","url":"u"}]`, s)
}

// Integration Tests

func newTestOrder() *domain.Order {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &domain.Order{
		ID:              uuid.NewString(),
		ReferenceNumber: "R-100",
		OrderName:       "Winter",
		LabelType:       "woven",
		CustomerEmail:   "c@x.com",
		OrderDetails:    "500 labels",
		Status:          domain.StageOrderDetails,
		Files:           []domain.Attachment{{Name: "art.pdf", URL: "https://cdn/art.pdf"}},
		CreatedBy:       "user-1",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func TestOrderRepository_InsertAndFind(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLOrderRepository(db)
	order := newTestOrder()

	require.NoError(t, repo.Insert(context.Background(), order))

	found, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ReferenceNumber, found.ReferenceNumber)
	assert.Equal(t, order.OrderName, found.OrderName)
	assert.Equal(t, domain.StageOrderDetails, found.Status)
	assert.Equal(t, order.Files, found.Files)
	assert.Equal(t, "user-1", found.CreatedBy)
}

func TestOrderRepository_FindByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLOrderRepository(db)

	order, err := repo.FindByID(context.Background(), "missing")
	assert.Error(t, err)
	assert.Nil(t, order)

	nfe, ok := errors.IsNotFoundError(err)
	assert.True(t, ok)
	assert.NotNil(t, nfe)
}

func TestOrderRepository_List_NewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLOrderRepository(db)

	older := newTestOrder()
	older.CreatedAt = older.CreatedAt.Add(-time.Hour)
	newer := newTestOrder()
	require.NoError(t, repo.Insert(context.Background(), older))
	require.NoError(t, repo.Insert(context.Background(), newer))

	orders, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, newer.ID, orders[0].ID)
	assert.Equal(t, older.ID, orders[1].ID)
}

func TestOrderRepository_UpdateStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLOrderRepository(db)
	order := newTestOrder()
	require.NoError(t, repo.Insert(context.Background(), order))

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	err = repo.UpdateStatus(context.Background(), tx, order.ID, domain.StageSampling, time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	found, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StageSampling, found.Status)
}

func TestOrderRepository_UpdateStatus_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLOrderRepository(db)

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	defer tx.Rollback()

	err = repo.UpdateStatus(context.Background(), tx, "missing", domain.StageSampling, time.Now().UTC())

	_, ok := errors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestOrderRepository_Delete_CascadesSubRecords(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	ctx := context.Background()
	orders := NewMySQLOrderRepository(db)
	stages := NewMySQLStageRepository(db)
	emails := NewMySQLEmailLogRepository(db)

	order := newTestOrder()
	require.NoError(t, orders.Insert(ctx, order))

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, stages.Insert(ctx, tx, &domain.StageRecord{
		ID: uuid.NewString(), OrderID: order.ID, Kind: domain.StageSampling, Version: 1,
		CreatedAt: order.CreatedAt, UpdatedAt: order.CreatedAt,
	}))
	require.NoError(t, tx.Commit())
	require.NoError(t, emails.Append(ctx, domain.EmailEvent{
		ID: uuid.NewString(), OrderID: order.ID, Type: domain.EmailTypeStage, Stage: domain.StageOrderDetails,
		SentAt: order.CreatedAt,
	}))

	tx, err = db.BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, orders.Delete(ctx, tx, order.ID))
	require.NoError(t, tx.Commit())

	records, err := stages.FindByOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Empty(t, records)

	events, err := emails.ListByOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Empty(t, events)
}
