package postgres

import (
	"context"
	"testing"

	"toutaunclicla/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	return db, mock
}

func TestOrdersRepository_Reserve_StockConflictRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrdersRepository(db)

	productID := uuid.New()
	order := &domain.Order{
		ID:     uuid.New(),
		Status: domain.OrderPending,
		Items: []domain.OrderItem{
			{ProductID: productID, ProductName: "Mug", Quantity: 2, UnitPrice: decimal.RequireFromString("20.00")},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "productos" SET "stock"=stock - \$1 WHERE id = \$2 AND stock >= \$3`).
		WithArgs(2, productID, 2).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT "stock" FROM "productos" WHERE id = \$1`).
		WithArgs(productID).
		WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(1))
	mock.ExpectRollback()

	err := repo.Reserve(context.Background(), order)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	var de *domain.Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, 1, de.Details["available"])
	assert.Equal(t, 2, de.Details["requested"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrdersRepository_Reserve_InsertsOrderAndItems(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrdersRepository(db)

	productID := uuid.New()
	order := &domain.Order{
		ID:             uuid.New(),
		UserID:         uuid.New(),
		AddressID:      uuid.New(),
		Status:         domain.OrderPending,
		Subtotal:       decimal.RequireFromString("60.00"),
		Total:          decimal.RequireFromString("60.00"),
		IdempotencyKey: "key-1",
		Items: []domain.OrderItem{
			{ProductID: productID, ProductName: "Mug", Quantity: 3, UnitPrice: decimal.RequireFromString("20.00")},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "productos" SET "stock"=stock - \$1 WHERE id = \$2 AND stock >= \$3`).
		WithArgs(3, productID, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "pedidos"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "detalles_pedido"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Reserve(context.Background(), order))
	assert.Equal(t, order.ID, order.Items[0].OrderID)
	assert.NotEqual(t, uuid.Nil, order.Items[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrdersRepository_Confirm_NotPending(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrdersRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "pedidos" SET .* WHERE id = \$\d+ AND estado = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Confirm(context.Background(), uuid.New(), uuid.New(), "pi_123")
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrdersRepository_Release_RestoresStock(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrdersRepository(db)

	p1, p2 := uuid.New(), uuid.New()
	order := domain.Order{
		ID: uuid.New(),
		Items: []domain.OrderItem{
			{ProductID: p1, Quantity: 2},
			{ProductID: p2, Quantity: 1},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "pedidos" SET .* WHERE id = \$\d+ AND estado = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "productos" SET "stock"=stock \+ \$1 WHERE id = \$2`).
		WithArgs(2, p1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "productos" SET "stock"=stock \+ \$1 WHERE id = \$2`).
		WithArgs(1, p2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Release(context.Background(), order))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCouponRepository_FindByCode_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCouponRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "cupones" WHERE UPPER\(codigo\) = \$1 AND activo = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByCode(context.Background(), " save10 ")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepository_Upsert_AddsQuantityOnConflict(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCartRepository(db)

	mock.ExpectExec(`INSERT INTO "carrito" .* ON CONFLICT \("usuario_id","producto_id"\) DO UPDATE SET .*carrito\.cantidad \+ excluded\.cantidad`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	item := &domain.CartItem{UserID: uuid.New(), ProductID: uuid.New(), Quantity: 2}
	require.NoError(t, repo.Upsert(context.Background(), item))
	assert.NotEqual(t, uuid.Nil, item.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepository_Delete_NotOwned(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCartRepository(db)

	mock.ExpectExec(`DELETE FROM "carrito" WHERE id = \$1 AND usuario_id = \$2`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), uuid.New(), uuid.New())
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddressRepository_SetDefault_SingleTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAddressRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "direcciones" SET .* WHERE usuario_id = \$\d+ AND predeterminada = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "direcciones" SET .* WHERE id = \$\d+ AND usuario_id = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.SetDefault(context.Background(), uuid.New(), uuid.New()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddressRepository_SetDefault_UnknownAddressRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAddressRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "direcciones" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "direcciones" SET`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.SetDefault(context.Background(), uuid.New(), uuid.New())
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByEmail_Lowercases(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	id := uuid.New()
	mock.ExpectQuery(`SELECT \* FROM "usuarios" WHERE email = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "nombre", "email", "rol"}).
			AddRow(id.String(), "Ana", "ana@example.com", domain.RoleCustomer))

	user, err := repo.FindByEmail(context.Background(), "Ana@Example.com")
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, "Ana", user.FullName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Update_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	mock.ExpectExec(`UPDATE "productos" SET`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &domain.Product{ID: uuid.New(), Name: "x"})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddressRepository_FindByUser_Paginates(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAddressRepository(db)
	user := uuid.New()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "direcciones" WHERE usuario_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectQuery(`SELECT \* FROM "direcciones" WHERE usuario_id = \$1 ORDER BY predeterminada DESC, creado_en DESC LIMIT .* OFFSET .*`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "usuario_id"}).
			AddRow(uuid.NewString(), user.String()).
			AddRow(uuid.NewString(), user.String()))

	addresses, total, err := repo.FindByUser(context.Background(), user, domain.NewPageRequest(2, 2))
	require.NoError(t, err)
	assert.Len(t, addresses, 2)
	assert.Equal(t, int64(5), total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
