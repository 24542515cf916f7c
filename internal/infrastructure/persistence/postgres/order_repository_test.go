package postgres_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/tiendazen/payment-service/internal/application/services/testhelpers"
	"github.com/tiendazen/payment-service/internal/domain"
	"github.com/tiendazen/payment-service/internal/infrastructure/persistence/postgres"
)

type OrderRepositoryTestSuite struct {
	suite.Suite
	testDB *testhelpers.TestDatabase
	repo   *postgres.OrderRepository
}

func TestOrderRepositorySuite(t *testing.T) {
	suite.Run(t, new(OrderRepositoryTestSuite))
}

func (suite *OrderRepositoryTestSuite) SetupSuite() {
	suite.testDB = testhelpers.SetupTestDatabase(suite.T())
	suite.repo = postgres.NewOrderRepository(suite.testDB.DB)
}

func (suite *OrderRepositoryTestSuite) TearDownSuite() {
	suite.testDB.Cleanup(suite.T())
}

func (suite *OrderRepositoryTestSuite) SetupTest() {
	suite.testDB.CleanTables(suite.T())
}

func (suite *OrderRepositoryTestSuite) newPendingOrder() *domain.Order {
	order, err := domain.NewOrder("tz", 12990, []domain.LineItem{
		{ProductID: "p-1", Name: "Mate gourd", UnitPrice: 5990, Quantity: 1},
		{ProductID: "p-2", Name: "Yerba 1kg", UnitPrice: 3500, Quantity: 2},
	}, nil, domain.MinPayableAmount)
	suite.Require().NoError(err)
	return order
}

func (suite *OrderRepositoryTestSuite) TestCreateAndFind() {
	ctx := context.Background()
	order := suite.newPendingOrder()

	suite.Require().NoError(suite.repo.Create(ctx, order))

	found, err := suite.repo.FindByCommerceOrderID(ctx, order.CommerceOrderID)
	suite.Require().NoError(err)
	suite.Equal(order.CommerceOrderID, found.CommerceOrderID)
	suite.Equal(domain.StatusPending, found.Status)
	suite.Equal(int64(12990), found.TotalAmount)
	suite.Require().Len(found.LineItems, 2)
	// Line item order from checkout is preserved.
	suite.Equal("p-1", found.LineItems[0].ProductID)
	suite.Equal("p-2", found.LineItems[1].ProductID)
}

func (suite *OrderRepositoryTestSuite) TestCreate_DuplicateIsClassified() {
	ctx := context.Background()
	order := suite.newPendingOrder()
	suite.Require().NoError(suite.repo.Create(ctx, order))

	err := suite.repo.Create(ctx, order)
	suite.True(domain.IsErrorCode(err, domain.ErrCodeDuplicateOrder))
}

func (suite *OrderRepositoryTestSuite) TestFindByToken() {
	ctx := context.Background()
	order := suite.newPendingOrder()
	suite.Require().NoError(suite.repo.Create(ctx, order))

	suite.Require().NoError(suite.repo.SetGatewayToken(ctx, order.CommerceOrderID, "tok-abc"))

	found, err := suite.repo.FindByToken(ctx, "tok-abc")
	suite.Require().NoError(err)
	suite.Equal(order.CommerceOrderID, found.CommerceOrderID)

	_, err = suite.repo.FindByToken(ctx, "tok-unknown")
	suite.True(domain.IsErrorCode(err, domain.ErrCodeOrderNotFound))
	suite.Contains(err.Error(), "gateway token")
}

func (suite *OrderRepositoryTestSuite) TestTransition_PendingToPaid() {
	ctx := context.Background()
	order := suite.newPendingOrder()
	suite.Require().NoError(suite.repo.Create(ctx, order))

	updated, err := suite.repo.Transition(ctx, order.CommerceOrderID, domain.StatusPaid)
	suite.Require().NoError(err)
	suite.Equal(domain.StatusPaid, updated.Status)
	suite.Require().Len(updated.LineItems, 2)
}

func (suite *OrderRepositoryTestSuite) TestTransition_RepeatIsNoOp() {
	ctx := context.Background()
	order := suite.newPendingOrder()
	suite.Require().NoError(suite.repo.Create(ctx, order))

	first, err := suite.repo.Transition(ctx, order.CommerceOrderID, domain.StatusPaid)
	suite.Require().NoError(err)

	second, err := suite.repo.Transition(ctx, order.CommerceOrderID, domain.StatusPaid)
	suite.Require().NoError(err)
	suite.Equal(domain.StatusPaid, second.Status)
	suite.Equal(first.UpdatedAt, second.UpdatedAt, "no-op must not touch the row")
}

func (suite *OrderRepositoryTestSuite) TestTransition_Conflict() {
	ctx := context.Background()
	order := suite.newPendingOrder()
	suite.Require().NoError(suite.repo.Create(ctx, order))

	_, err := suite.repo.Transition(ctx, order.CommerceOrderID, domain.StatusPaid)
	suite.Require().NoError(err)

	_, err = suite.repo.Transition(ctx, order.CommerceOrderID, domain.StatusFailed)
	suite.True(domain.IsErrorCode(err, domain.ErrCodeStatusConflict))

	current, err := suite.repo.FindByCommerceOrderID(ctx, order.CommerceOrderID)
	suite.Require().NoError(err)
	suite.Equal(domain.StatusPaid, current.Status)
}

func (suite *OrderRepositoryTestSuite) TestTransition_NotFound() {
	_, err := suite.repo.Transition(context.Background(), "tz_0_missing", domain.StatusPaid)
	suite.True(domain.IsErrorCode(err, domain.ErrCodeOrderNotFound))
}

func (suite *OrderRepositoryTestSuite) TestTransition_ConcurrentWriters() {
	ctx := context.Background()
	order := suite.newPendingOrder()
	suite.Require().NoError(suite.repo.Create(ctx, order))

	const writers = 6
	var wg sync.WaitGroup
	errs := make(chan error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := suite.repo.Transition(ctx, order.CommerceOrderID, domain.StatusPaid)
			errs <- err
		}()
	}

	wg.Wait()
	close(errs)

	// Every writer observes either the real transition or the
	// idempotent no-op; none errors.
	for err := range errs {
		suite.NoError(err)
	}

	current, err := suite.repo.FindByCommerceOrderID(ctx, order.CommerceOrderID)
	suite.Require().NoError(err)
	suite.Equal(domain.StatusPaid, current.Status)
	suite.WithinDuration(time.Now(), current.UpdatedAt, time.Minute)
}
