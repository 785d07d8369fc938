// internal/services/order_service_test.go
package services

import (
	"errors"
	"sync"

	"github.com/bangazon/bangazon-backend/internal/models"
	"github.com/bangazon/bangazon-backend/internal/testutil"
)

type orderFixture struct {
	seller      *models.User
	shopper     *models.User
	paymentType *models.PaymentType
	lamp        *models.Product
	chair       *models.Product
}

func (suite *ServiceTestSuite) newOrderFixture() orderFixture {
	seller := testutil.CreateUser(suite.T(), suite.db, "seller")
	shopper := testutil.CreateUser(suite.T(), suite.db, "shopper")
	productType := testutil.CreateProductType(suite.T(), suite.db, "Home")

	return orderFixture{
		seller:      seller,
		shopper:     shopper,
		paymentType: testutil.CreatePaymentType(suite.T(), suite.db, shopper, "Visa"),
		lamp:        testutil.CreateProduct(suite.T(), suite.db, seller, productType, "Lamp", testutil.WithPrice("19.99")),
		chair:       testutil.CreateProduct(suite.T(), suite.db, seller, productType, "Chair", testutil.WithPrice("45.50")),
	}
}

func (suite *ServiceTestSuite) TestOpenOrderIsInCartNotCompleted() {
	f := suite.newOrderFixture()
	order := testutil.CreateCart(suite.T(), suite.db, f.shopper, f.lamp, f.chair)

	cart, err := suite.orderService.GetCart(suite.ctx, f.shopper.ID)
	suite.Require().NoError(err)
	suite.Require().Len(cart, 1)
	suite.Equal(order.ID, cart[0].ID)
	suite.Equal(models.OrderStatusOpen, cart[0].Status)
	suite.Len(cart[0].OrderProducts, 2)
	suite.Equal("65.49", cart[0].Total.StringFixed(2))

	completed, err := suite.orderService.ListCompletedOrders(suite.ctx, f.shopper.ID)
	suite.Require().NoError(err)
	suite.Empty(completed)
}

func (suite *ServiceTestSuite) TestCartNeverShowsOtherUsersOrders() {
	f := suite.newOrderFixture()
	testutil.CreateCart(suite.T(), suite.db, f.seller, f.lamp)

	cart, err := suite.orderService.GetCart(suite.ctx, f.shopper.ID)
	suite.Require().NoError(err)
	suite.Empty(cart)
}

func (suite *ServiceTestSuite) TestGetOrderOwnership() {
	f := suite.newOrderFixture()
	order := testutil.CreateCart(suite.T(), suite.db, f.shopper, f.lamp)

	view, err := suite.orderService.GetOrder(suite.ctx, f.shopper.ID, order.ID)
	suite.Require().NoError(err)
	suite.Require().Len(view.OrderProducts, 1)
	suite.Equal("Lamp", view.OrderProducts[0].Product.Title)

	_, err = suite.orderService.GetOrder(suite.ctx, f.seller.ID, order.ID)
	suite.ErrorIs(err, ErrNotFound)

	_, err = suite.orderService.GetOrder(suite.ctx, f.shopper.ID, testutil.MissingID())
	suite.ErrorIs(err, ErrNotFound)
}

func (suite *ServiceTestSuite) TestCheckoutFormListsOwnPaymentTypes() {
	f := suite.newOrderFixture()
	testutil.CreatePaymentType(suite.T(), suite.db, f.seller, "Amex")
	order := testutil.CreateCart(suite.T(), suite.db, f.shopper, f.lamp)

	form, err := suite.orderService.GetCheckoutForm(suite.ctx, f.shopper.ID, order.ID)
	suite.Require().NoError(err)
	suite.Require().Len(form.PaymentTypes, 1)
	suite.Equal(f.paymentType.ID.String(), form.PaymentTypes[0].Value)
	suite.Equal("Visa ****1111", form.PaymentTypes[0].Label)
	suite.Equal(order.ID, form.Order.ID)
}

func (suite *ServiceTestSuite) TestCheckoutFormForCompletedOrderIsNotFound() {
	f := suite.newOrderFixture()
	order := testutil.CreateCompletedOrder(suite.T(), suite.db, f.shopper, f.paymentType, f.lamp)

	_, err := suite.orderService.GetCheckoutForm(suite.ctx, f.shopper.ID, order.ID)
	suite.ErrorIs(err, ErrNotFound)
}

func (suite *ServiceTestSuite) TestCheckoutCompletesOrder() {
	f := suite.newOrderFixture()
	order := testutil.CreateCart(suite.T(), suite.db, f.shopper, f.lamp)

	view, err := suite.orderService.Checkout(suite.ctx, f.shopper.ID, order.ID, &CheckoutRequest{PaymentTypeID: f.paymentType.ID.String()})
	suite.Require().NoError(err)

	suite.Equal(models.OrderStatusCompleted, view.Status)
	suite.Require().NotNil(view.PaymentTypeID)
	suite.Equal(f.paymentType.ID, *view.PaymentTypeID)
	suite.Require().NotNil(view.DateCompleted)
	suite.Equal(f.shopper.ID, view.UserID)

	completed, err := suite.orderService.ListCompletedOrders(suite.ctx, f.shopper.ID)
	suite.Require().NoError(err)
	suite.Require().Len(completed, 1)
	suite.NotNil(completed[0].PaymentType)

	cart, err := suite.orderService.GetCart(suite.ctx, f.shopper.ID)
	suite.Require().NoError(err)
	suite.Empty(cart)
}

func (suite *ServiceTestSuite) TestCheckoutWithoutPaymentTypeLeavesOrderOpen() {
	f := suite.newOrderFixture()
	order := testutil.CreateCart(suite.T(), suite.db, f.shopper, f.lamp)

	_, err := suite.orderService.Checkout(suite.ctx, f.shopper.ID, order.ID, &CheckoutRequest{})

	var validationErr *ValidationError
	suite.Require().True(errors.As(err, &validationErr))
	suite.Equal("payment_type_id", validationErr.Fields[0].Field)

	var stored models.Order
	suite.Require().NoError(suite.db.First(&stored, "id = ?", order.ID).Error)
	suite.True(stored.IsOpen())
	suite.Nil(stored.DateCompleted)
}

func (suite *ServiceTestSuite) TestCheckoutWithSomeoneElsesPaymentType() {
	f := suite.newOrderFixture()
	foreign := testutil.CreatePaymentType(suite.T(), suite.db, f.seller, "Amex")
	order := testutil.CreateCart(suite.T(), suite.db, f.shopper, f.lamp)

	_, err := suite.orderService.Checkout(suite.ctx, f.shopper.ID, order.ID, &CheckoutRequest{PaymentTypeID: foreign.ID.String()})

	var validationErr *ValidationError
	suite.Require().True(errors.As(err, &validationErr))

	var stored models.Order
	suite.Require().NoError(suite.db.First(&stored, "id = ?", order.ID).Error)
	suite.True(stored.IsOpen())
}

func (suite *ServiceTestSuite) TestCheckoutGuardOrder() {
	f := suite.newOrderFixture()
	order := testutil.CreateCart(suite.T(), suite.db, f.shopper, f.lamp)

	// Someone else's order is not found even with a bad payload
	_, err := suite.orderService.Checkout(suite.ctx, f.seller.ID, order.ID, &CheckoutRequest{})
	suite.ErrorIs(err, ErrNotFound)

	// A completed order is not found once the payment type is valid
	completed := testutil.CreateCompletedOrder(suite.T(), suite.db, f.shopper, f.paymentType, f.chair)
	_, err = suite.orderService.Checkout(suite.ctx, f.shopper.ID, completed.ID, &CheckoutRequest{})
	var validationErr *ValidationError
	suite.True(errors.As(err, &validationErr))

	_, err = suite.orderService.Checkout(suite.ctx, f.shopper.ID, completed.ID, &CheckoutRequest{PaymentTypeID: f.paymentType.ID.String()})
	suite.ErrorIs(err, ErrNotFound)
}

func (suite *ServiceTestSuite) TestCheckoutCompletesExactlyOnce() {
	f := suite.newOrderFixture()
	order := testutil.CreateCart(suite.T(), suite.db, f.shopper, f.lamp)
	req := &CheckoutRequest{PaymentTypeID: f.paymentType.ID.String()}

	const attempts = 5
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := suite.orderService.Checkout(suite.ctx, f.shopper.ID, order.ID, req); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	suite.Equal(1, successes)

	var stored models.Order
	suite.Require().NoError(suite.db.First(&stored, "id = ?", order.ID).Error)
	suite.True(stored.IsCompleted())
	suite.Equal(2, stored.Version)
}

func (suite *ServiceTestSuite) TestDeleteOpenOrderRemovesLineItems() {
	f := suite.newOrderFixture()
	order := testutil.CreateCart(suite.T(), suite.db, f.shopper, f.lamp, f.chair)

	suite.Require().NoError(suite.orderService.DeleteOrder(suite.ctx, f.shopper.ID, order.ID))

	var orders, items int64
	suite.db.Model(&models.Order{}).Where("id = ?", order.ID).Count(&orders)
	suite.db.Model(&models.OrderProduct{}).Where("order_id = ?", order.ID).Count(&items)
	suite.Zero(orders)
	suite.Zero(items)

	// Products survive and can now be deleted by the seller
	result, err := suite.productService.DeleteProduct(suite.ctx, f.seller.ID, f.lamp.ID)
	suite.Require().NoError(err)
	suite.Equal(DeleteOutcomeDeleted, result.Outcome)
}

func (suite *ServiceTestSuite) TestDeleteOrderRules() {
	f := suite.newOrderFixture()
	open := testutil.CreateCart(suite.T(), suite.db, f.shopper, f.lamp)
	completed := testutil.CreateCompletedOrder(suite.T(), suite.db, f.shopper, f.paymentType, f.chair)

	suite.ErrorIs(suite.orderService.DeleteOrder(suite.ctx, f.seller.ID, open.ID), ErrNotFound)
	suite.ErrorIs(suite.orderService.DeleteOrder(suite.ctx, f.shopper.ID, completed.ID), ErrNotFound)
	suite.ErrorIs(suite.orderService.DeleteOrder(suite.ctx, f.shopper.ID, testutil.MissingID()), ErrNotFound)

	var count int64
	suite.db.Model(&models.Order{}).Count(&count)
	suite.EqualValues(2, count)
}

func (suite *ServiceTestSuite) TestListPaymentTypesOnlyOwn() {
	f := suite.newOrderFixture()
	testutil.CreatePaymentType(suite.T(), suite.db, f.seller, "Amex")

	paymentTypes, err := suite.paymentTypeService.ListPaymentTypes(suite.ctx, f.shopper.ID)
	suite.Require().NoError(err)
	suite.Require().Len(paymentTypes, 1)
	suite.Equal("Visa", paymentTypes[0].PaymentMethod)
}
