// internal/services/auth_service_test.go
package services

import (
	"github.com/bangazon/bangazon-backend/internal/testutil"
	"github.com/bangazon/bangazon-backend/internal/utils"
)

func (suite *ServiceTestSuite) registerRequest() *RegisterRequest {
	return &RegisterRequest{
		Username:  "shopper",
		Email:     "Shopper@Example.com",
		Password:  "Str0ng-Password!",
		FirstName: "Pat",
		LastName:  "Shopper",
	}
}

func (suite *ServiceTestSuite) TestRegisterAndLogin() {
	registered, err := suite.authService.Register(suite.ctx, suite.registerRequest())
	suite.Require().NoError(err)
	suite.Equal("shopper@example.com", registered.User.Email)
	suite.Equal("Bearer", registered.TokenType)
	suite.Equal(3600, registered.ExpiresIn)

	utils.SetJWTSecret(suite.cfg.JWT.SecretKey)
	claims, err := utils.ValidateJWT(registered.AccessToken)
	suite.Require().NoError(err)
	suite.Equal(registered.User.ID.String(), claims.UserID)

	loggedIn, err := suite.authService.Login(suite.ctx, &LoginRequest{
		Email:    "SHOPPER@example.com",
		Password: "Str0ng-Password!",
	})
	suite.Require().NoError(err)
	suite.Equal(registered.User.ID, loggedIn.User.ID)
}

func (suite *ServiceTestSuite) TestRegisterDuplicate() {
	_, err := suite.authService.Register(suite.ctx, suite.registerRequest())
	suite.Require().NoError(err)

	_, err = suite.authService.Register(suite.ctx, suite.registerRequest())
	suite.ErrorIs(err, ErrUserExists)
}

func (suite *ServiceTestSuite) TestLoginWrongPassword() {
	_, err := suite.authService.Register(suite.ctx, suite.registerRequest())
	suite.Require().NoError(err)

	_, err = suite.authService.Login(suite.ctx, &LoginRequest{Email: "shopper@example.com", Password: "wrong"})
	suite.ErrorIs(err, ErrInvalidCredentials)

	_, err = suite.authService.Login(suite.ctx, &LoginRequest{Email: "nobody@example.com", Password: "wrong"})
	suite.ErrorIs(err, ErrInvalidCredentials)
}

func (suite *ServiceTestSuite) TestGetUser() {
	registered, err := suite.authService.Register(suite.ctx, suite.registerRequest())
	suite.Require().NoError(err)

	user, err := suite.authService.GetUser(suite.ctx, registered.User.ID)
	suite.Require().NoError(err)
	suite.Equal("Pat Shopper", user.DisplayName())

	_, err = suite.authService.GetUser(suite.ctx, testutil.MissingID())
	suite.ErrorIs(err, ErrNotFound)
}
