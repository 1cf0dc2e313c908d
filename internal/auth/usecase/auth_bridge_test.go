package usecase_test

import (
	"context"
	"io"
	"testing"

	"workly-web/internal/auth/domain/model"
	"workly-web/internal/auth/usecase"
	sessionmodel "workly-web/internal/session/domain/model"
	apperrors "workly-web/internal/shared/errors"
	"workly-web/internal/shared/logger"
	"workly-web/internal/shared/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// Mock Workly auth API
type mockAuthAPI struct {
	mock.Mock
}

func (m *mockAuthAPI) Login(ctx context.Context, email, password string) (*model.Exchange, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Exchange), args.Error(1)
}

func (m *mockAuthAPI) Signup(ctx context.Context, name, email, password string) (*model.Exchange, error) {
	args := m.Called(ctx, name, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Exchange), args.Error(1)
}

// Mock session writer
type mockSessionWriter struct {
	mock.Mock
}

func (m *mockSessionWriter) Set(ctx context.Context, session *sessionmodel.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

type recordingNavigator struct {
	paths []string
}

func (n *recordingNavigator) Push(path string) {
	n.paths = append(n.paths, path)
}

type AuthBridgeTestSuite struct {
	suite.Suite
	ctx     context.Context
	api     *mockAuthAPI
	store   *mockSessionWriter
	nav     *recordingNavigator
	metrics *metrics.Metrics
	bridge  *usecase.AuthBridge
}

func (s *AuthBridgeTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.api = &mockAuthAPI{}
	s.store = &mockSessionWriter{}
	s.nav = &recordingNavigator{}
	s.metrics = metrics.New(prometheus.NewRegistry())
	log := logger.NewLoggerFromConfig(&logger.Config{Level: "error"}, io.Discard)
	s.bridge = usecase.NewAuthBridge(s.api, "/organizations", s.metrics, log)
}

func (s *AuthBridgeTestSuite) TearDownTest() {
	s.api.AssertExpectations(s.T())
	s.store.AssertExpectations(s.T())
}

func okExchange() *model.Exchange {
	return &model.Exchange{
		StatusCode: 200,
		JSON:       true,
		Session:    &sessionmodel.Session{ID: "user-1", Name: "Ada", Email: "ada@example.com", Token: "tok"},
	}
}

func (s *AuthBridgeTestSuite) TestLogin_Success() {
	// Arrange
	s.api.On("Login", s.ctx, "ada@example.com", "pw").Return(okExchange(), nil)
	s.store.On("Set", s.ctx, mock.MatchedBy(func(sess *sessionmodel.Session) bool {
		return sess.ID == "user-1" && sess.Token == "tok"
	})).Return(nil)

	// Act
	result := s.bridge.Login(s.ctx, s.store, model.LoginRequest{Email: "ada@example.com", Password: "pw", CallbackURL: "/dashboard/org-1"}, s.nav)

	// Assert
	s.True(result.Success)
	s.Empty(result.Message)
	s.Equal("user-1", result.Session.ID)
	s.Equal("/dashboard/org-1", result.Redirect)
	s.Equal([]string{"/dashboard/org-1"}, s.nav.paths)
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.AuthAttempts.WithLabelValues("login", "success")))
}

func (s *AuthBridgeTestSuite) TestLogin_DefaultAndUnsafeCallback() {
	s.api.On("Login", s.ctx, "a@b.c", "pw").Return(okExchange(), nil).Twice()
	s.store.On("Set", s.ctx, mock.Anything).Return(nil).Twice()

	first := s.bridge.Login(s.ctx, s.store, model.LoginRequest{Email: "a@b.c", Password: "pw"}, s.nav)
	second := s.bridge.Login(s.ctx, s.store, model.LoginRequest{Email: "a@b.c", Password: "pw", CallbackURL: "https://evil.example.com"}, s.nav)

	s.Equal("/organizations", first.Redirect)
	s.Equal("/organizations", second.Redirect)
}

func (s *AuthBridgeTestSuite) TestLogin_PersistFailureStillSucceeds() {
	s.api.On("Login", s.ctx, "a@b.c", "pw").Return(okExchange(), nil)
	s.store.On("Set", s.ctx, mock.Anything).Return(apperrors.NewInfrastructureError("disk full"))

	result := s.bridge.Login(s.ctx, s.store, model.LoginRequest{Email: "a@b.c", Password: "pw"}, s.nav)

	s.True(result.Success)
}

func (s *AuthBridgeTestSuite) TestLogin_Failures() {
	tests := []struct {
		name     string
		exchange *model.Exchange
		err      error
		want     string
	}{
		{"rejected with message", &model.Exchange{StatusCode: 401, JSON: true, Message: "Account locked"}, nil, "Account locked"},
		{"rejected without message", &model.Exchange{StatusCode: 401, JSON: true}, nil, model.MsgInvalidCredentials},
		{"network error", nil, apperrors.ErrBackendUnavailable, model.MsgTryAgain},
		{"non json body", &model.Exchange{StatusCode: 200, JSON: false}, nil, model.MsgTryAgain},
		{"success without user", &model.Exchange{StatusCode: 200, JSON: true}, nil, model.MsgTryAgain},
		{"success with user lacking id", &model.Exchange{StatusCode: 200, JSON: true, Session: &sessionmodel.Session{Name: "x"}}, nil, model.MsgTryAgain},
		{"success without token", &model.Exchange{StatusCode: 200, JSON: true, Session: &sessionmodel.Session{ID: "user-1", Email: "a@b.c"}}, nil, model.MsgTryAgain},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			api := &mockAuthAPI{}
			api.On("Login", s.ctx, "a@b.c", "pw").Return(tt.exchange, tt.err)
			store := &mockSessionWriter{}
			nav := &recordingNavigator{}
			bridge := usecase.NewAuthBridge(api, "/organizations", nil, nil)

			result := bridge.Login(s.ctx, store, model.LoginRequest{Email: "a@b.c", Password: "pw"}, nav)

			s.False(result.Success)
			s.Equal(tt.want, result.Message)
			s.Nil(result.Session)
			s.Empty(nav.paths)
			store.AssertNotCalled(s.T(), "Set", mock.Anything, mock.Anything)
		})
	}
}

func (s *AuthBridgeTestSuite) TestLogin_PanicBecomesFailure() {
	s.api.On("Login", s.ctx, "a@b.c", "pw").Run(func(mock.Arguments) { panic("boom") }).Return(nil, nil)

	result := s.bridge.Login(s.ctx, s.store, model.LoginRequest{Email: "a@b.c", Password: "pw"}, s.nav)

	s.False(result.Success)
	s.Equal(model.MsgTryAgain, result.Message)
}

func (s *AuthBridgeTestSuite) TestSignup_SuccessLogsIn() {
	s.api.On("Signup", s.ctx, "Ada", "ada@example.com", "pw").Return(&model.Exchange{StatusCode: 201, JSON: true}, nil)
	s.api.On("Login", s.ctx, "ada@example.com", "pw").Return(okExchange(), nil)
	s.store.On("Set", s.ctx, mock.Anything).Return(nil)

	result := s.bridge.Signup(s.ctx, s.store, model.SignupRequest{Name: "Ada", Email: "ada@example.com", Password: "pw"}, s.nav)

	s.Equal(model.SignupLoggedIn, result.Outcome())
	s.True(result.Registered)
	s.True(result.LoggedIn)
	s.Equal("/organizations", result.Redirect)
	s.Equal([]string{"/organizations"}, s.nav.paths)
}

func (s *AuthBridgeTestSuite) TestSignup_AutoLoginFailureReportsTwoOutcomes() {
	// Arrange
	s.api.On("Signup", s.ctx, "Ada", "ada@example.com", "pw").Return(&model.Exchange{StatusCode: 201, JSON: true}, nil)
	s.api.On("Login", s.ctx, "ada@example.com", "pw").Return(nil, apperrors.ErrBackendUnavailable)

	// Act
	result := s.bridge.Signup(s.ctx, s.store, model.SignupRequest{Name: "Ada", Email: "ada@example.com", Password: "pw"}, s.nav)

	// Assert
	s.True(result.Registered)
	s.False(result.LoggedIn)
	s.Equal(model.SignupRegisteredLoginRequired, result.Outcome())
	s.Equal(model.MsgRegisteredLoginRequired, result.Message)
	s.Empty(s.nav.paths)
}

func (s *AuthBridgeTestSuite) TestSignup_Failures() {
	tests := []struct {
		name     string
		exchange *model.Exchange
		err      error
		want     string
	}{
		{"rejected with message", &model.Exchange{StatusCode: 409, JSON: true, Message: "Email already taken"}, nil, "Email already taken"},
		{"rejected without message", &model.Exchange{StatusCode: 400, JSON: true}, nil, model.MsgSignupFailed},
		{"network error", nil, apperrors.ErrBackendUnavailable, model.MsgTryAgain},
		{"non json", &model.Exchange{StatusCode: 502, JSON: false}, nil, model.MsgTryAgain},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			api := &mockAuthAPI{}
			api.On("Signup", s.ctx, "Ada", "a@b.c", "pw").Return(tt.exchange, tt.err)
			bridge := usecase.NewAuthBridge(api, "/organizations", nil, nil)

			result := bridge.Signup(s.ctx, &mockSessionWriter{}, model.SignupRequest{Name: "Ada", Email: "a@b.c", Password: "pw"}, nil)

			s.Equal(model.SignupFailed, result.Outcome())
			s.Equal(tt.want, result.Message)
			api.AssertNotCalled(s.T(), "Login", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestAuthBridgeTestSuite(t *testing.T) {
	suite.Run(t, new(AuthBridgeTestSuite))
}
