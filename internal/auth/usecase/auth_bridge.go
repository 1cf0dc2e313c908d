package usecase

import (
	"context"

	"workly-web/internal/auth/domain/model"
	"workly-web/internal/auth/domain/repository"
	sessionrepo "workly-web/internal/session/domain/repository"
	"workly-web/internal/shared/logger"
	"workly-web/internal/shared/metrics"

	"go.uber.org/zap"
)

// Metric labels for auth attempts.
const (
	opLogin  = "login"
	opSignup = "signup"

	outcomeSuccess  = "success"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

// AuthBridgeInterface defines the contract for credential exchange use cases.
type AuthBridgeInterface interface {
	Login(ctx context.Context, store repository.SessionWriter, req model.LoginRequest, nav sessionrepo.Navigator) model.LoginResult
	Signup(ctx context.Context, store repository.SessionWriter, req model.SignupRequest, nav sessionrepo.Navigator) model.SignupResult
}

var _ AuthBridgeInterface = (*AuthBridge)(nil)

// AuthBridge turns API credential exchanges into session updates and
// navigation. Callers always get a result value, never an error.
type AuthBridge struct {
	api      repository.AuthAPI
	homePath string
	metrics  *metrics.Metrics
	logger   logger.Logger
}

// NewAuthBridge creates a bridge that lands users on homePath by default.
func NewAuthBridge(api repository.AuthAPI, homePath string, m *metrics.Metrics, log logger.Logger) *AuthBridge {
	if log == nil {
		log = logger.Default()
	}
	return &AuthBridge{
		api:      api,
		homePath: homePath,
		metrics:  m,
		logger:   log.WithComponent("auth_bridge"),
	}
}

// Login exchanges credentials; on success the session is stored and nav is
// sent to the callback destination. A failed login leaves store untouched.
func (b *AuthBridge) Login(ctx context.Context, store repository.SessionWriter, req model.LoginRequest, nav sessionrepo.Navigator) (result model.LoginResult) {
	defer b.recoverLogin(&result)

	exchange, err := b.api.Login(ctx, req.Email, req.Password)
	if err != nil {
		b.logger.WithContext(ctx).WithFields(logger.ZapFields(zap.Error(err))).Warn("Login request failed")
		b.metrics.ObserveAuth(opLogin, outcomeError)
		return model.LoginResult{Message: model.MsgTryAgain}
	}

	if !exchange.JSON {
		b.metrics.ObserveAuth(opLogin, outcomeError)
		return model.LoginResult{Message: model.MsgTryAgain}
	}
	if !exchange.OK() {
		b.metrics.ObserveAuth(opLogin, outcomeRejected)
		return model.LoginResult{Message: messageOr(exchange.Message, model.MsgInvalidCredentials)}
	}
	if exchange.Session.Validate() != nil {
		b.logger.WithContext(ctx).Warn("Login succeeded without a user payload")
		b.metrics.ObserveAuth(opLogin, outcomeError)
		return model.LoginResult{Message: model.MsgTryAgain}
	}
	if exchange.Session.Token == "" {
		// Without a token no credential cookie can be set, and the guard
		// would treat the client as anonymous.
		b.logger.WithContext(ctx).WithFields(map[string]interface{}{"user_id": exchange.Session.ID}).Warn("Login succeeded without a token")
		b.metrics.ObserveAuth(opLogin, outcomeError)
		return model.LoginResult{Message: model.MsgTryAgain}
	}

	if err := store.Set(ctx, exchange.Session); err != nil {
		// The in-memory session is in place; only persistence failed.
		b.logger.WithContext(ctx).WithFields(logger.ZapFields(zap.Error(err))).Warn("Session not persisted after login")
	}

	redirect := SafeCallback(req.CallbackURL, b.homePath)
	if nav != nil {
		nav.Push(redirect)
	}
	b.metrics.ObserveAuth(opLogin, outcomeSuccess)
	b.logger.WithContext(ctx).WithFields(map[string]interface{}{"user_id": exchange.Session.ID}).Info("User logged in")

	return model.LoginResult{Success: true, Session: exchange.Session.Clone(), Redirect: redirect}
}

// Signup registers the user and then logs in with the same credentials. The
// two steps are reported separately: a failed auto-login still counts as a
// successful registration.
func (b *AuthBridge) Signup(ctx context.Context, store repository.SessionWriter, req model.SignupRequest, nav sessionrepo.Navigator) (result model.SignupResult) {
	defer b.recoverSignup(&result)

	exchange, err := b.api.Signup(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		b.logger.WithContext(ctx).WithFields(logger.ZapFields(zap.Error(err))).Warn("Signup request failed")
		b.metrics.ObserveAuth(opSignup, outcomeError)
		return model.SignupResult{Message: model.MsgTryAgain}
	}
	if !exchange.JSON {
		b.metrics.ObserveAuth(opSignup, outcomeError)
		return model.SignupResult{Message: model.MsgTryAgain}
	}
	if !exchange.OK() {
		b.metrics.ObserveAuth(opSignup, outcomeRejected)
		return model.SignupResult{Message: messageOr(exchange.Message, model.MsgSignupFailed)}
	}
	b.metrics.ObserveAuth(opSignup, outcomeSuccess)

	login := b.Login(ctx, store, model.LoginRequest{
		Email:       req.Email,
		Password:    req.Password,
		CallbackURL: req.CallbackURL,
	}, nav)
	if !login.Success {
		return model.SignupResult{Registered: true, Message: model.MsgRegisteredLoginRequired}
	}
	return model.SignupResult{Registered: true, LoggedIn: true, Session: login.Session, Redirect: login.Redirect}
}

func (b *AuthBridge) recoverLogin(result *model.LoginResult) {
	if r := recover(); r != nil {
		b.logger.Errorf("Login panicked: %v", r)
		*result = model.LoginResult{Message: model.MsgTryAgain}
	}
}

func (b *AuthBridge) recoverSignup(result *model.SignupResult) {
	if r := recover(); r != nil {
		b.logger.Errorf("Signup panicked: %v", r)
		*result = model.SignupResult{Message: model.MsgTryAgain}
	}
}

func messageOr(msg, fallback string) string {
	if msg == "" {
		return fallback
	}
	return msg
}
