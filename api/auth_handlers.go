package api

import (
	"errors"
	"fmt"
	"math"
	"net/http"

	"github.com/KK-2k06/DreamInk/auth"
	"go.uber.org/zap"
)

type signupRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type signupResponse struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type accountResponse struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// Signup handles POST /api/signup.
func (s *Server) Signup(r *http.Request) (any, error) {
	req, err := parseJSON[signupRequest](r)
	if err != nil {
		return nil, err
	}

	acct, err := s.accounts.CreateAccount(r.Context(), auth.Signup{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	switch {
	case errors.Is(err, auth.ErrMissingFields):
		return nil, CodedErrorf(http.StatusBadRequest, "Missing required fields")
	case errors.Is(err, auth.ErrAlreadyExists):
		return nil, CodedErrorf(http.StatusConflict, "Account already exists")
	case err != nil:
		return nil, err
	}

	s.logger.Info("Account created", zap.Int64("user_id", acct.ID))
	return created(signupResponse{FirstName: acct.FirstName, LastName: acct.LastName, Email: acct.Email}), nil
}

// Signin handles POST /api/signin. Repeated failures from one client IP are
// answered with 429 until the block expires.
func (s *Server) Signin(r *http.Request) (any, error) {
	key := clientKey(r)
	if ok, wait := s.limiter.Allow(key); !ok {
		secs := int(math.Ceil(wait.Seconds()))
		return nil, &codedError{
			err:        fmt.Errorf("Too many sign-in attempts. Try again in %d seconds", secs),
			code:       http.StatusTooManyRequests,
			retryAfter: secs,
		}
	}

	req, err := parseJSON[signinRequest](r)
	if err != nil {
		return nil, err
	}

	acct, err := s.accounts.Authenticate(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrMissingFields):
		return nil, CodedErrorf(http.StatusBadRequest, "Missing credentials")
	case errors.Is(err, auth.ErrInvalidCredentials):
		s.limiter.Fail(key)
		return nil, CodedErrorf(http.StatusUnauthorized, "Invalid email or password")
	case err != nil:
		return nil, err
	}

	s.limiter.Reset(key)
	return accountResponse{ID: acct.ID, FirstName: acct.FirstName, LastName: acct.LastName, Email: acct.Email}, nil
}
