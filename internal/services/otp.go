package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	otpTTL        = 10 * time.Minute
	resetTokenTTL = 15 * time.Minute

	// A 6-digit code survives at most this many wrong guesses before it
	// is invalidated.
	maxOTPAttempts = 5
)

var ErrCodeInvalid = errors.New("code is invalid or has expired")

// OTPStore keeps password-reset OTP codes and reset tokens in Redis with a
// TTL, so they expire without any cleanup job.
type OTPStore struct {
	rdb *redis.Client
}

func NewOTPStore(rdb *redis.Client) *OTPStore {
	return &OTPStore{rdb: rdb}
}

// IssueOTP generates a 6-digit code for the given email and stores it.
// Reissuing replaces any previous code.
func (s *OTPStore) IssueOTP(ctx context.Context, email string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	code := fmt.Sprintf("%06d", n.Int64())
	if err := s.rdb.Set(ctx, otpKey(email), code, otpTTL).Err(); err != nil {
		return "", err
	}
	s.rdb.Del(ctx, attemptsKey(email))
	return code, nil
}

// VerifyOTP checks the code and, on success, consumes it and returns a
// one-time reset token. Wrong guesses are counted; after maxOTPAttempts the
// code itself is invalidated.
func (s *OTPStore) VerifyOTP(ctx context.Context, email, code string) (string, error) {
	stored, err := s.rdb.Get(ctx, otpKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrCodeInvalid
		}
		return "", err
	}
	if stored != code {
		attempts, incrErr := s.rdb.Incr(ctx, attemptsKey(email)).Result()
		if incrErr != nil {
			return "", incrErr
		}
		s.rdb.Expire(ctx, attemptsKey(email), otpTTL)
		if attempts >= maxOTPAttempts {
			// The code is burned. A fresh one must be requested.
			s.rdb.Del(ctx, otpKey(email), attemptsKey(email))
		}
		return "", ErrCodeInvalid
	}

	token := uuid.NewString()
	if err := s.rdb.Set(ctx, resetKey(token), email, resetTokenTTL).Err(); err != nil {
		return "", err
	}
	s.rdb.Del(ctx, otpKey(email), attemptsKey(email))
	return token, nil
}

// ConsumeResetToken returns the email a reset token was issued for and
// deletes the token.
func (s *OTPStore) ConsumeResetToken(ctx context.Context, token string) (string, error) {
	email, err := s.rdb.Get(ctx, resetKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrCodeInvalid
		}
		return "", err
	}
	s.rdb.Del(ctx, resetKey(token))
	return email, nil
}

func otpKey(email string) string      { return "otp:" + email }
func attemptsKey(email string) string { return "otpfail:" + email }
func resetKey(token string) string    { return "pwreset:" + token }
