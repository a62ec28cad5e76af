package ratelimit

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/roy-raphael/DW-P6-Piiquante/internal/models"
)

const (
	// extra point cost once a key already carries an unbroken failure streak
	repeatFailureCost = 5
	// base unit for escalating block durations
	blockUnit = 60 * time.Second
)

// ThrottleConfig holds the primary limiter policy. The consecutive-failure
// counter has no policy of its own: it never expires and is unbounded.
type ThrottleConfig struct {
	MaxAttemptsPerWindow int
	AttemptWindow        time.Duration
}

// DefaultThrottleConfig returns the login throttle policy: 5 points per
// 60-second window.
func DefaultThrottleConfig() ThrottleConfig {
	return ThrottleConfig{
		MaxAttemptsPerWindow: 5,
		AttemptWindow:        60 * time.Second,
	}
}

// LoginThrottle turns raw login attempts into admission decisions with
// escalating penalties for repeat offenders. It composes two stores: main
// governs attempts per window, consecutive counts unbroken failure streaks
// and drives Fibonacci block growth.
type LoginThrottle struct {
	main        Store
	consecutive Store
	logger      *slog.Logger
}

// NewLoginThrottle creates a LoginThrottle over the two given stores
func NewLoginThrottle(main, consecutive Store, logger *slog.Logger) *LoginThrottle {
	return &LoginThrottle{
		main:        main,
		consecutive: consecutive,
		logger:      logger,
	}
}

// NewDefaultLoginThrottle wires a LoginThrottle over fresh in-memory stores
func NewDefaultLoginThrottle(cfg ThrottleConfig, logger *slog.Logger) *LoginThrottle {
	return NewLoginThrottle(
		NewMemoryStore(cfg.MaxAttemptsPerWindow, cfg.AttemptWindow),
		NewMemoryStore(0, 0),
		logger,
	)
}

// Admit decides whether a login attempt for email may proceed. It is called
// before any credential check and never mutates state. A currently blocked or
// depleted key yields a models.RateLimitedError carrying the remaining block
// time in whole seconds (minimum 1).
func (t *LoginThrottle) Admit(email string) error {
	res, err := t.main.Get(email)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}
	if res == nil || res.RemainingPoints > 0 {
		return nil
	}

	retryAfter := int((res.MsBeforeNext + 999) / 1000)
	if retryAfter < 1 {
		retryAfter = 1
	}

	t.logger.Warn("login attempt rejected by throttle",
		slog.Int("retry_after_seconds", retryAfter))

	return &models.RateLimitedError{RetryAfter: retryAfter}
}

// Record registers the outcome of a credential check for email.
//
// A success wipes the consecutive-failure streak; the primary window is left
// untouched. A failure consumes 1 point for a first offence or 5 once a
// streak exists, and when the window is depleted the streak is incremented
// and the key blocked for 60 x fib(streak) seconds.
func (t *LoginThrottle) Record(email string, success bool) error {
	if success {
		if err := t.consecutive.Delete(email); err != nil {
			return fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
		}
		return nil
	}

	streakRes, err := t.consecutive.Get(email)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}

	cost := 1
	if streakRes != nil && streakRes.ConsumedPoints > 0 {
		cost = repeatFailureCost
	}

	res, err := t.main.Consume(email, cost)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}
	if res.RemainingPoints > 0 {
		return nil
	}

	streak, err := t.consecutive.Penalty(email)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}

	blockFor := blockUnit * time.Duration(fibonacci(streak-1))
	if err := t.main.Block(email, blockFor); err != nil {
		return fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}

	t.logger.Warn("login key blocked",
		slog.Int("consecutive_failures", streak),
		slog.Duration("block_duration", blockFor))

	return nil
}

// fibonacci computes the sequence with fib(0)=fib(1)=1, iteratively. The
// indexing is deliberately offset from the canonical sequence so that block
// durations grow 60s, 60s, 120s, 180s, 300s over successive streaks.
func fibonacci(n int) int64 {
	if n <= 1 {
		return 1
	}
	var a, b int64 = 1, 1
	for i := 2; i <= n; i++ {
		a, b = b, a+b
	}
	return b
}
