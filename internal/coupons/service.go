package coupons

import (
	"context"
	stdErrors "errors"
	"time"

	"github.com/google/uuid"

	"github.com/kelechio/storefront-backend/pkg/errors"
)

// UsageChecker reports whether a user has already redeemed a coupon. The
// orders repository satisfies it.
type UsageChecker interface {
	CouponUsedByUser(ctx context.Context, userID, couponID uuid.UUID) (bool, error)
}

// Service validates coupon codes against expiry and per-user reuse.
type Service interface {
	// Validate returns the coupon for code when the user may still redeem
	// it. Unknown and expired codes are indistinguishable to the caller.
	Validate(ctx context.Context, code string, userID uuid.UUID) (*Validated, error)
}

// Validated is a coupon cleared for a specific user's checkout.
type Validated struct {
	ID            uuid.UUID
	Code          string
	PercentageOff int
}

type service struct {
	repo  Repository
	usage UsageChecker
	now   func() time.Time
}

func NewService(repo Repository, usage UsageChecker) (Service, error) {
	if repo == nil {
		return nil, stdErrors.New("coupon repository is required")
	}
	if usage == nil {
		return nil, stdErrors.New("usage checker is required")
	}
	return &service{repo: repo, usage: usage, now: time.Now}, nil
}

func (s *service) Validate(ctx context.Context, code string, userID uuid.UUID) (*Validated, error) {
	coupon, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "looking up coupon")
	}
	if coupon == nil || coupon.Expired(s.now()) {
		return nil, errors.New(errors.CodeNotFound, "Coupon is Invalid/Expired")
	}

	used, err := s.usage.CouponUsedByUser(ctx, userID, coupon.ID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "checking coupon usage")
	}
	if used {
		return nil, errors.New(errors.CodeBusinessRule, "You've used this coupon already")
	}

	return &Validated{
		ID:            coupon.ID,
		Code:          coupon.Code,
		PercentageOff: coupon.PercentageOff,
	}, nil
}
