package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/solarops/internal/record"
)

type MailStore = record.Store[MailNotification, *MailNotification]

type Service interface {
	Mails() *MailStore
	ByImpact(ctx context.Context, impact Impact, limit int) ([]*MailNotification, error)
	ImpactBreakdown(ctx context.Context) (map[Impact]int64, error)
}

var ErrInvalidImpact = errors.New("invalid_impact")

// ParseImpact accepts the stored values; an empty string is the unclassified marker.
func ParseImpact(value string) (Impact, error) {
	switch Impact(value) {
	case ImpactMajor, ImpactMinor, ImpactNone, ImpactUnknown:
		return Impact(value), nil
	case "":
		return ImpactUnknown, nil
	default:
		return "", ErrInvalidImpact
	}
}
