package services

import (
	"context"
	"fmt"

	appconfig "ewaste-recycle-backend/internal/config"

	"github.com/rs/zerolog/log"
	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/certificate"
	"github.com/sideshow/apns2/payload"
)

// PushService delivers best-effort APNs alerts for users with a registered
// device token. A nil *PushService is a valid disabled sender.
type PushService struct {
	client *apns2.Client
	topic  string
}

// NewPushService creates a new push service, or nil when push is disabled
func NewPushService(cfg appconfig.APNSConfig) (*PushService, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	cert, err := certificate.FromP12File(cfg.CertFile, cfg.CertPass)
	if err != nil {
		return nil, fmt.Errorf("failed to load APNs certificate: %w", err)
	}

	client := apns2.NewClient(cert).Production()
	if cfg.Sandbox {
		client = apns2.NewClient(cert).Development()
	}

	return &PushService{
		client: client,
		topic:  cfg.Topic,
	}, nil
}

// Send pushes an alert to a device token. Failures are logged, never
// propagated: push delivery is fire-and-forget.
func (s *PushService) Send(ctx context.Context, deviceToken, message string) {
	if s == nil || deviceToken == "" {
		return
	}

	notification := &apns2.Notification{
		DeviceToken: deviceToken,
		Topic:       s.topic,
		Payload:     payload.NewPayload().Alert(message).Sound("default"),
	}

	res, err := s.client.PushWithContext(ctx, notification)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to send push notification")
		return
	}
	if !res.Sent() {
		log.Warn().Str("reason", res.Reason).Msg("Push notification rejected")
	}
}
