package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"
)

const pushTimeout = 10 * time.Second

// Notification is a push message addressed to one user
type Notification struct {
	Title string
	Body  string
	Data  map[string]any
}

// Notifier delivers push notifications to users' devices
type Notifier interface {
	Notify(ctx context.Context, userID int64, n Notification) error
}

// NoopNotifier discards notifications
type NoopNotifier struct{}

// Notify does nothing
func (NoopNotifier) Notify(context.Context, int64, Notification) error { return nil }

// APNSNotifier sends notifications through Apple Push Notification service
// using token based authentication
type APNSNotifier struct {
	client *apns2.Client
	users  UserRepository
	topic  string
}

// NewAPNSNotifier loads the .p8 signing key and creates the APNs client
func NewAPNSNotifier(users UserRepository, keyFile, keyID, teamID, topic string, production bool) (*APNSNotifier, error) {
	authKey, err := token.AuthKeyFromFile(keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load APNs auth key: %w", err)
	}

	client := apns2.NewTokenClient(&token.Token{
		AuthKey: authKey,
		KeyID:   keyID,
		TeamID:  teamID,
	})
	if production {
		client = client.Production()
	} else {
		client = client.Development()
	}

	return &APNSNotifier{
		client: client,
		users:  users,
		topic:  topic,
	}, nil
}

// Notify pushes n to the device registered by the user. Users without a
// push token are skipped.
func (a *APNSNotifier) Notify(ctx context.Context, userID int64, n Notification) error {
	user, err := a.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load push recipient: %w", err)
	}
	if user.PushToken == nil || *user.PushToken == "" {
		return nil
	}

	p := payload.NewPayload().AlertTitle(n.Title).AlertBody(n.Body).Sound("default")
	for k, v := range n.Data {
		p.Custom(k, v)
	}

	res, err := a.client.PushWithContext(ctx, &apns2.Notification{
		DeviceToken: *user.PushToken,
		Topic:       a.topic,
		Payload:     p,
	})
	if err != nil {
		return fmt.Errorf("failed to push notification: %w", err)
	}
	if !res.Sent() {
		return fmt.Errorf("apns rejected notification: %d %s", res.StatusCode, res.Reason)
	}

	log.Debug().Int64("user_id", userID).Str("apns_id", res.ApnsID).Msg("Push notification sent")
	return nil
}

// notifyAsync delivers n in the background; failures are only logged
func notifyAsync(notifier Notifier, userID int64, n Notification) {
	if notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
		defer cancel()
		if err := notifier.Notify(ctx, userID, n); err != nil {
			log.Warn().Err(err).Int64("user_id", userID).Msg("Failed to send push notification")
		}
	}()
}
