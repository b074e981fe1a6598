package testutils

import (
	"context"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"

	scoringevents "github.com/Black-And-White-Club/dip-scoring/app/shared/events/scoring"
)

// PurgeStreams drops every message on the scoring stream so one test's
// events never reach the next.
func (env *TestEnvironment) PurgeStreams(ctx context.Context) error {
	if env.JetStream == nil {
		return errors.New("JetStream not initialized")
	}
	stream, err := env.JetStream.Stream(ctx, scoringevents.StreamName)
	if errors.Is(err, jetstream.ErrStreamNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to access stream %s: %w", scoringevents.StreamName, err)
	}
	if err := stream.Purge(ctx); err != nil {
		return fmt.Errorf("failed to purge stream %s: %w", scoringevents.StreamName, err)
	}
	return nil
}
