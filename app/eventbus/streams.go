package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	scoringevents "github.com/Black-And-White-Club/dip-scoring/app/shared/events/scoring"
	"github.com/Black-And-White-Club/dip-scoring/app/shared/observability/attr"
	"github.com/nats-io/nats.go/jetstream"
)

// InitializeStreams creates the scoring stream, or adds missing subjects to it.
func InitializeStreams(ctx context.Context, js jetstream.JetStream, logger *slog.Logger) error {
	streamConfigs := []jetstream.StreamConfig{
		{
			Name:     scoringevents.StreamName,
			Subjects: scoringevents.StreamSubjects(),
		},
	}

	for _, streamConfig := range streamConfigs {
		stream, err := js.Stream(ctx, streamConfig.Name)
		switch {
		case errors.Is(err, jetstream.ErrStreamNotFound):
			if _, err := js.CreateStream(ctx, streamConfig); err != nil {
				logger.Error("Failed to create JetStream stream", attr.String("stream", streamConfig.Name), attr.Error(err))
				return fmt.Errorf("failed to create stream %s: %w", streamConfig.Name, err)
			}
			logger.Info("Created JetStream stream", attr.String("stream", streamConfig.Name))
		case err != nil:
			return fmt.Errorf("failed to check stream: %w", err)
		default:
			info, err := stream.Info(ctx)
			if err != nil {
				return fmt.Errorf("failed to get stream info: %w", err)
			}
			missing := false
			for _, subject := range streamConfig.Subjects {
				if !slices.Contains(info.Config.Subjects, subject) {
					info.Config.Subjects = append(info.Config.Subjects, subject)
					missing = true
				}
			}
			if !missing {
				continue
			}
			if _, err := js.UpdateStream(ctx, info.Config); err != nil {
				return fmt.Errorf("failed to update stream with new subjects: %w", err)
			}
			logger.Info("Stream updated with new subjects", attr.String("stream", streamConfig.Name))
		}
	}
	return nil
}
