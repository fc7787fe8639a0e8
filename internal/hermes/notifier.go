package hermes

import (
	"context"
	"log/slog"
	"time"
)

// PartialNotifier publishes partial-data events for countries. A nil
// notifier, or one without a client, does nothing.
type PartialNotifier struct {
	client Client
	logger *slog.Logger
	now    func() time.Time
}

func NewPartialNotifier(client Client, logger *slog.Logger) *PartialNotifier {
	return &PartialNotifier{client: client, logger: logger, now: time.Now}
}

func (n *PartialNotifier) PartialFailure(ctx context.Context, country string, errs []string) {
	if n == nil || n.client == nil {
		return
	}
	err := n.client.Publish(SubjectCountryPartial(country), CountryPartialEvent{
		Country:   country,
		Errors:    errs,
		Timestamp: n.now().UTC(),
	})
	if err != nil {
		n.logger.WarnContext(ctx, "publish partial event failed", "country", country, "error", err)
	}
}
