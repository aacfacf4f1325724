package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"

	"github.com/smazurov/ledsync/internal/api/models"
	"github.com/smazurov/ledsync/internal/events"
)

// registerSSERoutes registers the native Huma SSE endpoint.
func (s *Server) registerSSERoutes() {
	if s.options.EventBus == nil {
		return
	}

	sse.Register(s.api, huma.Operation{
		OperationID: "events-stream",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Server-Sent Events Stream",
		Description: "Live LED mutations, hardware errors and task state changes",
		Tags:        []string{"events"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, map[string]any{
		"connected":          models.ConnectedEvent{},
		"led-changed":        events.LEDChangedEvent{},
		"hal-error":          events.HALErrorEvent{},
		"task-state-changed": events.TaskStateChangedEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		eventCh := make(chan any, 32)

		unsubscribers := []func(){
			events.SubscribeToChannel[events.LEDChangedEvent](s.options.EventBus, eventCh),
			events.SubscribeToChannel[events.HALErrorEvent](s.options.EventBus, eventCh),
			events.SubscribeToChannel[events.TaskStateChangedEvent](s.options.EventBus, eventCh),
		}
		defer func() {
			for _, unsub := range unsubscribers {
				unsub()
			}
		}()

		if err := send.Data(models.ConnectedEvent{
			Message:   "SSE connection established",
			Timestamp: time.Now(),
		}); err != nil {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case event := <-eventCh:
				if err := send.Data(event); err != nil {
					return
				}
			}
		}
	})
}
