package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/smazurov/ledsync/internal/api/models"
	"github.com/smazurov/ledsync/internal/led"
)

func (s *Server) registerLEDRoutes() {
	if s.options.Monitor == nil {
		s.logger.Debug("LED monitor not available, skipping LED routes")
		return
	}

	huma.Register(s.api, huma.Operation{
		OperationID: "list-leds",
		Method:      http.MethodGet,
		Path:        "/api/leds",
		Summary:     "LED Status",
		Description: "Last written level of every LED channel, as reported by the task machines",
		Tags:        []string{"leds"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, _ *struct{}) (*models.LEDsResponse, error) {
		snapshot := s.options.Monitor.Snapshot()
		channels := make([]models.LEDChannel, 0, len(snapshot))
		for _, st := range snapshot {
			channels = append(channels, models.LEDChannel{
				Channel:   st.Channel.String(),
				On:        st.On,
				Level:     led.LevelString(st.On),
				Task:      st.Task,
				Changes:   st.Changes,
				Errors:    st.Errors,
				LastError: st.LastError,
				UpdatedAt: st.UpdatedAt,
			})
		}
		return &models.LEDsResponse{
			Body: models.LEDsData{Backend: s.options.Backend, Channels: channels},
		}, nil
	})
}
