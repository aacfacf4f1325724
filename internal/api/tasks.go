package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/smazurov/ledsync/internal/api/models"
	"github.com/smazurov/ledsync/internal/metrics"
	"github.com/smazurov/ledsync/internal/supervisor"
)

func (s *Server) registerTaskRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-tasks",
		Method:      http.MethodGet,
		Path:        "/api/tasks",
		Summary:     "Tasks",
		Description: "Configured task machines with their supervisor state",
		Tags:        []string{"tasks"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, _ *struct{}) (*models.TasksResponse, error) {
		states := make(map[string]supervisor.Info)
		if s.options.Supervisor != nil {
			for _, info := range s.options.Supervisor.List() {
				states[info.Name] = info
			}
		}

		tasks := make([]models.TaskData, 0, len(s.options.Tasks))
		for _, cfg := range s.options.Tasks {
			info, ok := states[cfg.Name]
			if !ok {
				info = supervisor.Info{Name: cfg.Name, State: supervisor.StateIdle}
			}
			td := models.TaskData{
				Name:      cfg.Name,
				Channel:   cfg.Channel.String(),
				PeriodMs:  cfg.Period.Milliseconds(),
				State:     string(info.State),
				StartedAt: info.StartedAt,
			}
			if info.LastError != nil {
				td.LastError = info.LastError.Error()
			}
			tasks = append(tasks, td)
		}
		return &models.TasksResponse{Body: models.TasksData{Tasks: tasks}}, nil
	})
}

func (s *Server) registerGuardRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-guard",
		Method:      http.MethodGet,
		Path:        "/api/guard",
		Summary:     "Guard",
		Description: "Strategy and contention statistics of the shared LED guard",
		Tags:        []string{"tasks"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, _ *struct{}) (*models.GuardResponse, error) {
		st := metrics.GetGuardStats()
		data := models.GuardData{
			Strategy:     s.options.Strategy,
			Acquisitions: st.Acquisitions,
			Releases:     st.Releases,
			MaxWaitMs:    float64(st.MaxWait.Microseconds()) / 1000,
			MaxHoldMs:    float64(st.MaxHeld.Microseconds()) / 1000,
		}
		if st.Acquisitions > 0 {
			data.AvgWaitMs = float64(st.TotalWait.Microseconds()) / 1000 / float64(st.Acquisitions)
		}
		if st.Releases > 0 {
			data.AvgHoldMs = float64(st.TotalHeld.Microseconds()) / 1000 / float64(st.Releases)
		}
		return &models.GuardResponse{Body: data}, nil
	})
}
