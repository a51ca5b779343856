package httpapi

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/pwstats/weather-insights/internal/weather"
)

var validate = validator.New()

// Sources groups the three per-endpoint state machines for the HTTP surface.
// Handlers only read snapshots and issue triggers; state is mutated solely by
// the sources themselves.
type Sources struct {
	Daily   *weather.Source[[]weather.DailyRecord]
	Current *weather.Source[*weather.Observation]
	History *weather.Source[[]weather.HistoricalObservation]

	// DailyFetch builds a daily-history fetch for an explicit date window,
	// used when a refresh request carries start/end parameters.
	DailyFetch func(start, end time.Time) weather.FetchFunc[[]weather.DailyRecord]

	// Units selects the measurement group for the derived hourly series.
	Units weather.Units
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, s *Sources) {
	v1 := app.Group("/api/v1")

	v1.Get("/sources/daily", func(c *fiber.Ctx) error {
		return c.JSON(toResponse("daily", s.Daily.Snapshot()))
	})

	v1.Get("/sources/current", func(c *fiber.Ctx) error {
		return c.JSON(toResponse("current", s.Current.Snapshot()))
	})

	v1.Get("/sources/history", func(c *fiber.Ctx) error {
		st := s.History.Snapshot()
		resp := historyResponse{snapshotResponse: toResponse("history", st)}
		if st.HasValue {
			resp.Hourly = weather.AggregateHourly(st.Value, s.Units)
		}
		return c.JSON(resp)
	})

	// Summary joins the three snapshots, mirroring the overview mode of the
	// presentation layer.
	v1.Get("/summary", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"daily":   toResponse("daily", s.Daily.Snapshot()),
			"current": toResponse("current", s.Current.Snapshot()),
			"history": toResponse("history", s.History.Snapshot()),
		})
	})

	v1.Post("/sources/daily/refresh", func(c *fiber.Ctx) error {
		var q dailyWindowQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if q.Start == "" {
			s.Daily.Trigger(context.Background())
			return accepted(c, "daily")
		}

		start, end, err := q.window()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		s.Daily.TriggerWith(context.Background(), s.DailyFetch(start, end))
		return accepted(c, "daily")
	})

	v1.Post("/sources/current/refresh", func(c *fiber.Ctx) error {
		s.Current.Trigger(context.Background())
		return accepted(c, "current")
	})

	v1.Post("/sources/history/refresh", func(c *fiber.Ctx) error {
		s.History.Trigger(context.Background())
		return accepted(c, "history")
	})
}

func accepted(c *fiber.Ctx, source string) error {
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status": "refresh scheduled",
		"source": source,
	})
}

// snapshotResponse is the read-only view of a source state.
type snapshotResponse struct {
	Source    string     `json:"source"`
	Loading   bool       `json:"loading"`
	Error     string     `json:"error,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
	Data      any        `json:"data,omitempty"`
}

type historyResponse struct {
	snapshotResponse
	Hourly []weather.HourlyTemperature `json:"hourly,omitempty"`
}

func toResponse[T any](name string, st weather.State[T]) snapshotResponse {
	resp := snapshotResponse{
		Source:  name,
		Loading: st.Loading,
	}
	if st.LastErr != nil {
		resp.Error = st.LastErr.Error()
	}
	if st.HasValue {
		resp.Data = st.Value
		ts := st.UpdatedAt
		resp.UpdatedAt = &ts
	}
	return resp
}

// dailyWindowQuery holds the optional date window of a daily refresh.
// Start and end come together or not at all.
type dailyWindowQuery struct {
	Start string `validate:"omitempty,datetime=2006-01-02"`
	End   string `validate:"omitempty,datetime=2006-01-02"`
}

func (q *dailyWindowQuery) bind(c *fiber.Ctx) error {
	q.Start = c.Query("start")
	q.End = c.Query("end")

	if (q.Start == "") != (q.End == "") {
		return errors.New("start and end must be provided together")
	}
	if err := validate.Struct(q); err != nil {
		return err
	}
	if q.Start != "" && q.End < q.Start {
		return errors.New("end must not be before start")
	}
	return nil
}

func (q *dailyWindowQuery) window() (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01-02", q.Start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := time.Parse("2006-01-02", q.End)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}
