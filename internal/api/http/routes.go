package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"

	"github.com/i474232898/weatherbeats/internal/chart"
	"github.com/i474232898/weatherbeats/internal/common"
	"github.com/i474232898/weatherbeats/internal/service"
	"github.com/i474232898/weatherbeats/internal/store"
	"github.com/i474232898/weatherbeats/internal/web"
)

var validate = validator.New()

const (
	msgNoLocation         = "No location provided"
	msgNoMood             = "No mood provided"
	msgInvalidCoordinates = "Invalid coordinates"
)

// Service is what the routes need from the service layer.
type Service interface {
	MoodForCity(ctx context.Context, city string) (service.CityMood, error)
	SongsForMoods(ctx context.Context, moods []string) (service.Playlist, error)
	WeatherMood(ctx context.Context, city string) (service.WeatherMood, error)
	LocationImage(ctx context.Context, lat, lon float64) (string, error)
	MapFragment(ctx context.Context, city string) (string, error)
	Ping(ctx context.Context) error
}

// RegisterRoutes wires the HTTP handlers into the Fiber app. moodChart is
// rendered once at startup and served unchanged.
func RegisterRoutes(app *fiber.App, svc Service, moodChart chart.Image, logger *log.Logger) {
	if logger == nil {
		logger = common.Discard()
	}
	h := &handlers{svc: svc, chart: moodChart, logger: logger.WithPrefix("http")}

	app.Get("/", page(web.Index()))
	app.Get("/song.html", page(web.SongPage()))
	app.Use("/static", filesystem.New(filesystem.Config{
		Root: http.FS(web.Static()),
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weatherbeats",
		})
	})
	app.Get("/ready", h.ready)

	app.Get("/moodVizAPI", h.moodViz)
	app.Get("/locationVizAPI", h.locationViz)
	app.Get("/moodFromWeatherAPI", h.moodFromCity)
	app.Get("/songsFromMoodAPI", h.songsFromMood)
	app.Get("/latlongFromWeatherAPI", h.weatherMood)
	app.Get("/map", h.mapFragment)
}

// NewErrorHandler renders every error as {"error": message}. Only
// *fiber.Error messages reach the client; anything else is logged and
// reported as an internal server error.
func NewErrorHandler(logger *log.Logger) fiber.ErrorHandler {
	if logger == nil {
		logger = common.Discard()
	}
	logger = logger.WithPrefix("http")

	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{
				"error": fe.Message,
			})
		}

		logger.Error("unhandled error", "method", c.Method(), "path", c.Path(), "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}
}

type handlers struct {
	svc    Service
	chart  chart.Image
	logger *log.Logger
}

func page(body []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Type("html")
		return c.Send(body)
	}
}

func (h *handlers) ready(c *fiber.Ctx) error {
	if err := h.svc.Ping(c.UserContext()); err != nil {
		h.logger.Error("readiness check failed", "err", err)
		return fiber.NewError(fiber.StatusServiceUnavailable, "database unavailable")
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *handlers) moodViz(c *fiber.Ctx) error {
	return c.JSON(h.chart)
}

// coordinatesQuery holds the lat/long query parameters.
type coordinatesQuery struct {
	Lat string `validate:"required,latitude"`
	Lon string `validate:"required,longitude"`
}

func (q coordinatesQuery) parse() (float64, float64, error) {
	if err := validate.Struct(q); err != nil {
		return 0, 0, err
	}
	lat, err := strconv.ParseFloat(q.Lat, 64)
	if err != nil {
		return 0, 0, err
	}
	lon, err := strconv.ParseFloat(q.Lon, 64)
	if err != nil {
		return 0, 0, err
	}
	return lat, lon, nil
}

func (h *handlers) locationViz(c *fiber.Ctx) error {
	q := coordinatesQuery{
		Lat: strings.TrimSpace(c.Query("lat")),
		Lon: strings.TrimSpace(c.Query("long")),
	}
	lat, lon, err := q.parse()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, msgInvalidCoordinates)
	}

	img, err := h.svc.LocationImage(c.UserContext(), lat, lon)
	if err != nil {
		return h.toHTTPError(err)
	}
	return c.JSON(fiber.Map{"image": img})
}

func (h *handlers) moodFromCity(c *fiber.Ctx) error {
	city := strings.TrimSpace(c.Query("location"))
	if city == "" {
		return fiber.NewError(fiber.StatusBadRequest, msgNoLocation)
	}

	res, err := h.svc.MoodForCity(c.UserContext(), city)
	if err != nil {
		return h.toHTTPError(err)
	}
	return c.JSON(res)
}

func (h *handlers) songsFromMood(c *fiber.Ctx) error {
	moods := strings.Fields(c.Query("moods"))
	if len(moods) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, msgNoMood)
	}

	res, err := h.svc.SongsForMoods(c.UserContext(), moods)
	if err != nil {
		return h.toHTTPError(err)
	}
	return c.JSON(res)
}

func (h *handlers) weatherMood(c *fiber.Ctx) error {
	city := strings.TrimSpace(c.Query("location"))
	if city == "" {
		return fiber.NewError(fiber.StatusBadRequest, msgNoLocation)
	}

	res, err := h.svc.WeatherMood(c.UserContext(), city)
	if err != nil {
		return h.toHTTPError(err)
	}
	return c.JSON(res)
}

func (h *handlers) mapFragment(c *fiber.Ctx) error {
	city := strings.TrimSpace(c.Query("location"))
	if city == "" {
		return fiber.NewError(fiber.StatusBadRequest, msgNoLocation)
	}

	html, err := h.svc.MapFragment(c.UserContext(), city)
	if err != nil {
		return h.toHTTPError(err)
	}
	c.Type("html")
	return c.SendString(html)
}

// toHTTPError maps service errors to status codes. Unexpected errors are
// logged and reported without their details.
func (h *handlers) toHTTPError(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Location not found")
	case errors.Is(err, store.ErrNoMoods):
		return fiber.NewError(fiber.StatusBadRequest, msgNoMood)
	case errors.Is(err, service.ErrUpstream):
		return fiber.NewError(fiber.StatusBadGateway, "upstream service unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.NewError(fiber.StatusGatewayTimeout, "request timed out")
	default:
		h.logger.Error("request failed", "err", err)
		return fiber.NewError(fiber.StatusInternalServerError, "internal server error")
	}
}
