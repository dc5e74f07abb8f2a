package httpapi

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/coolescape/coolescape/internal/district"
	"github.com/coolescape/coolescape/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service, registry *district.Registry) {
	v1 := app.Group("/api/v1")

	v1.Get("/coolest-districts", func(c *fiber.Ctx) error {
		var req rankQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		reports, err := service.RankDistricts(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather data")
		}

		if req.Sort == "desc" {
			for i, j := 0, len(reports)-1; i < j; i, j = i+1, j-1 {
				reports[i], reports[j] = reports[j], reports[i]
			}
		}
		if req.Limit < len(reports) {
			reports = reports[:req.Limit]
		}

		return c.JSON(reports)
	})

	v1.Get("/travel-recommendation", func(c *fiber.Ctx) error {
		var req travelQuery
		if err := req.bind(c, registry); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		advice, err := service.CompareTravel(
			c.Context(),
			req.FriendLat, req.FriendLon,
			req.DestLat, req.DestLon,
			req.Date,
		)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather data")
		}

		return c.JSON(advice)
	})
}

// rankQuery holds query parameters for the district ranking endpoint.
type rankQuery struct {
	Limit int    `validate:"gt=0"`
	Sort  string `validate:"oneof=asc desc"`
}

func (r *rankQuery) bind(c *fiber.Ctx) error {
	limitStr := c.Query("limit", "10")
	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		return fmt.Errorf("invalid limit %q: must be an integer", limitStr)
	}
	r.Limit = limit

	r.Sort = strings.ToLower(c.Query("sort", "asc"))
	return nil
}

// travelQuery holds the resolved parameters of a travel recommendation
// request. District names are resolved to coordinates before validation.
type travelQuery struct {
	FriendLat float64 `validate:"gte=-90,lte=90"`
	FriendLon float64 `validate:"gte=-180,lte=180"`
	DestLat   float64 `validate:"gte=-90,lte=90"`
	DestLon   float64 `validate:"gte=-180,lte=180"`
	Date      string  `validate:"required,datetime=2006-01-02"`
}

func (t *travelQuery) bind(c *fiber.Ctx, registry *district.Registry) error {
	t.Date = c.Query("date")
	if t.Date == "" {
		return errors.New("date query parameter is required (YYYY-MM-DD)")
	}

	friendName := c.Query("friend_district")
	destName := c.Query("destination_district")

	if friendName != "" || destName != "" {
		if friendName == "" || destName == "" {
			return errors.New("both friend_district and destination_district are required")
		}

		friend, ok := registry.ByName(friendName)
		if !ok {
			return fmt.Errorf("unknown district %q", friendName)
		}
		dest, ok := registry.ByName(destName)
		if !ok {
			return fmt.Errorf("unknown district %q", destName)
		}

		t.FriendLat, t.FriendLon = friend.Lat(), friend.Lon()
		t.DestLat, t.DestLon = dest.Lat(), dest.Lon()
		return nil
	}

	var err error
	if t.FriendLat, err = parseCoord(c, "friend_lat"); err != nil {
		return err
	}
	if t.FriendLon, err = parseCoord(c, "friend_lon"); err != nil {
		return err
	}
	if t.DestLat, err = parseCoord(c, "dest_lat"); err != nil {
		return err
	}
	if t.DestLon, err = parseCoord(c, "dest_lon"); err != nil {
		return err
	}
	return nil
}

func parseCoord(c *fiber.Ctx, name string) (float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, fmt.Errorf("either district names or all of friend_lat, friend_lon, dest_lat, dest_lon are required (missing %s)", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return v, nil
}
