package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/MarcoPoloResearchLab/shipyard/backend/internal/ships"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type shipRequestPayload struct {
	Name     *string  `json:"name"`
	Planet   *string  `json:"planet"`
	ShipType *string  `json:"shipType"`
	ProdDate *int64   `json:"prodDate"`
	IsUsed   *bool    `json:"isUsed"`
	Speed    *float64 `json:"speed"`
	CrewSize *int     `json:"crewSize"`
}

type shipResponsePayload struct {
	ID       uint64  `json:"id"`
	Name     string  `json:"name"`
	Planet   string  `json:"planet"`
	ShipType string  `json:"shipType"`
	ProdDate int64   `json:"prodDate"`
	IsUsed   bool    `json:"isUsed"`
	Speed    float64 `json:"speed"`
	CrewSize int     `json:"crewSize"`
	Rating   float64 `json:"rating"`
}

// queryError reports a list/count parameter that could not be parsed.
type queryError struct {
	param string
}

func (e *queryError) Error() string {
	return "invalid query parameter " + e.param
}

func (h *httpHandler) handleListShips(c *gin.Context) {
	criteria, err := parseCriteria(c)
	if err != nil {
		respondWithQueryError(c, err)
		return
	}
	pageNumber, err := optionalInt(c, "pageNumber")
	if err != nil {
		respondWithQueryError(c, err)
		return
	}
	pageSize, err := optionalInt(c, "pageSize")
	if err != nil {
		respondWithQueryError(c, err)
		return
	}
	if (pageNumber != nil && *pageNumber < 0) || (pageSize != nil && *pageSize < 0) {
		respondWithQueryError(c, &queryError{param: "page"})
		return
	}

	order := ships.ParseOrder(c.Query("order"))
	page, err := h.shipsService.List(c.Request.Context(), criteria, order, ships.PageRequest{
		Number: pageNumber,
		Size:   pageSize,
	})
	if err != nil {
		h.respondWithServiceError(c, err)
		return
	}

	response := make([]shipResponsePayload, 0, len(page))
	for _, ship := range page {
		response = append(response, toShipResponse(ship))
	}
	c.JSON(http.StatusOK, response)
}

func (h *httpHandler) handleCountShips(c *gin.Context) {
	criteria, err := parseCriteria(c)
	if err != nil {
		respondWithQueryError(c, err)
		return
	}
	count, err := h.shipsService.Count(c.Request.Context(), criteria)
	if err != nil {
		h.respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, count)
}

func (h *httpHandler) handleCreateShip(c *gin.Context) {
	var request shipRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		h.metrics.RecordCatalogMutation("create", "rejected")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	input, err := request.toInput()
	if err == nil {
		var created ships.Ship
		created, err = h.shipsService.Create(c.Request.Context(), input)
		if err == nil {
			h.metrics.RecordCatalogMutation("create", mutationOutcome(nil))
			h.logger.Info("ship created",
				zap.Uint64("ship_id", created.ID),
				zap.String("operator", c.GetString(operatorContextKey)))
			c.JSON(http.StatusOK, toShipResponse(created))
			return
		}
	}
	h.metrics.RecordCatalogMutation("create", mutationOutcome(err))
	h.respondWithServiceError(c, err)
}

func (h *httpHandler) handleGetShip(c *gin.Context) {
	id, ok := parseShipID(c)
	if !ok {
		return
	}
	ship, err := h.shipsService.Get(c.Request.Context(), id)
	if err != nil {
		h.respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toShipResponse(ship))
}

func (h *httpHandler) handleDeleteShip(c *gin.Context) {
	id, ok := parseShipID(c)
	if !ok {
		return
	}
	err := h.shipsService.Delete(c.Request.Context(), id)
	h.metrics.RecordCatalogMutation("delete", mutationOutcome(err))
	if err != nil {
		h.respondWithServiceError(c, err)
		return
	}
	h.logger.Info("ship deleted", zap.Int64("ship_id", id), zap.String("operator", c.GetString(operatorContextKey)))
	c.Status(http.StatusOK)
}

func (h *httpHandler) handleUpdateShip(c *gin.Context) {
	id, ok := parseShipID(c)
	if !ok {
		return
	}
	var request shipRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil && !errors.Is(err, io.EOF) {
		h.metrics.RecordCatalogMutation("update", "rejected")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	input, err := request.toInput()
	if err == nil {
		var updated ships.Ship
		updated, err = h.shipsService.Update(c.Request.Context(), id, input)
		if err == nil {
			h.metrics.RecordCatalogMutation("update", mutationOutcome(nil))
			c.JSON(http.StatusOK, toShipResponse(updated))
			return
		}
	}
	h.metrics.RecordCatalogMutation("update", mutationOutcome(err))
	h.respondWithServiceError(c, err)
}

func (p shipRequestPayload) toInput() (ships.ShipInput, error) {
	input := ships.ShipInput{
		Name:     p.Name,
		Planet:   p.Planet,
		IsUsed:   p.IsUsed,
		Speed:    p.Speed,
		CrewSize: p.CrewSize,
	}
	if p.ShipType != nil {
		shipType, err := ships.ParseShipType(*p.ShipType)
		if err != nil {
			return ships.ShipInput{}, err
		}
		input.ShipType = &shipType
	}
	if p.ProdDate != nil {
		prodDate := time.UnixMilli(*p.ProdDate).UTC()
		input.ProdDate = &prodDate
	}
	return input, nil
}

func toShipResponse(ship ships.Ship) shipResponsePayload {
	return shipResponsePayload{
		ID:       ship.ID,
		Name:     ship.Name,
		Planet:   ship.Planet,
		ShipType: string(ship.ShipType),
		ProdDate: ship.ProdDate.UnixMilli(),
		IsUsed:   ship.IsUsed,
		Speed:    ship.Speed,
		CrewSize: ship.CrewSize,
		Rating:   ship.Rating,
	}
}

func parseShipID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_id"})
		return 0, false
	}
	return id, true
}

func respondWithQueryError(c *gin.Context, err error) {
	var parseErr *queryError
	if errors.As(err, &parseErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_query", "param": parseErr.param})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_query"})
}

func parseCriteria(c *gin.Context) (ships.Criteria, error) {
	var criteria ships.Criteria
	var err error

	if value, ok := c.GetQuery("name"); ok {
		criteria.Name = &value
	}
	if value, ok := c.GetQuery("planet"); ok {
		criteria.Planet = &value
	}
	if value, ok := nonEmptyQuery(c, "shipType"); ok {
		shipType, parseErr := ships.ParseShipType(value)
		if parseErr != nil {
			return ships.Criteria{}, &queryError{param: "shipType"}
		}
		criteria.ShipType = &shipType
	}
	if criteria.After, err = optionalMillis(c, "after"); err != nil {
		return ships.Criteria{}, err
	}
	if criteria.Before, err = optionalMillis(c, "before"); err != nil {
		return ships.Criteria{}, err
	}
	if criteria.IsUsed, err = optionalBool(c, "isUsed"); err != nil {
		return ships.Criteria{}, err
	}
	if criteria.MinSpeed, err = optionalFloat(c, "minSpeed"); err != nil {
		return ships.Criteria{}, err
	}
	if criteria.MaxSpeed, err = optionalFloat(c, "maxSpeed"); err != nil {
		return ships.Criteria{}, err
	}
	if criteria.MinCrewSize, err = optionalInt(c, "minCrewSize"); err != nil {
		return ships.Criteria{}, err
	}
	if criteria.MaxCrewSize, err = optionalInt(c, "maxCrewSize"); err != nil {
		return ships.Criteria{}, err
	}
	if criteria.MinRating, err = optionalFloat(c, "minRating"); err != nil {
		return ships.Criteria{}, err
	}
	if criteria.MaxRating, err = optionalFloat(c, "maxRating"); err != nil {
		return ships.Criteria{}, err
	}
	return criteria, nil
}

func nonEmptyQuery(c *gin.Context, key string) (string, bool) {
	value, ok := c.GetQuery(key)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

func optionalInt(c *gin.Context, key string) (*int, error) {
	raw, ok := nonEmptyQuery(c, key)
	if !ok {
		return nil, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil, &queryError{param: key}
	}
	return &value, nil
}

func optionalFloat(c *gin.Context, key string) (*float64, error) {
	raw, ok := nonEmptyQuery(c, key)
	if !ok {
		return nil, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, &queryError{param: key}
	}
	return &value, nil
}

func optionalBool(c *gin.Context, key string) (*bool, error) {
	raw, ok := nonEmptyQuery(c, key)
	if !ok {
		return nil, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, &queryError{param: key}
	}
	return &value, nil
}

func optionalMillis(c *gin.Context, key string) (*time.Time, error) {
	raw, ok := nonEmptyQuery(c, key)
	if !ok {
		return nil, nil
	}
	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, &queryError{param: key}
	}
	instant := time.UnixMilli(millis).UTC()
	return &instant, nil
}
