package trending

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/minhlq/setwave/internal/platform/request"
	"github.com/minhlq/setwave/internal/platform/respond"
	"github.com/minhlq/setwave/pkg/convert"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the ranking read surface under /trending.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/{entityType}", handler.getTrending)
}

// RegisterActivityRoutes mounts the signal write surface under /activity.
func (handler *Handler) RegisterActivityRoutes(router chi.Router) {
	router.Post("/", handler.recordActivity)
}

func (handler *Handler) getTrending(writer http.ResponseWriter, request *http.Request) {
	entityType := EntityType(requestutil.Param(request, "entityType"))

	windowHours := convert.ToIntD(request.URL.Query().Get("window"), DefaultWindowHours)

	weights := handler.service.DefaultWeights()
	weights.Votes = floatParam(request, "wv", weights.Votes)
	weights.Attendees = floatParam(request, "wa", weights.Attendees)
	weights.Recency = floatParam(request, "wr", weights.Recency)

	results, err := handler.service.ComputeScores(request.Context(), entityType, windowHours, weights)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, results)
}

func (handler *Handler) recordActivity(writer http.ResponseWriter, request *http.Request) {
	var signal ActivitySignal
	if err := requestutil.DecodeJSON(request, &signal); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.RecordActivity(request.Context(), &signal); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.JSON(writer, http.StatusAccepted, signal)
}

func floatParam(request *http.Request, key string, fallback float64) float64 {
	raw := request.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
