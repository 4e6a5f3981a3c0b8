package ingest

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/minhlq/setwave/internal/platform/request"
	"github.com/minhlq/setwave/internal/platform/respond"
	"github.com/minhlq/setwave/internal/provider"
)

type Handler struct {
	orchestrator *Orchestrator
}

func NewHandler(orchestrator *Orchestrator) *Handler {
	return &Handler{orchestrator: orchestrator}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/{provider}/{providerArtistId}", handler.startIngestion)
	router.Get("/{artistId}/status", handler.getStatus)
}

// startIngestion accepts the run and answers 202 with the initial progress
// record; the canonical artist ID inside it is the polling key.
func (handler *Handler) startIngestion(writer http.ResponseWriter, request *http.Request) {
	providerName := provider.Name(requestutil.Param(request, "provider"))
	providerArtistID := requestutil.Param(request, "providerArtistId")

	status, err := handler.orchestrator.Start(request.Context(), providerName, providerArtistID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.JSON(writer, http.StatusAccepted, status)
}

// getStatus answers the current snapshot, or 404 once the record expired.
func (handler *Handler) getStatus(writer http.ResponseWriter, request *http.Request) {
	artistID := requestutil.ID(request, "artistId")

	status, err := handler.orchestrator.Status(request.Context(), artistID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, status)
}
