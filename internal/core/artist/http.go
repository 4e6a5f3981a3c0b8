package artist

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/minhlq/setwave/internal/platform/request"
	"github.com/minhlq/setwave/internal/platform/respond"
	"github.com/minhlq/setwave/pkg/pagination"
	"github.com/minhlq/setwave/pkg/query"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the artist catalog surface. Artists are created and
// mutated by ingestion runs, so the HTTP surface is read-only.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", handler.listArtists)
	router.Get("/{id}", handler.getArtist)
	router.Get("/{id}/identifiers", handler.listIdentifiers)
}

func (handler *Handler) listArtists(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)

	filter := Filter{
		Query:  request.URL.Query().Get("q"),
		Genres: query.StringSlice(request.URL.Query().Get("genres")),
	}

	artists, total, err := handler.service.ListArtists(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, artists, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

func (handler *Handler) getArtist(writer http.ResponseWriter, request *http.Request) {
	artistID := requestutil.ID(request, "id")

	artist, err := handler.service.GetArtist(request.Context(), artistID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, artist)
}

func (handler *Handler) listIdentifiers(writer http.ResponseWriter, request *http.Request) {
	artistID := requestutil.ID(request, "id")

	// Ensure the artist exists so a bad ID yields 404, not an empty list.
	if _, err := handler.service.GetArtist(request.Context(), artistID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	identifiers, err := handler.service.ListIdentifiers(request.Context(), artistID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, identifiers)
}
