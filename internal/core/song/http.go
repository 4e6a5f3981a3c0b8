package song

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/minhlq/setwave/internal/platform/request"
	"github.com/minhlq/setwave/internal/platform/respond"
	"github.com/minhlq/setwave/pkg/pagination"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the song surface. Songs are written by ingestion runs
// only, so the HTTP surface is read-only.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", handler.listSongs)
	router.Get("/{id}", handler.getSong)
}

func (handler *Handler) listSongs(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)

	filter := Filter{
		ArtistID: request.URL.Query().Get("artist_id"),
		Query:    request.URL.Query().Get("q"),
	}

	songs, total, err := handler.service.ListSongs(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, songs, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

func (handler *Handler) getSong(writer http.ResponseWriter, request *http.Request) {
	songID := requestutil.ID(request, "id")

	s, err := handler.service.GetSong(request.Context(), songID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, s)
}
