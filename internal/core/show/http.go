package show

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/minhlq/setwave/internal/platform/request"
	"github.com/minhlq/setwave/internal/platform/respond"
	"github.com/minhlq/setwave/pkg/convert"
	"github.com/minhlq/setwave/pkg/pagination"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the show surface. Shows are written by ingestion runs
// only, so the HTTP surface is read-only.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", handler.listShows)
	router.Get("/{id}", handler.getShow)
	router.Get("/{id}/setlist", handler.getSetlist)
}

func (handler *Handler) listShows(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)

	filter := Filter{
		ArtistID:     request.URL.Query().Get("artist_id"),
		UpcomingOnly: convert.ToBool(request.URL.Query().Get("upcoming")),
	}

	shows, total, err := handler.service.ListShows(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, shows, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

func (handler *Handler) getShow(writer http.ResponseWriter, request *http.Request) {
	showID := requestutil.ID(request, "id")

	s, err := handler.service.GetShow(request.Context(), showID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, s)
}

func (handler *Handler) getSetlist(writer http.ResponseWriter, request *http.Request) {
	showID := requestutil.ID(request, "id")

	setlist, err := handler.service.GetSetlist(request.Context(), showID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, setlist)
}
