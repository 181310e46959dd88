package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/api"
	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const DefaultSort = "title"

func (app *Application) GetMovies(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()

	pagination, err := readPaginationParams(qs)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	params := api.GetMoviesParams{
		PaginationParams: pagination,
		Sort:             readOptionalString(qs, "sort"),
		Term:             readOptionalString(qs, "term"),
	}

	err = app.validator.Struct(params)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	movies, metadata, err := app.movieRepo.GetAll(r.Context(), toMovieFilters(params))
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.MovieListResponse{
		Movies:   make([]api.MovieResponse, len(movies)),
		Metadata: toApiMetadata(metadata),
	}

	for i, movie := range movies {
		resp.Movies[i] = toMovieResponse(movie)
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetMovieById(w http.ResponseWriter, r *http.Request) {
	movie, err := app.movieRepo.GetById(r.Context(), chi.URLParam(r, "movieId"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	err = app.writeJSON(w, http.StatusOK, toMovieResponse(movie), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) CreateMovie(w http.ResponseWriter, r *http.Request) {
	var input api.CreateMovieRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	genres := input.Genres
	if genres == nil {
		genres = []string{}
	}

	movie := &domain.Movie{
		ID:          uuid.NewString(),
		Title:       input.Title,
		Description: input.Description,
		Genres:      genres,
		Duration:    input.DurationMinutes,
		PosterUrl:   input.PosterUrl,
		Director:    input.Director,
		CreatedAt:   time.Now().UTC(),
	}

	err = app.movieRepo.Create(r.Context(), movie)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.contextGetLogger(r).Info("movie created", "movie_id", movie.ID)

	err = app.writeJSON(w, http.StatusCreated, toMovieResponse(movie), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toMovieFilters(params api.GetMoviesParams) domain.MovieFilters {
	filters := domain.MovieFilters{
		Pagination: toPagination(params.PaginationParams),
		Sort:       DefaultSort,
	}

	if params.Sort != nil {
		filters.Sort = *params.Sort
	}
	if params.Term != nil {
		filters.Term = *params.Term
	}

	return filters
}

func toMovieResponse(movie *domain.Movie) api.MovieResponse {
	if movie == nil {
		return api.MovieResponse{}
	}

	return api.MovieResponse{
		Id:              movie.ID,
		Title:           movie.Title,
		Description:     movie.Description,
		Genres:          movie.Genres,
		DurationMinutes: movie.Duration,
		PosterUrl:       movie.PosterUrl,
		Director:        movie.Director,
		CreatedAt:       movie.CreatedAt,
	}
}
