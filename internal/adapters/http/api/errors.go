package api

import (
	"errors"
	"net/http"

	repository "github.com/okian/pmwiki/internal/adapters/repository"
	"github.com/okian/pmwiki/internal/domain/compare"
	"github.com/okian/pmwiki/internal/domain/ranking"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrNoSession  = errors.New("no compare session")
)

// Error codes returned in the code field of error bodies.
const (
	CodeBadRequest  = "bad_request"
	CodeNotFound    = "not_found"
	CodeNotRanked   = "not_ranked"
	CodeCompareFull = "compare_full"
	CodeInternal    = "internal_error"
)

// statusFor maps domain errors to an HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, ranking.ErrNotRanked):
		return http.StatusNotFound, CodeNotRanked
	case errors.Is(err, compare.ErrCompareFull):
		return http.StatusConflict, CodeCompareFull
	case errors.Is(err, repository.ErrInvalidInput),
		errors.Is(err, ranking.ErrInvalidLimit),
		errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, CodeBadRequest
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}
