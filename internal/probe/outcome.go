package probe

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/samvad-hq/samvad-api-probe/internal/domain"
)

// NewOutcome folds the result of a run into its terminal record.
func NewOutcome(req domain.Request, res domain.Result, err error) domain.Outcome {
	out := domain.Outcome{
		ID:  uuid.NewString(),
		URL: req.URL,
	}
	if err == nil {
		out.Success = true
		out.StatusCode = res.StatusCode
		out.Status = res.Status
		out.Data = res.Data
		out.Elapsed = res.Elapsed
		out.CompletedAt = res.CompletedAt
		return out
	}

	out.Kind = Kind(err)
	out.Error = err.Error()
	var statusErr *NetworkResponseError
	if errors.As(err, &statusErr) {
		out.StatusCode = statusErr.StatusCode
		out.Status = statusErr.Status
	}
	out.CompletedAt = time.Now().UTC()
	return out
}
