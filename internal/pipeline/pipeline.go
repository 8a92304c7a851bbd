// Package pipeline turns a grounded model answer into the place list shown
// to the user: it splits the prose from the embedded metadata block, joins
// cited sources against that metadata, derives distances and puts active
// sponsors in front.
package pipeline

import (
	"github.com/MrSnakeDoc/nearby/internal/domain"
	"github.com/MrSnakeDoc/nearby/internal/logger"
)

// ConnectivityErrorText is shown when the AI backend could not be reached.
const ConnectivityErrorText = "Encountered a connectivity error. Please try again."

// Input is everything one reconciliation needs.
type Input struct {
	RawText   string
	Chunks    []domain.GroundingChunk
	User      *domain.Location // nil when the position is unknown
	Merchants []domain.MerchantRequest
	Query     string
}

// Reconciler is stateless apart from its trust policy and logger; one
// instance serves all requests.
type Reconciler struct {
	logger  logger.Logger
	trusted TrustPolicy
}

func NewReconciler(log logger.Logger, trusted TrustPolicy) *Reconciler {
	if log == nil {
		log = logger.Nop()
	}
	return &Reconciler{logger: log, trusted: trusted}
}

// Reconcile never fails: a broken metadata block degrades to prose-only
// results and unmatched citations are kept with partial data.
func (r *Reconciler) Reconcile(in Input) domain.SearchResponse {
	ex := extractMetadata(in.RawText)
	if ex.parseErr != nil {
		r.logger.Debug("discarding unparsable metadata block", logger.Error(ex.parseErr))
	}

	organic := correlate(in.Chunks, ex.meta, in.User, r.trusted)
	sponsors := sponsored(in.Merchants, in.Query)

	places := make([]domain.PlaceResult, 0, len(sponsors)+len(organic))
	places = append(places, sponsors...)
	places = append(places, organic...)

	r.logger.Debug("search reconciled",
		logger.Int("metadata_entries", len(ex.meta)),
		logger.Int("chunks", len(in.Chunks)),
		logger.Int("organic", len(organic)),
		logger.Int("sponsored", len(sponsors)))

	return domain.SearchResponse{Text: ex.prose, Places: places}
}

// Failed is the response for a search whose backend call never completed.
func Failed(err error) domain.SearchResponse {
	detail := "unknown error"
	if err != nil {
		detail = err.Error()
	}
	return domain.SearchResponse{
		Text:   ConnectivityErrorText,
		Places: []domain.PlaceResult{},
		Error:  detail,
	}
}
