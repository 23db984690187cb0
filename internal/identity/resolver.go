// Package identity resolves platform handles to verified author emails.
package identity

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/bookleaf/support-platform/internal/llm"
	"github.com/bookleaf/support-platform/internal/model"
	"github.com/bookleaf/support-platform/internal/store"
	"github.com/bookleaf/support-platform/pkg/logger"
	"github.com/bookleaf/support-platform/pkg/metrics"
)

// DefaultMatchThreshold is the disambiguation confidence bar (0-100) below
// which no link is persisted.
const DefaultMatchThreshold = 85

// LinkStore persists confirmed identity links.
type LinkStore interface {
	GetIdentityLink(ctx context.Context, platform model.Platform, handleOrID string) (*model.IdentityLink, error)
	UpsertIdentityLink(ctx context.Context, platform model.Platform, handleOrID, primaryEmail string) error
}

// AuthorPool supplies the full set of known authors for candidate generation.
type AuthorPool interface {
	ListAuthors(ctx context.Context) ([]model.AuthorRef, error)
}

// Resolver maps (platform, handle) pairs to verified author emails:
// deterministically from the link store when previously confirmed,
// probabilistically through fuzzy matching plus oracle disambiguation
// otherwise. Resolution is best-effort and never blocks a conversation.
type Resolver struct {
	links       LinkStore
	pool        AuthorPool
	oracle      llm.Client
	oracleModel string
	threshold   float64
	logger      *logger.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithThreshold overrides the disambiguation confidence bar.
func WithThreshold(threshold float64) Option {
	return func(r *Resolver) { r.threshold = threshold }
}

// WithOracleModel overrides the disambiguation model name.
func WithOracleModel(m string) Option {
	return func(r *Resolver) { r.oracleModel = m }
}

// NewResolver creates a resolver with injected collaborators.
func NewResolver(links LinkStore, pool AuthorPool, oracle llm.Client, log *logger.Logger, opts ...Option) *Resolver {
	r := &Resolver{
		links:     links,
		pool:      pool,
		oracle:    oracle,
		threshold: DefaultMatchThreshold,
		logger:    log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the verified email for a (platform, handle) pair, or the
// empty string when no identity can be established. A cache hit short-circuits
// with no disambiguation call and no new write.
func (r *Resolver) Resolve(ctx context.Context, platform model.Platform, handleOrID string) string {
	link, err := r.links.GetIdentityLink(ctx, platform, handleOrID)
	if err == nil {
		metrics.RecordResolution(platform.String(), "cache_hit")
		return link.PrimaryEmail
	}
	if !errors.Is(err, store.ErrNotFound) {
		// Store unavailable: degrade to no identity rather than block.
		r.logger.Warn("identity link lookup failed", zap.Error(err))
		metrics.RecordResolution(platform.String(), "no_identity")
		return ""
	}

	pool, err := r.pool.ListAuthors(ctx)
	if err != nil {
		r.logger.Warn("author pool fetch failed", zap.Error(err))
		metrics.RecordResolution(platform.String(), "no_identity")
		return ""
	}

	candidates := fuzzyCandidates(handleOrID, pool)
	if len(candidates) == 0 {
		metrics.RecordResolution(platform.String(), "no_identity")
		return ""
	}

	v := r.disambiguate(ctx, platform, handleOrID, candidates)
	metrics.DisambiguationScore.Observe(v.ConfidenceScore)

	if v.ConfidenceScore < r.threshold || v.MatchedEmail == "" {
		r.logger.Info("identity resolution below threshold",
			zap.String("platform", platform.String()),
			zap.String("handle", handleOrID),
			zap.Float64("score", v.ConfidenceScore),
			zap.String("justification", v.Justification),
		)
		metrics.RecordResolution(platform.String(), "no_identity")
		return ""
	}

	if err := r.links.UpsertIdentityLink(ctx, platform, handleOrID, v.MatchedEmail); err != nil {
		// The link write failed but the identity itself is confirmed;
		// use it for this run and let a later run re-link.
		r.logger.Warn("identity link persist failed", zap.Error(err))
	}

	r.logger.Info("identity linked",
		zap.String("platform", platform.String()),
		zap.String("handle", handleOrID),
		zap.String("email", v.MatchedEmail),
		zap.Float64("score", v.ConfidenceScore),
	)
	metrics.RecordResolution(platform.String(), "linked")
	return v.MatchedEmail
}
