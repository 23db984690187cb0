package identity

import (
	"sort"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/bookleaf/support-platform/internal/model"
)

// matchesPerPass is how many top scorers each fuzzy pass contributes.
const matchesPerPass = 2

// fuzzyCandidates runs two independent scoring passes over the author pool:
// partial-ratio against emails and weighted-ratio against book titles. The
// top scorers of each pass are unioned, tagged by pass. Duplicates across
// passes are kept so the disambiguator sees both signals.
func fuzzyCandidates(input string, pool []model.AuthorRef) []model.Candidate {
	emailScores := make([]model.Candidate, 0, len(pool))
	titleScores := make([]model.Candidate, 0, len(pool))

	for _, author := range pool {
		emailScores = append(emailScores, model.Candidate{
			Email:  author.Email,
			Score:  fuzzy.PartialRatio(input, author.Email),
			Reason: model.ReasonEmailMatch,
		})
		titleScores = append(titleScores, model.Candidate{
			Email:  author.Email,
			Score:  fuzzy.WRatio(input, author.BookTitle),
			Reason: model.ReasonTitleMatch,
		})
	}

	candidates := topN(emailScores, matchesPerPass)
	return append(candidates, topN(titleScores, matchesPerPass)...)
}

func topN(scored []model.Candidate, n int) []model.Candidate {
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > n {
		scored = scored[:n]
	}
	return scored
}
