package ledger

import "context"

// Candidate is a transaction proposed by an external parser (receipt scan,
// voice input). It carries no account; the caller picks one.
type Candidate struct {
	Amount     int64   `json:"amount"`
	Type       string  `json:"type"`
	CategoryID *string `json:"category_id"`
	Note       string  `json:"note"`
}

// ImportResult reports the outcome of one candidate.
type ImportResult struct {
	Index int    `json:"index"`
	ID    string `json:"id,omitempty"`
	Kind  string `json:"kind,omitempty"`
	Error string `json:"error,omitempty"`
}

// ImportCandidates records each candidate on accountID through
// RecordTransaction. A failing candidate does not stop the batch.
func (s *Service) ImportCandidates(ctx context.Context, accountID *string, cands []Candidate) []ImportResult {
	out := make([]ImportResult, 0, len(cands))
	for i, c := range cands {
		id, err := s.RecordTransaction(ctx, TransactionInput{
			Type:       c.Type,
			Amount:     c.Amount,
			CategoryID: c.CategoryID,
			AccountID:  accountID,
			Note:       c.Note,
		})
		r := ImportResult{Index: i, ID: id}
		if err != nil {
			r.Kind = KindOf(err).String()
			r.Error = err.Error()
		}
		out = append(out, r)
	}
	return out
}
