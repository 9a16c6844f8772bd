package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"receipt-vault/internal/models"

	"go.uber.org/zap"
)

// The query shim recognizes exactly three fixed trigger patterns. It is a
// dispatcher, not a parser, and is deliberately non-extensible.
var (
	itemQueryRe   = regexp.MustCompile(`查\s*(.+?)\s*在.*收据`)
	monthListRe   = regexp.MustCompile(`列出\s*(\d{1,2})\s*月\s*(\S+?)类?收据`)
	summaryWordRe = regexp.MustCompile(`(\d{4}-\d{2})`)
)

var queryHints = []string{
	"查吹风机在哪个收据",
	"列出2月购物类收据",
	"汇总 2026-02",
}

// QueryResult is the outcome of one trigger dispatch. Exactly one of
// Receipts/Summary is set for a recognized query; Hints is populated for
// an unrecognized one.
type QueryResult struct {
	Kind     string            `json:"kind"` // "search", "list", "summary" or "unrecognized"
	Receipts []*models.Receipt `json:"receipts,omitempty"`
	Summary  *SummaryResult    `json:"summary,omitempty"`
	Hints    []string          `json:"hints,omitempty"`
}

// QueryService dispatches natural-language trigger phrases onto store
// operations.
type QueryService struct {
	receipts *ReceiptService
	logger   *zap.Logger
}

func NewQueryService(receipts *ReceiptService, logger *zap.Logger) *QueryService {
	return &QueryService{
		receipts: receipts,
		logger:   logger,
	}
}

// trigger is one recognized query with its extracted parameters.
type trigger struct {
	kind     string
	item     string
	month    string
	category string
}

// classifyQuery matches the text against the three triggers in order: item
// lookup, month+category listing, month summary. Unmatched text yields nil.
func classifyQuery(t string) *trigger {
	if m := itemQueryRe.FindStringSubmatch(t); m != nil {
		return &trigger{kind: "search", item: strings.TrimSpace(m[1])}
	}
	if m := monthListRe.FindStringSubmatch(t); m != nil {
		return &trigger{kind: "list", month: m[1], category: m[2]}
	}
	if strings.Contains(t, "汇总") {
		if m := summaryWordRe.FindStringSubmatch(t); m != nil {
			return &trigger{kind: "summary", month: m[1]}
		}
	}
	return nil
}

// Dispatch classifies the text and runs the matching store operation.
// Anything unrecognized comes back with usage hints instead of an error.
func (s *QueryService) Dispatch(ctx context.Context, text string, limit int) (*QueryResult, error) {
	t := strings.TrimSpace(text)
	if t == "" {
		return nil, fmt.Errorf("%w: empty text", ErrInvalid)
	}

	tr := classifyQuery(t)
	if tr == nil {
		return &QueryResult{Kind: "unrecognized", Hints: queryHints}, nil
	}

	switch tr.kind {
	case "search":
		receipts, err := s.receipts.Search(ctx, "", tr.item, limit)
		if err != nil {
			return nil, err
		}
		return &QueryResult{Kind: tr.kind, Receipts: receipts}, nil
	case "list":
		receipts, err := s.receipts.List(ctx, tr.month, tr.category, limit)
		if err != nil {
			return nil, err
		}
		return &QueryResult{Kind: tr.kind, Receipts: receipts}, nil
	default:
		summary, err := s.receipts.Summary(ctx, tr.month, 10)
		if err != nil {
			return nil, err
		}
		return &QueryResult{Kind: tr.kind, Summary: summary}, nil
	}
}
