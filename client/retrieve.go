package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/habedi/exactly/db"
	"github.com/rs/zerolog/log"
)

// transactionFields is the fixed $select list for transaction lines.
var transactionFields = strings.Join([]string{
	"AccountCode", "AccountName", "AmountDC", "AmountFC", "AmountVATBaseFC", "AmountVATFC",
	"AssetCode", "AssetDescription", "CostCenter", "CostCenterDescription", "CostUnit",
	"CostUnitDescription", "CreatorFullName", "Currency", "CustomField", "Description",
	"Division", "Document", "DocumentNumber", "DocumentSubject", "DueDate", "EntryNumber",
	"ExchangeRate", "ExternalLinkDescription", "ExternalLinkReference", "ExtraDutyAmountFC",
	"ExtraDutyPercentage", "FinancialPeriod", "FinancialYear", "GLAccountCode",
	"GLAccountDescription", "InvoiceNumber", "Item", "ItemCode", "ItemDescription",
	"JournalCode", "JournalDescription", "LineType", "Modified", "ModifierFullName",
	"Notes", "OrderNumber", "PaymentDiscountAmount", "PaymentReference", "Project",
	"ProjectCode", "ProjectDescription", "Quantity", "SerialNumber", "ShopOrder",
	"Status", "Subscription", "SubscriptionDescription", "TrackingNumber",
	"TrackingNumberDescription", "Type", "VATCode", "VATCodeDescription",
	"VATPercentage", "VATType", "YourRef",
}, ",")

// divisionFields is the fixed $select list for the division listing.
const divisionFields = "Code,Customer,CustomerCode,CustomerName,Description"

// TokenSource yields a credential valid for the next request. The engine
// consults it immediately before every page fetch, because a long
// multi-page retrieval can outlive one access token.
type TokenSource interface {
	EnsureValidToken(ctx context.Context) (*db.Token, error)
}

// Engine drives the page fetcher across the server's cursor chain,
// normalizing records, reporting progress, and honoring cancellation.
// Pages are fetched strictly sequentially; each request depends on the
// cursor from the previous response.
type Engine struct {
	client *Client
	tokens TokenSource
}

// NewEngine creates a retrieval engine on top of an API client and a
// token source.
func NewEngine(c *Client, tokens TokenSource) *Engine {
	return &Engine{client: c, tokens: tokens}
}

// GetTransactions retrieves every transaction line of a division, following
// the server's next-page cursors until none remains. The filter expression
// is passed through to the server uninterpreted. When ctx is cancelled the
// records fetched so far are returned together with ErrCancelled.
func (e *Engine) GetTransactions(ctx context.Context, req RetrievalRequest, progress ProgressFunc) ([]Record, error) {
	division := strings.TrimSpace(req.Division)
	if division == "" {
		return nil, fmt.Errorf("division must not be empty")
	}

	filterStr := ""
	if f := strings.TrimSpace(req.Filter); f != "" {
		filterStr = "&$filter=" + url.QueryEscape(f)
	}
	path := fmt.Sprintf("/v1/%s/bulk/Financial/TransactionLines?$select=%s%s",
		division, transactionFields, filterStr)

	total := e.countTransactions(ctx, division, filterStr)
	if total >= 0 && progress != nil {
		progress(ProgressEvent{
			Current: 0,
			Total:   total,
			Message: fmt.Sprintf("Found %d transactions, starting fetch...", total),
		})
	}
	if err := ctx.Err(); err != nil {
		return nil, ErrCancelled
	}

	return e.retrieve(ctx, path, total, progress)
}

// retrieve is the page loop shared by all list retrievals. It returns the
// partial record set with ErrCancelled when ctx is cancelled, and aborts
// on the first fetch error without returning any records.
func (e *Engine) retrieve(ctx context.Context, startPath string, total int, progress ProgressFunc) ([]Record, error) {
	records := make([]Record, 0, 128)
	next := startPath
	seen := map[string]bool{}

	for next != "" {
		if seen[next] {
			log.Warn().Str("cursor", next).Msg("Cursor already visited, stopping pagination")
			break
		}
		seen[next] = true

		if err := ctx.Err(); err != nil {
			return records, ErrCancelled
		}

		token, err := e.tokens.EnsureValidToken(ctx)
		if err != nil {
			return nil, err
		}

		page, err := e.client.FetchPage(ctx, next, token.AccessToken)
		if err != nil {
			if ctx.Err() != nil {
				return records, ErrCancelled
			}
			return nil, err
		}

		for _, raw := range page.Records {
			records = append(records, NormalizeRecord(raw))
		}

		if progress != nil {
			progress(ProgressEvent{
				Current: len(records),
				Total:   total,
				Message: progressMessage(len(records), total),
			})
		}

		if err := ctx.Err(); err != nil {
			return records, ErrCancelled
		}
		next = page.NextCursor
	}

	log.Info().Int("records", len(records)).Msg("Retrieval finished")
	return records, nil
}

func progressMessage(current, total int) string {
	if total >= 0 {
		return fmt.Sprintf("Fetched %d of %d transactions...", current, total)
	}
	return fmt.Sprintf("Fetched %d transactions so far...", current)
}

// countTransactions asks the server for the result count so progress can
// show a total. The probe is best effort: any failure leaves the total
// unknown (-1) and the retrieval proceeds regardless.
func (e *Engine) countTransactions(ctx context.Context, division, filterStr string) int {
	token, err := e.tokens.EnsureValidToken(ctx)
	if err != nil {
		return -1
	}
	path := fmt.Sprintf("/v1/%s/bulk/Financial/TransactionLines/$count%s", division, filterStr)
	body, status, err := e.client.getRaw(ctx, path, token.AccessToken)
	if err != nil || status < 200 || status >= 300 {
		log.Debug().Err(err).Int("status", status).Msg("Count probe failed, total unknown")
		return -1
	}
	count, err := strconv.Atoi(strings.TrimSpace(string(body)))
	if err != nil || count < 0 {
		log.Debug().Str("body", string(body)).Msg("Count probe returned no usable number")
		return -1
	}
	return count
}

// GetDivisions retrieves the division list the signed-in user may access,
// sorted by customer name and description. It uses the same pagination
// mechanism as the transaction retrieval; the list typically fits one page.
func (e *Engine) GetDivisions(ctx context.Context) ([]Division, error) {
	token, err := e.tokens.EnsureValidToken(ctx)
	if err != nil {
		return nil, err
	}
	current := token.CurrentDivision
	if current == "" {
		current, err = e.FetchCurrentDivision(ctx, token.AccessToken)
		if err != nil {
			return nil, fmt.Errorf("no current division known: %w", err)
		}
	}

	path := fmt.Sprintf("/v1/%s/system/Divisions?$select=%s", current, divisionFields)
	records, err := e.retrieve(ctx, path, -1, nil)
	if err != nil {
		return nil, err
	}

	divisions := make([]Division, 0, len(records))
	for _, rec := range records {
		div, err := divisionFromRecord(rec)
		if err != nil {
			return nil, &DecodeError{Err: fmt.Errorf("failed to parse division: %w", err)}
		}
		divisions = append(divisions, div)
	}

	sort.Slice(divisions, func(i, j int) bool {
		a := divisions[i].CustomerName + divisions[i].Description
		b := divisions[j].CustomerName + divisions[j].Description
		return a < b
	})
	return divisions, nil
}

func divisionFromRecord(rec Record) (Division, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return Division{}, err
	}
	var div Division
	if err := json.Unmarshal(raw, &div); err != nil {
		return Division{}, err
	}
	return div, nil
}

// FetchCurrentDivision reads the signed-in user's current division from the
// profile endpoint. The provider has been observed wrapping the value three
// ways, so all of them are tried.
func (e *Engine) FetchCurrentDivision(ctx context.Context, accessToken string) (string, error) {
	body, status, err := e.client.getRaw(ctx, "/v1/current/Me?$select=CurrentDivision", accessToken)
	if err != nil {
		return "", err
	}
	if status < 200 || status >= 300 {
		return "", &APIError{Code: status, Message: strings.TrimSpace(string(body))}
	}

	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return "", &DecodeError{Err: err}
	}

	if div, ok := currentDivisionFrom(doc); ok {
		return div, nil
	}
	if d, ok := doc["d"].(map[string]any); ok {
		if div, ok := currentDivisionFrom(d); ok {
			return div, nil
		}
		if results, ok := d["results"].([]any); ok && len(results) > 0 {
			if first, ok := results[0].(map[string]any); ok {
				if div, ok := currentDivisionFrom(first); ok {
					return div, nil
				}
			}
		}
	}
	return "", &DecodeError{Err: fmt.Errorf("no CurrentDivision in profile response")}
}

func currentDivisionFrom(doc map[string]any) (string, bool) {
	value, ok := doc["CurrentDivision"]
	if !ok {
		return "", false
	}
	switch v := value.(type) {
	case float64:
		return strconv.FormatInt(int64(v), 10), true
	case string:
		if v != "" {
			return v, true
		}
	}
	return "", false
}
