package client

// Record is a single normalized transaction line: field name to scalar
// value, with the provider's embedded relation objects stripped and its
// date encoding converted to RFC3339.
type Record map[string]any

// Page is one decoded result page. NextCursor is the path of the next
// page relative to the API base URL, or empty on the final page.
type Page struct {
	Records    []map[string]any
	NextCursor string
}

// RetrievalRequest describes one transaction retrieval.
// Filter is an OData $filter expression passed through uninterpreted;
// leave it empty to fetch everything.
type RetrievalRequest struct {
	Division string
	Filter   string
}

// ProgressEvent reports retrieval progress. Total is -1 when the
// total number of records is not known.
type ProgressEvent struct {
	Current int    `json:"current"`
	Total   int    `json:"total"`
	Message string `json:"message"`
}

// ProgressFunc receives progress events during a retrieval. It is called
// from the retrieval goroutine, once per fetched page.
type ProgressFunc func(ProgressEvent)

// Division is one entry of the provider's division list.
type Division struct {
	Code         int    `json:"Code"`
	CustomerName string `json:"CustomerName"`
	Description  string `json:"Description"`
	Customer     string `json:"Customer"`
	CustomerCode string `json:"CustomerCode"`
}
