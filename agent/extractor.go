// Package agent extracts transactions from freeform text with Gemini.
//
// The extractor turns broker confirmation emails, pasted statements, or plain
// sentences like "bought 10 apple at 150 yesterday" into Transaction records.
// The model is forced into structured JSON output against a schema, and the
// decoded records go through the same normalization as hand-entered ones.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"google.golang.org/genai"

	"stockfolio"
)

// DefaultModel is the model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

const extractorInstruction = `You extract stock trade records from text.
For each trade mentioned, emit one record with:
- date: the trade date in YYYY-MM-DD form; use today's date when none is given.
- type: BUY or SELL.
- symbol: the ticker symbol; leave empty if only a company name is given and you are not certain of the ticker.
- name: the company name as written, if any.
- shares: the number of shares, a positive number.
- price: the price per share, a positive number.
- currency: USD or CAD; default USD.
Emit only trades actually described in the text. Never invent records.`

// extractedTx is the schema-shaped record the model emits.
type extractedTx struct {
	Date     string  `json:"date"`
	Type     string  `json:"type"`
	Symbol   string  `json:"symbol"`
	Name     string  `json:"name"`
	Shares   float64 `json:"shares"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
}

// extractionSchema constrains the model output to a JSON array of trades.
var extractionSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"date":     {Type: genai.TypeString, Description: "Trade date, YYYY-MM-DD."},
			"type":     {Type: genai.TypeString, Enum: []string{"BUY", "SELL"}},
			"symbol":   {Type: genai.TypeString, Description: "Ticker symbol, may be empty."},
			"name":     {Type: genai.TypeString, Description: "Company name, may be empty."},
			"shares":   {Type: genai.TypeNumber},
			"price":    {Type: genai.TypeNumber},
			"currency": {Type: genai.TypeString, Enum: []string{"USD", "CAD"}},
		},
		Required: []string{"date", "type", "shares", "price"},
	},
}

// Extractor asks Gemini to turn freeform text into transactions.
type Extractor struct {
	Model  string
	client *genai.Client
	// retries on rate-limit responses before giving up.
	retries int
}

// NewExtractor creates an extractor on an existing Gemini client.
func NewExtractor(client *genai.Client) *Extractor {
	return &Extractor{Model: DefaultModel, client: client, retries: 3}
}

// Extract parses all trades described in text into normalized transactions,
// each with a fresh id. It returns an empty slice when the text describes no
// trade.
func (e *Extractor) Extract(ctx context.Context, text string) ([]stockfolio.Transaction, error) {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType:  "application/json",
		ResponseSchema:    extractionSchema,
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: extractorInstruction}}},
	}
	contents := []*genai.Content{
		{Parts: []*genai.Part{{Text: text}}, Role: genai.RoleUser},
	}

	var resp *genai.GenerateContentResponse
	var err error
	backoff := time.Second
	for attempt := 0; attempt < e.retries; attempt++ {
		resp, err = e.client.Models.GenerateContent(ctx, e.Model, contents, config)
		if err == nil {
			break
		}
		var apiErr genai.APIError
		if !errors.As(err, &apiErr) || apiErr.Code != 429 {
			return nil, fmt.Errorf("extraction request failed: %w", err)
		}
		log.Printf("agent: rate limited, retrying in %v", backoff)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		backoff *= 2
	}
	if err != nil {
		return nil, fmt.Errorf("extraction request failed: %w", err)
	}

	return DecodeExtraction(resp.Text())
}

// DecodeExtraction converts the model's JSON answer into normalized
// transactions. It is separate from Extract so the decoding rules are
// testable without a live model.
func DecodeExtraction(answer string) ([]stockfolio.Transaction, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, nil
	}

	var records []extractedTx
	if err := json.Unmarshal([]byte(answer), &records); err != nil {
		return nil, fmt.Errorf("model answer is not the expected JSON: %w", err)
	}

	txs := make([]stockfolio.Transaction, 0, len(records))
	for _, r := range records {
		typ, err := stockfolio.ParseTxType(r.Type)
		if err != nil {
			return nil, fmt.Errorf("extracted record has %w", err)
		}
		on, err := stockfolio.ParseDate(r.Date)
		if err != nil {
			return nil, fmt.Errorf("extracted record has an invalid date: %w", err)
		}
		if r.Shares <= 0 || r.Price <= 0 {
			return nil, fmt.Errorf("extracted record has non-positive shares or price: %+v", r)
		}
		tx := stockfolio.NewTransaction(on, typ, r.Symbol, r.Name, r.Shares, r.Price)
		tx.Currency = stockfolio.NormalizeCurrency(r.Currency)
		txs = append(txs, tx)
	}
	return txs, nil
}
