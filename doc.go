// Package stockfolio tracks an investor's equity trades and derives
// portfolio metrics from them.
//
// The heart of the package is ComputeSummaries, a pure function that turns an
// unordered set of buy/sell transactions and a live-price map into
// per-instrument summaries and currency-partitioned statistics, using the
// average-cost-basis method. Everything else, persistence (package store),
// price lookup (package quote), AI-based extraction (package agent), and
// rendering (package renderer), collaborates with the engine through plain
// data: a transaction list in, summaries and stats out.
//
// Amounts in different currencies (USD and CAD) are tracked separately and
// never summed together; the engine performs no currency conversion.
package stockfolio
