// Package harvest fetches servant and skill records from the content site
// and drives them through the staged pipeline: list, detail fan-out, comb
// retries and normalization, with a snapshot written after every stage.
package harvest
