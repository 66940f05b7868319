// Package report summarizes benchmark trials and renders them as JSON or
// human-readable text.
package report

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/sugawarayuuta/sonnet"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Kind identifies the workload a report describes.
type Kind string

const (
	// KindThroughput is a pinned writer/reader throughput benchmark.
	KindThroughput Kind = "throughput"
	// KindStress is a torn-read stress run.
	KindStress Kind = "stress"
)

// ErrNoTrials is returned by Summarize when there is nothing to summarize.
var ErrNoTrials = errors.New("report: no trials")

// Report is the outcome of one harness run. Trials holds per-trial
// throughput in operations per millisecond, sorted ascending.
type Report struct {
	RunID      string    `json:"run_id"`
	Kind       Kind      `json:"kind"`
	Started    time.Time `json:"started"`
	Iterations uint64    `json:"iterations"`
	ReaderCPU  int       `json:"reader_cpu"`
	WriterCPU  int       `json:"writer_cpu"`
	Trials     []uint64  `json:"trials"`
	Mean       uint64    `json:"mean"`
	Median     uint64    `json:"median"`
}

// NewRunID returns a time-ordered identifier for a run.
func NewRunID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Summarize sorts r.Trials and fills Mean and Median. With an even number
// of trials the median is the upper middle value.
func (r *Report) Summarize() error {
	if len(r.Trials) == 0 {
		return ErrNoTrials
	}
	slices.Sort(r.Trials)

	var sum uint64
	for _, t := range r.Trials {
		sum += t
	}
	r.Mean = sum / uint64(len(r.Trials))
	r.Median = r.Trials[len(r.Trials)/2]
	return nil
}

// OpsPerMilli converts a trial of iters operations taking elapsed into
// operations per millisecond.
func OpsPerMilli(iters uint64, elapsed time.Duration) uint64 {
	ns := elapsed.Nanoseconds()
	if ns <= 0 {
		ns = 1
	}
	return iters * 1_000_000 / uint64(ns)
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// ENCODING
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// MarshalJSON encodes r. Defined on the value so both Report and *Report
// encode the same way.
func (r Report) MarshalJSON() ([]byte, error) {
	type plain Report
	return sonnet.Marshal(plain(r))
}

// Decode parses a report previously produced by WriteJSON or MarshalJSON.
func Decode(data []byte) (*Report, error) {
	var r Report
	if err := sonnet.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("report: decode: %w", err)
	}
	return &r, nil
}

// WriteJSON writes r as a single JSON line.
func WriteJSON(w io.Writer, r *Report) error {
	data, err := r.MarshalJSON()
	if err != nil {
		return fmt.Errorf("report: encode: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// WriteText renders r for a terminal, grouping digits English-style.
func WriteText(w io.Writer, r *Report) error {
	p := message.NewPrinter(language.English)

	if _, err := p.Fprintf(w, "run %s (%s)\n", r.RunID, r.Kind); err != nil {
		return err
	}
	if _, err := p.Fprintf(w, "iterations: %d  reader cpu: %s  writer cpu: %s\n",
		r.Iterations, cpuLabel(r.ReaderCPU), cpuLabel(r.WriterCPU)); err != nil {
		return err
	}
	if _, err := p.Fprintf(w, "trials (sorted):\n"); err != nil {
		return err
	}
	for i, t := range r.Trials {
		if _, err := p.Fprintf(w, "  %2d: %d ops/ms\n", i+1, t); err != nil {
			return err
		}
	}
	if _, err := p.Fprintf(w, "Mean: %d ops/ms\nMedian: %d ops/ms\n", r.Mean, r.Median); err != nil {
		return err
	}
	return nil
}

func cpuLabel(cpu int) string {
	if cpu < 0 {
		return "any"
	}
	return fmt.Sprint(cpu)
}
