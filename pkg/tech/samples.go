package tech

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// sample is one characterization point; vdd is in mV.
type sample struct {
	vdd   int
	delay float64
	dp    float64
	sp    float64
}

// mcSample is one Monte-Carlo point; freq is indexed by Sigma. The min and
// mean columns are not used by the variation model.
type mcSample struct {
	vdd  int
	freq [Sigma3 + 1]float64
}

var (
	sampleHeader = []string{"vdd", "delay", "dp", "sp"}
	mcHeader     = []string{"vdd", "freq_3sigma", "freq_min", "freq_mean", "freq_2sigma", "freq_sigma"}
)

func readRecords(r io.Reader, header []string) ([][]float64, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(header)
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	head, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i, col := range header {
		if strings.TrimSpace(head[i]) != col {
			return nil, fmt.Errorf("unexpected column %d: got %q, want %q", i, head[i], col)
		}
	}

	var rows [][]float64
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make([]float64, len(rec))
		for i, field := range rec {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d column %s: %w", len(rows)+2, header[i], err)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// millivolts converts a sample voltage in volts to integer mV.
func millivolts(v float64) int {
	return int(math.Round(v * 1000))
}

func parseSamples(r io.Reader) ([]sample, error) {
	rows, err := readRecords(r, sampleHeader)
	if err != nil {
		return nil, err
	}
	out := make([]sample, len(rows))
	for i, row := range rows {
		if row[1] <= 0 {
			return nil, fmt.Errorf("non-positive delay %g at %g V", row[1], row[0])
		}
		out[i] = sample{vdd: millivolts(row[0]), delay: row[1], dp: row[2], sp: row[3]}
	}
	return out, nil
}

func parseMCSamples(r io.Reader) ([]mcSample, error) {
	rows, err := readRecords(r, mcHeader)
	if err != nil {
		return nil, err
	}
	out := make([]mcSample, len(rows))
	for i, row := range rows {
		s := mcSample{vdd: millivolts(row[0])}
		s.freq[Sigma3] = row[1]
		s.freq[Sigma2] = row[4]
		s.freq[Sigma1] = row[5]
		out[i] = s
	}
	return out, nil
}
