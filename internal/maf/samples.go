// Package maf provides MAF (Mutation Annotation Format) input handling:
// distinct-sample counting for the network sample cutoff and Firebrowse
// cohort downloads.
package maf

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// ColTumorSampleBarcode is the MAF column identifying the sample a
// mutation row belongs to.
const ColTumorSampleBarcode = "Tumor_Sample_Barcode"

// ParseError reports a malformed MAF file.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("maf parse error at line %d: %s", e.Line, e.Message)
}

// InputNotFoundError reports a missing required MAF input file.
type InputNotFoundError struct {
	Cohort string
	Path   string
}

func (e *InputNotFoundError) Error() string {
	return fmt.Sprintf("the %s MAF file was not found: %s", e.Cohort, e.Path)
}

// SampleCount counts the distinct Tumor_Sample_Barcode values in a
// tab-separated MAF file. Plain and gzipped files are supported.
func SampleCount(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open maf file: %w", err)
	}
	defer file.Close()

	reader, closeReader, err := openReader(file)
	if err != nil {
		return 0, err
	}
	defer closeReader()

	return countSamples(reader)
}

// openReader wraps the file in a gzip reader when the gzip magic bytes
// are present.
func openReader(file *os.File) (*bufio.Reader, func() error, error) {
	buf := make([]byte, 2)
	if _, err := io.ReadFull(file, buf); err != nil {
		return nil, nil, fmt.Errorf("read maf header: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, nil, fmt.Errorf("seek maf file: %w", err)
	}

	if buf[0] == 0x1f && buf[1] == 0x8b {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, nil, fmt.Errorf("create gzip reader: %w", err)
		}
		return bufio.NewReader(gz), gz.Close, nil
	}
	noop := func() error { return nil }
	return bufio.NewReader(file), noop, nil
}

func countSamples(reader *bufio.Reader) (int, error) {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	lineNumber := 0
	barcodeCol := -1
	samples := make(map[string]struct{})

	for scanner.Scan() {
		lineNumber++
		line := strings.TrimRight(scanner.Text(), "\r\n")

		// Comment lines precede the header.
		if strings.HasPrefix(line, "#") {
			continue
		}
		if line == "" {
			continue
		}

		fields := strings.Split(line, "\t")
		if barcodeCol < 0 {
			for i, name := range fields {
				if name == ColTumorSampleBarcode {
					barcodeCol = i
					break
				}
			}
			if barcodeCol < 0 {
				return 0, &ParseError{
					Line:    lineNumber,
					Message: fmt.Sprintf("missing required column %s", ColTumorSampleBarcode),
				}
			}
			continue
		}

		if barcodeCol >= len(fields) {
			return 0, &ParseError{
				Line:    lineNumber,
				Message: fmt.Sprintf("row has %d columns, %s is column %d", len(fields), ColTumorSampleBarcode, barcodeCol+1),
			}
		}
		if barcode := strings.TrimSpace(fields[barcodeCol]); barcode != "" {
			samples[barcode] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("read maf file: %w", err)
	}
	if barcodeCol < 0 {
		return 0, &ParseError{Line: lineNumber, Message: "no header line found"}
	}

	return len(samples), nil
}
